package jira

import (
	"encoding/json"
	"strings"
)

// Node is one node of an Atlassian Document Format tree
type Node struct {
	Type    string                 `json:"type"`
	Version int                    `json:"version,omitempty"`
	Text    string                 `json:"text,omitempty"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Content []Node                 `json:"content,omitempty"`
}

// NewDocument builds an ADF document with one paragraph per blank-line
// separated block of text
func NewDocument(text string) Node {
	doc := Node{Type: "doc", Version: 1}
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		doc.Content = append(doc.Content, Node{
			Type:    "paragraph",
			Content: []Node{{Type: "text", Text: block}},
		})
	}
	if len(doc.Content) == 0 {
		doc.Content = []Node{{Type: "paragraph"}}
	}
	return doc
}

// PlainText flattens a description field. Jira returns ADF for v3 and plain
// strings for older issues; both are accepted.
func PlainText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var doc Node
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}

	var blocks []string
	for _, block := range doc.Content {
		var sb strings.Builder
		collectText(block, &sb)
		if sb.Len() > 0 {
			blocks = append(blocks, sb.String())
		}
	}
	return strings.Join(blocks, "\n\n")
}

func collectText(n Node, sb *strings.Builder) {
	switch n.Type {
	case "text":
		sb.WriteString(n.Text)
	case "hardBreak":
		sb.WriteString("\n")
	}
	for _, child := range n.Content {
		collectText(child, sb)
	}
}
