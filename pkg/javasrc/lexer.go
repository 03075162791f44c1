package javasrc

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokSymbol
	tokLiteral
	tokDoc
)

type token struct {
	kind tokenKind
	text string
}

func (t token) is(s string) bool { return t.kind != tokDoc && t.kind != tokLiteral && t.text == s }

// tokenize splits Java source into identifiers, single character symbols,
// literals and javadoc comments. Other comments are dropped.
func tokenize(src string) []token {
	var toks []token
	r := []rune(src)
	for i := 0; i < len(r); {
		c := r[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '/' && i+1 < len(r) && r[i+1] == '/':
			for i < len(r) && r[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(r) && r[i+1] == '*':
			j := i + 2
			for j+1 < len(r) && !(r[j] == '*' && r[j+1] == '/') {
				j++
			}
			j = min(j+2, len(r))
			body := string(r[i:j])
			i = j
			if strings.HasPrefix(body, "/**") && body != "/**/" {
				toks = append(toks, token{kind: tokDoc, text: body})
			}
		case c == '"' && i+2 < len(r) && r[i+1] == '"' && r[i+2] == '"':
			j := i + 3
			for j+2 < len(r) && !(r[j] == '"' && r[j+1] == '"' && r[j+2] == '"' && r[j-1] != '\\') {
				j++
			}
			j = min(j+3, len(r))
			toks = append(toks, token{kind: tokLiteral, text: string(r[i:j])})
			i = j
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(r) && r[j] != c && r[j] != '\n' {
				if r[j] == '\\' {
					j++
				}
				j++
			}
			j = min(j+1, len(r))
			toks = append(toks, token{kind: tokLiteral, text: string(r[i:j])})
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < len(r) && isIdentPart(r[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: string(r[i:j])})
			i = j
		case unicode.IsDigit(c):
			j := i + 1
			for j < len(r) && (isIdentPart(r[j]) || r[j] == '.') {
				j++
			}
			toks = append(toks, token{kind: tokLiteral, text: string(r[i:j])})
			i = j
		case c == '.' && i+2 < len(r) && r[i+1] == '.' && r[i+2] == '.':
			toks = append(toks, token{kind: tokSymbol, text: "..."})
			i += 3
		default:
			toks = append(toks, token{kind: tokSymbol, text: string(c)})
			i++
		}
	}
	return toks
}

func isIdentStart(c rune) bool { return c == '_' || c == '$' || unicode.IsLetter(c) }
func isIdentPart(c rune) bool  { return isIdentStart(c) || unicode.IsDigit(c) }

// joinType renders type tokens the way they are written in source:
// Map<String, List<Integer>>, int[], ? extends T.
func joinType(toks []token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 {
			prev := toks[i-1]
			if prev.kind == tokIdent && t.kind == tokIdent || prev.is(",") || prev.is("?") && t.kind == tokIdent {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.text)
	}
	return b.String()
}

// DocDescription returns the text of a javadoc comment before its first
// block tag
func DocDescription(doc string) string {
	doc = strings.TrimSuffix(strings.TrimPrefix(doc, "/**"), "*/")
	var lines []string
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		if strings.HasPrefix(line, "@") {
			break
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
