package docs

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/plumbing/storer"
)

// DefaultMaxCommits bounds the history read for a changelog
const DefaultMaxCommits = 100

// changelog sections in output order
var categories = []string{
	"Features",
	"Bug Fixes",
	"Performance",
	"Documentation",
	"Refactoring",
	"Testing",
	"Build",
	"Other",
}

var conventionalPrefix = regexp.MustCompile(`^(feat|fix|docs|style|refactor|perf|test|build|ci|chore)(\([^)]+\))?:\s*`)

type changelogEntry struct {
	Hash    string
	Message string
}

type changelogSection struct {
	Name    string
	Entries []changelogEntry
}

// GenerateChangelog renders a Keep a Changelog document from the newest
// maxCommits commits reachable from HEAD of the repository at root
func GenerateChangelog(root string, maxCommits int) (string, error) {
	if !exists(filepath.Join(root, ".git")) {
		return "", fmt.Errorf("No Git repository found at: %s", root)
	}
	if maxCommits <= 0 {
		maxCommits = DefaultMaxCommits
	}

	repo, err := git.PlainOpen(root)
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}
	commits, err := repo.Log(&git.LogOptions{})
	if err != nil {
		return "", fmt.Errorf("read history: %w", err)
	}
	defer commits.Close()

	grouped := make(map[string][]changelogEntry, len(categories))
	read := 0
	err = commits.ForEach(func(c *object.Commit) error {
		if read >= maxCommits {
			return storer.ErrStop
		}
		read++
		subject, _, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
		hash := c.Hash.String()
		category := categorize(subject)
		grouped[category] = append(grouped[category], changelogEntry{Hash: hash[:min(7, len(hash))], Message: cleanMessage(subject)})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("read history: %w", err)
	}

	var sections []changelogSection
	for _, name := range categories {
		if entries := grouped[name]; len(entries) > 0 {
			sections = append(sections, changelogSection{Name: name, Entries: entries})
		}
	}
	return render("changelog.md.tmpl", sections)
}

// categorize files a commit subject under a changelog section. Conventional
// prefixes win, then keywords anywhere in the subject.
func categorize(subject string) string {
	lower := strings.ToLower(subject)
	hasPrefix := func(prefixes ...string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(lower, p) {
				return true
			}
		}
		return false
	}
	contains := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}

	switch {
	case hasPrefix("feat:", "feature:") || contains("add "):
		return "Features"
	case hasPrefix("fix:") || contains("bug", "issue"):
		return "Bug Fixes"
	case hasPrefix("perf:") || contains("performance", "optimize"):
		return "Performance"
	case hasPrefix("docs:") || contains("documentation", "readme"):
		return "Documentation"
	case contains("refactor"):
		return "Refactoring"
	case contains("test"):
		return "Testing"
	case hasPrefix("build:", "chore:") || contains("dependency"):
		return "Build"
	default:
		return "Other"
	}
}

// cleanMessage drops a conventional commit prefix and capitalizes the rest
func cleanMessage(subject string) string {
	msg := conventionalPrefix.ReplaceAllString(subject, "")
	r, size := utf8.DecodeRuneInString(msg)
	if size == 0 {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
