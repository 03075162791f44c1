package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRepository commits one file per message, oldest first
func newRepository(t *testing.T, messages ...string) (string, []string) {
	t.Helper()
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	worktree, err := repo.Worktree()
	require.NoError(t, err)

	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var hashes []string
	for i, msg := range messages {
		name := fmt.Sprintf("file%d.txt", i)
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(msg), 0o644))
		_, err := worktree.Add(name)
		require.NoError(t, err)

		hash, err := worktree.Commit(msg, &git.CommitOptions{
			Author: &object.Signature{Name: "Dev", Email: "dev@example.com", When: when.Add(time.Duration(i) * time.Minute)},
		})
		require.NoError(t, err)
		hashes = append(hashes, hash.String()[:7])
	}
	return root, hashes
}

func TestGenerateChangelog(t *testing.T) {
	root, hashes := newRepository(t,
		"feat(cart): support coupons",
		"fix: null total on empty cart",
		"Optimize price lookup",
		"docs: describe checkout\n\nLonger body mentioning a bug",
		"chore: bump junit",
		"Initial import",
	)

	changelog, err := GenerateChangelog(root, 0)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(changelog, "# Changelog\n"))
	assert.Contains(t, changelog, "## [Unreleased]\n\n### Bug Fixes\n")
	assert.Contains(t, changelog, "### Bug Fixes\n\n- Null total on empty cart (["+hashes[1]+"])\n")
	assert.Contains(t, changelog, "### Performance\n\n- Optimize price lookup (["+hashes[2]+"])\n")
	assert.Contains(t, changelog, "### Documentation\n\n- Describe checkout (["+hashes[3]+"])\n")
	assert.Contains(t, changelog, "### Build\n\n- Bump junit (["+hashes[4]+"])\n")
	assert.Contains(t, changelog, "### Other\n\n- Initial import (["+hashes[5]+"])\n- Support coupons (["+hashes[0]+"])\n")
	assert.NotContains(t, changelog, "### Features")
	assert.Contains(t, changelog, "## [Version] - YYYY-MM-DD")
	assert.Less(t, strings.Index(changelog, "### Bug Fixes"), strings.Index(changelog, "### Performance"))
}

func TestGenerateChangelogMaxCommits(t *testing.T) {
	root, hashes := newRepository(t, "add login page", "add logout page", "add profile page")

	changelog, err := GenerateChangelog(root, 2)
	require.NoError(t, err)

	assert.Contains(t, changelog, "### Features\n\n- Add profile page (["+hashes[2]+"])\n- Add logout page (["+hashes[1]+"])\n\n")
	assert.NotContains(t, changelog, hashes[0])
}

func TestGenerateChangelogWithoutRepository(t *testing.T) {
	root := t.TempDir()
	_, err := GenerateChangelog(root, 10)
	assert.EqualError(t, err, "No Git repository found at: "+root)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"feat: wishlist", "Features"},
		{"Feature: wishlist", "Features"},
		{"Add wishlist", "Features"},
		{"fix: rounding", "Bug Fixes"},
		{"Resolve issue with totals", "Bug Fixes"},
		{"perf: cache prices", "Performance"},
		{"Update README", "Documentation"},
		{"Refactor cart service", "Refactoring"},
		{"More tests for cart", "Testing"},
		{"build: maven 3.9", "Build"},
		{"Bump dependency versions", "Build"},
		{"Release 1.2", "Other"},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.want, categorize(tt.subject))
		})
	}
}

func TestCleanMessage(t *testing.T) {
	assert.Equal(t, "Support coupons", cleanMessage("feat(cart): support coupons"))
	assert.Equal(t, "Élan", cleanMessage("style: élan"))
	assert.Equal(t, "", cleanMessage("ci: "))
	assert.Equal(t, "Feature: keep", cleanMessage("feature: keep"))
}
