// Package repourl parses GitHub repository URLs submitted by users.
package repourl

import (
	"regexp"
	"strings"

	"github.com/codebaseshow/codebaseshow/internal/models"
)

var repositoryURLPattern = regexp.MustCompile(`^https://github\.com/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)(.+)?$`)

// Location identifies a repository on GitHub.
// IsRoot is true when the URL points at the repository itself rather
// than a sub-path inside it; star counts are only recorded for root URLs.
type Location struct {
	Owner  string
	Name   string
	IsRoot bool
}

// Parse validates a repository URL and extracts its owner and name.
func Parse(url string) (Location, error) {
	if !strings.HasPrefix(url, "https://github.com/") {
		return Location{}, models.NewError(
			models.ErrCodeInvalidRepositoryURL,
			"not a GitHub URL",
			"Sorry, only GitHub repositories are supported.",
		)
	}

	url = strings.TrimSuffix(url, "/")

	matches := repositoryURLPattern.FindStringSubmatch(url)
	if matches == nil {
		return Location{}, models.NewError(
			models.ErrCodeInvalidRepositoryURL,
			"invalid repository URL",
			"The specified repository URL is invalid.",
		)
	}

	return Location{
		Owner:  matches[1],
		Name:   matches[2],
		IsRoot: matches[3] == "",
	}, nil
}
