package project

import (
	"errors"
	"fmt"
	"sort"

	git "github.com/go-git/go-git/v5"
)

// StagedFile is one entry of the index that differs from HEAD.
type StagedFile struct {
	Path   string
	Change string // "added", "modified", "deleted", "renamed", "copied"
}

// StagedFiles lists the files currently staged for commit, in path
// order. Returns an empty slice when the root is not a git repository.
func (c Context) StagedFiles() ([]StagedFile, error) {
	repo, err := git.PlainOpenWithOptions(c.Root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}

	var staged []StagedFile
	for path, st := range status {
		change := stagingChange(st.Staging)
		if change == "" {
			continue
		}
		staged = append(staged, StagedFile{Path: path, Change: change})
	}
	sort.Slice(staged, func(i, j int) bool { return staged[i].Path < staged[j].Path })
	return staged, nil
}

func stagingChange(code git.StatusCode) string {
	switch code {
	case git.Added:
		return "added"
	case git.Modified:
		return "modified"
	case git.Deleted:
		return "deleted"
	case git.Renamed:
		return "renamed"
	case git.Copied:
		return "copied"
	default:
		return ""
	}
}
