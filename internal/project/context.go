// Package project resolves the project root and the paths of the
// persisted state files. Components receive a Context instead of doing
// their own discovery.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

const (
	// DotDir is the marker directory identifying a devloop project.
	DotDir = ".devloop"

	statusDir = "status"

	// maxAscent bounds the upward walk during root discovery.
	maxAscent = 10
)

// Context carries the project root and the resolved locations of every
// persisted file. It is built once per invocation and passed into each
// component constructor.
type Context struct {
	Root string
}

// New returns a Context rooted at the given directory.
func New(root string) Context {
	return Context{Root: root}
}

// StatusDir returns the directory holding the persisted state files.
func (c Context) StatusDir() string {
	return filepath.Join(c.Root, DotDir, statusDir)
}

// ConfigPath returns the tool configuration file path.
func (c Context) ConfigPath() string {
	return filepath.Join(c.Root, DotDir, "config.yaml")
}

// MemoryPath returns the state record file path.
func (c Context) MemoryPath() string {
	return filepath.Join(c.StatusDir(), "memory.json")
}

// RoadmapPath returns the checklist document path.
func (c Context) RoadmapPath() string {
	return filepath.Join(c.StatusDir(), "ROADMAP.md")
}

// ContractPath returns the API contract file path.
func (c Context) ContractPath() string {
	return filepath.Join(c.StatusDir(), "api_contract.yaml")
}

// ErrorHistoryPath returns the error history file path.
func (c Context) ErrorHistoryPath() string {
	return filepath.Join(c.StatusDir(), "error_history.json")
}

// DecisionsLogPath returns the decision log file path.
func (c Context) DecisionsLogPath() string {
	return filepath.Join(c.StatusDir(), "decisions.log")
}

// TasksDir returns the directory holding per-task specification files.
func (c Context) TasksDir() string {
	return filepath.Join(c.StatusDir(), "tasks")
}

// TaskSpecPath locates the specification document for a task id using
// the TASK-<id>_*.md filename convention. Returns an error when no file
// matches.
func (c Context) TaskSpecPath(taskID string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(c.TasksDir(), taskID+"_*.md"))
	if err != nil {
		return "", fmt.Errorf("failed to glob task specs: %w", err)
	}
	if len(matches) == 0 {
		// Accept the bare form too: TASK-001.md.
		bare := filepath.Join(c.TasksDir(), taskID+".md")
		if _, statErr := os.Stat(bare); statErr == nil {
			return bare, nil
		}
		return "", fmt.Errorf("no spec file for %s", taskID)
	}
	return matches[0], nil
}

// FindRoot locates the project root for the given working directory.
//
// Search order: the directory itself, the enclosing git worktree root,
// then upward traversal of parents. A directory qualifies when it
// contains the .devloop marker. When nothing qualifies the git worktree
// root is used if there is one, otherwise the working directory itself.
func FindRoot(cwd string) string {
	if hasMarker(cwd) {
		return cwd
	}

	gitRoot := gitWorktreeRoot(cwd)
	if gitRoot != "" && hasMarker(gitRoot) {
		return gitRoot
	}

	dir := cwd
	for i := 0; i < maxAscent; i++ {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
		if hasMarker(dir) {
			return dir
		}
	}

	if gitRoot != "" {
		return gitRoot
	}
	return cwd
}

func hasMarker(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, DotDir))
	return err == nil && info.IsDir()
}

func gitWorktreeRoot(cwd string) string {
	repo, err := git.PlainOpenWithOptions(cwd, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	wt, err := repo.Worktree()
	if err != nil {
		return ""
	}
	return wt.Filesystem.Root()
}
