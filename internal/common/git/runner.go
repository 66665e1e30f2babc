package git

import (
	"bytes"
	"errors"
	"strings"

	"os/exec"
)

var (
	// ErrGitCommand is returned when a git command exits non-zero
	ErrGitCommand = errors.New("git command failed")
)

// Runner executes git commands in a specific working directory
type Runner struct {
	workDir string
}

// NewRunner creates a new Runner for the specified working directory
func NewRunner(workDir string) *Runner {
	return &Runner{
		workDir: workDir,
	}
}

// WorkDir returns the working directory of the Runner
func (g *Runner) WorkDir() string {
	return g.workDir
}

// runCommand executes a git command and returns stdout, stderr, and any error
func (g *Runner) runCommand(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.workDir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		// Wrap the error with stderr for context
		if stderr != "" {
			err = errors.Join(ErrGitCommand, errors.New(strings.TrimSpace(stderr)))
		}
	}

	return stdout, stderr, err
}

// Add stages files for commit
func (g *Runner) Add(paths ...string) error {
	args := append([]string{"add"}, paths...)
	_, _, err := g.runCommand(args...)
	return err
}

// Commit creates a git commit with the specified message and author
func (g *Runner) Commit(message, user, email string) error {
	args := []string{"commit", "-m", message}
	if user != "" && email != "" {
		args = append(args, "--author", user+" <"+email+">")
	}
	_, _, err := g.runCommand(args...)
	return err
}

// Push pushes commits to the remote repository
func (g *Runner) Push() error {
	_, _, err := g.runCommand("push")
	return err
}
