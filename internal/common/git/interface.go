package git

// Executor defines the narrow interface for git operations the pipeline needs.
// The orchestrator only hands off artifacts after a fully successful run, so the
// surface is deliberately small. This interface allows mocking in tests.
type Executor interface {
	// Add stages files for commit
	Add(paths ...string) error

	// Commit creates a git commit with the specified message and author
	Commit(message, user, email string) error

	// Push pushes commits to the remote repository
	Push() error

	// WorkDir returns the working directory of the git repository
	WorkDir() string
}
