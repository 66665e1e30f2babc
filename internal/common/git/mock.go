package git

// MockRunner implements Executor for testing.
// Each method can be configured with a custom function to control behavior,
// and all calls are recorded so tests can assert the hand-off sequence.
type MockRunner struct {
	AddFunc    func(paths ...string) error
	CommitFunc func(message, user, email string) error
	PushFunc   func() error

	// Calls records method invocations in order ("add", "commit", "push")
	Calls []string
	// AddedPaths collects every path passed to Add
	AddedPaths []string
	// CommitMessages collects every commit message
	CommitMessages []string

	workDir string
}

// NewMockRunner creates a new MockRunner with the specified working directory
func NewMockRunner(workDir string) *MockRunner {
	return &MockRunner{
		workDir: workDir,
	}
}

// Add stages files for commit
func (m *MockRunner) Add(paths ...string) error {
	m.Calls = append(m.Calls, "add")
	m.AddedPaths = append(m.AddedPaths, paths...)
	if m.AddFunc != nil {
		return m.AddFunc(paths...)
	}
	return nil
}

// Commit creates a git commit with the specified message and author
func (m *MockRunner) Commit(message, user, email string) error {
	m.Calls = append(m.Calls, "commit")
	m.CommitMessages = append(m.CommitMessages, message)
	if m.CommitFunc != nil {
		return m.CommitFunc(message, user, email)
	}
	return nil
}

// Push pushes commits to the remote repository
func (m *MockRunner) Push() error {
	m.Calls = append(m.Calls, "push")
	if m.PushFunc != nil {
		return m.PushFunc()
	}
	return nil
}

// WorkDir returns the working directory of the mock
func (m *MockRunner) WorkDir() string {
	return m.workDir
}
