package system

import (
	"context"
	"strings"
	"sync"
)

// MockExecutor implements CommandExecutor for testing.
type MockExecutor struct {
	mu sync.Mutex

	// Commands records all executed commands for verification.
	Commands []MockCommand

	// Responses maps command patterns to responses. Lookup tries the full
	// command line first, then "name subcommand", then the bare name.
	Responses map[string]MockResponse

	// ShellResponses maps directive command text to responses for
	// ExecuteShell calls.
	ShellResponses map[string]MockResponse

	// DefaultResponse is used when no matching response is found.
	DefaultResponse MockResponse

	// MissingBinaries makes LookPath fail for the listed names.
	MissingBinaries map[string]bool
}

// MockCommand records an executed command.
type MockCommand struct {
	Name    string
	Args    []string
	Dir     string // working directory for shell commands
	Command string // command text for shell commands
}

// Line returns the full command line for matching in assertions.
func (c MockCommand) Line() string {
	if c.Command != "" {
		return c.Command
	}
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// MockResponse defines the response for a command.
type MockResponse struct {
	Output []byte
	Err    error
}

// NewMockExecutor creates a new MockExecutor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		Commands:        make([]MockCommand, 0),
		Responses:       make(map[string]MockResponse),
		ShellResponses:  make(map[string]MockResponse),
		MissingBinaries: make(map[string]bool),
	}
}

// AddResponse adds a response for a command pattern.
func (m *MockExecutor) AddResponse(pattern string, output []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[pattern] = MockResponse{Output: output, Err: err}
}

// AddShellResponse adds a response for a shell command text.
func (m *MockExecutor) AddShellResponse(command string, output []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ShellResponses[command] = MockResponse{Output: output, Err: err}
}

func (m *MockExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, MockCommand{Name: name, Args: args})

	full := strings.Join(append([]string{name}, args...), " ")
	if resp, ok := m.Responses[full]; ok {
		return resp.Output, resp.Err
	}
	// Fall back to "name <arg>" so patterns can target a subcommand even
	// when global flags precede it (e.g. "git worktree" for
	// "git -C /repo worktree add").
	for _, arg := range args {
		if resp, ok := m.Responses[name+" "+arg]; ok {
			return resp.Output, resp.Err
		}
	}
	if resp, ok := m.Responses[name]; ok {
		return resp.Output, resp.Err
	}

	return m.DefaultResponse.Output, m.DefaultResponse.Err
}

func (m *MockExecutor) ExecuteShell(ctx context.Context, shell, dir, command string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, MockCommand{Name: shell, Args: []string{"-c", command}, Dir: dir, Command: command})

	if resp, ok := m.ShellResponses[command]; ok {
		return resp.Output, resp.Err
	}

	return m.DefaultResponse.Output, m.DefaultResponse.Err
}

func (m *MockExecutor) LookPath(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.MissingBinaries[name] {
		return "", &ExitError{Code: 127}
	}
	return "/usr/bin/" + name, nil
}

// LastCommand returns the most recently executed command.
func (m *MockExecutor) LastCommand() (MockCommand, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Commands) == 0 {
		return MockCommand{}, false
	}
	return m.Commands[len(m.Commands)-1], true
}

// ShellCommands returns the command texts of all ExecuteShell calls in order.
func (m *MockExecutor) ShellCommands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.Commands {
		if c.Command != "" {
			out = append(out, c.Command)
		}
	}
	return out
}

// Reset clears all recorded commands.
func (m *MockExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = make([]MockCommand, 0)
}
