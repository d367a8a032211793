package executor

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/warren-vcs/warren/internal/config"
	"github.com/warren-vcs/warren/internal/directive"
	"github.com/warren-vcs/warren/internal/errors"
	"github.com/warren-vcs/warren/internal/registry"
	"github.com/warren-vcs/warren/internal/system"
)

func testWorkspace(t *testing.T) *registry.Workspace {
	t.Helper()
	return &registry.Workspace{
		Name:        "feat-x",
		RootPath:    t.TempDir(),
		BackendKind: registry.KindLinkedTree,
		Status:      registry.StatusActive,
	}
}

func testSet(trigger directive.Trigger, directives ...directive.Directive) *directive.Set {
	return &directive.Set{Trigger: trigger, Directives: directives}
}

func onCreate(id, command string) directive.Directive {
	return directive.Directive{
		ID:          id,
		Trigger:     directive.TriggerOnCreate,
		Command:     command,
		SourceLayer: directive.LayerRepository,
	}
}

func TestRun_EmptySet(t *testing.T) {
	mock := system.NewMockExecutor()
	e := NewWithExecutor(config.DefaultSettings(), mock)

	result, err := e.Run(context.Background(), testWorkspace(t), testSet(directive.TriggerOnCreate))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.Succeeded || result.FailedIndex != -1 {
		t.Errorf("empty set should succeed, got %+v", result)
	}
	if len(mock.Commands) != 0 {
		t.Errorf("no commands expected, got %v", mock.Commands)
	}
}

func TestRun_SequentialOrder(t *testing.T) {
	mock := system.NewMockExecutor()
	e := NewWithExecutor(config.DefaultSettings(), mock)
	ws := testWorkspace(t)

	set := testSet(directive.TriggerOnCreate,
		onCreate("first", "echo 1"),
		onCreate("second", "echo 2"),
		onCreate("third", "echo 3"),
	)

	result, err := e.Run(context.Background(), ws, set)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.Succeeded {
		t.Errorf("run should succeed: %+v", result)
	}

	want := []string{"echo 1", "echo 2", "echo 3"}
	if got := mock.ShellCommands(); !reflect.DeepEqual(got, want) {
		t.Errorf("commands = %v, want %v", got, want)
	}
}

func TestRun_WorkingDirInsideRoot(t *testing.T) {
	mock := system.NewMockExecutor()
	e := NewWithExecutor(config.DefaultSettings(), mock)
	ws := testWorkspace(t)

	d := onCreate("build", "make")
	d.WorkingDir = "services/api"

	if _, err := e.Run(context.Background(), ws, testSet(directive.TriggerOnCreate, d)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	cmd, ok := mock.LastCommand()
	if !ok {
		t.Fatal("no command recorded")
	}
	want := filepath.Join(ws.RootPath, "services", "api")
	if cmd.Dir != want {
		t.Errorf("Dir = %s, want %s", cmd.Dir, want)
	}
}

func TestRun_DefaultWorkingDirIsRoot(t *testing.T) {
	mock := system.NewMockExecutor()
	e := NewWithExecutor(config.DefaultSettings(), mock)
	ws := testWorkspace(t)

	if _, err := e.Run(context.Background(), ws, testSet(directive.TriggerOnCreate, onCreate("setup", "make setup"))); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	cmd, _ := mock.LastCommand()
	if cmd.Dir != ws.RootPath {
		t.Errorf("Dir = %s, want workspace root %s", cmd.Dir, ws.RootPath)
	}
}

func TestRun_PathEscapeAborts(t *testing.T) {
	mock := system.NewMockExecutor()
	e := NewWithExecutor(config.DefaultSettings(), mock)
	ws := testWorkspace(t)

	escape := onCreate("escape", "rm -rf .")
	escape.WorkingDir = "../outside"

	result, err := e.Run(context.Background(), ws, testSet(directive.TriggerOnCreate,
		escape,
		onCreate("never", "echo never"),
	))

	if !errors.Is(err, errors.ErrPathEscape) {
		t.Errorf("expected ErrPathEscape, got %v", err)
	}
	if result.Succeeded || result.FailedIndex != 0 {
		t.Errorf("result = %+v, want failure at index 0", result)
	}
	if len(mock.Commands) != 0 {
		t.Errorf("nothing should have executed, got %v", mock.ShellCommands())
	}
}

func TestRun_FailureAbortsRemainder(t *testing.T) {
	mock := system.NewMockExecutor()
	mock.AddShellResponse("make broken", []byte("make: *** [all] Error 2"), &system.ExitError{Code: 2})
	e := NewWithExecutor(config.DefaultSettings(), mock)
	ws := testWorkspace(t)

	result, err := e.Run(context.Background(), ws, testSet(directive.TriggerOnCreate,
		onCreate("ok", "echo ok"),
		onCreate("broken", "make broken"),
		onCreate("never", "echo never"),
	))

	if err == nil {
		t.Fatal("expected error from failing directive")
	}
	if result.Succeeded || result.FailedIndex != 1 {
		t.Errorf("result = %+v, want failure at index 1", result)
	}
	if len(result.Results) != 2 {
		t.Errorf("got %d results, want 2 (third directive must not run)", len(result.Results))
	}
	if got := mock.ShellCommands(); len(got) != 2 {
		t.Errorf("executed %v, want only first two", got)
	}
	if out := result.Results[1].Output; out != "make: *** [all] Error 2" {
		t.Errorf("Output = %q, want captured failure output", out)
	}
}

func TestRun_ContinueOnError(t *testing.T) {
	mock := system.NewMockExecutor()
	mock.AddShellResponse("lint", nil, &system.ExitError{Code: 1})
	e := NewWithExecutor(config.DefaultSettings(), mock)
	ws := testWorkspace(t)

	tolerated := onCreate("lint", "lint")
	tolerated.ContinueOnError = true

	result, err := e.Run(context.Background(), ws, testSet(directive.TriggerOnCreate,
		tolerated,
		onCreate("after", "echo after"),
	))
	if err != nil {
		t.Fatalf("continue_on_error failure must not abort the run: %v", err)
	}
	if !result.Succeeded || result.FailedIndex != -1 {
		t.Errorf("result = %+v, want overall success", result)
	}
	if result.Results[0].Err == nil {
		t.Error("tolerated failure should still be recorded")
	}
	if len(mock.ShellCommands()) != 2 {
		t.Errorf("second directive should have run, got %v", mock.ShellCommands())
	}
}

// blockingExecutor waits for the context before returning, standing in for a
// directive that never finishes on its own.
type blockingExecutor struct {
	system.CommandExecutor
}

func (b *blockingExecutor) ExecuteShell(ctx context.Context, shell, dir, command string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRun_Timeout(t *testing.T) {
	settings := config.DefaultSettings()
	settings.DefaultTimeout = config.Duration(20 * time.Millisecond)
	e := NewWithExecutor(settings, &blockingExecutor{})
	ws := testWorkspace(t)

	result, err := e.Run(context.Background(), ws, testSet(directive.TriggerOnCreate, onCreate("hang", "sleep 600")))

	if !errors.Is(err, errors.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
	if len(result.Results) != 1 || !result.Results[0].TimedOut {
		t.Errorf("result = %+v, want TimedOut", result)
	}
}

// cancelAfterFirst cancels the run's context once the first command finishes.
type cancelAfterFirst struct {
	*system.MockExecutor
	cancel context.CancelFunc
}

func (c *cancelAfterFirst) ExecuteShell(ctx context.Context, shell, dir, command string) ([]byte, error) {
	out, err := c.MockExecutor.ExecuteShell(ctx, shell, dir, command)
	c.cancel()
	return out, err
}

func TestRun_CancellationBetweenDirectives(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mock := system.NewMockExecutor()
	e := NewWithExecutor(config.DefaultSettings(), &cancelAfterFirst{MockExecutor: mock, cancel: cancel})
	ws := testWorkspace(t)

	result, err := e.Run(ctx, ws, testSet(directive.TriggerOnRemove,
		onCreate("first", "echo 1"),
		onCreate("second", "echo 2"),
	))

	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if result.FailedIndex != 1 {
		t.Errorf("FailedIndex = %d, want 1 (abort before second directive)", result.FailedIndex)
	}
	if got := mock.ShellCommands(); len(got) != 1 {
		t.Errorf("executed %v, want only the first directive", got)
	}
}

func TestRunCommand(t *testing.T) {
	mock := system.NewMockExecutor()
	mock.AddShellResponse("git status", []byte("clean"), nil)
	e := NewWithExecutor(config.DefaultSettings(), mock)
	ws := testWorkspace(t)

	res, err := e.RunCommand(context.Background(), ws, "git status")
	if err != nil {
		t.Fatalf("RunCommand failed: %v", err)
	}
	if res.Output != "clean" {
		t.Errorf("Output = %q, want %q", res.Output, "clean")
	}

	cmd, _ := mock.LastCommand()
	if cmd.Dir != ws.RootPath {
		t.Errorf("Dir = %s, want workspace root", cmd.Dir)
	}
}

func TestRunCommand_Failure(t *testing.T) {
	mock := system.NewMockExecutor()
	mock.AddShellResponse("false", nil, &system.ExitError{Code: 1})
	e := NewWithExecutor(config.DefaultSettings(), mock)

	res, err := e.RunCommand(context.Background(), testWorkspace(t), "false")
	if err == nil {
		t.Fatal("expected error from failing command")
	}
	if res.Err == nil {
		t.Error("result should carry the error")
	}
}

func TestResolveWorkDir(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name       string
		workingDir string
		want       string
		wantErr    bool
	}{
		{"empty", "", root, false},
		{"dot", ".", root, false},
		{"nested", "pkg/api", filepath.Join(root, "pkg", "api"), false},
		{"cleans dot segments", "pkg/./api", filepath.Join(root, "pkg", "api"), false},
		{"parent traversal", "../elsewhere", "", true},
		{"nested traversal", "pkg/../../elsewhere", "", true},
		{"absolute", "/etc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveWorkDir(root, tt.workingDir)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrPathEscape) {
					t.Errorf("ResolveWorkDir(%q) error = %v, want ErrPathEscape", tt.workingDir, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveWorkDir(%q) failed: %v", tt.workingDir, err)
			}
			if got != tt.want {
				t.Errorf("ResolveWorkDir(%q) = %s, want %s", tt.workingDir, got, tt.want)
			}
		})
	}
}
