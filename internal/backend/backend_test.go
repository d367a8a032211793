package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	werrors "github.com/warren-vcs/warren/internal/errors"
	"github.com/warren-vcs/warren/internal/registry"
	"github.com/warren-vcs/warren/internal/system"
)

// fakeGitRepo lays down just enough on disk for gitRepoAt to succeed.
func fakeGitRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	return dir
}

// fakeJJRepo lays down just enough on disk for jjRepoAt to succeed.
func fakeJJRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".jj", "repo"), 0755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestDetect(t *testing.T) {
	exec := system.NewMockExecutor()

	gitRepo := fakeGitRepo(t)
	if b := Detect(gitRepo, "/ws", exec); b == nil || b.Kind() != registry.KindLinkedTree {
		t.Errorf("Detect(git repo) = %v", b)
	}

	// jj repos also contain .git; jj must win
	jjRepo := fakeJJRepo(t)
	os.MkdirAll(filepath.Join(jjRepo, ".git"), 0755)
	if b := Detect(jjRepo, "/ws", exec); b == nil || b.Kind() != registry.KindVCSWorkspace {
		t.Errorf("Detect(jj repo) = %v, want jj backend", b)
	}

	if b := Detect(t.TempDir(), "/ws", exec); b != nil {
		t.Errorf("Detect(plain dir) = %v, want nil", b)
	}
}

func TestForKind(t *testing.T) {
	exec := system.NewMockExecutor()
	if b := ForKind(registry.KindLinkedTree, "/repo", "/ws", exec); b.Kind() != registry.KindLinkedTree {
		t.Error("ForKind(git-worktree) returned wrong backend")
	}
	if b := ForKind(registry.KindVCSWorkspace, "/repo", "/ws", exec); b.Kind() != registry.KindVCSWorkspace {
		t.Error("ForKind(jj) returned wrong backend")
	}
	if b := ForKind("cvs", "/repo", "/ws", exec); b != nil {
		t.Error("ForKind(unknown) should return nil")
	}
}

func TestGitBackend_Unavailable(t *testing.T) {
	exec := system.NewMockExecutor()
	exec.MissingBinaries["git"] = true

	b := NewGit(fakeGitRepo(t), exec)
	err := b.Available()
	if !errors.Is(err, werrors.ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestGitBackend_NotARepo(t *testing.T) {
	b := NewGit(t.TempDir(), system.NewMockExecutor())
	if err := b.Available(); !errors.Is(err, werrors.ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestGitBackend_Create_InvalidName(t *testing.T) {
	b := NewGit(fakeGitRepo(t), system.NewMockExecutor())
	if _, err := b.Create(context.Background(), "../evil", "main", "/tmp/dest"); err == nil {
		t.Error("invalid name should be rejected before any command runs")
	}
}

func TestGitBackend_Create_PathCollision(t *testing.T) {
	exec := system.NewMockExecutor()
	b := NewGit(fakeGitRepo(t), exec)

	dest := t.TempDir() // already exists
	_, err := b.Create(context.Background(), "feat-x", "main", dest)
	if !errors.Is(err, werrors.ErrPathCollision) {
		t.Errorf("expected ErrPathCollision, got %v", err)
	}
	if len(exec.Commands) != 0 {
		t.Errorf("no backend command should run on collision, ran %d", len(exec.Commands))
	}
}

func TestGitBackend_Create_RefNotFound(t *testing.T) {
	exec := system.NewMockExecutor()
	repo := fakeGitRepo(t)
	exec.AddResponse("git -C "+repo+" rev-parse --verify nonexistent^{commit}",
		[]byte("fatal: Needed a single revision"), &system.ExitError{Code: 128})

	b := NewGit(repo, exec)
	dest := filepath.Join(t.TempDir(), "feat-x")
	_, err := b.Create(context.Background(), "feat-x", "nonexistent", dest)
	if !errors.Is(err, werrors.ErrRefNotFound) {
		t.Errorf("expected ErrRefNotFound, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("no residue should exist at the destination")
	}
}

// residueExecutor drops a directory at dest when a command line matching
// trigger runs, reproducing the partial checkout a failed create leaves on
// disk after the collision precheck has already passed.
type residueExecutor struct {
	*system.MockExecutor
	trigger string
	dest    string
}

func (r *residueExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	if strings.Contains(line, r.trigger) {
		os.MkdirAll(r.dest, 0755)
	}
	return r.MockExecutor.Execute(ctx, name, args...)
}

func TestGitBackend_Create_FailureScrubsResidue(t *testing.T) {
	exec := system.NewMockExecutor()
	repo := fakeGitRepo(t)
	exec.AddResponse("git rev-parse", []byte("abc123\n"), nil)
	exec.AddResponse("git show-ref", nil, &system.ExitError{Code: 1})
	exec.AddResponse("git worktree", []byte("fatal: could not create leading directories"), &system.ExitError{Code: 128})

	dest := filepath.Join(t.TempDir(), "feat-x")
	b := NewGit(repo, &residueExecutor{MockExecutor: exec, trigger: "worktree add", dest: dest})

	if _, err := b.Create(context.Background(), "feat-x", "main", dest); err == nil {
		t.Fatal("Create should fail")
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("partial checkout should be removed on failure")
	}

	var sawPrune, sawBranchDelete bool
	for _, c := range exec.Commands {
		line := c.Line()
		if line == "git -C "+repo+" worktree prune" {
			sawPrune = true
		}
		if line == "git -C "+repo+" branch -D warren/feat-x" {
			sawBranchDelete = true
		}
	}
	if !sawPrune || !sawBranchDelete {
		t.Errorf("scrub should prune worktrees and delete the new branch; prune=%v branch=%v", sawPrune, sawBranchDelete)
	}
}

func TestGitBackend_Remove_NotOwned(t *testing.T) {
	exec := system.NewMockExecutor()
	repo := fakeGitRepo(t)
	exec.AddResponse("git worktree", []byte("worktree "+repo+"\nbranch refs/heads/main\n"), nil)

	b := NewGit(repo, exec)
	ws := &registry.Workspace{
		Name:        "feat-x",
		RootPath:    "/somewhere/else",
		BackendKind: registry.KindLinkedTree,
		Status:      registry.StatusActive,
	}
	err := b.Remove(context.Background(), ws)
	if !errors.Is(err, werrors.ErrNotOwned) {
		t.Errorf("expected ErrNotOwned, got %v", err)
	}
}

func TestGitBackend_List_ParsesWorktrees(t *testing.T) {
	exec := system.NewMockExecutor()
	repo := fakeGitRepo(t)
	porcelain := "worktree " + repo + "\nHEAD abc\nbranch refs/heads/main\n\n" +
		"worktree /state/workspaces/feat-x\nHEAD def\nbranch refs/heads/warren/feat-x\n\n" +
		"worktree /elsewhere/scratch\nHEAD 123\nbranch refs/heads/scratch\n"
	exec.AddResponse("git worktree", []byte(porcelain), nil)

	b := NewGit(repo, exec)
	listed, err := b.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("List returned %d workspaces, want 1 (only warren/ branches)", len(listed))
	}
	if listed[0].Name != "feat-x" || listed[0].RootPath != "/state/workspaces/feat-x" {
		t.Errorf("listed = %+v", listed[0])
	}
}

func TestClassifyGit(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   error
	}{
		{"collision", "fatal: '/tmp/x' already exists", werrors.ErrPathCollision},
		{"bad ref", "fatal: invalid reference: nope", werrors.ErrRefNotFound},
		{"unknown revision", "fatal: ambiguous argument: unknown revision or path", werrors.ErrRefNotFound},
		{"no repo", "fatal: not a git repository", werrors.ErrBackendUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyGit([]byte(tt.output), &system.ExitError{Code: 128})
			if !errors.Is(err, tt.want) {
				t.Errorf("classifyGit(%q) = %v, want %v", tt.output, err, tt.want)
			}
		})
	}
}

func TestJJBackend_Create_RefNotFound(t *testing.T) {
	exec := system.NewMockExecutor()
	repo := fakeJJRepo(t)
	exec.AddResponse("jj log", []byte(`Error: Revision "ghost" doesn't exist`), &system.ExitError{Code: 1})

	b := NewJJ(repo, "/ws", exec)
	_, err := b.Create(context.Background(), "feat-x", "ghost", filepath.Join(t.TempDir(), "feat-x"))
	if !errors.Is(err, werrors.ErrRefNotFound) {
		t.Errorf("expected ErrRefNotFound, got %v", err)
	}
}

func TestJJBackend_Create_FailureForgetsWorkspace(t *testing.T) {
	exec := system.NewMockExecutor()
	repo := fakeJJRepo(t)
	exec.AddResponse("jj workspace", []byte("Error: something failed"), &system.ExitError{Code: 1})

	dest := filepath.Join(t.TempDir(), "feat-x")
	b := NewJJ(repo, "/ws", &residueExecutor{MockExecutor: exec, trigger: "workspace add", dest: dest})

	if _, err := b.Create(context.Background(), "feat-x", "", dest); err == nil {
		t.Fatal("Create should fail")
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("partial checkout should be removed on failure")
	}

	var sawForget bool
	for _, c := range exec.Commands {
		if c.Line() == "jj workspace forget feat-x -R "+repo {
			sawForget = true
		}
	}
	if !sawForget {
		t.Error("failed create should forget the workspace")
	}
}

func TestJJBackend_Remove_NotOwned(t *testing.T) {
	exec := system.NewMockExecutor()
	repo := fakeJJRepo(t)
	exec.AddResponse("jj workspace", []byte("default: abc\n"), nil)

	b := NewJJ(repo, "/ws", exec)
	ws := &registry.Workspace{
		Name:        "feat-x",
		RootPath:    t.TempDir(),
		BackendKind: registry.KindVCSWorkspace,
		Status:      registry.StatusActive,
	}
	err := b.Remove(context.Background(), ws)
	if !errors.Is(err, werrors.ErrNotOwned) {
		t.Errorf("expected ErrNotOwned, got %v", err)
	}
}

func TestJJBackend_List_SkipsDefault(t *testing.T) {
	exec := system.NewMockExecutor()
	repo := fakeJJRepo(t)
	exec.AddResponse("jj workspace", []byte("default: abc (no description set)\nfeat-x: def (no description set)\n"), nil)

	b := NewJJ(repo, "/state/workspaces", exec)
	listed, err := b.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("List returned %d workspaces, want 1", len(listed))
	}
	if listed[0].Name != "feat-x" {
		t.Errorf("Name = %s", listed[0].Name)
	}
	if listed[0].RootPath != "/state/workspaces/feat-x" {
		t.Errorf("RootPath = %s", listed[0].RootPath)
	}
}

func TestClassifyJJ(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   error
	}{
		{"collision", "Error: Workspace named 'feat-x' already exists", werrors.ErrPathCollision},
		{"bad revision", `Error: Revision "ghost" doesn't exist`, werrors.ErrRefNotFound},
		{"no repo", "Error: There is no jj repo in \".\"", werrors.ErrBackendUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyJJ([]byte(tt.output), &system.ExitError{Code: 1})
			if !errors.Is(err, tt.want) {
				t.Errorf("classifyJJ(%q) = %v, want %v", tt.output, err, tt.want)
			}
		})
	}
}
