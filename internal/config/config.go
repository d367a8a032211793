package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DirectivesFileName is the directive file name for the global and
	// repository layers.
	DirectivesFileName = "directives.toml"

	// RepoConfigDirName is the per-repository configuration directory.
	RepoConfigDirName = ".warren"

	// WorkspaceDirectivesFileName is the workspace-local directive layer,
	// kept distinct from the repository layer so a checkout of the
	// repository file does not shadow per-workspace customization.
	WorkspaceDirectivesFileName = "local.toml"

	// SettingsFileName is the global settings file.
	SettingsFileName = "config.toml"

	// RegistryFileName is the registry snapshot file under the state dir.
	RegistryFileName = "registry.json"
)

// workspaceNameRegex validates workspace names.
// Names must start with a letter or digit, followed by letters, digits,
// underscores, hyphens, or dots. Maximum length is 100 characters so derived
// branch names stay within common ref-name limits.
var workspaceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,99}$`)

// ValidateWorkspaceName checks if a workspace name is valid.
// Valid names:
//   - Start with a letter or digit
//   - Contain only letters, digits, underscores, hyphens, or dots
//   - Are between 1 and 100 characters long
//   - Do not contain path separators or special characters
func ValidateWorkspaceName(name string) error {
	if name == "" {
		return fmt.Errorf("workspace name cannot be empty")
	}

	if !workspaceNameRegex.MatchString(name) {
		return fmt.Errorf("invalid workspace name %q: must start with a letter or digit, contain only letters, digits, underscores, hyphens, or dots, and be at most 100 characters", name)
	}

	return nil
}

// SafePath validates that a constructed path stays within the base directory.
// This prevents path traversal where names like "../../../etc/passwd"
// could escape the intended directory.
func SafePath(baseDir, name, suffix string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("name cannot be an absolute path")
	}

	if filepath.Dir(name) != "." {
		return "", fmt.Errorf("name cannot contain path separators")
	}

	path := filepath.Join(baseDir, name+suffix)

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("invalid base directory: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	// Separator suffix prevents prefix confusion (/var/lib/warren vs /var/lib/warren-evil)
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return "", fmt.Errorf("path escapes base directory")
	}

	return path, nil
}

// Paths holds the configured filesystem layout.
type Paths struct {
	// ConfigDir holds the global settings and global directive layer.
	ConfigDir string

	// StateDir holds the registry snapshot, locks, and audit logs.
	StateDir string

	// WorkspacesDir is the default parent directory for created checkouts.
	WorkspacesDir string

	// LocksDir holds per-workspace advisory lock files.
	LocksDir string
}

// DefaultPaths resolves the path layout from XDG environment variables,
// falling back to ~/.config/warren and ~/.local/state/warren.
func DefaultPaths() *Paths {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	configRoot := os.Getenv("XDG_CONFIG_HOME")
	if configRoot == "" {
		configRoot = filepath.Join(home, ".config")
	}
	stateRoot := os.Getenv("XDG_STATE_HOME")
	if stateRoot == "" {
		stateRoot = filepath.Join(home, ".local", "state")
	}

	stateDir := filepath.Join(stateRoot, "warren")
	return &Paths{
		ConfigDir:     filepath.Join(configRoot, "warren"),
		StateDir:      stateDir,
		WorkspacesDir: filepath.Join(stateDir, "workspaces"),
		LocksDir:      filepath.Join(stateDir, "locks"),
	}
}

// RegistryPath returns the registry snapshot file path.
func (p *Paths) RegistryPath() string {
	return filepath.Join(p.StateDir, RegistryFileName)
}

// GlobalDirectivesPath returns the global directive layer file path.
func (p *Paths) GlobalDirectivesPath() string {
	return filepath.Join(p.ConfigDir, DirectivesFileName)
}

// SettingsPath returns the global settings file path.
func (p *Paths) SettingsPath() string {
	return filepath.Join(p.ConfigDir, SettingsFileName)
}

// LockPath returns the advisory lock file path for a workspace name.
func (p *Paths) LockPath(name string) (string, error) {
	return SafePath(p.LocksDir, name, ".lock")
}

// EnsureDirs creates the state directories if missing.
func (p *Paths) EnsureDirs() error {
	for _, dir := range []string{p.StateDir, p.WorkspacesDir, p.LocksDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// RepoDirectivesPath returns the repository-layer directive file for a repo root.
func RepoDirectivesPath(repoPath string) string {
	return filepath.Join(repoPath, RepoConfigDirName, DirectivesFileName)
}

// WorkspaceDirectivesPath returns the workspace-layer directive file for a
// workspace root.
func WorkspaceDirectivesPath(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, RepoConfigDirName, WorkspaceDirectivesFileName)
}

// Duration is a time.Duration that decodes from TOML strings like "90s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Settings is the global warren configuration loaded from config.toml.
type Settings struct {
	// DefaultTimeout bounds each directive's execution (default 2m).
	DefaultTimeout Duration `toml:"default_timeout"`

	// Shell runs directive commands (default "sh").
	Shell string `toml:"shell"`

	// WorkspacesDir overrides the default parent directory for checkouts.
	WorkspacesDir string `toml:"workspaces_dir"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() *Settings {
	return &Settings{
		DefaultTimeout: Duration(2 * time.Minute),
		Shell:          "sh",
	}
}

// LoadSettings reads the settings file, applying defaults for absent values.
// A missing file is not an error; unknown keys are.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	md, err := toml.Decode(string(data), settings)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in settings %s", undecoded[0].String(), path)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings %s: %w", path, err)
	}

	return settings, nil
}

// Validate checks that the Settings are usable.
func (s *Settings) Validate() error {
	if s.DefaultTimeout.Std() <= 0 {
		return fmt.Errorf("default_timeout must be positive")
	}
	if s.Shell == "" {
		return fmt.Errorf("shell must not be empty")
	}
	if s.WorkspacesDir != "" && !filepath.IsAbs(s.WorkspacesDir) {
		return fmt.Errorf("workspaces_dir must be an absolute path (got %q)", s.WorkspacesDir)
	}
	return nil
}
