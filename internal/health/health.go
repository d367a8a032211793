package health

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/warren-vcs/warren/internal/backend"
	"github.com/warren-vcs/warren/internal/registry"
)

// Status represents the health status of a workspace.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusMissing  Status = "missing"
	StatusUnlisted Status = "unlisted"
	StatusRemoving Status = "removing"
)

// CheckResult contains the results of health checks.
type CheckResult struct {
	Status        Status
	RootExists    bool
	BackendListed bool
	Age           string
}

// Check classifies a workspace by comparing the registry record against the
// filesystem and the backend's own listing. A backend that cannot list
// (tool missing) leaves BackendListed true so the verdict rests on the
// root path alone.
func Check(ctx context.Context, ws *registry.Workspace, b backend.Backend) *CheckResult {
	result := &CheckResult{
		BackendListed: true,
		Age:           Age(ws),
	}

	if _, err := os.Stat(ws.RootPath); err == nil {
		result.RootExists = true
	}

	if b != nil {
		if listed, err := b.List(ctx); err == nil {
			result.BackendListed = false
			for _, known := range listed {
				if known.Name == ws.Name {
					result.BackendListed = true
					break
				}
			}
		}
	}

	switch {
	case ws.Status == registry.StatusRemoving:
		result.Status = StatusRemoving
	case !result.RootExists:
		result.Status = StatusMissing
	case !result.BackendListed:
		result.Status = StatusUnlisted
	default:
		result.Status = StatusHealthy
	}

	return result
}

// Age returns how long ago the workspace was created, in human-readable
// form, or "unknown" when the record carries no timestamp.
func Age(ws *registry.Workspace) string {
	if ws.CreatedAt == "" {
		return "unknown"
	}
	t, err := time.Parse(time.RFC3339, ws.CreatedAt)
	if err != nil {
		return ws.CreatedAt
	}
	return formatDuration(time.Since(t))
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	} else if d < 24*time.Hour {
		hours := int(d.Hours())
		mins := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}
