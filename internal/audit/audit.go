// Package audit provides structured event logging for workspace lifecycle
// events. Events are stored as JSON Lines (JSONL) files, one per workspace.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EventType classifies a lifecycle event.
type EventType string

const (
	EventCreate    EventType = "create"
	EventSwitch    EventType = "switch"
	EventRemove    EventType = "remove"
	EventDirective EventType = "directive"
	EventReconcile EventType = "reconcile"
	EventError     EventType = "error"
)

// Event represents a single audit log entry.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Workspace string    `json:"workspace"`
	Details   string    `json:"details,omitempty"`
}

// Logger writes and reads audit events for workspaces.
// Events are stored in {stateDir}/events/{name}.events.jsonl.
type Logger struct {
	stateDir string
}

// NewLogger creates a new audit logger rooted at stateDir.
func NewLogger(stateDir string) *Logger {
	return &Logger{stateDir: stateDir}
}

// eventPath returns the path to the JSONL event log for a workspace.
func (l *Logger) eventPath(workspace string) string {
	return filepath.Join(l.stateDir, "events", workspace+".events.jsonl")
}

// Log appends an event to the workspace's audit log.
func (l *Logger) Log(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	path := l.eventPath(event.Workspace)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// LogEvent is a convenience method that creates and logs an event.
func (l *Logger) LogEvent(eventType EventType, workspace, details string) error {
	return l.Log(Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Workspace: workspace,
		Details:   details,
	})
}

// Events reads all events for a workspace in chronological order.
func (l *Logger) Events(workspace string) ([]Event, error) {
	path := l.eventPath(workspace)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // Skip malformed lines
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading audit log: %w", err)
	}

	return events, nil
}

// Remove deletes the audit log for a workspace.
func (l *Logger) Remove(workspace string) error {
	path := l.eventPath(workspace)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
