package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"go-skin-detector/internal/service"
	"go-skin-detector/pkg/models"
)

type snapshotMsg struct {
	snapshot   models.SessionSnapshot
	fromStream bool
}

type errorMsg struct {
	err error
}

type streamClosedMsg struct{}

// waitForEvent delivers the next lifecycle event of the session
func waitForEvent(events <-chan models.LifecycleEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return snapshotMsg{snapshot: event.Snapshot, fromStream: true}
	}
}

func loadImageCommand(svc service.DetectorService, sessionID, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := openImage(path)
		if err != nil {
			return errorMsg{err: err}
		}
		defer f.Close()

		snap, err := svc.SelectImage(context.Background(), sessionID, f, strings.TrimSpace(path))
		if err != nil {
			return errorMsg{err: err}
		}
		return snapshotMsg{snapshot: snap}
	}
}

func analyzeCommand(svc service.DetectorService, sessionID string) tea.Cmd {
	return func() tea.Msg {
		snap, err := svc.Analyze(context.Background(), sessionID)
		if err != nil {
			return errorMsg{err: err}
		}
		return snapshotMsg{snapshot: snap}
	}
}

func resetCommand(svc service.DetectorService, sessionID string) tea.Cmd {
	return func() tea.Msg {
		snap, err := svc.Reset(context.Background(), sessionID)
		if err != nil {
			return errorMsg{err: err}
		}
		return snapshotMsg{snapshot: snap}
	}
}

func openImage(path string) (*os.File, error) {
	return os.Open(expandHome(strings.TrimSpace(path)))
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
