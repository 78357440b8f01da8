package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-skin-detector/internal/service"
	"go-skin-detector/internal/view"
	"go-skin-detector/pkg/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#D4D4D4"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#737373")).
			Padding(1, 3).
			Width(64)

	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A3A3A3"))
	countdownStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	successStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ADE80"))
	dangerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F87171"))
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
)

// Model is the terminal front-end of one session
type Model struct {
	svc       service.DetectorService
	sessionID string
	events    <-chan models.LifecycleEvent

	snapshot models.SessionSnapshot
	input    string
	status   string
	quitting bool
}

// NewModel creates a model showing snapshot and following events
func NewModel(svc service.DetectorService, snapshot models.SessionSnapshot, events <-chan models.LifecycleEvent) *Model {
	return &Model{
		svc:       svc,
		sessionID: snapshot.SessionID,
		events:    events,
		snapshot:  snapshot,
	}
}

func (m *Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotMsg:
		// replies to commands and streamed events may arrive out of order
		if msg.snapshot.Revision < m.snapshot.Revision {
			return m, m.follow(msg)
		}
		m.snapshot = msg.snapshot
		m.status = ""
		return m, m.follow(msg)

	case errorMsg:
		m.status = msg.err.Error()

	case streamClosedMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// follow keeps listening after a streamed event; command replies need no resubscription
func (m *Model) follow(msg snapshotMsg) tea.Cmd {
	if msg.fromStream {
		return waitForEvent(m.events)
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || key == "esc" {
		m.quitting = true
		return m, tea.Quit
	}

	switch view.Derive(m.snapshot) {
	case models.PanelUpload:
		switch msg.Type {
		case tea.KeyEnter:
			if strings.TrimSpace(m.input) == "" {
				return m, nil
			}
			path := m.input
			m.input = ""
			return m, loadImageCommand(m.svc, m.sessionID, path)
		case tea.KeyBackspace:
			if r := []rune(m.input); len(r) > 0 {
				m.input = string(r[:len(r)-1])
			}
		case tea.KeyRunes, tea.KeySpace:
			m.input += string(msg.Runes)
		}
		return m, nil

	case models.PanelReady, models.PanelResult:
		switch key {
		case "a":
			return m, analyzeCommand(m.svc, m.sessionID)
		case "n":
			return m, resetCommand(m.svc, m.sessionID)
		case "q":
			m.quitting = true
			return m, tea.Quit
		}

	case models.PanelAnalyzing:
		if key == "q" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m *Model) View() string {
	if m.quitting {
		return "👋\n"
	}

	page := view.NewPage(m.snapshot)

	var b strings.Builder
	b.WriteString(titleStyle.Render(page.Title) + "\n")
	b.WriteString(mutedStyle.Render(page.Subtitle) + "\n\n")

	var card strings.Builder
	card.WriteString(titleStyle.Render(page.CardTitle) + "\n\n")
	card.WriteString(m.panel(page))
	b.WriteString(cardStyle.Render(card.String()) + "\n")

	if m.status != "" {
		b.WriteString(dangerStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render(page.Footer) + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s %s (%s)", page.AuthorPrefix, page.AuthorName, page.AuthorURL)) + "\n")
	return b.String()
}

func (m *Model) panel(page view.Page) string {
	switch {
	case page.ShowUpload():
		return fmt.Sprintf("%s\n%s\n\n> %s█\n\n%s",
			page.UploadPrompt,
			mutedStyle.Render(page.UploadFormats),
			m.input,
			hint("enter", "cargar", "esc", "salir"))

	case page.ShowReady():
		return fmt.Sprintf("%s\n\n%s",
			describeImage(page.Image),
			hint("a", page.AnalyzeLabel, "n", page.NewImageLabel, "q", "salir"))

	case page.ShowAnalyzing():
		countdown := ""
		if page.Countdown > 0 {
			countdown = "\n\n" + countdownStyle.Render(fmt.Sprintf("%d", page.Countdown))
		}
		return fmt.Sprintf("%s\n\n%s%s", describeImage(page.Image), page.AnalyzingText, countdown)

	case page.ShowResult():
		verdict := ""
		if v := page.Verdict; v != nil {
			style := successStyle
			if v.Tone == view.ToneDanger {
				style = dangerStyle
			}
			verdict = style.Render(v.Icon+" "+v.Label) + "\n" + v.Message
		}
		return fmt.Sprintf("%s\n\n%s\n\n%s",
			describeImage(page.Image),
			verdict,
			hint("a", page.AgainLabel, "n", page.NewImageLabel, "q", "salir"))
	}
	return ""
}

func describeImage(img *models.Image) string {
	if img == nil {
		return ""
	}
	desc := fmt.Sprintf("🖼  %s · %s · %d bytes", img.Filename, img.MIMEType, img.Size)
	if img.Width > 0 && img.Height > 0 {
		desc += fmt.Sprintf(" · %dx%d", img.Width, img.Height)
	}
	return desc
}

// hint renders key/label pairs
func hint(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, keyStyle.Render("["+pairs[i]+"]")+" "+pairs[i+1])
	}
	return strings.Join(parts, "  ")
}

// Run opens a session, optionally loads imagePath, and runs the program until
// the user quits
func Run(ctx context.Context, svc service.DetectorService, imagePath string) error {
	snap, err := svc.OpenSession(ctx, "")
	if err != nil {
		return err
	}

	events, cancel, err := svc.Subscribe(ctx, snap.SessionID)
	if err != nil {
		return err
	}
	defer cancel()

	if imagePath != "" {
		f, err := openImage(imagePath)
		if err != nil {
			return err
		}
		snap, err = svc.SelectImage(ctx, snap.SessionID, f, imagePath)
		f.Close()
		if err != nil {
			return err
		}
	}

	p := tea.NewProgram(NewModel(svc, snap, events), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
