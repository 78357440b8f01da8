// Package view decides which panel a session shows and carries the page copy.
package view

import (
	"go-skin-detector/pkg/models"
)

// Tone is the colour family of the verdict panel
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneDanger  Tone = "danger"
)

const (
	Title         = "Detector de la Skin"
	Subtitle      = "Tecnología avanzada para detectar skins en tiempo real"
	CardTitle     = "Análisis de Imagen"
	UploadPrompt  = "Sube tu imagen para análisis"
	UploadFormats = "Formatos soportados: JPG, PNG, GIF"
	AnalyzeLabel  = "Analizar Imagen"
	AgainLabel    = "Analizar de Nuevo"
	NewImageLabel = "Nueva Imagen"
	AnalyzingText = "Analizando imagen..."
	ImageAlt      = "Imagen seleccionada"
	Footer        = "Powered by Advanced AI Technology • Precisión del 99.9%"
	AuthorPrefix  = "Desarrollado por"
	AuthorName    = "Angel Chavez"
	AuthorURL     = "https://github.com/angelstchavez"
)

// Verdict is how a verdict is presented
type Verdict struct {
	Icon    string
	Label   string
	Message string
	Tone    Tone
}

// Derive returns the single panel visible for a snapshot. It only looks at the
// image presence and the phase.
func Derive(s models.SessionSnapshot) models.Panel {
	if !s.HasImage() {
		return models.PanelUpload
	}
	switch s.Phase {
	case models.PhaseAnalyzing:
		return models.PanelAnalyzing
	case models.PhaseResultReady:
		return models.PanelResult
	default:
		return models.PanelReady
	}
}

// PresentVerdict maps a verdict to its icon, label and message
func PresentVerdict(v bool) Verdict {
	if v {
		return Verdict{
			Icon:    "✅",
			Label:   "TIENE LA SKIN",
			Message: "Análisis completado: Skin detectada con alta precisión",
			Tone:    ToneSuccess,
		}
	}
	return Verdict{
		Icon:    "❌",
		Label:   "NO TIENE LA SKIN",
		Message: "Análisis completado: No se detectó ninguna skin",
		Tone:    ToneDanger,
	}
}

// Page is everything the templates need to render a snapshot
type Page struct {
	Panel     models.Panel
	Snapshot  models.SessionSnapshot
	Image     *models.Image
	Countdown int
	Verdict   *Verdict

	Title         string
	Subtitle      string
	CardTitle     string
	UploadPrompt  string
	UploadFormats string
	AnalyzeLabel  string
	AgainLabel    string
	NewImageLabel string
	AnalyzingText string
	ImageAlt      string
	Footer        string
	AuthorPrefix  string
	AuthorName    string
	AuthorURL     string
}

// NewPage builds the page model for s
func NewPage(s models.SessionSnapshot) Page {
	p := Page{
		Panel:         Derive(s),
		Snapshot:      s,
		Image:         s.Image,
		Title:         Title,
		Subtitle:      Subtitle,
		CardTitle:     CardTitle,
		UploadPrompt:  UploadPrompt,
		UploadFormats: UploadFormats,
		AnalyzeLabel:  AnalyzeLabel,
		AgainLabel:    AgainLabel,
		NewImageLabel: NewImageLabel,
		AnalyzingText: AnalyzingText,
		ImageAlt:      ImageAlt,
		Footer:        Footer,
		AuthorPrefix:  AuthorPrefix,
		AuthorName:    AuthorName,
		AuthorURL:     AuthorURL,
	}

	if p.Panel == models.PanelAnalyzing && s.Countdown != nil {
		p.Countdown = *s.Countdown
	}
	if p.Panel == models.PanelResult && s.Verdict != nil {
		v := PresentVerdict(*s.Verdict)
		p.Verdict = &v
	}
	return p
}

// ShowUpload, ShowReady, ShowAnalyzing and ShowResult are template helpers

func (p Page) ShowUpload() bool    { return p.Panel == models.PanelUpload }
func (p Page) ShowReady() bool     { return p.Panel == models.PanelReady }
func (p Page) ShowAnalyzing() bool { return p.Panel == models.PanelAnalyzing }
func (p Page) ShowResult() bool    { return p.Panel == models.PanelResult }
