package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-skin-detector/pkg/models"
)

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

var img = &models.Image{Filename: "x.png", MIMEType: "image/png", DataURI: "data:image/png;base64,AA=="}

func TestDerive(t *testing.T) {
	tests := []struct {
		name string
		snap models.SessionSnapshot
		want models.Panel
	}{
		{"no image", models.SessionSnapshot{Phase: models.PhaseIdle}, models.PanelUpload},
		{"image idle", models.SessionSnapshot{Phase: models.PhaseIdle, Image: img}, models.PanelReady},
		{"counting", models.SessionSnapshot{Phase: models.PhaseAnalyzing, Image: img, Countdown: intPtr(2)}, models.PanelAnalyzing},
		{"finalizing", models.SessionSnapshot{Phase: models.PhaseAnalyzing, Image: img}, models.PanelAnalyzing},
		{"result", models.SessionSnapshot{Phase: models.PhaseResultReady, Image: img, Verdict: boolPtr(false)}, models.PanelResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.snap))
		})
	}
}

func TestNewPage_ExactlyOnePanel(t *testing.T) {
	phases := []models.Phase{models.PhaseIdle, models.PhaseAnalyzing, models.PhaseResultReady}
	images := []*models.Image{nil, img}

	for _, phase := range phases {
		for _, image := range images {
			p := NewPage(models.SessionSnapshot{Phase: phase, Image: image, Countdown: intPtr(1), Verdict: boolPtr(true)})

			visible := 0
			for _, shown := range []bool{p.ShowUpload(), p.ShowReady(), p.ShowAnalyzing(), p.ShowResult()} {
				if shown {
					visible++
				}
			}
			assert.Equalf(t, 1, visible, "phase=%s image=%v", phase, image != nil)
		}
	}
}

func TestNewPage_Analyzing(t *testing.T) {
	p := NewPage(models.SessionSnapshot{Phase: models.PhaseAnalyzing, Image: img, Countdown: intPtr(3)})

	assert.True(t, p.ShowAnalyzing())
	assert.Equal(t, 3, p.Countdown)
	assert.Nil(t, p.Verdict)
	assert.Equal(t, "Analizando imagen...", p.AnalyzingText)
}

func TestNewPage_Result(t *testing.T) {
	p := NewPage(models.SessionSnapshot{Phase: models.PhaseResultReady, Image: img, Verdict: boolPtr(true)})

	require.NotNil(t, p.Verdict)
	assert.Equal(t, "✅", p.Verdict.Icon)
	assert.Equal(t, "TIENE LA SKIN", p.Verdict.Label)
	assert.Equal(t, ToneSuccess, p.Verdict.Tone)
	assert.Zero(t, p.Countdown)
}

func TestPresentVerdict(t *testing.T) {
	yes := PresentVerdict(true)
	assert.Equal(t, "Análisis completado: Skin detectada con alta precisión", yes.Message)

	no := PresentVerdict(false)
	assert.Equal(t, "❌", no.Icon)
	assert.Equal(t, "NO TIENE LA SKIN", no.Label)
	assert.Equal(t, "Análisis completado: No se detectó ninguna skin", no.Message)
	assert.Equal(t, ToneDanger, no.Tone)
}

func TestNewPage_Copy(t *testing.T) {
	p := NewPage(models.SessionSnapshot{Phase: models.PhaseIdle})

	assert.True(t, p.ShowUpload())
	assert.Equal(t, "Detector de la Skin", p.Title)
	assert.Equal(t, "Análisis de Imagen", p.CardTitle)
	assert.Equal(t, "Formatos soportados: JPG, PNG, GIF", p.UploadFormats)
	assert.Equal(t, "https://github.com/angelstchavez", p.AuthorURL)
}
