package transport

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-skin-detector/internal/config"
	apperrors "go-skin-detector/internal/errors"
	"go-skin-detector/internal/logger"
	"go-skin-detector/internal/service"
	"go-skin-detector/internal/view"
	"go-skin-detector/pkg/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionKey = "session_id"

type handler struct {
	svc  service.DetectorService
	cfg  *config.Config
	tmpl *template.Template
}

func NewHandler(svc service.DetectorService, cfg *config.Config) http.Handler {
	tmpl := parseTemplates()
	h := &handler{svc: svc, cfg: cfg, tmpl: tmpl}

	r := gin.Default()
	r.SetHTMLTemplate(tmpl)

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/api/v1/stats", h.stats)

	page := r.Group("/", h.sessionBinder())
	page.GET("/", h.index)
	page.POST("/image", h.uploadForm)
	page.POST("/analyze", h.analyzeForm)
	page.POST("/reset", h.resetForm)

	api := r.Group("/api/v1/session", h.sessionBinder())
	api.GET("", h.getSession)
	api.POST("/image", h.uploadImage)
	api.POST("/analyze", h.analyze)
	api.POST("/reset", h.reset)
	api.GET("/events", h.events)

	return r
}

func parseTemplates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"imageSrc": imageSrc,
	}).ParseFS(templateFS, "templates/*.html"))
}

// imageSrc marks the data URI built by the intake package as a safe URL
func imageSrc(img *models.Image) template.URL {
	if img == nil {
		return ""
	}
	return template.URL(img.DataURI)
}

// sessionBinder attaches the visitor's session, opening a new one when the
// cookie is missing or has expired, and renews the cookie
func (h *handler) sessionBinder() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(h.cfg.SessionCookie)

		snap, err := h.svc.OpenSession(c.Request.Context(), cookie)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to open session", err)
			return
		}

		// the cookie lives as long as the session stays in use
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.cfg.SessionCookie, snap.SessionID, int(h.cfg.SessionTTL.Seconds()), "/", "", false, true)
		c.Set(sessionKey, snap.SessionID)
		c.Next()
	}
}

func (h *handler) index(c *gin.Context) {
	snap, err := h.svc.Snapshot(c.Request.Context(), c.GetString(sessionKey))
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "failed to load session", err)
		return
	}
	c.HTML(http.StatusOK, "page.html", view.NewPage(snap))
}

func (h *handler) uploadForm(c *gin.Context) {
	if _, err := h.selectImage(c); err != nil {
		respondError(c, apperrors.GetStatusCode(err), "failed to upload image", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// analyzeForm and resetForm treat state conflicts as no-ops, matching a page
// whose buttons are only shown when the action is allowed
func (h *handler) analyzeForm(c *gin.Context) {
	_, err := h.svc.Analyze(c.Request.Context(), c.GetString(sessionKey))
	if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeConflict) {
		respondError(c, apperrors.GetStatusCode(err), "failed to start analysis", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *handler) resetForm(c *gin.Context) {
	if _, err := h.svc.Reset(c.Request.Context(), c.GetString(sessionKey)); err != nil {
		respondError(c, apperrors.GetStatusCode(err), "failed to reset session", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *handler) getSession(c *gin.Context) {
	snap, err := h.svc.Snapshot(c.Request.Context(), c.GetString(sessionKey))
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "failed to load session", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handler) uploadImage(c *gin.Context) {
	snap, err := h.selectImage(c)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "failed to upload image", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handler) analyze(c *gin.Context) {
	snap, err := h.svc.Analyze(c.Request.Context(), c.GetString(sessionKey))
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "analysis not started", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"session_id": snap.SessionID,
		"run_id":     snap.RunID,
		"ip":         c.ClientIP(),
	}).Debug("Analysis requested")

	c.JSON(http.StatusAccepted, snap)
}

func (h *handler) reset(c *gin.Context) {
	snap, err := h.svc.Reset(c.Request.Context(), c.GetString(sessionKey))
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "failed to reset session", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// selectImage reads the multipart field "image"; a request without a file
// leaves the session unchanged
func (h *handler) selectImage(c *gin.Context) (models.SessionSnapshot, error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	id := c.GetString(sessionKey)
	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrMissingFile):
			return h.svc.Snapshot(ctx, id)
		case errors.As(err, &tooLarge):
			return models.SessionSnapshot{}, &apperrors.AppError{
				Type:       apperrors.ErrorTypeValidation,
				Message:    "image too large",
				StatusCode: http.StatusRequestEntityTooLarge,
				Cause:      err,
			}
		default:
			return models.SessionSnapshot{}, apperrors.NewValidationError("invalid upload", err)
		}
	}

	file, err := header.Open()
	if err != nil {
		return models.SessionSnapshot{}, apperrors.NewValidationError("invalid upload", err)
	}
	defer file.Close()

	return h.svc.SelectImage(ctx, id, file, header.Filename)
}

// events streams the session as server-sent events: "state" carries the
// snapshot as JSON and "panel" the rendered panel markup. Neither repeats the
// image bytes, which the page already holds.
func (h *handler) events(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.GetString(sessionKey)

	events, cancel, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "failed to subscribe", err)
		return
	}
	defer cancel()

	snap, err := h.svc.Snapshot(ctx, id)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "failed to load session", err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	h.sendSnapshot(c, snap)
	c.Writer.Flush()

	h.stream(c, snap, events)
}

// stream forwards the events that are newer than the snapshot already sent
func (h *handler) stream(c *gin.Context, sent models.SessionSnapshot, events <-chan models.LifecycleEvent) {
	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			// queued while the first snapshot was taken
			if event.Snapshot.Revision <= sent.Revision {
				return true
			}
			h.sendSnapshot(c, event.Snapshot)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

func (h *handler) sendSnapshot(c *gin.Context, snap models.SessionSnapshot) {
	c.SSEvent("state", snap.WithoutImageData())

	panel, err := h.renderPanel(snap)
	if err != nil {
		logger.WithError(err).WithField("session_id", snap.SessionID).Error("Failed to render panel")
		return
	}
	c.SSEvent("panel", panel)
}

func (h *handler) renderPanel(snap models.SessionSnapshot) (string, error) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "panel", view.NewPage(snap)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (h *handler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats())
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
