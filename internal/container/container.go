package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-skin-detector/internal/analyzer"
	"go-skin-detector/internal/config"
	"go-skin-detector/internal/factory"
	"go-skin-detector/internal/logger"
	"go-skin-detector/internal/observer"
	"go-skin-detector/internal/repository"
	"go-skin-detector/internal/service"
	"go-skin-detector/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config  *config.Config
	service service.DetectorService
	handler http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	logger.SetLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	components := factory.NewComponentFactory()

	verdicts, err := components.VerdictFactory.CreateVerdictSource(factory.VerdictMode(cfg.VerdictMode))
	if err != nil {
		return nil, fmt.Errorf("failed to create verdict source: %w", err)
	}
	loader, err := components.LoaderFactory.CreateLoader(factory.DataURILoader)
	if err != nil {
		return nil, fmt.Errorf("failed to create image loader: %w", err)
	}

	// Build dependency graph
	loop := analyzer.NewEventLoop(256)
	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	detector := service.NewDetectorService(service.Dependencies{
		Sessions:  repository.NewMemorySessionRepository(),
		Loader:    loader,
		Loop:      loop,
		Scheduler: analyzer.NewRealScheduler(),
		Verdicts:  verdicts,
		Publisher: publisher,
		Metrics:   metrics,
	}, service.Settings{
		Analysis: analyzer.DefaultOptions().
			WithCountdown(cfg.CountdownFrom).
			WithTiming(cfg.TickInterval, cfg.FinalizeDelay),
		SessionTTL:    cfg.SessionTTL,
		SweepInterval: cfg.SweepInterval,
	})

	return &Container{
		config:  cfg,
		service: detector,
		handler: transport.NewHandler(detector, cfg),
	}, nil
}

// Start runs the background parts of the service
func (c *Container) Start(ctx context.Context) {
	c.service.Start(ctx)
}

// Close stops the service and its event loop
func (c *Container) Close() {
	c.service.Close()
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Service returns the detector service
func (c *Container) Service() service.DetectorService {
	return c.service
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
