package container

import (
	"fmt"
	"net/http"
	"os"

	"go-property-enhancer/internal/composer"
	"go-property-enhancer/internal/config"
	"go-property-enhancer/internal/logger"
	"go-property-enhancer/internal/observer"
	"go-property-enhancer/internal/prompt"
	"go-property-enhancer/internal/recovery"
	"go-property-enhancer/internal/service"
	"go-property-enhancer/internal/transport"
	"go-property-enhancer/internal/upstream"
)

// Container holds all application dependencies
type Container struct {
	config            *config.Config
	httpClient        *http.Client
	events            *observer.EventPublisher
	analysisService   service.AnalysisService
	generationService service.GenerationService
	handler           http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.StaticDir != "" {
		if info, err := os.Stat(cfg.StaticDir); err != nil || !info.IsDir() {
			logger.Warn("STATIC_DIR is not a readable directory, static files disabled")
			cfg.StaticDir = ""
		}
	}

	// Build dependency graph
	httpClient := upstream.NewHTTPClient()

	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))

	analysisService := service.NewAnalysisService(
		prompt.NewBuilder(prompt.AnalysisInstruction, cfg.AnalysisModel),
		upstream.NewTextClient(httpClient, cfg.AnalysisURL, cfg.AnalysisTimeout),
		recovery.NewParser(),
		events,
	)

	var prober upstream.Prober
	if cfg.ProbeEnabled {
		prober = upstream.NewHeadProber(httpClient, cfg.ProbeTimeout)
	}
	generationService := service.NewGenerationService(composer.New(cfg.ImageURL), prober, events)

	handler := transport.NewHandler(analysisService, generationService, transport.Options{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		StaticDir:          cfg.StaticDir,
	})

	return &Container{
		config:            cfg,
		httpClient:        httpClient,
		events:            events,
		analysisService:   analysisService,
		generationService: generationService,
		handler:           handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases idle upstream connections.
func (c *Container) Close() {
	c.httpClient.CloseIdleConnections()
}
