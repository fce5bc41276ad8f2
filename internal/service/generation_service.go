package service

import (
	"context"
	"time"

	"go-property-enhancer/internal/composer"
	"go-property-enhancer/internal/logger"
	"go-property-enhancer/internal/observer"
	"go-property-enhancer/internal/upstream"
	"go-property-enhancer/pkg/models"

	"github.com/sirupsen/logrus"
)

// GenerationService builds enhance and staging image references.
type GenerationService interface {
	Enhance(ctx context.Context, req models.EnhanceRequest) (*models.GeneratedImage, error)
	Stage(ctx context.Context, req models.StageRequest) (*models.StageResponse, error)
}

type generationService struct {
	composer *composer.Composer
	prober   upstream.Prober
	events   observer.Subject
}

// NewGenerationService creates the service. A nil prober disables the
// reachability check; events may be nil.
func NewGenerationService(c *composer.Composer, prober upstream.Prober, events observer.Subject) GenerationService {
	return &generationService{
		composer: c,
		prober:   prober,
		events:   events,
	}
}

// Enhance composes a URL for req.Prompt and optionally probes it. The URL is
// returned whatever the probe says: the image service renders on demand, so
// a failed probe does not mean the image will not appear.
func (s *generationService) Enhance(ctx context.Context, req models.EnhanceRequest) (*models.GeneratedImage, error) {
	width, height := models.Dimensions(req.Width, req.Height)
	image := s.composer.Compose(req.Prompt, width, height)
	s.composed(ctx, "enhance", width, height)

	if s.prober != nil {
		start := time.Now()
		if err := s.prober.Probe(ctx, image.ImageURL); err != nil {
			s.publish(ctx, observer.Event{
				EventType:      observer.ProbeFailed,
				ProcessingTime: time.Since(start),
				ErrorMessage:   err.Error(),
			})
		}
	}

	return &image, nil
}

// Stage fills the staging template and composes its URL. No probe is made.
func (s *generationService) Stage(ctx context.Context, req models.StageRequest) (*models.StageResponse, error) {
	width, height := models.Dimensions(req.Width, req.Height)
	image := s.composer.Compose(composer.StagingPrompt(req.RoomType, req.Style), width, height)
	s.composed(ctx, "stage", width, height)

	return &models.StageResponse{
		ImageURL: image.ImageURL,
		Prompt:   image.Prompt,
		RoomType: req.RoomType,
		Style:    req.Style,
	}, nil
}

func (s *generationService) composed(ctx context.Context, flow string, width, height int) {
	logger.FromContext(ctx).WithFields(logrus.Fields{
		"flow":   flow,
		"width":  width,
		"height": height,
	}).Debug("Composed image URL")

	s.publish(ctx, observer.Event{
		EventType: observer.ImageComposed,
		Success:   true,
		Metadata:  map[string]interface{}{"flow": flow},
	})
}

func (s *generationService) publish(ctx context.Context, event observer.Event) {
	if s.events == nil {
		return
	}
	event.RequestID = logger.RequestID(ctx)
	s.events.NotifyObservers(ctx, event)
}
