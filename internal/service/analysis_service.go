package service

import (
	"context"
	"errors"
	"time"

	apperrors "go-property-enhancer/internal/errors"
	"go-property-enhancer/internal/logger"
	"go-property-enhancer/internal/observer"
	"go-property-enhancer/internal/prompt"
	"go-property-enhancer/internal/recovery"
	"go-property-enhancer/internal/upstream"
	"go-property-enhancer/pkg/models"

	"github.com/sirupsen/logrus"
)

// UnavailableMessage is the client-facing detail when the analysis service
// answers with a non-2xx status.
const UnavailableMessage = "AI analysis service unavailable"

// AnalysisService turns an uploaded photo into a structured analysis.
type AnalysisService interface {
	Analyze(ctx context.Context, image []byte, mime string) (*models.AnalysisResult, error)
}

type analysisService struct {
	builder   *prompt.Builder
	completer upstream.TextCompleter
	parser    *recovery.Parser
	events    observer.Subject
}

// NewAnalysisService wires the prompt builder, the analysis collaborator and
// the recovery parser. events may be nil.
func NewAnalysisService(
	builder *prompt.Builder,
	completer upstream.TextCompleter,
	parser *recovery.Parser,
	events observer.Subject,
) AnalysisService {
	return &analysisService{
		builder:   builder,
		completer: completer,
		parser:    parser,
		events:    events,
	}
}

// Analyze makes a single call to the analysis service. A 2xx answer always
// yields a result, whatever its content; failures are not retried.
func (s *analysisService) Analyze(ctx context.Context, image []byte, mime string) (*models.AnalysisResult, error) {
	start := time.Now()
	s.publish(ctx, observer.Event{
		EventType: observer.AnalysisStarted,
		Success:   true,
		Metadata:  map[string]interface{}{"mime": mime, "image_bytes": len(image)},
	})

	payload := s.builder.Build(image, mime)

	raw, err := s.completer.Complete(ctx, payload)
	if err != nil {
		appErr := classify(err)
		s.publish(ctx, observer.Event{
			EventType:      observer.AnalysisFailed,
			ProcessingTime: time.Since(start),
			ErrorMessage:   appErr.Error(),
			Metadata:       map[string]interface{}{"error_type": appErr.Type},
		})
		return nil, appErr
	}

	result, tier := s.parser.Parse(raw)

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"tier":         tier,
		"room_type":    result.RoomType,
		"response_len": len(raw),
	}).Debug("Analysis response recovered")

	s.publish(ctx, observer.Event{
		EventType:      observer.AnalysisCompleted,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"tier": tier},
	})
	return &result, nil
}

// classify maps collaborator failures onto the client-visible taxonomy.
func classify(err error) *apperrors.AppError {
	var statusErr *upstream.StatusError
	switch {
	case errors.As(err, &statusErr):
		return apperrors.NewUpstreamUnavailableError(UnavailableMessage, err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError(err.Error(), err)
	default:
		return apperrors.NewInternalError(err.Error(), err)
	}
}

func (s *analysisService) publish(ctx context.Context, event observer.Event) {
	if s.events == nil {
		return
	}
	event.RequestID = logger.RequestID(ctx)
	s.events.NotifyObservers(ctx, event)
}
