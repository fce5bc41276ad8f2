package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	apperrors "go-property-enhancer/internal/errors"
	"go-property-enhancer/internal/logger"
	"go-property-enhancer/internal/prompt"
	"go-property-enhancer/internal/service"
	"go-property-enhancer/pkg/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"
)

const version = "1.0.0"

// imageFields are the multipart field names accepted for the upload, in order.
var imageFields = []string{"image", "file"}

// Options configures the HTTP surface.
type Options struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	// StaticDir is served for unmatched GET/HEAD paths when non-empty.
	StaticDir string
}

func NewHandler(analysis service.AnalysisService, generation service.GenerationService, opts Options) http.Handler {
	r := gin.New()

	// Add middleware
	r.Use(
		requestID(),
		requestLogger(),
		gin.CustomRecovery(recoverPanic),
		requestSizeLimiter(opts.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)

	api := r.Group("/api")
	api.POST("/analyze", analyzeImage(analysis, opts.RequestTimeout))
	api.POST("/enhance", enhanceImage(generation))
	api.POST("/stage", stageRoom(generation))

	if opts.StaticDir != "" {
		r.NoRoute(staticFiles(opts.StaticDir))
	} else {
		r.NoRoute(notFound)
	}

	return r
}

func analyzeImage(a service.AnalysisService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx := c.Request.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		header, err := formImage(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		data, err := readUpload(header)
		if err != nil {
			_ = c.Error(apperrors.NewInternalError(err.Error(), err))
			return
		}
		mime := resolveMIME(header.Header.Get("Content-Type"), data)

		logger.FromContext(ctx).WithFields(logrus.Fields{
			"filename":    header.Filename,
			"mime":        mime,
			"image_bytes": len(data),
		}).Debug("Forwarding upload for analysis")

		result, err := a.Analyze(ctx, data, mime)
		if err != nil {
			_ = c.Error(err)
			return
		}

		logger.FromContext(ctx).WithFields(logrus.Fields{
			"processing_time_ms": time.Since(startTime).Milliseconds(),
			"room_type":          result.RoomType,
			"quality_score":      result.QualityScore,
		}).Info("Image analysis completed successfully")

		c.JSON(http.StatusOK, result)
	}
}

func enhanceImage(g service.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.EnhanceRequest
		if err := bindJSON(c, &req, "prompt"); err != nil {
			_ = c.Error(err)
			return
		}

		image, err := g.Enhance(c.Request.Context(), req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, image)
	}
}

func stageRoom(g service.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.StageRequest
		if err := bindJSON(c, &req, "room_type", "style"); err != nil {
			_ = c.Error(err)
			return
		}

		staged, err := g.Stage(c.Request.Context(), req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, staged)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "available",
		Version: version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// bindJSON decodes the body into obj and checks that every key in required
// is present. Present keys may hold empty strings.
func bindJSON(c *gin.Context, obj any, required ...string) error {
	if err := c.ShouldBindBodyWith(obj, binding.JSON); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid request: %v", err), err)
	}

	var keys map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&keys, binding.JSON); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid request: %v", err), err)
	}
	for _, key := range required {
		if _, ok := keys[key]; !ok {
			return apperrors.NewValidationError(fmt.Sprintf("field %q is required", key), nil)
		}
	}
	return nil
}

// formImage finds the uploaded file under any accepted field name.
func formImage(c *gin.Context) (*multipart.FileHeader, error) {
	var lastErr error
	for _, field := range imageFields {
		header, err := c.FormFile(field)
		if err == nil {
			return header, nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &apperrors.AppError{
				Type:       apperrors.ErrorTypeValidation,
				Message:    fmt.Sprintf("upload exceeds %d bytes", maxErr.Limit),
				StatusCode: http.StatusRequestEntityTooLarge,
				Cause:      err,
			}
		}
		lastErr = err
	}
	return nil, apperrors.NewValidationError("an image file is required in the 'image' form field", lastErr)
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

// resolveMIME keeps the declared type unless it is missing or generic, in
// which case the content is sniffed. Non-image content still gets an image
// type: the bytes are forwarded regardless.
func resolveMIME(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if detected := mimetype.Detect(data); strings.HasPrefix(detected.String(), "image/") {
		return detected.String()
	}
	return prompt.DefaultMIME
}
