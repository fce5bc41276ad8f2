package container

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go-property-enhancer/internal/config"
	"go-property-enhancer/internal/logger"
	"go-property-enhancer/pkg/models"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.SetOutput(io.Discard)
}

func testConfig(analysisURL, imageURL string) *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "8000",
		RequestTimeout:     10 * time.Second,
		AnalysisTimeout:    5 * time.Second,
		ProbeTimeout:       time.Second,
		MaxRequestBodySize: 1 << 20,
		AnalysisURL:        analysisURL,
		AnalysisModel:      "openai",
		ImageURL:           imageURL,
	}
}

func TestNewContainer_WiresEndToEnd(t *testing.T) {
	analysis := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"issues":[],"suggestions":{"lighting":"","removal":"","staging":""},"enhance_prompt":"p","room_type":"bathroom","quality_score":90}`))
	}))
	defer analysis.Close()

	var probes int32
	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&probes, 1)
	}))
	defer images.Close()

	cfg := testConfig(analysis.URL+"/", images.URL+"/prompt/")
	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer c.Close()

	if c.Config() != cfg {
		t.Error("Expected the container to keep its config")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("image", "bath.jpg")
	part.Write([]byte("jpeg"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var result models.AnalysisResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.RoomType != "bathroom" || result.QualityScore != 90 {
		t.Errorf("Unexpected result %+v", result)
	}

	// Probing is off unless enabled.
	req = httptest.NewRequest(http.MethodPost, "/api/enhance", strings.NewReader(`{"prompt":"spa bathroom"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	c.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if atomic.LoadInt32(&probes) != 0 {
		t.Errorf("Expected no probes, got %d", probes)
	}
}

func TestNewContainer_ProbeEnabled(t *testing.T) {
	var probes int32
	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&probes, 1)
	}))
	defer images.Close()

	cfg := testConfig("http://127.0.0.1:1/", images.URL+"/prompt/")
	cfg.ProbeEnabled = true
	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/enhance", strings.NewReader(`{"prompt":"loft"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if atomic.LoadInt32(&probes) != 1 {
		t.Errorf("Expected one probe, got %d", probes)
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	if _, err := NewContainer(nil); err == nil {
		t.Error("Expected error for nil config")
	}

	cfg := testConfig("ftp://analysis.example/", "https://image.example/prompt/")
	if _, err := NewContainer(cfg); err == nil {
		t.Error("Expected error for unsupported analysis scheme")
	}
}

func TestNewContainer_StaticDir(t *testing.T) {
	dir := t.TempDir()

	cfg := testConfig("https://analysis.example/", "https://image.example/prompt/")
	cfg.StaticDir = dir
	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c.Config().StaticDir != dir {
		t.Errorf("Expected static dir %q kept, got %q", dir, c.Config().StaticDir)
	}

	cfg = testConfig("https://analysis.example/", "https://image.example/prompt/")
	cfg.StaticDir = filepath.Join(dir, "missing")
	c, err = NewContainer(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c.Config().StaticDir != "" {
		t.Errorf("Expected missing static dir to be disabled, got %q", c.Config().StaticDir)
	}

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without static files, got %d", w.Code)
	}
}
