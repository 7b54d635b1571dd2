package bootstrap

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"docscan-backend/internal/shared/config"
)

func TestGinModeFollowsEnv(t *testing.T) {
	cases := []struct {
		env  string
		want string
	}{
		{"production", gin.ReleaseMode},
		{"staging", gin.ReleaseMode},
		{"dev", gin.DebugMode},
		{"local", gin.DebugMode},
		{"", gin.DebugMode},
	}
	for _, tc := range cases {
		if got := ginMode(tc.env); got != tc.want {
			t.Errorf("ginMode(%q) = %q, want %q", tc.env, got, tc.want)
		}
	}
}

func TestBuildBackendWiresLocalStack(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	cfg := config.Config{
		Env:             "production",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		IndexDir:        "",
		OCRServiceURL:   "http://localhost:5000",
		OCRTimeout:      time.Second,
		OCRPoolSize:     1,
		MaxUploadBytes:  1 << 20,
	}

	app, err := BuildBackend(cfg)
	if err != nil {
		t.Fatalf("build backend: %v", err)
	}
	defer func() { _ = app.Close() }()

	if app.Router == nil || app.Service == nil || app.Handler == nil {
		t.Fatal("expected a fully wired backend app")
	}
	if app.Service.Store == nil || app.Service.Index == nil || app.Service.OCR == nil {
		t.Fatal("expected store, index, and dispatcher on the service")
	}
	if gin.Mode() != gin.ReleaseMode {
		t.Fatalf("expected release mode for production env, got %q", gin.Mode())
	}
}

func TestBuildBackendRejectsIncompleteS3Config(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	_, err := BuildBackend(config.Config{ObjectStoreType: "s3"})
	if err == nil {
		t.Fatal("expected error for s3 store without region and bucket")
	}
}

func TestBuildGatewayRequiresAPIKeys(t *testing.T) {
	if _, err := BuildGateway(config.Config{BackendURL: "http://localhost:3000"}); err == nil {
		t.Fatal("expected error when no API keys are configured")
	}
}

func TestBuildGatewayWiresRouter(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	cfg := config.Config{
		Env:             "dev",
		APIKeys:         []string{"key-1"},
		BackendURL:      "http://localhost:3000",
		RateLimitWindow: time.Minute,
		RateLimitMax:    60,
		ProxyTimeout:    time.Second,
		MaxUploadBytes:  1 << 20,
	}

	app, err := BuildGateway(cfg)
	if err != nil {
		t.Fatalf("build gateway: %v", err)
	}
	if app.Router == nil || app.Backend == nil || app.Limiter == nil {
		t.Fatal("expected a fully wired gateway app")
	}
}
