// Package bootstrap wires configuration into runnable applications. Each
// binary calls one builder and serves the returned router.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"docscan-backend/internal/gateway"
	"docscan-backend/internal/gateway/proxy"
	"docscan-backend/internal/ingest/documents"
	"docscan-backend/internal/ingest/index"
	"docscan-backend/internal/ingest/ocr"
	"docscan-backend/internal/ingest/server"
	"docscan-backend/internal/ingest/store"
	localstore "docscan-backend/internal/ingest/store/local"
	s3store "docscan-backend/internal/ingest/store/s3"
	"docscan-backend/internal/shared/config"
	"docscan-backend/internal/shared/server/middleware"
	"docscan-backend/internal/shared/telemetry"
)

// BackendApp holds the ingestion backend's dependencies.
type BackendApp struct {
	Config     config.Config
	Router     *gin.Engine
	Store      store.ArtifactStore
	Index      *index.Index
	OCRClient  *ocr.Client
	Dispatcher *ocr.Dispatcher
	Service    *documents.Service
	Handler    *documents.Handler
}

// ginMode maps the configured environment to a gin mode. Routers do not
// set the mode themselves so tests can run under gin.TestMode.
func ginMode(env string) string {
	switch env {
	case "production", "staging":
		return gin.ReleaseMode
	default:
		return gin.DebugMode
	}
}

// BuildBackend prepares the ingestion backend: artifact store, metadata
// index, extraction dispatcher, and router.
func BuildBackend(cfg config.Config) (*BackendApp, error) {
	gin.SetMode(ginMode(cfg.Env))
	ctx := context.Background()

	artifacts, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	idx, err := index.Open(cfg.IndexDir)
	if err != nil {
		return nil, fmt.Errorf("open metadata index: %w", err)
	}

	ocrClient := ocr.NewClient(cfg.OCRServiceURL, cfg.OCRTimeout)
	dispatcher, err := ocr.NewDispatcher(ocrClient, cfg.OCRPoolSize, cfg.OCRTimeout)
	if err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("start ocr dispatcher: %w", err)
	}

	svc := &documents.Service{
		Store: artifacts,
		Index: idx,
		OCR:   dispatcher,
	}
	handler := documents.NewHandler(svc, cfg.MaxUploadBytes)

	telemetry.Info("backend.built", map[string]any{
		"env":     cfg.Env,
		"store":   cfg.ObjectStoreType,
		"ocr_url": cfg.OCRServiceURL,
	})

	return &BackendApp{
		Config:     cfg,
		Router:     server.NewRouter(handler, ocrClient),
		Store:      artifacts,
		Index:      idx,
		OCRClient:  ocrClient,
		Dispatcher: dispatcher,
		Service:    svc,
		Handler:    handler,
	}, nil
}

// Close releases the backend's long-lived resources.
func (a *BackendApp) Close() error {
	if a.Dispatcher != nil {
		a.Dispatcher.Release()
	}
	if a.Index != nil {
		return a.Index.Close()
	}
	return nil
}

// GatewayApp holds the API gateway's dependencies.
type GatewayApp struct {
	Config  config.Config
	Router  *gin.Engine
	Backend *proxy.Client
	Limiter *middleware.RateLimiter
	Handler *gateway.Handler
}

// BuildGateway prepares the gateway: backend client, rate limiter, and
// the versioned router.
func BuildGateway(cfg config.Config) (*GatewayApp, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("API_KEYS must list at least one key")
	}
	gin.SetMode(ginMode(cfg.Env))

	backend := proxy.New(cfg.BackendURL, cfg.ProxyTimeout)
	limiter := middleware.NewRateLimiter(nil)
	handler := gateway.NewHandler(backend, cfg.MaxUploadBytes)

	router := gateway.NewRouter(handler, gateway.RouterConfig{
		APIKeys:         cfg.APIKeys,
		AllowedOrigins:  cfg.CORSAllowOrigin,
		RateLimitWindow: cfg.RateLimitWindow,
		RateLimitMax:    cfg.RateLimitMax,
		Limiter:         limiter,
	})

	telemetry.Info("gateway.built", map[string]any{
		"env":         cfg.Env,
		"backend_url": cfg.BackendURL,
		"keys":        len(cfg.APIKeys),
	})

	return &GatewayApp{
		Config:  cfg,
		Router:  router,
		Backend: backend,
		Limiter: limiter,
		Handler: handler,
	}, nil
}

func buildStore(ctx context.Context, cfg config.Config) (store.ArtifactStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}
