package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(keys ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), APIKeyAuth(keys))
	r.GET("/v1/documents", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"key": APIKeyFromContext(c)})
	})
	return r
}

func TestAPIKeyAuthMissingKey(t *testing.T) {
	r := newAuthRouter("secret-key")

	req := httptest.NewRequest(http.MethodGet, "/v1/documents", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}

	var body struct {
		Error struct {
			Code      string `json:"code"`
			RequestID string `json:"requestId"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "MISSING_API_KEY" {
		t.Fatalf("expected code MISSING_API_KEY, got %q", body.Error.Code)
	}
	if body.Error.RequestID == "" {
		t.Fatal("expected requestId in error envelope")
	}
}

func TestAPIKeyAuthWrongKey(t *testing.T) {
	r := newAuthRouter("secret-key")

	req := httptest.NewRequest(http.MethodGet, "/v1/documents", nil)
	req.Header.Set("X-API-Key", "wrong-key")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "INVALID_API_KEY" {
		t.Fatalf("expected code INVALID_API_KEY, got %q", body.Error.Code)
	}
}

func TestAPIKeyAuthValidKey(t *testing.T) {
	r := newAuthRouter("key-a", "key-b")

	req := httptest.NewRequest(http.MethodGet, "/v1/documents", nil)
	req.Header.Set("X-API-Key", "key-b")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
