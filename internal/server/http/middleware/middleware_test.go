package middleware

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/identity"
	"github.com/luisbfsousa/mect-sub001/internal/metrics"
	pkgAuth "github.com/luisbfsousa/mect-sub001/internal/pkg/auth"
	testhelpers "github.com/luisbfsousa/mect-sub001/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestAuthRequired(t *testing.T) {
	router := gin.New()
	router.Use(AuthRequired(testhelpers.AuthenticatorStub{}))
	router.GET("/", func(c *gin.Context) {})
	if resp := serve(router, ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	router = gin.New()
	router.Use(AuthRequired(testhelpers.AuthenticatorStub{Err: pkgAuth.ErrInvalidToken}))
	router.GET("/", func(c *gin.Context) {})
	if resp := serve(router, "token"); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", resp.Code)
	}

	router = gin.New()
	router.Use(AuthRequired(testhelpers.AuthenticatorStub{Err: context.DeadlineExceeded}))
	router.GET("/", func(c *gin.Context) {})
	if resp := serve(router, "token"); resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}

	var stored identity.Identity
	router = gin.New()
	router.Use(AuthRequired(testhelpers.AuthenticatorStub{Identity: identity.Identity{Subject: "cust-1", Role: model.RoleCustomer}}))
	router.GET("/", func(c *gin.Context) {
		stored, _ = CurrentIdentity(c)
		c.Status(http.StatusOK)
	})
	if resp := serve(router, "token"); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if stored.Subject != "cust-1" {
		t.Fatalf("expected identity cust-1, got %+v", stored)
	}
}

func TestAuthRequiredWithRealVerifier(t *testing.T) {
	verifier := pkgAuth.NewJWTVerifier("secret", pkgAuth.Options{})
	token, err := verifier.Sign(map[string]any{"sub": "cust-1", "exp": 4102444800})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	auth := authenticatorFunc(func(_ context.Context, token string) (identity.Identity, error) {
		raw, err := verifier.Verify(token)
		if err != nil {
			return identity.Identity{}, err
		}
		return identity.Extract(raw, "storefront", identity.DefaultPolicy())
	})

	router := gin.New()
	router.Use(AuthRequired(auth))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	if resp := serve(router, token); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for signed token, got %d", resp.Code)
	}
	if resp := serve(router, token+"x"); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for tampered token, got %d", resp.Code)
	}
}

type authenticatorFunc func(context.Context, string) (identity.Identity, error)

func (f authenticatorFunc) Authenticate(ctx context.Context, token string) (identity.Identity, error) {
	return f(ctx, token)
}

func TestRequireRole(t *testing.T) {
	policy := identity.DefaultPolicy()
	tests := []struct {
		name   string
		role   model.Role
		min    model.Role
		status int
	}{
		{"administrator passes staff gate", model.RoleAdministrator, model.RoleWarehouseStaff, http.StatusOK},
		{"staff passes staff gate", model.RoleWarehouseStaff, model.RoleWarehouseStaff, http.StatusOK},
		{"content manager blocked", model.RoleContentManager, model.RoleWarehouseStaff, http.StatusForbidden},
		{"customer blocked from admin", model.RoleCustomer, model.RoleAdministrator, http.StatusForbidden},
		{"customer passes customer gate", model.RoleCustomer, model.RoleCustomer, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(AuthRequired(testhelpers.AuthenticatorStub{Identity: identity.Identity{Subject: "u", Role: tt.role}}))
			router.Use(RequireRole(policy, tt.min))
			router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
			if resp := serve(router, "token"); resp.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.Code)
			}
		})
	}

	router := gin.New()
	router.Use(RequireRole(policy, model.RoleCustomer))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	if resp := serve(router, ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", resp.Code)
	}
}

func TestExtractToken(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)
	if token := extractToken(c); token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}
	c.Request.Header.Set("Authorization", "Bearer abc")
	if token := extractToken(c); token != "abc" {
		t.Fatalf("expected token from header, got %q", token)
	}
	c.Request.Header.Set("Authorization", "Basic abc")
	if token := extractToken(c); token != "" {
		t.Fatalf("expected basic auth to be ignored, got %q", token)
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/", func(c *gin.Context) {
		seen = c.GetString(RequestIDContextKey)
		c.Status(http.StatusOK)
	})

	resp := serve(router, "")
	if seen == "" || resp.Header().Get("X-Request-ID") != seen {
		t.Fatalf("expected generated request id, got %q / %q", seen, resp.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if seen != "abc-123" || resp.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("expected propagated request id, got %q", seen)
	}
}

func TestDecompressRequest(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte("payload"))
	_ = gz.Close()

	router := gin.New()
	router.Use(DecompressRequest(0))
	var body string
	router.POST("/", func(c *gin.Context) {
		data, _ := io.ReadAll(c.Request.Body)
		body = string(data)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader(buf.Bytes())))
	req.Header.Set("Content-Encoding", "gzip")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if body != "payload" {
		t.Fatalf("expected decompressed payload, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader([]byte("plain"))))
	resp = httptest.NewRecorder()
	body = ""
	router.ServeHTTP(resp, req)
	if body != "plain" {
		t.Fatalf("expected plain body, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for corrupt gzip, got %d", resp.Code)
	}
}

func TestDecompressRequestLimit(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write(bytes.Repeat([]byte("a"), 64))
	_ = gz.Close()

	router := gin.New()
	router.Use(DecompressRequest(16))
	router.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(buf.Bytes()))
	req.Header.Set("Content-Encoding", "gzip")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected inflated body to be capped, got %d", resp.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	m := metrics.New()

	router := gin.New()
	router.Use(RequestID())
	router.Use(RequestLogger(logger, m))
	router.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/orders/7", nil)
	req.Header.Set("X-Request-ID", "req-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
		t.Fatalf("expected one json log line: %v", err)
	}
	if entry["msg"] != "http request" || entry["request_id"] != "req-1" || entry["path"] != "/orders/7" {
		t.Fatalf("unexpected log entry %v", entry)
	}

	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(scrape.Body.String(), `route="/orders/:id"`) {
		t.Fatal("expected request to be recorded under its route pattern")
	}
}
