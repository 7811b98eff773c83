package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
	"github.com/dental-clinic/backend/internal/integration/entrypoint/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubTokenService accepts "admin", "doctor" and "expired" as tokens.
type stubTokenService struct{}

func (stubTokenService) GenerateAccessToken(context.Context, uint, entity.UserRole) (string, error) {
	return "", errors.New("not implemented")
}

func (stubTokenService) ValidateAccessToken(_ context.Context, token string) (*adapter.TokenClaims, error) {
	switch token {
	case "admin":
		return &adapter.TokenClaims{UserID: 1, Role: entity.UserRoleAdmin}, nil
	case "doctor":
		return &adapter.TokenClaims{UserID: 5, Role: entity.UserRoleDoctor}, nil
	case "expired":
		return nil, domainerror.ErrExpiredToken
	default:
		return nil, domainerror.ErrInvalidToken
	}
}

func newAuthEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	auth := NewAuthMiddleware(stubTokenService{})
	chain := append([]gin.HandlerFunc{auth.Authenticate()}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		userID, _ := GetUserIDFromContext(c)
		role, _ := GetUserRoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
	})
	engine.GET("/resource", chain...)
	return engine
}

func perform(engine *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Code
}

func TestAuthenticate(t *testing.T) {
	engine := newAuthEngine()

	tests := []struct {
		name          string
		authorization string
		status        int
		code          domainerror.AuthErrorCode
	}{
		{name: "missing header", authorization: "", status: http.StatusUnauthorized, code: domainerror.ErrCodeMissingToken},
		{name: "wrong scheme", authorization: "Basic abc", status: http.StatusUnauthorized, code: domainerror.ErrCodeInvalidToken},
		{name: "empty bearer", authorization: "Bearer  ", status: http.StatusUnauthorized, code: domainerror.ErrCodeMissingToken},
		{name: "invalid token", authorization: "Bearer nope", status: http.StatusUnauthorized, code: domainerror.ErrCodeInvalidToken},
		{name: "expired token", authorization: "Bearer expired", status: http.StatusUnauthorized, code: domainerror.ErrCodeExpiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(engine, tt.authorization)
			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, w.Code)
			}
			if code := errorCode(t, w); code != string(tt.code) {
				t.Errorf("expected code %s, got %s", tt.code, code)
			}
		})
	}

	t.Run("valid token sets claims", func(t *testing.T) {
		w := perform(engine, "Bearer doctor")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body struct {
			UserID uint   `json:"user_id"`
			Role   string `json:"role"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.UserID != 5 || body.Role != "doctor" {
			t.Errorf("unexpected claims %+v", body)
		}
	})
}

func TestRequireRole(t *testing.T) {
	engine := newAuthEngine(RequireRole(entity.UserRoleAdmin))

	if w := perform(engine, "Bearer admin"); w.Code != http.StatusOK {
		t.Errorf("expected admin to pass, got %d", w.Code)
	}

	w := perform(engine, "Bearer doctor")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for doctor, got %d", w.Code)
	}
	if code := errorCode(t, w); code != string(domainerror.ErrCodeForbiddenRole) {
		t.Errorf("expected forbidden code, got %s", code)
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	limiter := NewRateLimiterWithConfig(2, time.Minute)

	for i := 0; i < 2; i++ {
		if ok, _ := limiter.Allow(ctx, "user:1"); !ok {
			t.Fatalf("expected attempt %d to be allowed", i+1)
		}
	}
	if ok, _ := limiter.Allow(ctx, "user:1"); ok {
		t.Error("expected third attempt to be rejected")
	}
	if ok, _ := limiter.Allow(ctx, "user:2"); !ok {
		t.Error("expected other caller to be allowed")
	}

	limiter.Reset()
	if ok, _ := limiter.Allow(ctx, "user:1"); !ok {
		t.Error("expected attempt after reset to be allowed")
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	limiter := NewRateLimiterWithConfig(1, time.Millisecond)
	_, _ = limiter.Allow(context.Background(), "ip:10.0.0.1")
	time.Sleep(5 * time.Millisecond)

	limiter.Cleanup()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if len(limiter.entries) != 0 {
		t.Errorf("expected expired entries to be removed, got %d", len(limiter.entries))
	}
}

func TestRedisRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	limiter := NewRedisRateLimiter(rdb, 2, time.Minute, "writes")

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "user:1")
		if err != nil || !ok {
			t.Fatalf("expected attempt %d allowed, got ok=%v err=%v", i+1, ok, err)
		}
	}
	if ok, _ := limiter.Allow(ctx, "user:1"); ok {
		t.Error("expected third attempt to be rejected")
	}
	if ttl := mr.TTL("writes:user:1"); ttl <= 0 || ttl > time.Minute {
		t.Errorf("expected window ttl, got %s", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if ok, _ := limiter.Allow(ctx, "user:1"); !ok {
		t.Error("expected attempt in a new window to be allowed")
	}
}

// failingLimiter always errors.
type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimit(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("E2E_MODE", "false")

	t.Run("rejects over the limit", func(t *testing.T) {
		engine := newAuthEngine(RateLimit(NewRateLimiterWithConfig(1, time.Minute)))

		if w := perform(engine, "Bearer admin"); w.Code != http.StatusOK {
			t.Fatalf("expected first request allowed, got %d", w.Code)
		}
		w := perform(engine, "Bearer admin")
		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", w.Code)
		}
		if code := errorCode(t, w); code != string(domainerror.ErrCodeRateLimited) {
			t.Errorf("expected rate limited code, got %s", code)
		}

		// Limits are per user.
		if w := perform(engine, "Bearer doctor"); w.Code != http.StatusOK {
			t.Errorf("expected other user allowed, got %d", w.Code)
		}
	})

	t.Run("fails open", func(t *testing.T) {
		engine := newAuthEngine(RateLimit(failingLimiter{}))
		if w := perform(engine, "Bearer admin"); w.Code != http.StatusOK {
			t.Errorf("expected request allowed when limiter fails, got %d", w.Code)
		}
	})
}
