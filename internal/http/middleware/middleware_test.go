package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/winnie-backend/internal/domain"
	"github.com/yungbote/winnie-backend/internal/http/response"
	"github.com/yungbote/winnie-backend/internal/platform/apierr"
	"github.com/yungbote/winnie-backend/internal/platform/ctxutil"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
	"github.com/yungbote/winnie-backend/internal/services"
)

type tokenAuth struct {
	valid  string
	userID uuid.UUID
}

func (a tokenAuth) Register(context.Context, services.RegisterInput) (*types.User, string, error) {
	return nil, "", nil
}

func (a tokenAuth) Login(context.Context, services.LoginInput) (*types.User, string, error) {
	return nil, "", nil
}

func (a tokenAuth) Logout(context.Context) error { return nil }

func (a tokenAuth) GetAccessTTL() time.Duration { return time.Hour }

func (a tokenAuth) SetContextFromToken(ctx context.Context, tok string) (context.Context, error) {
	if tok != a.valid {
		return ctx, apierr.Newf(http.StatusUnauthorized, "unauthorized", "invalid token")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: tok, UserID: a.userID}), nil
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	am := NewAuthMiddleware(logger.Nop(), tokenAuth{valid: "good", userID: userID})

	r := gin.New()
	r.GET("/me", am.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.UserID(c.Request.Context()).String())
	})

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
	}{
		{name: "bearer header", header: "Bearer good", wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer good", wantStatus: http.StatusOK},
		{name: "query token", query: "?token=good", wantStatus: http.StatusOK},
		{name: "missing token", wantStatus: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "basic scheme ignored", header: "Basic good", wantStatus: http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status=%d want %d body=%s", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantStatus == http.StatusOK {
				if rec.Body.String() != userID.String() {
					t.Fatalf("user id=%q", rec.Body.String())
				}
				return
			}
			var env response.ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.Error.Code != "unauthorized" || env.Error.Message == "" {
				t.Fatalf("envelope=%+v", env)
			}
		})
	}
}

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/ping", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		if td == nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, td.RequestID)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "req-123" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") != "req-123" || rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("headers=%v", rec.Header())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if _, err := uuid.Parse(rec.Body.String()); err != nil {
		t.Fatalf("generated request id %q: %v", rec.Body.String(), err)
	}
}
