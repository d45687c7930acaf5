package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/GoSim-25-26J-441/eprod/internal/auth"
	"github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
)

type verifierFunc func(ctx context.Context, token string) (*domain.Principal, error)

func (f verifierFunc) Verify(ctx context.Context, token string) (*domain.Principal, error) {
	return f(ctx, token)
}

func acceptOnly(token, userID string) TokenVerifier {
	return verifierFunc(func(_ context.Context, got string) (*domain.Principal, error) {
		if got != token {
			return nil, errors.New("rejected")
		}
		return &domain.Principal{ID: userID}, nil
	})
}

func TestAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Authenticate(nil, acceptOnly("ses_a", "u-session"), acceptOnly("fb_b", "u-firebase")), func(c *gin.Context) {
		c.String(http.StatusOK, auth.UserID(c))
	})

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing token", "", http.StatusUnauthorized, ""},
		{"first verifier", "Bearer ses_a", http.StatusOK, "u-session"},
		{"second verifier", "bearer fb_b", http.StatusOK, "u-firebase"},
		{"rejected everywhere", "Bearer nope", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			assert.Equal(t, tc.status, rr.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, rr.Body.String())
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/signin", RateLimit(NewKeyedLimiter(2)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/signin", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// other clients have their own bucket
	req := httptest.NewRequest(http.MethodPost, "/signin", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
