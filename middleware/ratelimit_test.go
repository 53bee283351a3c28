package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"PetPal/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimitPerUser(t *testing.T) {
	store := NewRateLimitStore(nil, time.Minute, 2)
	r := gin.New()
	r.POST("/send", func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid == "1" {
			c.Set(ContextUserIDKey, uint(1))
		} else {
			c.Set(ContextUserIDKey, uint(2))
		}
		c.Next()
	}, RateLimit(store), func(c *gin.Context) {
		response.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	send := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/send", nil)
		req.Header.Set("X-Test-User", user)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := send("1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
	rec := send("1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	var env response.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.Error != response.CodeRateLimited {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	if rec := send("2"); rec.Code != http.StatusOK {
		t.Fatalf("expected other user unaffected, got %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		name       string
		header     string
		query      string
		allowQuery bool
		want       string
		ok         bool
	}{
		{"header", "Bearer abc", "", false, "abc", true},
		{"lowercase scheme", "bearer abc", "", false, "abc", true},
		{"wrong scheme", "Basic abc", "", false, "", false},
		{"extra parts", "Bearer a b", "", false, "", false},
		{"query allowed", "", "xyz", true, "xyz", true},
		{"query ignored", "", "xyz", false, "", true},
		{"header wins over query", "Bearer abc", "xyz", true, "abc", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws/chat?token="+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			got, ok := BearerToken(req, tc.allowQuery)
			if got != tc.want || ok != tc.ok {
				t.Fatalf("expected (%q,%v), got (%q,%v)", tc.want, tc.ok, got, ok)
			}
		})
	}
}
