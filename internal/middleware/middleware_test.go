package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akolanti/newschat/internal/metrics"
	"github.com/akolanti/newschat/pkg/logger_i"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/time/rate"
)

func okHandler(called *bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}
}

func TestIsValidBearerToken(t *testing.T) {
	log := logger_i.NewLogger("test")
	tests := []struct {
		name   string
		token  string
		bypass bool
		header string
		want   bool
	}{
		{"valid", "secret", false, "Bearer secret", true},
		{"wrong token", "secret", false, "Bearer nope", false},
		{"no bearer prefix", "secret", false, "secret", false},
		{"empty header", "secret", false, "", false},
		{"unconfigured token", "", false, "Bearer ", false},
		{"bypass", "", true, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ConfigureAuth(tt.token, tt.bypass)
			if got := IsValidBearerToken(tt.header, log); got != tt.want {
				t.Errorf("IsValidBearerToken(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestWrapRejectsUnauthorized(t *testing.T) {
	ConfigureAuth("secret", false)
	called := false

	rec := httptest.NewRecorder()
	Wrap(okHandler(&called))(rec, httptest.NewRequest(http.MethodGet, "/chat", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if called {
		t.Error("handler ran without auth")
	}
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Error("rejected responses should still carry a trace id")
	}
}

func TestWrapPropagatesTrace(t *testing.T) {
	ConfigureAuth("secret", false)
	var seen string

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	req.RemoteAddr = "10.1.1.1:4000"
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Trace-Id", "trace-123")
	rec := httptest.NewRecorder()

	Wrap(func(w http.ResponseWriter, r *http.Request) {
		seen = logger_i.TraceID(r.Context())
	})(rec, req)

	if seen != "trace-123" {
		t.Errorf("handler trace = %q", seen)
	}
	if rec.Header().Get("X-Trace-Id") != "trace-123" {
		t.Errorf("response trace = %q", rec.Header().Get("X-Trace-Id"))
	}
}

func TestRateLimiterBurst(t *testing.T) {
	ConfigureAuth("", true)
	previous := limiterInstance
	limiterInstance = NewIPRateLimiter(rate.Limit(0), 2, time.Minute)
	t.Cleanup(func() { limiterInstance = previous })

	called := false
	h := Wrap(okHandler(&called))
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/chat", nil)
		req.RemoteAddr = "10.2.2.2:5000"
		rec := httptest.NewRecorder()
		h(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	req.RemoteAddr = "10.3.3.3:5000"
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("second client status = %d", rec.Code)
	}
	if limiterInstance.Len() != 2 {
		t.Errorf("limiters = %d, want 2", limiterInstance.Len())
	}
}

func TestWrapCountsByRoutePattern(t *testing.T) {
	ConfigureAuth("", true)
	called := false
	r := chi.NewRouter()
	r.Get("/status/{id}", Wrap(okHandler(&called)))

	counter := metrics.HttpRequestsTotal.WithLabelValues("/status/{id}", "200")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/status/some-job", nil)
	req.RemoteAddr = "10.4.4.4:5000"
	r.ServeHTTP(httptest.NewRecorder(), req)
	req = httptest.NewRequest(http.MethodGet, "/status/other-job", nil)
	req.RemoteAddr = "10.4.4.4:5000"
	r.ServeHTTP(httptest.NewRecorder(), req)

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("counted %v requests under the route pattern, want 2", got)
	}
}
