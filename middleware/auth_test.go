package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequireAdmin(t *testing.T) {
	secret := []byte("test-secret")
	adminToken, err := NewToken(secret, "ops", RoleAdmin, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	viewerToken, _ := NewToken(secret, "someone", "viewer", time.Hour)
	expiredToken, _ := NewToken(secret, "ops", RoleAdmin, -time.Minute)
	foreignToken, _ := NewToken([]byte("other-secret"), "ops", RoleAdmin, time.Hour)

	var gotSubject string
	handler := Authenticate(secret)(RequireRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = GetSubjectFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "admin", header: "Bearer " + adminToken, want: http.StatusNoContent},
		{name: "no header", header: "", want: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "wrong role", header: "Bearer " + viewerToken, want: http.StatusForbidden},
		{name: "expired", header: "Bearer " + expiredToken, want: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + foreignToken, want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/teams", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	if gotSubject != "ops" {
		t.Errorf("subject = %q, want ops", gotSubject)
	}
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/tournaments", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := do("10.0.0.1:5000"); code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, code)
		}
	}
	if code := do("10.0.0.1:5001"); code != http.StatusTooManyRequests {
		t.Fatalf("burst exceeded: status %d, want 429", code)
	}
	if code := do("10.0.0.2:5000"); code != http.StatusOK {
		t.Fatalf("other client limited: status %d", code)
	}

	now = now.Add(time.Second)
	if code := do("10.0.0.1:5002"); code != http.StatusOK {
		t.Fatalf("after refill: status %d", code)
	}
}

func TestIPRateLimiterEviction(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var now time.Time
	limiter.now = func() time.Time { return now }

	steps := []struct {
		name         string
		at           time.Duration
		ip           string
		wantVisitors int
	}{
		{name: "first client", at: 0, ip: "10.0.0.1", wantVisitors: 1},
		{name: "second client", at: time.Minute, ip: "10.0.0.2", wantVisitors: 2},
		{name: "sweep keeps clients idle exactly ttl", at: visitorTTL, ip: "10.0.0.3", wantVisitors: 3},
		{name: "expired client kept until next sweep", at: 5 * time.Minute, ip: "10.0.0.3", wantVisitors: 3},
		{name: "next sweep evicts idle clients", at: 6 * time.Minute, ip: "10.0.0.3", wantVisitors: 1},
	}

	for _, st := range steps {
		now = start.Add(st.at)
		limiter.Allow(st.ip)
		if got := len(limiter.visitors); got != st.wantVisitors {
			t.Errorf("%s: %d visitors, want %d", st.name, got, st.wantVisitors)
		}
	}
	if _, ok := limiter.visitors["10.0.0.3"]; !ok {
		t.Error("active client evicted")
	}
}
