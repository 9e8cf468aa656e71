package validate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fundops/dealfill/internal/model"
)

func init() {
	// Disable retry sleep in all tests for fast execution
	checkSleepFunc = func(d time.Duration) {}
}

func TestURLChecker_CheckOnce_Success(t *testing.T) {
	// Create test server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("Expected HEAD request, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewURLChecker(5*time.Second, 4, "", "", "", "")
	target := Target{Field: model.FieldCompanyURL, URL: server.URL}

	result := checker.checkOnce(context.Background(), target)

	if !result.Accessible {
		t.Error("Expected URL to be accessible")
	}

	if result.StatusCode != http.StatusOK {
		t.Errorf("Expected status code 200, got %d", result.StatusCode)
	}

	if result.Field != model.FieldCompanyURL {
		t.Errorf("Expected field to ride the result, got %s", result.Field)
	}

	if result.Error != "" {
		t.Errorf("Expected no error, got %s", result.Error)
	}
}

func TestURLChecker_CheckOnce_404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewURLChecker(5*time.Second, 4, "", "", "", "")

	result := checker.checkOnce(context.Background(), Target{URL: server.URL})

	if result.Accessible {
		t.Error("Expected 404 URL not to be accessible")
	}

	if result.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status code 404, got %d", result.StatusCode)
	}
}

func TestURLChecker_CheckOnce_Redirect(t *testing.T) {
	finalServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer finalServer.Close()

	redirectServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, finalServer.URL, http.StatusMovedPermanently)
	}))
	defer redirectServer.Close()

	checker := NewURLChecker(5*time.Second, 4, "", "", "", "")

	result := checker.checkOnce(context.Background(), Target{URL: redirectServer.URL})

	if !result.Accessible {
		t.Error("Expected redirected URL to be accessible")
	}

	if result.RedirectURL == "" {
		t.Error("Expected redirect URL to be captured")
	}

	if result.RedirectURL != finalServer.URL {
		t.Errorf("Expected redirect to %s, got %s", finalServer.URL, result.RedirectURL)
	}
}

func TestURLChecker_CheckOnce_GetFallback(t *testing.T) {
	tests := []struct {
		headStatus int
		desc       string
	}{
		{http.StatusMethodNotAllowed, "405 rejects HEAD"},
		{http.StatusNotImplemented, "501 rejects HEAD"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			var mu sync.Mutex
			var methods []string

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				methods = append(methods, r.Method)
				mu.Unlock()

				if r.Method == http.MethodHead {
					w.WriteHeader(tt.headStatus)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			checker := NewURLChecker(5*time.Second, 4, "", "", "", "")

			result := checker.checkOnce(context.Background(), Target{URL: server.URL})

			if !result.Accessible {
				t.Error("Expected GET fallback to report accessible")
			}

			if result.StatusCode != http.StatusOK {
				t.Errorf("Expected status code 200 from GET, got %d", result.StatusCode)
			}

			mu.Lock()
			defer mu.Unlock()
			if len(methods) != 2 || methods[0] != http.MethodHead || methods[1] != http.MethodGet {
				t.Errorf("Expected HEAD then GET, got %v", methods)
			}
		})
	}
}

func TestURLChecker_Check_Concurrency(t *testing.T) {
	// Create multiple test servers
	serverCount := 10
	servers := make([]*httptest.Server, serverCount)
	for i := 0; i < serverCount; i++ {
		servers[i] = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond) // Simulate network delay
			w.WriteHeader(http.StatusOK)
		}))
		defer servers[i].Close()
	}

	targets := make([]Target, serverCount)
	for i := 0; i < serverCount; i++ {
		targets[i] = Target{Field: model.FieldCompanyURL, URL: servers[i].URL}
	}

	checker := NewURLChecker(5*time.Second, 20, "", "", "", "")

	start := time.Now()
	results := checker.Check(context.Background(), targets)
	duration := time.Since(start)

	if len(results) != serverCount {
		t.Errorf("Expected %d results, got %d", serverCount, len(results))
	}

	// With concurrency, 10 requests @ 100ms each should complete in < 500ms
	// Without concurrency, it would take 1000ms
	if duration > 500*time.Millisecond {
		t.Errorf("Checks took too long (%v), concurrent execution may not be working", duration)
	}

	// Results must line up with targets by index
	for i, result := range results {
		if !result.Accessible {
			t.Errorf("Result %d: expected accessible", i)
		}
		if result.URL != targets[i].URL {
			t.Errorf("Result %d: expected URL %s, got %s", i, targets[i].URL, result.URL)
		}
	}
}

func TestURLChecker_Check_Empty(t *testing.T) {
	checker := NewURLChecker(5*time.Second, 4, "", "", "", "")

	results := checker.Check(context.Background(), []Target{})

	if len(results) != 0 {
		t.Errorf("Expected 0 results for no targets, got %d", len(results))
	}
}

func TestURLChecker_Check_ContextCancellation(t *testing.T) {
	// Create a slow server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewURLChecker(10*time.Second, 4, "", "", "", "")

	// Create context with short timeout
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	results := checker.Check(ctx, []Target{{URL: server.URL}})

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	// Result should indicate failure due to context cancellation
	if results[0].Accessible {
		t.Error("Expected URL not to be accessible after context cancellation")
	}
}

func TestURLChecker_Check_MixedResults(t *testing.T) {
	// Server 1: OK
	server1 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server1.Close()

	// Server 2: 404
	server2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server2.Close()

	targets := []Target{
		{Field: model.FieldCompanyURL, URL: server1.URL},
		{Field: model.FieldKey("founder_1_linkedin"), URL: server2.URL},
	}

	checker := NewURLChecker(5*time.Second, 4, "", "", "", "")
	results := checker.Check(context.Background(), targets)

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	if !results[0].Accessible {
		t.Error("Expected first URL to be accessible")
	}

	if results[1].Accessible {
		t.Error("Expected second URL not to be accessible")
	}

	if results[1].Field != model.FieldKey("founder_1_linkedin") {
		t.Errorf("Expected field to survive the round trip, got %s", results[1].Field)
	}
}

func TestNewURLChecker_DefaultWorkers(t *testing.T) {
	checker := NewURLChecker(5*time.Second, 0, "", "", "", "")

	if checker.maxWorkers != 4 {
		t.Errorf("Expected default max workers to be 4, got %d", checker.maxWorkers)
	}
}

func TestNewURLChecker_CustomWorkers(t *testing.T) {
	checker := NewURLChecker(5*time.Second, 50, "", "", "", "")

	if checker.maxWorkers != 50 {
		t.Errorf("Expected max workers to be 50, got %d", checker.maxWorkers)
	}
}

func TestCheckWithRetry_TransientThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewURLChecker(5*time.Second, 4, "", "", "", "")

	result := checker.checkWithRetry(context.Background(), Target{URL: server.URL})

	if !result.Accessible {
		t.Error("Expected accessible after retry")
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestCheckWithRetry_PermanentFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewURLChecker(5*time.Second, 4, "", "", "", "")

	result := checker.checkWithRetry(context.Background(), Target{URL: server.URL})

	if result.Accessible {
		t.Error("Expected not accessible for 404")
	}
	// 404 is not retryable, so only one attempt should happen
	if attempts.Load() != 1 {
		t.Errorf("Expected 1 attempt for non-retryable status, got %d", attempts.Load())
	}
}

func TestCheckWithRetry_AllRetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	checker := NewURLChecker(5*time.Second, 4, "", "", "", "")

	result := checker.checkWithRetry(context.Background(), Target{URL: server.URL})

	if result.Accessible {
		t.Error("Expected not accessible after all retries exhausted")
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestCheckWithRetry_429Retried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewURLChecker(5*time.Second, 4, "", "", "", "")

	result := checker.checkWithRetry(context.Background(), Target{URL: server.URL})

	if !result.Accessible {
		t.Error("Expected accessible after 429 retry")
	}
	if attempts.Load() != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts.Load())
	}
}

func TestIsRetryableCheck(t *testing.T) {
	tests := []struct {
		desc      string
		result    model.URLCheck
		retryable bool
	}{
		{"200 OK", model.URLCheck{StatusCode: 200, Accessible: true}, false},
		{"404 Not Found", model.URLCheck{StatusCode: 404}, false},
		{"500 Server Error", model.URLCheck{StatusCode: 500}, true},
		{"502 Bad Gateway", model.URLCheck{StatusCode: 502}, true},
		{"503 Service Unavailable", model.URLCheck{StatusCode: 503}, true},
		{"429 Too Many Requests", model.URLCheck{StatusCode: 429}, true},
		{"timeout error", model.URLCheck{Error: "request failed: timeout"}, true},
		{"connection refused", model.URLCheck{Error: "request failed: connection refused"}, true},
		{"create request error", model.URLCheck{Error: "create request: invalid URL"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := isRetryableCheck(tt.result)
			if got != tt.retryable {
				t.Errorf("isRetryableCheck(%s) = %v, want %v", tt.desc, got, tt.retryable)
			}
		})
	}
}

func TestCheckBatch_ConvenienceFunction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	results := CheckBatch(context.Background(), []Target{{URL: server.URL}})

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	if !results[0].Accessible {
		t.Error("Expected URL to be accessible")
	}
}
