package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"momodash/internal/core"
)

func newTestClient(t *testing.T, h http.HandlerFunc, failures int) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(Options{
		BaseURL:         srv.URL + "/api/",
		Timeout:         2 * time.Second,
		BreakerFailures: failures,
		BreakerTimeout:  time.Minute,
	})
	return c, srv
}

func TestFinancialOverview(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/financial-overview" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_income":1000,"total_expenses":400,"net_balance":600,
			"category_summary":[{"category":"Food","total_amount":-400}]}`))
	}, 5)

	got, err := c.FinancialOverview(context.Background())
	if err != nil {
		t.Fatalf("FinancialOverview() error = %v", err)
	}
	if got.TotalIncome != 1000 || got.NetBalance != 600 {
		t.Errorf("overview = %+v", got)
	}
	if len(got.CategorySummary) != 1 || got.CategorySummary[0].TotalAmount != -400 {
		t.Errorf("category summary = %+v", got.CategorySummary)
	}
	if got.MonthlySummary == nil || got.TopSpendingCategories == nil {
		t.Error("missing sequences should decode as empty")
	}
}

func TestTransactionsQuery(t *testing.T) {
	var rawQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`{"transactions":[{"id":7,"date_time":"2024-01-05T10:00:00","category":"Food","amount":-2500}],
			"current_page":2,"total_pages":5,"total_transactions":42}`))
	}, 5)

	page, err := c.Transactions(context.Background(), 2, core.CategoryFilter("Food"))
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	if rawQuery != "page=2&per_page=10&category=Food" {
		t.Errorf("query = %q", rawQuery)
	}
	if page.CurrentPage != 2 || page.TotalPages != 5 || page.TotalTransactions != 42 {
		t.Errorf("page = %+v", page)
	}
	if len(page.Transactions) != 1 || page.Transactions[0].ID != 7 {
		t.Errorf("transactions = %+v", page.Transactions)
	}
}

func TestSearchEscapesQuery(t *testing.T) {
	var rawQuery, q string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		q = r.URL.Query().Get("q")
		w.Write([]byte(`{"transactions":[],"current_page":1,"total_pages":1}`))
	}, 5)

	if _, err := c.Search(context.Background(), "mobile money & airtime"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if rawQuery != "q=mobile%20money%20%26%20airtime" {
		t.Errorf("raw query = %q", rawQuery)
	}
	if q != "mobile money & airtime" {
		t.Errorf("decoded q = %q", q)
	}
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"plain 500", 500, "oops", "HTTP error! status: 500"},
		{"backend error body", 500, `{"error":"Database error","details":"locked"}`, "Database error: locked"},
		{"error without details", 404, `{"error":"Not found"}`, "Not found"},
		{"empty body", 503, "", "HTTP error! status: 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, 5)

			_, err := c.Transactions(context.Background(), 1, core.Filters{})
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
			}
			if !IsStatus(err, tt.status) {
				t.Errorf("IsStatus(%d) = false", tt.status)
			}
		})
	}
}

func TestRedirectOutside2xxIsFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}, 5)
	if _, err := c.FinancialOverview(context.Background()); !IsStatus(err, http.StatusNotModified) {
		t.Fatalf("error = %v", err)
	}
}

func TestMalformedJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transactions":`))
	}, 5)
	if _, err := c.Search(context.Background(), "food"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCircuitBreakerOpens(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, 2)

	for i := 0; i < 2; i++ {
		if _, err := c.FinancialOverview(context.Background()); err == nil {
			t.Fatal("expected failure")
		}
	}
	if c.BreakerState() != "open" {
		t.Fatalf("breaker state = %q", c.BreakerState())
	}

	_, err := c.FinancialOverview(context.Background())
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("error = %v, want ErrCircuitOpen", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("backend calls = %d, want 2", got)
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}, 1)
	for i := 0; i < 3; i++ {
		c.Search(context.Background(), "abc")
	}
	if c.BreakerState() != "closed" {
		t.Fatalf("breaker state = %q", c.BreakerState())
	}
}

func TestCanceledContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FinancialOverview(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if c.BreakerState() != "closed" {
		t.Fatalf("cancellation should not trip the breaker")
	}
}

func TestConcurrentIdenticalRequestsShareOneCall(t *testing.T) {
	var calls int32
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		entered <- struct{}{}
		<-release
		w.Write([]byte(`{"transactions":[],"current_page":1,"total_pages":1}`))
	}, 5)

	errs := make(chan error, 2)
	fetch := func() {
		_, err := c.Transactions(context.Background(), 1, core.Filters{})
		errs <- err
	}
	go fetch()
	<-entered
	go fetch()
	time.Sleep(100 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("fetch: %v", err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("backend calls = %d, want 1", got)
	}
}

func TestWaiterCancelDoesNotAbortSharedCall(t *testing.T) {
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{}`))
	}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.FinancialOverview(ctx)
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}

	close(release)
	if _, err := c.FinancialOverview(context.Background()); err != nil {
		t.Fatalf("follow-up fetch: %v", err)
	}
}
