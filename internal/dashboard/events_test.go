package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"momodash/internal/core"
)

func pageOf(current, total int, categories ...string) core.TransactionPage {
	p := core.TransactionPage{CurrentPage: current, TotalPages: total}
	for _, c := range categories {
		p.Transactions = append(p.Transactions, core.Transaction{DateTime: "2024-01-01", Category: c, Amount: 1})
	}
	return p
}

func TestNavigate(t *testing.T) {
	ctrl, doc := newController(t, nil)

	if err := ctrl.Navigate("transactions"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	var active []string
	for _, b := range doc.ByClass(ClassNavButton) {
		if b.HasClass(ClassActive) {
			active = append(active, b.Data("section"))
		}
	}
	if len(active) != 1 || active[0] != "transactions" {
		t.Errorf("active buttons = %v", active)
	}
	var sections []string
	for _, s := range doc.ByClass(ClassSection) {
		if s.HasClass(ClassActive) {
			sections = append(sections, s.ID())
		}
	}
	if len(sections) != 1 || sections[0] != "transactions" {
		t.Errorf("active sections = %v", sections)
	}
}

func TestNavigateUnknownSection(t *testing.T) {
	ctrl, doc := newController(t, nil)
	mark := ctrl.Mark()

	if err := ctrl.Navigate("settings"); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("Navigate() error = %v", err)
	}
	if !doc.ByID("overview").HasClass(ClassActive) {
		t.Error("active section should be unchanged")
	}
	if u, _ := ctrl.UpdatesSince(mark); !u.Empty() {
		t.Errorf("unexpected updates: %+v", u)
	}
}

func TestOnSearchInput(t *testing.T) {
	tests := []struct {
		query      string
		wantSearch bool
	}{
		{"", false},
		{"ab", false},
		{"abc", true},
		{"  a", true},
		{"élé", true},
		{"a😀", true},
		{"😀", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			backend := &fakeBackend{page: pageOf(1, 1), search: pageOf(1, 1, "Food")}
			ctrl, doc := newController(t, backend)
			ctrl.OnSearchInput(context.Background(), tt.query)

			if tt.wantSearch {
				if len(backend.searchCalls) != 1 || backend.searchCalls[0] != tt.query {
					t.Fatalf("search calls = %q", backend.searchCalls)
				}
				if ctrl.Query() != tt.query {
					t.Errorf("Query() = %q", ctrl.Query())
				}
			} else {
				if len(backend.searchCalls) != 0 {
					t.Fatalf("unexpected search %q", backend.searchCalls)
				}
				if len(backend.txCalls) != 1 || backend.txCalls[0].page != 1 || !backend.txCalls[0].filters.IsZero() {
					t.Fatalf("transactions calls = %+v", backend.txCalls)
				}
			}
			if v := doc.ByID(IDSearchInput).Value(); v != tt.query {
				t.Errorf("search input value = %q", v)
			}
		})
	}
}

func TestSearchFailureAlertsAndKeepsTable(t *testing.T) {
	backend := &fakeBackend{page: pageOf(1, 2, "Rent"), searchErr: errors.New("boom")}
	ctrl, doc := newController(t, backend)
	ctrl.FetchTransactions(context.Background(), 1, core.Filters{})
	before := doc.ByID(IDTransactionsBody).InnerHTML()

	mark := ctrl.Mark()
	ctrl.SearchTransactions(context.Background(), "food")

	if got := doc.ByID(IDTransactionsBody).InnerHTML(); got != before {
		t.Errorf("table changed: %q", got)
	}
	u, err := ctrl.UpdatesSince(mark)
	if err != nil {
		t.Fatal(err)
	}
	if len(u.Alerts) != 1 || u.Alerts[0] != "Unable to perform search. Please try again." {
		t.Errorf("alerts = %q", u.Alerts)
	}
	if len(u.Fragments) != 0 {
		t.Errorf("no element should change, got %q", u.Fragments)
	}
}

func TestSearchReplacesTableAndPagination(t *testing.T) {
	backend := &fakeBackend{page: pageOf(3, 5), search: pageOf(1, 2, "Airtime")}
	ctrl, doc := newController(t, backend)
	ctrl.FetchTransactions(context.Background(), 3, core.CategoryFilter("Food"))
	ctrl.SearchTransactions(context.Background(), "airtime")

	if got := text(t, doc, IDPageInfo); got != "Page 1 of 2" {
		t.Errorf("page info = %q", got)
	}
	if !strings.Contains(doc.ByID(IDTransactionsBody).Text(), "Airtime") {
		t.Error("table should show search results")
	}
	if !ctrl.Filters().IsZero() {
		t.Error("search should clear listing filters")
	}
}

func TestFiltersReplaceEachOther(t *testing.T) {
	backend := &fakeBackend{page: pageOf(1, 1)}
	ctrl, doc := newController(t, backend)

	ctrl.OnCategoryChange(context.Background(), "Old")
	f := ctrl.Filters()
	if f.Category == nil || *f.Category != "Old" || f.StartDate != nil {
		t.Fatalf("after category change: %+v", f)
	}
	if v := doc.ByID(IDCategoryFilter).Value(); v != "Old" {
		t.Errorf("category filter value = %q", v)
	}

	ctrl.OnDateChange(context.Background(), "2024-01-01", "")
	f = ctrl.Filters()
	if f.Category != nil {
		t.Error("date change should drop the category filter")
	}
	if f.StartDate == nil || *f.StartDate != "2024-01-01" || f.EndDate == nil || *f.EndDate != "" {
		t.Errorf("date filters = %+v", f)
	}
	last := backend.txCalls[len(backend.txCalls)-1]
	if q := core.TransactionsQuery(last.page, last.filters); q != "page=1&per_page=10&start_date=2024-01-01&end_date=" {
		t.Errorf("query = %q", q)
	}

	ctrl.OnCategoryChange(context.Background(), "")
	if !ctrl.Filters().IsZero() {
		t.Errorf("All Categories should clear filters, got %+v", ctrl.Filters())
	}
}

func TestPrevNextBounds(t *testing.T) {
	backend := &fakeBackend{page: pageOf(1, 2)}
	ctrl, _ := newController(t, backend)
	ctrl.FetchTransactions(context.Background(), 1, core.CategoryFilter("Food"))

	ctrl.OnPrevPage(context.Background())
	if len(backend.txCalls) != 1 {
		t.Fatalf("prev on page 1 should not fetch, calls = %+v", backend.txCalls)
	}

	ctrl.OnNextPage(context.Background())
	if len(backend.txCalls) != 2 {
		t.Fatalf("next should fetch, calls = %+v", backend.txCalls)
	}
	next := backend.txCalls[1]
	if next.page != 2 || !next.filters.IsZero() {
		t.Errorf("next call = %+v, want page 2 without filters", next)
	}

	backend.page = pageOf(2, 2)
	ctrl.FetchTransactions(context.Background(), 2, core.Filters{})
	calls := len(backend.txCalls)
	ctrl.OnNextPage(context.Background())
	if len(backend.txCalls) != calls {
		t.Error("next on the last page should not fetch")
	}
	ctrl.OnPrevPage(context.Background())
	if got := backend.txCalls[len(backend.txCalls)-1].page; got != 1 {
		t.Errorf("prev fetched page %d", got)
	}
}

// blockingBackend holds each search until released.
type blockingBackend struct {
	fakeBackend
	release map[string]chan struct{}
	started chan string
}

func (b *blockingBackend) Search(ctx context.Context, query string) (core.TransactionPage, error) {
	b.started <- query
	<-b.release[query]
	return pageOf(1, 1, query), nil
}

func TestStaleSearchIsDiscarded(t *testing.T) {
	backend := &blockingBackend{
		release: map[string]chan struct{}{"foo": make(chan struct{}), "food": make(chan struct{})},
		started: make(chan string, 2),
	}
	ctrl, doc := newController(t, backend)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctrl.SearchTransactions(context.Background(), "foo")
	}()
	<-backend.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		ctrl.SearchTransactions(context.Background(), "food")
	}()
	<-backend.started

	close(backend.release["food"])
	close(backend.release["foo"])
	wg.Wait()

	if got := doc.ByID(IDTransactionsBody).Text(); !strings.Contains(got, "food") {
		t.Errorf("table = %q, want the newer search", got)
	}
	if ctrl.Query() != "food" {
		t.Errorf("Query() = %q", ctrl.Query())
	}
}

func TestUpdatesSince(t *testing.T) {
	ctrl, _ := newController(t, &fakeBackend{page: pageOf(2, 3, "Food")})
	mark := ctrl.Mark()
	ctrl.FetchTransactions(context.Background(), 2, core.Filters{})

	u, err := ctrl.UpdatesSince(mark)
	if err != nil {
		t.Fatal(err)
	}
	ids := map[string]bool{}
	for _, f := range u.Fragments {
		if !strings.Contains(f, `hx-swap-oob="true"`) {
			t.Errorf("fragment without oob marker: %q", f)
		}
		for _, id := range []string{IDTransactionsBody, IDPageInfo, IDPrevPage, IDNextPage} {
			if strings.Contains(f, `id="`+id+`"`) {
				ids[id] = true
			}
		}
	}
	if !ids[IDTransactionsBody] || !ids[IDPageInfo] || ids[IDPrevPage] || ids[IDNextPage] {
		t.Errorf("changed ids = %v", ids)
	}
	if !strings.Contains(u.HTML(), "Page 2 of 3") {
		t.Errorf("html = %q", u.HTML())
	}

	again, _ := ctrl.UpdatesSince(ctrl.Mark())
	if !again.Empty() {
		t.Errorf("expected no updates, got %+v", again)
	}
}
