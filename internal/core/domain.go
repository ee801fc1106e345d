package core

import (
	"net/url"
	"strconv"
	"strings"
)

// PerPage is the fixed page size requested for transaction listings.
const PerPage = 10

type (
	// FinancialOverview is the aggregate payload behind the summary cards and charts.
	FinancialOverview struct {
		TotalIncome           float64           `json:"total_income"`
		TotalExpenses         float64           `json:"total_expenses"`
		NetBalance            float64           `json:"net_balance"`
		CategorySummary       []CategorySummary `json:"category_summary"`
		MonthlySummary        []MonthlySummary  `json:"monthly_summary"`
		IncomeVsExpenses      []PeriodFlow      `json:"income_vs_expenses"`
		TopSpendingCategories []CategorySpend   `json:"top_spending_categories"`
	}

	CategorySummary struct {
		Category         string  `json:"category"`
		TotalAmount      float64 `json:"total_amount"`
		TransactionCount int     `json:"transaction_count,omitempty"`
	}

	MonthlySummary struct {
		Year             int     `json:"year"`
		Month            int     `json:"month"`
		TotalAmount      float64 `json:"total_amount"`
		TransactionCount int     `json:"transaction_count,omitempty"`
	}

	// PeriodFlow is one month of income against expenses. Either side may be absent.
	PeriodFlow struct {
		Year     int      `json:"year"`
		Month    int      `json:"month"`
		Income   *float64 `json:"income,omitempty"`
		Expenses *float64 `json:"expenses,omitempty"`
	}

	CategorySpend struct {
		Category   string  `json:"category"`
		TotalSpent float64 `json:"total_spent"`
	}

	Transaction struct {
		ID            int     `json:"id,omitempty"`
		TransactionID string  `json:"transaction_id,omitempty"`
		DateTime      string  `json:"date_time"`
		Category      string  `json:"category"`
		Amount        float64 `json:"amount"`
		Sender        string  `json:"sender,omitempty"`
		Receiver      string  `json:"receiver,omitempty"`
	}

	TransactionPage struct {
		Transactions      []Transaction `json:"transactions"`
		CurrentPage       int           `json:"current_page"`
		TotalPages        int           `json:"total_pages"`
		TotalTransactions int           `json:"total_transactions,omitempty"`
	}

	// Filters narrows a transaction listing. A nil field is not sent at all;
	// a non-nil empty string is sent as an empty parameter.
	Filters struct {
		Category  *string
		StartDate *string
		EndDate   *string
		MinAmount *float64
		MaxAmount *float64
	}
)

// Normalized returns a copy whose sequences are never nil.
func (o FinancialOverview) Normalized() FinancialOverview {
	if o.CategorySummary == nil {
		o.CategorySummary = []CategorySummary{}
	}
	if o.MonthlySummary == nil {
		o.MonthlySummary = []MonthlySummary{}
	}
	if o.IncomeVsExpenses == nil {
		o.IncomeVsExpenses = []PeriodFlow{}
	}
	if o.TopSpendingCategories == nil {
		o.TopSpendingCategories = []CategorySpend{}
	}
	return o
}

// PeriodLabel renders the month as "YYYY-M".
func PeriodLabel(year, month int) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

// IncomeOrZero returns the income side of the flow, 0 when absent.
func (p PeriodFlow) IncomeOrZero() float64 {
	if p.Income == nil {
		return 0
	}
	return *p.Income
}

// ExpensesOrZero returns the expense side of the flow, 0 when absent.
func (p PeriodFlow) ExpensesOrZero() float64 {
	if p.Expenses == nil {
		return 0
	}
	return *p.Expenses
}

// CategoryFilter selects a single category.
func CategoryFilter(category string) Filters {
	return Filters{Category: &category}
}

// DateRangeFilter always carries both bounds, even when empty.
func DateRangeFilter(start, end string) Filters {
	return Filters{StartDate: &start, EndDate: &end}
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f.Category == nil && f.StartDate == nil && f.EndDate == nil &&
		f.MinAmount == nil && f.MaxAmount == nil
}

// Values returns the filter parameters in their wire order.
func (f Filters) Values() [][2]string {
	var out [][2]string
	if f.Category != nil {
		out = append(out, [2]string{"category", *f.Category})
	}
	if f.StartDate != nil {
		out = append(out, [2]string{"start_date", *f.StartDate})
	}
	if f.EndDate != nil {
		out = append(out, [2]string{"end_date", *f.EndDate})
	}
	if f.MinAmount != nil {
		out = append(out, [2]string{"min_amount", strconv.FormatFloat(*f.MinAmount, 'f', -1, 64)})
	}
	if f.MaxAmount != nil {
		out = append(out, [2]string{"max_amount", strconv.FormatFloat(*f.MaxAmount, 'f', -1, 64)})
	}
	return out
}

// TransactionsQuery encodes page, the fixed page size and the filters, in that order.
func TransactionsQuery(page int, f Filters) string {
	var b strings.Builder
	b.WriteString("page=")
	b.WriteString(strconv.Itoa(page))
	b.WriteString("&per_page=")
	b.WriteString(strconv.Itoa(PerPage))
	for _, kv := range f.Values() {
		b.WriteByte('&')
		b.WriteString(url.QueryEscape(kv[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[1]))
	}
	return b.String()
}

// ParseFilters reads filter parameters from a query. Absent keys stay nil.
func ParseFilters(q url.Values) Filters {
	var f Filters
	if q.Has("category") {
		v := q.Get("category")
		f.Category = &v
	}
	if q.Has("start_date") {
		v := q.Get("start_date")
		f.StartDate = &v
	}
	if q.Has("end_date") {
		v := q.Get("end_date")
		f.EndDate = &v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(q.Get("min_amount")), 64); err == nil {
		f.MinAmount = &v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(q.Get("max_amount")), 64); err == nil {
		f.MaxAmount = &v
	}
	return f
}
