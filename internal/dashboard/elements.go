package dashboard

import (
	"sort"

	"momodash/internal/dom"
)

// Element ids and classes the dashboard page is expected to carry.
const (
	ClassNavButton = "nav-btn"
	ClassSection   = "section"
	ClassActive    = "active"

	IDTotalIncome        = "total-income"
	IDTotalExpenses      = "total-expenses"
	IDNetBalance         = "net-balance"
	IDCategoryChart      = "category-chart"
	IDMonthlyChart       = "monthly-chart"
	IDIncomeExpenseChart = "income-expense-chart"
	IDTopCategoriesChart = "top-categories-chart"
	IDSearchInput        = "search-input"
	IDCategoryFilter     = "category-filter"
	IDStartDate          = "start-date"
	IDEndDate            = "end-date"
	IDTransactionsBody   = "full-transactions-body"
	IDPrevPage           = "prev-page"
	IDNextPage           = "next-page"
	IDPageInfo           = "page-info"
	IDInsights           = "insights-container"
)

// Elements is the set of bindings looked up once per page. A nil field means
// the page has no such element and the feature it drives is skipped.
type Elements struct {
	NavButtons []*dom.Element
	Sections   []*dom.Element

	TotalIncome   *dom.Element
	TotalExpenses *dom.Element
	NetBalance    *dom.Element

	CategoryChart      *dom.Element
	MonthlyChart       *dom.Element
	IncomeExpenseChart *dom.Element
	TopCategoriesChart *dom.Element

	SearchInput      *dom.Element
	CategoryFilter   *dom.Element
	StartDateFilter  *dom.Element
	EndDateFilter    *dom.Element
	TransactionsBody *dom.Element
	PrevPage         *dom.Element
	NextPage         *dom.Element
	PageInfo         *dom.Element

	Insights *dom.Element
}

// Lookup binds every known element of doc.
func Lookup(doc *dom.Document) Elements {
	return Elements{
		NavButtons: doc.ByClass(ClassNavButton),
		Sections:   doc.ByClass(ClassSection),

		TotalIncome:   doc.ByID(IDTotalIncome),
		TotalExpenses: doc.ByID(IDTotalExpenses),
		NetBalance:    doc.ByID(IDNetBalance),

		CategoryChart:      doc.ByID(IDCategoryChart),
		MonthlyChart:       doc.ByID(IDMonthlyChart),
		IncomeExpenseChart: doc.ByID(IDIncomeExpenseChart),
		TopCategoriesChart: doc.ByID(IDTopCategoriesChart),

		SearchInput:      doc.ByID(IDSearchInput),
		CategoryFilter:   doc.ByID(IDCategoryFilter),
		StartDateFilter:  doc.ByID(IDStartDate),
		EndDateFilter:    doc.ByID(IDEndDate),
		TransactionsBody: doc.ByID(IDTransactionsBody),
		PrevPage:         doc.ByID(IDPrevPage),
		NextPage:         doc.ByID(IDNextPage),
		PageInfo:         doc.ByID(IDPageInfo),

		Insights: doc.ByID(IDInsights),
	}
}

// Missing lists the ids the page lacks, for a startup warning.
func (e Elements) Missing() []string {
	var out []string
	for id, el := range map[string]*dom.Element{
		IDTotalIncome:        e.TotalIncome,
		IDTotalExpenses:      e.TotalExpenses,
		IDNetBalance:         e.NetBalance,
		IDCategoryChart:      e.CategoryChart,
		IDMonthlyChart:       e.MonthlyChart,
		IDIncomeExpenseChart: e.IncomeExpenseChart,
		IDTopCategoriesChart: e.TopCategoriesChart,
		IDSearchInput:        e.SearchInput,
		IDCategoryFilter:     e.CategoryFilter,
		IDStartDate:          e.StartDateFilter,
		IDEndDate:            e.EndDateFilter,
		IDTransactionsBody:   e.TransactionsBody,
		IDPrevPage:           e.PrevPage,
		IDNextPage:           e.NextPage,
		IDPageInfo:           e.PageInfo,
	} {
		if el == nil {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
