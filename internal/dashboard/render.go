package dashboard

import (
	"fmt"

	"golang.org/x/net/html"

	"momodash/internal/chart"
	"momodash/internal/core"
	"momodash/internal/dom"
	"momodash/internal/log"
)

const (
	tableColumns   = "5"
	noTransactions = "No transactions found"
	notAvailable   = "N/A"
	allCategories  = "All Categories"
)

func (c *Controller) applyOverview(o core.FinancialOverview) {
	c.setSummary(
		c.format.Currency(o.TotalIncome),
		c.format.Currency(o.TotalExpenses),
		c.format.Currency(o.NetBalance),
	)

	code := c.format.Code()
	if len(o.CategorySummary) > 0 {
		c.renderChart(c.el.CategoryChart, chart.Pie, CategoryChart(o.CategorySummary))
	}
	if len(o.MonthlySummary) > 0 {
		c.renderChart(c.el.MonthlyChart, chart.Bar, MonthlyChart(o.MonthlySummary, code))
	}
	if len(o.IncomeVsExpenses) > 0 {
		c.renderChart(c.el.IncomeExpenseChart, chart.Line, IncomeExpenseChart(o.IncomeVsExpenses, code))
	}
	if len(o.TopSpendingCategories) > 0 {
		c.renderChart(c.el.TopCategoriesChart, chart.Bar, TopCategoriesChart(o.TopSpendingCategories, code))
	}
	if len(o.CategorySummary) > 0 {
		c.populateCategoryFilter(o.CategorySummary)
	}
}

func (c *Controller) renderChart(el *dom.Element, t chart.Type, cfg chart.Config) {
	if el == nil {
		return
	}
	c.logger.Debug("Rendering chart", log.FieldChart, el.ID(), log.FieldCount, len(cfg.Data.Labels))
	c.charts.Render(el, t, cfg)
}

func (c *Controller) setSummary(income, expenses, balance string) {
	for _, card := range []struct {
		el   *dom.Element
		text string
	}{
		{c.el.TotalIncome, income},
		{c.el.TotalExpenses, expenses},
		{c.el.NetBalance, balance},
	} {
		if card.el != nil {
			card.el.SetText(card.text)
		}
	}
}

func (c *Controller) applyPage(p core.TransactionPage) {
	c.renderTransactionsTable(p.Transactions)
	c.currentPage = p.CurrentPage
	c.totalPages = p.TotalPages
	c.updatePagination()
}

// RenderTransactionsTable replaces the table body with one row per transaction.
func (c *Controller) RenderTransactionsTable(transactions []core.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderTransactionsTable(transactions)
}

func (c *Controller) renderTransactionsTable(transactions []core.Transaction) {
	body := c.el.TransactionsBody
	if body == nil {
		return
	}
	if len(transactions) == 0 {
		body.ReplaceChildren(spanningRow(noTransactions))
		return
	}

	rows := make([]*html.Node, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, dom.NewNode("tr", nil,
			cell(c.format.Date(t.DateTime)),
			cell(t.Category),
			cell(c.format.Currency(t.Amount)),
			cell(orNotAvailable(t.Sender)),
			cell(orNotAvailable(t.Receiver)),
		))
	}
	body.ReplaceChildren(rows...)
}

func (c *Controller) renderTableError(err error) {
	if c.el.TransactionsBody == nil {
		return
	}
	c.el.TransactionsBody.ReplaceChildren(spanningRow(fmt.Sprintf("Error loading transactions: %v", err)))
}

// UpdatePagination writes the page label and enables the prev and next
// controls for the current state.
func (c *Controller) UpdatePagination() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updatePagination()
}

func (c *Controller) updatePagination() {
	if c.el.PageInfo == nil || c.el.PrevPage == nil || c.el.NextPage == nil {
		return
	}
	c.el.PageInfo.SetText(fmt.Sprintf("Page %d of %d", c.currentPage, c.totalPages))
	c.el.PrevPage.SetDisabled(c.currentPage == 1)
	c.el.NextPage.SetDisabled(c.currentPage == c.totalPages)
}

// PopulateCategoryFilter rebuilds the category dropdown from the distinct
// categories of summary, in first-seen order.
func (c *Controller) PopulateCategoryFilter(summary []core.CategorySummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.populateCategoryFilter(summary)
}

func (c *Controller) populateCategoryFilter(summary []core.CategorySummary) {
	sel := c.el.CategoryFilter
	if sel == nil {
		return
	}
	seen := make(map[string]bool, len(summary))
	options := []*html.Node{option("", allCategories)}
	for _, s := range summary {
		if seen[s.Category] {
			continue
		}
		seen[s.Category] = true
		options = append(options, option(s.Category, s.Category))
	}
	sel.ReplaceChildren(options...)
}

func cell(text string) *html.Node {
	return dom.NewNode("td", nil, dom.TextNode(text))
}

func spanningRow(text string) *html.Node {
	return dom.NewNode("tr", nil,
		dom.NewNode("td", []dom.Attribute{dom.A("colspan", tableColumns)}, dom.TextNode(text)))
}

func option(value, label string) *html.Node {
	return dom.NewNode("option", []dom.Attribute{dom.A("value", value)}, dom.TextNode(label))
}

func orNotAvailable(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
