package dashboard

import (
	"math"

	"momodash/internal/chart"
	"momodash/internal/core"
)

var categoryPalette = []string{
	"#FF6384", "#36A2EB", "#FFCE56",
	"#4BC0C0", "#9966FF", "#FF9F40",
}

const (
	colorBlue         = "#36A2EB"
	colorRed          = "#e74c3c"
	colorIncome       = "#2ecc71"
	colorIncomeFill   = "rgba(46, 204, 113, 0.2)"
	colorExpensesFill = "rgba(231, 76, 60, 0.2)"
)

// CategoryChart is the spending-by-category pie.
func CategoryChart(summary []core.CategorySummary) chart.Config {
	labels := make([]string, len(summary))
	values := make([]float64, len(summary))
	for i, s := range summary {
		labels[i] = s.Category
		values[i] = math.Abs(s.TotalAmount)
	}
	return chart.Config{
		Data: chart.Data{
			Labels:   labels,
			Datasets: []chart.Dataset{{Data: values, BackgroundColor: categoryPalette}},
		},
		Options: chart.Options{Responsive: true}.WithTitle("Spending by Category"),
	}
}

// MonthlyChart is the monthly volume bar chart.
func MonthlyChart(summary []core.MonthlySummary, currency string) chart.Config {
	labels := make([]string, len(summary))
	values := make([]float64, len(summary))
	for i, m := range summary {
		labels[i] = core.PeriodLabel(m.Year, m.Month)
		values[i] = math.Abs(m.TotalAmount)
	}
	return chart.Config{
		Data: chart.Data{
			Labels: labels,
			Datasets: []chart.Dataset{{
				Label:           "Monthly Transactions",
				Data:            values,
				BackgroundColor: colorBlue,
			}},
		},
		Options: chart.Options{Responsive: true}.
			WithTitle("Monthly Transaction Volumes").
			WithCurrencyAxis(currency),
	}
}

// IncomeExpenseChart plots income against expenses per month. Missing sides
// count as zero.
func IncomeExpenseChart(flows []core.PeriodFlow, currency string) chart.Config {
	labels := make([]string, len(flows))
	income := make([]float64, len(flows))
	expenses := make([]float64, len(flows))
	for i, f := range flows {
		labels[i] = core.PeriodLabel(f.Year, f.Month)
		income[i] = f.IncomeOrZero()
		expenses[i] = math.Abs(f.ExpensesOrZero())
	}
	return chart.Config{
		Data: chart.Data{
			Labels: labels,
			Datasets: []chart.Dataset{
				{Label: "Income", Data: income, BorderColor: colorIncome, BackgroundColor: colorIncomeFill},
				{Label: "Expenses", Data: expenses, BorderColor: colorRed, BackgroundColor: colorExpensesFill},
			},
		},
		Options: chart.Options{Responsive: true}.
			WithTitle("Income vs Expenses").
			WithCurrencyAxis(currency),
	}
}

// TopCategoriesChart is the top spending categories bar chart.
func TopCategoriesChart(top []core.CategorySpend, currency string) chart.Config {
	labels := make([]string, len(top))
	values := make([]float64, len(top))
	for i, c := range top {
		labels[i] = c.Category
		values[i] = math.Abs(c.TotalSpent)
	}
	return chart.Config{
		Data: chart.Data{
			Labels: labels,
			Datasets: []chart.Dataset{{
				Label:           "Top Spending Categories",
				Data:            values,
				BackgroundColor: colorRed,
			}},
		},
		Options: chart.Options{Responsive: true}.
			WithTitle("Top Spending Categories").
			WithCurrencyAxis(currency),
	}
}
