// Package chart builds chart configurations and binds them to canvas elements.
//
// Configurations follow the Chart.js JSON shape. The browser reads the
// serialized config from the canvas data-chart attribute and draws it.
package chart

// Type is the kind of chart.
type Type string

const (
	Pie  Type = "pie"
	Bar  Type = "bar"
	Line Type = "line"
)

func (t Type) Valid() bool {
	switch t {
	case Pie, Bar, Line:
		return true
	}
	return false
}

type (
	// Config is the type-independent part of a chart: its data and options.
	Config struct {
		Data    Data    `json:"data"`
		Options Options `json:"options"`
	}

	Data struct {
		Labels   []string  `json:"labels"`
		Datasets []Dataset `json:"datasets"`
	}

	// Dataset colours are either a single colour or one per point.
	Dataset struct {
		Label           string    `json:"label,omitempty"`
		Data            []float64 `json:"data"`
		BackgroundColor any       `json:"backgroundColor,omitempty"`
		BorderColor     string    `json:"borderColor,omitempty"`
		Fill            *bool     `json:"fill,omitempty"`
	}

	Options struct {
		Responsive bool     `json:"responsive"`
		Plugins    *Plugins `json:"plugins,omitempty"`
		Scales     *Scales  `json:"scales,omitempty"`
	}

	Plugins struct {
		Title  *Title  `json:"title,omitempty"`
		Legend *Legend `json:"legend,omitempty"`
	}

	Title struct {
		Display bool   `json:"display"`
		Text    string `json:"text"`
	}

	Legend struct {
		Position string `json:"position,omitempty"`
	}

	Scales struct {
		Y *Axis `json:"y,omitempty"`
	}

	// Axis ticks carry the currency code so the browser can label values.
	Axis struct {
		BeginAtZero bool   `json:"beginAtZero"`
		Ticks       *Ticks `json:"ticks,omitempty"`
	}

	Ticks struct {
		Currency string `json:"currency,omitempty"`
	}
)

// WithTitle returns options showing a title.
func (o Options) WithTitle(text string) Options {
	if o.Plugins == nil {
		o.Plugins = &Plugins{}
	}
	o.Plugins.Title = &Title{Display: true, Text: text}
	return o
}

// WithCurrencyAxis returns options with a zero-based y axis labelled in code.
func (o Options) WithCurrencyAxis(code string) Options {
	o.Scales = &Scales{Y: &Axis{BeginAtZero: true, Ticks: &Ticks{Currency: code}}}
	return o
}
