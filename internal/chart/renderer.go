package chart

import (
	"encoding/json"
	"errors"
	"fmt"

	"momodash/internal/dom"
	"momodash/internal/log"
	"momodash/internal/metrics"
)

// Attribute is where a live chart keeps its serialized config.
const Attribute = "data-chart"

// Chart is a chart bound to a canvas element.
type Chart struct {
	Type      Type
	Config    Config
	el        *dom.Element
	destroyed bool
}

// Destroy releases the chart and clears its canvas.
func (c *Chart) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	if c.el != nil {
		c.el.RemoveAttr(Attribute)
	}
}

func (c *Chart) Destroyed() bool {
	return c.destroyed
}

// Constructor binds a configuration to a canvas. It fails when the
// configuration cannot be drawn.
type Constructor func(el *dom.Element, t Type, cfg Config) (*Chart, error)

type payload struct {
	Type Type `json:"type"`
	Config
}

// Construct serializes the chart onto the canvas.
func Construct(el *dom.Element, t Type, cfg Config) (*Chart, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unsupported chart type %q", t)
	}
	if el.Tag() != "canvas" {
		return nil, fmt.Errorf("element #%s is a <%s>, not a canvas", el.ID(), el.Tag())
	}
	raw, err := json.Marshal(payload{Type: t, Config: cfg})
	if err != nil {
		return nil, fmt.Errorf("encode chart config: %w", err)
	}
	el.SetAttr(Attribute, string(raw))
	return &Chart{Type: t, Config: cfg, el: el}, nil
}

var errConstructorPanic = errors.New("chart constructor panicked")

// Renderer draws charts, keeping at most one live chart per canvas.
type Renderer struct {
	construct Constructor
	logger    *log.Logger
	metrics   metrics.Recorder
}

func NewRenderer(logger *log.Logger, rec metrics.Recorder) *Renderer {
	if logger == nil {
		logger = log.Discard()
	}
	if rec == nil {
		rec = metrics.NoOp{}
	}
	return &Renderer{
		construct: Construct,
		logger:    logger.WithComponent(log.ComponentChart),
		metrics:   rec,
	}
}

// WithConstructor swaps the constructor, for tests.
func (r *Renderer) WithConstructor(c Constructor) *Renderer {
	r.construct = c
	return r
}

// Render destroys any chart already on el and draws a new one. It returns nil
// when el is missing or construction fails; neither is fatal.
func (r *Renderer) Render(el *dom.Element, t Type, cfg Config) *Chart {
	if el == nil {
		r.logger.Warn("Chart element not found", log.FieldChartType, string(t))
		return nil
	}
	if prev := el.Attachment(); prev != nil {
		prev.Destroy()
		el.SetAttachment(nil)
	}

	c, err := r.safeConstruct(el, t, cfg)
	if err != nil {
		r.logger.Error("Error rendering chart",
			log.FieldChart, el.ID(),
			log.FieldChartType, string(t),
			log.FieldError, err)
		r.metrics.RecordChartRender(el.ID(), false)
		return nil
	}
	el.SetAttachment(c)
	r.metrics.RecordChartRender(el.ID(), true)
	return c
}

func (r *Renderer) safeConstruct(el *dom.Element, t Type, cfg Config) (c *Chart, err error) {
	defer func() {
		if p := recover(); p != nil {
			c, err = nil, fmt.Errorf("%w: %v", errConstructorPanic, p)
		}
	}()
	return r.construct(el, t, cfg)
}
