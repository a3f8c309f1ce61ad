/*package diag carries non-fatal advisories out of sdtrace's engines. Engines
never print or log: they hand each Warning to the Sink their caller supplied,
and the caller decides whether to log, collect, or drop it.*/
package diag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/warnings.v0"
)

// Kind identifies the condition a Warning describes.
type Kind int

const (
	// Sparse means a dense table is mostly missing values.
	Sparse Kind = iota
	// UniquenessUnchecked means a scatter ran without checking that every
	// cell was written at most once.
	UniquenessUnchecked
)

func (k Kind) String() string {
	switch k {
	case Sparse:
		return "sparse"
	case UniquenessUnchecked:
		return "uniqueness_unchecked"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Warning is a single advisory. FillRatio is only meaningful for Sparse
// warnings.
type Warning struct {
	Kind      Kind
	Msg       string
	FillRatio float64
}

func (w Warning) Error() string { return w.Msg }

// Sink receives warnings. Implementations must be safe to call from the
// goroutine running the engine.
type Sink interface {
	Warn(w Warning)
}

type discard struct{}

func (discard) Warn(Warning) {}

// Discard drops every warning.
var Discard Sink = discard{}

// OrDiscard returns s, or Discard if s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// Collector stores every warning it receives.
type Collector struct {
	mu       sync.Mutex
	warnings []Warning
}

func (c *Collector) Warn(w Warning) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, w)
}

// Warnings returns a copy of the collected warnings in the order they
// arrived.
func (c *Collector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Warning{}, c.warnings...)
}

// Has returns true if a warning of kind k has been collected.
func (c *Collector) Has(k Kind) bool {
	for _, w := range c.Warnings() {
		if w.Kind == k {
			return true
		}
	}
	return false
}

// Err returns the collected warnings as a warnings.List, or nil if there
// are none.
func (c *Collector) Err() error {
	ws := c.Warnings()
	if len(ws) == 0 {
		return nil
	}
	errs := make([]error, len(ws))
	for i := range ws {
		errs[i] = ws[i]
	}
	return warnings.List{Warnings: errs}
}

// Logger forwards warnings to a structured logger at the WARN level.
type Logger struct {
	Log *slog.Logger
}

func (l Logger) Warn(w Warning) {
	attrs := []slog.Attr{slog.String("kind", w.Kind.String())}
	if w.Kind == Sparse {
		attrs = append(attrs, slog.Float64("fill_ratio", w.FillRatio))
	}
	l.Log.LogAttrs(context.Background(), slog.LevelWarn, w.Msg, attrs...)
}

// Tee sends every warning to each of its sinks in turn.
type Tee []Sink

func (t Tee) Warn(w Warning) {
	for _, s := range t {
		OrDiscard(s).Warn(w)
	}
}
