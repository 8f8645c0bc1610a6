// Package analysis turns monthly transactions into a financial report:
// aggregation, patterns, forecast, anomalies, insights, recommendations,
// alerts and a health score. Every stage is a pure function of its input.
package analysis

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/finsight/internal/classification"
)

// Deps contains the dependencies of the analysis engine.
type Deps struct {
	// Categorizer assigns categories and supplies per-category tips and rates.
	Categorizer *classification.Categorizer
	// Clock supplies the analysis timestamp and the default reference date.
	Clock func() time.Time
	// Logger is optional; the default logger tagged component=analysis is
	// used when nil.
	Logger *slog.Logger
}

// Validate ensures all required dependencies are provided.
func (d *Deps) Validate() error {
	if d.Categorizer == nil {
		return fmt.Errorf("categorizer dependency is required")
	}
	if d.Clock == nil {
		return fmt.Errorf("clock dependency is required")
	}
	return nil
}

// Engine runs the analysis pipeline. It holds no mutable state and may be
// shared between goroutines.
type Engine struct {
	deps Deps
}

// NewEngine creates a new analysis engine with the given dependencies.
func NewEngine(deps Deps) (*Engine, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	return &Engine{deps: deps}, nil
}

func (e *Engine) logger() *slog.Logger {
	if e.deps.Logger != nil {
		return e.deps.Logger
	}
	return slog.Default().With("component", "analysis")
}

// NewDefaultEngine creates an engine over the built-in keyword table and the
// system clock.
func NewDefaultEngine() *Engine {
	return &Engine{deps: Deps{
		Categorizer: classification.NewDefaultCategorizer(),
		Clock:       time.Now,
	}}
}
