package classification

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// FlowType describes the direction of a money movement.
type FlowType string

const (
	// FlowExpense is money leaving the household.
	FlowExpense FlowType = "expense"
	// FlowIncome is money received.
	FlowIncome FlowType = "income"
	// FlowTransfer is money moved between own accounts.
	FlowTransfer FlowType = "transfer"
)

// FlowPattern is a regular expression that identifies a flow type.
type FlowPattern struct {
	Name     string
	Type     FlowType
	Regex    string
	Priority int // Higher priority patterns are checked first
}

type compiledFlowPattern struct {
	regex *regexp.Regexp
	FlowPattern
}

// FlowDetector recognises transfers and income from a description. It is
// immutable once built.
type FlowDetector struct {
	patterns []compiledFlowPattern
}

// NewFlowDetector compiles the given patterns. Matching is case-insensitive.
func NewFlowDetector(patterns []FlowPattern) (*FlowDetector, error) {
	compiled := make([]compiledFlowPattern, 0, len(patterns))

	for _, p := range patterns {
		expr := p.Regex
		if !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}

		regex, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}

		compiled = append(compiled, compiledFlowPattern{FlowPattern: p, regex: regex})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return &FlowDetector{patterns: compiled}, nil
}

// FlowMatch is the result of a successful detection.
type FlowMatch struct {
	PatternName string
	Type        FlowType
}

// Detect returns the highest-priority pattern matching the description, or
// nil when nothing matches.
func (fd *FlowDetector) Detect(description string) *FlowMatch {
	for _, p := range fd.patterns {
		if p.regex.MatchString(description) {
			return &FlowMatch{PatternName: p.Name, Type: p.Type}
		}
	}
	return nil
}

// IsTransfer reports whether the description looks like an internal transfer.
func (fd *FlowDetector) IsTransfer(description string) bool {
	m := fd.Detect(description)
	return m != nil && m.Type == FlowTransfer
}

// PatternCount returns the number of loaded patterns.
func (fd *FlowDetector) PatternCount() int {
	return len(fd.patterns)
}

// NewDefaultFlowDetector builds a detector from DefaultFlowPatterns. The
// default patterns are constant, so a compile failure is a programming error.
func NewDefaultFlowDetector() *FlowDetector {
	fd, err := NewFlowDetector(DefaultFlowPatterns())
	if err != nil {
		panic(err)
	}
	return fd
}
