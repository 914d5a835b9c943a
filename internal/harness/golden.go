package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/formstate/internal/ir"
)

// TraceSnapshot is what golden files hold for a scenario: its trace and
// the final flattened values.
type TraceSnapshot struct {
	ScenarioName string
	Entity       string
	Trace        []TraceEvent
	Form         map[string]any
	Source       map[string]any
}

// NewTraceSnapshot builds the snapshot of a scenario result.
func NewTraceSnapshot(scenario *Scenario, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: scenario.Name,
		Entity:       scenario.Entity,
		Trace:        result.Trace,
		Form:         result.Form,
		Source:       result.Source,
	}
}

// toCanonicalMap converts the snapshot to plain maps for ir.MarshalCanonical.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		errs := make(map[string]any, len(event.Errors))
		for k, v := range event.Errors {
			errs[k] = v
		}
		eventMap := map[string]any{
			"seq":     event.Seq,
			"op":      event.Op,
			"outcome": event.Outcome,
			"errors":  errs,
			"dirty":   event.Dirty,
		}
		if event.Path != "" {
			eventMap["path"] = event.Path
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"entity":        s.Entity,
		"trace":         traceList,
		"final": map[string]any{
			"form":   s.Form,
			"source": s.Source,
		},
	}
}

// Marshal returns the canonical JSON of the snapshot.
func (s *TraceSnapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the scenario's golden
// file.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	snapshot := NewTraceSnapshot(scenario, result)
	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
