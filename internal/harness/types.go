package harness

// TraceEvent records one executed step and the form state it left.
type TraceEvent struct {
	Seq     int64             `json:"seq"`
	Op      string            `json:"op"`
	Path    string            `json:"path,omitempty"`
	Outcome string            `json:"outcome"` // "ok" or the step's error
	Errors  map[string]string `json:"errors"`  // visible errors after the step
	Dirty   bool              `json:"dirty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every step behaved as expected and
	// every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Form and Source are the final flattened values.
	Form   map[string]any `json:"form"`
	Source map[string]any `json:"source"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
