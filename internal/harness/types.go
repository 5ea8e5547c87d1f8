package harness

// TraceEvent records what one scenario step did.
type TraceEvent struct {
	Step    int      `json:"step"`
	Files   []string `json:"files,omitempty"`
	Changes []string `json:"changes"`
	Error   string   `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace has one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds failed expectations and assertions.
	Errors []string `json:"errors,omitempty"`

	// Database is the final content of the database file, nil if it
	// was never created.
	Database []byte `json:"-"`
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

// AddStep appends the trace event of a step.
func (r *Result) AddStep(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
