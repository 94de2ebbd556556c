package runner

import "time"

// Result is the outcome of one test case. Exactly one of the
// Skipped/Passed/(!Passed) classifications holds for any given Result.
type Result struct {
	Name        string
	Passed      bool
	Duration    time.Duration
	Message     string
	Skipped     bool
	Timeout     bool
	NonCritical bool
}

// Aggregate is the append-only collection of Results for one run.
type Aggregate struct {
	Results  []Result
	Total    int
	Passed   int
	Failed   int
	Skipped  int
	Timeouts int
}

// Add appends r and updates the running totals, classifying r into
// exactly one of skipped/passed/failed.
func (a *Aggregate) Add(r Result) {
	a.Results = append(a.Results, r)
	a.Total++
	switch {
	case r.Skipped:
		a.Skipped++
	case r.Passed:
		a.Passed++
	default:
		a.Failed++
	}
	if r.Timeout {
		a.Timeouts++
	}
}

// CompliancePercentage is 100*passed/(total-skipped), or 0 when every test
// was skipped.
func (a *Aggregate) CompliancePercentage() float64 {
	denom := a.Total - a.Skipped
	if denom <= 0 {
		return 0
	}
	return 100 * float64(a.Passed) / float64(denom)
}

// TransportKind selects which Transport implementation the runner
// constructs fresh for each test.
type TransportKind string

const (
	TransportStdio TransportKind = "stdio"
	TransportHTTP  TransportKind = "http"
)

// Config bundles everything the runner needs to assemble and execute a
// run: the resolved test list has already been filtered by the registry
// and compatibility resolver before reaching here.
type Config struct {
	TransportKind   TransportKind
	ServerCommand   string // process command (stdio) or base URL (http)
	ServerArgs      []string
	Env             map[string]string
	ProtocolVersion string

	TestTimeout  time.Duration
	ToolsTimeout time.Duration

	SkipShutdown bool

	// SkipTests is normally applied upstream by registry.FilterForRun
	// before a case list ever reaches Run; runOne re-checks it as a
	// defensive second layer against a caller that invokes Run directly
	// with an unfiltered list.
	SkipTests map[string]bool

	Logger Logger
}
