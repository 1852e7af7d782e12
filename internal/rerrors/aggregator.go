package rerrors

// AggregatedErrors is returned by Aggregator.Finish when a pass collected
// one or more errors. It deliberately carries only a count and the pass
// name; the individual errors were already recapped via the logger.
type AggregatedErrors struct {
	Pass  string
	Count int
}

func (e *AggregatedErrors) Error() string {
	return New(KindAggregatedErrors, "pass %q failed with %d error(s)", e.Pass, e.Count).Error()
}

// Recapper receives one formatted recap line per aggregated error. It is
// satisfied by the *log.Logger that rlog.New returns and by testing helpers.
type Recapper interface {
	Warn(msg any, kv ...any)
}

// Aggregator collects errors across a pass instead of failing on the first
// one, mirroring the "collect, then recap" propagation policy: the workflow
// builder, the BFS traverser, and the traversal resolver each run one of
// these across their whole input and only fail at the end.
type Aggregator struct {
	errs []error
	rec  Recapper
}

// NewAggregator creates an Aggregator that recaps through rec. rec may be
// nil, in which case recap lines are simply not emitted.
func NewAggregator(rec Recapper) *Aggregator {
	return &Aggregator{rec: rec}
}

// Add records err if it is non-nil. It never aborts the pass.
func (a *Aggregator) Add(err error) {
	if err == nil {
		return
	}
	a.errs = append(a.errs, err)
}

// Len returns the number of errors collected so far.
func (a *Aggregator) Len() int { return len(a.errs) }

// Errors returns the collected errors in the order they were added.
func (a *Aggregator) Errors() []error { return a.errs }

// Finish emits one recap line per collected error and, if any were
// collected, returns an *AggregatedErrors for passName. Returns nil when the
// pass collected no errors.
func (a *Aggregator) Finish(passName string) error {
	if len(a.errs) == 0 {
		return nil
	}
	if a.rec != nil {
		for _, err := range a.errs {
			a.rec.Warn("pass error", "pass", passName, "error", err)
		}
	}
	return &AggregatedErrors{Pass: passName, Count: len(a.errs)}
}
