// Package fit wires the parameter store, constraint resolver, composite
// model, optimizer and statistics reporter into a single entry point.
//
// A Spec carries the measured spectrum, the composite model, and the
// parameter set; Fit resolves constraints, minimizes the weighted residual
// over the free parameters, and returns an immutable Result with fitted
// values, standard errors, goodness-of-fit statistics, and the fitted
// curve. A subsequent run produces a new Result; it never mutates an old
// one.
//
// Batch runs many independent fits across a worker pool. Each job owns its
// parameter set clone, so concurrent fits share nothing mutable.
package fit
