// Package param holds the named scalar parameters of a fit model and
// resolves the algebraic constraints between them.
//
// A Parameter is exactly one of three kinds:
//
//   - free: directly adjusted by the optimizer
//   - fixed: held at its value, contributing no degree of freedom
//   - derived: recomputed from an arithmetic expression over other
//     parameters, never directly optimized
//
// Derived parameters carry a small typed expression AST (see ParseExpr)
// rather than a general-purpose evaluator, so the dependency graph between
// parameters stays statically analyzable. Resolve builds that graph, orders
// it topologically, and returns an Evaluator mapping a free-parameter vector
// to a full value snapshot.
//
// The Set is the single source of truth for parameter state. Model and
// optimizer code operate on snapshots derived from it; the Set itself is
// only mutated during setup and once after a successful fit.
package param
