// Package model composes parametric peak components and a polynomial
// background into one evaluable composite model.
//
// Every component owns a unique prefix; its generic role names (center,
// sigma, amplitude, ...) are mapped to prefixed parameter names through the
// Key type, which is the single place where prefix and role are joined.
// Cross-component relationships are never wired here; they are expressed as
// derived-parameter expressions resolved by the param package.
//
// A Composite holds no parameter state. Evaluation takes a parameter
// snapshot and an arbitrary x axis, so a fitted model can be re-evaluated
// on a finer grid for plotting without re-running the optimizer.
package model
