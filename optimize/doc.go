// Package optimize drives a bounded nonlinear least-squares minimization
// over the free parameters of a fit.
//
// The core iteration is Levenberg-Marquardt (github.com/maorshutman/lm),
// which is unbounded; box constraints are imposed through the MINUIT-style
// parameter transform (sine for two-sided bounds, shifted square root for
// one-sided), so the external parameters seen by the residual function
// always respect their bounds.
//
// The minimization runs in bounded iteration chunks. Between chunks the
// driver checks the cancellation context and the relative drop of the
// residual norm; a stalled norm means convergence, a canceled context ends
// the run early with a partial, explicitly non-converged solution.
//
// At the solution the driver evaluates a numeric Jacobian in external
// parameter space and inverts J^T J for the parameter covariance. A
// singular normal matrix degrades to a NaN-filled covariance instead of
// failing the fit.
package optimize
