// Package lineshape provides spectroscopic line shape functions: pure
// mappings from an energy axis and a fixed set of shape parameters to
// predicted intensities.
//
// Available profiles:
//
//   - Elementary shapes: Gaussian, Lorentzian, Doniach (asymmetric
//     Doniach-Sunjic), PseudoVoigt, FermiDirac step
//   - Polynomial background up to cubic order
//   - Singlet: Doniach profile convolved with a Gaussian kernel
//   - Doublet: two linked Doniach profiles (spin-orbit split pair)
//     convolved with a Gaussian kernel
//   - FermiEdge: Fermi-Dirac distribution convolved with a Gaussian kernel
//
// The convolved profiles are normalized to unit maximum before amplitude
// scaling, so the amplitude parameter is the peak height of the main
// component. The convolution uses an FFT for long arrays and a direct
// evaluation for short ones; both produce an output aligned to the input
// axis with edge padding to suppress boundary artifacts.
//
// All functions are deterministic and free of side effects. Diagnostic
// quantities (FWHM, height, area) are reporting-only helpers and never feed
// back into fitting.
package lineshape
