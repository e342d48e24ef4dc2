package model

import "fmt"

// InputDataError reports malformed or missing required fields pervasive
// enough to abort an analysis. Isolated bad rows are skipped, not fatal.
type InputDataError struct {
	Reason string
}

func (e *InputDataError) Error() string { return "input data: " + e.Reason }

// InsufficientDataError reports too few observations or populated bins to fit
// a model reliably. The fit is aborted rather than returning a degenerate
// surface.
type InsufficientDataError struct {
	Need int
	Got  int
	What string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s (need %d, got %d)", e.What, e.Need, e.Got)
}

// FitConvergenceError reports a regression solver failure. It is surfaced to
// the caller and never retried silently.
type FitConvergenceError struct {
	Stage string
	Err   error
}

func (e *FitConvergenceError) Error() string {
	return fmt.Sprintf("fit did not converge at %s: %v", e.Stage, e.Err)
}

func (e *FitConvergenceError) Unwrap() error { return e.Err }

// ConstraintViolationError reports a breach of the post-fit invariant
// generation <= Y. The evaluation pipeline makes this structurally
// impossible, so any occurrence is a defect to raise loudly.
type ConstraintViolationError struct {
	Row           int
	GenerationKWh float64
	PotentialKWh  float64
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("envelope constraint violated at row %d: generation %.4f > potential %.4f",
		e.Row, e.GenerationKWh, e.PotentialKWh)
}

// NoDataError reports an aggregation or report requested for a period with
// zero qualifying rows.
type NoDataError struct {
	What string
}

func (e *NoDataError) Error() string { return "no data: " + e.What }
