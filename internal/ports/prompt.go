package ports

import "context"

// Confirmer asks the operator a yes/no question.
// Implementations block until an answer is available or ctx is done.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmFunc adapts a plain function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// Progress is a visible activity indicator such as a terminal spinner.
// It must be stopped while the operator is being prompted.
type Progress interface {
	Start()
	Stop()
}
