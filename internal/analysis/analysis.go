// Package analysis turns an equipment photo into a workout routine using a
// multimodal model.
package analysis

import (
	"context"
	"errors"

	"github.com/meltforce/vizofit/internal/models"
)

// FallbackMessage is shown when a failure carries no readable message.
const FallbackMessage = "Failed to analyze equipment."

// Request is one analysis call.
type Request struct {
	Image    []byte
	MIMEType string // defaults to image/jpeg
	Units    models.UnitSystem
	Language string
}

// Analyzer identifies equipment in an image and returns a routine.
// Failures are returned as *Error.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*models.WorkoutRoutine, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, req Request) (*models.WorkoutRoutine, error)

func (f AnalyzerFunc) Analyze(ctx context.Context, req Request) (*models.WorkoutRoutine, error) {
	return f(ctx, req)
}

// Error is an analysis failure with a message fit for the user.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Message returns the user-facing message for err: the *Error message when
// there is one, otherwise FallbackMessage.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return FallbackMessage
}
