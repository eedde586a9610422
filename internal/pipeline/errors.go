package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectivity means the primary page could not be retrieved:
	// transport error, timeout or non-2xx status.
	ErrConnectivity = errors.New("could not reach URL")

	// ErrProcessing means parsing or an analyzer failed after the page
	// was retrieved.
	ErrProcessing = errors.New("analysis failed")
)

// Messages shown to end users.
const (
	connectivityMessage = "Error al conectar con la URL. Asegúrate de que es correcta y accesible. Detalle: %v"
	processingMessage   = "Ocurrió un error inesperado al procesar el análisis: %v"
)

// AnalysisError is returned by a failed run. Its message is the
// user-facing Spanish text; errors.Is matches both the kind
// (ErrConnectivity or ErrProcessing) and the underlying cause.
type AnalysisError struct {
	Kind  error
	Cause error
}

// Error implements error.
func (e *AnalysisError) Error() string {
	if e.Kind == ErrConnectivity {
		return fmt.Sprintf(connectivityMessage, e.Cause)
	}
	return fmt.Sprintf(processingMessage, e.Cause)
}

// Unwrap exposes the kind and the cause.
func (e *AnalysisError) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}

func connectivityError(cause error) error {
	return &AnalysisError{Kind: ErrConnectivity, Cause: cause}
}

// asProcessingError leaves classified errors alone and marks everything
// else as a processing failure.
func asProcessingError(err error) error {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return err
	}
	return &AnalysisError{Kind: ErrProcessing, Cause: err}
}
