// Package errs defines the closed set of automation error kinds for sapflow.
// Every failure that crosses a package boundary in the automation core is one
// of these tagged variants, so callers can branch on Kind instead of matching
// message strings. Raw COM/OS errors are always wrapped, never surfaced as-is.
package errs

import (
	"errors"
	"fmt"
	"time"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ConnectionFailed indicates no viable SAP session could be established.
	ConnectionFailed Kind = "connection_failed"
	// ControlNotFound indicates a required screen element could not be
	// located or interacted with.
	ControlNotFound Kind = "control_not_found"
	// ExportTimeout indicates the expected export artifact never appeared.
	ExportTimeout Kind = "export_timeout"
	// InvalidCommand indicates malformed run parameters.
	InvalidCommand Kind = "invalid_command"
)

// E wraps an error with a kind and the structured context needed to diagnose
// a layout or timing change without reproducing the external session.
type E struct {
	Kind    Kind
	Message string

	// ControlID is set for ControlNotFound.
	ControlID string
	// Dir, Pattern and Elapsed are set for ExportTimeout.
	Dir     string
	Pattern string
	Elapsed time.Duration

	Err error
}

func (e *E) Error() string {
	msg := e.Message
	switch e.Kind {
	case ControlNotFound:
		if e.ControlID != "" {
			msg = fmt.Sprintf("%s: %s", msg, e.ControlID)
		}
	case ExportTimeout:
		msg = fmt.Sprintf("%s (dir=%s pattern=%s elapsed=%s)", msg, e.Dir, e.Pattern, e.Elapsed)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *E) Unwrap() error { return e.Err }

// Connection reports that no connection strategy succeeded.
func Connection(msg string, err error) *E {
	return &E{Kind: ConnectionFailed, Message: msg, Err: err}
}

// Control reports a screen element that could not be resolved.
func Control(controlID string, err error) *E {
	return &E{Kind: ControlNotFound, Message: "sap control not found", ControlID: controlID, Err: err}
}

// Export reports that no matching artifact was detected within the window.
func Export(dir, pattern string, elapsed time.Duration) *E {
	return &E{Kind: ExportTimeout, Message: "export file not detected", Dir: dir, Pattern: pattern, Elapsed: elapsed}
}

// Validation reports malformed run parameters.
func Validation(msg string) *E {
	return &E{Kind: InvalidCommand, Message: msg}
}

// KindOf returns the kind of err, or "" when err is not an automation error.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Wrap attaches kind and message to an underlying error unless it already is
// an automation error, in which case the original classification is kept.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	var e *E
	if errors.As(err, &e) {
		return err
	}
	return &E{Kind: kind, Message: msg, Err: err}
}
