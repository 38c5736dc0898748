package idml

import "fmt"

// Level classifies a diagnostic by severity.
type Level int

const (
	// Warning means the value was substituted by a documented safe default and processing
	// continued.
	Warning Level = iota
	// Data means a malformed or absent attribute made the affected element unresolvable.
	Data
	// Structural means a document invariant is broken, such as a placement request without a
	// page. Fatal for the affected element only, never for the document.
	Structural
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Data:
		return "data"
	case Structural:
		return "structural"
	}
	return "unknown"
}

// Diagnostic is a single warning or error emitted during resolution. Elem identifies the document
// element the diagnostic applies to, when known.
type Diagnostic struct {
	Level   Level
	Elem    string
	Message string
}

func (d Diagnostic) Error() string {
	if d.Elem != "" {
		return fmt.Sprintf("%v: %s: %s", d.Level, d.Elem, d.Message)
	}
	return fmt.Sprintf("%v: %s", d.Level, d.Message)
}

// Diagnostics collects diagnostics across a document conversion. Resolution functions append to
// it instead of logging, so that callers decide how to surface the report.
type Diagnostics []Diagnostic

// Warnf appends a warning-level diagnostic.
func (ds *Diagnostics) Warnf(elem, format string, args ...interface{}) {
	*ds = append(*ds, Diagnostic{Warning, elem, fmt.Sprintf(format, args...)})
}

// Dataf appends a data-level diagnostic.
func (ds *Diagnostics) Dataf(elem, format string, args ...interface{}) {
	*ds = append(*ds, Diagnostic{Data, elem, fmt.Sprintf(format, args...)})
}

// Structuralf appends a structural-level diagnostic.
func (ds *Diagnostics) Structuralf(elem, format string, args ...interface{}) {
	*ds = append(*ds, Diagnostic{Structural, elem, fmt.Sprintf(format, args...)})
}

// Fatal returns true if the collection contains any diagnostic above warning level.
func (ds Diagnostics) Fatal() bool {
	for _, d := range ds {
		if d.Level != Warning {
			return true
		}
	}
	return false
}
