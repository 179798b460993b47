package extract

import (
	"errors"
	"fmt"
)

// ErrNoJSON means the model output contained no {...} span.
var ErrNoJSON = errors.New("no JSON object found in model output")

// ParseError is a failed first-pass parse of the model output.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RepairError is a failed repair pass. Output is the repair reply, empty
// when the repair call itself failed.
type RepairError struct {
	Err    error
	Output string
}

func (e *RepairError) Error() string {
	return fmt.Sprintf("repair model output: %v", e.Err)
}

func (e *RepairError) Unwrap() error { return e.Err }

// ExtractionError is returned when both the first parse and the repair pass
// failed. Raw holds the complete first reply for diagnosis.
type ExtractionError struct {
	Parse  *ParseError
	Repair *RepairError
	Raw    string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract listing: %v; %v\nRaw Output:\n%s", e.Parse, e.Repair, e.Raw)
}

func (e *ExtractionError) Unwrap() []error {
	return []error{e.Parse, e.Repair}
}
