package pipeline

import (
	"errors"
	"fmt"
)

// Stage names the step of the per-URL pipeline that failed.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageLoad    Stage = "load"
	StageExtract Stage = "extract"
	StagePersist Stage = "persist"
	StageReduce  Stage = "reduce"
)

// ErrNoProducts is returned when a page yields an empty listing, so the URL
// still contributes a row to the summary.
var ErrNoProducts = errors.New("no products extracted")

// PipelineError is any failure inside one URL's processing.
type PipelineError struct {
	URL   string
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
