package pdf

import "fmt"

// EngineError reports a failed or unusable engine run.
type EngineError struct {
	Engine string
	Err    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Engine, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// TempIOError reports a failure writing or reading a temp artifact.
type TempIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *TempIOError) Error() string {
	return fmt.Sprintf("%s temp file %s: %v", e.Op, e.Path, e.Err)
}

func (e *TempIOError) Unwrap() error {
	return e.Err
}
