package generation

import "fmt"

// Step is one stage of the generation pipeline. Run mutates ctx.Chunk and
// may publish derived data into ctx.Scratch for later steps to consume.
type Step interface {
	Name() string
	Run(ctx *Context) error
}

// StepError wraps a failing step's name around its underlying error so
// pipeline callers and logs can identify which stage aborted generation.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("generation: step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
