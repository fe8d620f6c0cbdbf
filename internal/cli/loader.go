package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/verity/internal/compiler"
)

// Error codes for load failures.
const (
	ErrCodeGeneric  = "E001" // Generic/unknown error
	ErrCodeCompile  = "E002" // CUE load, build or world compile error
	ErrCodeNotFound = "E005" // Path not found
	ErrCodeDatabase = "E006" // Journal open or query failed
)

// LoadError represents a failure to load a world.
type LoadError struct {
	Code    string
	Message string
	Line    int
	Err     error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Code, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// loadWorld loads a world from a CUE directory or file.
func loadWorld(path string) (*compiler.WorldSpec, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("world not found: %s", path), Err: err}
	}

	spec, err := compiler.LoadWorld(path)
	if err != nil {
		le := &LoadError{Code: ErrCodeCompile, Message: err.Error(), Err: err}
		var cErr *compiler.CompileError
		if errors.As(err, &cErr) {
			le.Message = fmt.Sprintf("%s: %s", cErr.Field, cErr.Message)
			if cErr.Pos.IsValid() {
				le.Line = cErr.Pos.Line()
			}
		}
		return nil, le
	}
	return spec, nil
}

// loadExitError converts a loadWorld error into an ExitError. A missing world
// is a command error; a world that does not compile is a failure.
func loadExitError(err error) *ExitError {
	var le *LoadError
	if errors.As(err, &le) && le.Code == ErrCodeNotFound {
		return WrapExitError(ExitCommandError, "failed to load world", err)
	}
	return WrapExitError(ExitFailure, "failed to load world", err)
}
