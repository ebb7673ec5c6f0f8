package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"cuelang.org/go/cue/token"
	"go.uber.org/multierr"

	"github.com/roach88/chipwire/internal/compiler"
	"github.com/roach88/chipwire/internal/ir"
	"github.com/roach88/chipwire/internal/waveform"
)

// LoadError represents an error that occurred while loading boards.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadBoards loads every board under path.
//
// A nil result means nothing could be loaded and the single error says why.
// Otherwise errs lists the boards that failed to compile, one LoadError
// each, next to the boards that did.
func LoadBoards(path string) (*compiler.LoadResult, []error) {
	res, err := compiler.LoadBoards(path)
	if res == nil {
		return nil, []error{convertLoadError(err)}
	}
	var errs []error
	for _, e := range multierr.Errors(err) {
		errs = append(errs, convertLoadError(e))
	}
	return res, errs
}

// LoadBoard loads the board called name from path, or the only board when
// name is empty. Fails on the first error.
func LoadBoard(path, name string) (*ir.Board, error) {
	res, errs := LoadBoards(path)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	b, err := res.Board(name)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNoBoard, Message: err.Error()}
	}
	return b, nil
}

// convertLoadError maps a compiler error to a LoadError with position info.
func convertLoadError(err error) *LoadError {
	var compileErr *compiler.CompileError
	switch {
	case errors.As(err, &compileErr):
		return &LoadError{
			Code:    ErrCodeBuildFailed,
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	case errors.Is(err, fs.ErrNotExist):
		return &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	case strings.Contains(err.Error(), "no CUE files"), strings.Contains(err.Error(), "no boards found"):
		return &LoadError{Code: ErrCodeNoFiles, Message: err.Error()}
	default:
		return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	}
}

// loadErrorParts extracts the code and message of any error.
func loadErrorParts(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// parseWaveforms parses waveform flags, reporting bad ones as E009.
func parseWaveforms(flag string, texts []string) ([]waveform.Spec, error) {
	specs, err := waveform.ParseAll(texts)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBadFlag, Message: fmt.Sprintf("--%s: %v", flag, err)}
	}
	return specs, nil
}
