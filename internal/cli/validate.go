package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/chipwire/internal/compiler"
)

// BoardValidation holds the validation outcome of one board.
type BoardValidation struct {
	Board  string                     `json:"board"`
	Valid  bool                       `json:"valid"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Boards []BoardValidation `json:"boards"`
	Errors []CLIError        `json:"load_errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Check boards against the node catalog",
		Long: `Check every board under path against the node catalog without running it.

Reports all problems at once: unknown types (E200), duplicate ids (E201),
dangling wires (E202), port indices out of range (E203), inputs fed by more
than one wire (E204), unknown or out-of-range params (E205, E206), bad port
counts (E207), bad constants (E208), boundary index clashes (E209) and
combinational loops (E210).

Exit codes:
  0 - All boards valid
  1 - One or more boards invalid
  2 - Command error (path not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := LoadBoards(path)
	if loadResult == nil {
		code, message := loadErrorParts(loadErrors[0])
		return formatter.fail(ExitCommandError, code, message, nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, path)

	result := ValidationResult{Valid: len(loadErrors) == 0, Boards: []BoardValidation{}}
	for _, err := range loadErrors {
		code, message := loadErrorParts(err)
		result.Errors = append(result.Errors, CLIError{Code: code, Message: message})
	}

	reg := opts.registry()
	for _, b := range loadResult.Boards {
		formatter.VerboseLog("Validating board: %s", b.Name)
		errs := compiler.Validate(b, reg)
		result.Boards = append(result.Boards, BoardValidation{
			Board:  b.Name,
			Valid:  len(errs) == 0,
			Errors: errs,
		})
		if len(errs) > 0 {
			result.Valid = false
			opts.Logger().Debug("board invalid", "board", b.Name, "errors", len(errs), "error", compiler.Err(errs))
		}
	}

	if formatter.JSON() {
		if result.Valid {
			return formatter.Success(result)
		}
		if err := formatter.Failure("E_INVALID", "validation failed", result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "validation failed")
	}

	w := formatter.Writer
	for _, e := range result.Errors {
		fmt.Fprintf(w, "✗ %s: %s\n", e.Code, e.Message)
	}
	invalid := 0
	for _, bv := range result.Boards {
		if bv.Valid {
			fmt.Fprintf(w, "✓ %s\n", bv.Board)
			continue
		}
		invalid++
		fmt.Fprintf(w, "✗ %s\n", bv.Board)
		for _, e := range bv.Errors {
			fmt.Fprintf(w, "  [%s] %s: %s\n", e.Code, e.Field, e.Message)
		}
	}

	if !result.Valid {
		fmt.Fprintf(w, "\n%d board(s) invalid, %d load error(s)\n", invalid, len(result.Errors))
		return NewExitError(ExitFailure, "validation failed")
	}
	fmt.Fprintf(w, "\n✓ All %d board(s) valid\n", len(result.Boards))
	return nil
}
