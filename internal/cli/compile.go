package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/chipwire/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Board  string // board name, when the path holds several
	Output string // output file path
}

// CompiledBoard is one board in canonical form.
type CompiledBoard struct {
	Name     string          `json:"name"`
	Hash     string          `json:"hash"`
	Nodes    int             `json:"nodes"`
	Wires    int             `json:"wires"`
	Document json.RawMessage `json:"document"`
}

// CompilationResult holds the compiled boards.
type CompilationResult struct {
	Boards []CompiledBoard `json:"boards"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <path>",
		Short: "Compile CUE boards to canonical JSON",
		Long: `Compile CUE board documents to canonical JSON.

path is a .cue file or a directory holding one CUE package. Every board
under the top-level "board" field is checked against the board schema and
printed with its content hash, the key runs are stored under.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Board, "board", "", "compile only the named board")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the canonical document of a single board to this file")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := LoadBoards(path)
	if loadResult == nil {
		code, message := loadErrorParts(loadErrors[0])
		return formatter.fail(ExitCommandError, code, message, nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, path)

	// Compilation errors are command-level errors (exit code 2)
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	boards := loadResult.Boards
	if opts.Board != "" {
		b, err := loadResult.Board(opts.Board)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeNoBoard, err.Error(), nil)
		}
		boards = []*ir.Board{b}
	}

	result := &CompilationResult{Boards: make([]CompiledBoard, 0, len(boards))}
	for _, b := range boards {
		formatter.VerboseLog("Compiling board: %s", b.Name)
		compiled, err := compileBoard(b)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		result.Boards = append(result.Boards, compiled)
	}

	if opts.Output != "" {
		if len(result.Boards) != 1 {
			return formatter.fail(ExitCommandError, ErrCodeNoBoard,
				fmt.Sprintf("--output needs exactly one board, found %d (use --board)", len(result.Boards)), nil)
		}
		if err := os.WriteFile(opts.Output, result.Boards[0].Document, 0o644); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

func compileBoard(b *ir.Board) (CompiledBoard, error) {
	doc, err := ir.MarshalCanonical(b.CanonicalMap())
	if err != nil {
		return CompiledBoard{}, fmt.Errorf("board %s: %w", b.Name, err)
	}
	hash, err := ir.BoardHash(b)
	if err != nil {
		return CompiledBoard{}, fmt.Errorf("board %s: %w", b.Name, err)
	}
	return CompiledBoard{
		Name:     b.Name,
		Hash:     hash,
		Nodes:    len(b.Nodes),
		Wires:    len(b.Wires),
		Document: doc,
	}, nil
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d board(s)\n\n", len(result.Boards))
	for _, b := range result.Boards {
		fmt.Fprintf(w, "  %s: %d node(s), %d wire(s)\n", b.Name, b.Nodes, b.Wires)
		fmt.Fprintf(w, "    hash %s\n", b.Hash)
	}

	if outputFile != "" {
		fmt.Fprintf(w, "\nWrote canonical board to %s\n", outputFile)
	}
	return nil
}

// outputCompileErrors outputs every board that failed to compile.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	exitErr := NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))

	if formatter.JSON() {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := loadErrorParts(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}); err != nil {
			return err
		}
		return exitErr
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✗ Compilation failed")
	fmt.Fprintln(w)
	for _, err := range errs {
		code, message := loadErrorParts(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(w, "%s:%d:%d\n", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
		}
		fmt.Fprintf(w, "  %s: %s\n\n", code, message)
	}
	return exitErr
}
