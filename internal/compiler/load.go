package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"go.uber.org/multierr"

	"github.com/roach88/chipwire/internal/ir"
)

// LoadResult contains the boards found under one path.
type LoadResult struct {
	Boards    []*ir.Board
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int
}

// Board returns the board with the given name, or the only board when name
// is empty.
func (r *LoadResult) Board(name string) (*ir.Board, error) {
	if name == "" {
		if len(r.Boards) == 1 {
			return r.Boards[0], nil
		}
		names := make([]string, len(r.Boards))
		for i, b := range r.Boards {
			names[i] = b.Name
		}
		return nil, fmt.Errorf("%d boards found %v: pick one by name", len(r.Boards), names)
	}
	for _, b := range r.Boards {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("board %q not found", name)
}

// LoadBoards reads every board under the top-level "board" field.
//
// path may be a single .cue file or a directory holding one CUE package.
// Boards that fail to compile are skipped and their errors combined into the
// returned error, so callers may still use the boards that did compile.
func LoadBoards(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("board path: %w", err)
	}

	ctx := cuecontext.New()
	var value cue.Value
	result := &LoadResult{}

	if info.IsDir() {
		files, err := FindCUEFiles(path)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", path, err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no CUE files found in %s", path)
		}
		result.FileCount = len(files)

		instances := load.Instances([]string{"."}, &load.Config{Dir: path})
		if len(instances) == 0 {
			return nil, fmt.Errorf("no CUE instances loaded from %s", path)
		}
		inst := instances[0]
		if inst.Err != nil {
			return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
		}
		value = ctx.BuildInstance(inst)
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		result.FileCount = 1
		value = ctx.CompileBytes(data, cue.Filename(path))
	}

	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	result.CUEValue = value

	boards := value.LookupPath(cue.ParsePath("board"))
	if !boards.Exists() {
		return nil, fmt.Errorf("%s: no boards found (expected a top-level \"board\" field)", path)
	}
	iter, err := boards.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var errs error
	for iter.Next() {
		b, err := CompileBoard(iter.Value())
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("board.%s: %w", selectorName(iter.Selector()), err))
			continue
		}
		result.Boards = append(result.Boards, b)
	}
	return result, errs
}

// CompileDocument rebuilds a board from its canonical JSON document, as kept
// in the run history. JSON is valid CUE, so the document is checked against
// the same schema as a hand-written board.
func CompileDocument(doc []byte) (*ir.Board, error) {
	v := cuecontext.New().CompileBytes(doc, cue.Filename("document.json"))
	return CompileBoard(v)
}

// FindCUEFiles walks the directory and returns all .cue file paths, sorted.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}
