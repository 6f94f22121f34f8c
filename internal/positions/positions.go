// Package positions reads the capture positions file.
//
// Format: the first non-blank, non-comment line is the output prefix; every
// following line is an "x,y" integer grid cell. Blank lines and lines
// starting with '#' are ignored. Any bad line rejects the whole file so a
// dataset is never silently missing a cell.
package positions

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/mazecapture/internal/fsutil"
	"github.com/banshee-data/mazecapture/internal/rig"
	"github.com/banshee-data/mazecapture/internal/security"
)

// DefaultFileName is the positions file looked up next to the photos root.
const DefaultFileName = "positions.txt"

var (
	ErrMissingPrefix = errors.New("missing output prefix")
	ErrInvalidPrefix = errors.New("invalid output prefix")
	ErrMalformedLine = errors.New("malformed grid line")
	ErrDuplicateCell = errors.New("duplicate grid cell")
	ErrOutsideGrid   = errors.New("grid cell outside calibrated range")
)

// LineError reports a problem with one input line.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// File is a parsed positions file. Cells keep file order.
type File struct {
	Prefix string
	Cells  []rig.GridPosition
	lines  []int
}

// Grid reports whether a cell can be mapped. *rig.Mapper satisfies it.
type Grid interface {
	Contains(cell rig.GridPosition) bool
}

// Read loads and parses path from fsys.
func Read(fsys fsutil.FileSystem, path string) (*File, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse reads the positions format from r. All line errors are returned
// together, joined.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	var errs []error
	havePrefix := false

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		ln := strings.TrimSpace(raw)
		if ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}

		if !havePrefix {
			havePrefix = true
			if err := security.ValidatePathComponent(ln); err != nil {
				errs = append(errs, &LineError{Line: lineNo, Text: raw, Err: fmt.Errorf("%w: %v", ErrInvalidPrefix, err)})
				continue
			}
			f.Prefix = ln
			continue
		}

		cell, err := parseCell(ln)
		if err != nil {
			errs = append(errs, &LineError{Line: lineNo, Text: raw, Err: err})
			continue
		}
		f.Cells = append(f.Cells, cell)
		f.lines = append(f.lines, lineNo)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan positions: %w", err)
	}

	if !havePrefix {
		errs = append(errs, ErrMissingPrefix)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return f, nil
}

func parseCell(ln string) (rig.GridPosition, error) {
	parts := strings.Split(ln, ",")
	if len(parts) != 2 {
		return rig.GridPosition{}, fmt.Errorf("%w: want \"x,y\"", ErrMalformedLine)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return rig.GridPosition{}, fmt.Errorf("%w: x is not an integer", ErrMalformedLine)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return rig.GridPosition{}, fmt.Errorf("%w: y is not an integer", ErrMalformedLine)
	}
	return rig.GridPosition{X: x, Y: y}, nil
}

// Validate rejects duplicate cells and cells the grid cannot map. Every
// cell must be unique for output paths to be unique.
func (f *File) Validate(grid Grid) error {
	var errs []error
	seen := make(map[rig.GridPosition]int, len(f.Cells))
	for i, cell := range f.Cells {
		line := f.line(i)
		text := fmt.Sprintf("%d,%d", cell.X, cell.Y)
		if first, dup := seen[cell]; dup {
			errs = append(errs, &LineError{Line: line, Text: text,
				Err: fmt.Errorf("%w: first seen on line %d", ErrDuplicateCell, first)})
			continue
		}
		seen[cell] = line
		if grid != nil && !grid.Contains(cell) {
			errs = append(errs, &LineError{Line: line, Text: text, Err: ErrOutsideGrid})
		}
	}
	return errors.Join(errs...)
}

func (f *File) line(i int) int {
	if i < len(f.lines) {
		return f.lines[i]
	}
	return 0
}
