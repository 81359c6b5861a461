// Package protocol implements the line-oriented exchange between the mover and
// the arbiter:
//
//	arbiter -> mover   <variant>\n<x> <y>\n              (once, at startup)
//	mover   -> arbiter m <x> <y>\n                       (every move)
//	arbiter -> mover   <k>\n then k lines <x> <y> <tag>  (one batch per move)
//	mover   -> arbiter e <n>\n                           (final result)
//
// Tokens are whitespace separated; line breaks carry no meaning when reading.
package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"keymaker/pkg/engine/world"
)

// Ops that start a mover message
const (
	OpMove   = "m"
	OpResult = "e"
)

// Record is one perceived entity as it appears on the wire
type Record struct {
	Cell world.Cell
	Tag  byte
}

// Startup is what the arbiter sends before the first move
type Startup struct {
	Variant int
	Target  world.Cell
}

// MaxBatch bounds the record count of one batch: every cell reported once
// under each of the five tags.
const MaxBatch = world.Size * world.Size * 5

// Command is a message sent by the mover
type Command struct {
	Op     string
	Cell   world.Cell // set for OpMove
	Result int        // set for OpResult
}

// Reader decodes protocol tokens from a stream
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r in a token reader
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	return &Reader{scanner: scanner}
}

func (r *Reader) token(what string) (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", fmt.Errorf("read %s: %w", what, err)
		}
		return "", truncated(what)
	}
	return r.scanner.Text(), nil
}

func (r *Reader) integer(what string) (int, error) {
	tok, err := r.token(what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, malformed("%s: %q is not an integer", what, tok)
	}
	return n, nil
}

func (r *Reader) cell(what string) (world.Cell, error) {
	x, err := r.integer(what + " x")
	if err != nil {
		return world.Cell{}, err
	}
	y, err := r.integer(what + " y")
	if err != nil {
		return world.Cell{}, err
	}
	return world.At(x, y), nil
}

// ReadStartup reads the variant selector and the initial target.
// A target outside the grid is malformed.
func (r *Reader) ReadStartup() (Startup, error) {
	variant, err := r.integer("variant")
	if err != nil {
		return Startup{}, err
	}
	target, err := r.cell("target")
	if err != nil {
		return Startup{}, err
	}
	if !target.InBounds() {
		return Startup{}, malformed("target %v is off the grid", target)
	}
	return Startup{Variant: variant, Target: target}, nil
}

// ReadBatch reads one perception batch: a count followed by that many records.
// Coordinates are not bounds-checked here; that is left to the grid model.
func (r *Reader) ReadBatch() ([]Record, error) {
	k, err := r.integer("batch size")
	if err != nil {
		return nil, err
	}
	if k < 0 {
		return nil, malformed("negative batch size %d", k)
	}
	if k > MaxBatch {
		return nil, malformed("batch size %d exceeds %d", k, MaxBatch)
	}

	records := make([]Record, 0, k)
	for i := 0; i < k; i++ {
		c, err := r.cell("record")
		if err != nil {
			return nil, err
		}
		tag, err := r.token("record tag")
		if err != nil {
			return nil, err
		}
		if len(tag) != 1 {
			return nil, malformed("record tag %q", tag)
		}
		records = append(records, Record{Cell: c, Tag: tag[0]})
	}
	return records, nil
}

// ReadCommand reads one mover message
func (r *Reader) ReadCommand() (Command, error) {
	op, err := r.token("command")
	if err != nil {
		return Command{}, err
	}
	switch op {
	case OpMove:
		c, err := r.cell("move")
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpMove, Cell: c}, nil
	case OpResult:
		n, err := r.integer("result")
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpResult, Result: n}, nil
	default:
		return Command{}, malformed("unknown command %q", op)
	}
}

// Writer encodes protocol messages. Every message is flushed immediately
// because the peer blocks on it.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w in a message writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) send(format string, args ...any) error {
	if _, err := fmt.Fprintf(w.w, format, args...); err != nil {
		return err
	}
	return w.w.Flush()
}

// WriteMove sends "m <x> <y>"
func (w *Writer) WriteMove(c world.Cell) error {
	return w.send("%s %d %d\n", OpMove, c.X, c.Y)
}

// WriteResult sends "e <n>"
func (w *Writer) WriteResult(n int) error {
	return w.send("%s %d\n", OpResult, n)
}

// WriteStartup sends the variant and the initial target
func (w *Writer) WriteStartup(s Startup) error {
	return w.send("%d\n%d %d\n", s.Variant, s.Target.X, s.Target.Y)
}

// WriteBatch sends a perception batch
func (w *Writer) WriteBatch(records []Record) error {
	if _, err := fmt.Fprintf(w.w, "%d\n", len(records)); err != nil {
		return err
	}
	for _, rec := range records {
		if _, err := fmt.Fprintf(w.w, "%d %d %c\n", rec.Cell.X, rec.Cell.Y, rec.Tag); err != nil {
			return err
		}
	}
	return w.w.Flush()
}
