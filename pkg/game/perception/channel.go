package perception

import (
	"context"
	"fmt"
	"io"

	"keymaker/pkg/engine/protocol"
	"keymaker/pkg/engine/world"
)

// Channel is the arbiter as seen by the mover. Every Exchange emits exactly
// one move and blocks for exactly one batch, including repeated moves onto
// the cell the mover already occupies.
type Channel interface {
	Exchange(ctx context.Context, move world.Cell) (Batch, error)
	Report(ctx context.Context, length int) error
}

// Stream is a Channel over the text protocol
type Stream struct {
	r *protocol.Reader
	w *protocol.Writer
}

// NewStream creates a channel that writes moves to w and reads batches from r
func NewStream(r io.Reader, w io.Writer) *Stream {
	return &Stream{
		r: protocol.NewReader(r),
		w: protocol.NewWriter(w),
	}
}

// Startup reads the variant selector and initial target. It must be called
// once, before the first Exchange.
func (s *Stream) Startup() (protocol.Startup, error) {
	startup, err := s.r.ReadStartup()
	if err != nil {
		return protocol.Startup{}, fmt.Errorf("read startup: %w", err)
	}
	return startup, nil
}

// Exchange implements Channel
func (s *Stream) Exchange(ctx context.Context, move world.Cell) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.w.WriteMove(move); err != nil {
		return nil, fmt.Errorf("send move %v: %w", move, err)
	}
	records, err := s.r.ReadBatch()
	if err != nil {
		return nil, fmt.Errorf("read perception after %v: %w", move, err)
	}
	return FromRecords(records)
}

// Report implements Channel
func (s *Stream) Report(ctx context.Context, length int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.w.WriteResult(length); err != nil {
		return fmt.Errorf("send result: %w", err)
	}
	return nil
}
