package arbiter

import (
	"context"
	"fmt"
	"io"

	"keymaker/pkg/engine/protocol"
)

// Serve plays the arbiter's side of the text protocol over r and w: it sends
// the startup, answers every move with a batch, and returns once the result
// arrives.
func (a *Arbiter) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := protocol.NewReader(r)
	writer := protocol.NewWriter(w)

	if err := writer.WriteStartup(a.Startup()); err != nil {
		return fmt.Errorf("send startup: %w", err)
	}

	for {
		cmd, err := reader.ReadCommand()
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}

		switch cmd.Op {
		case protocol.OpMove:
			batch, err := a.Exchange(ctx, cmd.Cell)
			if err != nil {
				return err
			}
			if err := writer.WriteBatch(batch.Records()); err != nil {
				return fmt.Errorf("send batch: %w", err)
			}
		case protocol.OpResult:
			return a.Report(ctx, cmd.Result)
		}
	}
}
