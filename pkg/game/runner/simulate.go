package runner

import (
	"context"
	"fmt"
	"io"

	"keymaker/pkg/game/arbiter"
)

// Simulate plays a run against a simulated arbiter for sc. Both sides speak
// the text protocol over in-memory pipes, so the run exercises the same
// codec as a live session.
func (r *Runner) Simulate(ctx context.Context, sc arbiter.Scenario) (Result, *arbiter.Arbiter, error) {
	a := arbiter.New(sc)

	toArbiterR, toArbiterW := io.Pipe()
	fromArbiterR, fromArbiterW := io.Pipe()

	served := make(chan error, 1)
	go func() {
		err := a.Serve(ctx, toArbiterR, fromArbiterW)
		if err != nil {
			fromArbiterW.CloseWithError(err)
		} else {
			fromArbiterW.Close()
		}
		toArbiterR.Close()
		served <- err
	}()

	res, err := r.Play(ctx, fromArbiterR, toArbiterW)
	toArbiterW.Close()
	fromArbiterR.Close()
	serveErr := <-served

	switch {
	case err != nil && serveErr != nil:
		return res, a, fmt.Errorf("%w (arbiter: %w)", err, serveErr)
	case err != nil:
		return res, a, err
	case serveErr != nil:
		return res, a, fmt.Errorf("arbiter: %w", serveErr)
	}
	return res, a, nil
}
