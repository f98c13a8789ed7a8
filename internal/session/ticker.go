package session

import (
	"context"
	"time"
)

// Watch emits the elapsed seconds once per second until the context is
// cancelled or the session goes idle, then closes the channel. Each tick is
// recomputed from the start anchor, so a delayed tick self-corrects — the
// timer is a derived read, not accumulated state.
//
// The returned channel never blocks the ticker: a slow receiver skips
// values and picks up the corrected elapsed time on its next read.
func (s *Session) Watch(ctx context.Context) <-chan int {
	out := make(chan int, 1)

	go func() {
		defer close(out)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !s.Active() {
					return
				}
				select {
				case out <- s.Elapsed():
				default:
				}
			}
		}
	}()

	return out
}
