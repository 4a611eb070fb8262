package openmem

import (
	"context"
	"time"
)

// startDecayWorker runs a background goroutine that periodically
// calls DecayAll. This is opt-in (Config.DecayInterval == 0 disables
// it entirely): the spec treats decay as a caller-invoked pass, so the
// worker is a convenience for callers who want it on a timer rather
// than a requirement of the engine itself.
func (e *Engine) startDecayWorker(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	e.cancelDecay = cancel

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := e.DecayAll(); err != nil {
					log.Warn("decay sweep error", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
