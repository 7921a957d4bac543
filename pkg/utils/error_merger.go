// Package utils provides small shared helpers for service wiring.
package utils //nolint:revive // var-naming: utils is an acceptable package name for shared utilities

import "sync"

// MergeErrorChans merges multiple error channels into a single output channel.
// The output channel is closed once all input channels are closed. Useful for
// waiting on several listeners (HTTP server, metrics server) at once.
func MergeErrorChans(channels ...chan error) chan error {
	out := make(chan error)
	var wg sync.WaitGroup

	for _, ch := range channels {
		wg.Add(1)
		go func(c chan error) {
			defer wg.Done()
			for err := range c {
				out <- err
			}
		}(ch)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
