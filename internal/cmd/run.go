package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/block/eventship-go/dispatch"
)

// runAppend appends count events built by next, then drains.
func runAppend(c *cobra.Command, root *rootOptions, count int, next func(at time.Time) dispatch.Request) error {
	if count < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", count)
	}

	s, err := root.newSession()
	if err != nil {
		return err
	}

	admitted, rejected := 0, 0
	for range count {
		now := time.Now()
		if s.append(now, next(now)) {
			admitted++
		} else {
			rejected++
		}
	}
	s.zap.Debug("events appended", zap.Int("admitted", admitted), zap.Int("rejected", rejected))
	return s.finish(c.OutOrStdout(), admitted, rejected)
}
