//go:build unittest

package channel

import "context"

// RealAutomator is a no-op stub used during unit testing (build tag:
// unittest). The real implementation is in automator_real.go.
type RealAutomator struct{}

func (RealAutomator) Focus(ctx context.Context, x, y int) error { return nil }

func (RealAutomator) Commit(ctx context.Context, x, y int, text string) error { return nil }
