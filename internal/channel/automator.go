package channel

import "context"

// Automator abstracts the UI automation tool for testability.
type Automator interface {
	// Focus moves input focus to the given screen point.
	Focus(ctx context.Context, x, y int) error
	// Commit clicks the input point, types text, and presses Return.
	Commit(ctx context.Context, x, y int, text string) error
}

// DefaultAutomator is the default implementation used by the package.
// Set to RealAutomator{} in automator_real.go (excluded from test builds
// via build tag).
var DefaultAutomator Automator = RealAutomator{}
