//go:build !unittest

package channel

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// RealAutomator is the production implementation that calls the real
// xdotool binary to move focus and type into the target window.
type RealAutomator struct{}

func (RealAutomator) Focus(ctx context.Context, x, y int) error {
	cmd := exec.CommandContext(ctx, "xdotool",
		"mousemove", strconv.Itoa(x), strconv.Itoa(y), "click", "1")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("focus (%d,%d): %s: %w", x, y, strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (RealAutomator) Commit(ctx context.Context, x, y int, text string) error {
	cmd := exec.CommandContext(ctx, "xdotool",
		"mousemove", strconv.Itoa(x), strconv.Itoa(y), "click", "1")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("select input (%d,%d): %s: %w", x, y, strings.TrimSpace(string(out)), err)
	}

	cmd = exec.CommandContext(ctx, "xdotool", "type", "--delay", "12", "--", text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("type text: %s: %w", strings.TrimSpace(string(out)), err)
	}

	cmd = exec.CommandContext(ctx, "xdotool", "key", "Return")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("commit: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}
