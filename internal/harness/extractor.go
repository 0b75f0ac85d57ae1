package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Extractor processes one epub. The runner treats it as opaque: it only
// learns whether the call failed.
type Extractor interface {
	Extract(ctx context.Context, path string) error
}

// CommandExtractor runs an external program with the epub path appended as
// its last argument. Output of the child goes straight to Stdout and Stderr.
type CommandExtractor struct {
	Argv   []string
	Stdout io.Writer
	Stderr io.Writer
}

var ErrEmptyCommand = errors.New("extractor command is empty")

func (c *CommandExtractor) Extract(ctx context.Context, path string) error {
	if len(c.Argv) == 0 {
		return ErrEmptyCommand
	}
	args := append(append([]string{}, c.Argv[1:]...), path)
	cmd := exec.CommandContext(ctx, c.Argv[0], args...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", c.Argv[0], path, err)
	}
	return nil
}
