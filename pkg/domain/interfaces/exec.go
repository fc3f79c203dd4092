package interfaces

import "context"

// CommandRunner executes a shell command in a directory and returns its
// combined output.
type CommandRunner interface {
	Run(ctx context.Context, dir, command string) (string, error)
}
