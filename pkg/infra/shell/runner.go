package shell

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/interfaces"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
)

type runner struct {
	shell string
	env   []string
}

// Option configures the runner
type Option func(*runner)

// WithShell replaces the shell binary (default /bin/sh)
func WithShell(sh string) Option {
	return func(r *runner) {
		r.shell = sh
	}
}

// WithEnv appends environment variables in KEY=VALUE form
func WithEnv(env ...string) Option {
	return func(r *runner) {
		r.env = append(r.env, env...)
	}
}

// New creates a CommandRunner that executes commands through a shell so
// manifest command strings can use pipes and arguments freely.
func New(opts ...Option) interfaces.CommandRunner {
	r := &runner{shell: "/bin/sh"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes command in dir and returns its combined output. Non-zero
// exits and start failures both map to the subprocess error class; the
// output is preserved for the caller's step record.
func (r *runner) Run(ctx context.Context, dir, command string) (string, error) {
	cmd := exec.CommandContext(ctx, r.shell, "-c", command)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), r.env...)

	output, err := cmd.CombinedOutput()
	out := string(output)
	if err != nil {
		return out, goerr.Wrap(types.ErrSubprocess,
			fmt.Sprintf("command failed: %s", command),
			goerr.V("dir", dir), goerr.V("cause", err))
	}
	return out, nil
}
