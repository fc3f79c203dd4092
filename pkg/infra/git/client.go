package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/interfaces"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
)

type client struct {
	dir string
}

// New creates a git client operating on the repository at dir
func New(dir string) interfaces.GitClient {
	return &client{dir: dir}
}

// run executes one git command and returns its trimmed combined output.
// Failures carry the command line and output in the error message.
func (c *client) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.dir
	output, err := cmd.CombinedOutput()
	out := strings.TrimSpace(string(output))
	if err != nil {
		return out, goerr.Wrap(types.ErrGitOperation,
			fmt.Sprintf("git %s: %s", strings.Join(args, " "), out),
			goerr.V("cause", err))
	}
	return out, nil
}

func (c *client) CurrentBranch(ctx context.Context) (string, error) {
	return c.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

func (c *client) IsClean(ctx context.Context) (bool, error) {
	out, err := c.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out == "", nil
}

func (c *client) BranchExists(ctx context.Context, name string) (bool, error) {
	out, err := c.run(ctx, "branch", "--list", name)
	if err != nil {
		return false, err
	}
	return out != "", nil
}

func (c *client) Checkout(ctx context.Context, branch string) error {
	_, err := c.run(ctx, "checkout", branch)
	return err
}

func (c *client) CreateBranch(ctx context.Context, name string) error {
	_, err := c.run(ctx, "checkout", "-b", name)
	return err
}

func (c *client) Pull(ctx context.Context, remote, branch string) error {
	_, err := c.run(ctx, "pull", remote, branch)
	return err
}

func (c *client) AddAll(ctx context.Context) error {
	_, err := c.run(ctx, "add", "-A")
	return err
}

func (c *client) Commit(ctx context.Context, message string) error {
	_, err := c.run(ctx, "commit", "-m", message)
	return err
}

func (c *client) Tag(ctx context.Context, name, message string) error {
	_, err := c.run(ctx, "tag", "-a", name, "-m", message)
	return err
}

func (c *client) Push(ctx context.Context, remote, ref string) error {
	_, err := c.run(ctx, "push", remote, ref)
	return err
}
