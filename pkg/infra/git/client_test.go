package git_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
	gitinfra "github.com/agent-infra/tarko-agent-ui/pkg/infra/git"
)

// newTestRepo initializes a git repository with one commit on branch main.
func newTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}

	dir := t.TempDir()
	commands := [][]string{
		{"init", "-b", "main"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "test"},
	}
	for _, args := range commands {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test\n"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, args := range [][]string{{"add", "-A"}, {"commit", "-m", "initial"}} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}
	return dir
}

func TestClient_Branches(t *testing.T) {
	dir := newTestRepo(t)
	client := gitinfra.New(dir)
	ctx := context.Background()

	branch, err := client.CurrentBranch(ctx)
	gt.NoError(t, err)
	gt.Value(t, branch).Equal("main")

	exists, err := client.BranchExists(ctx, "release/0.3.3")
	gt.NoError(t, err)
	gt.True(t, !exists)

	gt.NoError(t, client.CreateBranch(ctx, "release/0.3.3"))

	branch, err = client.CurrentBranch(ctx)
	gt.NoError(t, err)
	gt.Value(t, branch).Equal("release/0.3.3")

	exists, err = client.BranchExists(ctx, "release/0.3.3")
	gt.NoError(t, err)
	gt.True(t, exists)

	gt.NoError(t, client.Checkout(ctx, "main"))

	branch, err = client.CurrentBranch(ctx)
	gt.NoError(t, err)
	gt.Value(t, branch).Equal("main")
}

func TestClient_IsClean(t *testing.T) {
	dir := newTestRepo(t)
	client := gitinfra.New(dir)
	ctx := context.Background()

	clean, err := client.IsClean(ctx)
	gt.NoError(t, err)
	gt.True(t, clean)

	gt.NoError(t, os.WriteFile(filepath.Join(dir, "dirty.txt"), []byte("x"), 0644))

	clean, err = client.IsClean(ctx)
	gt.NoError(t, err)
	gt.True(t, !clean)
}

func TestClient_CommitAndTag(t *testing.T) {
	dir := newTestRepo(t)
	client := gitinfra.New(dir)
	ctx := context.Background()

	gt.NoError(t, os.WriteFile(filepath.Join(dir, "CHANGELOG.md"), []byte("v0.3.3\n"), 0644))
	gt.NoError(t, client.AddAll(ctx))
	gt.NoError(t, client.Commit(ctx, "chore(release): v0.3.3 (@tarko/agent-ui-builder@0.3.0-beta.12)"))
	gt.NoError(t, client.Tag(ctx, "v0.3.3", "Release v0.3.3"))

	clean, err := client.IsClean(ctx)
	gt.NoError(t, err)
	gt.True(t, clean)

	// An annotated tag resolves to an object of type tag.
	cmd := exec.Command("git", "cat-file", "-t", "v0.3.3")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	gt.NoError(t, err)
	gt.String(t, string(out)).Contains("tag")
}

func TestClient_Errors(t *testing.T) {
	dir := newTestRepo(t)
	client := gitinfra.New(dir)
	ctx := context.Background()

	err := client.Checkout(ctx, "no-such-branch")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrGitOperation))
	gt.String(t, err.Error()).Contains("git checkout no-such-branch")

	err = client.Commit(ctx, "nothing to commit")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrGitOperation))
}
