package interfaces

import "context"

// GitClient defines the git operations the release pipeline needs. All
// operations act on the repository the client was created for.
type GitClient interface {
	// CurrentBranch returns the checked-out branch name.
	CurrentBranch(ctx context.Context) (string, error)

	// IsClean reports whether the working tree has no uncommitted changes.
	IsClean(ctx context.Context) (bool, error)

	// BranchExists reports whether a local branch of that name exists.
	BranchExists(ctx context.Context, name string) (bool, error)

	Checkout(ctx context.Context, branch string) error
	CreateBranch(ctx context.Context, name string) error
	Pull(ctx context.Context, remote, branch string) error
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error

	// Tag creates an annotated tag.
	Tag(ctx context.Context, name, message string) error

	// Push pushes a branch or tag ref to the remote.
	Push(ctx context.Context, remote, ref string) error
}
