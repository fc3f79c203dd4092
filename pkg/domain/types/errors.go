package types

import "github.com/m-mizutani/goerr/v2"

// Error categories for the release pipeline. Callers wrap these with
// goerr.Wrap and classify with errors.Is.
var (
	// ErrVersionFormat indicates a version string that is not three
	// dot-separated integers with an optional pre-release suffix.
	ErrVersionFormat = goerr.New("invalid version format")

	// ErrRegistryLookup indicates the npm registry did not yield usable
	// package metadata or a tarball.
	ErrRegistryLookup = goerr.New("registry lookup failed")

	// ErrGitOperation indicates a git command failed or a git
	// precondition was not met.
	ErrGitOperation = goerr.New("git operation failed")

	// ErrAssetVerification indicates fetched static assets are missing
	// or incomplete.
	ErrAssetVerification = goerr.New("asset verification failed")

	// ErrFileNotFound indicates a required file or directory is absent,
	// or a version rewrite target does not contain the expected pattern.
	ErrFileNotFound = goerr.New("required file not found")

	// ErrSubprocess indicates an external command exited non-zero.
	ErrSubprocess = goerr.New("subprocess failed")

	// ErrTimeout indicates a bounded wait elapsed without success.
	ErrTimeout = goerr.New("timed out")

	// ErrHeadNotFound indicates HTML with no <head> tag to inject into.
	ErrHeadNotFound = goerr.New("no <head> tag found in HTML")
)
