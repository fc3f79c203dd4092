package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/interfaces"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/model"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
)

// Orchestrator drives the release pipeline from START to DONE. Each step
// is recorded in the run log; any failure funnels the run to FAILED with
// the original branch restored on the way out.
type Orchestrator struct {
	manifest *model.Manifest
	root     string
	git      interfaces.GitClient
	resolver *Resolver
	fetcher  interfaces.AssetFetcher
	runner   interfaces.CommandRunner
	notifier interfaces.Notifier
	stdout   io.Writer
}

// OrchestratorOption is a functional option for Orchestrator configuration
type OrchestratorOption func(*Orchestrator)

// WithStdout redirects the dry-run plan output (os.Stdout by default)
func WithStdout(w io.Writer) OrchestratorOption {
	return func(o *Orchestrator) {
		o.stdout = w
	}
}

// NewOrchestrator creates a release orchestrator for the project at root
func NewOrchestrator(
	manifest *model.Manifest,
	root string,
	gitClient interfaces.GitClient,
	resolver *Resolver,
	fetcher interfaces.AssetFetcher,
	runner interfaces.CommandRunner,
	notifier interfaces.Notifier,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		manifest: manifest,
		root:     root,
		git:      gitClient,
		resolver: resolver,
		fetcher:  fetcher,
		runner:   runner,
		notifier: notifier,
		stdout:   os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type releaseStep struct {
	state model.ReleaseState
	run   func(ctx context.Context, plan *model.ReleasePlan) (string, error)
	skip  func(plan *model.ReleasePlan) bool
}

func (o *Orchestrator) steps() []releaseStep {
	return []releaseStep{
		{state: model.StateBranchCreated, run: o.createBranch},
		{state: model.StateWorkspaceClean, run: o.cleanWorkspace},
		{state: model.StateAssetsFetched, run: o.fetchAssets},
		{state: model.StateVersionFilesUpdated, run: o.updateVersionFiles},
		{state: model.StateTestsPassed, run: o.runTests,
			skip: func(p *model.ReleasePlan) bool { return p.SkipTests }},
		{state: model.StatePackageBuilt, run: o.buildPackage},
		{state: model.StateCommittedTagged, run: o.commitAndTag},
		{state: model.StatePushed, run: o.push},
		{state: model.StatePublished, run: o.publish,
			skip: func(p *model.ReleasePlan) bool { return p.SkipPublish }},
	}
}

// Run executes one release. The returned run log records every step even
// when the run fails; a non-nil error means the run ended in FAILED.
func (o *Orchestrator) Run(ctx context.Context, opts model.ReleaseOptions) (*model.RunLog, error) {
	logger := ctxlog.From(ctx)
	runLog := model.NewRunLog()

	plan, err := o.start(ctx, runLog, opts)
	if err != nil {
		runLog.Final = model.StateFailed
		return runLog, err
	}

	if plan.DryRun {
		o.printPlan(plan)
		runLog.Final = model.StateDone
		logger.Info("dry run complete", "run_id", runLog.ID)
		return runLog, nil
	}

	if err := o.execute(ctx, runLog, plan); err != nil {
		runLog.Final = model.StateFailed
		o.reportFailure(ctx, runLog, plan, err)
		return runLog, err
	}

	runLog.Final = model.StateDone
	logger.Info("release complete",
		"run_id", runLog.ID,
		"version", plan.Version.String(),
		"tag", plan.TagName,
		"duration", time.Since(runLog.Started).String(),
	)
	if err := o.notifier.NotifySuccess(ctx, plan); err != nil {
		logger.Warn("failed to send release notification", "error", err)
	}
	return runLog, nil
}

// start resolves versions and assembles the immutable release plan. No
// side effect happens before this step completes.
func (o *Orchestrator) start(ctx context.Context, runLog *model.RunLog, opts model.ReleaseOptions) (*model.ReleasePlan, error) {
	logger := ctxlog.From(ctx)
	startAt := time.Now()

	branch, err := o.git.CurrentBranch(ctx)
	if err != nil {
		o.recordFailure(runLog, model.StateStart, startAt, "", err)
		return nil, err
	}

	vp, err := o.resolver.Resolve(ctx, o.manifest.Version, opts.NPMVersion)
	if err != nil {
		o.recordFailure(runLog, model.StateStart, startAt, "", err)
		return nil, err
	}
	if vp.Warning != "" {
		runLog.Warn(vp.Warning)
	}

	plan := model.NewReleasePlan(runLog.ID, o.manifest.Upstream.Package, branch, vp, opts)
	runLog.Append(model.StepResult{
		State:    model.StateStart,
		Status:   model.StepOK,
		Duration: time.Since(startAt),
	})
	logger.Info("release plan assembled",
		"run_id", plan.RunID,
		"version", plan.Version.String(),
		"upstream", plan.UpstreamRaw,
		"branch", plan.ReleaseBranch,
		"tag", plan.TagName,
		"dry_run", plan.DryRun,
	)
	return plan, nil
}

func (o *Orchestrator) execute(ctx context.Context, runLog *model.RunLog, plan *model.ReleasePlan) (runErr error) {
	logger := ctxlog.From(ctx)

	// Restore the original branch on every exit path. The restore context
	// survives cancellation so an interrupted run still ends where it
	// started; a restore failure never masks the step error that caused
	// the exit.
	defer func() {
		startAt := time.Now()
		restoreCtx := context.WithoutCancel(ctx)
		result := model.StepResult{State: model.StateBranchRestored, Status: model.StepOK}
		if err := o.git.Checkout(restoreCtx, plan.CurrentBranch); err != nil {
			result.Status = model.StepFailed
			result.Error = err.Error()
			logger.Warn("failed to restore original branch",
				"branch", plan.CurrentBranch, "error", err)
			if runErr == nil {
				runErr = goerr.Wrap(err, "failed to restore original branch")
			}
		}
		result.Duration = time.Since(startAt)
		runLog.Append(result)
	}()

	for _, step := range o.steps() {
		if step.skip != nil && step.skip(plan) {
			runLog.Append(model.StepResult{State: step.state, Status: model.StepSkipped})
			logger.Info("step skipped", "state", string(step.state))
			continue
		}

		startAt := time.Now()
		output, err := step.run(ctx, plan)
		if err != nil {
			o.recordFailure(runLog, step.state, startAt, output, err)
			return goerr.Wrap(err, "release step failed", goerr.V("state", string(step.state)))
		}
		runLog.Append(model.StepResult{
			State:    step.state,
			Status:   model.StepOK,
			Output:   output,
			Duration: time.Since(startAt),
		})
		logger.Info("step completed", "state", string(step.state), "duration", time.Since(startAt).String())
	}
	return nil
}

func (o *Orchestrator) recordFailure(runLog *model.RunLog, state model.ReleaseState, startAt time.Time, output string, err error) {
	runLog.Append(model.StepResult{
		State:    state,
		Status:   model.StepFailed,
		Output:   output,
		Error:    err.Error(),
		Duration: time.Since(startAt),
	})
}

func (o *Orchestrator) reportFailure(ctx context.Context, runLog *model.RunLog, plan *model.ReleasePlan, err error) {
	logger := ctxlog.From(ctx)

	state := model.StateFailed
	output := ""
	if failed := runLog.FailedStep(); failed != nil {
		state = failed.State
		output = failed.Output
	}
	logger.Error("release failed",
		"run_id", runLog.ID,
		"state", string(state),
		"error", err,
		"output", output,
	)
	notifyCtx := context.WithoutCancel(ctx)
	if nerr := o.notifier.NotifyFailure(notifyCtx, plan, state, err.Error()); nerr != nil {
		logger.Warn("failed to send failure notification", "error", nerr)
	}
}

// createBranch verifies the working tree and branch preconditions, then
// branches off the freshly pulled base branch. The checks run before any
// mutation so a refused run leaves the repository untouched.
func (o *Orchestrator) createBranch(ctx context.Context, plan *model.ReleasePlan) (string, error) {
	clean, err := o.git.IsClean(ctx)
	if err != nil {
		return "", err
	}
	if !clean {
		return "", goerr.Wrap(types.ErrGitOperation, "working tree has uncommitted changes, commit or stash them first")
	}
	exists, err := o.git.BranchExists(ctx, plan.ReleaseBranch)
	if err != nil {
		return "", err
	}
	if exists {
		return "", goerr.Wrap(types.ErrGitOperation, "release branch already exists",
			goerr.V("branch", plan.ReleaseBranch))
	}

	if err := o.git.Checkout(ctx, o.manifest.Git.BaseBranch); err != nil {
		return "", err
	}
	if err := o.git.Pull(ctx, o.manifest.Git.Remote, o.manifest.Git.BaseBranch); err != nil {
		return "", err
	}
	if err := o.git.CreateBranch(ctx, plan.ReleaseBranch); err != nil {
		return "", err
	}
	return plan.ReleaseBranch, nil
}

// cleanWorkspace removes generated directories. Removing an absent
// directory succeeds, so the step is idempotent.
func (o *Orchestrator) cleanWorkspace(ctx context.Context, plan *model.ReleasePlan) (string, error) {
	dirs := []string{o.distDir(), o.staticDir()}
	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil {
			return "", goerr.Wrap(err, "failed to remove directory", goerr.V("dir", dir))
		}
	}
	return strings.Join(dirs, "\n"), nil
}

func (o *Orchestrator) fetchAssets(ctx context.Context, plan *model.ReleasePlan) (string, error) {
	result, err := o.fetcher.Fetch(ctx, plan.UpstreamRaw)
	if err != nil {
		return "", err
	}
	if err := o.verifyAssets(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d files, %d bytes", len(result.Files), result.Size), nil
}

// verifyAssets re-checks the static directory on disk, independently of
// what the fetcher reported. A fetch that "succeeded" into an empty or
// incomplete directory still fails the run here.
func (o *Orchestrator) verifyAssets() error {
	dir := o.staticDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return goerr.Wrap(types.ErrAssetVerification, "static directory is unreadable",
			goerr.V("dir", dir), goerr.V("cause", err))
	}
	if len(entries) == 0 {
		return goerr.Wrap(types.ErrAssetVerification, "static directory is empty", goerr.V("dir", dir))
	}
	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		return goerr.Wrap(types.ErrAssetVerification, "index.html missing from fetched bundle",
			goerr.V("dir", dir))
	}
	return nil
}

func (o *Orchestrator) updateVersionFiles(ctx context.Context, plan *model.ReleasePlan) (string, error) {
	var updated []string
	for _, vf := range o.manifest.Release.VersionFiles {
		if err := o.rewriteVersionFile(vf, plan); err != nil {
			return strings.Join(updated, "\n"), err
		}
		updated = append(updated, vf.Path)
	}
	return strings.Join(updated, "\n"), nil
}

// rewriteVersionFile applies one manifest rewrite target. Only the first
// pattern match is replaced; a missing file and a pattern that matches
// nothing are the same failure class, since both leave the release
// partially updated.
func (o *Orchestrator) rewriteVersionFile(vf model.VersionFile, plan *model.ReleasePlan) error {
	path := filepath.Join(o.root, vf.Path)
	info, err := os.Stat(path)
	if err != nil {
		return goerr.Wrap(types.ErrFileNotFound, "version file does not exist",
			goerr.V("path", vf.Path), goerr.V("cause", err))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return goerr.Wrap(err, "failed to read version file", goerr.V("path", vf.Path))
	}

	re, err := regexp.Compile(vf.Pattern)
	if err != nil {
		return goerr.Wrap(err, "invalid version file pattern", goerr.V("pattern", vf.Pattern))
	}
	content := string(data)
	m := re.FindStringSubmatchIndex(content)
	if m == nil {
		return goerr.Wrap(types.ErrFileNotFound, "pattern not found in version file",
			goerr.V("path", vf.Path), goerr.V("pattern", vf.Pattern))
	}

	replace := expandPlaceholders(vf.Replace, plan)
	var buf []byte
	buf = append(buf, content[:m[0]]...)
	buf = re.ExpandString(buf, replace, content, m)
	buf = append(buf, content[m[1]:]...)

	if err := os.WriteFile(path, buf, info.Mode().Perm()); err != nil {
		return goerr.Wrap(err, "failed to write version file", goerr.V("path", vf.Path))
	}
	return nil
}

func expandPlaceholders(s string, plan *model.ReleasePlan) string {
	return strings.NewReplacer(
		"{version}", plan.Version.String(),
		"{tag}", plan.TagName,
		"{upstream}", plan.Upstream.String(),
		"{upstream_raw}", plan.UpstreamRaw,
	).Replace(s)
}

func (o *Orchestrator) runTests(ctx context.Context, plan *model.ReleasePlan) (string, error) {
	return o.runner.Run(ctx, o.root, o.manifest.Commands.Test)
}

func (o *Orchestrator) buildPackage(ctx context.Context, plan *model.ReleasePlan) (string, error) {
	out, err := o.runner.Run(ctx, o.root, o.manifest.Commands.Build)
	if err != nil {
		return out, err
	}
	entries, err := os.ReadDir(o.distDir())
	if err != nil || len(entries) == 0 {
		return out, goerr.Wrap(types.ErrSubprocess, "build produced no artifacts",
			goerr.V("dir", o.distDir()))
	}
	return out, nil
}

func (o *Orchestrator) commitAndTag(ctx context.Context, plan *model.ReleasePlan) (string, error) {
	if err := o.git.AddAll(ctx); err != nil {
		return "", err
	}
	msg := fmt.Sprintf("chore(release): %s (%s@%s)", plan.TagName, plan.Package, plan.UpstreamRaw)
	if err := o.git.Commit(ctx, msg); err != nil {
		return "", err
	}
	if err := o.git.Tag(ctx, plan.TagName, "Release "+plan.TagName); err != nil {
		return "", err
	}
	return msg, nil
}

func (o *Orchestrator) push(ctx context.Context, plan *model.ReleasePlan) (string, error) {
	if err := o.git.Push(ctx, o.manifest.Git.Remote, plan.ReleaseBranch); err != nil {
		return "", err
	}
	if err := o.git.Push(ctx, o.manifest.Git.Remote, plan.TagName); err != nil {
		return "", err
	}
	return "", nil
}

// publish runs the manifest's publish command. Publishing is opt-in: with
// no command configured and publishing not skipped, the run fails rather
// than silently skipping a step the operator asked for.
func (o *Orchestrator) publish(ctx context.Context, plan *model.ReleasePlan) (string, error) {
	if o.manifest.Commands.Publish == "" {
		return "", goerr.Wrap(types.ErrSubprocess,
			"publish command is not configured, set commands.publish in the manifest or pass --skip-publish")
	}
	return o.runner.Run(ctx, o.root, o.manifest.Commands.Publish)
}

func (o *Orchestrator) printPlan(plan *model.ReleasePlan) {
	w := o.stdout
	fmt.Fprintln(w, "=== DRY RUN ===")
	fmt.Fprintf(w, "Project:   %s\n", o.manifest.Name)
	fmt.Fprintf(w, "Release:   %s -> %s\n", plan.PrevVersion, plan.Version)
	fmt.Fprintf(w, "Upstream:  %s@%s (normalized %s)\n", plan.Package, plan.UpstreamRaw, plan.Upstream)
	fmt.Fprintf(w, "Branch:    %s (from %s, restore to %s)\n",
		plan.ReleaseBranch, o.manifest.Git.BaseBranch, plan.CurrentBranch)
	fmt.Fprintf(w, "Tag:       %s\n", plan.TagName)
	fmt.Fprintf(w, "Tests:     %s\n", onOff(!plan.SkipTests, o.manifest.Commands.Test))
	fmt.Fprintf(w, "Publish:   %s\n", onOff(!plan.SkipPublish, o.manifest.Commands.Publish))
	if plan.Warning != "" {
		fmt.Fprintf(w, "Warning:   %s\n", plan.Warning)
	}
	fmt.Fprintln(w, "No changes will be made.")
}

func onOff(enabled bool, command string) string {
	if !enabled {
		return "skipped"
	}
	if command == "" {
		return "NOT CONFIGURED"
	}
	return command
}

func (o *Orchestrator) distDir() string {
	return filepath.Join(o.root, o.manifest.Paths.DistDir)
}

func (o *Orchestrator) staticDir() string {
	return filepath.Join(o.root, o.manifest.Paths.StaticDir)
}
