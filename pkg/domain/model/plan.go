package model

// ReleaseOptions are the per-run switches of the release pipeline.
type ReleaseOptions struct {
	NPMVersion  string // pinned upstream version, empty means registry latest
	DryRun      bool
	SkipTests   bool
	SkipPublish bool
}

// VersionPlan is the version resolver's output: the current version, the
// bumped release version, and the upstream version in both its npm form
// and the normalized compact form.
type VersionPlan struct {
	Current     Version
	Next        Version
	UpstreamRaw string // as published on npm, e.g. "0.3.0-beta.12"
	Upstream    Version
	Warning     string // non-fatal major.minor drift note, empty if none
}

// ReleasePlan captures everything a release run decided at start time.
// It is assembled once, before any side effect, and never modified
// afterwards.
type ReleasePlan struct {
	RunID         string
	Package       string // upstream npm package name
	CurrentBranch string // branch to restore when the run ends
	PrevVersion   Version
	Version       Version // version being released
	UpstreamRaw   string
	Upstream      Version
	ReleaseBranch string
	TagName       string
	Warning       string
	DryRun        bool
	SkipTests     bool
	SkipPublish   bool
}

// NewReleasePlan derives branch and tag names from the resolved versions.
func NewReleasePlan(runID, pkg, currentBranch string, vp *VersionPlan, opts ReleaseOptions) *ReleasePlan {
	return &ReleasePlan{
		RunID:         runID,
		Package:       pkg,
		CurrentBranch: currentBranch,
		PrevVersion:   vp.Current,
		Version:       vp.Next,
		UpstreamRaw:   vp.UpstreamRaw,
		Upstream:      vp.Upstream,
		ReleaseBranch: "release/" + vp.Next.String(),
		TagName:       vp.Next.Tag(),
		Warning:       vp.Warning,
		DryRun:        opts.DryRun,
		SkipTests:     opts.SkipTests,
		SkipPublish:   opts.SkipPublish,
	}
}
