package model

import "time"

// VerifyOptions are the per-run switches of the post-release verifier.
type VerifyOptions struct {
	Version      string // bare released version, e.g. "0.3.3"
	Quick        bool   // skip the embedded server smoke test
	SkipWait     bool   // skip the registry availability poll
	KeepEnv      bool   // preserve the disposable environment
	PollInterval time.Duration
	MaxWait      time.Duration
}

// CheckResult is one named check of a verification or doctor run.
type CheckResult struct {
	Name   string
	OK     bool
	Detail string
}

// VerifyReport aggregates the outcome of a post-release verification run.
type VerifyReport struct {
	Module  string
	Version string
	EnvDir  string // disposable environment path, removed unless kept
	Checks  []CheckResult
	Elapsed time.Duration
}

// OK reports whether every check passed.
func (r *VerifyReport) OK() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// FailedChecks returns the checks that did not pass.
func (r *VerifyReport) FailedChecks() []CheckResult {
	var out []CheckResult
	for _, c := range r.Checks {
		if !c.OK {
			out = append(out, c)
		}
	}
	return out
}

// ProbeReport is the JSON document the verification probe program prints
// after exercising the installed module inside the disposable environment.
type ProbeReport struct {
	PackageVersion string `json:"package_version"`
	AssetsVersion  string `json:"assets_version"`
	StaticFiles    int    `json:"static_files"`
	StaticOK       bool   `json:"static_ok"`
	HTMLOK         bool   `json:"html_ok"`
	ServerOK       bool   `json:"server_ok"`
	Error          string `json:"error,omitempty"`
}
