package model

import (
	"time"

	"github.com/google/uuid"
)

// ReleaseState identifies a stage of the release pipeline.
type ReleaseState string

const (
	StateStart               ReleaseState = "START"
	StateBranchCreated       ReleaseState = "BRANCH_CREATED"
	StateWorkspaceClean      ReleaseState = "WORKSPACE_CLEAN"
	StateAssetsFetched       ReleaseState = "ASSETS_FETCHED"
	StateVersionFilesUpdated ReleaseState = "VERSION_FILES_UPDATED"
	StateTestsPassed         ReleaseState = "TESTS_PASSED"
	StatePackageBuilt        ReleaseState = "PACKAGE_BUILT"
	StateCommittedTagged     ReleaseState = "COMMITTED_TAGGED"
	StatePushed              ReleaseState = "PUSHED"
	StatePublished           ReleaseState = "PUBLISHED"
	StateBranchRestored      ReleaseState = "BRANCH_RESTORED"
	StateDone                ReleaseState = "DONE"
	StateFailed              ReleaseState = "FAILED"
)

// StepStatus is the outcome of a single pipeline step.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

// StepResult records one executed (or skipped) pipeline step.
type StepResult struct {
	State    ReleaseState
	Status   StepStatus
	Output   string // captured command output, empty when none
	Error    string // error text, empty on success
	Duration time.Duration
}

// RunLog is the append-only record of a single release run. It exists only
// for the duration of the run and is emitted through the logger; nothing
// is persisted.
type RunLog struct {
	ID       string
	Started  time.Time
	Steps    []StepResult
	Warnings []string
	Final    ReleaseState
}

func NewRunLog() *RunLog {
	return &RunLog{
		ID:      uuid.NewString(),
		Started: time.Now(),
	}
}

func (r *RunLog) Append(s StepResult) {
	r.Steps = append(r.Steps, s)
}

func (r *RunLog) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// FailedStep returns the first failed step, or nil when every recorded
// step succeeded or was skipped.
func (r *RunLog) FailedStep() *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Status == StepFailed {
			return &r.Steps[i]
		}
	}
	return nil
}
