package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/model"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
	"github.com/agent-infra/tarko-agent-ui/pkg/usecase"
)

const verifyModule = "github.com/agent-infra/tarko-agent-ui"

// MockModuleProxy is a mock implementation of ModuleProxy
type MockModuleProxy struct {
	availableFunc func(ctx context.Context, module, version string) (bool, error)
	calls         int
}

func (m *MockModuleProxy) VersionAvailable(ctx context.Context, module, version string) (bool, error) {
	m.calls++
	if m.availableFunc != nil {
		return m.availableFunc(ctx, module, version)
	}
	return true, nil
}

// probeRunner returns a runner whose "go run ." step writes the given
// probe report into the environment, the way the real probe program does.
func probeRunner(report model.ProbeReport) *MockCommandRunner {
	r := &MockCommandRunner{}
	r.runFunc = func(ctx context.Context, dir, command string) (string, error) {
		if command == "go run ." {
			data, err := json.Marshal(report)
			if err != nil {
				return "", err
			}
			if err := os.WriteFile(filepath.Join(dir, "report.json"), data, 0644); err != nil {
				return "", err
			}
		}
		return "", nil
	}
	return r
}

func goodProbe() model.ProbeReport {
	return model.ProbeReport{
		PackageVersion: "0.3.3",
		AssetsVersion:  "0.3.0b12",
		StaticFiles:    12,
		StaticOK:       true,
		HTMLOK:         true,
		ServerOK:       true,
	}
}

func checkByName(report *model.VerifyReport, name string) *model.CheckResult {
	for i := range report.Checks {
		if report.Checks[i].Name == name {
			return &report.Checks[i]
		}
	}
	return nil
}

func TestVerifier_Run_Success(t *testing.T) {
	ctx := context.Background()
	proxy := &MockModuleProxy{}
	runner := probeRunner(goodProbe())

	// The probe program must be on disk before the toolchain steps run.
	probeWritten := false
	inner := runner.runFunc
	runner.runFunc = func(ctx context.Context, dir, command string) (string, error) {
		if command == "go mod init tarko-verify-probe" {
			_, err := os.Stat(filepath.Join(dir, "main.go"))
			probeWritten = err == nil
		}
		return inner(ctx, dir, command)
	}

	v := usecase.NewVerifier(proxy, runner, verifyModule)

	// Execute
	report, err := v.Run(ctx, model.VerifyOptions{Version: "0.3.3"})

	// Verify
	gt.NoError(t, err)
	gt.True(t, report.OK())
	gt.Value(t, report.Module).Equal(verifyModule)
	gt.Value(t, report.Version).Equal("0.3.3")
	gt.Number(t, len(report.Checks)).Equal(6)
	gt.Value(t, report.Checks[0].Name).Equal("proxy availability")
	gt.Value(t, checkByName(report, "embedded server")).NotNil()

	gt.True(t, probeWritten)
	gt.Number(t, len(runner.commands)).Equal(3)
	gt.Value(t, runner.commands[0]).Equal("go mod init tarko-verify-probe")
	gt.Value(t, runner.commands[1]).Equal("go get github.com/agent-infra/tarko-agent-ui@v0.3.3")
	gt.Value(t, runner.commands[2]).Equal("go run .")

	// The disposable environment was cleaned up.
	gt.Value(t, report.EnvDir).Equal("")
}

func TestVerifier_Run_Quick(t *testing.T) {
	ctx := context.Background()
	probe := goodProbe()
	probe.ServerOK = false // not exercised in quick mode
	v := usecase.NewVerifier(&MockModuleProxy{}, probeRunner(probe), verifyModule)

	// Execute
	report, err := v.Run(ctx, model.VerifyOptions{Version: "0.3.3", Quick: true})

	// Verify
	gt.NoError(t, err)
	gt.True(t, report.OK())
	gt.Value(t, checkByName(report, "embedded server")).Nil()
}

func TestVerifier_Run_SkipWait(t *testing.T) {
	ctx := context.Background()
	proxy := &MockModuleProxy{}
	v := usecase.NewVerifier(proxy, probeRunner(goodProbe()), verifyModule)

	// Execute
	report, err := v.Run(ctx, model.VerifyOptions{Version: "0.3.3", SkipWait: true})

	// Verify
	gt.NoError(t, err)
	gt.Number(t, proxy.calls).Equal(0)
	gt.Value(t, checkByName(report, "proxy availability")).Nil()
	gt.Value(t, report.Checks[0].Name).Equal("package version")
}

func TestVerifier_Run_Timeout(t *testing.T) {
	ctx := context.Background()
	proxy := &MockModuleProxy{
		availableFunc: func(ctx context.Context, module, version string) (bool, error) {
			return false, nil
		},
	}
	runner := &MockCommandRunner{}
	v := usecase.NewVerifier(proxy, runner, verifyModule)

	// Execute
	_, err := v.Run(ctx, model.VerifyOptions{
		Version:      "0.3.3",
		PollInterval: 2 * time.Millisecond,
		MaxWait:      10 * time.Millisecond,
	})

	// Verify
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrTimeout))
	gt.String(t, err.Error()).Contains("did not appear")
	gt.Number(t, proxy.calls).Equal(5)

	// The probe never ran.
	gt.Number(t, len(runner.commands)).Equal(0)
}

func TestVerifier_Run_AvailableAfterRetries(t *testing.T) {
	ctx := context.Background()
	proxy := &MockModuleProxy{}
	proxy.availableFunc = func(ctx context.Context, module, version string) (bool, error) {
		switch proxy.calls {
		case 1:
			return false, nil
		case 2:
			// A transient proxy error is tolerated, not fatal.
			return false, errors.New("503 service unavailable")
		default:
			return true, nil
		}
	}
	v := usecase.NewVerifier(proxy, probeRunner(goodProbe()), verifyModule)

	// Execute
	report, err := v.Run(ctx, model.VerifyOptions{
		Version:      "0.3.3",
		PollInterval: time.Millisecond,
		MaxWait:      time.Second,
	})

	// Verify
	gt.NoError(t, err)
	gt.True(t, report.OK())
	gt.Number(t, proxy.calls).Equal(3)
}

func TestVerifier_Run_FailedChecks(t *testing.T) {
	ctx := context.Background()
	probe := goodProbe()
	probe.PackageVersion = "0.0.0"
	probe.StaticOK = false
	v := usecase.NewVerifier(&MockModuleProxy{}, probeRunner(probe), verifyModule)

	// Execute
	report, err := v.Run(ctx, model.VerifyOptions{Version: "0.3.3", SkipWait: true})

	// Verify: the report still lists every check alongside the error.
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("verification checks failed")
	gt.Value(t, report).NotNil()
	gt.Number(t, len(report.FailedChecks())).Equal(2)
	gt.True(t, !checkByName(report, "package version").OK)
	gt.String(t, checkByName(report, "package version").Detail).Contains(`installed "0.0.0"`)
	gt.True(t, !checkByName(report, "static bundle").OK)
}

func TestVerifier_Run_KeepEnv(t *testing.T) {
	ctx := context.Background()
	v := usecase.NewVerifier(&MockModuleProxy{}, probeRunner(goodProbe()), verifyModule)

	// Execute
	report, err := v.Run(ctx, model.VerifyOptions{Version: "0.3.3", SkipWait: true, KeepEnv: true})

	// Verify
	gt.NoError(t, err)
	gt.Value(t, report.EnvDir).NotEqual("")
	t.Cleanup(func() {
		_ = os.RemoveAll(report.EnvDir)
	})

	_, err = os.Stat(filepath.Join(report.EnvDir, "main.go"))
	gt.NoError(t, err)
	_, err = os.Stat(filepath.Join(report.EnvDir, "report.json"))
	gt.NoError(t, err)
}

func TestVerifier_Run_InvalidVersion(t *testing.T) {
	ctx := context.Background()
	v := usecase.NewVerifier(&MockModuleProxy{}, &MockCommandRunner{}, verifyModule)

	// Execute
	report, err := v.Run(ctx, model.VerifyOptions{Version: "banana"})

	// Verify
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrVersionFormat))
	gt.Value(t, report).Nil()
}

func TestVerifier_Run_ProbeFailure(t *testing.T) {
	ctx := context.Background()
	runner := &MockCommandRunner{
		runFunc: func(ctx context.Context, dir, command string) (string, error) {
			if command == "go get github.com/agent-infra/tarko-agent-ui@v0.3.3" {
				return "no matching versions", errors.New("exit status 1")
			}
			return "", nil
		},
	}
	v := usecase.NewVerifier(&MockModuleProxy{}, runner, verifyModule)

	// Execute
	report, err := v.Run(ctx, model.VerifyOptions{Version: "0.3.3"})

	// Verify
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("probe step failed")
	gt.Value(t, report).NotNil()
	gt.Number(t, len(report.Checks)).Equal(1) // only the availability check ran
}

func TestVerifier_Run_NoReport(t *testing.T) {
	ctx := context.Background()

	// Every step succeeds but the probe writes nothing.
	v := usecase.NewVerifier(&MockModuleProxy{}, &MockCommandRunner{}, verifyModule)

	// Execute
	_, err := v.Run(ctx, model.VerifyOptions{Version: "0.3.3", SkipWait: true})

	// Verify
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("probe did not produce a report")
}

func TestVerifier_Run_ProbeErrorField(t *testing.T) {
	ctx := context.Background()
	probe := goodProbe()
	probe.Error = "panic: embedded bundle missing"
	v := usecase.NewVerifier(&MockModuleProxy{}, probeRunner(probe), verifyModule)

	// Execute
	report, err := v.Run(ctx, model.VerifyOptions{Version: "0.3.3", SkipWait: true})

	// Verify
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("verification checks failed")
	failed := checkByName(report, "probe errors")
	gt.Value(t, failed).NotNil()
	gt.String(t, failed.Detail).Contains("embedded bundle missing")
}
