package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/interfaces"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/model"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
)

//go:embed templates/probe_main.go.tmpl
var probeMainTemplate string

// probeReportFile is written by the probe program into its working
// directory; parsing a file avoids fishing JSON out of mixed go output.
const probeReportFile = "report.json"

// Verifier checks a published release end to end: availability on the
// module proxy, a clean install into a disposable module, and a fixed
// checklist over the installed package's API.
type Verifier struct {
	proxy  interfaces.ModuleProxy
	runner interfaces.CommandRunner
	module string
}

// NewVerifier creates a verifier for the given module path
func NewVerifier(proxy interfaces.ModuleProxy, runner interfaces.CommandRunner, module string) *Verifier {
	return &Verifier{
		proxy:  proxy,
		runner: runner,
		module: module,
	}
}

// Run verifies one released version. The returned report lists every
// check; a non-nil error means verification did not complete or at least
// one check failed.
func (v *Verifier) Run(ctx context.Context, opts model.VerifyOptions) (*model.VerifyReport, error) {
	logger := ctxlog.From(ctx)
	started := time.Now()

	ver, err := model.ParseVersion(opts.Version)
	if err != nil {
		return nil, err
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 5 * time.Minute
	}

	report := &model.VerifyReport{Module: v.module, Version: ver.String()}

	if opts.SkipWait {
		logger.Info("skipping availability wait", "version", ver.Tag())
	} else {
		if err := v.waitAvailable(ctx, ver.Tag(), opts.PollInterval, opts.MaxWait); err != nil {
			return report, err
		}
		report.Checks = append(report.Checks, model.CheckResult{
			Name: "proxy availability", OK: true, Detail: ver.Tag(),
		})
	}

	envDir, err := os.MkdirTemp("", "tarko-verify-*")
	if err != nil {
		return report, goerr.Wrap(err, "failed to create verification environment")
	}
	if opts.KeepEnv {
		report.EnvDir = envDir
		logger.Info("keeping verification environment", "dir", envDir)
	} else {
		defer os.RemoveAll(envDir)
	}

	probe, err := v.runProbe(ctx, envDir, ver, opts.Quick)
	if err != nil {
		return report, err
	}
	buildChecklist(report, probe, ver, opts.Quick)
	report.Elapsed = time.Since(started)

	for _, c := range report.Checks {
		logger.Info("check", "name", c.Name, "ok", c.OK, "detail", c.Detail)
	}
	if failed := report.FailedChecks(); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, c := range failed {
			names = append(names, c.Name)
		}
		return report, goerr.New("verification checks failed", goerr.V("failed", names))
	}

	logger.Info("verification passed",
		"module", v.module,
		"version", ver.String(),
		"elapsed", report.Elapsed.String(),
	)
	return report, nil
}

// waitAvailable polls the module proxy until the version appears. The
// attempt count is fixed up front so the wait is bounded even when each
// request itself is slow.
func (v *Verifier) waitAvailable(ctx context.Context, tag string, interval, maxWait time.Duration) error {
	logger := ctxlog.From(ctx)

	attempts := int(maxWait / interval)
	if maxWait%interval != 0 {
		attempts++
	}
	if attempts < 1 {
		attempts = 1
	}

	for i := 1; i <= attempts; i++ {
		ok, err := v.proxy.VersionAvailable(ctx, v.module, tag)
		if err != nil {
			logger.Warn("availability check failed", "attempt", i, "error", err)
		} else if ok {
			logger.Info("release available on module proxy", "version", tag, "attempts", i)
			return nil
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return goerr.Wrap(ctx.Err(), "interrupted while waiting for availability")
		case <-time.After(interval):
		}
	}
	return goerr.Wrap(types.ErrTimeout, "release did not appear on the module proxy",
		goerr.V("version", tag), goerr.V("waited", maxWait.String()))
}

// runProbe sets up a throwaway module in envDir, installs the released
// version through the normal toolchain path, and runs the rendered probe
// program against it.
func (v *Verifier) runProbe(ctx context.Context, envDir string, ver model.Version, quick bool) (*model.ProbeReport, error) {
	logger := ctxlog.From(ctx)

	if err := v.writeProbe(envDir, quick); err != nil {
		return nil, err
	}

	cmds := []string{
		"go mod init tarko-verify-probe",
		fmt.Sprintf("go get %s@%s", v.module, ver.Tag()),
		"go run .",
	}
	for _, cmd := range cmds {
		out, err := v.runner.Run(ctx, envDir, cmd)
		if err != nil {
			return nil, goerr.Wrap(err, "probe step failed",
				goerr.V("command", cmd), goerr.V("output", out))
		}
		logger.Debug("probe step completed", "command", cmd)
	}

	data, err := os.ReadFile(filepath.Join(envDir, probeReportFile))
	if err != nil {
		return nil, goerr.Wrap(err, "probe did not produce a report")
	}
	var probe model.ProbeReport
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, goerr.Wrap(err, "failed to parse probe report")
	}
	return &probe, nil
}

func (v *Verifier) writeProbe(envDir string, quick bool) error {
	tmpl, err := template.New("probe").Parse(probeMainTemplate)
	if err != nil {
		return goerr.Wrap(err, "failed to parse probe template")
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"Module": v.module,
		"Report": probeReportFile,
		"Serve":  !quick,
	}); err != nil {
		return goerr.Wrap(err, "failed to render probe program")
	}
	if err := os.WriteFile(filepath.Join(envDir, "main.go"), buf.Bytes(), 0644); err != nil {
		return goerr.Wrap(err, "failed to write probe program")
	}
	return nil
}

func buildChecklist(report *model.VerifyReport, probe *model.ProbeReport, ver model.Version, quick bool) {
	add := func(name string, ok bool, detail string) {
		report.Checks = append(report.Checks, model.CheckResult{Name: name, OK: ok, Detail: detail})
	}
	add("package version", probe.PackageVersion == ver.String(),
		fmt.Sprintf("installed %q, expected %q", probe.PackageVersion, ver.String()))
	add("assets version", probe.AssetsVersion != "" && probe.AssetsVersion != "unknown",
		probe.AssetsVersion)
	add("static bundle", probe.StaticOK, fmt.Sprintf("%d files", probe.StaticFiles))
	add("html injection", probe.HTMLOK, "")
	if !quick {
		add("embedded server", probe.ServerOK, "")
	}
	if probe.Error != "" {
		add("probe errors", false, probe.Error)
	}
}
