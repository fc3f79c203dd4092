package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/agent-infra/tarko-agent-ui/pkg/cli/config"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/model"
	"github.com/agent-infra/tarko-agent-ui/pkg/infra/goproxy"
	"github.com/agent-infra/tarko-agent-ui/pkg/infra/shell"
	"github.com/agent-infra/tarko-agent-ui/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdVerify() *cli.Command {
	var (
		projectCfg config.Project
		verifyCfg  config.Verify
	)

	flags := append(projectCfg.Flags(), verifyCfg.Flags()...)

	return &cli.Command{
		Name:    "verify",
		Aliases: []string{"v"},
		Usage:   "Verify a published release from a clean environment",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			manifest, err := projectCfg.Load()
			if err != nil {
				return err
			}

			opts := verifyCfg.Options()
			if opts.Version == "" {
				opts.Version = manifest.Version
			}
			module := verifyCfg.Package
			if module == "" {
				module = manifest.Module
			}
			if module == "" {
				return goerr.New("module path is not configured, set module in the manifest or pass --package-name")
			}
			logger.Info("verifying release",
				slog.String("module", module),
				slog.String("version", opts.Version),
			)

			verifier := usecase.NewVerifier(
				goproxy.New(goproxy.WithBaseURL(verifyCfg.ProxyURL)),
				shell.New(),
				module,
			)

			report, err := verifier.Run(ctx, opts)
			if report != nil {
				printReport(os.Stdout, report)
			}
			return err
		},
	}
}

func printReport(w io.Writer, report *model.VerifyReport) {
	fmt.Fprintf(w, "Verification of %s@v%s (%s)\n",
		report.Module, report.Version, report.Elapsed.Round(time.Millisecond))
	for _, check := range report.Checks {
		mark := "ok  "
		if !check.OK {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "  [%s] %-20s %s\n", mark, check.Name, check.Detail)
	}
	if report.EnvDir != "" {
		fmt.Fprintf(w, "Environment kept at %s\n", report.EnvDir)
	}
}
