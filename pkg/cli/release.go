package cli

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/agent-infra/tarko-agent-ui/pkg/cli/config"
	"github.com/agent-infra/tarko-agent-ui/pkg/infra/git"
	"github.com/agent-infra/tarko-agent-ui/pkg/infra/npm"
	"github.com/agent-infra/tarko-agent-ui/pkg/infra/shell"
	"github.com/agent-infra/tarko-agent-ui/pkg/infra/slack"
	"github.com/agent-infra/tarko-agent-ui/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"
)

func cmdRelease() *cli.Command {
	var (
		projectCfg  config.Project
		registryCfg config.Registry
		releaseCfg  config.Release
		notifyCfg   config.Notify
	)

	flags := append(projectCfg.Flags(), registryCfg.Flags()...)
	flags = append(flags, releaseCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)

	return &cli.Command{
		Name:    "release",
		Aliases: []string{"r"},
		Usage:   "Cut a release with a freshly bundled web UI",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			manifest, err := projectCfg.Load()
			if err != nil {
				return err
			}
			logger.Debug("configuration loaded",
				slog.Any("registry", registryCfg),
				slog.Any("notify", notifyCfg),
				slog.String("manifest", projectCfg.ManifestPath()),
			)

			registry := npm.New(
				npm.WithBaseURL(registryCfg.URL),
				npm.WithToken(registryCfg.Token),
			)
			orchestrator := usecase.NewOrchestrator(
				manifest,
				projectCfg.Root,
				git.New(projectCfg.Root),
				usecase.NewResolver(registry, manifest.Upstream.Package),
				usecase.NewFetcher(registry, manifest.Upstream.Package,
					filepath.Join(projectCfg.Root, manifest.Paths.StaticDir)),
				shell.New(),
				slack.New(notifyCfg.SlackWebhookURL),
			)

			runLog, err := orchestrator.Run(ctx, releaseCfg.Options())
			if err != nil {
				return err
			}
			logger.Info("run log recorded",
				slog.String("run_id", runLog.ID),
				slog.Int("steps", len(runLog.Steps)),
				slog.String("final", string(runLog.Final)),
			)
			return nil
		},
	}
}
