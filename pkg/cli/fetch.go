package cli

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/agent-infra/tarko-agent-ui/pkg/cli/config"
	"github.com/agent-infra/tarko-agent-ui/pkg/infra/npm"
	"github.com/agent-infra/tarko-agent-ui/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"
)

func cmdFetch() *cli.Command {
	var (
		projectCfg  config.Project
		registryCfg config.Registry
		npmVersion  string
	)

	flags := append(projectCfg.Flags(), registryCfg.Flags()...)
	flags = append(flags, &cli.StringFlag{
		Name:        "npm-version",
		Usage:       "Upstream npm version to fetch (latest when omitted)",
		Destination: &npmVersion,
	})

	return &cli.Command{
		Name:  "fetch",
		Usage: "Download the web UI bundle into the static directory",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			manifest, err := projectCfg.Load()
			if err != nil {
				return err
			}

			fetcher := usecase.NewFetcher(
				npm.New(
					npm.WithBaseURL(registryCfg.URL),
					npm.WithToken(registryCfg.Token),
				),
				manifest.Upstream.Package,
				filepath.Join(projectCfg.Root, manifest.Paths.StaticDir),
			)
			result, err := fetcher.Fetch(ctx, npmVersion)
			if err != nil {
				return err
			}

			logger.Info("bundle fetched",
				slog.String("package", manifest.Upstream.Package),
				slog.String("version", result.Version),
				slog.Int("files", len(result.Files)),
				slog.Int64("bytes", result.Size),
				slog.String("dir", result.Dir),
			)
			return nil
		},
	}
}
