package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agent-infra/tarko-agent-ui/pkg/cli/config"
	"github.com/agent-infra/tarko-agent-ui/pkg/webui"
	"github.com/urfave/cli/v3"
)

func cmdPath() *cli.Command {
	var projectCfg config.Project

	return &cli.Command{
		Name:  "path",
		Usage: "Print the absolute path of the fetched web UI bundle",
		Flags: projectCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			manifest, err := projectCfg.Load()
			if err != nil {
				return err
			}

			dir, err := webui.StaticDir(filepath.Join(projectCfg.Root, manifest.Paths.StaticDir))
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, dir)
			return nil
		},
	}
}
