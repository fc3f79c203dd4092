package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/agent-infra/tarko-agent-ui/pkg/cli/config"
	"github.com/agent-infra/tarko-agent-ui/pkg/infra/git"
	"github.com/agent-infra/tarko-agent-ui/pkg/infra/shell"
	"github.com/agent-infra/tarko-agent-ui/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdDoctor() *cli.Command {
	var projectCfg config.Project

	return &cli.Command{
		Name:  "doctor",
		Usage: "Check that the project is ready to cut a release",
		Flags: projectCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			doctor := usecase.NewDoctor(
				projectCfg.Root,
				git.New(projectCfg.Root),
				shell.New(),
			)

			checks, err := doctor.Run(ctx)
			for _, check := range checks {
				mark := "ok  "
				if !check.OK {
					mark = "FAIL"
				}
				fmt.Fprintf(os.Stdout, "  [%s] %-22s %s\n", mark, check.Name, check.Detail)
			}
			return err
		},
	}
}
