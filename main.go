package main

import (
	"context"
	"os"

	"github.com/agent-infra/tarko-agent-ui/pkg/cli"
)

func main() {
	if err := cli.Run(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
}
