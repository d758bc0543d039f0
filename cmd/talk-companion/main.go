package main

import (
	"os"

	"github.com/rcliao/talk-companion/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
