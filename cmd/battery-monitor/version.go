package main

import (
	"github.com/spf13/cobra"

	"github.com/rg3/battery-monitor/pkg/client"
	"github.com/rg3/battery-monitor/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("client: %s (%s)\n", version.Version, version.GitCommit)

			daemonVersion, err := client.NewClient(unixSocketPath).GetVersion()
			if err != nil {
				cmd.Println("daemon: not reachable")
				return
			}
			cmd.Printf("daemon: %s\n", daemonVersion)
		},
	}
}
