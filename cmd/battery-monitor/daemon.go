package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rg3/battery-monitor/pkg/config"
	"github.com/rg3/battery-monitor/pkg/daemon"
	"github.com/rg3/battery-monitor/pkg/version"
)

var (
	// allowNonRootAccess indicates whether to always allow non-root users
	// to reach the daemon's control socket.
	allowNonRootAccess = false
	pollPeriodSeconds  = 0
)

// NewDaemonCommand .
func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon <low-battery-sound> <start-shutdown-sound> <stop-shutdown-sound> <window-font> <shutdown-command>",
		Short: "Run the battery monitor daemon in the foreground",
		Long: `Run the battery monitor daemon in the foreground.

The window font must be given in the traditional format, as used by
xlsfonts, for example. The shutdown command is usually '/sbin/shutdown',
but it is an argument so you can indicate something like
'/usr/bin/sudo /sbin/shutdown'.`,
		Args: cobra.ExactArgs(5),
		RunE: func(_ *cobra.Command, args []string) error {
			if pollPeriodSeconds != 0 &&
				(pollPeriodSeconds < config.MinPollIntervalSeconds || pollPeriodSeconds > config.MaxPollIntervalSeconds) {
				return fmt.Errorf("poll period must be between %d and %d seconds, got %d",
					config.MinPollIntervalSeconds, config.MaxPollIntervalSeconds, pollPeriodSeconds)
			}

			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("battery-monitor daemon starting")

			return daemon.Run(daemon.Options{
				ConfigPath:          configPath,
				UnixSocketPath:      unixSocketPath,
				AllowNonRoot:        allowNonRootAccess,
				LowBatterySound:     args[0],
				ShutdownStartSound:  args[1],
				ShutdownStopSound:   args[2],
				Font:                args[3],
				ShutdownCommand:     args[4],
				PollIntervalSeconds: pollPeriodSeconds,
			})
		},
	}

	f := cmd.Flags()

	f.IntVar(&pollPeriodSeconds, "period", 0,
		"Poll period in seconds (1-86400). 0 means the config file value, or 20.")
	f.BoolVar(&allowNonRootAccess, "allow-non-root-access", false,
		"Allow non-root users to access the daemon.")

	return cmd
}
