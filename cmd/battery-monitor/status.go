package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rg3/battery-monitor/pkg/client"
	"github.com/rg3/battery-monitor/pkg/config"
	"github.com/rg3/battery-monitor/pkg/daemon"
)

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

func bool2Text(b bool) string {
	if b {
		return color.GreenString("yes")
	}
	return color.RedString("no")
}

type statusData struct {
	state          *daemon.Status
	config         *config.RawFileConfig
	shutdownActive bool
}

func fetchStatusData(apiClient *client.Client) (*statusData, error) {
	state, err := apiClient.GetState()
	if err != nil {
		return nil, fmt.Errorf("failed to get battery state: %w", err)
	}

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	shutdownActive, err := apiClient.GetShutdownActive()
	if err != nil {
		return nil, fmt.Errorf("failed to get shutdown state: %w", err)
	}

	return &statusData{
		state:          state,
		config:         conf,
		shutdownActive: shutdownActive,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get the current status of the battery monitor",
		Long:  `Get the current battery state, escalation progress, and daemon configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			apiClient := client.NewClient(unixSocketPath)

			data, err := fetchStatusData(apiClient)
			if err != nil {
				return err
			}

			cmd.Println(bold("Battery state:"))
			if data.state.ChargingState == "discharging" {
				cmd.Printf("  Charging state: %s\n", color.YellowString(data.state.ChargingState))
			} else {
				cmd.Printf("  Charging state: %s\n", data.state.ChargingState)
			}
			if data.state.RemainingCapacity != nil {
				cmd.Printf("  Remaining capacity: %s\n", bold("%d", *data.state.RemainingCapacity))
			}
			if data.state.DesignCapacityLow != nil {
				cmd.Printf("  Low capacity limit: %s\n", bold("%d", *data.state.DesignCapacityLow))
			}
			if data.state.PresentRate != nil {
				cmd.Printf("  Present rate: %s\n", bold("%d", *data.state.PresentRate))
			}
			cmd.Printf("  Sampled at: %s\n", data.state.SampledAt.Format("2006-01-02 15:04:05"))

			cmd.Println()
			cmd.Println(bold("Escalation:"))
			cmd.Println("  Shutdown launched: " + bool2Text(data.shutdownActive))
			cmd.Printf("  Consecutive low cycles: %s\n", bold("%d", data.state.WarnCycles))

			cmd.Println()
			cmd.Println(bold("Configuration:"))
			conf := config.NewFileFromConfig(data.config, "")
			cmd.Printf("  Poll interval: %s\n", conf.PollInterval())
			cmd.Printf("  Safety window: %s\n", conf.SafetyWindow())
			cmd.Printf("  Sign dwell: %s\n", conf.SignDwell())
			cmd.Printf("  Shutdown delay: %d minutes\n", conf.ShutdownDelayMinutes())

			// OS-level battery info is best effort, the procfs interface
			// above is authoritative.
			if bat, err := apiClient.GetBatteryInfo(); err == nil {
				cmd.Println()
				cmd.Println(bold("OS battery info:"))
				cmd.Printf("  State: %s\n", bat.State)
				if bat.Full > 0 {
					cmd.Printf("  Charge: %s\n", bold("%.0f%%", bat.Current/bat.Full*100))
				}
			}

			return nil
		},
	}
}
