// Package main provides the graphrun CLI: run compiled graph artifacts on
// an accelerator and inspect the available drivers.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/born-ml/graphrun/device"
	_ "github.com/born-ml/graphrun/driver/sim"
	"github.com/born-ml/graphrun/driver/webgpu"
)

const version = "v0.1.0-dev"

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "graphrun",
		Short:         "Run compiled graph artifacts on an accelerator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}

	root.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")

	viper.SetEnvPrefix("GRAPHRUN")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newRunCommand())
	root.AddCommand(newDevicesCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func setupLogging() error {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", viper.GetString("log-level"), err)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
	return nil
}

func newDevicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List registered device drivers",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range device.Drivers() {
				switch name {
				case "webgpu":
					if webgpu.IsAvailable() {
						fmt.Printf("%s\tavailable\n", name)
					} else {
						fmt.Printf("%s\tunavailable (wgpu_native not found)\n", name)
					}
				default:
					fmt.Printf("%s\tavailable\n", name)
				}
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("graphrun %s\n", version)
		},
	}
}
