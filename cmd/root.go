// Package cmd is the flickrframe command line
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aouyang1/flickrframe/config"
)

var (
	envFile string
	cfg     config.Config
)

// RootCmd serves the frame when called without a subcommand.
var RootCmd = &cobra.Command{
	Use:   "flickrframe",
	Short: "Flickr photoset slideshow for a digital photo frame.",
	Long: `flickrframe serves a full screen slideshow of one Flickr photoset.
The server proxies the photoset from the Flickr API and drives every
connected display over a websocket.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(photosCmd)

	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "file of environment variables to load, existing variables win")
}

// initConfig loads the env file, reads the configuration and sets up logging.
func initConfig() error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	cfg = config.FromEnv()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return nil
}
