package main

import (
	"os"

	"github.com/cardsite/backend/internal/client"
	"github.com/cardsite/backend/internal/logging"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	apiURL  string
	verbose bool
}

func (o *rootOptions) client() *client.Client {
	return client.New(o.apiURL, nil)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	defaultURL := os.Getenv("CARD_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}

	cmd := &cobra.Command{
		Use:           "cardctl",
		Short:         "Command line client for the digital business card API",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "WARN"
			if opts.verbose {
				level = "DEBUG"
			}
			logging.Setup(level, "text")
		},
	}
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", defaultURL, "base URL of the card API (env CARD_API_URL)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output, including failed analytics beacons")

	cmd.AddCommand(
		newSubmitCmd(opts),
		newTrackCmd(opts),
		newVCardCmd(opts),
		newShareCmd(opts),
	)
	return cmd
}
