package main

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/cardsite/backend/internal/client"
	"github.com/spf13/cobra"
)

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

func newShareCmd(root *rootOptions) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "share",
		Short: "Copy the card link to the clipboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				url = root.apiURL
			}
			if err := copyToClipboard(url); err != nil {
				// No clipboard available; print the link instead and do not
				// count it as shared.
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %s to the clipboard\n", url)
			root.client().Track(cmd.Context(), client.ActionShareCard, nil)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "link to share (default: --api)")
	return cmd
}
