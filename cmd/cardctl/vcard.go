package main

import (
	"fmt"
	"os"

	"github.com/cardsite/backend/internal/client"
	"github.com/spf13/cobra"
)

func newVCardCmd(root *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "vcard",
		Short: "Save the card owner's contact as a .vcf file",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := root.client()
			data, filename, err := c.FetchVCard(cmd.Context())
			if err != nil {
				return err
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
			} else {
				if out == "" {
					out = filename
				}
				err = os.WriteFile(out, data, 0o644)
				if err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", out)
				}
			}
			if err != nil {
				return err
			}
			c.Track(cmd.Context(), client.ActionSaveContact, nil)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, '-' for stdout (default: server-suggested name)")
	return cmd
}
