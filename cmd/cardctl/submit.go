package main

import (
	"errors"
	"fmt"

	"github.com/cardsite/backend/internal/client"
	"github.com/cardsite/backend/internal/model"
	"github.com/cardsite/backend/internal/photo"
	"github.com/spf13/cobra"
)

func newSubmitCmd(root *rootOptions) *cobra.Command {
	var (
		sub       model.ContactSubmission
		photoPath string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Exchange contact details, optionally with a selfie",
		Example: `  cardctl submit --name "Ava" --email ava@example.com
  cardctl submit --name "Bo" --phone "+1 555 0100" --photo selfie.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if photoPath != "" {
				uri, err := photo.EncodeFile(photoPath, photo.CaptureWidth, photo.CaptureHeight)
				if err != nil {
					return err
				}
				sub.Photo = uri
				if sub.Source == "" {
					sub.Source = client.SourceSelfieExchange
				}
			}
			if sub.Source == "" {
				sub.Source = client.SourceConferenceBanner
			}

			ok, err := root.client().SubmitContact(cmd.Context(), sub)
			if err != nil {
				var rerr *client.ResponseError
				if errors.As(err, &rerr) && rerr.Message != "" {
					return errors.New(rerr.Message)
				}
				return fmt.Errorf("failed to submit, please try again: %w", err)
			}
			if !ok {
				return errors.New("failed to submit, please try again")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Contact information received successfully!")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&sub.Name, "name", "", "your name (required)")
	f.StringVar(&sub.Email, "email", "", "email address")
	f.StringVar(&sub.Phone, "phone", "", "phone number")
	f.StringVar(&sub.Twitter, "twitter", "", "Twitter handle")
	f.StringVar(&sub.LinkedIn, "linkedin", "", "LinkedIn profile URL")
	f.StringVar(&sub.Company, "company", "", "company")
	f.StringVar(&sub.Source, "source", "", "where the exchange happened (default depends on --photo)")
	f.StringVar(&photoPath, "photo", "", "image file to send as the selfie")
	return cmd
}
