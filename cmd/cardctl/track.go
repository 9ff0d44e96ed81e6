package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTrackCmd(root *rootOptions) *cobra.Command {
	var meta []string

	cmd := &cobra.Command{
		Use:   "track <action>",
		Short: "Send an analytics beacon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			metadata, err := parseMeta(meta)
			if err != nil {
				return err
			}
			root.client().Track(cmd.Context(), args[0], metadata)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&meta, "meta", nil, "metadata as key=value (repeatable)")
	return cmd
}

func parseMeta(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --meta %q, want key=value", p)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}
