package main

import (
	"context"

	"github.com/Carmen-Shannon/oxy-dream/engine/source"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var vf viewFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Open an empty view that renders descriptions pushed over websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := vf.apply(cmd, a); err != nil {
				a.status.fail("%v", err)
				return err
			}
			if a.cfg.Source.Listen == "" {
				a.cfg.Source.Listen = defaultListen
			}
			// an empty description gives the default sky and ground until the first push
			empty := func(_ context.Context, sink source.Sink) error {
				return a.apply(sink, nil)
			}
			return a.runViewer(cmd.Context(), vf.headless, empty)
		},
	}
	vf.register(cmd)
	return cmd
}

const defaultListen = "127.0.0.1:7777"
