package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/dctlforge/internal/server"
	"github.com/standardbeagle/dctlforge/pkg/events"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parse, generate, edit and validate API over HTTP and WebSocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.parser()
			if err != nil {
				return err
			}
			srv, err := server.New(server.Options{
				CacheSize: a.cfg.GetCacheSize(),
				QueueSize: a.cfg.GetQueueSize(),
				Limits:    a.limits(),
				Parser:    p,
				EventBus:  a.eventBus,
			})
			if err != nil {
				return err
			}

			a.eventBus.Subscribe(events.CodeGenerated, func(e events.Event) {
				log.Printf("generated %v bytes for %s", e.Data["bytes"], e.Source)
			})

			if addr == "" {
				addr = a.cfg.GetAddr()
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(addr) }()

			sigChan := make(chan os.Signal, 1)
			setupSignalHandling(sigChan)

			select {
			case err := <-errCh:
				return err
			case <-sigChan:
				log.Println("shutting down")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Stop(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, 127.0.0.1:7477)")
	return cmd
}
