package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/roomtable/server"
	"github.com/hrygo/roomtable/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the room map over HTTP",
	Long: `Serve the room map over HTTP. The derived file is loaded on start;
it is built from the input first when --build is set or when it does not
exist yet. SIGHUP reloads the room map.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}
		s, err := newStore(p)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		build, _ := cmd.Flags().GetBool("build")
		if err := loadSnapshot(ctx, s, p.Output, build); err != nil {
			return err
		}

		srv, err := server.NewServer(ctx, p, s, slog.Default())
		if err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Start(ctx)
		})
		g.Go(func() error {
			<-ctx.Done()
			return srv.Shutdown(context.WithoutCancel(ctx))
		})
		g.Go(func() error {
			reloadOnHangup(ctx, s)
			return nil
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().Bool("build", false, "rebuild the room map from the input before serving")
}

func loadSnapshot(ctx context.Context, s *store.Store, output string, build bool) error {
	if !build {
		if _, err := os.Stat(output); err == nil {
			_, err := s.Load(ctx)
			return err
		}
		slog.Info("room map not found, building", slog.String("output", output))
	}
	_, err := s.Build(ctx)
	return err
}

func reloadOnHangup(ctx context.Context, s *store.Store) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			snap, err := s.Reload(ctx)
			if err != nil {
				slog.Error("reload failed", slog.String("error", err.Error()))
				continue
			}
			slog.Info("room map reloaded", slog.Uint64("version", snap.Version), slog.Int("rooms", len(snap.Rooms)))
		}
	}
}
