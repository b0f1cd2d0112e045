package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dreitier/treefactor/config"
	"github.com/dreitier/treefactor/editor"
	"github.com/dreitier/treefactor/snapshot"
	"github.com/dreitier/treefactor/storage/provider"
	"github.com/dreitier/treefactor/web"
	termbox "github.com/nsf/termbox-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve editing sessions over HTTP",
		Long: `Serve editing sessions over HTTP.

Sessions are persisted in the configured storage and restored on start.
Unless running in background, these keys are available:
  s       snapshot all sessions with unsaved changes
  r       reload sessions from storage
  q, ESC  quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	cfg := config.GetInstance()
	if !config.HasGlobalDebugEnabled() {
		log.SetLevel(cfg.Global().LogLevel())
	}
	log.Info(versionString())

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := provider.NewStore(ctx, cfg.Storage())
	if err != nil {
		return fmt.Errorf("cannot open storage: %w", err)
	}

	manager := editor.NewManager(store)
	if restored, err := manager.Restore(ctx); err != nil {
		log.Errorf("Cannot restore sessions: %s", err)
	} else {
		log.Infof("Restored %d session(s)", restored)
	}

	stopScheduler := func() {}
	if cron := cfg.Global().SnapshotSchedule(); cron != nil {
		stopScheduler = snapshot.NewScheduler(snapshot.NewSchedule(cron), manager).Start(ctx)
	}

	handler := web.WithBasicAuth(cfg.Http().BasicAuth, web.NewRouter(manager, int64(cfg.Global().MaxUploadSize())))
	server := web.NewServer(cfg.Global(), cfg.Http(), handler)

	configureTerminal(ctx, manager, stop)

	served := make(chan error, 1)
	go func() {
		served <- server.ListenAndServe()
	}()

	select {
	case err = <-served:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Global().ShutdownTimeout())
	defer cancel()

	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warnf("Webserver did not stop cleanly: %s", shutdownErr)
	}

	stopScheduler()

	if closeErr := manager.Close(shutdownCtx); closeErr != nil {
		log.Errorf("Final snapshot failed: %s", closeErr)
	}

	return err
}

// configureTerminal polls the keyboard for snapshot, reload and quit.
func configureTerminal(ctx context.Context, manager *editor.Manager, quit context.CancelFunc) {
	if config.IsRunningInBackgroundForced() {
		return
	}

	// @see https://github.com/nsf/termbox-go/blob/master/_demos/raw_input.go
	if err := termbox.Init(); err != nil {
		log.Warnf("Unable to run in interactive mode: %s", err)
		return
	}

	go func() {
		<-ctx.Done()
		termbox.Interrupt()
	}()

	go func() {
		defer termbox.Close()

		for {
			var data [64]byte

			// raw events include escape sequences, normal events don't
			switch ev := termbox.PollRawEvent(data[:]); ev.Type {
			case termbox.EventRaw:
				switch fmt.Sprintf("%q", data[:ev.N]) {
				case `"s"`:
					count, err := manager.Snapshot(ctx)
					if err != nil {
						log.Errorf("Snapshot failed: %s", err)
					} else {
						log.Printf("Snapshot of %d session(s) done", count)
					}
				case `"\x12"` /* Ctrl+R */, `"r"`:
					log.Printf("Reloading sessions...")
					if count, err := manager.Restore(ctx); err != nil {
						log.Errorf("Reload failed: %s", err)
					} else {
						log.Printf("Loaded %d new session(s)", count)
					}
				case `"\x1b"` /* ESC */, `"q"`, `"\x03"` /* Ctrl+C */:
					log.Printf("Exiting...")
					quit()
					return
				}
			case termbox.EventInterrupt:
				return
			case termbox.EventError:
				log.Errorf("Keyboard input failed: %s", ev.Err)
				return
			}
		}
	}()
}
