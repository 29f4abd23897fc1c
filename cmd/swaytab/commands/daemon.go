package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanchriswhite/swaytab/internal/channel"
	"github.com/bryanchriswhite/swaytab/internal/compositor"
	"github.com/bryanchriswhite/swaytab/internal/config"
	"github.com/bryanchriswhite/swaytab/internal/icon"
	"github.com/bryanchriswhite/swaytab/internal/logger"
	"github.com/bryanchriswhite/swaytab/internal/registry"
	"github.com/bryanchriswhite/swaytab/internal/switcher"
	"github.com/bryanchriswhite/swaytab/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the switcher daemon",
	Long: `Starts the swaytab daemon: it subscribes to sway window events,
maintains the focus-history registry, and serves switching commands on
the command socket until stopped or told to SHUTDOWN.`,
	RunE: runDaemon,
}

func init() {
	daemonCmd.Flags().String("mode", "", "default window scope: current or all")
	daemonCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")

	viper.BindPFlag("mode", daemonCmd.Flags().Lookup("mode"))
	viper.BindPFlag("verbose", daemonCmd.Flags().Lookup("verbose"))

	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if m := viper.GetString("mode"); m != "" {
		mode, err := config.ParseMode(m)
		if err != nil {
			return err
		}
		configMgr.SetMode(mode)
	}

	cfg := configMgr.Get()

	level := cfg.LogLevel
	if viper.GetBool("verbose") {
		level = "debug"
	}
	logger.Init(level, true)

	log := logger.WithComponent("daemon")
	log.Info().
		Str("config", configMgr.GetConfigPath()).
		Str("mode", string(cfg.Mode)).
		Msg("Starting swaytab daemon")

	releasePidfile, err := acquirePidfile()
	if err != nil {
		return err
	}
	defer releasePidfile()

	// The query connection is held for the daemon's lifetime; the event
	// subscription uses its own connection managed by the watch loop.
	conn, err := compositor.Dial()
	if err != nil {
		return fmt.Errorf("failed to connect to compositor: %w", err)
	}
	defer conn.Close()

	reg, err := registry.New(conn)
	if err != nil {
		return fmt.Errorf("failed to initialize window registry: %w", err)
	}

	var (
		notify switcher.Notifier
		uiSrv  *ui.Server
	)
	if cfg.UIPort > 0 {
		hub := ui.NewHub(icon.NewResolver())
		uiSrv = ui.NewServer(hub)
		notify = hub
		go func() {
			if err := uiSrv.Start(cfg.UIPort); err != nil {
				log.Warn().Err(err).Msg("Presentation feed stopped")
			}
		}()
	}

	sw := switcher.New(reg, conn, notify)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := channel.NewServer(sw, reg, cfg.Mode, cancel)
	sock := socketPath(cfg.SocketPath)
	if err := srv.Listen(sock); err != nil {
		return err
	}
	defer srv.Close()

	go reg.Watch(ctx, func() (compositor.EventSource, error) {
		c, err := compositor.Dial()
		if err != nil {
			return nil, err
		}
		return c, nil
	}, cfg.ReconcileInterval())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
		cancel()
	}()

	err = srv.Serve(ctx)

	if uiSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer shutdownCancel()
		uiSrv.Shutdown(shutdownCtx)
	}

	log.Info().Msg("Daemon stopped")
	return err
}
