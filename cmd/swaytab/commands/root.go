package commands

import (
	"fmt"
	"os"

	"github.com/bryanchriswhite/swaytab/internal/channel"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "swaytab",
		Short: "swaytab - Alt-Tab window switcher for sway",
		Long: `swaytab tracks window focus history in sway and lets you cycle
through windows in most-recently-used order, Windows style.

Run "swaytab daemon" once per session; bind the remaining subcommands
(show, next, prev, select, cancel) to keys or invoke them from a
switcher front-end. Each subcommand talks to the daemon over its
command socket and exits immediately.`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/swaytab/config.yaml)")
	rootCmd.PersistentFlags().String("socket", "", "command socket path (default is $XDG_RUNTIME_DIR/swaytab.sock)")

	viper.BindPFlag("socket", rootCmd.PersistentFlags().Lookup("socket"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// socketPath resolves the command socket, preferring the --socket flag
func socketPath(configured string) string {
	if s := viper.GetString("socket"); s != "" {
		return s
	}
	if configured != "" {
		return configured
	}
	return channel.SocketPath()
}
