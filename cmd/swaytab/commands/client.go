package commands

import (
	"fmt"

	"github.com/bryanchriswhite/swaytab/internal/channel"
	"github.com/spf13/cobra"
)

var showMode string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Start a switching session",
	Long: `Opens a switching session over a snapshot of the focus history and
prints the candidate list. The selection starts on the second entry, so
a SHOW immediately followed by SELECT flips to the previous window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		line := channel.CmdShow
		if showMode != "" {
			line = fmt.Sprintf("%s %s", channel.CmdShow, showMode)
		}
		reply, err := send(line)
		if err != nil {
			return err
		}
		printView(reply)
		return nil
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Move the selection forward",
	RunE: func(cmd *cobra.Command, args []string) error {
		reply, err := send(channel.CmdNext)
		if err != nil {
			return err
		}
		printView(reply)
		return nil
	},
}

var prevCmd = &cobra.Command{
	Use:   "prev",
	Short: "Move the selection backward",
	RunE: func(cmd *cobra.Command, args []string) error {
		reply, err := send(channel.CmdPrev)
		if err != nil {
			return err
		}
		printView(reply)
		return nil
	},
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Focus the selected window and end the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := send(channel.CmdSelect)
		return err
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "End the session without changing focus",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := send(channel.CmdCancel)
		return err
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report daemon state",
	RunE: func(cmd *cobra.Command, args []string) error {
		reply, err := send(channel.CmdStatus)
		if err != nil {
			return err
		}
		fmt.Printf("switching: %v\n", reply.Switching)
		fmt.Printf("degraded:  %v\n", reply.Degraded)
		if reply.Switching {
			printView(reply)
		}
		return nil
	},
}

var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Stop the daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := send(channel.CmdShutdown)
		return err
	},
}

func init() {
	showCmd.Flags().StringVar(&showMode, "mode", "", "window scope for this session: current or all")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(prevCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(shutdownCmd)
}

// send ships one command to the daemon and surfaces error replies as
// command errors so the process exits non-zero
func send(command string) (channel.Reply, error) {
	reply, err := channel.Send(socketPath(""), command)
	if err != nil {
		return channel.Reply{}, fmt.Errorf("failed to reach daemon: %w", err)
	}
	if !reply.OK() {
		return channel.Reply{}, fmt.Errorf("%s: %s", reply.Kind, reply.Message)
	}
	return reply, nil
}

// printView lists the session's windows, marking the selected entry
func printView(reply channel.Reply) {
	for i, w := range reply.Windows {
		marker := " "
		if i == reply.Index {
			marker = ">"
		}
		name := w.AppIdentifier()
		if name == "" {
			name = "?"
		}
		fmt.Printf("%s %d  %-20s %s\n", marker, w.ID, name, w.Title)
	}
}
