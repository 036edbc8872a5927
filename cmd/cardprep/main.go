package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/cardprep/internal/cli"
	"codeberg.org/snonux/cardprep/internal/gui"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// No subcommand launches the desktop reviewer
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runGUI(flags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runGUI(flags *cli.Flags) error {
	proc, err := cli.NewProcessor(flags)
	if err != nil {
		return err
	}
	defer proc.Close()

	fmt.Printf("Project root: %s\n", proc.Store().Root)

	app, err := gui.New(&gui.Config{Processor: proc, CaptureLog: true})
	if err != nil {
		return err
	}
	app.Run()
	return nil
}
