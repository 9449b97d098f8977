package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/cacheconv/internal/cli"
	"codeberg.org/snonux/cacheconv/internal/gui"
	"codeberg.org/snonux/cacheconv/internal/processor"
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

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	// Config file and environment values for flags not given explicitly
	cli.ApplyConfig(flags)

	// No input provided - launch GUI mode by default
	if len(args) == 0 || flags.GUIMode {
		return runGUIMode(flags)
	}

	proc := processor.NewProcessor(flags, cmd.OutOrStdout())
	proc.SetErrorOutput(cmd.ErrOrStderr())

	reports, err := proc.ProcessBatch(args)
	if err != nil {
		return err
	}

	if len(reports) == 1 && !flags.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", reports[0].Summary())
	}

	return nil
}

// runGUIMode launches the converter window
func runGUIMode(flags *cli.Flags) error {
	app := gui.New(&gui.Config{
		Flags:        flags,
		MirrorStdout: flags.Verbose,
	})
	app.Run()

	return nil
}
