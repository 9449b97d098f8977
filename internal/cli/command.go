package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/cacheconv/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cacheconv [file...]",
		Short: "Translation cache format converter",
		Long: `cacheconv rewrites translation cache files into the canonical
"original=translated" format.

The separator of each file (tab, "==>" or "=") is detected from its first
lines. Converted entries are written next to the source file as
<name>_converted<ext>. Files that already use "=" are left untouched.

Examples:
  cacheconv                                 # Launch the converter window (default)
  cacheconv translation_cache.txt           # Convert a single file
  cacheconv --in-place translation_cache.txt # Rewrite the file, keeping a .backup
  cacheconv --dry-run a.txt b.txt           # Report what would be converted`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.cacheconv.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.OutputPath, "output", "o", "", "Output file (single input only, default <name>_converted<ext>)")
	cmd.Flags().BoolVar(&flags.InPlace, "in-place", false, "Rewrite the source file instead of writing <name>_converted<ext>")
	cmd.Flags().BoolVar(&flags.Backup, "backup", flags.Backup, "Keep a .backup copy of the source when using --in-place")
	cmd.Flags().StringVarP(&flags.Separator, "separator", "s", flags.Separator, "Source separator: auto, tab, arrow or equal")
	cmd.Flags().BoolVar(&flags.Dedupe, "dedupe", false, "Merge entries with the same original text, keeping the last translation")
	cmd.Flags().BoolVarP(&flags.DryRun, "dry-run", "n", false, "Report the conversion without writing any file")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Only print errors")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "List every skipped line")
	cmd.Flags().BoolVar(&flags.GUIMode, "gui", false, "Open the converter window even when files are given")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("output.path", cmd.Flags().Lookup("output"))
	viper.BindPFlag("output.in_place", cmd.Flags().Lookup("in-place"))
	viper.BindPFlag("output.backup", cmd.Flags().Lookup("backup"))
	viper.BindPFlag("convert.separator", cmd.Flags().Lookup("separator"))
	viper.BindPFlag("convert.dedupe", cmd.Flags().Lookup("dedupe"))
	viper.BindPFlag("run.dry_run", cmd.Flags().Lookup("dry-run"))
	viper.BindPFlag("run.quiet", cmd.Flags().Lookup("quiet"))
	viper.BindPFlag("run.verbose", cmd.Flags().Lookup("verbose"))
	viper.BindPFlag("gui.enabled", cmd.Flags().Lookup("gui"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".cacheconv" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".cacheconv")
	}

	// Environment variables
	viper.SetEnvPrefix("CACHECONV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// ApplyConfig copies config file and environment values into flags.
// Flags given on the command line take precedence since they are bound
// to the same viper keys.
func ApplyConfig(flags *Flags) {
	if viper.IsSet("output.path") {
		flags.OutputPath = viper.GetString("output.path")
	}
	if viper.IsSet("output.in_place") {
		flags.InPlace = viper.GetBool("output.in_place")
	}
	if viper.IsSet("output.backup") {
		flags.Backup = viper.GetBool("output.backup")
	}
	if viper.IsSet("convert.separator") {
		flags.Separator = viper.GetString("convert.separator")
	}
	if viper.IsSet("convert.dedupe") {
		flags.Dedupe = viper.GetBool("convert.dedupe")
	}
	if viper.IsSet("run.dry_run") {
		flags.DryRun = viper.GetBool("run.dry_run")
	}
	if viper.IsSet("run.quiet") {
		flags.Quiet = viper.GetBool("run.quiet")
	}
	if viper.IsSet("run.verbose") {
		flags.Verbose = viper.GetBool("run.verbose")
	}
	if viper.IsSet("gui.enabled") {
		flags.GUIMode = viper.GetBool("gui.enabled")
	}
}
