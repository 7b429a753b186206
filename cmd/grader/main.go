package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	settingsFile string
	verbose      bool
}

var rootCmd = &cobra.Command{
	Use:   "grader",
	Short: "Grade student PDF submissions against a rubric image",
	Long: "Grader runs a directory of student PDF submissions through a\n" +
		"multimodal grading model using a rubric image, producing CSV grade\n" +
		"reports, a flagged-for-review list, and a privacy-safe audit log.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.settingsFile, "config", "", "Path to settings file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(testConnectionCmd)
	rootCmd.Version = version
}

// newLogger builds the root logger. Logs go to stderr so report output and
// shell redirection stay clean.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if rootFlags.verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
