// Package cmd wires pkg/datalog's translate/eval/profile/explain
// capabilities to a cobra-based command line, grounded on go-corset's
// pkg/cmd/root.go + cmd/main.go split: a thin cmd/souffle/main.go calls
// cmd.Execute(), and every subcommand lives here as a package-level
// *cobra.Command registered from an init() function.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled in when building with make, but not when installing
// via "go install" (matches go-corset's pkg/cmd/root.go convention).
var Version string

var rootCmd = &cobra.Command{
	Use:   "souffle",
	Short: "A Datalog compiler and evaluator.",
	Long:  "A compiler and evaluator for a Soufflé-style Datalog dialect.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("souffle ")

			if Version != "" {
				fmt.Print(Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Print(info.Main.Version)
			} else {
				fmt.Print("(unknown version)")
			}

			fmt.Println()
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().StringP("fact-dir", "F", ".", "directory Load/Store directives resolve relative filenames against")

	cobra.OnInitialize(func() {
		if v, err := rootCmd.PersistentFlags().GetBool("verbose"); err == nil && v {
			log.SetLevel(log.DebugLevel)
		}
	})
}
