package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/eval"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/profile"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/translate"
)

var runCmd = &cobra.Command{
	Use:   "run program",
	Short: "evaluate a program, reading/writing facts under --fact-dir.",
	Long: `Evaluate a program against the Datalog evaluator. program is either a
binary IR-R package written by "souffle compile", or (with --ast) a
gob-encoded IR-A program translated on the fly.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ramProgram, err := loadRAMProgram(cmd, args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		logger := log.StandardLogger()

		var recorder *profile.Recorder

		if GetFlag(cmd, "profile") {
			recorder = profile.NewRecorder()
			recorder.Attach(logger)
		}

		ev := eval.New(ramProgram, eval.Config{
			Logger: logger,
			Dir:    GetString(cmd, "fact-dir"),
		})

		if err := ev.Run(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		if recorder == nil {
			return
		}

		if GetFlag(cmd, "interactive") {
			if err := profile.NewViewer(recorder).Run(); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}

			return
		}

		if err := recorder.WriteReport(os.Stdout); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

// loadRAMProgram resolves path to an executable IR-R program: either a
// binary package written by "souffle compile", or (with --ast) a
// gob-encoded IR-A program translated on the fly, mirroring go-corset's
// compute.go accepting either a precompiled binary or a source-derived
// one depending on flags.
func loadRAMProgram(cmd *cobra.Command, path string) (*ram.Program, error) {
	if !GetFlag(cmd, "ast") {
		return ReadRAMProgram(path)
	}

	program, err := ReadASTProgram(path)
	if err != nil {
		return nil, err
	}

	return translate.TranslateProgram(program, compilationConfig(cmd))
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("ast", false, "treat program as a gob-encoded IR-A program to translate first")
	runCmd.Flags().String("provenance", "off", "provenance mode when --ast is set: off, naive, subtree-heights")
	runCmd.Flags().Bool("synthesize-witnesses", false, "relax the groundedness invariant by synthesising witnesses when --ast is set")
	runCmd.Flags().Bool("profile", false, "record per-relation size and timing counters while running")
	runCmd.Flags().Bool("interactive", false, "page through --profile counters interactively instead of printing a flat report")
}
