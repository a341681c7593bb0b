package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/translate"
)

var compileCmd = &cobra.Command{
	Use:   "compile program.gob",
	Short: "translate an IR-A program into a binary IR-R package.",
	Long: `Translate a gob-encoded ast.Program (IR-A) into the IR-R program the
evaluator runs, writing the result as a binary package (spec section 6,
"IR-R output (to code-gen back-end)").`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		program, err := ReadASTProgram(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		cfg := compilationConfig(cmd)

		ramProgram, err := translate.TranslateProgram(program, cfg)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		output := GetString(cmd, "output")
		if err := WriteRAMProgram(output, ramProgram); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		log.WithField("output", output).Info("wrote binary package")
	},
}

// compilationConfig builds a translate.CompilationConfig from this
// command's --provenance and --synthesize-witnesses flags (SPEC_FULL.md
// section A, "Configuration").
func compilationConfig(cmd *cobra.Command) translate.CompilationConfig {
	var cfg translate.CompilationConfig

	switch GetString(cmd, "provenance") {
	case "naive":
		cfg.Provenance = translate.ProvenanceNaive
	case "subtree-heights":
		cfg.Provenance = translate.ProvenanceSubtreeHeights
	default:
		cfg.Provenance = translate.ProvenanceOff
	}

	cfg.SynthesizeWitnesses = GetFlag(cmd, "synthesize-witnesses")
	cfg.Logger = log.StandardLogger()

	return cfg
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringP("output", "o", "a.ramgob", "binary package output path")
	compileCmd.Flags().String("provenance", "off", "provenance mode: off, naive, subtree-heights")
	compileCmd.Flags().Bool("synthesize-witnesses", false, "relax the groundedness invariant by synthesising witnesses")
}
