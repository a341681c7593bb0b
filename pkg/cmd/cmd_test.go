package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/translate"
)

// No repo in the example pack tests its cobra command tree directly; this
// exercises compilationConfig's flag-to-struct mapping and the registered
// flag set the way idiomatic cobra tests do, since there is no pack
// precedent to follow more closely.
func TestCompilationConfigMapsProvenanceFlag(t *testing.T) {
	cases := []struct {
		flag string
		want translate.ProvenanceMode
	}{
		{"off", translate.ProvenanceOff},
		{"naive", translate.ProvenanceNaive},
		{"subtree-heights", translate.ProvenanceSubtreeHeights},
		{"bogus", translate.ProvenanceOff},
	}

	for _, c := range cases {
		_ = compileCmd.Flags().Set("provenance", c.flag)

		cfg := compilationConfig(compileCmd)
		assert.Equal(t, c.want, cfg.Provenance, "provenance=%s", c.flag)
	}

	_ = compileCmd.Flags().Set("provenance", "off")
}

func TestCompilationConfigCarriesSynthesizeWitnesses(t *testing.T) {
	_ = compileCmd.Flags().Set("synthesize-witnesses", "true")
	defer compileCmd.Flags().Set("synthesize-witnesses", "false")

	cfg := compilationConfig(compileCmd)
	assert.True(t, cfg.SynthesizeWitnesses)
	assert.NotNil(t, cfg.Logger)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	assert.True(t, names["compile"])
	assert.True(t, names["run"])
}

func TestRunCommandFlagsAreRegistered(t *testing.T) {
	assert.NotNil(t, runCmd.Flags().Lookup("ast"))
	assert.NotNil(t, runCmd.Flags().Lookup("profile"))
	assert.NotNil(t, runCmd.Flags().Lookup("interactive"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("fact-dir"))
}
