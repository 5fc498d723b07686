package main

import (
	"github.com/spf13/cobra"

	"sigmair/internal/config"
	"sigmair/internal/sigma"
)

var grammarRaw bool

// grammarCmd prints the Σ-IR grammar reference
var grammarCmd = &cobra.Command{
	Use:   "grammar",
	Short: "Show the Σ-IR grammar reference",
	Long: `Prints the primitive families, modifier symbols, error taxonomy and
canonical forms. Primitive descriptions follow the active lexicon.`,
	RunE: runGrammar,
}

func init() {
	grammarCmd.Flags().BoolVar(&grammarRaw, "raw", false, "Print Markdown without rendering")
}

func runGrammar(cmd *cobra.Command, args []string) error {
	c := activeConfig()
	lex, err := config.LoadLexicon(c.Lexicon.Path, c.Lexicon.Mode)
	if err != nil {
		return err
	}
	return printMarkdown(sigma.GrammarMarkdown(lex), grammarRaw)
}
