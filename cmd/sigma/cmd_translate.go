package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"sigmair/internal/logging"
	"sigmair/internal/sigma"
	"sigmair/internal/watch"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

var (
	translateFile string
	translateJSON bool
	translateCopy bool
)

// translateCmd translates English text into a Σ-IR block
var translateCmd = &cobra.Command{
	Use:   "translate [text...]",
	Short: "Translate English text into a Σ-IR block",
	Long: `Translates the joined arguments into one canonical Σ-IR block.

With --file, every non-blank line is translated on its own (concurrently,
output order follows the file). Error blocks are results: the command still
exits 0 when a translation fails.

Examples:
  sigma translate "Design a language specification"
  sigma translate --json "Execute the script"
  sigma translate --file tasks.txt`,
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVarP(&translateFile, "file", "f", "", "Translate each line of a file")
	translateCmd.Flags().BoolVar(&translateJSON, "json", false, "Print the full result as JSON")
	translateCmd.Flags().BoolVar(&translateCopy, "copy", false, "Copy the output to the clipboard")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	var inputs []string
	switch {
	case translateFile != "":
		if len(args) > 0 {
			return fmt.Errorf("pass text or --file, not both")
		}
		f, err := os.Open(translateFile)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", translateFile, err)
		}
		lines, err := watch.ReadBlocks(f)
		f.Close()
		if err != nil {
			return err
		}
		for _, line := range lines {
			if strings.TrimSpace(line) != "" {
				inputs = append(inputs, line)
			}
		}
	case len(args) > 0:
		inputs = []string{strings.Join(args, " ")}
	default:
		return fmt.Errorf("nothing to translate: pass text or --file")
	}

	timer := logging.StartTimer(logging.CategoryTranslate, "translate")
	results, err := sigma.TranslateBatch(commandContext(cmd), activeTranslator(), inputs, activeConfig().Translate.BatchWorkers)
	if err != nil {
		return fmt.Errorf("translation cancelled: %w", err)
	}
	elapsed := timer.Stop()

	failed := 0
	outputs := make([]string, len(results))
	for i, r := range results {
		outputs[i] = r.Output
		if !r.Success {
			failed++
		}
	}
	logging.Translate("Translated %d inputs (%d errors) in %v", len(results), failed, elapsed)

	if translateJSON {
		var v interface{} = results
		if len(results) == 1 {
			v = results[0]
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Println(string(data))
	} else {
		for _, out := range outputs {
			fmt.Println(out)
		}
	}

	if translateCopy {
		if err := clipboardWriteAll(strings.Join(outputs, "\n")); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Copied to clipboard")
	}
	return nil
}
