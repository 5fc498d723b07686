package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"sigmair/cmd/sigma/ui"
	"sigmair/internal/catalog"
	"sigmair/internal/logging"
)

var (
	templatesCategory string
	templatesRaw      bool
)

// templatesCmd browses the example template catalog
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Browse example Σ-IR templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates, optionally by category",
	RunE:  runTemplatesList,
}

var templatesSearchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search templates by name, description, input, output or use case",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTemplatesSearch,
}

var templatesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesShow,
}

func init() {
	templatesListCmd.Flags().StringVar(&templatesCategory, "category", "", "Only list this category")
	templatesShowCmd.Flags().BoolVar(&templatesRaw, "raw", false, "Print Markdown without rendering")

	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesSearchCmd)
	templatesCmd.AddCommand(templatesShowCmd)
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Default()
	if err != nil {
		return err
	}

	categories := cat.Categories()
	if templatesCategory != "" {
		if len(cat.ByCategory(templatesCategory)) == 0 {
			return fmt.Errorf("unknown category %q (valid: %s)", templatesCategory, strings.Join(categories, ", "))
		}
		categories = []string{templatesCategory}
	}

	styles := ui.DefaultStyles()
	for _, c := range categories {
		table := ui.NewSimpleTable(c, []string{"ID", "Name", "Output"})
		for _, t := range cat.ByCategory(c) {
			table.AddRow(t.ID, t.Name, t.Output)
		}
		fmt.Println(table.View(styles))
		fmt.Println()
	}
	return nil
}

func runTemplatesSearch(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Default()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	matches := cat.Search(query)
	logging.CatalogDebug("search %q matched %d templates", query, len(matches))
	if len(matches) == 0 {
		fmt.Printf("No templates match %q\n", query)
		return nil
	}

	table := ui.NewSimpleTable(fmt.Sprintf("%d matches for %q", len(matches), query), []string{"ID", "Category", "Name"})
	for _, t := range matches {
		table.AddRow(t.ID, t.Category, t.Name)
	}
	fmt.Println(table.View(ui.DefaultStyles()))
	return nil
}

func runTemplatesShow(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Default()
	if err != nil {
		return err
	}
	t, err := cat.ByID(args[0])
	if err != nil {
		return err
	}
	return printMarkdown(t.Markdown(), templatesRaw)
}

// printMarkdown renders md for the configured theme, or prints it as is.
func printMarkdown(md string, raw bool) error {
	if raw {
		fmt.Print(md)
		return nil
	}

	var renderer *glamour.TermRenderer
	var err error
	if activeConfig().UI.IsDark() {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	} else {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(80),
		)
	}
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	fmt.Print(out)
	return nil
}
