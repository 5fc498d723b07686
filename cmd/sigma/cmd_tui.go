package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"sigmair/cmd/sigma/ui"
	"sigmair/internal/logging"
)

// tuiCmd launches the interactive frame builder
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive frame builder",
	Long: `Type English inputs to translate them into the persisted block list,
reorder and delete blocks, toggle the sorted preview and build the frame.

Keys:
  enter   add the typed input          tab     switch input / list
  j/k     move the cursor              J/K     move the block down / up
  d       delete the block             s       toggle sort preview
  b       build the frame              y       copy the frame
  c       clear the list               q       quit`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	c := activeConfig()
	model := ui.NewBuilder(commandContext(cmd), s, activeTranslator(), ui.ThemeByName(c.UI.Theme), c.UI.SortPreview)
	logging.UIDebug("starting frame builder on %s", s.Path())

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
