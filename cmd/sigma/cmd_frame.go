package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sigmair/cmd/sigma/ui"
	"sigmair/internal/logging"
	"sigmair/internal/sigma"
	"sigmair/internal/watch"
)

var (
	frameFile     string
	frameJSON     bool
	frameWatch    bool
	frameDebounce time.Duration
)

// frameCmd groups frame assembly commands
var frameCmd = &cobra.Command{
	Use:   "frame",
	Short: "Assemble Σ-IR blocks into a Σ-frame",
	Long: `Builds a Σ-frame from block strings: blank entries are dropped, the rest
are trimmed, sorted byte-wise and deduplicated, then wrapped in the frame
header and footer.

Blocks come from the arguments, from --file (one per line) or from stdin.`,
}

var frameBuildCmd = &cobra.Command{
	Use:   "build [block...]",
	Short: "Print the Σ-frame for a list of blocks",
	RunE:  runFrameBuild,
}

var framePreviewCmd = &cobra.Command{
	Use:   "preview [block...]",
	Short: "Show where each block lands and which duplicates are dropped",
	RunE:  runFramePreview,
}

func init() {
	for _, c := range []*cobra.Command{frameBuildCmd, framePreviewCmd} {
		c.Flags().StringVarP(&frameFile, "file", "f", "", "Read blocks from a file, one per line")
		c.Flags().BoolVar(&frameJSON, "json", false, "Print JSON")
		c.Flags().BoolVarP(&frameWatch, "watch", "w", false, "Rebuild whenever --file changes")
		c.Flags().DurationVar(&frameDebounce, "debounce", watch.DefaultDebounce, "Quiet period before a rebuild in --watch mode")
	}
	frameCmd.AddCommand(frameBuildCmd)
	frameCmd.AddCommand(framePreviewCmd)
}

func runFrameBuild(cmd *cobra.Command, args []string) error {
	if frameWatch {
		return watchFrame(cmd, func(u watch.Update) error { return printFrame(u.Frame, u.Blocks) })
	}
	blocks, err := readFrameBlocks(cmd, args)
	if err != nil {
		return err
	}
	timer := logging.StartTimer(logging.CategoryFrame, "BuildFrame")
	frame := sigma.BuildFrame(blocks)
	timer.Stop()
	return printFrame(frame, blocks)
}

func runFramePreview(cmd *cobra.Command, args []string) error {
	if frameWatch {
		return watchFrame(cmd, func(u watch.Update) error { return printPreview(u.Preview) })
	}
	blocks, err := readFrameBlocks(cmd, args)
	if err != nil {
		return err
	}
	return printPreview(sigma.PreviewFrameOrder(blocks))
}

// readFrameBlocks picks the block source: args, then --file, then stdin.
func readFrameBlocks(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		if frameFile != "" {
			return nil, fmt.Errorf("pass blocks or --file, not both")
		}
		return args, nil
	}

	var r io.Reader = cmd.InOrStdin()
	if frameFile != "" {
		f, err := os.Open(frameFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", frameFile, err)
		}
		defer f.Close()
		r = f
	}
	return watch.ReadBlocks(r)
}

func printFrame(frame string, blocks []string) error {
	if frameJSON {
		return printJSON(struct {
			Frame  string   `json:"frame"`
			Blocks []string `json:"blocks"`
		}{frame, blocks})
	}
	fmt.Println(frame)
	return nil
}

func printPreview(entries []sigma.PreviewEntry) error {
	if frameJSON {
		if entries == nil {
			entries = []sigma.PreviewEntry{}
		}
		return printJSON(entries)
	}
	if len(entries) == 0 {
		fmt.Println("No blocks.")
		return nil
	}

	table := ui.NewSimpleTable("Frame order", []string{"#", "From", "Block", "Note"})
	dropped := 0
	for _, e := range entries {
		note := ""
		switch {
		case e.IsDuplicate:
			note = "duplicate, dropped"
			dropped++
		case e.Moved:
			note = "moved"
		}
		table.AddRow(fmt.Sprint(e.SortedIndex+1), fmt.Sprint(e.OriginalIndex+1), e.Text, note)
	}
	fmt.Println(table.View(ui.DefaultStyles()))
	fmt.Printf("%d blocks, %d in frame\n", len(entries), len(entries)-dropped)
	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// watchFrame rebuilds from --file on every change until interrupted.
func watchFrame(cmd *cobra.Command, show func(watch.Update) error) error {
	if frameFile == "" {
		return fmt.Errorf("--watch requires --file")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fw, err := watch.NewFrameWatcher(frameFile, frameDebounce, func(u watch.Update) {
		if u.Err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", u.Err)
			return
		}
		fmt.Printf("--- %s (%d blocks) ---\n", time.Now().Format("15:04:05"), len(u.Blocks))
		if err := show(u); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	})
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}
	defer fw.Stop()

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", frameFile)
	<-ctx.Done()

	stats := fw.Stats()
	logging.Watch("Watch ended: %d events, %d rebuilds, %d errors", stats.Events, stats.Rebuilds, stats.Errors)
	return nil
}
