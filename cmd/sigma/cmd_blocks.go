package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sigmair/cmd/sigma/ui"
	"sigmair/internal/sigma"
	"sigmair/internal/store"
)

// blocksCmd manages the persisted block list
var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Manage the persisted frame-builder block list",
	Long: `The block list is an ordered set of translated inputs stored in SQLite
(store.database_path, or --db). Blocks are addressed by their 1-based list
position or by a unique prefix of their id.

Examples:
  sigma blocks add "Design a language specification"
  sigma blocks up 2
  sigma blocks frame`,
}

var blocksAddCmd = &cobra.Command{
	Use:   "add [text...]",
	Short: "Translate text and append the block",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBlocksAdd,
}

var blocksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List blocks in order",
	RunE:  runBlocksList,
}

var blocksRemoveCmd = &cobra.Command{
	Use:   "remove [index|id]",
	Short: "Remove a block",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlocksRemove,
}

var blocksUpCmd = &cobra.Command{
	Use:   "up [index|id]",
	Short: "Move a block one place up",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlocksUp,
}

var blocksDownCmd = &cobra.Command{
	Use:   "down [index|id]",
	Short: "Move a block one place down",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlocksDown,
}

var blocksClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every block",
	RunE:  runBlocksClear,
}

var blocksFrameCmd = &cobra.Command{
	Use:   "frame",
	Short: "Build the Σ-frame from the block list",
	RunE:  runBlocksFrame,
}

var blocksPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview the frame order of the block list",
	RunE:  runBlocksPreview,
}

var blocksCopy bool

func init() {
	blocksFrameCmd.Flags().BoolVar(&blocksCopy, "copy", false, "Copy the frame to the clipboard")

	blocksCmd.AddCommand(blocksAddCmd)
	blocksCmd.AddCommand(blocksListCmd)
	blocksCmd.AddCommand(blocksRemoveCmd)
	blocksCmd.AddCommand(blocksUpCmd)
	blocksCmd.AddCommand(blocksDownCmd)
	blocksCmd.AddCommand(blocksClearCmd)
	blocksCmd.AddCommand(blocksFrameCmd)
	blocksCmd.AddCommand(blocksPreviewCmd)
}

func openStore() (*store.BlockStore, error) {
	return store.NewBlockStore(activeConfig().Store.DatabasePath, activeTranslator())
}

// withStore opens the block list for the duration of fn.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, s *store.BlockStore) error) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(commandContext(cmd), s)
}

func runBlocksAdd(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.BlockStore) error {
		b, err := s.Add(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Printf("Added %s %s\n", b.ID[:8], b.Output)
		logger.Debug("block added", zap.String("id", b.ID), zap.Int("position", b.Position))
		return nil
	})
}

func runBlocksList(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.BlockStore) error {
		blocks, err := s.List(ctx)
		if err != nil {
			return err
		}
		if len(blocks) == 0 {
			fmt.Println("No blocks. Add one with: sigma blocks add <text>")
			return nil
		}

		table := ui.NewSimpleTable(fmt.Sprintf("Blocks (%s)", s.Path()), []string{"#", "ID", "Output", "Input"})
		for i, b := range blocks {
			output := b.Output
			if b.IsError {
				output += " (error)"
			}
			table.AddRow(fmt.Sprint(i+1), b.ID[:8], output, b.Input)
		}
		fmt.Println(table.View(ui.DefaultStyles()))
		return nil
	})
}

func runBlocksRemove(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.BlockStore) error {
		id, err := resolveBlock(ctx, s, args[0])
		if err != nil {
			return err
		}
		if err := s.Remove(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", id[:8])
		return nil
	})
}

func runBlocksUp(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.BlockStore) error {
		id, err := resolveBlock(ctx, s, args[0])
		if err != nil {
			return err
		}
		if err := s.MoveUp(ctx, id); err != nil {
			return err
		}
		return printOutputs(ctx, s)
	})
}

func runBlocksDown(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.BlockStore) error {
		id, err := resolveBlock(ctx, s, args[0])
		if err != nil {
			return err
		}
		if err := s.MoveDown(ctx, id); err != nil {
			return err
		}
		return printOutputs(ctx, s)
	})
}

func runBlocksClear(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.BlockStore) error {
		n, err := s.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Cleared %d blocks\n", n)
		return nil
	})
}

func runBlocksFrame(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.BlockStore) error {
		outputs, err := s.Outputs(ctx)
		if err != nil {
			return err
		}
		frame := sigma.BuildFrame(outputs)
		fmt.Println(frame)
		if blocksCopy {
			if err := clipboardWriteAll(frame); err != nil {
				return fmt.Errorf("failed to copy to clipboard: %w", err)
			}
		}
		return nil
	})
}

func runBlocksPreview(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.BlockStore) error {
		outputs, err := s.Outputs(ctx)
		if err != nil {
			return err
		}
		return printPreview(sigma.PreviewFrameOrder(outputs))
	})
}

// resolveBlock accepts a 1-based list index or an id prefix.
func resolveBlock(ctx context.Context, s *store.BlockStore, ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		blocks, err := s.List(ctx)
		if err != nil {
			return "", err
		}
		if n >= 1 && n <= len(blocks) {
			return blocks[n-1].ID, nil
		}
		// Fall through: short numeric strings can also be id prefixes.
	}

	id, err := s.Resolve(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("no block at %q: %w", ref, err)
	}
	return id, err
}

func printOutputs(ctx context.Context, s *store.BlockStore) error {
	outputs, err := s.Outputs(ctx)
	if err != nil {
		return err
	}
	for i, out := range outputs {
		fmt.Printf("%d. %s\n", i+1, out)
	}
	return nil
}
