package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sigmair/internal/sigma"
)

var (
	checkpointEntries = map[string]*[]string{}
	reasoningSettings = map[string]*string{}
)

// checkpointCmd prints an SΣ checkpoint block
var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Print an SΣ checkpoint block",
	Long: `Records decisions as a checkpoint meta block. Values are slugged.

Example:
  sigma checkpoint --decided "microservices architecture" --locked kubernetes
  [[SΣ|decided:microservices-architecture,locked:kubernetes|!checkpoint]]`,
	RunE: runCheckpoint,
}

// reasoningCmd prints an IΣ reasoning-mode block
var reasoningCmd = &cobra.Command{
	Use:   "reasoning",
	Short: "Print an IΣ reasoning-mode block",
	Long: `Pins how reasoning is carried out.

Example:
  sigma reasoning --mode latent --memory checkpoint-only
  [[IΣ|memory:checkpoint-only,mode:latent|!enforced]]`,
	RunE: runReasoning,
}

func init() {
	for _, key := range []string{sigma.CheckpointDecided, sigma.CheckpointAssumed, sigma.CheckpointDeferred, sigma.CheckpointLocked} {
		v := new([]string)
		checkpointEntries[key] = v
		checkpointCmd.Flags().StringArrayVar(v, key, nil, fmt.Sprintf("Record a %s value (repeatable)", key))
	}
	for _, key := range []string{sigma.ReasoningMode, sigma.ReasoningMemory, sigma.ReasoningExpansion, sigma.ReasoningResolution, sigma.ReasoningScope} {
		v := new(string)
		reasoningSettings[key] = v
		reasoningCmd.Flags().StringVar(v, key, "", fmt.Sprintf("Set reasoning %s", key))
	}
}

func runCheckpoint(cmd *cobra.Command, args []string) error {
	entries := make(map[string][]string)
	for key, v := range checkpointEntries {
		if len(*v) > 0 {
			entries[key] = *v
		}
	}
	if len(entries) == 0 {
		return fmt.Errorf("nothing to record: pass --decided, --assumed, --deferred or --locked")
	}
	return printMeta(sigma.Checkpoint(entries))
}

func runReasoning(cmd *cobra.Command, args []string) error {
	settings := make(map[string]string)
	for key, v := range reasoningSettings {
		if *v != "" {
			settings[key] = *v
		}
	}
	if len(settings) == 0 {
		return fmt.Errorf("nothing to set: pass at least one of --mode, --memory, --expansion, --resolution, --scope")
	}
	return printMeta(sigma.ReasoningModeBlock(settings))
}

func printMeta(b sigma.Block) error {
	if res := sigma.Validate(b); !res.Valid {
		return fmt.Errorf("invalid meta block: %v", res.Errors)
	}
	fmt.Println(sigma.NormalizeBlock(b))
	return nil
}
