package sigma

import (
	"sort"
	"strings"
)

// Checkpoint keys recorded in SΣ blocks.
const (
	CheckpointAssumed  = "assumed"
	CheckpointDecided  = "decided"
	CheckpointDeferred = "deferred"
	CheckpointLocked   = "locked"
)

// Reasoning-mode keys recorded in IΣ blocks.
const (
	ReasoningExpansion  = "expansion"
	ReasoningMemory     = "memory"
	ReasoningMode       = "mode"
	ReasoningResolution = "resolution"
	ReasoningScope      = "scope"
)

// Checkpoint builds an SΣ block from decision categories to values, e.g.
// {"decided": {"microservices architecture"}} becomes the payload term
// "decided:microservices-architecture". Keys outside the checkpoint set
// are ignored.
func Checkpoint(entries map[string][]string) Block {
	return metaBlock(MetaCheckpoint, "checkpoint", entries, []string{
		CheckpointAssumed, CheckpointDecided, CheckpointDeferred, CheckpointLocked,
	}, true)
}

// ReasoningModeBlock builds an IΣ block that pins how reasoning should be
// carried out, e.g. {"mode": "latent", "memory": "checkpoint-only"}. Values
// keep their punctuation so scopes like "Σ+domain" survive; only whitespace
// is folded into hyphens.
func ReasoningModeBlock(settings map[string]string) Block {
	entries := make(map[string][]string, len(settings))
	for k, v := range settings {
		entries[k] = []string{v}
	}
	return metaBlock(MetaReasoning, "enforced", entries, []string{
		ReasoningExpansion, ReasoningMemory, ReasoningMode, ReasoningResolution, ReasoningScope,
	}, false)
}

func metaBlock(code Meta, marker string, entries map[string][]string, keys []string, slug bool) Block {
	var payload []string
	for _, key := range keys {
		values := entries[key]
		sorted := append([]string(nil), values...)
		sort.Strings(sorted)
		for _, v := range sorted {
			if slug {
				v = Slug(v)
			} else {
				v = strings.Join(strings.Fields(v), "-")
			}
			if v == "" {
				continue
			}
			payload = append(payload, key+":"+v)
		}
	}
	return Block{
		Header:    MetaHeader{Code: code},
		Payload:   payload,
		Modifiers: Modifiers{HardConstraints: []string{marker}},
	}
}
