package api

import (
	"basket-rules/adapters/storage"
	"basket-rules/core/engine"
)

// RuleSetFromResult serves the rules of a fresh run.
func RuleSetFromResult(result *engine.Result) *RuleSet {
	return &RuleSet{
		ID:        result.Metadata.RunID,
		Source:    result.Metadata.Source,
		CreatedAt: result.Metadata.StartedAt,
		Rules:     result.Rules,
	}
}

// RuleSetFromSnapshot serves the rules of a stored snapshot.
func RuleSetFromSnapshot(snap *storage.Snapshot) *RuleSet {
	return &RuleSet{
		ID:        snap.ID,
		Source:    snap.Source,
		CreatedAt: snap.CreatedAt,
		Rules:     snap.Rules,
	}
}
