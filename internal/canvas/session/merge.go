package session

import (
	"encoding/json"
	"sort"
)

// Element is one canvas element as seen by the merge. Data is opaque
// scene content; the merge only reads the version metadata.
type Element struct {
	ID       string          `json:"id"`
	Version  int64           `json:"version"`
	EditedBy string          `json:"edited_by"`
	Data     json.RawMessage `json:"data"`
}

// MergeElements reconciles remote element state into local state with
// last-write-wins semantics: the higher version counter wins, and a
// version tie goes to the lexicographically greater client id. The result
// is sorted by element id, so merging the same sets in any order yields
// the same slice. This is a deliberate simplification over operational
// transforms; concurrent edits to one element lose one side.
func MergeElements(local, remote []Element) []Element {
	merged := make(map[string]Element, len(local)+len(remote))
	for _, element := range local {
		merged[element.ID] = element
	}
	for _, element := range remote {
		existing, ok := merged[element.ID]
		if !ok || wins(element, existing) {
			merged[element.ID] = element
		}
	}

	out := make([]Element, 0, len(merged))
	for _, element := range merged {
		out = append(out, element)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// wins reports whether candidate supersedes existing.
func wins(candidate, existing Element) bool {
	if candidate.Version != existing.Version {
		return candidate.Version > existing.Version
	}
	return candidate.EditedBy > existing.EditedBy
}
