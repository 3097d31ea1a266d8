// Package advice - Static advisory knowledge base for tomato conditions.
package advice

import (
	"strings"

	"github.com/makoyyylouie/tomato-ai/labels"
)

// Entry holds the advisory text for one condition.
type Entry struct {
	Cause      string `json:"cause"`
	Effect     string `json:"effect"`
	Pest       string `json:"pest"`
	Prevention string `json:"prevention"`
}

// Base is a knowledge base keyed by condition name. Shipped bases are keyed
// by canonical tag; lookups additionally resolve known aliases, so callers
// may probe with any spelling.
type Base map[string]Entry

// get probes a single key: first verbatim, then through the alias table.
func (b Base) get(key string) (Entry, bool) {
	if e, ok := b[key]; ok {
		return e, true
	}
	if tag, ok := labels.Resolve(key); ok {
		if e, ok := b[string(tag)]; ok {
			return e, true
		}
	}
	return Entry{}, false
}

// Lookup resolves a detection label to its advisory entry.
//
// The resolution order is layered because upstream label strings are
// inconsistently formatted across model versions. First hit wins:
// exact raw label, normalized key, lowercased raw, lowercased raw with
// spaces as underscores, re-normalized raw. The later steps are partially
// redundant with the earlier ones; the precedence is part of the contract
// and must not be collapsed.
//
// Arguments:
// - raw: The label exactly as the model emitted it.
// - normalized: The pre-computed normalized key for the label.
// - base: The knowledge base to consult (fruit or leaf).
//
// Returns:
// - The matching entry and true, or the zero entry and false.
func Lookup(raw, normalized string, base Base) (Entry, bool) {
	if e, ok := base.get(raw); ok {
		return e, true
	}
	if e, ok := base.get(normalized); ok {
		return e, true
	}
	if e, ok := base.get(strings.ToLower(raw)); ok {
		return e, true
	}
	if e, ok := base.get(strings.ReplaceAll(strings.ToLower(raw), " ", "_")); ok {
		return e, true
	}
	if e, ok := base.get(labels.Normalize(raw)); ok {
		return e, true
	}
	return Entry{}, false
}
