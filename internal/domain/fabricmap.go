package domain

import (
	"bytes"
	"encoding/json"
)

// FabricMap is a two-level mapping fabric-id → task-id → V.
// Sub-maps are created lazily; a missing fabric means "no overrides recorded".
type FabricMap[V any] map[string]map[string]V

// Ensure returns the sub-map for fabricID, creating it when absent.
func (m FabricMap[V]) Ensure(fabricID string) map[string]V {
	sub, ok := m[fabricID]
	if !ok || sub == nil {
		sub = make(map[string]V)
		m[fabricID] = sub
	}
	return sub
}

// Set stores v under fabricID/taskID.
func (m FabricMap[V]) Set(fabricID, taskID string, v V) {
	m.Ensure(fabricID)[taskID] = v
}

// Delete removes fabricID/taskID. The fabric sub-map is created if absent
// so that a touched fabric always appears in the document.
func (m FabricMap[V]) Delete(fabricID, taskID string) {
	delete(m.Ensure(fabricID), taskID)
}

// Get returns the value stored under fabricID/taskID.
func (m FabricMap[V]) Get(fabricID, taskID string) (V, bool) {
	v, ok := m[fabricID][taskID]
	return v, ok
}

// Merge copies every task entry of src into m, fabric by fabric.
// Incoming entries win per key; keys only present in m are kept.
func (m FabricMap[V]) Merge(src FabricMap[V], clone func(V) V) {
	for fabricID, incoming := range src {
		sub := m.Ensure(fabricID)
		for taskID, v := range incoming {
			sub[taskID] = clone(v)
		}
	}
}

// Clone returns a deep copy using clone for the leaves.
func (m FabricMap[V]) Clone(clone func(V) V) FabricMap[V] {
	out := make(FabricMap[V], len(m))
	for fabricID, sub := range m {
		dup := make(map[string]V, len(sub))
		for taskID, v := range sub {
			dup[taskID] = clone(v)
		}
		out[fabricID] = dup
	}
	return out
}

// Same returns v unchanged. Used as the leaf clone for immutable values.
func Same[V any](v V) V { return v }

// CloneRaw copies an opaque JSON value.
func CloneRaw(v json.RawMessage) json.RawMessage {
	return bytes.Clone(v)
}

// IsNullRaw reports whether v carries no value (empty or JSON null).
func IsNullRaw(v json.RawMessage) bool {
	trimmed := bytes.TrimSpace(v)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func cloneRawMap(m map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = CloneRaw(v)
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
