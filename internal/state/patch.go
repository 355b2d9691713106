package state

import (
	"encoding/json"
	"fmt"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/domain"
	jsonpatch "github.com/evanphx/json-patch"
)

// PatchKind selects how a patch body is interpreted.
type PatchKind int

const (
	// MergePatch is an RFC 7386 JSON merge patch.
	MergePatch PatchKind = iota
	// JSONPatch is an RFC 6902 list of operations.
	JSONPatch
)

// Patch applies body to the JSON form of the document. Either the whole patch
// applies or the document is left untouched.
func (s *Store) Patch(body []byte, kind PatchKind) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := json.Marshal(s.doc)
	if err != nil {
		return domain.Document{}, fmt.Errorf("encode document: %w", err)
	}

	var patched []byte
	switch kind {
	case MergePatch:
		patched, err = jsonpatch.MergePatch(current, body)
	case JSONPatch:
		var ops jsonpatch.Patch
		ops, err = jsonpatch.DecodePatch(body)
		if err == nil {
			patched, err = ops.Apply(current)
		}
	default:
		err = fmt.Errorf("unknown patch kind %d", kind)
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", domain.ErrInvalidPatch, err)
	}

	var next domain.Document
	if err := json.Unmarshal(patched, &next); err != nil {
		return domain.Document{}, fmt.Errorf("%w: result is not a document: %v", domain.ErrInvalidPatch, err)
	}

	s.doc = next
	return s.commitLocked("patch"), nil
}
