package state

import (
	"log/slog"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/domain"
)

// Initialize reconciles a client session with the shared document.
//
// When existing is non-nil its per-fabric maps are merged into the document
// (incoming wins per task, server-only tasks survive). Every supplied fabric
// then gets its sub-maps, and every catalogued task gets an explicit false
// baseline on every known fabric. The whole algorithm runs under one lock
// acquisition, so concurrent mutations are never lost in between steps.
//
// Descriptors with an empty id are skipped.
func (s *Store) Initialize(
	fabrics []domain.FabricDescriptor,
	sections []domain.SectionDescriptor,
	existing *domain.Document,
) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := existing == nil
	if !fresh {
		s.mergeLocked(*existing)
	}

	var first string
	for _, f := range fabrics {
		if f.ID == "" {
			continue
		}
		if first == "" {
			first = f.ID
		}
		s.ensureFabricLocked(f.ID, fresh)
	}

	taskIDs := domain.TaskIDs(sections)
	baselined := 0
	for fabricID := range s.doc.FabricStates {
		sub := s.doc.FabricStates.Ensure(fabricID)
		for _, taskID := range taskIDs {
			if _, ok := sub[taskID]; !ok {
				sub[taskID] = false
				baselined++
			}
		}
	}

	if (s.doc.CurrentFabric == nil || *s.doc.CurrentFabric == "") && first != "" {
		s.doc.CurrentFabric = &first
	}

	slog.Debug("Store initialized",
		"merged", !fresh,
		"fabrics", len(fabrics),
		"tasks", len(taskIDs),
		"baselined", baselined)

	return s.commitLocked("initialize")
}

// mergeLocked folds client-held state into the document.
func (s *Store) mergeLocked(in domain.Document) {
	s.doc.Normalize()

	s.doc.FabricStates.Merge(in.FabricStates, domain.Same[bool])
	s.doc.FabricNotes.Merge(in.FabricNotes, domain.Same[string])
	s.doc.FabricCompletionDates.Merge(in.FabricCompletionDates, domain.Same[string])
	s.doc.FabricNoteModificationDates.Merge(in.FabricNoteModificationDates, domain.Same[string])
	s.doc.TaskCategories.Merge(in.TaskCategories, domain.Same[string])
	s.doc.TestCaseStates.Merge(in.TestCaseStates, domain.CloneRaw)

	for fabricID, v := range in.SubChecklists {
		s.doc.SubChecklists[fabricID] = domain.CloneRaw(v)
	}

	if in.CurrentFabric != nil && *in.CurrentFabric != "" {
		current := *in.CurrentFabric
		s.doc.CurrentFabric = &current
	}
}

// ensureFabricLocked creates the sub-maps of a fabric the document has not
// seen yet. The fresh variant also creates the date maps.
func (s *Store) ensureFabricLocked(fabricID string, fresh bool) {
	if _, ok := s.doc.FabricStates[fabricID]; ok {
		return
	}
	s.doc.FabricStates.Ensure(fabricID)
	s.doc.FabricNotes.Ensure(fabricID)
	s.doc.TaskCategories.Ensure(fabricID)
	if fresh {
		s.doc.FabricCompletionDates.Ensure(fabricID)
		s.doc.FabricNoteModificationDates.Ensure(fabricID)
	}
}
