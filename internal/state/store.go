package state

import (
	"strings"
	"sync"
	"time"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/adapter/metrics"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Store serializes all reads and writes of the shared Document.
type Store struct {
	mu      sync.Mutex
	doc     domain.Document
	clock   clockwork.Clock
	metrics *metrics.StoreMetrics
}

// NewStore creates a store holding an empty document.
// storeMetrics may be nil.
func NewStore(clock clockwork.Clock, storeMetrics *metrics.StoreMetrics) *Store {
	return &Store{
		doc:     domain.NewDocument(),
		clock:   clock,
		metrics: storeMetrics,
	}
}

// GetAll returns a deep copy of the current document.
func (s *Store) GetAll() domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// ReplaceAll swaps in a copy of doc wholesale and stamps lastSaved.
func (s *Store) ReplaceAll(doc domain.Document) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = doc.Clone()
	return s.commitLocked("replace_all")
}

// SetTaskState records a completed task, or deletes the entry when unchecked.
// The completion date follows the flag.
func (s *Store) SetTaskState(fabricID, taskID string, checked bool) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setTaskStateLocked(fabricID, taskID, checked)
	return s.commitLocked("set_task_state")
}

func (s *Store) setTaskStateLocked(fabricID, taskID string, checked bool) {
	if checked {
		s.doc.FabricStates.Set(fabricID, taskID, true)
		s.doc.FabricCompletionDates.Set(fabricID, taskID, s.isoNow())
		return
	}
	s.doc.FabricStates.Delete(fabricID, taskID)
	s.doc.FabricCompletionDates.Delete(fabricID, taskID)
}

// SetTaskNotes stores a note. Empty or whitespace-only notes delete the entry.
func (s *Store) SetTaskNotes(fabricID, taskID, notes string) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(notes) == "" {
		s.doc.FabricNotes.Delete(fabricID, taskID)
		s.doc.FabricNoteModificationDates.Delete(fabricID, taskID)
	} else {
		s.doc.FabricNotes.Set(fabricID, taskID, notes)
		s.doc.FabricNoteModificationDates.Set(fabricID, taskID, s.isoNow())
	}
	return s.commitLocked("set_task_notes")
}

// SetTaskCategory stores a category. Empty or NoPriority deletes the entry.
func (s *Store) SetTaskCategory(fabricID, taskID, category string) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category == "" || category == domain.NoPriority {
		s.doc.TaskCategories.Delete(fabricID, taskID)
	} else {
		s.doc.TaskCategories.Set(fabricID, taskID, category)
	}
	return s.commitLocked("set_task_category")
}

// SetTaskKanbanStatus stores a kanban column. Empty deletes the entry.
func (s *Store) SetTaskKanbanStatus(fabricID, taskID, status string) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(status) == "" {
		s.doc.TaskKanbanStatus.Delete(fabricID, taskID)
	} else {
		s.doc.TaskKanbanStatus.Set(fabricID, taskID, status)
	}
	return s.commitLocked("set_task_kanban")
}

// SetCurrentFabric unconditionally selects fabricID.
func (s *Store) SetCurrentFabric(fabricID string) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.CurrentFabric = &fabricID
	return s.commitLocked("set_current_fabric")
}

// commitLocked stamps lastSaved, records the mutation and returns a snapshot.
func (s *Store) commitLocked(op string) domain.Document {
	s.doc.Normalize()
	s.stampLocked()
	if s.metrics != nil {
		s.metrics.MutationsTotal.WithLabelValues(op).Inc()
	}
	return s.doc.Clone()
}

// stampLocked advances lastSaved. Two mutations inside the same clock tick
// still produce strictly increasing values.
func (s *Store) stampLocked() {
	now := s.clock.Now().UTC()
	if last := s.doc.LastSaved; last != nil && !now.After(*last) {
		now = last.Add(time.Nanosecond)
	}
	s.doc.LastSaved = &now
}

func (s *Store) isoNow() string {
	return s.clock.Now().UTC().Format(time.RFC3339)
}
