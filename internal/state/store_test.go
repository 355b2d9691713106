package state

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/adapter/metrics"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(epoch)
	return NewStore(clock, nil), clock
}

func TestSetTaskState_CheckThenUncheckDeletesKey(t *testing.T) {
	s, _ := newTestStore(t)

	doc := s.SetTaskState("north-it", "t1", true)
	assert.True(t, doc.FabricStates["north-it"]["t1"])
	assert.Equal(t, "2025-06-01T12:00:00Z", doc.FabricCompletionDates["north-it"]["t1"])

	doc = s.SetTaskState("north-it", "t1", false)
	require.Contains(t, doc.FabricStates, "north-it")
	assert.NotContains(t, doc.FabricStates["north-it"], "t1")
	assert.NotContains(t, doc.FabricCompletionDates["north-it"], "t1")

	assert.Equal(t, doc, s.GetAll())
}

func TestSetTaskNotes(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		notes   string
		present bool
	}{
		{name: "stores text", notes: "cabled", present: true},
		{name: "keeps surrounding whitespace", notes: "  cabled ", present: true},
		{name: "empty without existing note", notes: ""},
		{name: "whitespace clears existing", initial: "old", notes: " \t\n"},
		{name: "empty clears existing", initial: "old", notes: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			if tt.initial != "" {
				s.SetTaskNotes("f", "t", tt.initial)
			}

			doc := s.SetTaskNotes("f", "t", tt.notes)

			note, ok := doc.FabricNotes["f"]["t"]
			_, dated := doc.FabricNoteModificationDates["f"]["t"]
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.present, dated)
			if tt.present {
				assert.Equal(t, tt.notes, note)
			}
		})
	}
}

func TestSetTaskCategory(t *testing.T) {
	tests := []struct {
		category string
		present  bool
	}{
		{category: "High", present: true},
		{category: domain.NoPriority},
		{category: ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.category), func(t *testing.T) {
			s, _ := newTestStore(t)
			s.SetTaskCategory("f", "t", "Low")

			doc := s.SetTaskCategory("f", "t", tt.category)

			got, ok := doc.TaskCategories["f"]["t"]
			assert.Equal(t, tt.present, ok)
			if tt.present {
				assert.Equal(t, tt.category, got)
			}
		})
	}
}

func TestSetTaskKanbanStatus(t *testing.T) {
	s, _ := newTestStore(t)

	doc := s.SetTaskKanbanStatus("f", "t", "in-progress")
	assert.Equal(t, "in-progress", doc.TaskKanbanStatus["f"]["t"])

	doc = s.SetTaskKanbanStatus("f", "t", " ")
	assert.NotContains(t, doc.TaskKanbanStatus["f"], "t")
}

func TestSetCurrentFabric(t *testing.T) {
	s, _ := newTestStore(t)

	doc := s.SetCurrentFabric("south-ot")
	require.NotNil(t, doc.CurrentFabric)
	assert.Equal(t, "south-ot", *doc.CurrentFabric)

	doc = s.SetCurrentFabric("north-it")
	assert.Equal(t, "north-it", *doc.CurrentFabric)
}

func TestReplaceAll_StoresDetachedCopy(t *testing.T) {
	s, _ := newTestStore(t)

	incoming := domain.NewDocument()
	incoming.FabricStates.Set("f", "t", true)

	doc := s.ReplaceAll(incoming)
	incoming.FabricStates.Set("f", "t2", true)

	assert.Equal(t, map[string]bool{"t": true}, doc.FabricStates["f"])
	assert.Equal(t, map[string]bool{"t": true}, s.GetAll().FabricStates["f"])
	require.NotNil(t, doc.LastSaved)
	assert.Equal(t, epoch, *doc.LastSaved)
}

func TestReplaceAll_NormalizesMissingCollections(t *testing.T) {
	s, _ := newTestStore(t)

	doc := s.ReplaceAll(domain.Document{})

	assert.NotNil(t, doc.FabricStates)
	assert.NotNil(t, doc.TaskComments)
	assert.NotNil(t, doc.Notifications)
}

func TestGetAll_SnapshotIsolation(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetTaskState("f", "t", true)
	s.SetTestCaseState("f", "tc", json.RawMessage(`{"status":"pass"}`))

	snap := s.GetAll()
	snap.FabricStates["f"]["t"] = false
	snap.FabricStates["g"] = map[string]bool{"x": true}
	snap.TestCaseStates["f"]["tc"][2] = 'X'
	*snap.LastSaved = time.Time{}

	again := s.GetAll()
	assert.True(t, again.FabricStates["f"]["t"])
	assert.NotContains(t, again.FabricStates, "g")
	assert.JSONEq(t, `{"status":"pass"}`, string(again.TestCaseStates["f"]["tc"]))
	assert.False(t, again.LastSaved.IsZero())
}

func TestLastSaved_StrictlyAdvances(t *testing.T) {
	s, clock := newTestStore(t)

	first := *s.SetTaskState("f", "a", true).LastSaved
	second := *s.SetTaskState("f", "b", true).LastSaved
	assert.True(t, second.After(first), "same clock tick must still advance")

	clock.Advance(time.Second)
	third := *s.SetCurrentFabric("f").LastSaved
	assert.Equal(t, epoch.Add(time.Second), third)
}

func TestGetAll_DoesNotStamp(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Nil(t, s.GetAll().LastSaved)
}

func TestSetTaskState_ConcurrentDistinctTasks(t *testing.T) {
	s := NewStore(clockwork.NewRealClock(), nil)
	const n = 200

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.SetTaskState("f", fmt.Sprintf("t%d", i), true)
		}()
	}
	wg.Wait()

	assert.Len(t, s.GetAll().FabricStates["f"], n)
}

func TestStore_RecordsMutationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewStoreMetrics(reg)
	s := NewStore(clockwork.NewFakeClockAt(epoch), m)

	s.SetTaskState("f", "t", true)
	s.SetTaskState("f", "t", false)
	s.GetAll()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MutationsTotal.WithLabelValues("set_task_state")))
}
