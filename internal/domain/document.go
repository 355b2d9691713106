package domain

import (
	"encoding/json"
	"maps"
	"time"
)

// NoPriority is the category label that means "no category recorded".
const NoPriority = "No Priority"

// Document is the complete shared tracker state. JSON names match the browser client.
type Document struct {
	FabricStates                FabricMap[bool]            `json:"fabricStates"`
	FabricNotes                 FabricMap[string]          `json:"fabricNotes"`
	FabricCompletionDates       FabricMap[string]          `json:"fabricCompletionDates"`
	FabricNoteModificationDates FabricMap[string]          `json:"fabricNoteModificationDates"`
	TestCaseStates              FabricMap[json.RawMessage] `json:"testCaseStates"`
	TaskCategories              FabricMap[string]          `json:"taskCategories"`
	TaskKanbanStatus            FabricMap[string]          `json:"taskKanbanStatus"`
	SubChecklists               map[string]json.RawMessage `json:"subChecklists"`
	CurrentFabric               *string                    `json:"currentFabric"`

	Users         map[string]User      `json:"users"`
	CurrentUser   *string              `json:"currentUser"`
	TaskComments  map[string][]Comment `json:"taskComments"`
	Notifications []Notification       `json:"notifications"`
	TaskTemplates []json.RawMessage    `json:"taskTemplates"`

	LastSaved *time.Time `json:"lastSaved"`
}

// NewDocument returns an empty document with every collection allocated.
func NewDocument() Document {
	var d Document
	d.Normalize()
	return d
}

// Normalize allocates any nil collection so that the document serialises
// with empty objects and lists instead of null, and can be written to safely.
func (d *Document) Normalize() {
	if d.FabricStates == nil {
		d.FabricStates = FabricMap[bool]{}
	}
	if d.FabricNotes == nil {
		d.FabricNotes = FabricMap[string]{}
	}
	if d.FabricCompletionDates == nil {
		d.FabricCompletionDates = FabricMap[string]{}
	}
	if d.FabricNoteModificationDates == nil {
		d.FabricNoteModificationDates = FabricMap[string]{}
	}
	if d.TestCaseStates == nil {
		d.TestCaseStates = FabricMap[json.RawMessage]{}
	}
	if d.TaskCategories == nil {
		d.TaskCategories = FabricMap[string]{}
	}
	if d.TaskKanbanStatus == nil {
		d.TaskKanbanStatus = FabricMap[string]{}
	}
	if d.SubChecklists == nil {
		d.SubChecklists = map[string]json.RawMessage{}
	}
	if d.Users == nil {
		d.Users = map[string]User{}
	}
	if d.TaskComments == nil {
		d.TaskComments = map[string][]Comment{}
	}
	if d.Notifications == nil {
		d.Notifications = []Notification{}
	}
	if d.TaskTemplates == nil {
		d.TaskTemplates = []json.RawMessage{}
	}
}

// Clone returns a fully detached deep copy. The result is normalized.
func (d Document) Clone() Document {
	out := Document{
		FabricStates:                d.FabricStates.Clone(Same[bool]),
		FabricNotes:                 d.FabricNotes.Clone(Same[string]),
		FabricCompletionDates:       d.FabricCompletionDates.Clone(Same[string]),
		FabricNoteModificationDates: d.FabricNoteModificationDates.Clone(Same[string]),
		TestCaseStates:              d.TestCaseStates.Clone(CloneRaw),
		TaskCategories:              d.TaskCategories.Clone(Same[string]),
		TaskKanbanStatus:            d.TaskKanbanStatus.Clone(Same[string]),
		SubChecklists:               cloneRawMap(d.SubChecklists),
		CurrentFabric:               clonePtr(d.CurrentFabric),
		Users:                       maps.Clone(d.Users),
		CurrentUser:                 clonePtr(d.CurrentUser),
		TaskComments:                make(map[string][]Comment, len(d.TaskComments)),
		Notifications:               make([]Notification, 0, len(d.Notifications)),
		TaskTemplates:               make([]json.RawMessage, 0, len(d.TaskTemplates)),
		LastSaved:                   clonePtr(d.LastSaved),
	}

	for taskID, comments := range d.TaskComments {
		dup := make([]Comment, len(comments))
		for i, c := range comments {
			dup[i] = c.Clone()
		}
		out.TaskComments[taskID] = dup
	}
	out.Notifications = append(out.Notifications, d.Notifications...)
	for _, t := range d.TaskTemplates {
		out.TaskTemplates = append(out.TaskTemplates, CloneRaw(t))
	}

	out.Normalize()
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
