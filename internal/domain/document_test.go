package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populated() Document {
	d := NewDocument()
	d.FabricStates.Set("north-it", "t1", true)
	d.FabricNotes.Set("north-it", "t1", "cabled")
	d.TestCaseStates.Set("north-it", "tc-1", json.RawMessage(`{"status":"Pass"}`))
	d.SubChecklists["north-it"] = json.RawMessage(`{"name":"day one","items":[]}`)
	fabric := "north-it"
	d.CurrentFabric = &fabric
	d.Users["u1"] = User{ID: "u1", Name: "Ada"}
	d.TaskComments["t1"] = []Comment{{ID: "c1", TaskID: "t1", UserID: "u1", Content: "hi", Mentions: []string{"u2"}}}
	d.Notifications = append(d.Notifications, Notification{ID: "n1", UserID: "u2"})
	d.TaskTemplates = append(d.TaskTemplates, json.RawMessage(`{"name":"tpl"}`))
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	d.LastSaved = &now
	return d
}

func TestNewDocument_SerialisesEmptyCollections(t *testing.T) {
	data, err := json.Marshal(NewDocument())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"fabricStates": {},
		"fabricNotes": {},
		"fabricCompletionDates": {},
		"fabricNoteModificationDates": {},
		"testCaseStates": {},
		"taskCategories": {},
		"taskKanbanStatus": {},
		"subChecklists": {},
		"currentFabric": null,
		"users": {},
		"currentUser": null,
		"taskComments": {},
		"notifications": [],
		"taskTemplates": [],
		"lastSaved": null
	}`, string(data))
}

func TestNormalize_AfterUnmarshalOfPartialDocument(t *testing.T) {
	var d Document
	require.NoError(t, json.Unmarshal([]byte(`{"fabricStates":{"f1":{"t1":true}}}`), &d))
	d.Normalize()

	assert.True(t, d.FabricStates["f1"]["t1"])
	assert.NotNil(t, d.FabricNotes)
	assert.NotNil(t, d.TaskComments)
	d.FabricNotes.Set("f1", "t1", "ok")
}

func TestClone_IsDeep(t *testing.T) {
	orig := populated()
	dup := orig.Clone()

	dup.FabricStates["north-it"]["t1"] = false
	dup.FabricStates.Set("south-it", "t2", true)
	dup.FabricNotes["north-it"]["t1"] = "changed"
	dup.TestCaseStates["north-it"]["tc-1"][2] = 'X'
	dup.SubChecklists["north-it"][0] = '['
	*dup.CurrentFabric = "south-ot"
	dup.Users["u1"] = User{ID: "u1", Name: "Grace"}
	dup.TaskComments["t1"][0].Content = "edited"
	dup.TaskComments["t1"][0].Mentions[0] = "u3"
	dup.Notifications[0].Read = true
	dup.TaskTemplates[0][0] = '['
	*dup.LastSaved = dup.LastSaved.Add(time.Hour)

	assert.Equal(t, populated(), orig)
}

func TestClone_PreservesNilPointers(t *testing.T) {
	dup := NewDocument().Clone()
	assert.Nil(t, dup.CurrentFabric)
	assert.Nil(t, dup.CurrentUser)
	assert.Nil(t, dup.LastSaved)
}

func TestFabricMap_LazySubMaps(t *testing.T) {
	m := FabricMap[string]{}

	_, ok := m.Get("f1", "t1")
	assert.False(t, ok)
	assert.NotContains(t, m, "f1")

	m.Delete("f1", "t1")
	assert.Contains(t, m, "f1")
	assert.Empty(t, m["f1"])

	m.Set("f1", "t1", "x")
	v, ok := m.Get("f1", "t1")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestFabricMap_EnsureRepairsNilSubMap(t *testing.T) {
	m := FabricMap[bool]{"f1": nil}
	m.Set("f1", "t1", true)
	assert.True(t, m["f1"]["t1"])
}

func TestFabricMap_Merge(t *testing.T) {
	server := FabricMap[bool]{"f1": {"t1": true}}
	incoming := FabricMap[bool]{"f1": {"t2": true}, "f2": {"t1": true}}

	server.Merge(incoming, Same[bool])

	assert.Equal(t, FabricMap[bool]{
		"f1": {"t1": true, "t2": true},
		"f2": {"t1": true},
	}, server)

	incoming["f2"]["t1"] = false
	assert.True(t, server["f2"]["t1"], "merge must not alias incoming sub-maps")
}

func TestIsNullRaw(t *testing.T) {
	assert.True(t, IsNullRaw(nil))
	assert.True(t, IsNullRaw(json.RawMessage(" null ")))
	assert.True(t, IsNullRaw(json.RawMessage("")))
	assert.False(t, IsNullRaw(json.RawMessage(`{}`)))
	assert.False(t, IsNullRaw(json.RawMessage(`false`)))
}

func TestTaskIDs(t *testing.T) {
	sections := []SectionDescriptor{
		{ID: "s1", Subsections: []SubsectionDescriptor{
			{Title: "a", Tasks: []TaskDescriptor{{ID: "t1"}, {Text: "no id"}, {ID: "t2"}}},
		}},
		{ID: "", Subsections: []SubsectionDescriptor{
			{Tasks: []TaskDescriptor{{ID: "t2"}, {ID: "t9"}}},
		}},
	}

	assert.Equal(t, []string{"t1", "t2", "t9"}, TaskIDs(sections))
	assert.Empty(t, TaskIDs(nil))
}
