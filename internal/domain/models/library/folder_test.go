package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFolder_SubFolderHelpers(t *testing.T) {
	f := Folder{ID: "p"}

	f.AddSubFolder("a")
	f.AddSubFolder("b")
	f.AddSubFolder("a")
	assert.Equal(t, []string{"a", "b"}, f.SubFolderIDs)

	f.RemoveSubFolder("a")
	assert.Equal(t, []string{"b"}, f.SubFolderIDs)
	assert.False(t, f.HasSubFolder("a"))
}

func TestFolder_CloneIsDeep(t *testing.T) {
	parent := "p"
	f := Folder{
		ID:             "f",
		ParentFolderID: &parent,
		Items:          []FolderItem{{ID: "i1"}},
		SubFolderIDs:   []string{"c"},
	}

	c := f.Clone()
	*c.ParentFolderID = "other"
	c.Items[0].ID = "changed"
	c.SubFolderIDs[0] = "changed"

	assert.Equal(t, "p", *f.ParentFolderID)
	assert.Equal(t, "i1", f.Items[0].ID)
	assert.Equal(t, "c", f.SubFolderIDs[0])
}

func TestFolder_CloneNormalizesNilSlices(t *testing.T) {
	c := (&Folder{ID: "f"}).Clone()
	assert.NotNil(t, c.Items)
	assert.NotNil(t, c.SubFolderIDs)
	assert.True(t, c.IsRoot())
}

func TestSettingsValidity(t *testing.T) {
	assert.True(t, SortByCustom.Valid())
	assert.False(t, SortBy("size").Valid())
	assert.True(t, SortDesc.Valid())
	assert.False(t, SortOrder("up").Valid())
	assert.Equal(t, FolderSettings{SortBy: SortByDateAdded, SortOrder: SortDesc}, DefaultFolderSettings())
}

func TestSortFolders(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	folders := []Folder{
		{ID: "1", Name: "bravo", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "2", Name: "Alpha", CreatedAt: base},
		{ID: "3", Name: "charlie", CreatedAt: base.Add(time.Hour)},
	}

	ids := func(fs []Folder) []string {
		out := make([]string, 0, len(fs))
		for _, f := range fs {
			out = append(out, f.ID)
		}
		return out
	}

	tests := []struct {
		name     string
		settings FolderSettings
		want     []string
	}{
		{"date asc", FolderSettings{SortByDateAdded, SortAsc}, []string{"2", "3", "1"}},
		{"date desc", FolderSettings{SortByDateAdded, SortDesc}, []string{"1", "3", "2"}},
		{"name asc ignores case", FolderSettings{SortByName, SortAsc}, []string{"2", "1", "3"}},
		{"name desc", FolderSettings{SortByName, SortDesc}, []string{"3", "1", "2"}},
		{"custom keeps order", FolderSettings{SortByCustom, SortDesc}, []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(SortFolders(folders, tt.settings)))
		})
	}

	// input untouched
	assert.Equal(t, []string{"1", "2", "3"}, ids(folders))
}

func TestSortItems(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []FolderItem{
		{ID: "a", ItemID: "v2", AddedAt: base},
		{ID: "b", ItemID: "v1", AddedAt: base.Add(time.Minute)},
	}

	byDate := SortItems(items, DefaultFolderSettings())
	assert.Equal(t, "b", byDate[0].ID)

	byName := SortItems(items, FolderSettings{SortByName, SortAsc})
	assert.Equal(t, "b", byName[0].ID)

	custom := SortItems(items, FolderSettings{SortByCustom, SortAsc})
	assert.Equal(t, "a", custom[0].ID)
}
