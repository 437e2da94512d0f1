package library

import (
	"slices"
	"time"
)

// SortBy selects the display ordering of a folder's contents
type SortBy string

const (
	SortByDateAdded SortBy = "dateAdded"
	SortByName      SortBy = "name"
	SortByCustom    SortBy = "custom"
)

// SortOrder selects ascending or descending display order
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Known item types. The store treats Type as opaque and accepts any value.
const (
	ItemTypeYouTubeVideo    = "youtube_video"
	ItemTypeMoment          = "moment"
	ItemTypeScreenRecording = "screen_recording"
)

// Valid reports whether s is one of the known sort keys
func (s SortBy) Valid() bool {
	return s == SortByDateAdded || s == SortByName || s == SortByCustom
}

// Valid reports whether o is asc or desc
func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// FolderSettings is display-only; it never changes storage order
type FolderSettings struct {
	SortBy    SortBy    `json:"sortBy"`
	SortOrder SortOrder `json:"sortOrder"`
}

// DefaultFolderSettings returns the settings new folders start with
func DefaultFolderSettings() FolderSettings {
	return FolderSettings{SortBy: SortByDateAdded, SortOrder: SortDesc}
}

// FolderItem references an external video or moment by opaque id
type FolderItem struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	ItemID  string    `json:"itemId"`
	AddedAt time.Time `json:"addedAt"`
}

// Folder is a node of the folder forest. ParentFolderID == nil marks a root.
type Folder struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	ParentFolderID *string        `json:"parentFolderId,omitempty"`
	Items          []FolderItem   `json:"items"`
	SubFolderIDs   []string       `json:"subFolderIds"`
	Settings       FolderSettings `json:"settings"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// IsRoot reports whether the folder has no parent
func (f *Folder) IsRoot() bool {
	return f.ParentFolderID == nil
}

// HasItem reports whether an item with the given FolderItem.ID is present
func (f *Folder) HasItem(id string) bool {
	return slices.ContainsFunc(f.Items, func(it FolderItem) bool { return it.ID == id })
}

// HasSubFolder reports whether childID is listed in SubFolderIDs
func (f *Folder) HasSubFolder(childID string) bool {
	return slices.Contains(f.SubFolderIDs, childID)
}

// AddSubFolder appends childID unless it is already present
func (f *Folder) AddSubFolder(childID string) {
	if !f.HasSubFolder(childID) {
		f.SubFolderIDs = append(f.SubFolderIDs, childID)
	}
}

// RemoveSubFolder drops every occurrence of childID
func (f *Folder) RemoveSubFolder(childID string) {
	f.SubFolderIDs = slices.DeleteFunc(f.SubFolderIDs, func(id string) bool { return id == childID })
}

// Clone returns a deep copy so callers cannot mutate store snapshots
func (f *Folder) Clone() Folder {
	c := *f
	if f.ParentFolderID != nil {
		p := *f.ParentFolderID
		c.ParentFolderID = &p
	}
	c.Items = slices.Clone(f.Items)
	if c.Items == nil {
		c.Items = []FolderItem{}
	}
	c.SubFolderIDs = slices.Clone(f.SubFolderIDs)
	if c.SubFolderIDs == nil {
		c.SubFolderIDs = []string{}
	}
	return c
}
