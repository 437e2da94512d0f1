package library

import (
	"slices"
	"strings"
)

// SortFolders returns a display-ordered copy of folders according to settings.
// dateAdded orders by CreatedAt, name orders case-insensitively by Name and
// custom keeps the given order.
func SortFolders(folders []Folder, settings FolderSettings) []Folder {
	out := slices.Clone(folders)
	var cmp func(a, b Folder) int

	switch settings.SortBy {
	case SortByDateAdded:
		cmp = func(a, b Folder) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortByName:
		cmp = func(a, b Folder) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	default:
		return out
	}

	slices.SortStableFunc(out, directed(cmp, settings.SortOrder))
	return out
}

// SortItems returns a display-ordered copy of items according to settings.
// Items carry no display name, so name ordering falls back to ItemID.
func SortItems(items []FolderItem, settings FolderSettings) []FolderItem {
	out := slices.Clone(items)
	var cmp func(a, b FolderItem) int

	switch settings.SortBy {
	case SortByDateAdded:
		cmp = func(a, b FolderItem) int { return a.AddedAt.Compare(b.AddedAt) }
	case SortByName:
		cmp = func(a, b FolderItem) int { return strings.Compare(a.ItemID, b.ItemID) }
	default:
		return out
	}

	slices.SortStableFunc(out, directed(cmp, settings.SortOrder))
	return out
}

func directed[T any](cmp func(a, b T) int, order SortOrder) func(a, b T) int {
	if order == SortDesc {
		return func(a, b T) int { return cmp(b, a) }
	}
	return cmp
}
