package library

import (
	models "tapstampr/internal/domain/models/library"
)

// forest is an in-memory snapshot of the stored collection with an id index.
// All mutating operations work on a forest and save it back whole.
type forest struct {
	folders []models.Folder
	index   map[string]int
}

func newForest(folders []models.Folder) *forest {
	f := &forest{folders: folders}
	f.reindex()
	return f
}

func (f *forest) reindex() {
	f.index = make(map[string]int, len(f.folders))
	for i := range f.folders {
		f.index[f.folders[i].ID] = i
	}
}

// get returns a pointer into the snapshot, nil when id is unknown
func (f *forest) get(id string) *models.Folder {
	i, ok := f.index[id]
	if !ok {
		return nil
	}
	return &f.folders[i]
}

func (f *forest) add(folder models.Folder) {
	f.folders = append(f.folders, folder)
	f.index[folder.ID] = len(f.folders) - 1
}

// removeAll drops every folder whose id is in ids, preserving order
func (f *forest) removeAll(ids map[string]struct{}) int {
	kept := f.folders[:0]
	for _, folder := range f.folders {
		if _, drop := ids[folder.ID]; !drop {
			kept = append(kept, folder)
		}
	}
	removed := len(f.folders) - len(kept)
	f.folders = kept
	f.reindex()
	return removed
}

// descendants returns the ids of every folder below id, excluding id itself.
// Children are taken from subFolderIds and from parentFolderId back-pointers
// so a half-linked child is still found. The walk is iterative and tracks
// visited ids, so corrupted cycles terminate.
func (f *forest) descendants(id string) map[string]struct{} {
	children := make(map[string][]string, len(f.folders))
	for _, folder := range f.folders {
		children[folder.ID] = append(children[folder.ID], folder.SubFolderIDs...)
		if folder.ParentFolderID != nil {
			children[*folder.ParentFolderID] = append(children[*folder.ParentFolderID], folder.ID)
		}
	}

	found := make(map[string]struct{})
	visited := map[string]struct{}{id: {}}
	stack := []string{id}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, child := range children[current] {
			if _, seen := visited[child]; seen {
				continue
			}
			visited[child] = struct{}{}
			found[child] = struct{}{}
			stack = append(stack, child)
		}
	}
	return found
}

// path returns names from the root ancestor down to id. The walk stops at a
// folder without a parent, at a parent that does not resolve, or when a
// corrupted cycle would revisit a folder.
func (f *forest) path(id string) []string {
	var reversed []string
	visited := make(map[string]struct{})

	current := f.get(id)
	for current != nil {
		if _, seen := visited[current.ID]; seen {
			break
		}
		visited[current.ID] = struct{}{}
		reversed = append(reversed, current.Name)

		if current.ParentFolderID == nil {
			break
		}
		current = f.get(*current.ParentFolderID)
	}

	names := make([]string, len(reversed))
	for i, name := range reversed {
		names[len(reversed)-1-i] = name
	}
	return names
}

// filter returns clones of the folders matching keep
func (f *forest) filter(keep func(*models.Folder) bool) []models.Folder {
	out := make([]models.Folder, 0)
	for i := range f.folders {
		if keep(&f.folders[i]) {
			out = append(out, f.folders[i].Clone())
		}
	}
	return out
}
