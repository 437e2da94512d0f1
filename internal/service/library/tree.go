package library

import (
	"context"

	models "tapstampr/internal/domain/models/library"
)

// GetTree builds the nested folder tree. Folders whose parent does not
// resolve are listed at the root level. Root folders use the default display
// order; each folder's children follow that folder's settings. A failed load
// returns an empty tree together with the error.
func (s *folderStore) GetTree(ctx context.Context) (*models.TreeNode, error) {
	allFolders, err := s.load(ctx)
	if err != nil {
		return &models.TreeNode{Folders: []*models.FolderTreeNode{}}, err
	}

	f := newForest(allFolders)

	// First pass: create all folder nodes
	nodes := make(map[string]*models.FolderTreeNode, len(allFolders))
	for _, folder := range allFolders {
		nodes[folder.ID] = &models.FolderTreeNode{
			ID:             folder.ID,
			Name:           folder.Name,
			Description:    folder.Description,
			ParentFolderID: folder.ParentFolderID,
			ItemCount:      len(folder.Items),
			Settings:       folder.Settings,
			CreatedAt:      folder.CreatedAt,
			Folders:        []*models.FolderTreeNode{},
		}
	}

	// Second pass: group folders under their parents
	var roots []models.Folder
	children := make(map[string][]models.Folder)
	orphans := 0
	for _, folder := range allFolders {
		switch {
		case folder.ParentFolderID == nil:
			roots = append(roots, folder)
		case f.get(*folder.ParentFolderID) == nil:
			orphans++
			roots = append(roots, folder)
		case *folder.ParentFolderID == folder.ID:
			s.logger.Warn("folder is its own parent, skipping", "id", folder.ID)
		default:
			children[*folder.ParentFolderID] = append(children[*folder.ParentFolderID], folder)
		}
	}

	// Third pass: attach sorted children to their parent nodes
	for parentID, kids := range children {
		parent := nodes[parentID]
		for _, kid := range models.SortFolders(kids, f.get(parentID).Settings) {
			parent.Folders = append(parent.Folders, nodes[kid.ID])
		}
	}

	rootNodes := make([]*models.FolderTreeNode, 0, len(roots))
	for _, folder := range models.SortFolders(roots, models.DefaultFolderSettings()) {
		rootNodes = append(rootNodes, nodes[folder.ID])
	}

	if orphans > 0 {
		s.logger.Warn("orphaned folders listed at root", "orphan_count", orphans)
	}
	s.logger.Debug("folder tree built",
		"folder_count", len(allFolders),
		"root_count", len(rootNodes),
	)

	return &models.TreeNode{Folders: rootNodes}, nil
}
