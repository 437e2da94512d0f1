package library

import (
	"context"

	models "tapstampr/internal/domain/models/library"
)

// FolderStore persists and mutates the folder forest. Every mutation is a
// whole-snapshot load, mutate, save cycle against one storage key.
type FolderStore interface {
	// LoadAll returns every folder in storage order. The slice is never nil;
	// on failure it is empty and the error wraps domain.ErrStorage or
	// domain.ErrMalformedData.
	LoadAll(ctx context.Context) ([]models.Folder, error)

	// SaveAll replaces the stored collection with folders
	SaveAll(ctx context.Context, folders []models.Folder) error

	// GetByID retrieves a folder, domain.ErrNotFound when missing
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// CreateFolder creates a folder, linking it into its parent when the parent resolves
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// UpdateFolder merges name and description changes
	UpdateFolder(ctx context.Context, id string, req *UpdateFolderRequest) (*models.Folder, error)

	// DeleteFolder removes a folder and all of its descendants.
	// Deleting a missing folder is a no-op.
	DeleteFolder(ctx context.Context, id string) error

	// MoveToParent reparents a folder; nil newParentID moves it to the root level
	MoveToParent(ctx context.Context, id string, newParentID *string) (*models.Folder, error)

	// AddItemToFolder appends an item unless one with the same ID is present
	AddItemToFolder(ctx context.Context, folderID string, item models.FolderItem) (*models.Folder, error)

	// RemoveItemFromFolder drops the items matching itemID
	RemoveItemFromFolder(ctx context.Context, folderID, itemID string) (*models.Folder, error)

	// GetRootFolders lists folders without a parent
	GetRootFolders(ctx context.Context) ([]models.Folder, error)

	// GetSubFolders lists folders whose parent is parentID
	GetSubFolders(ctx context.Context, parentID string) ([]models.Folder, error)

	// GetFolderPath returns folder names from the root ancestor down to id
	GetFolderPath(ctx context.Context, id string) ([]string, error)

	// UpdateSettings merges display settings
	UpdateSettings(ctx context.Context, folderID string, req *UpdateSettingsRequest) (*models.Folder, error)

	// GetTree builds the nested folder tree
	GetTree(ctx context.Context) (*models.TreeNode, error)

	// ClearAll removes the whole collection
	ClearAll(ctx context.Context) error
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	ParentFolderID *string `json:"parentFolderId,omitempty"` // nil creates a root folder
}

// UpdateFolderRequest carries the mutable, non-structural folder fields.
// Parent and children change only through MoveToParent/CreateFolder/DeleteFolder.
type UpdateFolderRequest struct {
	Name        *string
	Description OptionalDescription // no json tag - mapped from handler DTO
}

// OptionalDescription tracks tri-state semantics for description updates.
// This is transport-agnostic - handler maps from httputil.OptionalString.
//   - Present=false: field absent from request (don't change)
//   - Present=true, Value=nil: field is null (clear)
//   - Present=true, Value=&"text": field has value
type OptionalDescription struct {
	Present bool
	Value   *string
}

// OrEmpty returns the new description, "" when cleared
func (o OptionalDescription) OrEmpty() string {
	if o.Value == nil {
		return ""
	}
	return *o.Value
}

// UpdateSettingsRequest is a partial settings update
type UpdateSettingsRequest struct {
	SortBy    *models.SortBy    `json:"sortBy,omitempty"`
	SortOrder *models.SortOrder `json:"sortOrder,omitempty"`
}

