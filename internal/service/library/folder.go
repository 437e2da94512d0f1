package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"tapstampr/internal/config"
	"tapstampr/internal/domain"
	models "tapstampr/internal/domain/models/library"
	"tapstampr/internal/domain/repositories"
	libSvc "tapstampr/internal/domain/services/library"
)

// FolderStoreConfig holds the dependencies of a folder store
type FolderStoreConfig struct {
	KV        repositories.KeyValueStore
	TxManager repositories.TransactionManager // nil runs without a transaction
	Key       string                          // defaults to config.DefaultStorageKey
	Logger    *slog.Logger
	Now       func() time.Time // defaults to time.Now
	NewID     func() string    // defaults to uuid.NewString

	// locks is shared by stores handed out from one Namespaces registry
	locks *keyLocks
}

type folderStore struct {
	kv        repositories.KeyValueStore
	txManager repositories.TransactionManager
	key       string
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string

	// locks serialises load-mutate-save cycles on key within this process
	locks *keyLocks
}

// NewFolderStore creates a folder store over the configured key-value store
func NewFolderStore(cfg *FolderStoreConfig) libSvc.FolderStore {
	s := &folderStore{
		kv:        cfg.KV,
		txManager: cfg.TxManager,
		key:       cfg.Key,
		logger:    cfg.Logger,
		now:       cfg.Now,
		newID:     cfg.NewID,
		locks:     cfg.locks,
	}
	if s.locks == nil {
		s.locks = newKeyLocks()
	}
	if s.txManager == nil {
		s.txManager = repositories.PassthroughTxManager{}
	}
	if s.key == "" {
		s.key = config.DefaultStorageKey
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	s.logger = s.logger.With("storage_key", s.key)
	return s
}

// timestamp returns the current time at the precision the wire format keeps,
// so values handed back by mutations equal the values a later load returns
func (s *folderStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// load reads and decodes the stored collection
func (s *folderStore) load(ctx context.Context) ([]models.Folder, error) {
	data, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Error("failed to read folders", "error", err)
		return []models.Folder{}, fmt.Errorf("%w: read folders: %v", domain.ErrStorage, err)
	}
	if !found || data == "" {
		return []models.Folder{}, nil
	}

	folders, err := decodeFolders(data)
	if err != nil {
		s.logger.Error("stored folders are malformed", "error", err, "bytes", len(data))
		return []models.Folder{}, fmt.Errorf("%w: %v", domain.ErrMalformedData, err)
	}
	return folders, nil
}

// save encodes and writes the whole collection
func (s *folderStore) save(ctx context.Context, folders []models.Folder) error {
	data, err := encodeFolders(folders)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.logger.Error("failed to write folders", "error", err, "folder_count", len(folders))
		return fmt.Errorf("%w: write folders: %v", domain.ErrStorage, err)
	}
	return nil
}

// mutate runs one load-mutate-save cycle. fn reports whether it changed the
// snapshot; unchanged snapshots are not written back. A failed load aborts
// before fn runs so a corrupt blob is never overwritten.
func (s *folderStore) mutate(ctx context.Context, fn func(f *forest) (bool, error)) error {
	unlock := s.locks.lock(s.key)
	defer unlock()

	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folders, err := s.load(txCtx)
		if err != nil {
			return err
		}

		f := newForest(folders)
		changed, err := fn(f)
		if err != nil || !changed {
			return err
		}
		return s.save(txCtx, f.folders)
	})
}

// LoadAll returns every stored folder
func (s *folderStore) LoadAll(ctx context.Context) ([]models.Folder, error) {
	return s.load(ctx)
}

// SaveAll replaces the stored collection. A snapshot the store could not read
// back is rejected with domain.ErrValidation and nothing is written.
func (s *folderStore) SaveAll(ctx context.Context, folders []models.Folder) error {
	if err := checkFolders(folders); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	unlock := s.locks.lock(s.key)
	defer unlock()

	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.save(txCtx, folders)
	})
}

// GetByID retrieves a folder by ID
func (s *folderStore) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	folders, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	folder := newForest(folders).get(id)
	if folder == nil {
		return nil, domain.NewNotFound("folder", id)
	}
	c := folder.Clone()
	return &c, nil
}

// CreateFolder creates a new folder. A parent id that does not resolve still
// creates the folder; it is kept as an orphan and a warning is logged.
func (s *folderStore) CreateFolder(ctx context.Context, req *libSvc.CreateFolderRequest) (*models.Folder, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	now := s.timestamp()
	folder := models.Folder{
		ID:             s.newID(),
		Name:           req.Name,
		Description:    req.Description,
		ParentFolderID: req.ParentFolderID,
		Items:          []models.FolderItem{},
		SubFolderIDs:   []string{},
		Settings:       models.DefaultFolderSettings(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.mutate(ctx, func(f *forest) (bool, error) {
		if folder.ParentFolderID != nil {
			if parent := f.get(*folder.ParentFolderID); parent != nil {
				parent.AddSubFolder(folder.ID)
				parent.UpdatedAt = now
			} else {
				s.logger.Warn("parent folder not found, creating orphan",
					"id", folder.ID,
					"parent_folder_id", *folder.ParentFolderID,
				)
			}
		}
		f.add(folder)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_folder_id", folder.ParentFolderID,
	)

	out := folder.Clone()
	return &out, nil
}

// UpdateFolder updates a folder's name and description
func (s *folderStore) UpdateFolder(ctx context.Context, id string, req *libSvc.UpdateFolderRequest) (*models.Folder, error) {
	if err := validateUpdateRequest(req); err != nil {
		return nil, err
	}

	updated, err := s.mutateFolder(ctx, id, func(folder *models.Folder) (bool, error) {
		if req.Name != nil {
			folder.Name = *req.Name
		}
		if req.Description.Present {
			folder.Description = req.Description.OrEmpty()
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder updated", "id", id, "name", updated.Name)
	return updated, nil
}

// DeleteFolder deletes a folder and every descendant in one write and
// detaches it from its parent
func (s *folderStore) DeleteFolder(ctx context.Context, id string) error {
	var removed int
	var name string

	err := s.mutate(ctx, func(f *forest) (bool, error) {
		folder := f.get(id)
		if folder == nil {
			s.logger.Warn("folder to delete not found", "id", id)
			return false, nil
		}
		name = folder.Name

		if folder.ParentFolderID != nil {
			if parent := f.get(*folder.ParentFolderID); parent != nil {
				parent.RemoveSubFolder(id)
				parent.UpdatedAt = s.timestamp()
			}
		}

		doomed := f.descendants(id)
		for childID := range doomed {
			s.logger.Debug("deleting descendant folder", "id", childID, "ancestor_id", id)
		}
		doomed[id] = struct{}{}

		removed = f.removeAll(doomed)
		return true, nil
	})
	if err != nil {
		return err
	}

	if removed > 0 {
		s.logger.Info("folder deleted",
			"id", id,
			"name", name,
			"removed_count", removed,
		)
	}
	return nil
}

// MoveToParent moves a folder under newParentID, or to the root level when
// newParentID is nil. Moving a folder under itself or one of its descendants
// is rejected before anything changes.
func (s *folderStore) MoveToParent(ctx context.Context, id string, newParentID *string) (*models.Folder, error) {
	if newParentID != nil && *newParentID == "" {
		newParentID = nil
	}

	var moved models.Folder
	err := s.mutate(ctx, func(f *forest) (bool, error) {
		folder := f.get(id)
		if folder == nil {
			return false, domain.NewNotFound("folder", id)
		}

		if newParentID != nil {
			if *newParentID == id {
				return false, &domain.InvalidOperationError{Message: "cannot move folder to be its own parent"}
			}
			if f.get(*newParentID) == nil {
				return false, domain.NewNotFound("parent folder", *newParentID)
			}
			if _, cycle := f.descendants(id)[*newParentID]; cycle {
				return false, &domain.InvalidOperationError{Message: "cannot move folder to be a child of its own descendant"}
			}
		}

		now := s.timestamp()
		if folder.ParentFolderID != nil {
			if oldParent := f.get(*folder.ParentFolderID); oldParent != nil {
				oldParent.RemoveSubFolder(id)
				oldParent.UpdatedAt = now
			}
		}
		if newParentID != nil {
			newParent := f.get(*newParentID)
			newParent.AddSubFolder(id)
			newParent.UpdatedAt = now

			p := *newParentID
			folder.ParentFolderID = &p
		} else {
			folder.ParentFolderID = nil
		}
		folder.UpdatedAt = now

		moved = folder.Clone()
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder moved",
		"id", id,
		"parent_folder_id", newParentID,
	)
	return &moved, nil
}

// AddItemToFolder appends item to the folder. An item whose ID is already
// present is left alone and logged. Empty ID and AddedAt are filled in.
func (s *folderStore) AddItemToFolder(ctx context.Context, folderID string, item models.FolderItem) (*models.Folder, error) {
	if err := validateItem(&item); err != nil {
		return nil, err
	}
	if item.ID == "" {
		item.ID = s.newID()
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = s.timestamp()
	} else {
		item.AddedAt = item.AddedAt.UTC().Truncate(time.Millisecond)
	}

	return s.mutateFolder(ctx, folderID, func(folder *models.Folder) (bool, error) {
		if folder.HasItem(item.ID) {
			s.logger.Warn("item already in folder", "folder_id", folderID, "item_id", item.ID)
			return false, nil
		}
		if len(folder.Items) >= config.MaxFolderItemsPerFolder {
			s.logger.Warn("folder item limit reached", "folder_id", folderID, "limit", config.MaxFolderItemsPerFolder)
			return false, &domain.ValidationError{
				Message: fmt.Sprintf("folder %s already holds the maximum of %d items", folderID, config.MaxFolderItemsPerFolder),
			}
		}
		folder.Items = append(folder.Items, item)
		s.logger.Debug("item added", "folder_id", folderID, "item_id", item.ID, "type", item.Type)
		return true, nil
	})
}

// RemoveItemFromFolder drops items whose ID or ItemID equals itemID
func (s *folderStore) RemoveItemFromFolder(ctx context.Context, folderID, itemID string) (*models.Folder, error) {
	return s.mutateFolder(ctx, folderID, func(folder *models.Folder) (bool, error) {
		before := len(folder.Items)
		folder.Items = slices.DeleteFunc(folder.Items, func(it models.FolderItem) bool {
			return it.ID == itemID || it.ItemID == itemID
		})
		if len(folder.Items) == before {
			return false, nil
		}
		s.logger.Debug("item removed", "folder_id", folderID, "item_id", itemID)
		return true, nil
	})
}

// GetRootFolders lists folders with no parent
func (s *folderStore) GetRootFolders(ctx context.Context) ([]models.Folder, error) {
	folders, err := s.load(ctx)
	return newForest(folders).filter(func(f *models.Folder) bool {
		return f.ParentFolderID == nil
	}), err
}

// GetSubFolders lists folders whose parent is parentID
func (s *folderStore) GetSubFolders(ctx context.Context, parentID string) ([]models.Folder, error) {
	folders, err := s.load(ctx)
	return newForest(folders).filter(func(f *models.Folder) bool {
		return f.ParentFolderID != nil && *f.ParentFolderID == parentID
	}), err
}

// GetFolderPath returns the folder names from the root ancestor down to id
func (s *folderStore) GetFolderPath(ctx context.Context, id string) ([]string, error) {
	folders, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	f := newForest(folders)
	if f.get(id) == nil {
		return nil, domain.NewNotFound("folder", id)
	}
	return f.path(id), nil
}

// UpdateSettings merges display settings into the folder
func (s *folderStore) UpdateSettings(ctx context.Context, folderID string, req *libSvc.UpdateSettingsRequest) (*models.Folder, error) {
	if err := validateSettingsRequest(req); err != nil {
		return nil, err
	}

	return s.mutateFolder(ctx, folderID, func(folder *models.Folder) (bool, error) {
		if req.SortBy != nil {
			folder.Settings.SortBy = *req.SortBy
		}
		if req.SortOrder != nil {
			folder.Settings.SortOrder = *req.SortOrder
		}
		return true, nil
	})
}

// ClearAll removes the stored collection
func (s *folderStore) ClearAll(ctx context.Context) error {
	unlock := s.locks.lock(s.key)
	defer unlock()

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.kv.Remove(txCtx, s.key)
	})
	if err != nil {
		s.logger.Error("failed to clear folders", "error", err)
		if errors.Is(err, domain.ErrStorage) {
			return err
		}
		return fmt.Errorf("%w: clear folders: %v", domain.ErrStorage, err)
	}

	s.logger.Warn("all folders cleared")
	return nil
}

// mutateFolder applies fn to one folder, bumping UpdatedAt when fn reports a
// change. Returns domain.ErrNotFound when folderID does not resolve; an error
// from fn aborts without writing.
func (s *folderStore) mutateFolder(ctx context.Context, folderID string, fn func(folder *models.Folder) (bool, error)) (*models.Folder, error) {
	var out models.Folder
	err := s.mutate(ctx, func(f *forest) (bool, error) {
		folder := f.get(folderID)
		if folder == nil {
			return false, domain.NewNotFound("folder", folderID)
		}
		changed, err := fn(folder)
		if err != nil {
			return false, err
		}
		if changed {
			folder.UpdatedAt = s.timestamp()
		}
		out = folder.Clone()
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
