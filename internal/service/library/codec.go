package library

import (
	"encoding/json"
	"fmt"
	"time"

	models "tapstampr/internal/domain/models/library"
)

// wireTimeLayout matches JavaScript's Date.prototype.toISOString
const wireTimeLayout = "2006-01-02T15:04:05.000Z07:00"

type folderRecord struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	ParentFolderID *string         `json:"parentFolderId,omitempty"`
	Items          []itemRecord    `json:"items"`
	SubFolderIDs   []string        `json:"subFolderIds"`
	Settings       *settingsRecord `json:"settings,omitempty"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

type itemRecord struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	ItemID  string `json:"itemId"`
	AddedAt string `json:"addedAt"`
}

type settingsRecord struct {
	SortBy    models.SortBy    `json:"sortBy"`
	SortOrder models.SortOrder `json:"sortOrder"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(wireTimeLayout)
}

func parseTime(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid timestamp %q", field, s)
	}
	return t.UTC(), nil
}

// checkFolders applies the shape rules decodeFolders enforces, so a snapshot
// that passes is always readable again. Zero-value settings are allowed; they
// are written as the defaults.
func checkFolders(folders []models.Folder) error {
	seen := make(map[string]struct{}, len(folders))
	for i, f := range folders {
		if f.ID == "" {
			return fmt.Errorf("folder %d: missing id", i)
		}
		if f.Name == "" {
			return fmt.Errorf("folder %q: missing name", f.ID)
		}
		if _, dup := seen[f.ID]; dup {
			return fmt.Errorf("duplicate folder id %q", f.ID)
		}
		seen[f.ID] = struct{}{}

		if s := storedSettings(f.Settings); !s.SortBy.Valid() || !s.SortOrder.Valid() {
			return fmt.Errorf("folder %q: invalid settings %+v", f.ID, f.Settings)
		}
	}
	return nil
}

// storedSettings maps zero-value settings to the defaults
func storedSettings(s models.FolderSettings) models.FolderSettings {
	if s == (models.FolderSettings{}) {
		return models.DefaultFolderSettings()
	}
	return s
}

// encodeFolders serializes folders into the stored JSON array
func encodeFolders(folders []models.Folder) (string, error) {
	records := make([]folderRecord, 0, len(folders))
	for _, f := range folders {
		items := make([]itemRecord, 0, len(f.Items))
		for _, it := range f.Items {
			items = append(items, itemRecord{
				ID:      it.ID,
				Type:    it.Type,
				ItemID:  it.ItemID,
				AddedAt: formatTime(it.AddedAt),
			})
		}
		subs := f.SubFolderIDs
		if subs == nil {
			subs = []string{}
		}
		settings := storedSettings(f.Settings)
		records = append(records, folderRecord{
			ID:             f.ID,
			Name:           f.Name,
			Description:    f.Description,
			ParentFolderID: f.ParentFolderID,
			Items:          items,
			SubFolderIDs:   subs,
			Settings:       &settingsRecord{SortBy: settings.SortBy, SortOrder: settings.SortOrder},
			CreatedAt:      formatTime(f.CreatedAt),
			UpdatedAt:      formatTime(f.UpdatedAt),
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode folders: %w", err)
	}
	return string(data), nil
}

// decodeFolders parses the stored JSON array. Any shape failure rejects the
// whole blob; the caller maps it to domain.ErrMalformedData.
func decodeFolders(data string) ([]models.Folder, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("stored folders are not a JSON array: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("stored folders are null, not a JSON array")
	}

	folders := make([]models.Folder, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for i, msg := range raw {
		var rec folderRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		f, err := rec.toFolder()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := seen[f.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate folder id %q", i, f.ID)
		}
		seen[f.ID] = struct{}{}
		folders = append(folders, f)
	}
	return folders, nil
}

func (rec *folderRecord) toFolder() (models.Folder, error) {
	if rec.ID == "" {
		return models.Folder{}, fmt.Errorf("missing id")
	}
	if rec.Name == "" {
		return models.Folder{}, fmt.Errorf("folder %q: missing name", rec.ID)
	}

	createdAt, err := parseTime("createdAt", rec.CreatedAt)
	if err != nil {
		return models.Folder{}, fmt.Errorf("folder %q: %w", rec.ID, err)
	}
	updatedAt, err := parseTime("updatedAt", rec.UpdatedAt)
	if err != nil {
		return models.Folder{}, fmt.Errorf("folder %q: %w", rec.ID, err)
	}

	settings := models.DefaultFolderSettings()
	if rec.Settings != nil {
		if !rec.Settings.SortBy.Valid() || !rec.Settings.SortOrder.Valid() {
			return models.Folder{}, fmt.Errorf("folder %q: invalid settings %+v", rec.ID, *rec.Settings)
		}
		settings = models.FolderSettings{SortBy: rec.Settings.SortBy, SortOrder: rec.Settings.SortOrder}
	}

	items := make([]models.FolderItem, 0, len(rec.Items))
	for _, it := range rec.Items {
		addedAt, err := parseTime("addedAt", it.AddedAt)
		if err != nil {
			return models.Folder{}, fmt.Errorf("folder %q item %q: %w", rec.ID, it.ID, err)
		}
		items = append(items, models.FolderItem{
			ID:      it.ID,
			Type:    it.Type,
			ItemID:  it.ItemID,
			AddedAt: addedAt,
		})
	}

	var parent *string
	if rec.ParentFolderID != nil && *rec.ParentFolderID != "" {
		p := *rec.ParentFolderID
		parent = &p
	}

	subs := rec.SubFolderIDs
	if subs == nil {
		subs = []string{}
	}

	return models.Folder{
		ID:             rec.ID,
		Name:           rec.Name,
		Description:    rec.Description,
		ParentFolderID: parent,
		Items:          items,
		SubFolderIDs:   subs,
		Settings:       settings,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}
