// Package seed loads folder hierarchies from YAML fixtures into a folder
// store and exports a store back into the same shape.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	models "tapstampr/internal/domain/models/library"
	libSvc "tapstampr/internal/domain/services/library"
)

// Fixture is the top-level YAML document
type Fixture struct {
	Folders []FolderSpec `yaml:"folders"`
}

// FolderSpec describes one folder and its subtree
type FolderSpec struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Settings    *SettingsSpec `yaml:"settings,omitempty"`
	Items       []ItemSpec    `yaml:"items,omitempty"`
	Children    []FolderSpec  `yaml:"children,omitempty"`
}

// SettingsSpec overrides the default display settings
type SettingsSpec struct {
	SortBy    models.SortBy    `yaml:"sortBy"`
	SortOrder models.SortOrder `yaml:"sortOrder"`
}

// ItemSpec references a video, moment or recording
type ItemSpec struct {
	Type    string `yaml:"type"`
	ItemID  string `yaml:"itemId"`
	AddedAt string `yaml:"addedAt,omitempty"` // RFC 3339; empty means now
}

// Count returns the number of folders in the fixture
func (f *Fixture) Count() int {
	var count func(specs []FolderSpec) int
	count = func(specs []FolderSpec) int {
		n := len(specs)
		for _, s := range specs {
			n += count(s.Children)
		}
		return n
	}
	return count(f.Folders)
}

// Decode reads a fixture, rejecting unknown keys
func Decode(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		if err == io.EOF {
			return &Fixture{}, nil
		}
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &fx, nil
}

// Encode writes fx as YAML
func Encode(w io.Writer, fx *Fixture) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fx); err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	return enc.Close()
}

// Seeder writes fixtures into a folder store
type Seeder struct {
	store  libSvc.FolderStore
	logger *slog.Logger
}

// NewSeeder creates a seeder for store
func NewSeeder(store libSvc.FolderStore, logger *slog.Logger) *Seeder {
	return &Seeder{store: store, logger: logger}
}

// Apply creates every folder of fx, parents before children, and returns
// the number of folders created. It stops at the first failure.
func (s *Seeder) Apply(ctx context.Context, fx *Fixture) (int, error) {
	created := 0
	for _, spec := range fx.Folders {
		n, err := s.applyFolder(ctx, spec, nil)
		created += n
		if err != nil {
			return created, err
		}
	}

	s.logger.Info("fixture applied", "folders_created", created)
	return created, nil
}

func (s *Seeder) applyFolder(ctx context.Context, spec FolderSpec, parentID *string) (int, error) {
	folder, err := s.store.CreateFolder(ctx, &libSvc.CreateFolderRequest{
		Name:           spec.Name,
		Description:    spec.Description,
		ParentFolderID: parentID,
	})
	if err != nil {
		return 0, fmt.Errorf("create folder %q: %w", spec.Name, err)
	}

	if spec.Settings != nil {
		_, err := s.store.UpdateSettings(ctx, folder.ID, &libSvc.UpdateSettingsRequest{
			SortBy:    &spec.Settings.SortBy,
			SortOrder: &spec.Settings.SortOrder,
		})
		if err != nil {
			return 1, fmt.Errorf("settings for %q: %w", spec.Name, err)
		}
	}

	for _, it := range spec.Items {
		item := models.FolderItem{Type: it.Type, ItemID: it.ItemID}
		if it.AddedAt != "" {
			t, err := time.Parse(time.RFC3339Nano, it.AddedAt)
			if err != nil {
				return 1, fmt.Errorf("item %q in %q: invalid addedAt: %w", it.ItemID, spec.Name, err)
			}
			item.AddedAt = t
		}
		if _, err := s.store.AddItemToFolder(ctx, folder.ID, item); err != nil {
			return 1, fmt.Errorf("item %q in %q: %w", it.ItemID, spec.Name, err)
		}
	}

	created := 1
	for _, child := range spec.Children {
		n, err := s.applyFolder(ctx, child, &folder.ID)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

// Export reads the whole store into a fixture. Orphans are exported at the
// top level, and children keep storage order.
func Export(ctx context.Context, store libSvc.FolderStore) (*Fixture, error) {
	folders, err := store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(folders))
	for _, f := range folders {
		known[f.ID] = true
	}

	children := make(map[string][]models.Folder)
	var roots []models.Folder
	for _, f := range folders {
		if f.ParentFolderID == nil || !known[*f.ParentFolderID] {
			roots = append(roots, f)
			continue
		}
		children[*f.ParentFolderID] = append(children[*f.ParentFolderID], f)
	}

	visited := make(map[string]bool, len(folders))
	var build func(list []models.Folder) []FolderSpec
	build = func(list []models.Folder) []FolderSpec {
		var specs []FolderSpec
		for _, f := range list {
			if visited[f.ID] {
				continue
			}
			visited[f.ID] = true
			specs = append(specs, toSpec(f, build(children[f.ID])))
		}
		return specs
	}

	return &Fixture{Folders: build(roots)}, nil
}

func toSpec(f models.Folder, children []FolderSpec) FolderSpec {
	spec := FolderSpec{
		Name:        f.Name,
		Description: f.Description,
		Children:    children,
	}
	if f.Settings != models.DefaultFolderSettings() {
		spec.Settings = &SettingsSpec{SortBy: f.Settings.SortBy, SortOrder: f.Settings.SortOrder}
	}
	for _, it := range f.Items {
		spec.Items = append(spec.Items, ItemSpec{
			Type:    it.Type,
			ItemID:  it.ItemID,
			AddedAt: it.AddedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return spec
}
