package seed

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tapstampr/internal/domain"
	models "tapstampr/internal/domain/models/library"
	"tapstampr/internal/repository/memory"
	"tapstampr/internal/service/library"
)

const musicFixture = `
folders:
  - name: Music
    description: everything audio
    settings: {sortBy: name, sortOrder: asc}
    items:
      - {type: youtube_video, itemId: v1, addedAt: "2024-01-01T10:00:00Z"}
    children:
      - name: Rock
        children:
          - name: Live
      - name: Jazz
  - name: Talks
`

func newStore(t *testing.T) *library.Namespaces {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return library.NewNamespaces(memory.NewKVStore(), nil, "", logger)
}

func TestDecode(t *testing.T) {
	fx, err := Decode(strings.NewReader(musicFixture))
	require.NoError(t, err)
	assert.Equal(t, 5, fx.Count())
	require.NotNil(t, fx.Folders[0].Settings)
	assert.Equal(t, models.SortByName, fx.Folders[0].Settings.SortBy)

	_, err = Decode(strings.NewReader("folders:\n  - name: A\n    colour: red\n"))
	assert.Error(t, err)

	empty, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Count())
}

func TestApplyAndExport(t *testing.T) {
	ctx := context.Background()
	store := newStore(t).ForUser("")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fx, err := Decode(strings.NewReader(musicFixture))
	require.NoError(t, err)

	created, err := NewSeeder(store, logger).Apply(ctx, fx)
	require.NoError(t, err)
	assert.Equal(t, 5, created)

	folders, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 5)

	var live models.Folder
	for _, f := range folders {
		if f.Name == "Live" {
			live = f
		}
	}
	path, err := store.GetFolderPath(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Music", "Rock", "Live"}, path)

	exported, err := Export(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, fx.Count(), exported.Count())

	music := exported.Folders[0]
	assert.Equal(t, "Music", music.Name)
	assert.Equal(t, "everything audio", music.Description)
	require.NotNil(t, music.Settings)
	assert.Equal(t, models.SortAsc, music.Settings.SortOrder)
	require.Len(t, music.Items, 1)
	assert.Equal(t, "2024-01-01T10:00:00Z", music.Items[0].AddedAt)
	require.Len(t, music.Children, 2)
	assert.Equal(t, "Rock", music.Children[0].Name)
	assert.Nil(t, exported.Folders[1].Settings)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, exported))
	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, exported, again)
}

func TestApply_StopsOnInvalidFolder(t *testing.T) {
	ctx := context.Background()
	store := newStore(t).ForUser("")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fx := &Fixture{Folders: []FolderSpec{
		{Name: "Good", Children: []FolderSpec{{Name: "  "}}},
		{Name: "Never"},
	}}

	created, err := NewSeeder(store, logger).Apply(ctx, fx)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 1, created)
}
