package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tapstampr/internal/config"
	"tapstampr/internal/domain"
	models "tapstampr/internal/domain/models/library"
	"tapstampr/internal/httputil"
	"tapstampr/internal/repository/memory"
	"tapstampr/internal/service/library"
)

const testBaseKey = "@tapstampr/folders"

type testServer struct {
	mux *http.ServeMux
	kv  *memory.KVStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv := memory.NewKVStore()
	ns := library.NewNamespaces(kv, nil, testBaseKey, logger)

	mux := http.NewServeMux()
	NewFolderHandler(ns, logger).RegisterRoutes(mux, true)
	mux.HandleFunc("GET /health", HealthCheck)
	return &testServer{mux: mux, kv: kv}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) create(t *testing.T, body string) models.Folder {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/folders", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Folder](t, rec)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestFolderLifecycle(t *testing.T) {
	s := newTestServer(t)

	music := s.create(t, `{"name":"Music"}`)
	rock := s.create(t, `{"name":"Rock","parentFolderId":"`+music.ID+`"}`)
	jazz := s.create(t, `{"name":"jazz","parentFolderId":"`+music.ID+`"}`)

	rec := s.do(t, http.MethodGet, "/api/folders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	roots := decode[[]models.Folder](t, rec)
	require.Len(t, roots, 1)
	assert.Equal(t, music.ID, roots[0].ID)

	rec = s.do(t, http.MethodPut, "/api/folders/"+music.ID+"/settings", `{"sortBy":"name","sortOrder":"asc"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/folders?parent="+music.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	subs := decode[[]models.Folder](t, rec)
	require.Len(t, subs, 2)
	assert.Equal(t, jazz.ID, subs[0].ID)
	assert.Equal(t, rock.ID, subs[1].ID)

	rec = s.do(t, http.MethodGet, "/api/folders/"+jazz.ID+"/path", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"path":["Music","jazz"]}`, rec.Body.String())

	rec = s.do(t, http.MethodPatch, "/api/folders/"+jazz.ID, `{"name":"Jazz","description":"smooth"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.Folder](t, rec)
	assert.Equal(t, "Jazz", updated.Name)
	assert.Equal(t, "smooth", updated.Description)

	rec = s.do(t, http.MethodGet, "/api/folders/tree", "")
	require.Equal(t, http.StatusOK, rec.Code)
	tree := decode[models.TreeNode](t, rec)
	require.Len(t, tree.Folders, 1)
	assert.Len(t, tree.Folders[0].Folders, 2)

	rec = s.do(t, http.MethodDelete, "/api/folders/"+music.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/folders/"+rock.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	rec = s.do(t, http.MethodDelete, "/api/folders/"+music.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMoveFolder(t *testing.T) {
	s := newTestServer(t)
	a := s.create(t, `{"name":"A"}`)
	b := s.create(t, `{"name":"B","parentFolderId":"`+a.ID+`"}`)

	rec := s.do(t, http.MethodPost, "/api/folders/"+a.ID+"/move", `{"parentFolderId":"`+b.ID+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/folders/"+a.ID+"/move", `{"parentFolderId":"`+a.ID+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/folders/"+b.ID+"/move", `{"parentFolderId":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	moved := decode[models.Folder](t, rec)
	assert.Nil(t, moved.ParentFolderID)

	rec = s.do(t, http.MethodPost, "/api/folders/"+b.ID+"/move", `{"parentFolderId":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItems(t *testing.T) {
	s := newTestServer(t)
	f := s.create(t, `{"name":"Clips"}`)

	rec := s.do(t, http.MethodPost, "/api/folders/"+f.ID+"/items", `{"type":"youtube_video","itemId":"b","addedAt":"2024-01-01T00:00:00.000Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/api/folders/"+f.ID+"/items", `{"type":"moment","itemId":"a","addedAt":"2024-01-02T00:00:00.000Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/folders/"+f.ID+"?sorted=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.Folder](t, rec)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "a", got.Items[0].ItemID, "default order is newest first")

	rec = s.do(t, http.MethodDelete, "/api/folders/"+f.ID+"/items/b", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[models.Folder](t, rec)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "a", got.Items[0].ItemID)

	rec = s.do(t, http.MethodPost, "/api/folders/"+f.ID+"/items", `{"itemId":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateFolder_DescriptionStates(t *testing.T) {
	s := newTestServer(t)
	f := s.create(t, `{"name":"A","description":"first"}`)

	rec := s.do(t, http.MethodPatch, "/api/folders/"+f.ID, `{"name":"B"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "first", decode[models.Folder](t, rec).Description)

	rec = s.do(t, http.MethodPatch, "/api/folders/"+f.ID, `{"description":null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[models.Folder](t, rec)
	assert.Equal(t, "B", got.Name)
	assert.Empty(t, got.Description)
}

func TestAddItem_FolderFull(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := library.NewNamespaces(s.kv, nil, testBaseKey, logger).ForUser("")

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	full := models.Folder{ID: "full", Name: "Full", CreatedAt: now, UpdatedAt: now}
	for i := 0; i < config.MaxFolderItemsPerFolder; i++ {
		full.Items = append(full.Items, models.FolderItem{
			ID: fmt.Sprintf("i%d", i), Type: models.ItemTypeMoment, ItemID: fmt.Sprintf("m%d", i), AddedAt: now,
		})
	}
	require.NoError(t, store.SaveAll(ctx, []models.Folder{full}))

	rec := s.do(t, http.MethodPost, "/api/folders/full/items", `{"type":"moment","itemId":"one-more"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t)
	f := s.create(t, `{"name":"A"}`)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"empty body", http.MethodPost, "/api/folders", "", http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/folders", `{"name":"x","color":"red"}`, http.StatusBadRequest},
		{"blank name", http.MethodPost, "/api/folders", `{"name":"  "}`, http.StatusBadRequest},
		{"structural update", http.MethodPatch, "/api/folders/" + f.ID, `{"parentFolderId":"x"}`, http.StatusBadRequest},
		{"empty update", http.MethodPatch, "/api/folders/" + f.ID, `{}`, http.StatusBadRequest},
		{"bad sort", http.MethodPut, "/api/folders/" + f.ID + "/settings", `{"sortBy":"size"}`, http.StatusBadRequest},
		{"missing folder", http.MethodPatch, "/api/folders/missing", `{"name":"x"}`, http.StatusNotFound},
		{"unknown parent listing", http.MethodGet, "/api/folders?parent=missing", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestMalformedStorageResponds500(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.kv.Set(context.Background(), testBaseKey, "{broken"))

	rec := s.do(t, http.MethodGet, "/api/folders/tree", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "stored folders are malformed", body["detail"])
	assert.NotEmpty(t, body["reason"])
}

func TestClearAll(t *testing.T) {
	s := newTestServer(t)
	s.create(t, `{"name":"A"}`)

	rec := s.do(t, http.MethodDelete, "/api/folders", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, s.kv.Keys())
}

func TestPerUserNamespaces(t *testing.T) {
	s := newTestServer(t)

	post := httptest.NewRequest(http.MethodPost, "/api/folders", bytes.NewBufferString(`{"name":"Mine"}`))
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httputil.WithUserID(post, "alice"))
	require.Equal(t, http.StatusCreated, rec.Code)

	get := httptest.NewRequest(http.MethodGet, "/api/folders", nil)
	rec = httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httputil.WithUserID(get, "bob"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	_, found, err := s.kv.Get(context.Background(), testBaseKey+"/alice")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestHandleError_StatusMapping(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrValidation, http.StatusBadRequest},
		{&domain.InvalidOperationError{Message: "cycle"}, http.StatusBadRequest},
		{domain.NewNotFound("folder", "x"), http.StatusNotFound},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrMalformedData, http.StatusInternalServerError},
		{domain.ErrStorage, http.StatusServiceUnavailable},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, logger, tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
