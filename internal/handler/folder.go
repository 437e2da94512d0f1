package handler

import (
	"log/slog"
	"net/http"

	models "tapstampr/internal/domain/models/library"
	libSvc "tapstampr/internal/domain/services/library"
	"tapstampr/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	stores StoreResolver
	logger *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(stores StoreResolver, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		stores: stores,
		logger: logger,
	}
}

// RegisterRoutes mounts the folder routes. The bulk clear route is only
// mounted when allowClear is set.
func (h *FolderHandler) RegisterRoutes(mux *http.ServeMux, allowClear bool) {
	mux.HandleFunc("GET /api/folders", h.ListFolders)
	mux.HandleFunc("POST /api/folders", h.CreateFolder)
	mux.HandleFunc("GET /api/folders/tree", h.GetTree) // Must come before {id} route
	mux.HandleFunc("GET /api/folders/{id}", h.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", h.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.DeleteFolder)
	mux.HandleFunc("POST /api/folders/{id}/move", h.MoveFolder)
	mux.HandleFunc("GET /api/folders/{id}/path", h.GetFolderPath)
	mux.HandleFunc("PUT /api/folders/{id}/settings", h.UpdateSettings)
	mux.HandleFunc("POST /api/folders/{id}/items", h.AddItem)
	mux.HandleFunc("DELETE /api/folders/{id}/items/{itemId}", h.RemoveItem)

	if allowClear {
		mux.HandleFunc("DELETE /api/folders", h.ClearAll)
	}
}

// ListFolders lists root folders, or the sub-folders of ?parent=<id>
// ordered by that parent's settings
// GET /api/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	store := storeFor(h.stores, r)

	parentID := r.URL.Query().Get("parent")
	if parentID == "" {
		folders, err := store.GetRootFolders(r.Context())
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, models.SortFolders(folders, models.DefaultFolderSettings()))
		return
	}

	parent, err := store.GetByID(r.Context(), parentID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	folders, err := store.GetSubFolders(r.Context(), parentID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.SortFolders(folders, parent.Settings))
}

// CreateFolder creates a new folder
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req libSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := storeFor(h.stores, r).CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetTree returns the nested folder tree
// GET /api/folders/tree
func (h *FolderHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := storeFor(h.stores, r).GetTree(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// GetFolder retrieves a folder by ID. With ?sorted=true the items are
// returned in the folder's display order.
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	folder, err := storeFor(h.stores, r).GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if httputil.QueryBool(r, "sorted") {
		folder.Items = models.SortItems(folder.Items, folder.Settings)
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// updateFolderBody is the PATCH body; description null clears
type updateFolderBody struct {
	Name        *string                 `json:"name,omitempty"`
	Description httputil.OptionalString `json:"description"`
}

// moveFolderBody is the move body; null or absent parentFolderId means root
type moveFolderBody struct {
	ParentFolderID httputil.OptionalString `json:"parentFolderId"`
}

// UpdateFolder renames a folder or changes its description
// PATCH /api/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	var body updateFolderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := &libSvc.UpdateFolderRequest{
		Name: body.Name,
		Description: libSvc.OptionalDescription{
			Present: body.Description.Present,
			Value:   body.Description.Value,
		},
	}
	folder, err := storeFor(h.stores, r).UpdateFolder(r.Context(), r.PathValue("id"), req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder and everything below it
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := storeFor(h.stores, r).DeleteFolder(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondNoContent(w)
}

// MoveFolder reparents a folder; a null or absent parentFolderId moves it to the root
// POST /api/folders/{id}/move
func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	var body moveFolderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := storeFor(h.stores, r).MoveToParent(r.Context(), r.PathValue("id"), body.ParentFolderID.Value)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// GetFolderPath returns the breadcrumb names from the root down to the folder
// GET /api/folders/{id}/path
func (h *FolderHandler) GetFolderPath(w http.ResponseWriter, r *http.Request) {
	path, err := storeFor(h.stores, r).GetFolderPath(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string][]string{"path": path})
}

// UpdateSettings changes a folder's display settings
// PUT /api/folders/{id}/settings
func (h *FolderHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req libSvc.UpdateSettingsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := storeFor(h.stores, r).UpdateSettings(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// AddItem adds a video, moment or recording reference to a folder
// POST /api/folders/{id}/items
func (h *FolderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var item models.FolderItem
	if err := httputil.ParseJSON(w, r, &item); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := storeFor(h.stores, r).AddItemToFolder(r.Context(), r.PathValue("id"), item)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// RemoveItem removes an item by its entry id or referenced item id
// DELETE /api/folders/{id}/items/{itemId}
func (h *FolderHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	folder, err := storeFor(h.stores, r).RemoveItemFromFolder(r.Context(), r.PathValue("id"), r.PathValue("itemId"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// ClearAll removes every folder of the caller
// DELETE /api/folders
func (h *FolderHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := storeFor(h.stores, r).ClearAll(r.Context()); err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.logger.Warn("folders cleared over HTTP", "user_id", httputil.GetUserID(r))
	httputil.RespondNoContent(w)
}
