package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/CuelineHQ/cueline/internal/db"
	"github.com/CuelineHQ/cueline/internal/http/api"
	"github.com/CuelineHQ/cueline/internal/http/api/control/packets"
	"github.com/CuelineHQ/cueline/internal/model"
	"github.com/CuelineHQ/cueline/internal/playback"
)

type RundownController struct {
	store   db.Store
	manager *playback.Manager
}

func newRundownController(store db.Store, manager *playback.Manager) *RundownController {
	return &RundownController{store: store, manager: manager}
}

// RundownModule mounts all /rundowns document endpoints.
func RundownModule(store db.Store, manager *playback.Manager) api.Module {
	ctl := newRundownController(store, manager)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/rundowns", ctl.listRundowns)
		c.POST("/rundowns", ctl.createRundown)
		c.GET("/rundowns/:id", ctl.getRundown)
		c.PUT("/rundowns/:id", ctl.updateRundown)
		c.DELETE("/rundowns/:id", ctl.deleteRundown)

		c.POST("/rundowns/:id/folders", ctl.createFolder)
		c.PUT("/rundowns/:id/folders", ctl.reorderFolders)
		c.PUT("/rundowns/:id/folders/:folder_id", ctl.updateFolder)
		c.DELETE("/rundowns/:id/folders/:folder_id", ctl.deleteFolder)

		c.POST("/rundowns/:id/folders/:folder_id/items", ctl.createItem)
		c.PUT("/rundowns/:id/folders/:folder_id/items", ctl.reorderItems)
		c.PUT("/rundowns/:id/folders/:folder_id/items/:item_id", ctl.updateItem)
		c.DELETE("/rundowns/:id/folders/:folder_id/items/:item_id", ctl.deleteItem)
	})
}

func mapRundown(r model.Rundown) packets.RundownResponse {
	folders := make([]packets.FolderResponse, len(r.Folders))
	for i, f := range r.Folders {
		folders[i] = mapFolder(f)
	}
	return packets.RundownResponse{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Folders:   folders,
	}
}

func mapFolder(f model.Folder) packets.FolderResponse {
	items := make([]packets.ItemResponse, len(f.Items))
	for i, it := range f.Items {
		items[i] = mapItem(it)
	}
	return packets.FolderResponse{
		ID:       f.ID,
		Position: f.Position,
		Title:    f.Title,
		Items:    items,
	}
}

func mapItem(it model.Item) packets.ItemResponse {
	return packets.ItemResponse{
		ID:          it.ID,
		Position:    it.Position,
		Title:       it.Title,
		Description: it.Description,
		Duration:    it.Duration,
		Color:       it.Color,
		Icon:        it.Icon,
		Urgency:     it.Urgency,
		Reminder:    it.Reminder,
	}
}

func pathID(ctx *gin.Context, name string) (int, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, &api.APIError{Code: http.StatusBadRequest, Message: "invalid " + name}
	}
	return id, nil
}

// ===== Rundown handlers =====

func (r *RundownController) listRundowns(ctx *gin.Context) (any, *api.APIError) {
	all, err := r.store.ListRundowns()
	if err != nil {
		log.Error().Err(err).Msg("[rundown] list: could not list rundowns")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list rundowns"}
	}

	out := make([]packets.RundownResponse, 0, len(all))
	for _, rd := range all {
		out = append(out, mapRundown(rd))
	}
	return out, nil
}

func (r *RundownController) createRundown(ctx *gin.Context) (any, *api.APIError) {
	var req packets.CreateRundownRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	rd, err := r.store.CreateRundown(req.Name)
	if err != nil {
		log.Error().Err(err).Msg("[rundown] create: could not create rundown")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create rundown"}
	}
	return mapRundown(rd), nil
}

func (r *RundownController) getRundown(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	rd, err := r.store.GetRundownByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "not found"}
	}
	return mapRundown(rd), nil
}

func (r *RundownController) updateRundown(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdateRundownRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := r.store.UpdateRundown(id, req.Name); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}

	full, err := r.store.GetRundownByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "not found"}
	}
	return mapRundown(full), nil
}

// deleteRundown removes the document and tears down any live playback for it
// before the row goes away, so no clock keeps ticking against a discarded
// rundown.
func (r *RundownController) deleteRundown(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}

	r.manager.Delete(ctx.Request.Context(), id)

	if err := r.store.DeleteRundown(id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return nil, nil
}

// ===== Folder handlers =====

func (r *RundownController) createFolder(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.CreateFolderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	f, err := r.store.CreateFolder(id, req.Title)
	if err != nil {
		log.Error().Err(err).Msg("[rundown] create folder failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create folder"}
	}

	r.manager.Refresh(id)
	return mapFolder(f), nil
}

func (r *RundownController) updateFolder(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	folderID, apiErr := pathID(ctx, "folder_id")
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdateFolderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := r.store.UpdateFolder(folderID, req.Title); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}

	r.manager.Refresh(id)
	return nil, nil
}

func (r *RundownController) deleteFolder(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	folderID, apiErr := pathID(ctx, "folder_id")
	if apiErr != nil {
		return nil, apiErr
	}

	if err := r.store.DeleteFolder(folderID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}

	r.manager.Refresh(id)
	return nil, nil
}

func (r *RundownController) reorderFolders(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := r.store.ReorderFolders(id, req.IDs); err != nil {
		log.Error().Err(err).Msg("[rundown] reorder folders failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not reorder folders"}
	}

	r.manager.Refresh(id)
	return r.getRundown(ctx)
}

// ===== Item handlers =====

func (r *RundownController) createItem(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	folderID, apiErr := pathID(ctx, "folder_id")
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.CreateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	it, err := r.store.CreateItem(folderID, req.Title, req.Description, req.Duration,
		req.Color, req.Icon, req.Urgency, req.Reminder)
	if err != nil {
		log.Error().Err(err).Msg("[rundown] create item failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create item"}
	}

	r.manager.Refresh(id)
	return mapItem(it), nil
}

func (r *RundownController) updateItem(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	itemID, apiErr := pathID(ctx, "item_id")
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := r.store.UpdateItem(itemID, req.Title, req.Description, req.Duration,
		req.Color, req.Icon, req.Urgency, req.Reminder); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}

	r.manager.Refresh(id)
	return nil, nil
}

func (r *RundownController) deleteItem(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	itemID, apiErr := pathID(ctx, "item_id")
	if apiErr != nil {
		return nil, apiErr
	}

	if err := r.store.DeleteItem(itemID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}

	r.manager.Refresh(id)
	return nil, nil
}

func (r *RundownController) reorderItems(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	folderID, apiErr := pathID(ctx, "folder_id")
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := r.store.ReorderItems(folderID, req.IDs); err != nil {
		log.Error().Err(err).Msg("[rundown] reorder items failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not reorder items"}
	}

	r.manager.Refresh(id)
	return r.getRundown(ctx)
}
