package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/CuelineHQ/cueline/internal/http/api"
	"github.com/CuelineHQ/cueline/internal/http/api/control/packets"
	"github.com/CuelineHQ/cueline/internal/model"
	"github.com/CuelineHQ/cueline/internal/playback"
)

type PlaybackController struct {
	manager *playback.Manager
}

func newPlaybackController(manager *playback.Manager) *PlaybackController {
	return &PlaybackController{manager: manager}
}

// PlaybackModule mounts the playback transport endpoints under a rundown.
func PlaybackModule(manager *playback.Manager) api.Module {
	ctl := newPlaybackController(manager)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/rundowns/:id/playback/activate", ctl.activate)
		c.POST("/rundowns/:id/playback/deactivate", ctl.deactivate)
		c.GET("/rundowns/:id/playback", ctl.snapshot)
		c.POST("/rundowns/:id/playback/play", ctl.play)
		c.POST("/rundowns/:id/playback/pause", ctl.pause)
		c.POST("/rundowns/:id/playback/next", ctl.next)
		c.POST("/rundowns/:id/playback/jump", ctl.jump)
	})
}

func mapSnapshot(snap playback.Snapshot) packets.PlaybackResponse {
	resp := packets.PlaybackResponse{
		RundownID: snap.RundownID,
		Status:    snap.Status,
		Position:  snap.Position,
		Elapsed:   snap.Elapsed,
		Running:   snap.Running,
		Remaining: snap.Remaining,
	}
	if snap.Current != nil {
		cur := mapItem(*snap.Current)
		resp.Current = &cur
	}
	if snap.Status == model.StatusFinished {
		resp.Note = "end of rundown"
	}
	return resp
}

// controllerFor resolves the path id to an active controller; playback
// operations on an inactive rundown are a 409, not an implicit activate.
func (p *PlaybackController) controllerFor(ctx *gin.Context) (*playback.Controller, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	ctl, ok := p.manager.Get(id)
	if !ok {
		return nil, &api.APIError{Code: http.StatusConflict, Message: "rundown is not active"}
	}
	return ctl, nil
}

// POST /rundowns/:id/playback/activate
func (p *PlaybackController) activate(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}

	ctl, err := p.manager.Activate(ctx.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Int("rundown_id", id).Msg("[playback] activate failed")
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "rundown not found"}
	}
	return mapSnapshot(ctl.Snapshot()), nil
}

// POST /rundowns/:id/playback/deactivate
func (p *PlaybackController) deactivate(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	p.manager.Deactivate(id)
	return nil, nil
}

// GET /rundowns/:id/playback
func (p *PlaybackController) snapshot(ctx *gin.Context) (any, *api.APIError) {
	ctl, apiErr := p.controllerFor(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	return mapSnapshot(ctl.Snapshot()), nil
}

// POST /rundowns/:id/playback/play
func (p *PlaybackController) play(ctx *gin.Context) (any, *api.APIError) {
	ctl, apiErr := p.controllerFor(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	return mapSnapshot(ctl.Play()), nil
}

// POST /rundowns/:id/playback/pause
func (p *PlaybackController) pause(ctx *gin.Context) (any, *api.APIError) {
	ctl, apiErr := p.controllerFor(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	return mapSnapshot(ctl.Pause()), nil
}

// POST /rundowns/:id/playback/next
func (p *PlaybackController) next(ctx *gin.Context) (any, *api.APIError) {
	ctl, apiErr := p.controllerFor(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	return mapSnapshot(ctl.Next()), nil
}

// POST /rundowns/:id/playback/jump
func (p *PlaybackController) jump(ctx *gin.Context) (any, *api.APIError) {
	ctl, apiErr := p.controllerFor(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.JumpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	snap, err := ctl.JumpTo(req.Folder, req.Item)
	if err != nil {
		if errors.Is(err, playback.ErrInvalidPosition) {
			return nil, &api.APIError{Code: http.StatusUnprocessableEntity, Message: err.Error()}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return mapSnapshot(snap), nil
}
