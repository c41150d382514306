package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/CuelineHQ/cueline/internal/db"
	"github.com/CuelineHQ/cueline/internal/http/api"
	controlapi "github.com/CuelineHQ/cueline/internal/http/api/control/endpoints"
	surfaceapi "github.com/CuelineHQ/cueline/internal/http/api/surface/endpoints"
	"github.com/CuelineHQ/cueline/internal/playback"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, store db.Store, manager *playback.Manager) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/control",
	},
		controlapi.RundownModule(store, manager),
		controlapi.PlaybackModule(manager),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/surface",
	},
		surfaceapi.SurfaceModule(manager),
	)
}
