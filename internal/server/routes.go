package server

import (
	"github.com/danielgtaylor/huma/v2"

	v1 "github.com/quickcollab/quickcollab/internal/api/v1"
	"github.com/quickcollab/quickcollab/internal/auth"
	"github.com/quickcollab/quickcollab/internal/realtime"
	"github.com/quickcollab/quickcollab/internal/store/postgres"
)

func registerAuthRoutes(api huma.API, authSvc *auth.Service) {
	v1.RegisterAuthRoutes(api, authSvc)
}

func registerAPIRoutes(api huma.API, store *postgres.Store, coordinator *realtime.Coordinator) {
	v1.RegisterBoardRoutes(api, store, coordinator)
	v1.RegisterTaskRoutes(api, store, coordinator)
	v1.RegisterCommentRoutes(api, store, coordinator)
}
