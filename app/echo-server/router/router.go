package router

import (
	"promoPilot/internal/middleware"
	"promoPilot/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetSelectionRoutes(api *echo.Group, handler *rest.SelectionHandler) {
	selections := api.Group("/selections")
	selections.POST("", handler.Select)
}

func SetReservationRoutes(api *echo.Group, handler *rest.ReservationHandler) {
	reservations := api.Group("/reservations")
	reservations.POST("", handler.Reserve)
	reservations.POST("/cancel", handler.Cancel)
}

func SetSaturationRoutes(api *echo.Group, handler *rest.SaturationHandler) {
	api.GET("/saturation/:creator_id", handler.Get)
}

func SetAdminRoutes(api *echo.Group, handler *rest.AdminHandler) {
	admin := api.Group("/admin", middleware.AuthMiddleware())

	admin.GET("/selection/config", handler.GetConfig)
	admin.PUT("/selection/config", handler.UpsertConfig)
	admin.POST("/feedback/run", handler.RunFeedback)
	admin.POST("/reservations/sweep", handler.RunSweep)
}
