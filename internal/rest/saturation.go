package rest

import (
	"context"
	"net/http"
	"strconv"

	"promoPilot/domain"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	SaturationHandler struct {
		service SaturationService
	}

	SaturationService interface {
		Score(ctx context.Context, creatorID uint) (domain.SaturationSnapshot, error)
	}
)

func NewSaturationHandler(service SaturationService) *SaturationHandler {
	return &SaturationHandler{service: service}
}

// GET /api/v1/saturation/:creator_id
func (h *SaturationHandler) Get(c echo.Context) error {
	creatorID, err := strconv.ParseUint(c.Param("creator_id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid creator_id"})
	}

	snapshot, err := h.service.Score(c.Request().Context(), uint(creatorID))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(snapshot))
}
