package rest

import (
	"context"
	"net/http"
	"time"

	"promoPilot/business/reservation"
	"promoPilot/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	ReservationHandler struct {
		validate *validator.Validate
		service  ReservationService
	}

	ReservationService interface {
		Reserve(ctx context.Context, creatorID uint, items []reservation.ReservationItem) ([]domain.ReservationResult, error)
		Cancel(ctx context.Context, creatorID uint, captionID uint64) (bool, error)
	}

	ReservationItemBody struct {
		CaptionID         uint64    `json:"caption_id" validate:"required"`
		ScheduledSendDate time.Time `json:"scheduled_send_date" validate:"required"`
	}

	ReserveRequest struct {
		CreatorID uint                  `json:"creator_id" validate:"required"`
		Items     []ReservationItemBody `json:"items" validate:"required,min=1,max=200,dive"`
	}

	CancelRequest struct {
		CreatorID uint   `json:"creator_id" validate:"required"`
		CaptionID uint64 `json:"caption_id" validate:"required"`
	}
)

func NewReservationHandler(service ReservationService) *ReservationHandler {
	return &ReservationHandler{
		validate: validator.New(),
		service:  service,
	}
}

// POST /api/v1/reservations
func (h *ReservationHandler) Reserve(c echo.Context) error {
	var req ReserveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	items := make([]reservation.ReservationItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, reservation.ReservationItem{
			CaptionID:         item.CaptionID,
			ScheduledSendDate: item.ScheduledSendDate,
		})
	}

	results, err := h.service.Reserve(c.Request().Context(), req.CreatorID, items)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	// conflicts ride along per item; the batch itself succeeded
	return c.JSON(http.StatusOK, fres.Response.StatusOK(results))
}

// POST /api/v1/reservations/cancel
func (h *ReservationHandler) Cancel(c echo.Context) error {
	var req CancelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ok, err := h.service.Cancel(c.Request().Context(), req.CreatorID, req.CaptionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "no active reservation for caption"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("reservation cancelled"))
}
