package rest

import (
	"context"
	"net/http"
	"time"

	"promoPilot/domain"
	"promoPilot/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ranking must finish well inside a second; the engine returns a partial
// slate if the pool is too large to rank in time
const selectionDeadline = 800 * time.Millisecond

type (
	SelectionHandler struct {
		validate *validator.Validate
		service  SelectionService
	}

	SelectionService interface {
		Select(ctx context.Context, req domain.SelectionRequest) (domain.SelectionResult, error)
	}

	SelectionRequestBody struct {
		CreatorID         uint                  `json:"creator_id" validate:"required"`
		BehavioralSegment string                `json:"behavioral_segment"`
		Quotas            domain.TierQuota      `json:"quotas"`
		Restrictions      domain.RestrictionSet `json:"restriction_set"`
	}
)

func NewSelectionHandler(service SelectionService) *SelectionHandler {
	return &SelectionHandler{
		validate: validator.New(),
		service:  service,
	}
}

// POST /api/v1/selections
func (h *SelectionHandler) Select(c echo.Context) error {
	var body SelectionRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), selectionDeadline)
	defer cancel()

	start := time.Now()
	result, err := h.service.Select(ctx, domain.SelectionRequest{
		CreatorID:         body.CreatorID,
		BehavioralSegment: body.BehavioralSegment,
		Quotas:            body.Quotas,
		Restrictions:      body.Restrictions,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	metrics.SelectionLatency.Observe(time.Since(start).Seconds())
	metrics.SelectionRequests.Inc()
	metrics.SelectionUnderfills.Add(float64(len(result.UnderfilledTiers)))

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}
