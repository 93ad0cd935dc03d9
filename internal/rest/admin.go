package rest

import (
	"context"
	"net/http"

	"promoPilot/business/bandit"
	"promoPilot/business/feedback"
	"promoPilot/business/reservation"
	"promoPilot/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	AdminHandler struct {
		validate *validator.Validate
		cfgRepo  bandit.ConfigRepository
		feedback FeedbackRunner
		sweeper  SweepRunner
	}

	FeedbackRunner interface {
		Run(ctx context.Context) (feedback.RunResult, error)
	}

	SweepRunner interface {
		Sweep(ctx context.Context) reservation.SweepResult
	}
)

func NewAdminHandler(cfgRepo bandit.ConfigRepository, fb FeedbackRunner, sw SweepRunner) *AdminHandler {
	return &AdminHandler{
		validate: validator.New(),
		cfgRepo:  cfgRepo,
		feedback: fb,
		sweeper:  sw,
	}
}

// GET /api/v1/admin/selection/config?segment=price-insensitive
func (h *AdminHandler) GetConfig(c echo.Context) error {
	ctx := c.Request().Context()
	segment := c.QueryParam("segment")
	if segment == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "segment is required"})
	}

	cfg, ok, err := h.cfgRepo.GetConfig(ctx, segment)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "config not found"})
	}

	return c.JSON(http.StatusOK, cfg)
}

// PUT /api/v1/admin/selection/config
func (h *AdminHandler) UpsertConfig(c echo.Context) error {
	var cfg domain.SelectionConfig
	if err := c.Bind(&cfg); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if cfg.Segment == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "segment is required"})
	}

	if err := h.cfgRepo.UpsertConfig(c.Request().Context(), cfg); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("config saved"))
}

// POST /api/v1/admin/feedback/run — manual trigger of the periodic loop
func (h *AdminHandler) RunFeedback(c echo.Context) error {
	result, err := h.feedback.Run(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

// POST /api/v1/admin/reservations/sweep — manual trigger of the sweeper
func (h *AdminHandler) RunSweep(c echo.Context) error {
	result := h.sweeper.Sweep(c.Request().Context())
	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}
