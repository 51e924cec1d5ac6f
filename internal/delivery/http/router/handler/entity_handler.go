// Package handler contains the HTTP handlers for the application.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"bertron/internal/delivery/http/response"
	domainerrors "bertron/internal/domain/errors"
	"bertron/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// EntityHandlerParams holds dependencies for EntityHandler, injected by Fx.
type EntityHandlerParams struct {
	fx.In

	EntityUC usecase.EntityUsecase
	Logger   *slog.Logger
}

// EntityHandler serves the read-only entity query endpoints.
type EntityHandler struct {
	entityUC usecase.EntityUsecase
	logger   *slog.Logger
}

// NewEntityHandler is the constructor for EntityHandler
func NewEntityHandler(params EntityHandlerParams) *EntityHandler {
	return &EntityHandler{
		entityUC: params.EntityUC,
		logger:   params.Logger,
	}
}

// FindRequest represents the request body for an arbitrary structured find.
type FindRequest struct {
	Filter     map[string]any `json:"filter"`
	Projection map[string]any `json:"projection,omitempty"`
	Skip       int64          `json:"skip" validate:"min=0"`
	Limit      int64          `json:"limit" validate:"omitempty,min=1,max=1000"`
	Sort       map[string]any `json:"sort,omitempty"`
}

// NearbyRequest represents the query parameters of a proximity search.
// Required fields are pointers so a missing parameter is distinguishable from
// a legitimate zero coordinate.
type NearbyRequest struct {
	Latitude     *float64 `query:"latitude" validate:"required,min=-90,max=90"`
	Longitude    *float64 `query:"longitude" validate:"required,min=-180,max=180"`
	RadiusMeters *float64 `query:"radius_meters" validate:"required,gt=0"`
	FilterJSON   string   `query:"filter_json"`
}

// BBoxRequest represents the query parameters of a bounding-box search.
type BBoxRequest struct {
	SouthwestLat *float64 `query:"southwest_lat" validate:"required,min=-90,max=90"`
	SouthwestLng *float64 `query:"southwest_lng" validate:"required,min=-180,max=180"`
	NortheastLat *float64 `query:"northeast_lat" validate:"required,min=-90,max=90"`
	NortheastLng *float64 `query:"northeast_lng" validate:"required,min=-180,max=180"`
	FilterJSON   string   `query:"filter_json"`
}

// GetAll handles retrieving every stored entity.
func (h *EntityHandler) GetAll(c echo.Context) error {
	entities, err := h.entityUC.GetAll(c.Request().Context())
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Documents(c, entities, len(entities))
}

// GetByID handles retrieving one entity by its logical id. Ids containing
// slashes (DOIs) must be percent-encoded by the client.
func (h *EntityHandler) GetByID(c echo.Context) error {
	id := c.Param("id")

	ent, err := h.entityUC.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return c.JSON(http.StatusOK, ent)
}

// Find handles arbitrary structured queries against the store.
func (h *EntityHandler) Find(c echo.Context) error {
	var req FindRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid find request body")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.entityUC.Find(c.Request().Context(), &usecase.FindInput{
		Filter:     req.Filter,
		Projection: req.Projection,
		Skip:       req.Skip,
		Limit:      req.Limit,
		Sort:       req.Sort,
	})
	if err != nil {
		return h.handleAppError(c, err)
	}

	// Two-mode contract: raw projected documents when the caller asked for
	// a field subset, reconstructed entities otherwise.
	if result.Mode == usecase.FindModeRaw {
		return response.Documents(c, result.Documents, result.Count())
	}

	return response.Documents(c, result.Entities, result.Count())
}

// Nearby handles spherical proximity searches around a point.
func (h *EntityHandler) Nearby(c echo.Context) error {
	var req NearbyRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid nearby query parameters")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	extra, err := parseFilterJSON(req.FilterJSON)
	if err != nil {
		return response.AppError(c, domainerrors.ErrInvalidFilter.WithDetails(err.Error()))
	}

	entities, err := h.entityUC.FindNearby(c.Request().Context(),
		*req.Latitude, *req.Longitude, *req.RadiusMeters, extra)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Documents(c, entities, len(entities))
}

// BBox handles rectangular containment searches.
func (h *EntityHandler) BBox(c echo.Context) error {
	var req BBoxRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid bounding box query parameters")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	extra, err := parseFilterJSON(req.FilterJSON)
	if err != nil {
		return response.AppError(c, domainerrors.ErrInvalidFilter.WithDetails(err.Error()))
	}

	entities, err := h.entityUC.FindInBBox(c.Request().Context(),
		*req.SouthwestLat, *req.SouthwestLng, *req.NortheastLat, *req.NortheastLng, extra)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Documents(c, entities, len(entities))
}

// parseFilterJSON decodes the optional serialized filter of the geo
// endpoints. Malformed JSON is a client error.
func parseFilterJSON(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}

	var filter map[string]any
	if err := json.Unmarshal([]byte(raw), &filter); err != nil {
		return nil, errors.Wrap(err, "parse filter_json")
	}

	return filter, nil
}

// handleAppError handles application errors
func (h *EntityHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.AppError(c, appErr)
	}

	return errors.WithStack(err)
}
