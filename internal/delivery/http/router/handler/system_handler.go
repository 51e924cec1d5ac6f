package handler

import (
	"net/http"
	"runtime/debug"

	"bertron/config"
	"bertron/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// SystemHandlerParams holds dependencies for SystemHandler, injected by Fx.
type SystemHandlerParams struct {
	fx.In

	Config   *config.Config
	EntityUC usecase.EntityUsecase
}

// SystemHandler serves the health and version endpoints.
type SystemHandler struct {
	cfg      *config.Config
	entityUC usecase.EntityUsecase
}

// NewSystemHandler is the constructor for SystemHandler
func NewSystemHandler(params SystemHandlerParams) *SystemHandler {
	return &SystemHandler{
		cfg:      params.Config,
		entityUC: params.EntityUC,
	}
}

// HealthResponse reports whether the web server is up and whether it can
// reach the database.
type HealthResponse struct {
	WebServer bool `json:"web_server"`
	Database  bool `json:"database"`
}

// VersionResponse reports the API and entity-schema version identifiers.
type VersionResponse struct {
	API           *string `json:"api"`
	BertronSchema *string `json:"bertron_schema"`
}

// Health probes database reachability. The web server is trivially up if this
// handler runs at all.
func (h *SystemHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		WebServer: true,
		Database:  h.entityUC.DatabaseHealthy(c.Request().Context()),
	})
}

// Version reports version identifiers, null when unknown.
func (h *SystemHandler) Version(c echo.Context) error {
	resp := VersionResponse{}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version := info.Main.Version
		resp.API = &version
	}

	if h.cfg.Schema != nil && h.cfg.Schema.Version != "" {
		version := h.cfg.Schema.Version
		resp.BertronSchema = &version
	}

	return c.JSON(http.StatusOK, resp)
}
