package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/ecagate/internal/build"
	"github.com/looplj/ecagate/internal/objects"
	"github.com/looplj/ecagate/internal/server/biz"
)

type CatalogStatus interface {
	Projects() []objects.Project
	LastUpdate() time.Time
}

type CacheRefresher interface {
	Refresh(ctx context.Context) error
}

type SystemHandlersParams struct {
	fx.In

	ProjectService *biz.ProjectService
	CacheService   *biz.CacheService
}

type SystemHandlers struct {
	Catalog CatalogStatus
	Caches  CacheRefresher
}

func NewSystemHandlers(params SystemHandlersParams) *SystemHandlers {
	return &SystemHandlers{
		Catalog: params.ProjectService,
		Caches:  params.CacheService,
	}
}

type HealthResponse struct {
	Status           string     `json:"status"`
	Version          string     `json:"version"`
	Projects         int        `json:"projects"`
	CatalogUpdatedAt *time.Time `json:"catalog_updated_at,omitempty"`
}

// Health reports degraded until the project catalog has been loaded once.
func (h *SystemHandlers) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Version:  build.Version,
		Projects: len(h.Catalog.Projects()),
	}

	if updated := h.Catalog.LastUpdate(); !updated.IsZero() {
		resp.CatalogUpdatedAt = &updated
	} else {
		resp.Status = "degraded"
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SystemHandlers) BuildInfo(c *gin.Context) {
	c.JSON(http.StatusOK, build.GetBuildInfo())
}

// RefreshCaches reloads the project catalog and drops cached accounts and bots.
func (h *SystemHandlers) RefreshCaches(c *gin.Context) {
	if err := h.Caches.Refresh(c.Request.Context()); err != nil {
		JSONError(c, http.StatusBadGateway, err)
		return
	}

	resp := HealthResponse{
		Status:   "refreshed",
		Version:  build.Version,
		Projects: len(h.Catalog.Projects()),
	}

	if updated := h.Catalog.LastUpdate(); !updated.IsZero() {
		resp.CatalogUpdatedAt = &updated
	}

	c.JSON(http.StatusOK, resp)
}
