package rest

import (
	"net/http"

	"ecomRecommender/pkg/cache"
	"ecomRecommender/pkg/logger"

	"github.com/labstack/echo/v4"
)

// CacheAdminHandler is the maintenance surface for the in-process result
// cache. The store has no scheduled eviction, so the sweep endpoint is the
// only way to reclaim memory from expired entries before their next lookup.
type CacheAdminHandler struct {
	store *cache.Store
}

func NewCacheAdminHandler(store *cache.Store) *CacheAdminHandler {
	return &CacheAdminHandler{store: store}
}

// GET /api/v1/admin/cache/stats
func (h *CacheAdminHandler) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"enabled": h.store.Enabled(),
		"entries": h.store.Size(),
	})
}

// POST /api/v1/admin/cache/sweep
func (h *CacheAdminHandler) Sweep(c echo.Context) error {
	removed := h.store.RemoveExpired()
	logger.Info("Cache sweep completed", "removed", removed, "remaining", h.store.Size())

	return c.JSON(http.StatusOK, echo.Map{
		"removed":   removed,
		"remaining": h.store.Size(),
	})
}

// POST /api/v1/admin/cache/clear
func (h *CacheAdminHandler) Clear(c echo.Context) error {
	h.store.Clear()
	logger.Info("Cache cleared")

	return c.JSON(http.StatusOK, echo.Map{
		"entries": h.store.Size(),
	})
}
