// Package handlers exposes the monitor's JSON API over the metrics cache.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/juanmmendes/monitor-sistema/internal/models"
)

// genericError replaces internal error detail in production responses.
const genericError = "internal server error"

// MetricsSource serves the cached usage and process snapshots.
type MetricsSource interface {
	Usage(ctx context.Context) (models.UsageSnapshot, error)
	Processes(ctx context.Context) ([]models.ProcessRecord, error)
}

// InfoSource reports static host facts, fresh on every call.
type InfoSource interface {
	Collect(ctx context.Context) (models.SystemInfo, error)
}

// API bundles the JSON handlers the router mounts under /api.
type API struct {
	metrics    MetricsSource
	info       InfoSource
	log        zerolog.Logger
	production bool
}

// NewAPI wires the handlers. In production mode error responses carry the
// generic message instead of internal detail.
func NewAPI(metrics MetricsSource, info InfoSource, log zerolog.Logger, production bool) *API {
	return &API{metrics: metrics, info: info, log: log, production: production}
}

// Usage serves the current usage snapshot.
func (a *API) Usage(c *gin.Context) {
	snapshot, err := a.metrics.Usage(c.Request.Context())
	if err != nil {
		a.internalError(c, "usage", err)
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: snapshot})
}

// Processes serves the current process snapshot with its count.
func (a *API) Processes(c *gin.Context) {
	records, err := a.metrics.Processes(c.Request.Context())
	if err != nil {
		a.internalError(c, "processes", err)
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: gin.H{
		"processes": records,
		"count":     len(records),
	}})
}

// SystemInfo serves static host facts, computed fresh on every call.
func (a *API) SystemInfo(c *gin.Context) {
	info, err := a.info.Collect(c.Request.Context())
	if err != nil {
		a.internalError(c, "system-info", err)
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: info})
}

// KillProcess acknowledges a kill request without signaling anything. The
// monitor never terminates processes; the endpoint exists so dashboards get
// a well-formed answer instead of a 404.
func (a *API) KillProcess(c *gin.Context) {
	pid := c.Param("pid")
	if parsed, err := strconv.Atoi(pid); err != nil || parsed <= 0 {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   "pid must be a positive integer",
		})
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: gin.H{
		"pid":        pid,
		"terminated": false,
		"message":    "kill request acknowledged; process termination is not performed",
	}})
}

func (a *API) internalError(c *gin.Context, handler string, err error) {
	a.log.Error().Err(err).Str("handler", handler).Msg("request failed")
	message := genericError
	if !a.production {
		message = err.Error()
	}
	c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Error: message})
}
