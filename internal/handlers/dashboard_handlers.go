package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/epeers/holdings-dashboard/internal/engine"
	"github.com/epeers/holdings-dashboard/internal/models"
	"github.com/epeers/holdings-dashboard/internal/repository"
	"github.com/epeers/holdings-dashboard/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// DashboardHandler serves the dashboard API and page
type DashboardHandler struct {
	dashboardSvc *services.DashboardService
	formatter    engine.Formatter
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardSvc *services.DashboardService, formatter engine.Formatter) *DashboardHandler {
	return &DashboardHandler{
		dashboardSvc: dashboardSvc,
		formatter:    formatter,
	}
}

// parseDateQuery reads the optional ?date= parameter. Absent means zero time.
func parseDateQuery(c *gin.Context) (time.Time, error) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		return time.Time{}, nil
	}
	return models.ParseDate(raw)
}

// errorStatus maps a service error to its HTTP status and error code.
func errorStatus(err error) (int, string) {
	var unavailable *repository.UnavailableError
	var missing *repository.MissingColumnError
	switch {
	case errors.As(err, &unavailable):
		return http.StatusBadGateway, "repository_unavailable"
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity, "missing_column"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	_ = c.Error(err)
	c.JSON(status, models.ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}

// Dates handles GET /api/dates
// @Summary List snapshot dates
// @Description Distinct dates in the account snapshot table, newest first
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.DatesResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/dates [get]
func (h *DashboardHandler) Dates(c *gin.Context) {
	dates, err := h.dashboardSvc.AvailableDates(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.DatesResponse{
		Table: h.dashboardSvc.Tables().Accounts,
		Dates: flexibleDates(dates),
	})
}

// Dashboard handles GET /api/dashboard
// @Summary Get dashboard metrics for a date
// @Description Total value, weighted beta, cash percentage, allocations and accounts for one snapshot date.
// @Description A date without usable rows returns status "no_data", not an error.
// @Tags dashboard
// @Produce json
// @Param date query string false "Snapshot date (YYYY-MM-DD); defaults to the newest"
// @Success 200 {object} models.DashboardResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/dashboard [get]
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	date, err := parseDateQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "date must be in YYYY-MM-DD format",
		})
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	dash, err := h.dashboardSvc.GetDashboard(ctx, date)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildDashboardResponse(h.formatter, dash, wc.GetWarnings()))
}

// History handles GET /api/history
// @Summary Get grouped balances over time
// @Description One point per snapshot date, oldest first, split by account group (or asset class)
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.HistoryResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/history [get]
func (h *DashboardHandler) History(c *gin.Context) {
	ctx, wc := services.NewWarningContext(c.Request.Context())
	points, err := h.dashboardSvc.GetHistory(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	if points == nil {
		points = []models.HistoryPoint{}
	}

	c.JSON(http.StatusOK, models.HistoryResponse{
		Points:   points,
		Warnings: wc.GetWarnings(),
	})
}

// Refresh handles POST /api/refresh
// @Summary Drop cached tables
// @Description Forces the next request to read every table from the data source
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} models.ErrorResponse
// @Router /api/refresh [post]
func (h *DashboardHandler) Refresh(c *gin.Context) {
	if err := h.dashboardSvc.Refresh(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}
