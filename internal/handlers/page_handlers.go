package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/epeers/holdings-dashboard/internal/models"
	"github.com/epeers/holdings-dashboard/internal/services"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page states rendered by the dashboard template.
const (
	pageStateOK     = "ok"
	pageStateNoData = "no_data"
	pageStateError  = "error"
)

// LoadTemplates parses the embedded page templates for gin's HTML renderer.
func LoadTemplates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

type chartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

type pageData struct {
	State       string
	Message     string
	Selected    string
	Dates       []string
	Dashboard   models.DashboardResponse
	ClassChart  chartData
	EquityChart chartData
}

func toChart(views []models.AllocationView) chartData {
	cd := chartData{
		Labels: make([]string, len(views)),
		Values: make([]float64, len(views)),
	}
	for i, v := range views {
		cd.Labels[i] = v.Label
		cd.Values[i] = v.Value
	}
	return cd
}

// Page handles GET /
// Renders the dashboard for ?date= (default newest). "No data for this date"
// and "could not load data" are rendered as distinct states.
func (h *DashboardHandler) Page(c *gin.Context) {
	date, err := parseDateQuery(c)
	if err != nil {
		c.HTML(http.StatusBadRequest, "dashboard.html", pageData{
			State:   pageStateError,
			Message: "The selected date is not a valid date.",
		})
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	dash, err := h.dashboardSvc.GetDashboard(ctx, date)
	if err != nil {
		status, _ := errorStatus(err)
		_ = c.Error(err)
		c.HTML(status, "dashboard.html", pageData{
			State:   pageStateError,
			Message: "Could not load data: " + err.Error(),
		})
		return
	}

	resp := buildDashboardResponse(h.formatter, dash, wc.GetWarnings())
	data := pageData{
		State:       pageStateOK,
		Dashboard:   resp,
		ClassChart:  toChart(resp.AllocationByClass),
		EquityChart: toChart(resp.EquityBreakdown),
	}
	if !dash.Date.IsZero() {
		data.Selected = dash.Date.Format(models.DateLayout)
	}
	for _, d := range dash.AvailableDates {
		data.Dates = append(data.Dates, d.Format(models.DateLayout))
	}
	if resp.Status == models.StatusNoData {
		data.State = pageStateNoData
		data.Message = resp.Message
	}

	c.HTML(http.StatusOK, "dashboard.html", data)
}
