package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/staffboard/internal/core/employee"
)

type dashboardResponse struct {
	Period      employee.Period            `json:"period"`
	Overall     employee.Stats             `json:"overall"`
	PeriodStats employee.Stats             `json:"period_stats"`
	Chart       []employee.Bucket          `json:"chart"`
	Departments []employee.DepartmentCount `json:"departments"`
	Recent      []employeeResponse         `json:"recent"`
	StatusMix   []employee.StatusCount     `json:"status_mix"`
	Loading     bool                       `json:"loading"`
}

func toDashboardResponse(d employee.Dashboard, loading bool) dashboardResponse {
	return dashboardResponse{
		Period:      d.Period,
		Overall:     d.Overall,
		PeriodStats: d.PeriodStats,
		Chart:       d.Chart,
		Departments: d.Departments,
		Recent:      toEmployeeResponses(d.Recent),
		StatusMix:   d.StatusMix,
		Loading:     loading,
	}
}

func (h *Handler) dashboard(c *gin.Context) {
	period, err := employee.ParsePeriod(c.Query("period"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	r, ok := h.view(c)
	if !ok {
		return
	}

	d := employee.BuildDashboard(r.Employees(), period, r.Now())
	c.JSON(http.StatusOK, toDashboardResponse(d, r.Loading()))
}
