package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/staffboard/internal/core/employee"
)

type formOptionsResponse struct {
	Departments     []string                 `json:"departments"`
	States          []string                 `json:"states"`
	MaritalStatuses []employee.MaritalStatus `json:"marital_statuses"`
	Genders         []employee.Gender        `json:"genders"`
	Statuses        []employee.Status        `json:"statuses"`
}

func (h *Handler) formOptions(c *gin.Context) {
	c.JSON(http.StatusOK, formOptionsResponse{
		Departments:     employee.Departments,
		States:          employee.StateCodes,
		MaritalStatuses: []employee.MaritalStatus{employee.MaritalSingle, employee.MaritalMarried, employee.MaritalDivorced, employee.MaritalWidowed},
		Genders:         []employee.Gender{employee.GenderMale, employee.GenderFemale, employee.GenderOther},
		Statuses:        []employee.Status{employee.StatusActive, employee.StatusOnLeave, employee.StatusInactive},
	})
}
