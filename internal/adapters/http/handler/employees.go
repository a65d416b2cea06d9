package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/staffboard/internal/adapters/export"
	"github.com/ogurasousui/staffboard/internal/core/employee"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type employeeResponse struct {
	ID            string                 `json:"id"`
	CompanyID     string                 `json:"company_id"`
	Name          string                 `json:"name"`
	Email         string                 `json:"email"`
	Phone         string                 `json:"phone"`
	DocumentID    string                 `json:"document_id"`
	Title         string                 `json:"title"`
	Department    string                 `json:"department"`
	Salary        float64                `json:"salary"`
	AdmissionDate string                 `json:"admission_date"`
	Status        employee.Status        `json:"status"`
	BirthDate     string                 `json:"birth_date"`
	MaritalStatus employee.MaritalStatus `json:"marital_status"`
	Gender        employee.Gender        `json:"gender"`
	Address       employee.Address       `json:"address"`
	Notes         *string                `json:"notes,omitempty"`
	PhotoURL      *string                `json:"photo_url,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

type employeeListResponse struct {
	Employees   []employeeResponse `json:"employees"`
	Departments []string           `json:"departments"`
	Count       int                `json:"count"`
	Total       int                `json:"total"`
	Loading     bool               `json:"loading"`
}

type employeePatchRequest struct {
	Name       *string          `json:"name"`
	Email      *string          `json:"email"`
	Phone      *string          `json:"phone"`
	Title      *string          `json:"title"`
	Department *string          `json:"department"`
	Salary     *float64         `json:"salary"`
	Status     *employee.Status `json:"status"`
	Notes      *string          `json:"notes"`
}

func toEmployeeResponse(e *employee.Employee) employeeResponse {
	return employeeResponse{
		ID:            e.ID,
		CompanyID:     e.CompanyID,
		Name:          e.Name,
		Email:         e.Email,
		Phone:         e.Phone,
		DocumentID:    e.DocumentID,
		Title:         e.Title,
		Department:    e.Department,
		Salary:        e.Salary,
		AdmissionDate: e.AdmissionDate.Format(employee.DateLayout),
		Status:        e.Status,
		BirthDate:     e.BirthDate.Format(employee.DateLayout),
		MaritalStatus: e.MaritalStatus,
		Gender:        e.Gender,
		Address:       e.Address,
		Notes:         e.Notes,
		PhotoURL:      e.PhotoURL,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toEmployeeResponses(list []*employee.Employee) []employeeResponse {
	out := make([]employeeResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toEmployeeResponse(e))
	}
	return out
}

// roster は主体の Workspace から変更操作用の社員一覧を取り出します。
func (h *Handler) roster(c *gin.Context) (*employee.Roster, bool) {
	r, err := principal(c).Workspace.Roster(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return nil, false
	}
	return r, true
}

// view は表示用に社員一覧をストアから読み込み直して取り出します。
func (h *Handler) view(c *gin.Context) (*employee.Roster, bool) {
	r, err := principal(c).Workspace.View(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return nil, false
	}
	return r, true
}

func (h *Handler) listEmployees(c *gin.Context) {
	r, ok := h.view(c)
	if !ok {
		return
	}

	all := r.Employees()
	filtered := employee.Search(all, employee.ListFilter{
		Term:       c.Query("search"),
		Status:     c.Query("status"),
		Department: c.Query("department"),
	})

	c.JSON(http.StatusOK, employeeListResponse{
		Employees:   toEmployeeResponses(filtered),
		Departments: employee.DepartmentsOf(all),
		Count:       len(filtered),
		Total:       len(all),
		Loading:     r.Loading(),
	})
}

func (h *Handler) getEmployee(c *gin.Context) {
	r, ok := h.view(c)
	if !ok {
		return
	}

	e, err := r.Find(c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toEmployeeResponse(e))
}

func (h *Handler) createEmployee(c *gin.Context) {
	var form employee.FormData
	if err := c.ShouldBindJSON(&form); err != nil {
		writeError(c, h.log, errBadRequest)
		return
	}

	r, ok := h.roster(c)
	if !ok {
		return
	}

	if err := r.Create(c.Request.Context(), form); err != nil {
		writeError(c, h.log, err)
		return
	}

	all := r.Employees()
	c.JSON(http.StatusCreated, employeeListResponse{
		Employees:   toEmployeeResponses(all),
		Departments: employee.DepartmentsOf(all),
		Count:       len(all),
		Total:       len(all),
		Loading:     r.Loading(),
	})
}

func (h *Handler) updateEmployee(c *gin.Context) {
	var req employeePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, errBadRequest)
		return
	}

	r, ok := h.roster(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := r.Update(c.Request.Context(), id, employee.Patch{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Title:      req.Title,
		Department: req.Department,
		Salary:     req.Salary,
		Status:     req.Status,
		Notes:      req.Notes,
	}); err != nil {
		writeError(c, h.log, err)
		return
	}

	// 再読み込みに失敗した場合は更新後の値を返せない。
	e, err := r.Find(id)
	if err != nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toEmployeeResponse(e))
}

func (h *Handler) deleteEmployee(c *gin.Context) {
	r, ok := h.roster(c)
	if !ok {
		return
	}

	if err := r.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) exportEmployees(c *gin.Context) {
	r, ok := h.view(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.ExportXLSX(r.Employees(), &buf); err != nil {
		writeError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="employees.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
