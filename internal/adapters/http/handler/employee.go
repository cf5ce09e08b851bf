package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/attendance-clean-arch/internal/core/employee"
)

// EmployeeHandler は社員管理エンドポイントの HTTP 実装です。
type EmployeeHandler struct {
	svc employee.UseCase
}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler(svc employee.UseCase) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

type createEmployeeRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
	Department  string `json:"department"`
}

type updateEmployeeRequest struct {
	DisplayName *string `json:"display_name"`
	Department  *string `json:"department"`
}

type employeeResponse struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
	DisplayName string `json:"display_name"`
	Department  string `json:"department,omitempty"`
	BadgeCode   string `json:"badge_code"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type listEmployeesResponse struct {
	Employees     []employeeResponse `json:"employees"`
	NextPageToken string             `json:"next_page_token,omitempty"`
}

// CreateEmployee は社員を登録し、導出されたバッジコードを含めて返します。
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.svc.CreateEmployee(c.Request.Context(), employee.CreateEmployeeInput{
		PhoneNumber: req.PhoneNumber,
		DisplayName: req.DisplayName,
		Department:  req.Department,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toEmployeeResponse(created))
}

// UpdateEmployee は社員情報を更新します。表示名が変わった場合は
// バッジコードも同時に再発行されます。
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	var req updateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.svc.UpdateEmployee(c.Request.Context(), employee.UpdateEmployeeInput{
		ID:          c.Param("id"),
		DisplayName: req.DisplayName,
		Department:  req.Department,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEmployeeResponse(updated))
}

// RegenerateBadgeCode はバッジコードを再発行します。
func (h *EmployeeHandler) RegenerateBadgeCode(c *gin.Context) {
	updated, err := h.svc.RegenerateBadgeCode(c.Request.Context(), employee.RegenerateBadgeCodeInput{
		ID: c.Param("id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEmployeeResponse(updated))
}

// DeactivateEmployee は社員を無効化します。
func (h *EmployeeHandler) DeactivateEmployee(c *gin.Context) {
	updated, err := h.svc.DeactivateEmployee(c.Request.Context(), employee.DeactivateEmployeeInput{
		ID: c.Param("id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEmployeeResponse(updated))
}

// ReactivateEmployee は社員を再有効化します。
func (h *EmployeeHandler) ReactivateEmployee(c *gin.Context) {
	updated, err := h.svc.ReactivateEmployee(c.Request.Context(), employee.ReactivateEmployeeInput{
		ID: c.Param("id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEmployeeResponse(updated))
}

// GetEmployee は社員を取得します。
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	found, err := h.svc.GetEmployee(c.Request.Context(), employee.GetEmployeeInput{
		ID: c.Param("id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEmployeeResponse(found))
}

// ListEmployees は社員の一覧を取得します。
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	pageSize := 0
	if raw := c.Query("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, employee.ErrInvalidPageSize)
			return
		}
		pageSize = parsed
	}

	var statusPtr *employee.Status
	if raw := c.Query("status"); raw != "" {
		status := employee.Status(raw)
		statusPtr = &status
	}

	result, err := h.svc.ListEmployees(c.Request.Context(), employee.ListEmployeesInput{
		PageSize:  pageSize,
		PageToken: c.Query("page_token"),
		Status:    statusPtr,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	employees := make([]employeeResponse, 0, len(result.Employees))
	for _, emp := range result.Employees {
		employees = append(employees, toEmployeeResponse(emp))
	}

	c.JSON(http.StatusOK, listEmployeesResponse{
		Employees:     employees,
		NextPageToken: result.NextPageToken,
	})
}

func toEmployeeResponse(emp *employee.Employee) employeeResponse {
	return employeeResponse{
		ID:          emp.ID,
		PhoneNumber: emp.PhoneNumber,
		DisplayName: emp.DisplayName,
		Department:  emp.Department,
		BadgeCode:   emp.BadgeCode,
		Status:      string(emp.Status),
		CreatedAt:   emp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   emp.UpdatedAt.Format(time.RFC3339),
	}
}
