package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/attendance-clean-arch/internal/core/attendance"
)

// AttendanceHandler は台帳参照エンドポイントの HTTP 実装です。
type AttendanceHandler struct {
	svc attendance.UseCase
}

// NewAttendanceHandler は AttendanceHandler を生成します。
func NewAttendanceHandler(svc attendance.UseCase) *AttendanceHandler {
	return &AttendanceHandler{svc: svc}
}

type scanAttemptResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id,omitempty"`
	DeviceID   string `json:"device_id"`
	ScannedAt  string `json:"scanned_at"`
	ScanDay    string `json:"scan_day"`
	Outcome    string `json:"outcome"`
	Detail     string `json:"detail,omitempty"`
}

type listDayResponse struct {
	Day      string                `json:"day"`
	Attempts []scanAttemptResponse `json:"attempts"`
}

type presenceResponse struct {
	EmployeeID string `json:"employee_id"`
	Day        string `json:"day"`
	Present    bool   `json:"present"`
}

// ListDay は指定された暦日の試行を時系列で返します。
func (h *AttendanceHandler) ListDay(c *gin.Context) {
	day := c.Query("day")

	attempts, err := h.svc.ListDay(c.Request.Context(), attendance.ListDayInput{Day: day})
	if err != nil {
		writeError(c, err)
		return
	}

	responses := make([]scanAttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		responses = append(responses, toScanAttemptResponse(attempt))
	}

	c.JSON(http.StatusOK, listDayResponse{Day: day, Attempts: responses})
}

// Presence は社員が指定日に出席記録済みかを返します。
func (h *AttendanceHandler) Presence(c *gin.Context) {
	employeeID := c.Param("id")
	day := c.Param("day")

	present, err := h.svc.HasSucceededOn(c.Request.Context(), attendance.PresenceInput{
		EmployeeID: employeeID,
		Day:        day,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, presenceResponse{
		EmployeeID: employeeID,
		Day:        day,
		Present:    present,
	})
}

func toScanAttemptResponse(attempt *attendance.ScanAttempt) scanAttemptResponse {
	return scanAttemptResponse{
		ID:         attempt.ID,
		EmployeeID: attempt.EmployeeID,
		DeviceID:   attempt.DeviceID,
		ScannedAt:  attempt.ScannedAt.Format(time.RFC3339),
		ScanDay:    attempt.ScanDay,
		Outcome:    string(attempt.Outcome),
		Detail:     attempt.Detail,
	}
}
