package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/attendance-clean-arch/internal/core/attendance"
)

// ScanHandler はスキャン送信エンドポイントの HTTP 実装です。
type ScanHandler struct {
	svc attendance.UseCase
}

// NewScanHandler は ScanHandler を生成します。
func NewScanHandler(svc attendance.UseCase) *ScanHandler {
	return &ScanHandler{svc: svc}
}

type submitScanRequest struct {
	Code     string `json:"code" binding:"required"`
	DeviceID string `json:"device_id" binding:"required"`
}

type scanResultResponse struct {
	Outcome      string `json:"outcome"`
	EmployeeName string `json:"employee_name,omitempty"`
	Detail       string `json:"detail,omitempty"`
	ScannedAt    string `json:"scanned_at"`
}

// SubmitScan はスキャンを受け付け、判定結果を返します。
// success 以外の判定も HTTP としては 200 で返ります。
func (h *ScanHandler) SubmitScan(c *gin.Context) {
	var req submitScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.SubmitScan(c.Request.Context(), attendance.SubmitScanInput{
		Code:     req.Code,
		DeviceID: req.DeviceID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toScanResultResponse(result))
}

func toScanResultResponse(result *attendance.ScanResult) scanResultResponse {
	return scanResultResponse{
		Outcome:      string(result.Outcome),
		EmployeeName: result.EmployeeName,
		Detail:       result.Detail,
		ScannedAt:    result.ScannedAt.Format(time.RFC3339),
	}
}
