package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/attendance-clean-arch/internal/core/attendance"
	"github.com/ogurasousui/attendance-clean-arch/internal/core/badge"
	"github.com/ogurasousui/attendance-clean-arch/internal/core/employee"
)

// writeError はドメインエラーを HTTP ステータスへ変換して応答します。
// ストレージ由来の内部情報はクライアントへ返しません。
func writeError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidPhoneNumber),
		errors.Is(err, employee.ErrInvalidDisplayName),
		errors.Is(err, employee.ErrInvalidStatus),
		errors.Is(err, employee.ErrInvalidPageSize),
		errors.Is(err, employee.ErrInvalidPageToken),
		errors.Is(err, attendance.ErrInvalidDeviceID),
		errors.Is(err, attendance.ErrInvalidDay),
		errors.Is(err, attendance.ErrInvalidID),
		errors.Is(err, badge.ErrEmptyNaturalKey),
		errors.Is(err, badge.ErrEmptyDisplayName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, attendance.ErrAttemptNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, employee.ErrPhoneAlreadyExists),
		errors.Is(err, employee.ErrBadgeCodeConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
