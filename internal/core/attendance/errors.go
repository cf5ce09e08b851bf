package attendance

import "errors"

var (
	ErrInvalidDeviceID = errors.New("attendance: invalid device id")
	ErrInvalidDay      = errors.New("attendance: invalid day")
	ErrInvalidID       = errors.New("attendance: invalid id")
	ErrAttemptNotFound = errors.New("attendance: attempt not found")

	// ErrStorageUnavailable はストレージ障害を示します。判定結果 (invalid 等) とは
	// 区別され、呼び出し側が再試行可能な失敗として扱えるようにします。
	ErrStorageUnavailable = errors.New("attendance: storage unavailable")
)
