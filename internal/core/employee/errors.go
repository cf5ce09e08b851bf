package employee

import "errors"

var (
	ErrInvalidID          = errors.New("employee: invalid id")
	ErrInvalidPhoneNumber = errors.New("employee: invalid phone number")
	ErrInvalidDisplayName = errors.New("employee: invalid display name")
	ErrInvalidStatus      = errors.New("employee: invalid status")
	ErrInvalidPageSize    = errors.New("employee: invalid page size")
	ErrInvalidPageToken   = errors.New("employee: invalid page token")
	ErrEmployeeNotFound   = errors.New("employee: not found")
	ErrPhoneAlreadyExists = errors.New("employee: phone number already exists")
	ErrBadgeCodeConflict  = errors.New("employee: badge code already assigned")
)
