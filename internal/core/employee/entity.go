package employee

import "time"

// Status は社員の状態を表します。
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Employee は社員エンティティです。
// PhoneNumber は作成後に変更されない自然キーで、BadgeCode は常に
// 現在有効な 1 つだけを保持します。台帳から参照されるため物理削除は行わず、
// 無効化は Status の切り替えで表現します。
type Employee struct {
	ID          string
	PhoneNumber string
	DisplayName string
	Department  string
	BadgeCode   string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
