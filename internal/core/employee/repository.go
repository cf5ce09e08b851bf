package employee

import "context"

// Repository は社員永続化の抽象です。
// 電話番号とバッジコードの一意性はストア側の制約で担保されます。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByBadgeCode(ctx context.Context, code string) (*Employee, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, string, error)
}

// ListEmployeesFilter は一覧取得用フィルタです。
type ListEmployeesFilter struct {
	Status *Status
	Limit  int
	Offset int
}
