package attendance

import (
	"context"

	"github.com/ogurasousui/attendance-clean-arch/internal/core/employee"
)

// EmployeeResolver はバッジコードから社員を解決します。
type EmployeeResolver interface {
	FindByBadgeCode(ctx context.Context, code string) (*employee.Employee, error)
}

// Ledger は出席台帳の永続化の抽象です。
type Ledger interface {
	// TryCommitSuccess は (社員, 暦日) に対する success 行の条件付き挿入を試みます。
	// 同一の社員と暦日へ同時に呼ばれても、ちょうど 1 回だけ true を返すことを
	// 実装が保証します。読み取ってから書く方式での実装は許されません。
	TryCommitSuccess(ctx context.Context, attempt *ScanAttempt) (bool, error)

	// RecordNonSuccess は success 以外の試行を無条件に追記します。
	RecordNonSuccess(ctx context.Context, attempt *ScanAttempt) error

	// FindSuccessOn は当日の success 行を返します。存在しなければ
	// ErrAttemptNotFound を返します。重複排除の判定には使いません。
	FindSuccessOn(ctx context.Context, employeeID, day string) (*ScanAttempt, error)

	// HasSucceededOn は当日の成功有無を返す読み取り専用ヘルパーです。
	HasSucceededOn(ctx context.Context, employeeID, day string) (bool, error)

	// ListByDay は指定した暦日の全試行を時刻順に返します。
	ListByDay(ctx context.Context, day string) ([]*ScanAttempt, error)
}
