package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/attendance-clean-arch/internal/core/attendance"
	"github.com/ogurasousui/attendance-clean-arch/internal/core/employee"
	pgdb "github.com/ogurasousui/attendance-clean-arch/internal/platform/db/postgres"
)

// AttendanceRepository は PostgreSQL を利用した出席台帳の実装です。
// 1 日 1 成功の保証は (employee_id, scan_day) の部分一意インデックスと
// ON CONFLICT DO NOTHING に委ねます。アプリケーション側で読み取ってから
// 書き込む判定は行いません。
type AttendanceRepository struct {
	pool pgdb.Queryer
}

// NewAttendanceRepository は AttendanceRepository を生成します。
func NewAttendanceRepository(pool pgdb.Queryer) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// TryCommitSuccess は success 行の条件付き挿入を試みます。
// 同一の (社員, 暦日) に対して複数プロセスから同時に呼ばれても、
// インデックスの一意性によりちょうど 1 回だけ行が入ります。
func (r *AttendanceRepository) TryCommitSuccess(ctx context.Context, attempt *attendance.ScanAttempt) (bool, error) {
	id := attempt.ID
	if id == "" {
		id = uuid.NewString()
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        INSERT INTO scan_attempts (id, employee_id, device_id, scanned_at, scan_day, outcome, detail)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (employee_id, scan_day) WHERE outcome = 'success' DO NOTHING
    `,
		id,
		attempt.EmployeeID,
		attempt.DeviceID,
		attempt.ScannedAt,
		attempt.ScanDay,
		string(attendance.OutcomeSuccess),
		attempt.Detail,
	)
	if err != nil {
		return false, translateAttendancePgError(err)
	}

	return tag.RowsAffected() == 1, nil
}

// RecordNonSuccess は success 以外の試行を無条件に追記します。
func (r *AttendanceRepository) RecordNonSuccess(ctx context.Context, attempt *attendance.ScanAttempt) error {
	id := attempt.ID
	if id == "" {
		id = uuid.NewString()
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	if _, err := exec.Exec(ctx, `
        INSERT INTO scan_attempts (id, employee_id, device_id, scanned_at, scan_day, outcome, detail)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `,
		id,
		nullableEmployeeID(attempt.EmployeeID),
		attempt.DeviceID,
		attempt.ScannedAt,
		attempt.ScanDay,
		string(attempt.Outcome),
		attempt.Detail,
	); err != nil {
		return translateAttendancePgError(err)
	}

	return nil
}

// FindSuccessOn は指定した (社員, 暦日) の success 行を返します。
func (r *AttendanceRepository) FindSuccessOn(ctx context.Context, employeeID, day string) (*attendance.ScanAttempt, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, employee_id, device_id, scanned_at, scan_day, outcome, detail
          FROM scan_attempts
         WHERE employee_id = $1 AND scan_day = $2 AND outcome = 'success'
         LIMIT 1
    `, employeeID, day)

	found, err := scanAttempt(row)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return found, nil
}

// HasSucceededOn は指定した (社員, 暦日) に success 行があるかを返します。
func (r *AttendanceRepository) HasSucceededOn(ctx context.Context, employeeID, day string) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1
              FROM scan_attempts
             WHERE employee_id = $1 AND scan_day = $2 AND outcome = 'success'
        )
    `, employeeID, day)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, translateAttendancePgError(err)
	}
	return exists, nil
}

// ListByDay は指定した暦日の全試行を時刻順に返します。
func (r *AttendanceRepository) ListByDay(ctx context.Context, day string) ([]*attendance.ScanAttempt, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, employee_id, device_id, scanned_at, scan_day, outcome, detail
          FROM scan_attempts
         WHERE scan_day = $1
         ORDER BY scanned_at ASC, id ASC
    `, day)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	defer rows.Close()

	attempts := make([]*attendance.ScanAttempt, 0)
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, translateAttendancePgError(err)
		}
		attempts = append(attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, translateAttendancePgError(err)
	}

	return attempts, nil
}

func scanAttempt(row pgx.Row) (*attendance.ScanAttempt, error) {
	var (
		id         string
		employeeID sql.NullString
		deviceID   string
		scannedAt  time.Time
		scanDay    time.Time
		outcome    string
		detail     string
	)

	if err := row.Scan(
		&id,
		&employeeID,
		&deviceID,
		&scannedAt,
		&scanDay,
		&outcome,
		&detail,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrAttemptNotFound
		}
		return nil, err
	}

	return &attendance.ScanAttempt{
		ID:         id,
		EmployeeID: employeeID.String,
		DeviceID:   deviceID,
		ScannedAt:  scannedAt,
		ScanDay:    scanDay.Format(attendance.DayLayout),
		Outcome:    attendance.Outcome(outcome),
		Detail:     detail,
	}, nil
}

func translateAttendancePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return attendance.ErrAttemptNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
		return employee.ErrEmployeeNotFound
	}

	return err
}

func nullableEmployeeID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
