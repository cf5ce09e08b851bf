package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/attendance-clean-arch/internal/core/employee"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Service はスキャン受付の判定を行います。Service 自体は状態を持たず、
// 共有される可変状態はすべて背後のストアにあります。重複排除の保証は
// ストアの条件付き挿入に依存し、プロセス内ロックは使いません。
type Service struct {
	employees EmployeeResolver
	ledger    Ledger
	clock     Clock
	location  *time.Location
}

// UseCase はスキャン関連ユースケースの公開インターフェースです。
type UseCase interface {
	SubmitScan(ctx context.Context, in SubmitScanInput) (*ScanResult, error)
	ListDay(ctx context.Context, in ListDayInput) ([]*ScanAttempt, error)
	HasSucceededOn(ctx context.Context, in PresenceInput) (bool, error)
}

// NewService は Service を生成します。location が nil の場合は UTC を使います。
func NewService(employees EmployeeResolver, ledger Ledger, clock Clock, location *time.Location) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if location == nil {
		location = time.UTC
	}
	return &Service{employees: employees, ledger: ledger, clock: clock, location: location}
}

// SubmitScanInput はスキャン送信の入力です。DeviceID は外部で認証済みの
// 端末識別子で、ここでは検証せず監査のためにそのまま記録します。
type SubmitScanInput struct {
	Code     string
	DeviceID string
}

// ListDayInput は台帳の日次取得の入力です。
type ListDayInput struct {
	Day string
}

// PresenceInput は社員の当日出席確認の入力です。
type PresenceInput struct {
	EmployeeID string
	Day        string
}

// SubmitScan は送信されたコードを判定し、結果を台帳に記録します。
// 判定は resolve → active 確認 → 条件付き挿入の順で短絡します。
// success 以外の結果は正常な戻り値であり、エラーはストレージ障害のみです。
func (s *Service) SubmitScan(ctx context.Context, in SubmitScanInput) (*ScanResult, error) {
	deviceID := strings.TrimSpace(in.DeviceID)
	if deviceID == "" {
		return nil, ErrInvalidDeviceID
	}

	code := strings.TrimSpace(in.Code)

	emp, err := s.employees.FindByBadgeCode(ctx, code)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			// 未知のコードには社員の存在を示すいかなる情報も返さない
			return s.reject(ctx, "", deviceID, OutcomeInvalid, "unrecognized code", "")
		}
		return nil, storageError(err)
	}

	if emp.Status != employee.StatusActive {
		return s.reject(ctx, emp.ID, deviceID, OutcomeInactive, "employee is inactive", emp.DisplayName)
	}

	// タイムスタンプは台帳書き込みを試みる時点で取得する
	now := s.clock.Now()
	committed, err := s.ledger.TryCommitSuccess(ctx, &ScanAttempt{
		EmployeeID: emp.ID,
		DeviceID:   deviceID,
		ScannedAt:  now,
		ScanDay:    s.dayOf(now),
		Outcome:    OutcomeSuccess,
	})
	if err != nil {
		return nil, storageError(err)
	}

	if committed {
		return &ScanResult{
			Outcome:      OutcomeSuccess,
			EmployeeName: emp.DisplayName,
			Detail:       "attendance recorded",
			ScannedAt:    now,
		}, nil
	}

	detail := "already recorded today"
	if prior, err := s.ledger.FindSuccessOn(ctx, emp.ID, s.dayOf(now)); err == nil {
		detail = fmt.Sprintf("already recorded at %s", prior.ScannedAt.In(s.location).Format("15:04"))
	}

	return s.reject(ctx, emp.ID, deviceID, OutcomeDuplicate, detail, emp.DisplayName)
}

// ListDay は指定した暦日の台帳エントリを返します。
func (s *Service) ListDay(ctx context.Context, in ListDayInput) ([]*ScanAttempt, error) {
	day, err := normalizeDay(in.Day)
	if err != nil {
		return nil, err
	}

	attempts, err := s.ledger.ListByDay(ctx, day)
	if err != nil {
		return nil, storageError(err)
	}
	return attempts, nil
}

// HasSucceededOn は社員が指定した暦日に出席済みかどうかを返します。
func (s *Service) HasSucceededOn(ctx context.Context, in PresenceInput) (bool, error) {
	if strings.TrimSpace(in.EmployeeID) == "" {
		return false, fmt.Errorf("employee id: %w", ErrInvalidID)
	}

	day, err := normalizeDay(in.Day)
	if err != nil {
		return false, err
	}

	succeeded, err := s.ledger.HasSucceededOn(ctx, in.EmployeeID, day)
	if err != nil {
		return false, storageError(err)
	}
	return succeeded, nil
}

func (s *Service) reject(ctx context.Context, employeeID, deviceID string, outcome Outcome, detail, displayName string) (*ScanResult, error) {
	now := s.clock.Now()
	if err := s.ledger.RecordNonSuccess(ctx, &ScanAttempt{
		EmployeeID: employeeID,
		DeviceID:   deviceID,
		ScannedAt:  now,
		ScanDay:    s.dayOf(now),
		Outcome:    outcome,
		Detail:     detail,
	}); err != nil {
		return nil, storageError(err)
	}

	return &ScanResult{
		Outcome:      outcome,
		EmployeeName: displayName,
		Detail:       detail,
		ScannedAt:    now,
	}, nil
}

func (s *Service) dayOf(t time.Time) string {
	return t.In(s.location).Format(DayLayout)
}

func normalizeDay(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if _, err := time.Parse(DayLayout, trimmed); err != nil {
		return "", ErrInvalidDay
	}
	return trimmed, nil
}

func storageError(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
