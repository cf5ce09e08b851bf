package employee

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// CodeDeriver は社員の自然キーと表示名からバッジコードを導出します。
type CodeDeriver interface {
	Derive(naturalKey, displayName string) (string, error)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

var phoneNumberPattern = regexp.MustCompile(`^\+?[0-9][0-9 -]*$`)

// Service は社員名簿に関するユースケースをまとめます。
type Service struct {
	repo    Repository
	deriver CodeDeriver
	clock   Clock
	tx      TransactionManager
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	RegenerateBadgeCode(ctx context.Context, in RegenerateBadgeCodeInput) (*Employee, error)
	DeactivateEmployee(ctx context.Context, in DeactivateEmployeeInput) (*Employee, error)
	ReactivateEmployee(ctx context.Context, in ReactivateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, deriver CodeDeriver, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, deriver: deriver, clock: clock, tx: tx}
}

// CreateEmployeeInput は社員作成時の入力です。
type CreateEmployeeInput struct {
	PhoneNumber string
	DisplayName string
	Department  string
}

// UpdateEmployeeInput は社員更新時の入力です。
type UpdateEmployeeInput struct {
	ID          string
	DisplayName *string
	Department  *string
}

// RegenerateBadgeCodeInput はバッジコード再発行時の入力です。
type RegenerateBadgeCodeInput struct {
	ID string
}

// DeactivateEmployeeInput は社員無効化時の入力です。
type DeactivateEmployeeInput struct {
	ID string
}

// ReactivateEmployeeInput は社員再有効化時の入力です。
type ReactivateEmployeeInput struct {
	ID string
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	PageSize  int
	PageToken string
	Status    *Status
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// CreateEmployee は社員を新規作成し、バッジコードを導出して保存します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	phone, err := normalizePhoneNumber(in.PhoneNumber)
	if err != nil {
		return nil, err
	}

	name, err := normalizeDisplayName(in.DisplayName)
	if err != nil {
		return nil, err
	}

	department := strings.TrimSpace(in.Department)

	code, err := s.deriver.Derive(phone, name)
	if err != nil {
		return nil, err
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		emp := &Employee{
			PhoneNumber: phone,
			DisplayName: name,
			Department:  department,
			BadgeCode:   code,
			Status:      StatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		result, err := s.repo.Create(txCtx, emp)
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateEmployee は社員情報を更新します。表示名が変わった場合は同一トランザクション
// 内でバッジコードを再導出するため、旧コードは新コードの保存と同時に無効になります。
// 大文字小文字だけの変更では導出結果が変わらないため、コードは維持されます。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.DisplayName != nil {
			name, err := normalizeDisplayName(*in.DisplayName)
			if err != nil {
				return err
			}
			if name != existing.DisplayName {
				code, err := s.deriver.Derive(existing.PhoneNumber, name)
				if err != nil {
					return err
				}
				existing.DisplayName = name
				existing.BadgeCode = code
			}
		}

		if in.Department != nil {
			existing.Department = strings.TrimSpace(*in.Department)
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// RegenerateBadgeCode は管理操作としてバッジコードを再発行します。
// 導出は決定的なので、名簿情報が変わっていなければ結果として同じコードになります。
func (s *Service) RegenerateBadgeCode(ctx context.Context, in RegenerateBadgeCodeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		code, err := s.deriver.Derive(existing.PhoneNumber, existing.DisplayName)
		if err != nil {
			return err
		}

		existing.BadgeCode = code
		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeactivateEmployee は社員を無効化します。バッジコードには触れません。
func (s *Service) DeactivateEmployee(ctx context.Context, in DeactivateEmployeeInput) (*Employee, error) {
	return s.setStatus(ctx, in.ID, StatusInactive)
}

// ReactivateEmployee は社員を再有効化します。バッジコードには触れません。
func (s *Service) ReactivateEmployee(ctx context.Context, in ReactivateEmployeeInput) (*Employee, error) {
	return s.setStatus(ctx, in.ID, StatusActive)
}

func (s *Service) setStatus(ctx context.Context, id string, status Status) (*Employee, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		existing.Status = status
		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は社員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var statusPtr *Status
	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status := *in.Status
		statusPtr = &status
	}

	var (
		employees []*Employee
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListEmployeesFilter{
			Status: statusPtr,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		employees = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

func normalizePhoneNumber(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !phoneNumberPattern.MatchString(trimmed) {
		return "", ErrInvalidPhoneNumber
	}
	return trimmed, nil
}

func normalizeDisplayName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidDisplayName
	}
	return trimmed, nil
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusInactive:
		return true
	default:
		return false
	}
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
