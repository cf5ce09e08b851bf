package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ogurasousui/attendance-clean-arch/internal/core/employee"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (s *stubClock) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *stubClock) Set(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = t
}

type fakeResolver struct {
	byCode map[string]*employee.Employee
	err    error
}

func (r *fakeResolver) FindByBadgeCode(_ context.Context, code string) (*employee.Employee, error) {
	if r.err != nil {
		return nil, r.err
	}
	emp, ok := r.byCode[code]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	clone := *emp
	return &clone, nil
}

// fakeLedger はミューテックスを一意制約の代わりにした追記専用の台帳です。
type fakeLedger struct {
	mu        sync.Mutex
	attempts  []*ScanAttempt
	sequence  int
	commitErr error
	recordErr error
}

func (l *fakeLedger) TryCommitSuccess(_ context.Context, attempt *ScanAttempt) (bool, error) {
	if l.commitErr != nil {
		return false, l.commitErr
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, existing := range l.attempts {
		if existing.Outcome == OutcomeSuccess && existing.EmployeeID == attempt.EmployeeID && existing.ScanDay == attempt.ScanDay {
			return false, nil
		}
	}

	l.append(attempt)
	return true, nil
}

func (l *fakeLedger) RecordNonSuccess(_ context.Context, attempt *ScanAttempt) error {
	if l.recordErr != nil {
		return l.recordErr
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.append(attempt)
	return nil
}

func (l *fakeLedger) FindSuccessOn(_ context.Context, employeeID, day string) (*ScanAttempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, existing := range l.attempts {
		if existing.Outcome == OutcomeSuccess && existing.EmployeeID == employeeID && existing.ScanDay == day {
			clone := *existing
			return &clone, nil
		}
	}
	return nil, ErrAttemptNotFound
}

func (l *fakeLedger) HasSucceededOn(ctx context.Context, employeeID, day string) (bool, error) {
	_, err := l.FindSuccessOn(ctx, employeeID, day)
	if errors.Is(err, ErrAttemptNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *fakeLedger) ListByDay(_ context.Context, day string) ([]*ScanAttempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var result []*ScanAttempt
	for _, existing := range l.attempts {
		if existing.ScanDay == day {
			clone := *existing
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (l *fakeLedger) append(attempt *ScanAttempt) {
	clone := *attempt
	l.sequence++
	clone.ID = fmt.Sprintf("attempt-%d", l.sequence)
	l.attempts = append(l.attempts, &clone)
}

func (l *fakeLedger) countByOutcome(outcome Outcome) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, existing := range l.attempts {
		if existing.Outcome == outcome {
			count++
		}
	}
	return count
}

func activeEmployee() *employee.Employee {
	return &employee.Employee{
		ID:          "emp-1",
		PhoneNumber: "555-0100",
		DisplayName: "Ava Lee",
		BadgeCode:   "code-1",
		Status:      employee.StatusActive,
	}
}

func TestService_SubmitScan_SuccessThenDuplicate(t *testing.T) {
	t.Parallel()

	emp := activeEmployee()
	resolver := &fakeResolver{byCode: map[string]*employee.Employee{emp.BadgeCode: emp}}
	ledger := &fakeLedger{}
	clk := &stubClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc := NewService(resolver, ledger, clk, time.UTC)

	first, err := svc.SubmitScan(context.Background(), SubmitScanInput{Code: "code-1", DeviceID: "device-1"})
	if err != nil {
		t.Fatalf("SubmitScan returned error: %v", err)
	}
	if first.Outcome != OutcomeSuccess {
		t.Fatalf("expected success, got %s", first.Outcome)
	}
	if first.EmployeeName != "Ava Lee" {
		t.Fatalf("expected employee name in success result, got %q", first.EmployeeName)
	}

	clk.Set(clk.Now().Add(time.Minute))

	second, err := svc.SubmitScan(context.Background(), SubmitScanInput{Code: "code-1", DeviceID: "device-2"})
	if err != nil {
		t.Fatalf("SubmitScan returned error: %v", err)
	}
	if second.Outcome != OutcomeDuplicate {
		t.Fatalf("expected duplicate, got %s", second.Outcome)
	}
	if second.EmployeeName != "Ava Lee" {
		t.Fatalf("expected employee name in duplicate result, got %q", second.EmployeeName)
	}
	if !strings.Contains(second.Detail, "09:00") {
		t.Fatalf("expected duplicate detail to carry the earlier time, got %q", second.Detail)
	}

	if got := ledger.countByOutcome(OutcomeSuccess); got != 1 {
		t.Fatalf("expected exactly one success entry, got %d", got)
	}
	if got := ledger.countByOutcome(OutcomeDuplicate); got != 1 {
		t.Fatalf("expected the duplicate attempt to be recorded, got %d", got)
	}
}

func TestService_SubmitScan_NextDaySucceedsAgain(t *testing.T) {
	t.Parallel()

	emp := activeEmployee()
	resolver := &fakeResolver{byCode: map[string]*employee.Employee{emp.BadgeCode: emp}}
	ledger := &fakeLedger{}
	clk := &stubClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc := NewService(resolver, ledger, clk, time.UTC)

	if _, err := svc.SubmitScan(context.Background(), SubmitScanInput{Code: "code-1", DeviceID: "device-1"}); err != nil {
		t.Fatalf("SubmitScan returned error: %v", err)
	}

	clk.Set(time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC))

	next, err := svc.SubmitScan(context.Background(), SubmitScanInput{Code: "code-1", DeviceID: "device-1"})
	if err != nil {
		t.Fatalf("SubmitScan returned error: %v", err)
	}
	if next.Outcome != OutcomeSuccess {
		t.Fatalf("expected success on the next calendar day, got %s", next.Outcome)
	}
}

func TestService_SubmitScan_InactiveShortCircuits(t *testing.T) {
	t.Parallel()

	emp := activeEmployee()
	emp.Status = employee.StatusInactive
	resolver := &fakeResolver{byCode: map[string]*employee.Employee{emp.BadgeCode: emp}}
	ledger := &fakeLedger{}
	svc := NewService(resolver, ledger, &stubClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}, time.UTC)

	result, err := svc.SubmitScan(context.Background(), SubmitScanInput{Code: "code-1", DeviceID: "device-1"})
	if err != nil {
		t.Fatalf("SubmitScan returned error: %v", err)
	}
	if result.Outcome != OutcomeInactive {
		t.Fatalf("expected inactive, got %s", result.Outcome)
	}
	if result.EmployeeName != "Ava Lee" {
		t.Fatalf("expected operator-visible name for inactive rejection, got %q", result.EmployeeName)
	}
	if got := ledger.countByOutcome(OutcomeSuccess); got != 0 {
		t.Fatalf("expected no success entry for an inactive employee, got %d", got)
	}
	if got := ledger.countByOutcome(OutcomeInactive); got != 1 {
		t.Fatalf("expected the rejection to be recorded, got %d", got)
	}
}

func TestService_SubmitScan_UnknownCode(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{byCode: map[string]*employee.Employee{}}
	ledger := &fakeLedger{}
	svc := NewService(resolver, ledger, &stubClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}, time.UTC)

	result, err := svc.SubmitScan(context.Background(), SubmitScanInput{Code: "never-issued", DeviceID: "device-1"})
	if err != nil {
		t.Fatalf("SubmitScan returned error: %v", err)
	}
	if result.Outcome != OutcomeInvalid {
		t.Fatalf("expected invalid, got %s", result.Outcome)
	}
	if result.EmployeeName != "" {
		t.Fatalf("expected no employee name for an unknown code, got %q", result.EmployeeName)
	}

	attempts, err := ledger.ListByDay(context.Background(), "2025-03-10")
	if err != nil {
		t.Fatalf("ListByDay returned error: %v", err)
	}
	if len(attempts) != 1 || attempts[0].EmployeeID != "" {
		t.Fatalf("expected one recorded attempt without an employee reference, got %+v", attempts)
	}
}

func TestService_SubmitScan_EmptyDeviceID(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeResolver{}, &fakeLedger{}, nil, time.UTC)

	if _, err := svc.SubmitScan(context.Background(), SubmitScanInput{Code: "code-1", DeviceID: "  "}); !errors.Is(err, ErrInvalidDeviceID) {
		t.Fatalf("expected ErrInvalidDeviceID, got %v", err)
	}
}

func TestService_SubmitScan_StorageFailures(t *testing.T) {
	t.Parallel()

	emp := activeEmployee()

	resolver := &fakeResolver{err: errors.New("connection refused")}
	svc := NewService(resolver, &fakeLedger{}, nil, time.UTC)
	if _, err := svc.SubmitScan(context.Background(), SubmitScanInput{Code: "code-1", DeviceID: "device-1"}); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable for resolver failure, got %v", err)
	}

	okResolver := &fakeResolver{byCode: map[string]*employee.Employee{emp.BadgeCode: emp}}
	svc = NewService(okResolver, &fakeLedger{commitErr: errors.New("connection refused")}, nil, time.UTC)
	if _, err := svc.SubmitScan(context.Background(), SubmitScanInput{Code: "code-1", DeviceID: "device-1"}); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable for commit failure, got %v", err)
	}

	svc = NewService(&fakeResolver{byCode: map[string]*employee.Employee{}}, &fakeLedger{recordErr: errors.New("connection refused")}, nil, time.UTC)
	if _, err := svc.SubmitScan(context.Background(), SubmitScanInput{Code: "unknown", DeviceID: "device-1"}); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable for audit failure, got %v", err)
	}
}

func TestService_SubmitScan_ExactlyOneSuccessUnderContention(t *testing.T) {
	t.Parallel()

	emp := activeEmployee()
	resolver := &fakeResolver{byCode: map[string]*employee.Employee{emp.BadgeCode: emp}}
	ledger := &fakeLedger{}
	svc := NewService(resolver, ledger, &stubClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}, time.UTC)

	const submissions = 50

	var wg sync.WaitGroup
	outcomes := make(chan Outcome, submissions)
	errs := make(chan error, submissions)

	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func(device int) {
			defer wg.Done()
			result, err := svc.SubmitScan(context.Background(), SubmitScanInput{
				Code:     "code-1",
				DeviceID: fmt.Sprintf("device-%d", device),
			})
			if err != nil {
				errs <- err
				return
			}
			outcomes <- result.Outcome
		}(i)
	}

	wg.Wait()
	close(outcomes)
	close(errs)

	for err := range errs {
		t.Fatalf("SubmitScan returned error: %v", err)
	}

	successes, duplicates := 0, 0
	for outcome := range outcomes {
		switch outcome {
		case OutcomeSuccess:
			successes++
		case OutcomeDuplicate:
			duplicates++
		default:
			t.Fatalf("unexpected outcome %s", outcome)
		}
	}

	if successes != 1 {
		t.Fatalf("expected exactly one success, got %d", successes)
	}
	if duplicates != submissions-1 {
		t.Fatalf("expected %d duplicates, got %d", submissions-1, duplicates)
	}
	if got := ledger.countByOutcome(OutcomeSuccess); got != 1 {
		t.Fatalf("expected exactly one success entry in the ledger, got %d", got)
	}
}

func TestService_SubmitScan_DayUsesConfiguredTimezone(t *testing.T) {
	t.Parallel()

	emp := activeEmployee()
	resolver := &fakeResolver{byCode: map[string]*employee.Employee{emp.BadgeCode: emp}}
	ledger := &fakeLedger{}
	jst := time.FixedZone("JST", 9*60*60)
	// UTC では 3/10 の 23:30 だが JST では既に 3/11
	clk := &stubClock{now: time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)}
	svc := NewService(resolver, ledger, clk, jst)

	if _, err := svc.SubmitScan(context.Background(), SubmitScanInput{Code: "code-1", DeviceID: "device-1"}); err != nil {
		t.Fatalf("SubmitScan returned error: %v", err)
	}

	attempts, err := ledger.ListByDay(context.Background(), "2025-03-11")
	if err != nil {
		t.Fatalf("ListByDay returned error: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("expected the attempt to land on the JST calendar day, got %d entries", len(attempts))
	}
}

func TestService_ListDay_InvalidDay(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeResolver{}, &fakeLedger{}, nil, time.UTC)

	if _, err := svc.ListDay(context.Background(), ListDayInput{Day: "10-03-2025"}); !errors.Is(err, ErrInvalidDay) {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}
}

func TestService_HasSucceededOn(t *testing.T) {
	t.Parallel()

	emp := activeEmployee()
	resolver := &fakeResolver{byCode: map[string]*employee.Employee{emp.BadgeCode: emp}}
	ledger := &fakeLedger{}
	clk := &stubClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc := NewService(resolver, ledger, clk, time.UTC)

	present, err := svc.HasSucceededOn(context.Background(), PresenceInput{EmployeeID: emp.ID, Day: "2025-03-10"})
	if err != nil {
		t.Fatalf("HasSucceededOn returned error: %v", err)
	}
	if present {
		t.Fatalf("expected no attendance before any scan")
	}

	if _, err := svc.SubmitScan(context.Background(), SubmitScanInput{Code: "code-1", DeviceID: "device-1"}); err != nil {
		t.Fatalf("SubmitScan returned error: %v", err)
	}

	present, err = svc.HasSucceededOn(context.Background(), PresenceInput{EmployeeID: emp.ID, Day: "2025-03-10"})
	if err != nil {
		t.Fatalf("HasSucceededOn returned error: %v", err)
	}
	if !present {
		t.Fatalf("expected attendance after a successful scan")
	}

	if _, err := svc.HasSucceededOn(context.Background(), PresenceInput{EmployeeID: "", Day: "2025-03-10"}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}
