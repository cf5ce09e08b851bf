package attendance

import "time"

// Outcome はスキャン判定の結果区分です。
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeInactive  Outcome = "inactive"
)

// DayLayout は暦日の表記形式です。暦日は常にプロセス共通の
// 固定タイムゾーンで計算され、端末のローカル時刻には依存しません。
const DayLayout = "2006-01-02"

// ScanAttempt は台帳に追記されるスキャン試行レコードです。
// 台帳は追記専用で、更新も削除も行いません。
type ScanAttempt struct {
	ID         string
	EmployeeID string // コードが解決できなかった試行では空
	DeviceID   string
	ScannedAt  time.Time
	ScanDay    string
	Outcome    Outcome
	Detail     string
}

// ScanResult はスキャン送信元へ返す判定結果です。
// EmployeeName は invalid では決して設定されません。
type ScanResult struct {
	Outcome      Outcome
	EmployeeName string
	Detail       string
	ScannedAt    time.Time
}
