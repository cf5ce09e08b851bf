package badge

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// MinSecretLength は導出シークレットに要求する最小バイト数です。
	MinSecretLength = 32

	// CodeLength は導出されるバッジコードの文字数です。
	CodeLength = sha256.Size * 2
)

// separator は自然キーと表示名の境界を示す区切りバイトです。
const separator = "\x1f"

// Deriver は社員情報からバッジコードを決定的に導出します。
// シークレットはプロセス起動時に一度だけ検証され、コード自体には含まれません。
type Deriver struct {
	secret []byte
}

// NewDeriver は Deriver を生成します。シークレットが欠落または短すぎる場合は
// ErrWeakSecret を返します。呼び出し側はこれを起動時の致命的エラーとして扱います。
func NewDeriver(secret string) (*Deriver, error) {
	trimmed := strings.TrimSpace(secret)
	if len(trimmed) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &Deriver{secret: []byte(trimmed)}, nil
}

// Derive は正規化した入力から固定長の十六進バッジコードを導出します。
// 入力は前後の空白を除去し、表示名は大文字小文字を畳み込みます。
// 同じ正規化済み入力は常に同じコードになります。副作用はありません。
func (d *Deriver) Derive(naturalKey, displayName string) (string, error) {
	key := strings.TrimSpace(naturalKey)
	if key == "" {
		return "", ErrEmptyNaturalKey
	}

	name := strings.ToLower(strings.TrimSpace(displayName))
	if name == "" {
		return "", ErrEmptyDisplayName
	}

	mac := hmac.New(sha256.New, d.secret)
	_, _ = mac.Write([]byte(key))
	_, _ = mac.Write([]byte(separator))
	_, _ = mac.Write([]byte(name))
	return hex.EncodeToString(mac.Sum(nil)), nil
}
