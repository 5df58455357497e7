package passkey

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrEmpty = errors.New("passkey must not be empty")

// Hash 使用 bcrypt 生成口令哈希
func Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmpty
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}

// IsHashed 判断存储值是否为 bcrypt 哈希
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// Verify 校验口令。历史数据中的明文口令按精确匹配比较，legacy 表示命中了明文记录
func Verify(stored, given string) (ok bool, legacy bool) {
	if stored == "" {
		return false, false
	}

	if IsHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil, false
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1, true
}
