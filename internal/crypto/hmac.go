// Package crypto подписывает тела запросов между агентом, коллектором и приёмником телеметрии.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HeaderHash — заголовок, в котором передаётся подпись тела запроса.
const HeaderHash = "HashSHA256"

// Sign возвращает hex-представление HMAC-SHA256 от data с ключом key.
func Sign(data []byte, key string) string {
	h := hmac.New(sha256.New, []byte(key))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify сравнивает подпись sum с ожидаемой за постоянное время.
// Некорректный hex считается несовпадением.
func Verify(data []byte, key, sum string) bool {
	got, err := hex.DecodeString(sum)
	if err != nil {
		return false
	}
	h := hmac.New(sha256.New, []byte(key))
	h.Write(data)
	return hmac.Equal(got, h.Sum(nil))
}
