// internal/utils/crypto.go
package utils

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
)

// SignHMACSHA512 returns the lowercase hex HMAC-SHA512 of payload.
func SignHMACSHA512(secret string, payload []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMACSHA512 compares signature with the expected digest byte for byte,
// so the comparison is case-sensitive.
func VerifyHMACSHA512(secret string, payload []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := SignHMACSHA512(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// CanonicalJSON re-serializes a JSON document with object keys sorted and
// without HTML escaping. Number literals are kept as written.
func CanonicalJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
