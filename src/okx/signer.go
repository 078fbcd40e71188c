package okx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Sign computes the OK-ACCESS-SIGN value:
// base64( HMAC_SHA256(secret, timestamp + method + requestPath + body) )
// requestPath includes the query string exactly as sent.
// An empty secret yields an empty signature, which callers must treat
// as "unsigned" and never send as a real tag.
func Sign(timestamp, method, requestPath, body, secret string) string {
	if secret == "" {
		return ""
	}
	prehash := timestamp + method + requestPath + body
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(prehash))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
