package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const previewLen = 50

// SanitizeForLogging keeps a short preview of text plus a hash of the whole,
// so transcripts and analyses never reach the logs verbatim.
func SanitizeForLogging(text string) string {
	r := []rune(text)
	if len(r) <= previewLen {
		return string(r) + "..."
	}
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s... [hash:%s]", string(r[:previewLen]), hex.EncodeToString(sum[:])[:8])
}

// MaskAPIKey shows only the first and last four characters.
func MaskAPIKey(key string) string {
	if len(key) < 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
