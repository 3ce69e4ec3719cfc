package service

import (
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// ShortIDGenerator hashes a URL together with the current time. Two calls
// for the same URL at the same instant return the same id; nothing checks
// the store for an existing id.
type ShortIDGenerator struct {
	now func() time.Time
}

func NewShortIDGenerator(now func() time.Time) *ShortIDGenerator {
	if now == nil {
		now = time.Now
	}
	return &ShortIDGenerator{now: now}
}

// Generate returns 8 upper-case characters: base64url of the first 6 bytes
// of sha256(url + unix seconds).
func (g *ShortIDGenerator) Generate(url string) string {
	t := g.now()
	seconds := strconv.FormatFloat(float64(t.UnixNano())/1e9, 'f', -1, 64)

	sum := sha256.Sum256([]byte(url + seconds))
	id := base64.URLEncoding.EncodeToString(sum[:6])
	return strings.ToUpper(strings.TrimRight(id, "="))
}
