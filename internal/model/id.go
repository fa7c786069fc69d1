package model

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

var (
	processUnique [5]byte
	idCounter     atomic.Uint32

	idPattern   = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
	nonSlugRune = regexp.MustCompile(`[^a-z0-9]+`)
)

func init() {
	if _, err := rand.Read(processUnique[:]); err != nil {
		panic(err)
	}
	var seed [4]byte
	_, _ = rand.Read(seed[:])
	idCounter.Store(binary.BigEndian.Uint32(seed[:]))
}

// NewID returns a 24 hex character identifier laid out as
// 4 bytes of unix seconds, 5 process-unique bytes and a 3 byte counter.
func NewID(now time.Time) string {
	var b [12]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(now.Unix()))
	copy(b[4:9], processUnique[:])
	c := idCounter.Add(1)
	b[9] = byte(c >> 16)
	b[10] = byte(c >> 8)
	b[11] = byte(c)
	return hex.EncodeToString(b[:])
}

// IsID reports whether s has the shape of a generated identifier.
func IsID(s string) bool {
	return idPattern.MatchString(s)
}

// Slug builds the canonical URL segment for a title:
// "Backend Developer" -> "backend-developer-<suffix>".
// The suffix combines the creation millisecond (base 36) with the
// counter fragment of id, so equal titles in the same millisecond differ.
func Slug(title string, now time.Time, id string) string {
	base := nonSlugRune.ReplaceAllString(strings.ToLower(title), "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "job"
	}
	suffix := strconv.FormatInt(now.UnixMilli(), 36)
	if len(id) >= 6 {
		suffix += strings.ToLower(id[len(id)-6:])
	}
	return base + "-" + suffix
}
