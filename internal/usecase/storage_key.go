package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxKeyNameBytes = 120

var (
	storageKeyPattern       = regexp.MustCompile(`^\d+-[0-9a-f]{8}-(.+)$`)
	legacyStorageKeyPattern = regexp.MustCompile(`^\d+-(.+)$`)
)

// NewStorageKey builds "<unixmillis>-<8 hex>-<name>" for an upload received at t.
func NewStorageKey(t time.Time, filename string) string {
	return fmt.Sprintf("%d-%s-%s", t.UnixMilli(), uuid.NewString()[:8], safeKeyName(filename))
}

// FilenameFromKey recovers the display name encoded in a storage key.
// Keys written before the random segment existed ("<millis>-<name>") are
// accepted too; anything else is returned unchanged.
func FilenameFromKey(key string) string {
	if m := storageKeyPattern.FindStringSubmatch(key); m != nil {
		return m[1]
	}
	if m := legacyStorageKeyPattern.FindStringSubmatch(key); m != nil {
		return m[1]
	}
	return key
}

func safeKeyName(filename string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, filename)

	name = strings.Trim(name, ". ")
	if name == "" {
		name = "file"
	}

	for len(name) > maxKeyNameBytes {
		_, size := utf8.DecodeLastRuneInString(name)
		name = name[:len(name)-size]
	}

	// Local blob storage reserves the .tmp suffix for partial writes.
	if strings.HasSuffix(strings.ToLower(name), ".tmp") {
		name += "_"
	}
	return name
}
