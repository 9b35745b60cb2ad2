// Package ingest turns raw upload bodies into named file payloads.
package ingest

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// mojibakeMarkers are the runes ISO-8859-1 and Windows-1252 produce for the
// lead and continuation bytes of UTF-8 encoded CJK text.
const mojibakeMarkers = "çæ‹‚˜Žœſä¸"

// RepairFilename recovers a UTF-8 filename that was decoded as ISO-8859-1
// (or its Windows-1252 superset) somewhere on its way in. The repaired form is only accepted when it
// contains CJK ideographs; in every other case name is returned unchanged.
func RepairFilename(name string) string {
	if name == "" || !strings.ContainsAny(name, mojibakeMarkers) {
		return name
	}

	raw, ok := singleByteForm(name)
	if !ok {
		return name
	}
	if !utf8.ValidString(raw) {
		return name
	}
	if !containsCJK(raw) {
		return name
	}
	return raw
}

// singleByteForm maps every rune back to the byte it was decoded from.
// Runes up to U+00FF are their own byte value, which also covers the C1
// controls ISO-8859-1 yields for 0x80-0x9F; the few cp1252 punctuation
// runes go through its table.
func singleByteForm(name string) (string, bool) {
	raw := make([]byte, 0, len(name))
	for _, r := range name {
		if r <= 0xff {
			raw = append(raw, byte(r))
			continue
		}
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			return "", false
		}
		raw = append(raw, b)
	}
	return string(raw), true
}

func containsCJK(s string) bool {
	for _, r := range s {
		if r >= 0x4e00 && r <= 0x9fa5 {
			return true
		}
	}
	return false
}
