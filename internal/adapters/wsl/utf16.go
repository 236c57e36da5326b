package wsl

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeOutput normalizes command output for parsing. wsl.exe writes
// UTF-16LE to pipes on Windows, which shows up as interleaved NUL bytes when
// read as bytes.
func decodeOutput(s string) string {
	if !strings.Contains(s, "\x00") {
		return s
	}

	decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	decoded, _, err := transform.String(decoder, s)
	if err != nil {
		return strings.ReplaceAll(s, "\x00", "")
	}
	return strings.TrimPrefix(decoded, "\uFEFF")
}
