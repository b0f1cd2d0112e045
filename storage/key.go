package storage

import (
	"net/url"
	"strings"
)

// SafeKey percent-escapes every byte of text that is not legal in URLs or file names.
func SafeKey(text string) string {
	if len(text) == 0 {
		return "%00"
	}
	var i int
	for i = 0; i < len(text); i++ {
		if !legalInKey(text[i]) {
			break
		}
	}
	if i >= len(text) {
		return text
	}
	escaped := strings.Builder{}
	escaped.WriteString(text[:i])
	for ; i < len(text); i++ {
		if legalInKey(text[i]) {
			escaped.WriteByte(text[i])
			continue
		}
		hi, lo := toHex(text[i])
		escaped.WriteByte('%')
		escaped.WriteByte(hi)
		escaped.WriteByte(lo)
	}
	return escaped.String()
}

func UnescapeKey(escaped string) (string, error) {
	if escaped == "%00" {
		return "", nil
	}
	return url.PathUnescape(escaped)
}

func toHex(in byte) (hi byte, lo byte) {
	const digits = "0123456789ABCDEF"
	return digits[in>>4], digits[in&0x0F]
}

// legalInKey excludes everything reserved in URLs plus '*', which Windows forbids in file names.
func legalInKey(char byte) bool {
	if char < '!' || 'z' < char {
		return false
	}
	switch char {
	case '"', '#', '%', '&', '*', '/', ':', ';', '<', '=', '>', '?', '@', '[', '\\', ']', '^', '`':
		return false
	}
	return true
}
