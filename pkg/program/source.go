package program

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DecodeSource turns the bytes of a program file into text. Files that are
// not valid UTF-8 are treated as 8-bit Windows-1252 listings. Line endings are
// normalised to "\n" and a UTF-8 byte order mark is dropped.
func DecodeSource(data []byte) string {
	var text string
	if utf8.Valid(data) {
		text = string(data)
	} else {
		decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		if err != nil {
			text = strings.ToValidUTF8(string(data), "?")
		} else {
			text = string(decoded)
		}
	}
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
