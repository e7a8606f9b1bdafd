package render

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrBinaryContent is returned for content that cannot be represented as text.
var ErrBinaryContent = errors.New("content is not text")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Encoding names reported by Decode.
const (
	EncodingUTF8     = "utf-8"
	EncodingUTF8BOM  = "utf-8-sig"
	EncodingUTF16    = "utf-16"
	EncodingShiftJIS = "shift_jis"
	EncodingLossy    = "utf-8-replace"
)

// Decode converts raw file content to UTF-8 text. It tries, in order: a BOM
// (UTF-8 or UTF-16), plain UTF-8, Shift_JIS (cp932), and finally UTF-8 with
// invalid sequences replaced by U+FFFD. Content with NUL bytes and no UTF-16
// BOM, or where more than 30% of the bytes are invalid, is rejected with
// ErrBinaryContent.
func Decode(raw []byte) (text string, encoding string, err error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return string(raw[len(bomUTF8):]), EncodingUTF8BOM, nil
	case bytes.HasPrefix(raw, bomUTF16LE) || bytes.HasPrefix(raw, bomUTF16BE):
		dec := unicode.BOMOverride(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
		out, _, err := transform.Bytes(dec, raw)
		if err == nil && utf8.Valid(out) {
			return string(out), EncodingUTF16, nil
		}
	}

	if bytes.IndexByte(raw, 0) >= 0 {
		return "", "", ErrBinaryContent
	}
	if utf8.Valid(raw) {
		return string(raw), EncodingUTF8, nil
	}

	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
	if err == nil && !bytes.ContainsRune(out, utf8.RuneError) {
		return string(out), EncodingShiftJIS, nil
	}
	if invalidRatio(raw) > maxInvalidRatio {
		return "", "", ErrBinaryContent
	}
	return strings.ToValidUTF8(string(raw), "\uFFFD"), EncodingLossy, nil
}

// maxInvalidRatio is the share of undecodable bytes above which content is
// treated as binary rather than replaced.
const maxInvalidRatio = 0.3

func invalidRatio(raw []byte) float64 {
	if len(raw) == 0 {
		return 0
	}
	invalid := 0
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		if r == utf8.RuneError && size == 1 {
			invalid++
		}
		i += size
	}
	return float64(invalid) / float64(len(raw))
}
