package filter

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// SniffBytes is the size of the prefix inspected by SniffFile.
const SniffBytes = 8192

// minRatioSample is the smallest sample on which the byte ratio is trusted.
const minRatioSample = 512

// binaryExtensions are rejected without reading the file.
var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".bmp": true,
	".ico": true, ".tif": true, ".tiff": true, ".svgz": true,
	".pdf": true,
	".zip": true, ".7z": true, ".rar": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true,
	".mp3": true, ".wav": true, ".flac": true, ".ogg": true,
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true, ".dat": true,
	".class": true, ".jar": true, ".o": true, ".a": true, ".wasm": true, ".pyc": true,
	".ttf": true, ".otf": true, ".woff": true, ".woff2": true,
	".psd": true, ".ai": true, ".sketch": true,
}

// IsBinaryExtension reports whether the file name has a known binary extension.
func IsBinaryExtension(name string) bool {
	return binaryExtensions[strings.ToLower(filepath.Ext(name))]
}

// LooksBinary reports whether sample appears to be binary data. That is the
// case when it contains a NUL byte and has no UTF-16 byte order mark, or when
// a sample of at least 512 bytes has more than 30% control characters
// (non-ASCII bytes count too unless the sample is valid UTF-8).
func LooksBinary(sample []byte) bool {
	if len(sample) == 0 || hasUTF16BOM(sample) {
		return false
	}
	for _, b := range sample {
		if b == 0 {
			return true
		}
	}
	if len(sample) < minRatioSample {
		return false
	}

	validUTF8 := utf8.Valid(trimPartialRune(sample))
	nonText := 0
	for _, b := range sample {
		if isText(b) {
			continue
		}
		if b >= 0x80 && validUTF8 {
			continue
		}
		nonText++
	}
	return float64(nonText)/float64(len(sample)) > 0.3
}

func hasUTF16BOM(b []byte) bool {
	return len(b) >= 2 && ((b[0] == 0xFF && b[1] == 0xFE) || (b[0] == 0xFE && b[1] == 0xFF))
}

// isText reports whether b is printable ASCII or common whitespace.
func isText(b byte) bool {
	return (b >= 32 && b <= 126) || b == '\n' || b == '\r' || b == '\t' || b == '\b' || b == '\f'
}

// trimPartialRune drops an incomplete multi-byte sequence cut off at the end
// of a bounded read.
func trimPartialRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i]
			}
			break
		}
	}
	return b
}

// SniffFile reads up to SniffBytes from path and applies LooksBinary.
func SniffFile(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	buffer := make([]byte, SniffBytes)
	n, err := io.ReadFull(file, buffer)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false, err
	}
	return LooksBinary(buffer[:n]), nil
}
