package methods

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// 中文双字节编码: chardet 对短文本经常把 GB 误判为 Big5 等, 统一按 GB18030 解码
var chineseFamily = map[string]bool{
	"GB-18030":    true,
	"Big5":        true,
	"EUC-JP":      true,
	"EUC-KR":      true,
	"Shift_JIS":   true,
	"ISO-2022-CN": true,
}

// NormalizeEncoding returns data as UTF-8 without a byte order mark, along
// with the charset it was decoded from. Valid UTF-8 is passed through.
func NormalizeEncoding(data []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(data, utf16LEBOM):
		return decodeUTF16(data, "UTF-16LE")
	case bytes.HasPrefix(data, utf16BEBOM):
		return decodeUTF16(data, "UTF-16BE")
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, "UTF-8", nil
	}

	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil {
		return nil, "", fmt.Errorf("charset detection failed: %w", err)
	}

	charset := result.Charset
	var enc encoding.Encoding
	if chineseFamily[charset] {
		charset, enc = "GB-18030", simplifiedchinese.GB18030
	} else {
		enc, err = htmlindex.Get(charset)
		if err != nil {
			return nil, charset, fmt.Errorf("unsupported charset %s: %w", charset, err)
		}
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, charset, fmt.Errorf("failed to decode %s: %w", charset, err)
	}
	return bytes.TrimPrefix(decoded, utf8BOM), charset, nil
}

// decodeUTF16 lets the byte order mark choose the endianness and drops it.
func decodeUTF16(data []byte, charset string) ([]byte, string, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, charset, fmt.Errorf("failed to decode %s: %w", charset, err)
	}
	return decoded, charset, nil
}
