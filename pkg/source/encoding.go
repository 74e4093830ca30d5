package source

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Canonical encoding names.
const (
	UTF8      = "utf-8"
	ShiftJIS  = "shift_jis"
	EUCJP     = "euc-jp"
	ISO2022JP = "iso-2022-jp"
)

// aliases is keyed by the lowercased name with '-', '_' and spaces removed.
var aliases = map[string]string{
	"utf8":                UTF8,
	"utf8bom":             UTF8,
	"utf8sig":             UTF8,
	"shiftjis":            ShiftJIS,
	"sjis":                ShiftJIS,
	"xsjis":               ShiftJIS,
	"cp932":               ShiftJIS,
	"ms932":               ShiftJIS,
	"mskanji":             ShiftJIS,
	"windows31j":          ShiftJIS,
	"csshiftjis":          ShiftJIS,
	"eucjp":               EUCJP,
	"xeucjp":              EUCJP,
	"ujis":                EUCJP,
	"cseucpkdfmtjapanese": EUCJP,
	"iso2022jp":           ISO2022JP,
	"csiso2022jp":         ISO2022JP,
	"jis":                 ISO2022JP,
}

var japaneseEncodings = map[string]encoding.Encoding{
	ShiftJIS:  japanese.ShiftJIS,
	EUCJP:     japanese.EUCJP,
	ISO2022JP: japanese.ISO2022JP,
}

func aliasKey(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}

// CanonicalEncoding normalizes an encoding name. Blank means UTF-8; names
// outside the known families are lowercased and passed through.
func CanonicalEncoding(name string) string {
	key := aliasKey(name)
	if key == "" {
		return UTF8
	}
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// Decoder returns a transformer that decodes name to UTF-8 and the canonical
// name actually used. Unknown encodings yield the UTF-8 decoder together with
// an error wrapping ErrEncodingUnsupported.
//
// The UTF-8 decoder drops a leading byte order mark and replaces invalid
// sequences with U+FFFD.
func Decoder(name string) (transform.Transformer, string, error) {
	canonical := CanonicalEncoding(name)
	if canonical == UTF8 {
		return utf8Decoder(), UTF8, nil
	}
	if enc, ok := japaneseEncodings[canonical]; ok {
		return enc.NewDecoder(), canonical, nil
	}
	if enc, err := htmlindex.Get(canonical); err == nil && enc != nil {
		return decoderFor(enc, canonical)
	}
	if enc, err := ianaindex.IANA.Encoding(canonical); err == nil && enc != nil {
		return decoderFor(enc, canonical)
	}
	return utf8Decoder(), UTF8, fmt.Errorf("%w: %q", ErrEncodingUnsupported, name)
}

func decoderFor(enc encoding.Encoding, canonical string) (transform.Transformer, string, error) {
	if enc == unicode.UTF8 {
		return utf8Decoder(), UTF8, nil
	}
	return enc.NewDecoder(), canonical, nil
}

func utf8Decoder() transform.Transformer {
	return unicode.BOMOverride(unicode.UTF8.NewDecoder())
}
