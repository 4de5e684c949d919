// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

// Character set ids as stored in RDB$CHARACTER_SETS. Ids that decode to
// UTF-8 directly (NONE, ASCII, UNICODE_FSS, UTF8) are handled without a
// transform; OCTETS is binary and never reaches the text path.
const (
	charsetNone       = 0
	charsetOctets     = 1
	charsetASCII      = 2
	charsetUnicodeFSS = 3
	charsetUTF8       = 4
)

var charsetDecoders = map[int]encoding.Encoding{
	5:  japanese.ShiftJIS, // SJIS_0208
	6:  japanese.EUCJP,    // EUCJ_0208
	10: charmap.CodePage437,
	11: charmap.CodePage850,
	12: charmap.CodePage865,
	13: charmap.CodePage860,
	14: charmap.CodePage863,
	16: charmap.CodePage858,
	17: charmap.CodePage862,
	21: charmap.ISO8859_1,
	22: charmap.ISO8859_2,
	23: charmap.ISO8859_3,
	34: charmap.ISO8859_4,
	35: charmap.ISO8859_5,
	36: charmap.ISO8859_6,
	37: charmap.ISO8859_7,
	38: charmap.ISO8859_8,
	39: charmap.ISO8859_9,
	40: charmap.ISO8859_13,
	44: korean.EUCKR, // KSC_5601
	45: charmap.CodePage852,
	48: charmap.CodePage866,
	51: charmap.Windows1250,
	52: charmap.Windows1251,
	53: charmap.Windows1252,
	54: charmap.Windows1253,
	55: charmap.Windows1254,
	56: traditionalchinese.Big5,
	57: simplifiedchinese.GBK, // GB_2312, decoded as its GBK superset
	58: charmap.Windows1255,
	59: charmap.Windows1256,
	60: charmap.Windows1257,
	63: charmap.KOI8R,
	64: charmap.KOI8U,
	65: charmap.Windows1258,
	67: simplifiedchinese.GBK,
	69: simplifiedchinese.GB18030,
}

// decodeText converts raw column bytes from the declared character set to
// UTF-8. The second result reports whether any byte sequence could not be
// translated and was replaced with U+FFFD. Decoding never fails outright;
// the worst case is a fully substituted string.
func decodeText(raw []byte, charsetID int) (string, bool) {
	switch charsetID {
	case charsetNone, charsetASCII, charsetUnicodeFSS, charsetUTF8:
		if utf8.Valid(raw) {
			return string(raw), false
		}
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError)), true
	}

	enc, ok := charsetDecoders[charsetID]
	if !ok {
		// Unknown catalog charset id: same policy as untranslatable bytes.
		if utf8.Valid(raw) {
			return string(raw), true
		}
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError)), true
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return strings.ToValidUTF8(string(out), string(utf8.RuneError)), true
	}
	decoded := string(out)
	return decoded, strings.ContainsRune(decoded, utf8.RuneError)
}
