package engine

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/rfvp-go/vnengine/internal/config"
)

// localeDecoder returns the byte-to-UTF-8 decoder for a scenario's
// declared text locale. push-string immediates carry their raw locale
// bytes verbatim (internal/vm's decoder is locale-agnostic by design);
// this is where they become proper UTF-8 before reaching save data or
// any other host-facing text. A decode failure falls back to the raw
// bytes unchanged rather than dropping the string.
func localeDecoder(l config.Locale) func([]byte) string {
	switch l {
	case config.LocaleShiftJIS:
		return decodeWith(japanese.ShiftJIS.NewDecoder())
	case config.LocaleGBK:
		return decodeWith(simplifiedchinese.GBK.NewDecoder())
	default:
		return func(raw []byte) string { return string(raw) }
	}
}

func decodeWith(dec *encoding.Decoder) func([]byte) string {
	return func(raw []byte) string {
		out, err := dec.Bytes(raw)
		if err != nil {
			return string(raw)
		}
		return string(out)
	}
}
