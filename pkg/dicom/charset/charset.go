// Package charset maps DICOM Specific Character Set defined terms to text
// decoders. See PS3.2 D.6.2 for the list of defined terms.
package charset

import (
	"fmt"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// lookupLabelByTerm maps specific character set defined terms to
// WHATWG encoding labels resolvable by charset.Lookup.
var lookupLabelByTerm = map[string]string{
	"ISO_IR 100":     "iso-8859-1",
	"ISO_IR 101":     "iso-8859-2",
	"ISO_IR 109":     "iso-8859-3",
	"ISO_IR 110":     "iso-8859-4",
	"ISO_IR 144":     "iso-8859-5",
	"ISO_IR 127":     "iso-8859-6",
	"ISO_IR 126":     "iso-8859-7",
	"ISO_IR 138":     "iso-8859-8",
	"ISO_IR 148":     "iso-8859-9",
	"ISO_IR 166":     "iso-8859-11",
	"ISO_IR 13":      "shift-jis",
	"ISO_IR 192":     "utf-8",
	"ISO 2022 IR 87": "iso-2022-jp",
	"GB18030":        "gb18030",
	"GB2312":         "gb2312",
	"GBK":            "gbk",
}

// Unsupported terms the engine deliberately refuses: the ISO 2022 code
// extension repertoires for Korean and simplified Chinese.
var unsupportedTerms = map[string]bool{
	"ISO 2022 IR 149": true,
	"ISO 2022 IR 58":  true,
}

// Default returns the decoder used when no Specific Character Set is
// declared: UTF-8, which is transparent for the default repertoire.
func Default() encoding.Encoding {
	return unicode.UTF8
}

// Lookup resolves a defined term to a text decoder. Unknown terms resolve
// to the default decoder with an error the caller may surface as a warning.
func Lookup(term string) (encoding.Encoding, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Default(), nil
	}
	if unsupportedTerms[term] {
		return Default(), fmt.Errorf("specific character set term not supported: %q", term)
	}
	label, ok := lookupLabelByTerm[term]
	if !ok {
		return Default(), fmt.Errorf("specific character set term not found: %q", term)
	}
	coding, _ := charset.Lookup(label)
	if coding == nil {
		return Default(), fmt.Errorf("missing encoding for label %q", label)
	}
	return coding, nil
}

// Decode converts raw element bytes to a string with the given decoder.
func Decode(coding encoding.Encoding, data []byte) (string, error) {
	if coding == nil {
		coding = Default()
	}
	out, err := coding.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Encode converts a string back to element bytes with the given decoder's
// encoder. The writer uses this for the text VRs that honor the data set's
// character set.
func Encode(coding encoding.Encoding, s string) ([]byte, error) {
	if coding == nil {
		coding = Default()
	}
	return coding.NewEncoder().Bytes([]byte(s))
}
