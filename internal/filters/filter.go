package filters

import (
	"bytes"
	"io"

	"github.com/yob/pdf-reader-sub001/pdferr"
)

// Params represents decode parameters from PDF stream dictionaries.
// Values are Go primitives: int, float64, bool, string.
type Params map[string]interface{}

// DecodeFunc decodes one filter stage.
type DecodeFunc func(data []byte, params Params) ([]byte, error)

// DefaultMaxDecodedSize bounds the output of a single decompression stage.
const DefaultMaxDecodedSize = 256 << 20

// Limits bounds the work done by decoders. The zero value uses the
// defaults.
type Limits struct {
	// MaxDecodedSize caps the output of one Flate or LZW stage
	MaxDecodedSize int64
}

func (l Limits) maxDecodedSize() int64 {
	if l.MaxDecodedSize <= 0 {
		return DefaultMaxDecodedSize
	}
	return l.MaxDecodedSize
}

// Select returns the decoder for a filter name or abbreviation with the
// default limits. Image filters decode to a passthrough.
func Select(name string) (DecodeFunc, error) {
	return Limits{}.Select(name)
}

// Select returns the decoder for a filter name or abbreviation bound to l
func (l Limits) Select(name string) (DecodeFunc, error) {
	limit := l.maxDecodedSize()
	switch name {
	case "FlateDecode", "Fl":
		return func(data []byte, params Params) ([]byte, error) { return flateDecode(data, params, limit) }, nil
	case "LZWDecode", "LZW":
		return func(data []byte, params Params) ([]byte, error) { return lzwDecode(data, params, limit) }, nil
	case "ASCIIHexDecode", "AHx":
		return func(data []byte, _ Params) ([]byte, error) { return ASCIIHexDecode(data) }, nil
	case "ASCII85Decode", "A85":
		return func(data []byte, _ Params) ([]byte, error) { return ASCII85Decode(data) }, nil
	case "RunLengthDecode", "RL":
		return func(data []byte, _ Params) ([]byte, error) { return RunLengthDecode(data) }, nil
	case "DCTDecode", "DCT", "CCITTFaxDecode", "CCF", "JBIG2Decode", "JPXDecode":
		return Passthrough, nil
	case "Crypt":
		return cryptPassthrough, nil
	default:
		return nil, pdferr.Unsupportedf("unsupported filter %s", name)
	}
}

// IsImageFilter reports whether name is an image compression filter that
// the chain leaves encoded.
func IsImageFilter(name string) bool {
	switch name {
	case "DCTDecode", "DCT", "CCITTFaxDecode", "CCF", "JBIG2Decode", "JPXDecode":
		return true
	}
	return false
}

// Passthrough returns data unchanged.
func Passthrough(data []byte, _ Params) ([]byte, error) {
	return data, nil
}

// cryptPassthrough leaves data unchanged. Named crypt filters are applied
// by the security handler before the chain runs.
func cryptPassthrough(data []byte, _ Params) ([]byte, error) {
	return data, nil
}

// readAllLimited drains r, failing when more than limit bytes come out.
// Partial output is returned alongside read errors.
func readAllLimited(r io.Reader, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if n > limit {
		return nil, pdferr.Malformedf("decoded stream exceeds %d bytes", limit)
	}
	return buf.Bytes(), err
}

// getIntParam extracts an integer parameter from Params, returning defaultValue
// if the parameter is missing or cannot be converted to an integer.
func getIntParam(params Params, key string, defaultValue int) int {
	if params == nil {
		return defaultValue
	}
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultValue
	}
}

// getBoolParam extracts a boolean parameter from Params, returning
// defaultValue if the parameter is missing or not a boolean.
func getBoolParam(params Params, key string, defaultValue bool) bool {
	if params == nil {
		return defaultValue
	}
	if v, ok := params[key].(bool); ok {
		return v
	}
	return defaultValue
}

func malformed(filter string, err error) error {
	return pdferr.Wrap(pdferr.Malformed, err, "%s", filter)
}
