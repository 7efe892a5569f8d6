package filters

import (
	"bytes"

	"golang.org/x/image/ccitt"
)

// DecodeCCITT expands CCITT Group 3/4 fax data into packed 1-bit rows.
// The stream chain leaves CCITTFaxDecode data encoded; image consumers call
// this explicitly with the image's decode parameters:
//   - K: <0 Group 4, >=0 Group 3
//   - Columns: image width in pixels (default 1728)
//   - Rows: image height (default 0 detects the height)
//   - BlackIs1: maps to ccitt.Options.Invert
func DecodeCCITT(data []byte, params Params) ([]byte, error) {
	columns := getIntParam(params, "Columns", 1728)
	rows := getIntParam(params, "Rows", 0)
	k := getIntParam(params, "K", 0)

	sf := ccitt.Group3
	if k < 0 {
		sf = ccitt.Group4
	}
	if rows <= 0 {
		rows = ccitt.AutoDetectHeight
	}
	opts := &ccitt.Options{Invert: getBoolParam(params, "BlackIs1", false)}

	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, columns, rows, opts)
	out, err := readAllLimited(r, DefaultMaxDecodedSize)
	if err != nil {
		return nil, malformed("CCITTFaxDecode", err)
	}
	return out, nil
}
