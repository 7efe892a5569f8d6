package filters

import (
	"bytes"
	"errors"
	"io"

	"github.com/hhrutter/lzw"
)

// LZWDecode decompresses LZW data: 9 to 12 bit MSB-first codes, clear code
// 256, end-of-data code 257. EarlyChange (default 1) widens the code one
// entry early, which is what PDF producers write. Predictors apply as for
// FlateDecode.
func LZWDecode(data []byte, params Params) ([]byte, error) {
	return lzwDecode(data, params, DefaultMaxDecodedSize)
}

func lzwDecode(data []byte, params Params, limit int64) ([]byte, error) {
	earlyChange := getIntParam(params, "EarlyChange", 1) == 1

	rc := lzw.NewReader(bytes.NewReader(data), earlyChange)
	defer rc.Close()

	out, err := readAllLimited(rc, limit)
	if err != nil && !(errors.Is(err, io.ErrUnexpectedEOF) && len(out) > 0) {
		return nil, malformed("LZWDecode", err)
	}

	out, err = applyPredictor(out, params)
	if err != nil {
		return nil, malformed("LZWDecode", err)
	}
	return out, nil
}

// LZWEncode compresses data with the same code layout LZWDecode expects.
func LZWEncode(data []byte, earlyChange bool) ([]byte, error) {
	var buf bytes.Buffer
	wc := lzw.NewWriter(&buf, earlyChange)
	if _, err := wc.Write(data); err != nil {
		return nil, err
	}
	if err := wc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
