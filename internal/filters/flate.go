package filters

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// FlateDecode decompresses Flate (zlib/deflate) compressed data and applies
// the predictor named in params. Streams written without the zlib header
// are decoded as raw deflate.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	return flateDecode(data, params, DefaultMaxDecodedSize)
}

func flateDecode(data []byte, params Params, limit int64) ([]byte, error) {
	decompressed, err := inflate(data, limit)
	if err != nil {
		return nil, malformed("FlateDecode", err)
	}
	out, err := applyPredictor(decompressed, params)
	if err != nil {
		return nil, malformed("FlateDecode", err)
	}
	return out, nil
}

// inflate decompresses zlib data, falling back to raw deflate. A stream
// truncated after some output keeps what was decoded.
func inflate(data []byte, limit int64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		fr := flate.NewReader(bytes.NewReader(data))
		defer fr.Close()
		out, ferr := readAllLimited(fr, limit)
		if ferr != nil && !isTruncation(ferr) {
			return nil, fmt.Errorf("invalid zlib header: %w", err)
		}
		return out, nil
	}
	defer zr.Close()

	out, err := readAllLimited(zr, limit)
	if err != nil {
		if isTruncation(err) && len(out) > 0 {
			return out, nil
		}
		return nil, err
	}
	return out, nil
}

func isTruncation(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, zlib.ErrChecksum)
}

// applyPredictor undoes the prediction step. Predictor 1 is identity,
// 2 is TIFF Predictor 2 and 10-15 are the PNG predictors, where every row
// carries its own algorithm byte.
func applyPredictor(data []byte, params Params) ([]byte, error) {
	predictor := getIntParam(params, "Predictor", 1)
	switch {
	case predictor == 1:
		return data, nil
	case predictor == 2:
		return applyTIFFPredictor2(data, params)
	case predictor >= 10 && predictor <= 15:
		return applyPNGPredictor(data, params)
	default:
		return nil, fmt.Errorf("unsupported predictor: %d", predictor)
	}
}

// rowGeometry returns bytes per pixel (at least 1) and bytes per row.
func rowGeometry(params Params) (bpp, rowLen int, err error) {
	columns := getIntParam(params, "Columns", 1)
	colors := getIntParam(params, "Colors", 1)
	bpc := getIntParam(params, "BitsPerComponent", 8)
	if columns < 1 || colors < 1 {
		return 0, 0, fmt.Errorf("invalid predictor geometry: columns %d, colors %d", columns, colors)
	}
	switch bpc {
	case 1, 2, 4, 8, 16:
	default:
		return 0, 0, fmt.Errorf("invalid BitsPerComponent %d", bpc)
	}
	bpp = (colors*bpc + 7) / 8
	rowLen = (columns*colors*bpc + 7) / 8
	return bpp, rowLen, nil
}

// applyTIFFPredictor2 predicts each sample from the one to its left. Only
// 8-bit components are handled.
func applyTIFFPredictor2(data []byte, params Params) ([]byte, error) {
	if bpc := getIntParam(params, "BitsPerComponent", 8); bpc != 8 {
		return nil, fmt.Errorf("TIFF Predictor 2 only supports 8 bits per component, got %d", bpc)
	}
	bpp, rowLen, err := rowGeometry(params)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(data))
	copy(out, data)
	for rowStart := 0; rowStart < len(out); rowStart += rowLen {
		end := rowStart + rowLen
		if end > len(out) {
			end = len(out)
		}
		for i := rowStart + bpp; i < end; i++ {
			out[i] += out[i-bpp]
		}
	}
	return out, nil
}

// applyPNGPredictor decodes rows prefixed with a PNG filter-type byte. A
// short final row is decoded as far as it goes.
func applyPNGPredictor(data []byte, params Params) ([]byte, error) {
	bpp, rowLen, err := rowGeometry(params)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	prev := make([]byte, rowLen)
	cur := make([]byte, rowLen)

	for pos := 0; pos < len(data); pos += rowLen + 1 {
		end := pos + rowLen + 1
		if end > len(data) {
			end = len(data)
		}
		filterType := data[pos]
		raw := data[pos+1 : end]
		row := cur[:len(raw)]

		for i := range raw {
			var left, up, upLeft byte
			if i >= bpp {
				left = row[i-bpp]
				upLeft = prev[i-bpp]
			}
			up = prev[i]

			switch filterType {
			case 0:
				row[i] = raw[i]
			case 1:
				row[i] = raw[i] + left
			case 2:
				row[i] = raw[i] + up
			case 3:
				row[i] = raw[i] + byte((int(left)+int(up))/2)
			case 4:
				row[i] = raw[i] + paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("unknown PNG filter type %d in row %d", filterType, pos/(rowLen+1))
			}
		}

		out.Write(row)
		prev, cur = cur, prev
	}
	return out.Bytes(), nil
}

// paeth selects the neighbour (left, above, upper-left) closest to a
// linear prediction, as in the PNG specification.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
