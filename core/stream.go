package core

import (
	"fmt"

	"github.com/yob/pdf-reader-sub001/internal/filters"
	"github.com/yob/pdf-reader-sub001/pdferr"
)

// Decode runs the stream's filter chain and returns the decoded data. The
// result is memoized; image filters (DCTDecode, JPXDecode, ...) leave their
// input unchanged.
func (s *Stream) Decode() ([]byte, error) {
	return s.DecodeLimited(0)
}

// DecodeLimited is Decode with each decompression stage capped at
// maxDecodedSize bytes, the package default when it is zero or less
func (s *Stream) DecodeLimited(maxDecodedSize int64) ([]byte, error) {
	if s.done {
		return s.decoded, nil
	}
	data, err := decodeData(s.Data, s.Dict["Filter"], s.Dict["DecodeParms"],
		filters.Limits{MaxDecodedSize: maxDecodedSize})
	if err != nil {
		return nil, err
	}
	s.decoded = data
	s.done = true
	return data, nil
}

// Decoded returns the memoized output of Decode, or the raw data when the
// stream has not been decoded.
func (s *Stream) Decoded() []byte {
	if s.done {
		return s.decoded
	}
	return s.Data
}

// SetDecoded stores data as the result of the filter chain
func (s *Stream) SetDecoded(data []byte) {
	s.decoded = data
	s.done = true
}

// Filters returns the names in the stream's /Filter entry
func (s *Stream) Filters() []string {
	return filterNames(s.Dict)
}

// DecodeData applies the /Filter chain named in dict to data. /DecodeParms
// may be a single dictionary or an array parallel to the filters.
func DecodeData(data []byte, dict Dict) ([]byte, error) {
	return decodeData(data, dict["Filter"], dict["DecodeParms"], filters.Limits{})
}

// DecodeInlineImage applies the filters of an inline image, whose
// dictionary may use the abbreviated keys /F and /DP
func DecodeInlineImage(data []byte, dict Dict) ([]byte, error) {
	filterObj, paramsObj := dict["Filter"], dict["DecodeParms"]
	if filterObj == nil {
		filterObj = dict["F"]
	}
	if paramsObj == nil {
		paramsObj = dict["DP"]
	}
	return decodeData(data, filterObj, paramsObj, filters.Limits{})
}

func decodeData(data []byte, filterObj, paramsObj Object, limits filters.Limits) ([]byte, error) {
	var names []Object
	switch f := filterObj.(type) {
	case nil, Null:
		return data, nil
	case Name:
		names = []Object{f}
	case Array:
		names = f
	default:
		return nil, pdferr.Malformedf("invalid /Filter type %s", filterObj.Type())
	}

	for i, obj := range names {
		name, ok := obj.(Name)
		if !ok {
			return nil, pdferr.Malformedf("filter %d is not a name", i)
		}
		decode, err := limits.Select(string(name))
		if err != nil {
			return nil, err
		}

		var params Dict
		if arr, ok := paramsObj.(Array); ok {
			params, _ = arr.Get(i).(Dict)
		} else {
			params, _ = paramsObj.(Dict)
		}

		data, err = decode(data, dictToParams(params))
		if err != nil {
			return nil, fmt.Errorf("filter %d (%s): %w", i, name, err)
		}
	}
	return data, nil
}

// FilterParams converts a decode parameter dictionary to filter parameters
func FilterParams(dict Dict) filters.Params {
	return dictToParams(dict)
}

func filterNames(dict Dict) []string {
	switch f := dict["Filter"].(type) {
	case Name:
		return []string{string(f)}
	case Array:
		out := make([]string, 0, len(f))
		for _, obj := range f {
			if n, ok := obj.(Name); ok {
				out = append(out, string(n))
			}
		}
		return out
	}
	return nil
}

// dictToParams converts a core.Dict to filters.Params, translating PDF object
// types to Go primitive types (Int->int, Real->float64, Bool->bool, etc.).
func dictToParams(dict Dict) filters.Params {
	if dict == nil {
		return nil
	}

	params := make(filters.Params)
	for k, v := range dict {
		switch obj := v.(type) {
		case Int:
			params[k] = int(obj)
		case Real:
			params[k] = float64(obj)
		case Bool:
			params[k] = bool(obj)
		case String:
			params[k] = string(obj)
		case Name:
			params[k] = string(obj)
		default:
			params[k] = v
		}
	}
	return params
}
