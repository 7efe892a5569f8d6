package filters

import "github.com/yob/pdf-reader-sub001/pdferr"

// RunLengthDecode decodes the PackBits style RunLength filter. A length
// byte 0-127 copies the next n+1 bytes, 129-255 repeats the next byte
// 257-n times and 128 ends the data.
func RunLengthDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*2)
	for i := 0; i < len(data); {
		n := int(data[i])
		i++
		switch {
		case n == 128:
			return out, nil
		case n < 128:
			end := i + n + 1
			if end > len(data) {
				return nil, pdferr.Malformedf("RunLengthDecode: literal run past end of data")
			}
			out = append(out, data[i:end]...)
			i = end
		default:
			if i >= len(data) {
				return nil, pdferr.Malformedf("RunLengthDecode: repeat run past end of data")
			}
			for j := 0; j < 257-n; j++ {
				out = append(out, data[i])
			}
			i++
		}
	}
	return out, nil
}
