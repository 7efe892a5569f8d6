// Package filters provides the PDF stream decoders.
//
// # Selecting A Filter
//
// [Select] maps a filter name (or its inline-image abbreviation) to a
// [DecodeFunc]:
//
//	dec, err := filters.Select("FlateDecode")
//	out, err := dec(data, filters.Params{"Predictor": 12, "Columns": 5})
//
// Unknown names fail with an Unsupported error. Structural problems in the
// input fail with a Malformed error; decoders never panic on bad input.
//
// # Supported Filters
//
//   - FlateDecode, with PNG (10-15) and TIFF (2) predictors
//   - LZWDecode, with EarlyChange and the same predictors
//   - ASCIIHexDecode and ASCII85Decode
//   - RunLengthDecode
//
// DCTDecode, CCITTFaxDecode, JBIG2Decode and JPXDecode pass data through
// unchanged. [DecodeCCITT] expands fax data for callers that want bits.
//
// # Limits
//
// Decompression output is capped per stage (see [Limits]) so a
// decompression bomb fails instead of exhausting memory. Each document
// carries its own Limits value; there is no package-level setting.
package filters
