// Package core provides low-level PDF parsing primitives and object types.
//
// This package implements the fundamental building blocks for working with PDF files:
// the object model, the tokenizer, the object parser, stream decoding,
// cross-reference sections and object streams.
//
// # Object Types
//
// PDF defines eight basic object types, all implemented as types satisfying the
// Object interface:
//
//   - [Null] - represents the PDF null object
//   - [Bool] - represents PDF boolean values (true/false)
//   - [Int] - represents PDF integers
//   - [Real] - represents PDF real numbers (floating point)
//   - [String] - represents PDF string objects (literal or hexadecimal)
//   - [Name] - represents PDF name objects (e.g., /Type, /Font)
//   - [Array] - represents PDF arrays
//   - [Dict] - represents PDF dictionaries
//
// Additionally, [Stream] represents a PDF stream (dictionary + binary data),
// and [Reference] represents a reference to an indirect object.
//
// # Tokenizing
//
// [Buffer] reads tokens from an io.ReaderAt at an explicit offset. Tokens
// can be pushed back with [Buffer.Unread]. A content buffer
// ([NewContentBuffer]) also returns the raw data of inline images as a
// single [TokenInlineImage] token.
//
// # Parsing
//
// [Parser] turns tokens into objects. Outside content streams it
// recognizes "num gen R" references with two tokens of lookahead.
// [Parser.ParseIndirectObject] reads "num gen obj ... endobj" blocks,
// including stream data whose /Length is missing or wrong.
//
// # Cross-Reference Tables
//
// [XRefParser] locates the last startxref offset and walks classic tables
// and xref streams through their XRefStm and Prev links. The resulting
// [XRefTable] keeps the newest entry for every object number.
//
// # Object Streams
//
// [ObjectStream] (PDF 1.5+) extracts the objects packed into a /ObjStm stream.
//
// # Stream Decoding
//
// [Stream.Decode] runs the /Filter chain through the internal filters
// package and memoizes the result.
package core
