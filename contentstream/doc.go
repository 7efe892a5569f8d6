// Package contentstream parses PDF content streams and dispatches their
// operators to receivers.
//
// # Parsing
//
// [Parser] returns one [Operation] at a time. Page content made of several
// streams is parsed as a single stream with a newline between the parts:
//
//	p := contentstream.NewChunkedParser(chunks)
//	for {
//	    op, err := p.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// Inline images come out as BI, then ID carrying the image dictionary as
// key/value operands, then EI carrying the raw image bytes. An
// unterminated string is reported as a malformed content error.
//
// # Receivers
//
// [Operators] maps every operator to a [Callback]. A [Walker] sends each
// callback to all of its receivers in order. A receiver implements any of
// the small typed interfaces ([TextShower], [FontSetter],
// [GraphicsStateSaver], ...) for the callbacks it cares about, or
// [Invoker] to receive the rest with raw operands. Callbacks a receiver
// does not implement are skipped.
//
//	w := contentstream.NewWalker(state, textReceiver)
//	err := w.Walk(p)
//
// Unknown operators are logged at debug level and ignored.
package contentstream
