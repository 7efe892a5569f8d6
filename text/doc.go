// Package text assembles positioned text runs from page content.
//
// A [PageTextReceiver] embeds a graphicsstate.PageState and is driven by
// a contentstream.Walker. Every glyph shown by Tj, TJ, ' or " becomes a
// [TextRun] at the origin of the text rendering matrix:
//
//	state := graphicsstate.NewPageState(resources, resolver)
//	receiver := text.NewPageTextReceiver(state)
//	if err := contentstream.NewWalker(receiver).WalkBytes(content); err != nil {
//		return err
//	}
//	s := receiver.Content(nil, cropBox)
//
// [Assemble] removes runs drawn twice to fake bold type
// ([OverlappingRunsFilter]), joins neighbouring runs ([MergeRuns]) and
// hands the result to a [Layout]. The default [RowLayout] groups runs into
// rows with a [DisjointSet] and pads columns with spaces. Rows written
// right to left, detected with [DetectDirection], are emitted in reading
// order.
package text
