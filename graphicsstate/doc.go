// Package graphicsstate tracks the graphics and text state of a page while
// its content stream is replayed.
//
// # Page State
//
// [PageState] keeps a stack of [Frame] values (CTM, line and color
// attributes, text parameters) plus the text matrix and text line matrix
// of the open text object. Its methods are named after the content stream
// callbacks, so it can be registered with a contentstream.Walker directly
// or embedded by a receiver:
//
//	state := graphicsstate.NewPageState(resources, objects)
//	walker := contentstream.NewWalker(state)
//	err := walker.WalkBytes(content)
//
// cm pre-multiplies the CTM. A Q with nothing to restore is ignored and
// counted by [PageState.Underflows].
//
// # Text Positioning
//
// [PageState.ProcessGlyphDisplacement] advances the text matrix by
//
//	tx = ((w0 - Tj/1000) * Tfs + Tc + Tw) * Th
//
// where Tw only applies to the single-byte code 32.
// [PageState.TextRenderingMatrix] gives the glyph origin in device space.
//
// # Resources
//
// Fonts are loaded from the resource dictionary the first time they are
// used, so a Tf naming a missing font only fails when text is shown.
// [PageState.WithXObject] runs a form XObject with its matrix and
// resources in effect.
//
// # Paths
//
// [PathReceiver] collects stroked lines and painted rectangles in device
// space.
package graphicsstate
