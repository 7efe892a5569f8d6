package contentstream

import (
	"github.com/yob/pdf-reader-sub001/core"
)

// Callback names one receiver method. Every content stream operator maps
// to exactly one callback; document level callbacks have no operator.
type Callback string

// Content stream callbacks
const (
	CloseFillStroke                           Callback = "CloseFillStroke"
	FillStroke                                Callback = "FillStroke"
	CloseFillStrokeWithEvenOdd                Callback = "CloseFillStrokeWithEvenOdd"
	FillStrokeWithEvenOdd                     Callback = "FillStrokeWithEvenOdd"
	BeginMarkedContentWithPropertyList        Callback = "BeginMarkedContentWithPropertyList"
	BeginInlineImage                          Callback = "BeginInlineImage"
	BeginMarkedContent                        Callback = "BeginMarkedContent"
	BeginTextObject                           Callback = "BeginTextObject"
	BeginCompatibilitySection                 Callback = "BeginCompatibilitySection"
	AppendCurvedSegment                       Callback = "AppendCurvedSegment"
	ConcatenateMatrix                         Callback = "ConcatenateMatrix"
	SetStrokeColorSpace                       Callback = "SetStrokeColorSpace"
	SetNonstrokeColorSpace                    Callback = "SetNonstrokeColorSpace"
	SetLineDash                               Callback = "SetLineDash"
	SetGlyphWidth                             Callback = "SetGlyphWidth"
	SetGlyphWidthAndBoundingBox               Callback = "SetGlyphWidthAndBoundingBox"
	InvokeXObject                             Callback = "InvokeXObject"
	DefineMarkedContentWithPropertyList       Callback = "DefineMarkedContentWithPropertyList"
	EndInlineImage                            Callback = "EndInlineImage"
	EndMarkedContent                          Callback = "EndMarkedContent"
	EndTextObject                             Callback = "EndTextObject"
	EndCompatibilitySection                   Callback = "EndCompatibilitySection"
	FillPathWithNonzero                       Callback = "FillPathWithNonzero"
	FillPathWithEvenOdd                       Callback = "FillPathWithEvenOdd"
	SetGrayForStroking                        Callback = "SetGrayForStroking"
	SetGrayForNonstroking                     Callback = "SetGrayForNonstroking"
	SetGraphicsStateParameters                Callback = "SetGraphicsStateParameters"
	CloseSubpath                              Callback = "CloseSubpath"
	SetFlatnessTolerance                      Callback = "SetFlatnessTolerance"
	BeginInlineImageData                      Callback = "BeginInlineImageData"
	SetLineJoin                               Callback = "SetLineJoin"
	SetLineCapStyle                           Callback = "SetLineCapStyle"
	SetCMYKColorForStroking                   Callback = "SetCMYKColorForStroking"
	SetCMYKColorForNonstroking                Callback = "SetCMYKColorForNonstroking"
	AppendLine                                Callback = "AppendLine"
	BeginNewSubpath                           Callback = "BeginNewSubpath"
	SetMiterLimit                             Callback = "SetMiterLimit"
	DefineMarkedContentPoint                  Callback = "DefineMarkedContentPoint"
	EndPath                                   Callback = "EndPath"
	SaveGraphicsState                         Callback = "SaveGraphicsState"
	RestoreGraphicsState                      Callback = "RestoreGraphicsState"
	AppendRectangle                           Callback = "AppendRectangle"
	SetRGBColorForStroking                    Callback = "SetRGBColorForStroking"
	SetRGBColorForNonstroking                 Callback = "SetRGBColorForNonstroking"
	SetColorRenderingIntent                   Callback = "SetColorRenderingIntent"
	CloseAndStrokePath                        Callback = "CloseAndStrokePath"
	StrokePath                                Callback = "StrokePath"
	SetColorForStroking                       Callback = "SetColorForStroking"
	SetColorForNonstroking                    Callback = "SetColorForNonstroking"
	SetColorForStrokingAndSpecial             Callback = "SetColorForStrokingAndSpecial"
	SetColorForNonstrokingAndSpecial          Callback = "SetColorForNonstrokingAndSpecial"
	PaintAreaWithShadingPattern               Callback = "PaintAreaWithShadingPattern"
	MoveToStartOfNextLine                     Callback = "MoveToStartOfNextLine"
	SetCharacterSpacing                       Callback = "SetCharacterSpacing"
	MoveTextPosition                          Callback = "MoveTextPosition"
	MoveTextPositionAndSetLeading             Callback = "MoveTextPositionAndSetLeading"
	SetTextFontAndSize                        Callback = "SetTextFontAndSize"
	ShowText                                  Callback = "ShowText"
	ShowTextWithPositioning                   Callback = "ShowTextWithPositioning"
	SetTextLeading                            Callback = "SetTextLeading"
	SetTextMatrixAndTextLineMatrix            Callback = "SetTextMatrixAndTextLineMatrix"
	SetTextRenderingMode                      Callback = "SetTextRenderingMode"
	SetTextRise                               Callback = "SetTextRise"
	SetWordSpacing                            Callback = "SetWordSpacing"
	SetHorizontalTextScaling                  Callback = "SetHorizontalTextScaling"
	AppendCurvedSegmentInitialPointReplicated Callback = "AppendCurvedSegmentInitialPointReplicated"
	SetLineWidth                              Callback = "SetLineWidth"
	SetClippingPathWithNonzero                Callback = "SetClippingPathWithNonzero"
	SetClippingPathWithEvenOdd                Callback = "SetClippingPathWithEvenOdd"
	AppendCurvedSegmentFinalPointReplicated   Callback = "AppendCurvedSegmentFinalPointReplicated"
	MoveToNextLineAndShowText                 Callback = "MoveToNextLineAndShowText"
	SetSpacingNextLineShowText                Callback = "SetSpacingNextLineShowText"
)

// Document level callbacks, sent by the reader around page content
const (
	BeginDocument Callback = "BeginDocument"
	EndDocument   Callback = "EndDocument"
	BeginPage     Callback = "BeginPage"
	EndPage       Callback = "EndPage"
	PDFVersion    Callback = "PDFVersion"
	Metadata      Callback = "Metadata"
	XMLMetadata   Callback = "XMLMetadata"
	PageCount     Callback = "PageCount"
)

// Operators maps each content stream operator to its callback
var Operators = map[string]Callback{
	"b":   CloseFillStroke,
	"B":   FillStroke,
	"b*":  CloseFillStrokeWithEvenOdd,
	"B*":  FillStrokeWithEvenOdd,
	"BDC": BeginMarkedContentWithPropertyList,
	"BI":  BeginInlineImage,
	"BMC": BeginMarkedContent,
	"BT":  BeginTextObject,
	"BX":  BeginCompatibilitySection,
	"c":   AppendCurvedSegment,
	"cm":  ConcatenateMatrix,
	"CS":  SetStrokeColorSpace,
	"cs":  SetNonstrokeColorSpace,
	"d":   SetLineDash,
	"d0":  SetGlyphWidth,
	"d1":  SetGlyphWidthAndBoundingBox,
	"Do":  InvokeXObject,
	"DP":  DefineMarkedContentWithPropertyList,
	"EI":  EndInlineImage,
	"EMC": EndMarkedContent,
	"ET":  EndTextObject,
	"EX":  EndCompatibilitySection,
	"f":   FillPathWithNonzero,
	"F":   FillPathWithNonzero,
	"f*":  FillPathWithEvenOdd,
	"G":   SetGrayForStroking,
	"g":   SetGrayForNonstroking,
	"gs":  SetGraphicsStateParameters,
	"h":   CloseSubpath,
	"i":   SetFlatnessTolerance,
	"ID":  BeginInlineImageData,
	"j":   SetLineJoin,
	"J":   SetLineCapStyle,
	"K":   SetCMYKColorForStroking,
	"k":   SetCMYKColorForNonstroking,
	"l":   AppendLine,
	"m":   BeginNewSubpath,
	"M":   SetMiterLimit,
	"MP":  DefineMarkedContentPoint,
	"n":   EndPath,
	"q":   SaveGraphicsState,
	"Q":   RestoreGraphicsState,
	"re":  AppendRectangle,
	"RG":  SetRGBColorForStroking,
	"rg":  SetRGBColorForNonstroking,
	"ri":  SetColorRenderingIntent,
	"s":   CloseAndStrokePath,
	"S":   StrokePath,
	"SC":  SetColorForStroking,
	"sc":  SetColorForNonstroking,
	"SCN": SetColorForStrokingAndSpecial,
	"scn": SetColorForNonstrokingAndSpecial,
	"sh":  PaintAreaWithShadingPattern,
	"T*":  MoveToStartOfNextLine,
	"Tc":  SetCharacterSpacing,
	"Td":  MoveTextPosition,
	"TD":  MoveTextPositionAndSetLeading,
	"Tf":  SetTextFontAndSize,
	"Tj":  ShowText,
	"TJ":  ShowTextWithPositioning,
	"TL":  SetTextLeading,
	"Tm":  SetTextMatrixAndTextLineMatrix,
	"Tr":  SetTextRenderingMode,
	"Ts":  SetTextRise,
	"Tw":  SetWordSpacing,
	"Tz":  SetHorizontalTextScaling,
	"v":   AppendCurvedSegmentInitialPointReplicated,
	"w":   SetLineWidth,
	"W":   SetClippingPathWithNonzero,
	"W*":  SetClippingPathWithEvenOdd,
	"y":   AppendCurvedSegmentFinalPointReplicated,
	"'":   MoveToNextLineAndShowText,
	"\"":  SetSpacingNextLineShowText,
}

// Invoker receives any callback with its raw operands. A receiver that
// implements one of the typed interfaces below for a callback gets the
// typed call instead.
type Invoker interface {
	Invoke(cb Callback, operands []core.Object) error
}

// GraphicsStateSaver handles q
type GraphicsStateSaver interface {
	SaveGraphicsState() error
}

// GraphicsStateRestorer handles Q
type GraphicsStateRestorer interface {
	RestoreGraphicsState() error
}

// MatrixConcatenator handles cm
type MatrixConcatenator interface {
	ConcatenateMatrix(a, b, c, d, e, f float64) error
}

// LineWidthSetter handles w
type LineWidthSetter interface {
	SetLineWidth(width float64) error
}

// TextObjectBeginner handles BT
type TextObjectBeginner interface {
	BeginTextObject() error
}

// TextObjectEnder handles ET
type TextObjectEnder interface {
	EndTextObject() error
}

// FontSetter handles Tf
type FontSetter interface {
	SetTextFontAndSize(name string, size float64) error
}

// CharacterSpacingSetter handles Tc
type CharacterSpacingSetter interface {
	SetCharacterSpacing(v float64) error
}

// WordSpacingSetter handles Tw
type WordSpacingSetter interface {
	SetWordSpacing(v float64) error
}

// HorizontalScalingSetter handles Tz
type HorizontalScalingSetter interface {
	SetHorizontalTextScaling(v float64) error
}

// LeadingSetter handles TL
type LeadingSetter interface {
	SetTextLeading(v float64) error
}

// RenderingModeSetter handles Tr
type RenderingModeSetter interface {
	SetTextRenderingMode(mode int) error
}

// RiseSetter handles Ts
type RiseSetter interface {
	SetTextRise(v float64) error
}

// TextPositionMover handles Td
type TextPositionMover interface {
	MoveTextPosition(tx, ty float64) error
}

// TextPositionLeadingMover handles TD
type TextPositionLeadingMover interface {
	MoveTextPositionAndSetLeading(tx, ty float64) error
}

// TextMatrixSetter handles Tm
type TextMatrixSetter interface {
	SetTextMatrixAndTextLineMatrix(a, b, c, d, e, f float64) error
}

// NextLineMover handles T*
type NextLineMover interface {
	MoveToStartOfNextLine() error
}

// TextShower handles Tj
type TextShower interface {
	ShowText(s []byte) error
}

// PositionedTextShower handles TJ. Elements are strings and numbers.
type PositionedTextShower interface {
	ShowTextWithPositioning(arr core.Array) error
}

// NextLineTextShower handles '
type NextLineTextShower interface {
	MoveToNextLineAndShowText(s []byte) error
}

// SpacingTextShower handles "
type SpacingTextShower interface {
	SetSpacingNextLineShowText(aw, ac float64, s []byte) error
}

// XObjectInvoker handles Do
type XObjectInvoker interface {
	InvokeXObject(name string) error
}

// InlineImageBeginner handles BI
type InlineImageBeginner interface {
	BeginInlineImage() error
}

// InlineImageDataBeginner handles ID. dict holds the image parameters.
type InlineImageDataBeginner interface {
	BeginInlineImageData(dict core.Dict) error
}

// InlineImageEnder handles EI with the raw image data
type InlineImageEnder interface {
	EndInlineImage(data []byte) error
}

// PathBuilder handles the path construction operators m l c v y h re
type PathBuilder interface {
	BeginNewSubpath(x, y float64) error
	AppendLine(x, y float64) error
	AppendCurvedSegment(x1, y1, x2, y2, x3, y3 float64) error
	AppendCurvedSegmentInitialPointReplicated(x2, y2, x3, y3 float64) error
	AppendCurvedSegmentFinalPointReplicated(x1, y1, x3, y3 float64) error
	CloseSubpath() error
	AppendRectangle(x, y, w, h float64) error
}

// PathPainter handles the path painting operators. stroke and fill say
// what the operator paints; close says whether it closes the subpath
// first.
type PathPainter interface {
	PaintPath(cb Callback, stroke, fill, close bool) error
}

// ColorSetter handles the device color operators G g RG rg K k
type ColorSetter interface {
	SetStrokeColorRGB(r, g, b float64)
	SetFillColorRGB(r, g, b float64)
}

// DocumentBeginner receives BeginDocument
type DocumentBeginner interface {
	BeginDocument(trailer core.Dict) error
}

// DocumentEnder receives EndDocument
type DocumentEnder interface {
	EndDocument() error
}

// PageBeginner receives BeginPage with the 1-based page number and its
// attributes
type PageBeginner interface {
	BeginPage(number int, attrs core.Dict) error
}

// PageEnder receives EndPage
type PageEnder interface {
	EndPage() error
}

// VersionReceiver receives PDFVersion
type VersionReceiver interface {
	PDFVersion(version float64) error
}

// MetadataReceiver receives the Info dictionary
type MetadataReceiver interface {
	Metadata(info core.Dict) error
}

// XMLMetadataReceiver receives the XMP metadata packet
type XMLMetadataReceiver interface {
	XMLMetadata(xml string) error
}

// PageCountReceiver receives PageCount
type PageCountReceiver interface {
	PageCount(n int) error
}
