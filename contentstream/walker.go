package contentstream

import (
	"io"
	"log/slog"

	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/pdferr"
)

// Walker dispatches content stream operations to receivers. Every
// receiver sees every callback in registration order; callbacks a
// receiver does not implement are skipped.
type Walker struct {
	receivers []any
	logger    *slog.Logger
}

// NewWalker creates a walker for the given receivers
func NewWalker(receivers ...any) *Walker {
	return &Walker{
		receivers: receivers,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for skipped operators
func (w *Walker) SetLogger(logger *slog.Logger) {
	if logger != nil {
		w.logger = logger
	}
}

// Receivers returns the registered receivers
func (w *Walker) Receivers() []any { return w.receivers }

// Walk dispatches every operation from p
func (w *Walker) Walk(p *Parser) error {
	for {
		op, err := p.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := w.Dispatch(op); err != nil {
			return err
		}
	}
}

// WalkBytes parses and walks content stream data
func (w *Walker) WalkBytes(data []byte) error {
	return w.Walk(NewParser(data))
}

// Dispatch sends one operation to all receivers. Unknown operators are
// logged and skipped.
func (w *Walker) Dispatch(op Operation) error {
	cb, ok := Operators[op.Operator]
	if !ok {
		w.logger.Debug("skipping unknown operator", "operator", op.Operator)
		return nil
	}
	return w.Send(cb, op.Operands...)
}

// Send delivers a callback to all receivers
func (w *Walker) Send(cb Callback, operands ...core.Object) error {
	for _, r := range w.receivers {
		handled, err := call(r, cb, operands)
		if err != nil {
			return err
		}
		if handled {
			continue
		}
		if inv, ok := r.(Invoker); ok {
			if err := inv.Invoke(cb, operands); err != nil {
				return err
			}
		}
	}
	return nil
}

// call invokes the typed method for cb when r implements it
func call(r any, cb Callback, ops []core.Object) (bool, error) {
	switch cb {
	case SaveGraphicsState:
		if v, ok := r.(GraphicsStateSaver); ok {
			return true, v.SaveGraphicsState()
		}
	case RestoreGraphicsState:
		if v, ok := r.(GraphicsStateRestorer); ok {
			return true, v.RestoreGraphicsState()
		}
	case ConcatenateMatrix:
		if v, ok := r.(MatrixConcatenator); ok {
			n, err := numbers(cb, ops, 6)
			if err != nil {
				return true, err
			}
			return true, v.ConcatenateMatrix(n[0], n[1], n[2], n[3], n[4], n[5])
		}
	case SetLineWidth:
		if v, ok := r.(LineWidthSetter); ok {
			n, err := numbers(cb, ops, 1)
			if err != nil {
				return true, err
			}
			return true, v.SetLineWidth(n[0])
		}
	case BeginTextObject:
		if v, ok := r.(TextObjectBeginner); ok {
			return true, v.BeginTextObject()
		}
	case EndTextObject:
		if v, ok := r.(TextObjectEnder); ok {
			return true, v.EndTextObject()
		}
	case SetTextFontAndSize:
		if v, ok := r.(FontSetter); ok {
			if len(ops) < 2 {
				return true, operandError(cb, 2)
			}
			name, ok := ops[len(ops)-2].(core.Name)
			size, isNum := core.Number(ops[len(ops)-1])
			if !ok || !isNum {
				return true, pdferr.Malformedf("invalid operands for %s", cb)
			}
			return true, v.SetTextFontAndSize(string(name), size)
		}
	case SetCharacterSpacing:
		if v, ok := r.(CharacterSpacingSetter); ok {
			return true, withNumber(cb, ops, v.SetCharacterSpacing)
		}
	case SetWordSpacing:
		if v, ok := r.(WordSpacingSetter); ok {
			return true, withNumber(cb, ops, v.SetWordSpacing)
		}
	case SetHorizontalTextScaling:
		if v, ok := r.(HorizontalScalingSetter); ok {
			return true, withNumber(cb, ops, v.SetHorizontalTextScaling)
		}
	case SetTextLeading:
		if v, ok := r.(LeadingSetter); ok {
			return true, withNumber(cb, ops, v.SetTextLeading)
		}
	case SetTextRenderingMode:
		if v, ok := r.(RenderingModeSetter); ok {
			return true, withNumber(cb, ops, func(f float64) error { return v.SetTextRenderingMode(int(f)) })
		}
	case SetTextRise:
		if v, ok := r.(RiseSetter); ok {
			return true, withNumber(cb, ops, v.SetTextRise)
		}
	case MoveTextPosition:
		if v, ok := r.(TextPositionMover); ok {
			n, err := numbers(cb, ops, 2)
			if err != nil {
				return true, err
			}
			return true, v.MoveTextPosition(n[0], n[1])
		}
	case MoveTextPositionAndSetLeading:
		if v, ok := r.(TextPositionLeadingMover); ok {
			n, err := numbers(cb, ops, 2)
			if err != nil {
				return true, err
			}
			return true, v.MoveTextPositionAndSetLeading(n[0], n[1])
		}
	case SetTextMatrixAndTextLineMatrix:
		if v, ok := r.(TextMatrixSetter); ok {
			n, err := numbers(cb, ops, 6)
			if err != nil {
				return true, err
			}
			return true, v.SetTextMatrixAndTextLineMatrix(n[0], n[1], n[2], n[3], n[4], n[5])
		}
	case MoveToStartOfNextLine:
		if v, ok := r.(NextLineMover); ok {
			return true, v.MoveToStartOfNextLine()
		}
	case ShowText:
		if v, ok := r.(TextShower); ok {
			s, err := lastString(cb, ops)
			if err != nil {
				return true, err
			}
			return true, v.ShowText(s)
		}
	case ShowTextWithPositioning:
		if v, ok := r.(PositionedTextShower); ok {
			if len(ops) == 0 {
				return true, operandError(cb, 1)
			}
			arr, ok := ops[len(ops)-1].(core.Array)
			if !ok {
				return true, pdferr.Malformedf("invalid operands for %s", cb)
			}
			return true, v.ShowTextWithPositioning(arr)
		}
	case MoveToNextLineAndShowText:
		if v, ok := r.(NextLineTextShower); ok {
			s, err := lastString(cb, ops)
			if err != nil {
				return true, err
			}
			return true, v.MoveToNextLineAndShowText(s)
		}
	case SetSpacingNextLineShowText:
		if v, ok := r.(SpacingTextShower); ok {
			if len(ops) < 3 {
				return true, operandError(cb, 3)
			}
			n, err := numbers(cb, ops[:len(ops)-1], 2)
			if err != nil {
				return true, err
			}
			s, err := lastString(cb, ops)
			if err != nil {
				return true, err
			}
			return true, v.SetSpacingNextLineShowText(n[0], n[1], s)
		}
	case InvokeXObject:
		if v, ok := r.(XObjectInvoker); ok {
			if len(ops) == 0 {
				return true, operandError(cb, 1)
			}
			name, ok := ops[len(ops)-1].(core.Name)
			if !ok {
				return true, pdferr.Malformedf("invalid operands for %s", cb)
			}
			return true, v.InvokeXObject(string(name))
		}
	case BeginInlineImage:
		if v, ok := r.(InlineImageBeginner); ok {
			return true, v.BeginInlineImage()
		}
	case BeginInlineImageData:
		if v, ok := r.(InlineImageDataBeginner); ok {
			dict := core.Dict{}
			for i := 0; i+1 < len(ops); i += 2 {
				if key, ok := ops[i].(core.Name); ok {
					dict[string(key)] = ops[i+1]
				}
			}
			return true, v.BeginInlineImageData(dict)
		}
	case EndInlineImage:
		if v, ok := r.(InlineImageEnder); ok {
			s, err := lastString(cb, ops)
			if err != nil {
				return true, err
			}
			return true, v.EndInlineImage(s)
		}
	case BeginNewSubpath, AppendLine, AppendCurvedSegment, AppendCurvedSegmentInitialPointReplicated,
		AppendCurvedSegmentFinalPointReplicated, CloseSubpath, AppendRectangle:
		if v, ok := r.(PathBuilder); ok {
			return true, buildPath(v, cb, ops)
		}
	case StrokePath, CloseAndStrokePath, FillPathWithNonzero, FillPathWithEvenOdd, FillStroke,
		FillStrokeWithEvenOdd, CloseFillStroke, CloseFillStrokeWithEvenOdd, EndPath:
		if v, ok := r.(PathPainter); ok {
			stroke, fill, closePath := painting(cb)
			return true, v.PaintPath(cb, stroke, fill, closePath)
		}
	case SetGrayForStroking, SetGrayForNonstroking, SetRGBColorForStroking, SetRGBColorForNonstroking,
		SetCMYKColorForStroking, SetCMYKColorForNonstroking:
		if v, ok := r.(ColorSetter); ok {
			return true, setColor(v, cb, ops)
		}
	case BeginDocument, EndDocument, BeginPage, EndPage, PDFVersion, Metadata, XMLMetadata, PageCount:
		return callDocument(r, cb, ops)
	}
	return false, nil
}

// callDocument handles the callbacks the reader sends around page content
func callDocument(r any, cb Callback, ops []core.Object) (bool, error) {
	switch cb {
	case BeginDocument:
		if v, ok := r.(DocumentBeginner); ok {
			trailer, _ := lastDict(ops)
			return true, v.BeginDocument(trailer)
		}
	case EndDocument:
		if v, ok := r.(DocumentEnder); ok {
			return true, v.EndDocument()
		}
	case BeginPage:
		if v, ok := r.(PageBeginner); ok {
			if len(ops) < 2 {
				return true, operandError(cb, 2)
			}
			number, ok := ops[0].(core.Int)
			attrs, isDict := ops[1].(core.Dict)
			if !ok || !isDict {
				return true, pdferr.Malformedf("invalid operands for %s", cb)
			}
			return true, v.BeginPage(int(number), attrs)
		}
	case EndPage:
		if v, ok := r.(PageEnder); ok {
			return true, v.EndPage()
		}
	case PDFVersion:
		if v, ok := r.(VersionReceiver); ok {
			return true, withNumber(cb, ops, v.PDFVersion)
		}
	case Metadata:
		if v, ok := r.(MetadataReceiver); ok {
			info, _ := lastDict(ops)
			return true, v.Metadata(info)
		}
	case XMLMetadata:
		if v, ok := r.(XMLMetadataReceiver); ok {
			s, err := lastString(cb, ops)
			if err != nil {
				return true, err
			}
			return true, v.XMLMetadata(string(s))
		}
	case PageCount:
		if v, ok := r.(PageCountReceiver); ok {
			n, err := numbers(cb, ops, 1)
			if err != nil {
				return true, err
			}
			return true, v.PageCount(int(n[0]))
		}
	}
	return false, nil
}

// lastDict returns the last operand as a dictionary, or an empty one
func lastDict(ops []core.Object) (core.Dict, bool) {
	if len(ops) == 0 {
		return core.Dict{}, false
	}
	d, ok := ops[len(ops)-1].(core.Dict)
	if !ok {
		return core.Dict{}, false
	}
	return d, true
}

// pathOperands is the operand count of each path construction callback
var pathOperands = map[Callback]int{
	BeginNewSubpath:     2,
	AppendLine:          2,
	AppendCurvedSegment: 6,
	CloseSubpath:        0,
	AppendRectangle:     4,

	AppendCurvedSegmentInitialPointReplicated: 4,
	AppendCurvedSegmentFinalPointReplicated:   4,
}

func buildPath(v PathBuilder, cb Callback, ops []core.Object) error {
	n, err := numbers(cb, ops, pathOperands[cb])
	if err != nil {
		return err
	}
	switch cb {
	case BeginNewSubpath:
		return v.BeginNewSubpath(n[0], n[1])
	case AppendLine:
		return v.AppendLine(n[0], n[1])
	case AppendCurvedSegment:
		return v.AppendCurvedSegment(n[0], n[1], n[2], n[3], n[4], n[5])
	case AppendCurvedSegmentInitialPointReplicated:
		return v.AppendCurvedSegmentInitialPointReplicated(n[0], n[1], n[2], n[3])
	case AppendCurvedSegmentFinalPointReplicated:
		return v.AppendCurvedSegmentFinalPointReplicated(n[0], n[1], n[2], n[3])
	case CloseSubpath:
		return v.CloseSubpath()
	default:
		return v.AppendRectangle(n[0], n[1], n[2], n[3])
	}
}

// painting returns what a painting operator does
func painting(cb Callback) (stroke, fill, closePath bool) {
	switch cb {
	case StrokePath:
		return true, false, false
	case CloseAndStrokePath:
		return true, false, true
	case FillPathWithNonzero, FillPathWithEvenOdd:
		return false, true, false
	case FillStroke, FillStrokeWithEvenOdd:
		return true, true, false
	case CloseFillStroke, CloseFillStrokeWithEvenOdd:
		return true, true, true
	default:
		return false, false, false
	}
}

func setColor(v ColorSetter, cb Callback, ops []core.Object) error {
	switch cb {
	case SetGrayForStroking, SetGrayForNonstroking:
		n, err := numbers(cb, ops, 1)
		if err != nil {
			return err
		}
		if cb == SetGrayForStroking {
			v.SetStrokeColorRGB(n[0], n[0], n[0])
		} else {
			v.SetFillColorRGB(n[0], n[0], n[0])
		}
	case SetRGBColorForStroking, SetRGBColorForNonstroking:
		n, err := numbers(cb, ops, 3)
		if err != nil {
			return err
		}
		if cb == SetRGBColorForStroking {
			v.SetStrokeColorRGB(n[0], n[1], n[2])
		} else {
			v.SetFillColorRGB(n[0], n[1], n[2])
		}
	default:
		n, err := numbers(cb, ops, 4)
		if err != nil {
			return err
		}
		r, g, b := cmykToRGB(n[0], n[1], n[2], n[3])
		if cb == SetCMYKColorForStroking {
			v.SetStrokeColorRGB(r, g, b)
		} else {
			v.SetFillColorRGB(r, g, b)
		}
	}
	return nil
}

// cmykToRGB converts CMYK to RGB (approximate conversion)
func cmykToRGB(c, m, y, k float64) (r, g, b float64) {
	r = (1 - c) * (1 - k)
	g = (1 - m) * (1 - k)
	b = (1 - y) * (1 - k)
	return
}

// numbers returns the last n operands as numbers. Extra leading operands
// are ignored.
func numbers(cb Callback, ops []core.Object, n int) ([]float64, error) {
	if len(ops) < n {
		return nil, operandError(cb, n)
	}
	out := make([]float64, n)
	for i, obj := range ops[len(ops)-n:] {
		f, ok := core.Number(obj)
		if !ok {
			return nil, pdferr.Malformedf("invalid operands for %s: %s is not a number", cb, obj)
		}
		out[i] = f
	}
	return out, nil
}

func withNumber(cb Callback, ops []core.Object, fn func(float64) error) error {
	n, err := numbers(cb, ops, 1)
	if err != nil {
		return err
	}
	return fn(n[0])
}

func lastString(cb Callback, ops []core.Object) ([]byte, error) {
	if len(ops) == 0 {
		return nil, operandError(cb, 1)
	}
	s, ok := ops[len(ops)-1].(core.String)
	if !ok {
		return nil, pdferr.Malformedf("invalid operands for %s", cb)
	}
	return []byte(s), nil
}

func operandError(cb Callback, n int) error {
	return pdferr.Malformedf("%s expects %d operands", cb, n)
}
