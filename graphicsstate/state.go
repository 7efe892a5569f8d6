package graphicsstate

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/font"
	"github.com/yob/pdf-reader-sub001/model"
	"github.com/yob/pdf-reader-sub001/pdferr"
)

// maxFormDepth bounds nested form XObjects
const maxFormDepth = 12

// Frame is one entry of the graphics state stack
type Frame struct {
	// Current Transformation Matrix
	CTM model.Matrix

	// Text state
	Text TextState

	// Line attributes
	LineWidth float64

	// Color (simplified - just RGB)
	StrokeColor [3]float64
	FillColor   [3]float64
}

// TextState holds the text parameters that survive across text objects
type TextState struct {
	// Font resource name and size (Tf)
	FontName string
	FontSize float64

	// Character and word spacing (Tc, Tw)
	CharSpacing float64
	WordSpacing float64

	// Horizontal scaling in percent (Tz)
	HorizontalScaling float64

	// Leading (TL)
	Leading float64

	// Text rendering mode (Tr)
	RenderingMode int

	// Text rise (Ts)
	Rise float64
}

// defaultFrame returns the state at the start of a page
func defaultFrame() Frame {
	return Frame{
		CTM:       model.Identity(),
		LineWidth: 1.0,
		Text: TextState{
			HorizontalScaling: 100.0,
		},
	}
}

// PageState tracks graphics and text state while a page's content is
// replayed. The method names match the content stream callbacks, so a
// receiver can embed *PageState and override only what it needs.
type PageState struct {
	resolver  font.Resolver
	resources core.Dict
	logger    *slog.Logger

	stack []Frame // stack[len-1] is the current frame
	base  int     // frames below this depth belong to an enclosing form or the page

	textMatrix     model.Matrix
	textLineMatrix model.Matrix
	inText         bool

	fonts      map[string]*font.Font
	underflows int
	formDepth  int
}

// Option configures a PageState
type Option func(*PageState)

// WithLogger sets the logger used for recoverable content problems
func WithLogger(logger *slog.Logger) Option {
	return func(s *PageState) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCTM sets the initial transformation matrix, for example to account
// for page rotation
func WithCTM(m model.Matrix) Option {
	return func(s *PageState) {
		s.stack[0].CTM = m
	}
}

// NewPageState creates the state for one page walk. resources is the
// page's resource dictionary, already resolved.
func NewPageState(resources core.Dict, r font.Resolver, opts ...Option) *PageState {
	if resources == nil {
		resources = core.Dict{}
	}
	s := &PageState{
		resolver:       r,
		resources:      resources,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		stack:          []Frame{defaultFrame()},
		base:           1,
		textMatrix:     model.Identity(),
		textLineMatrix: model.Identity(),
		fonts:          make(map[string]*font.Font),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PageState) current() *Frame {
	return &s.stack[len(s.stack)-1]
}

// State returns a copy of the current frame
func (s *PageState) State() Frame { return *s.current() }

// CTM returns the current transformation matrix
func (s *PageState) CTM() model.Matrix { return s.current().CTM }

// TextMatrix returns the text matrix
func (s *PageState) TextMatrix() model.Matrix { return s.textMatrix }

// TextLineMatrix returns the text line matrix
func (s *PageState) TextLineMatrix() model.Matrix { return s.textLineMatrix }

// InTextObject reports whether a BT is open
func (s *PageState) InTextObject() bool { return s.inText }

// StackDepth returns the number of frames on the graphics state stack.
// It is 1 outside any q/Q pair.
func (s *PageState) StackDepth() int { return len(s.stack) }

// Underflows returns how many Q operators were ignored because there
// was nothing to restore
func (s *PageState) Underflows() int { return s.underflows }

// Resources returns the resource dictionary in effect
func (s *PageState) Resources() core.Dict { return s.resources }

// SaveGraphicsState pushes a copy of the current frame (q)
func (s *PageState) SaveGraphicsState() error {
	s.stack = append(s.stack, *s.current())
	return nil
}

// RestoreGraphicsState pops a frame (Q). With nothing saved on the page,
// or inside the current form XObject, it does nothing.
func (s *PageState) RestoreGraphicsState() error {
	if len(s.stack) <= s.base {
		s.underflows++
		s.logger.Debug("ignoring restore without matching save")
		return nil
	}
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

// ConcatenateMatrix pre-multiplies the CTM (cm)
func (s *PageState) ConcatenateMatrix(a, b, c, d, e, f float64) error {
	s.current().CTM.PreMultiply(model.Matrix{a, b, c, d, e, f})
	return nil
}

// SetLineWidth sets the line width (w)
func (s *PageState) SetLineWidth(width float64) error {
	s.current().LineWidth = width
	return nil
}

// SetStrokeColorRGB sets the stroke color (RG, and G and K converted)
func (s *PageState) SetStrokeColorRGB(r, g, b float64) {
	s.current().StrokeColor = [3]float64{r, g, b}
}

// SetFillColorRGB sets the fill color (rg, and g and k converted)
func (s *PageState) SetFillColorRGB(r, g, b float64) {
	s.current().FillColor = [3]float64{r, g, b}
}

// BeginTextObject resets the text matrices (BT)
func (s *PageState) BeginTextObject() error {
	s.textMatrix = model.Identity()
	s.textLineMatrix = model.Identity()
	s.inText = true
	return nil
}

// EndTextObject closes the text object (ET)
func (s *PageState) EndTextObject() error {
	s.inText = false
	return nil
}

// SetTextFontAndSize sets the font and size and nothing else (Tf)
func (s *PageState) SetTextFontAndSize(name string, size float64) error {
	s.current().Text.FontName = name
	s.current().Text.FontSize = size
	return nil
}

// SetCharacterSpacing handles Tc
func (s *PageState) SetCharacterSpacing(v float64) error {
	s.current().Text.CharSpacing = v
	return nil
}

// SetWordSpacing handles Tw
func (s *PageState) SetWordSpacing(v float64) error {
	s.current().Text.WordSpacing = v
	return nil
}

// SetHorizontalTextScaling handles Tz
func (s *PageState) SetHorizontalTextScaling(v float64) error {
	s.current().Text.HorizontalScaling = v
	return nil
}

// SetTextLeading handles TL
func (s *PageState) SetTextLeading(v float64) error {
	s.current().Text.Leading = v
	return nil
}

// SetTextRenderingMode handles Tr
func (s *PageState) SetTextRenderingMode(mode int) error {
	s.current().Text.RenderingMode = mode
	return nil
}

// SetTextRise handles Ts
func (s *PageState) SetTextRise(v float64) error {
	s.current().Text.Rise = v
	return nil
}

// MoveTextPosition starts a new line offset from the start of the
// current one (Td)
func (s *PageState) MoveTextPosition(tx, ty float64) error {
	s.textLineMatrix.PreMultiply(model.Translate(tx, ty))
	s.textMatrix = s.textLineMatrix
	return nil
}

// MoveTextPositionAndSetLeading sets leading to -ty then moves (TD)
func (s *PageState) MoveTextPositionAndSetLeading(tx, ty float64) error {
	s.current().Text.Leading = -ty
	return s.MoveTextPosition(tx, ty)
}

// SetTextMatrixAndTextLineMatrix replaces both matrices (Tm)
func (s *PageState) SetTextMatrixAndTextLineMatrix(a, b, c, d, e, f float64) error {
	s.textMatrix = model.Matrix{a, b, c, d, e, f}
	s.textLineMatrix = s.textMatrix
	return nil
}

// MoveToStartOfNextLine moves down by the leading (T*)
func (s *PageState) MoveToStartOfNextLine() error {
	return s.MoveTextPosition(0, -s.current().Text.Leading)
}

// MoveToNextLineAndShowText performs the line move of the ' operator.
// Receivers show the text themselves.
func (s *PageState) MoveToNextLineAndShowText(_ []byte) error {
	return s.MoveToStartOfNextLine()
}

// SetSpacingNextLineShowText performs the state changes of the "
// operator. Receivers show the text themselves.
func (s *PageState) SetSpacingNextLineShowText(aw, ac float64, _ []byte) error {
	s.current().Text.WordSpacing = aw
	s.current().Text.CharSpacing = ac
	return s.MoveToStartOfNextLine()
}

// FontSize returns the size set by Tf
func (s *PageState) FontSize() float64 { return s.current().Text.FontSize }

// horizontalScaling returns Th as a ratio
func (s *PageState) horizontalScaling() float64 {
	return s.current().Text.HorizontalScaling / 100.0
}

// ProcessGlyphDisplacement advances the text matrix after one glyph.
// w0 is the glyph width in text space per unit font size, tj a TJ
// adjustment in thousandths of text space. wordBoundary adds word
// spacing and is set for the single-byte code 32.
func (s *PageState) ProcessGlyphDisplacement(w0, tj float64, wordBoundary bool) {
	ts := s.current().Text
	tw := 0.0
	if wordBoundary {
		tw = ts.WordSpacing
	}
	tc := ts.CharSpacing
	if w0 == 0 && tj != 0 {
		tc = 0
	}
	tx := ((w0-tj/1000.0)*ts.FontSize + tc + tw) * s.horizontalScaling()
	s.textMatrix.PreMultiply(model.Translate(tx, 0))
}

// TextRenderingMatrix returns Trm, mapping text space to device space
func (s *PageState) TextRenderingMatrix() model.Matrix {
	ts := s.current().Text
	params := model.Matrix{ts.FontSize * s.horizontalScaling(), 0, 0, ts.FontSize, 0, ts.Rise}
	return params.Multiply(s.textMatrix).Multiply(s.current().CTM)
}

// CTMTransform maps a user space point to device space
func (s *PageState) CTMTransform(x, y float64) model.Point {
	return s.current().CTM.Transform(model.Point{X: x, Y: y})
}

// CurrentFont returns the font selected by Tf. Fonts are loaded on first
// use, so a bad font reference only fails when glyphs are shown.
func (s *PageState) CurrentFont() (*font.Font, error) {
	name := s.current().Text.FontName
	if name == "" {
		return nil, pdferr.Malformedf("text shown before a font was selected")
	}
	return s.FindFont(name)
}

// FindFont loads a font from the current resources by name
func (s *PageState) FindFont(name string) (*font.Font, error) {
	if f, ok := s.fonts[name]; ok {
		return f, nil
	}
	fonts, err := s.category("Font")
	if err != nil {
		return nil, err
	}
	entry := fonts.Get(name)
	if entry == nil {
		return nil, pdferr.Malformedf("Unknown font %s", name)
	}
	obj, err := s.object(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve font %s: %w", name, err)
	}
	dict, ok := obj.(core.Dict)
	if !ok {
		return nil, pdferr.Malformedf("font %s is not a dictionary", name)
	}
	f, err := font.New(dict, s.resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to load font %s: %w", name, err)
	}
	s.fonts[name] = f
	return f, nil
}

// FindXObject returns a named XObject stream from the current resources
func (s *PageState) FindXObject(name string) (*core.Stream, error) {
	xobjects, err := s.category("XObject")
	if err != nil {
		return nil, err
	}
	entry := xobjects.Get(name)
	if entry == nil {
		return nil, pdferr.Malformedf("Unknown XObject %s", name)
	}
	obj, err := s.object(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve XObject %s: %w", name, err)
	}
	stream, ok := obj.(*core.Stream)
	if !ok {
		return nil, pdferr.Malformedf("XObject %s is not a stream", name)
	}
	return stream, nil
}

// FindColorSpace returns a named color space from the current resources,
// or nil when it is not defined
func (s *PageState) FindColorSpace(name string) (core.Object, error) {
	spaces, err := s.category("ColorSpace")
	if err != nil {
		return nil, err
	}
	return s.object(spaces.Get(name))
}

// WithXObject runs fn for a form XObject with the form's matrix applied
// and its resources in effect. State is restored afterwards. Image
// XObjects are skipped.
func (s *PageState) WithXObject(name string, fn func(form *core.Stream) error) error {
	form, err := s.FindXObject(name)
	if err != nil {
		return err
	}
	if sub, _ := form.Dict.GetName("Subtype"); sub != "Form" {
		return nil
	}
	if s.formDepth >= maxFormDepth {
		s.logger.Debug("form XObject nesting too deep", "name", name)
		return nil
	}

	savedResources, savedFonts := s.resources, s.fonts
	savedTM, savedTLM := s.textMatrix, s.textLineMatrix
	depth, savedBase := len(s.stack), s.base
	if err := s.SaveGraphicsState(); err != nil {
		return err
	}
	s.base = len(s.stack)
	s.formDepth++
	defer func() {
		s.formDepth--
		s.stack, s.base = s.stack[:depth], savedBase
		s.resources, s.fonts = savedResources, savedFonts
		s.textMatrix, s.textLineMatrix = savedTM, savedTLM
	}()

	if m, ok := form.Dict.GetArray("Matrix"); ok && len(m) == 6 {
		if nums, ok := m.Numbers(); ok {
			s.current().CTM.PreMultiply(model.Matrix{nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]})
		}
	}
	if res, err := s.object(form.Dict.Get("Resources")); err == nil {
		if dict, ok := res.(core.Dict); ok {
			s.resources = dict
			s.fonts = make(map[string]*font.Font)
		}
	}
	return fn(form)
}

// category returns a resource sub-dictionary such as /Font, empty when
// absent
func (s *PageState) category(key string) (core.Dict, error) {
	obj, err := s.object(s.resources.Get(key))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /%s resources: %w", key, err)
	}
	dict, _ := obj.(core.Dict)
	if dict == nil {
		dict = core.Dict{}
	}
	return dict, nil
}

func (s *PageState) object(obj core.Object) (core.Object, error) {
	if s.resolver == nil || obj == nil {
		return obj, nil
	}
	return s.resolver.Object(obj)
}
