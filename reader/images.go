package reader

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sort"

	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/internal/filters"
	"github.com/yob/pdf-reader-sub001/pdferr"
)

// Image is an image XObject from a page's resources. Data holds the stream
// after the non-image filters ran, so DCT, CCITT, JBIG2 and JPX data are
// still encoded.
type Image struct {
	Name             string
	Width            int
	Height           int
	ColorSpace       string // device family: DeviceGray, DeviceRGB, DeviceCMYK
	BitsPerComponent int
	Filter           string // last filter in the chain, "" when none
	Data             []byte

	params  core.Dict
	palette []byte // Indexed lookup table in the base color space
}

// Images returns the page's image XObjects ordered by resource name
func (p *Page) Images() ([]*Image, error) {
	xobjects, err := p.XObjects()
	if err != nil {
		return nil, err
	}
	names := xobjects.Keys()
	sort.Strings(names)

	var images []*Image
	for _, name := range names {
		stream, ok := xobjects[name].(*core.Stream)
		if !ok {
			continue
		}
		if subtype, _ := stream.Dict.GetName("Subtype"); subtype != "Image" {
			continue
		}
		img, err := p.reader.objects.newImage(name, stream)
		if err != nil {
			return nil, fmt.Errorf("image /%s: %w", name, err)
		}
		images = append(images, img)
	}
	return images, nil
}

func (h *ObjectHash) newImage(name string, stream *core.Stream) (*Image, error) {
	dict := stream.Dict
	width, err := h.DerefInt(dict.Get("Width"))
	if err != nil {
		return nil, err
	}
	height, err := h.DerefInt(dict.Get("Height"))
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, pdferr.Malformedf("invalid image size %dx%d", width, height)
	}

	img := &Image{
		Name:             name,
		Width:            int(width),
		Height:           int(height),
		ColorSpace:       "DeviceGray",
		BitsPerComponent: 8,
	}
	if bpc, ok := dict.GetInt("BitsPerComponent"); ok {
		img.BitsPerComponent = int(bpc)
	}
	if mask, ok := dict.GetBool("ImageMask"); ok && bool(mask) {
		img.BitsPerComponent = 1
	}
	if cs := dict.Get("ColorSpace"); cs != nil {
		if err := h.colorSpace(img, cs, 0); err != nil {
			return nil, err
		}
	}

	names := stream.Filters()
	if n := len(names); n > 0 {
		img.Filter = names[n-1]
		img.params = h.lastDecodeParms(dict, n)
	}
	if img.Data, err = stream.Decode(); err != nil {
		return nil, err
	}
	return img, nil
}

func (h *ObjectHash) lastDecodeParms(dict core.Dict, n int) core.Dict {
	obj, err := h.Object(dict.Get("DecodeParms"))
	if err != nil {
		return nil
	}
	switch v := obj.(type) {
	case core.Dict:
		return v
	case core.Array:
		parms, _ := h.Object(v.Get(n - 1))
		d, _ := parms.(core.Dict)
		return d
	}
	return nil
}

// colorSpace reduces a color space to its device family. Indexed spaces
// keep their lookup table.
func (h *ObjectHash) colorSpace(img *Image, obj core.Object, depth int) error {
	if depth > 4 {
		return pdferr.Malformedf("color space nested too deeply")
	}
	resolved, err := h.Object(obj)
	if err != nil {
		return err
	}
	switch v := resolved.(type) {
	case core.Name:
		img.ColorSpace = deviceFamily(string(v))
		return nil
	case core.Array:
		family, _ := v.GetName(0)
		switch family {
		case "ICCBased":
			profile, err := h.DerefStream(v.Get(1))
			if err != nil || profile == nil {
				return err
			}
			n, _ := profile.Dict.GetInt("N")
			img.ColorSpace = componentFamily(int(n))
			return nil
		case "Indexed", "I":
			if err := h.colorSpace(img, v.Get(1), depth+1); err != nil {
				return err
			}
			lookup, err := h.Object(v.Get(3))
			if err != nil {
				return err
			}
			switch l := lookup.(type) {
			case core.String:
				img.palette = []byte(l)
			case *core.Stream:
				if img.palette, err = l.Decode(); err != nil {
					return err
				}
			}
			return nil
		case "Separation", "DeviceN":
			img.ColorSpace = "DeviceGray"
			return nil
		default:
			img.ColorSpace = deviceFamily(string(family))
			return nil
		}
	}
	return nil
}

func deviceFamily(name string) string {
	switch name {
	case "DeviceRGB", "RGB", "CalRGB", "Lab":
		return "DeviceRGB"
	case "DeviceCMYK", "CMYK":
		return "DeviceCMYK"
	default:
		return "DeviceGray"
	}
}

func componentFamily(n int) string {
	switch n {
	case 3:
		return "DeviceRGB"
	case 4:
		return "DeviceCMYK"
	default:
		return "DeviceGray"
	}
}

func (img *Image) components() int {
	switch img.ColorSpace {
	case "DeviceRGB":
		return 3
	case "DeviceCMYK":
		return 4
	default:
		return 1
	}
}

// Params returns the decode parameters of the image's last filter
func (img *Image) Params() core.Dict { return img.params }

// Pixels returns the raw samples. CCITT data is expanded to packed 1-bit
// rows, other image codecs are unsupported here.
func (img *Image) Pixels() ([]byte, error) {
	switch img.Filter {
	case "", "FlateDecode", "Fl", "LZWDecode", "LZW", "ASCIIHexDecode", "AHx",
		"ASCII85Decode", "A85", "RunLengthDecode", "RL", "Crypt":
		return img.Data, nil
	case "CCITTFaxDecode", "CCF":
		return img.DecodeCCITT()
	default:
		return nil, pdferr.Unsupportedf("no pixel decoder for %s", img.Filter)
	}
}

// DecodeCCITT expands CCITTFaxDecode data using the image's decode
// parameters. Columns and Rows default to the image size.
func (img *Image) DecodeCCITT() ([]byte, error) {
	params := core.FilterParams(img.params)
	if params == nil {
		params = filters.Params{}
	}
	if _, ok := params["Columns"]; !ok {
		params["Columns"] = img.Width
	}
	if _, ok := params["Rows"]; !ok {
		params["Rows"] = img.Height
	}
	return filters.DecodeCCITT(img.Data, params)
}

// Image decodes the image into an image.Image
func (img *Image) Image() (image.Image, error) {
	if img.Filter == "DCTDecode" || img.Filter == "DCT" {
		out, err := jpeg.Decode(bytes.NewReader(img.Data))
		if err != nil {
			return nil, pdferr.Wrap(pdferr.Malformed, err, "invalid DCT image data")
		}
		return out, nil
	}
	pix, err := img.Pixels()
	if err != nil {
		return nil, err
	}
	bpc := img.BitsPerComponent
	if img.Filter == "CCITTFaxDecode" || img.Filter == "CCF" {
		bpc = 1
	}
	samples, err := unpack(pix, img.Width, img.Height, img.componentsForSamples(), bpc)
	if err != nil {
		return nil, err
	}
	if img.palette != nil {
		return img.indexed(samples)
	}
	return img.device(samples)
}

func (img *Image) componentsForSamples() int {
	if img.palette != nil {
		return 1
	}
	return img.components()
}

// unpack expands rows of bpc-bit samples to one byte per sample scaled to
// 0-255. Rows are padded to whole bytes.
func unpack(data []byte, width, height, comps, bpc int) ([]byte, error) {
	switch bpc {
	case 1, 2, 4, 8, 16:
	default:
		return nil, pdferr.Unsupportedf("unsupported bits per component %d", bpc)
	}
	perRow := width * comps
	rowBytes := (perRow*bpc + 7) / 8
	if len(data) < rowBytes*height {
		return nil, pdferr.Malformedf("insufficient image data: got %d, expected %d", len(data), rowBytes*height)
	}
	out := make([]byte, perRow*height)
	scale := byte(255 / ((1 << min(bpc, 8)) - 1))
	for y := 0; y < height; y++ {
		row := data[y*rowBytes : (y+1)*rowBytes]
		for i := 0; i < perRow; i++ {
			var v byte
			switch bpc {
			case 8:
				v = row[i]
			case 16:
				v = row[2*i]
			default:
				bit := i * bpc
				shift := 8 - bpc - bit%8
				v = (row[bit/8] >> shift) & byte(1<<bpc-1)
				v *= scale
			}
			out[y*perRow+i] = v
		}
	}
	return out, nil
}

func (img *Image) device(samples []byte) (image.Image, error) {
	rect := image.Rect(0, 0, img.Width, img.Height)
	switch img.ColorSpace {
	case "DeviceRGB":
		out := image.NewRGBA(rect)
		for i := 0; i < img.Width*img.Height; i++ {
			copy(out.Pix[4*i:4*i+3], samples[3*i:3*i+3])
			out.Pix[4*i+3] = 255
		}
		return out, nil
	case "DeviceCMYK":
		out := image.NewRGBA(rect)
		for i := 0; i < img.Width*img.Height; i++ {
			s := samples[4*i : 4*i+4]
			r, g, b := color.CMYKToRGB(s[0], s[1], s[2], s[3])
			out.Pix[4*i], out.Pix[4*i+1], out.Pix[4*i+2], out.Pix[4*i+3] = r, g, b, 255
		}
		return out, nil
	default:
		out := image.NewGray(rect)
		copy(out.Pix, samples)
		return out, nil
	}
}

// indexed maps palette indexes through the lookup table. Samples arrive
// scaled to 0-255 so they are scaled back to the index range first.
func (img *Image) indexed(samples []byte) (image.Image, error) {
	comps := img.components()
	levels := 1<<min(img.BitsPerComponent, 8) - 1
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for i, s := range samples {
		idx := int(s) * levels / 255
		entry := idx * comps
		if entry+comps > len(img.palette) {
			return nil, pdferr.Malformedf("palette index %d out of range", idx)
		}
		e := img.palette[entry : entry+comps]
		var r, g, b byte
		switch comps {
		case 3:
			r, g, b = e[0], e[1], e[2]
		case 4:
			r, g, b = color.CMYKToRGB(e[0], e[1], e[2], e[3])
		default:
			r, g, b = e[0], e[0], e[0]
		}
		out.Pix[4*i], out.Pix[4*i+1], out.Pix[4*i+2], out.Pix[4*i+3] = r, g, b, 255
	}
	return out, nil
}

// PNG encodes the decoded image as PNG
func (img *Image) PNG() ([]byte, error) {
	decoded, err := img.Image()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
