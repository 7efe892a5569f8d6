package core

import (
	"github.com/yob/pdf-reader-sub001/pdferr"
)

// ObjectStream represents a PDF Object Stream (Type /ObjStm), introduced in PDF 1.5.
// Object streams store multiple objects in a single compressed stream; the
// decoded data starts with N pairs of "number offset" followed, at /First,
// by the objects themselves.
type ObjectStream struct {
	stream  *Stream
	n       int
	first   int
	extends *Reference
	objects map[int]Object
	offsets []objectStreamOffset
	decoded []byte
	parsed  bool
}

// objectStreamOffset pairs an object number with its byte offset within the decoded data.
type objectStreamOffset struct {
	ObjNum int
	Offset int // relative to First
}

// NewObjectStream creates an ObjectStream from a Stream object.
// The stream needs /N and /First; a /Type other than /ObjStm is rejected.
func NewObjectStream(stream *Stream) (*ObjectStream, error) {
	if stream == nil {
		return nil, pdferr.New(pdferr.InvalidArgument, "object stream is nil")
	}

	if typ, ok := stream.Dict.GetName("Type"); ok && typ != "ObjStm" {
		return nil, pdferr.Malformedf("stream is not an object stream, got type /%s", typ)
	}

	n, ok := stream.Dict.GetInt("N")
	if !ok || n < 0 {
		return nil, pdferr.Malformedf("object stream has invalid /N")
	}
	first, ok := stream.Dict.GetInt("First")
	if !ok || first < 0 {
		return nil, pdferr.Malformedf("object stream has invalid /First")
	}

	os := &ObjectStream{
		stream:  stream,
		n:       int(n),
		first:   int(first),
		objects: make(map[int]Object),
	}
	if ref, ok := stream.Dict.GetReference("Extends"); ok {
		os.extends = &ref
	}
	return os, nil
}

// N returns the number of objects stored in the stream.
func (os *ObjectStream) N() int {
	return os.n
}

// First returns the byte offset to the first object's data in the decoded stream.
func (os *ObjectStream) First() int {
	return os.first
}

// Extends returns the reference to another object stream this one extends, or nil.
func (os *ObjectStream) Extends() *Reference {
	return os.extends
}

// decode runs the filter chain and parses the header on first access.
func (os *ObjectStream) decode() error {
	if os.parsed {
		return nil
	}
	decoded, err := os.stream.Decode()
	if err != nil {
		return err
	}
	os.decoded = decoded
	if err := os.parseHeader(); err != nil {
		return err
	}
	os.parsed = true
	return nil
}

// parseHeader reads the N "objNum offset" pairs preceding /First.
func (os *ObjectStream) parseHeader() error {
	if os.first > len(os.decoded) {
		return pdferr.Malformedf("object stream /First %d exceeds data length %d", os.first, len(os.decoded))
	}

	buf := NewBytesBuffer(os.decoded[:os.first])
	os.offsets = make([]objectStreamOffset, 0, os.n)
	for i := 0; i < os.n; i++ {
		num, err1 := buf.Token()
		off, err2 := buf.Token()
		if err1 != nil || err2 != nil || num.Type != TokenInteger || off.Type != TokenInteger {
			return pdferr.Malformedf("object stream header entry %d is invalid", i)
		}
		os.offsets = append(os.offsets, objectStreamOffset{
			ObjNum: atoi(num.Value),
			Offset: atoi(off.Value),
		})
	}
	return nil
}

// GetObjectByIndex extracts an object by its index within the stream (0-based).
// Returns the object and its object number.
func (os *ObjectStream) GetObjectByIndex(index int) (Object, int, error) {
	if err := os.decode(); err != nil {
		return nil, 0, err
	}
	if index < 0 || index >= len(os.offsets) {
		return nil, 0, pdferr.New(pdferr.NotFound, "index %d out of range [0, %d)", index, len(os.offsets))
	}
	entry := os.offsets[index]
	if obj, ok := os.objects[index]; ok {
		return obj, entry.ObjNum, nil
	}

	offset := os.first + entry.Offset
	if offset < os.first || offset >= len(os.decoded) {
		return nil, 0, pdferr.Malformedf("object %d offset %d outside object stream", entry.ObjNum, offset)
	}

	// objects are not delimited, so parse from the offset to the end of the data
	p := NewParser(NewBytesBuffer(os.decoded[offset:]))
	obj, err := p.ParseObject()
	if err != nil {
		return nil, 0, pdferr.Wrap(pdferr.Malformed, err, "object %d in object stream", entry.ObjNum)
	}
	os.objects[index] = obj
	return obj, entry.ObjNum, nil
}

// GetObjectByNumber finds and extracts an object by its object number.
// Returns the object and its index within the stream.
func (os *ObjectStream) GetObjectByNumber(objNum int) (Object, int, error) {
	if err := os.decode(); err != nil {
		return nil, 0, err
	}
	for i, entry := range os.offsets {
		if entry.ObjNum == objNum {
			obj, _, err := os.GetObjectByIndex(i)
			return obj, i, err
		}
	}
	return nil, 0, pdferr.New(pdferr.NotFound, "object %d not found in object stream", objNum)
}

// ObjectNumbers returns the object numbers stored in this stream, in header order.
func (os *ObjectStream) ObjectNumbers() ([]int, error) {
	if err := os.decode(); err != nil {
		return nil, err
	}
	nums := make([]int, len(os.offsets))
	for i, entry := range os.offsets {
		nums[i] = entry.ObjNum
	}
	return nums, nil
}

// ContainsObject reports whether the given object number is stored in this stream.
func (os *ObjectStream) ContainsObject(objNum int) (bool, error) {
	if err := os.decode(); err != nil {
		return false, err
	}
	for _, entry := range os.offsets {
		if entry.ObjNum == objNum {
			return true, nil
		}
	}
	return false, nil
}

func atoi(b []byte) int {
	n := 0
	neg := false
	for i, c := range b {
		if i == 0 && (c == '-' || c == '+') {
			neg = c == '-'
			continue
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		return -n
	}
	return n
}
