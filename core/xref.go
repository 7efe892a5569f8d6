package core

import (
	"bytes"
	"io"
	"sort"
	"strconv"

	"github.com/yob/pdf-reader-sub001/pdferr"
)

// maxXRefSections bounds the Prev/XRefStm chain
const maxXRefSections = 50

// XRefEntry locates an in-use object. Objects stored in an object stream
// have Compressed set and are found at position Index of stream StreamNum.
type XRefEntry struct {
	Offset     int64
	Generation int
	Compressed bool
	StreamNum  int
	Index      int
}

// XRefTable maps object numbers to their locations in the file
type XRefTable struct {
	Entries map[int]XRefEntry
	Trailer Dict
}

// NewXRefTable creates a new empty XRef table
func NewXRefTable() *XRefTable {
	return &XRefTable{
		Entries: make(map[int]XRefEntry),
	}
}

// Get retrieves an XRef entry by object number
func (x *XRefTable) Get(objNum int) (XRefEntry, bool) {
	entry, ok := x.Entries[objNum]
	return entry, ok
}

// Lookup retrieves the entry for ref. The generation must match; objects
// in object streams always have generation 0.
func (x *XRefTable) Lookup(ref Reference) (XRefEntry, bool) {
	entry, ok := x.Entries[ref.Number]
	if !ok || entry.Generation != ref.Generation {
		return XRefEntry{}, false
	}
	return entry, true
}

// Set adds or replaces an XRef entry
func (x *XRefTable) Set(objNum int, entry XRefEntry) {
	x.Entries[objNum] = entry
}

// setIfAbsent records an entry unless a newer section already did
func (x *XRefTable) setIfAbsent(objNum int, entry XRefEntry) {
	if _, ok := x.Entries[objNum]; !ok {
		x.Entries[objNum] = entry
	}
}

// Size returns the number of entries in the table
func (x *XRefTable) Size() int {
	return len(x.Entries)
}

// Numbers returns the object numbers in ascending order
func (x *XRefTable) Numbers() []int {
	nums := make([]int, 0, len(x.Entries))
	for n := range x.Entries {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// References returns a reference for every entry, in object number order
func (x *XRefTable) References() []Reference {
	nums := x.Numbers()
	refs := make([]Reference, len(nums))
	for i, n := range nums {
		refs[i] = Reference{Number: n, Generation: x.Entries[n].Generation}
	}
	return refs
}

// XRefParser walks the cross-reference sections of a file: classic xref
// tables and xref streams, following XRefStm and Prev links.
type XRefParser struct {
	r       io.ReaderAt
	size    int64
	junk    int64
	visited map[int64]bool
	table   *XRefTable
}

// NewXRefParser creates a new XRef parser
func NewXRefParser(r io.ReaderAt, size int64) *XRefParser {
	return &XRefParser{r: r, size: size, junk: JunkOffset(r, size)}
}

// JunkOffset returns the number of bytes preceding the %PDF- header
func (x *XRefParser) JunkOffset() int64 {
	return x.junk
}

// Parse reads every section reachable from the final startxref offset.
// Entries from newer sections win over older ones, and the trailer of the
// newest section is the document trailer.
func (x *XRefParser) Parse() (*XRefTable, error) {
	buf := NewBuffer(x.r, x.size, 0)
	offset, err := buf.FindFirstXRefOffset()
	if err != nil {
		return nil, err
	}

	x.table = NewXRefTable()
	x.visited = make(map[int64]bool)
	if err := x.parseSection(offset+x.junk, 0); err != nil {
		return nil, err
	}
	if x.table.Trailer == nil {
		return nil, pdferr.Malformedf("PDF has no trailer")
	}
	return x.table, nil
}

// LoadXRef parses the cross-reference data of the file in r
func LoadXRef(r io.ReaderAt, size int64) (*XRefTable, error) {
	return NewXRefParser(r, size).Parse()
}

func (x *XRefParser) parseSection(offset int64, depth int) error {
	if x.visited[offset] {
		return nil
	}
	if depth >= maxXRefSections {
		return pdferr.Malformedf("xref chain longer than %d sections", maxXRefSections)
	}
	x.visited[offset] = true

	buf := NewBuffer(x.r, x.size, offset)
	tok, err := buf.Token()
	if err != nil {
		return pdferr.Malformedf("xref not found at offset %d", offset)
	}

	var trailer Dict
	if tok.Is("xref") {
		trailer, err = x.parseTable(buf)
		if err != nil {
			return err
		}
		if x.table.Trailer == nil {
			x.table.Trailer = trailer
		}
		if stm, ok := trailer.GetInt("XRefStm"); ok {
			if err := x.parseSection(int64(stm)+x.junk, depth+1); err != nil {
				return err
			}
		}
	} else {
		buf.Unread(tok)
		trailer, err = x.parseStream(buf, offset)
		if err != nil {
			return err
		}
		if x.table.Trailer == nil {
			x.table.Trailer = trailer
		}
	}

	if prev, ok := trailer.GetInt("Prev"); ok {
		return x.parseSection(int64(prev)+x.junk, depth+1)
	}
	return nil
}

// parseTable reads the subsections of a classic table up to and including
// the trailer dictionary. Free entries are skipped.
func (x *XRefParser) parseTable(buf *Buffer) (Dict, error) {
	for {
		tok, err := buf.Token()
		if err != nil {
			return nil, pdferr.Malformedf("xref table has no trailer")
		}
		if tok.Is("trailer") {
			break
		}
		countTok, err := buf.Token()
		if tok.Type != TokenInteger || err != nil || countTok.Type != TokenInteger {
			return nil, pdferr.Malformedf("invalid xref subsection header at offset %d", tok.Pos)
		}
		first, count := atoi(tok.Value), atoi(countTok.Value)

		for i := 0; i < count; i++ {
			off, err1 := buf.Token()
			gen, err2 := buf.Token()
			state, err3 := buf.Token()
			if err1 != nil || err2 != nil || err3 != nil ||
				off.Type != TokenInteger || gen.Type != TokenInteger || state.Type != TokenKeyword {
				return nil, pdferr.Malformedf("invalid xref entry at offset %d", off.Pos)
			}
			offset, _ := strconv.ParseInt(string(off.Value), 10, 64)
			if state.Is("n") && offset > 0 {
				x.table.setIfAbsent(first+i, XRefEntry{
					Offset:     offset + x.junk,
					Generation: atoi(gen.Value),
				})
			}
		}
	}

	obj, err := NewParser(buf).ParseObject()
	if err != nil {
		return nil, pdferr.Wrap(pdferr.Malformed, err, "invalid PDF trailer")
	}
	trailer, ok := obj.(Dict)
	if !ok {
		return nil, pdferr.Malformedf("PDF trailer is not a dictionary")
	}
	return trailer, nil
}

// parseStream reads an xref stream object. The stream's dictionary doubles
// as the section trailer.
func (x *XRefParser) parseStream(buf *Buffer, offset int64) (Dict, error) {
	indirect, err := NewParser(buf).ParseIndirectObject()
	if err != nil {
		return nil, pdferr.Malformedf("xref not found at offset %d", offset)
	}
	stream, ok := indirect.Object.(*Stream)
	if !ok {
		return nil, pdferr.Malformedf("xref not found at offset %d", offset)
	}
	if typ, _ := stream.Dict.GetName("Type"); typ != "XRef" {
		return nil, pdferr.Malformedf("object at offset %d is not an xref stream", offset)
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, err
	}

	w, ok := stream.Dict.GetArray("W")
	if !ok || len(w) < 3 {
		return nil, pdferr.Malformedf("xref stream has invalid /W")
	}
	widths := make([]int, 3)
	for i := range widths {
		n, ok := w.GetInt(i)
		if !ok || n < 0 || n > 8 {
			return nil, pdferr.Malformedf("xref stream has invalid /W")
		}
		widths[i] = int(n)
	}
	rowSize := widths[0] + widths[1] + widths[2]
	if rowSize == 0 {
		return nil, pdferr.Malformedf("xref stream has zero width rows")
	}

	index := Array{Int(0), Int(0)}
	if size, ok := stream.Dict.GetInt("Size"); ok {
		index[1] = size
	}
	if arr, ok := stream.Dict.GetArray("Index"); ok {
		index = arr
	}

	pos := 0
	for s := 0; s+1 < len(index); s += 2 {
		start, ok1 := index.GetInt(s)
		count, ok2 := index.GetInt(s + 1)
		if !ok1 || !ok2 {
			return nil, pdferr.Malformedf("xref stream has invalid /Index")
		}
		for i := 0; i < int(count); i++ {
			if pos+rowSize > len(data) {
				return stream.Dict, nil
			}
			row := data[pos : pos+rowSize]
			pos += rowSize

			typ := int64(1)
			if widths[0] > 0 {
				typ = readField(row[:widths[0]])
			}
			f2 := readField(row[widths[0] : widths[0]+widths[1]])
			f3 := readField(row[widths[0]+widths[1]:])

			num := int(start) + i
			switch typ {
			case 1:
				if f2 > 0 {
					x.table.setIfAbsent(num, XRefEntry{Offset: f2 + x.junk, Generation: int(f3)})
				}
			case 2:
				x.table.setIfAbsent(num, XRefEntry{Compressed: true, StreamNum: int(f2), Index: int(f3)})
			}
		}
	}
	return stream.Dict, nil
}

// readField decodes a big-endian unsigned integer
func readField(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

// JunkOffset returns the offset of the %PDF- header within the first 1024
// bytes, or 0 when there is none. Offsets in the file are relative to it.
func JunkOffset(r io.ReaderAt, size int64) int64 {
	head := readHead(r, size, 1024)
	if i := bytes.Index(head, []byte("%PDF-")); i > 0 {
		return int64(i)
	}
	return 0
}

// HeaderVersion returns the version in the %PDF-x.y header, or 0 when the
// header is missing.
func HeaderVersion(r io.ReaderAt, size int64) float64 {
	head := readHead(r, size, 1024)
	i := bytes.Index(head, []byte("%PDF-"))
	if i < 0 {
		return 0
	}
	v := head[i+5:]
	end := 0
	for end < len(v) && (isDigit(v[end]) || v[end] == '.') {
		end++
	}
	version, err := strconv.ParseFloat(string(v[:end]), 64)
	if err != nil {
		return 0
	}
	return version
}

func readHead(r io.ReaderAt, size, n int64) []byte {
	if size < n {
		n = size
	}
	if n <= 0 {
		return nil
	}
	head := make([]byte, n)
	m, _ := r.ReadAt(head, 0)
	return head[:m]
}
