// Package pdftest builds small PDF files in memory for tests. Offsets in
// the cross-reference data are computed from the bytes actually written.
package pdftest

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

type object struct {
	num, gen int
	body     []byte
}

type packed struct {
	num, stream, index int
}

type section struct {
	objects    []object
	packed     []packed
	trailer    []string
	xrefStream bool
}

// Builder accumulates objects and serializes them as a PDF file. Each
// section after the first is written as an incremental update.
type Builder struct {
	version  string
	junk     string
	sections []*section
	offsets  map[int]int64
}

// New returns a builder for a PDF 1.4 file with one open section
func New() *Builder {
	return &Builder{version: "1.4", sections: []*section{{}}}
}

func (b *Builder) current() *section {
	return b.sections[len(b.sections)-1]
}

// Version sets the header version, e.g. "1.7"
func (b *Builder) Version(v string) *Builder {
	b.version = v
	return b
}

// Junk writes prefix before the %PDF- header
func (b *Builder) Junk(prefix string) *Builder {
	b.junk = prefix
	return b
}

// XRefStream writes the current section's cross-reference data as an xref
// stream instead of a classic table.
func (b *Builder) XRefStream() *Builder {
	b.current().xrefStream = true
	return b
}

// Add writes "num 0 obj body endobj"
func (b *Builder) Add(num int, body string) *Builder {
	return b.AddGen(num, 0, body)
}

// AddGen writes an object with an explicit generation
func (b *Builder) AddGen(num, gen int, body string) *Builder {
	s := b.current()
	s.objects = append(s.objects, object{num: num, gen: gen, body: []byte(body)})
	return b
}

// AddStream writes a stream object. dict holds extra dictionary entries;
// /Length is added.
func (b *Builder) AddStream(num int, dict string, data []byte) *Builder {
	var body bytes.Buffer
	fmt.Fprintf(&body, "<< %s /Length %d >>\nstream\n", dict, len(data))
	body.Write(data)
	body.WriteString("\nendstream")
	s := b.current()
	s.objects = append(s.objects, object{num: num, body: body.Bytes()})
	return b
}

// AddObjectStream packs bodies into object stream num. The packed objects
// are only reachable from an xref stream.
func (b *Builder) AddObjectStream(num int, bodies map[int]string) *Builder {
	nums := make([]int, 0, len(bodies))
	for n := range bodies {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var header, data bytes.Buffer
	s := b.current()
	for i, n := range nums {
		fmt.Fprintf(&header, "%d %d ", n, data.Len())
		data.WriteString(bodies[n])
		data.WriteString("\n")
		s.packed = append(s.packed, packed{num: n, stream: num, index: i})
	}
	content := append(header.Bytes(), data.Bytes()...)
	return b.AddStream(num, fmt.Sprintf("/Type /ObjStm /N %d /First %d", len(nums), header.Len()), content)
}

// Trailer adds raw entries, e.g. "/Root 1 0 R", to the current section's trailer
func (b *Builder) Trailer(entries ...string) *Builder {
	s := b.current()
	s.trailer = append(s.trailer, entries...)
	return b
}

// Update starts a new section written as an incremental update
func (b *Builder) Update() *Builder {
	b.sections = append(b.sections, &section{})
	return b
}

// Offset returns the byte offset of an object written by the last call to
// Bytes, relative to the %PDF- header.
func (b *Builder) Offset(num int) int64 {
	return b.offsets[num]
}

// Bytes serializes the file
func (b *Builder) Bytes() []byte {
	maxNum := 0
	for _, s := range b.sections {
		for _, o := range s.objects {
			if o.num > maxNum {
				maxNum = o.num
			}
		}
		for _, p := range s.packed {
			if p.num > maxNum {
				maxNum = p.num
			}
		}
	}
	// xref streams take the numbers after the highest object
	nextNum := maxNum + 1
	size := maxNum + 1
	for _, s := range b.sections {
		if s.xrefStream {
			size++
		}
	}

	var out bytes.Buffer
	out.WriteString(b.junk)
	base := out.Len()
	fmt.Fprintf(&out, "%%PDF-%s\n%%\xE2\xE3\xCF\xD3\n", b.version)

	b.offsets = make(map[int]int64)
	prev := -1
	for i, s := range b.sections {
		type row struct {
			num, typ, f2, f3 int
		}
		var rows []row
		for _, o := range s.objects {
			off := out.Len() - base
			b.offsets[o.num] = int64(off)
			fmt.Fprintf(&out, "%d %d obj\n", o.num, o.gen)
			out.Write(o.body)
			out.WriteString("\nendobj\n")
			rows = append(rows, row{o.num, 1, off, o.gen})
		}
		for _, p := range s.packed {
			rows = append(rows, row{p.num, 2, p.stream, p.index})
		}

		xrefOff := out.Len() - base
		trailer := strings.Join(s.trailer, " ")
		if prev >= 0 {
			trailer += fmt.Sprintf(" /Prev %d", prev)
		}

		if s.xrefStream {
			num := nextNum
			nextNum++
			rows = append(rows, row{num, 1, xrefOff, 0})
			sort.Slice(rows, func(a, c int) bool { return rows[a].num < rows[c].num })

			var data bytes.Buffer
			var index []string
			for _, r := range rows {
				index = append(index, fmt.Sprintf("%d 1", r.num))
				data.WriteByte(byte(r.typ))
				data.Write([]byte{byte(r.f2 >> 24), byte(r.f2 >> 16), byte(r.f2 >> 8), byte(r.f2)})
				data.Write([]byte{byte(r.f3 >> 8), byte(r.f3)})
			}
			fmt.Fprintf(&out, "%d 0 obj\n<< /Type /XRef /Size %d /W [1 4 2] /Index [%s] /Length %d %s >>\nstream\n",
				num, size, strings.Join(index, " "), data.Len(), trailer)
			out.Write(data.Bytes())
			out.WriteString("\nendstream\nendobj\n")
		} else {
			sort.Slice(rows, func(a, c int) bool { return rows[a].num < rows[c].num })
			out.WriteString("xref\n")
			if i == 0 {
				out.WriteString("0 1\n0000000000 65535 f \n")
			}
			for _, r := range rows {
				if r.typ != 1 {
					continue
				}
				fmt.Fprintf(&out, "%d 1\n%010d %05d n \n", r.num, r.f2, r.f3)
			}
			fmt.Fprintf(&out, "trailer\n<< /Size %d %s >>\n", size, trailer)
		}
		prev = xrefOff
	}

	fmt.Fprintf(&out, "startxref\n%d\n%%%%EOF\n", prev)
	return out.Bytes()
}

// Document builds a catalog (1), a page tree (2), a Courier font (3) and one
// page per content string. Page i is object 4+2i and its content stream
// follows it.
func Document(contents ...string) *Builder {
	b := New()
	b.Add(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.Add(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Courier >>")
	kids := make([]string, len(contents))
	for i, c := range contents {
		page := 4 + 2*i
		kids[i] = fmt.Sprintf("%d 0 R", page)
		b.Add(page, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595.28 841.89] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", page+1))
		b.AddStream(page+1, "", []byte(c))
	}
	b.Add(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(contents)))
	b.Trailer("/Root 1 0 R")
	return b
}
