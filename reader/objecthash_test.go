package reader

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yob/pdf-reader-sub001/cache"
	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/internal/pdftest"
	"github.com/yob/pdf-reader-sub001/pdferr"
)

func newHash(t *testing.T, b *pdftest.Builder, opts ...Option) *ObjectHash {
	t.Helper()
	data := b.Bytes()
	h, err := NewObjectHash(strings.NewReader(string(data)), int64(len(data)), opts...)
	require.NoError(t, err)
	return h
}

func TestObjectHashGet(t *testing.T) {
	h := newHash(t, pdftest.Document(isbnPage))

	font := core.Dict{
		"Type":     core.Name("Font"),
		"Subtype":  core.Name("Type1"),
		"BaseFont": core.Name("Courier"),
	}
	for _, key := range []any{3, int64(3), core.Int(3), "3", core.Reference{Number: 3}, &core.Reference{Number: 3}} {
		obj, err := h.Get(key)
		require.NoError(t, err, "key %v", key)
		assert.Equal(t, font, obj, "key %v", key)
	}

	for _, key := range []any{99, "x", core.Reference{Number: 3, Generation: 1}, 3.0, nil} {
		obj, err := h.Get(key)
		require.NoError(t, err)
		assert.Nil(t, obj, "key %v", key)
	}
}

func TestObjectHashFetch(t *testing.T) {
	h := newHash(t, pdftest.Document(isbnPage))

	obj, err := h.Fetch(3)
	require.NoError(t, err)
	assert.IsType(t, core.Dict{}, obj)

	obj, err = h.Fetch(99, core.Int(7))
	require.NoError(t, err)
	assert.Equal(t, core.Int(7), obj)

	_, err = h.Fetch(99)
	assert.ErrorIs(t, err, pdferr.ErrNotFound)
}

func TestObjectHashMissingReferenceIsNull(t *testing.T) {
	h := newHash(t, pdftest.Document(isbnPage))
	obj, err := h.ResolveReference(core.Reference{Number: 42})
	require.NoError(t, err)
	assert.Equal(t, core.Null{}, obj)

	obj, err = h.Object(core.Int(5))
	require.NoError(t, err)
	assert.Equal(t, core.Int(5), obj)
}

func TestObjectHashDerefCycle(t *testing.T) {
	b := pdftest.Document(isbnPage).
		Add(20, "[3 21 0 R]").
		Add(21, "[1 22 0 R]").
		Add(22, "[2 20 0 R]")
	h := newHash(t, b)

	obj, err := h.Deref(core.Reference{Number: 20})
	require.NoError(t, err)
	assert.Equal(t, "[3 [1 [2 20 0 R]]]", obj.String())
}

func TestObjectHashDerefTyped(t *testing.T) {
	b := pdftest.Document(isbnPage).
		Add(20, "<< /N 4 /R 2.5 /S (text) /A [1 2] /Name /X /D 21 0 R >>").
		Add(21, "<< /K true >>")
	h := newHash(t, b)

	dict, err := h.DerefDict(core.Reference{Number: 20})
	require.NoError(t, err)

	n, err := h.DerefInt(dict.Get("N"))
	require.NoError(t, err)
	assert.Equal(t, core.Int(4), n)

	f, err := h.DerefNumber(dict.Get("R"))
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)

	s, err := h.DerefString(dict.Get("S"))
	require.NoError(t, err)
	assert.Equal(t, core.String("text"), s)

	arr, err := h.DerefArray(dict.Get("A"))
	require.NoError(t, err)
	assert.Len(t, arr, 2)

	name, err := h.DerefName(dict.Get("Name"))
	require.NoError(t, err)
	assert.Equal(t, core.Name("X"), name)

	nested, err := h.DerefDict(dict.Get("D"))
	require.NoError(t, err)
	assert.Equal(t, core.Bool(true), nested.Get("K"))

	missing, err := h.DerefDict(dict.Get("Missing"))
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = h.DerefInt(dict.Get("S"))
	assert.ErrorIs(t, err, pdferr.ErrMalformed)
	_, err = h.DerefNumber(dict.Get("Name"))
	assert.ErrorIs(t, err, pdferr.ErrMalformed)
}

func TestObjectHashNewerSectionWins(t *testing.T) {
	b := pdftest.Document(isbnPage)
	b.Update().
		Add(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>").
		Trailer("/Root 1 0 R")
	h := newHash(t, b)

	obj, err := h.Get(3)
	require.NoError(t, err)
	name, _ := obj.(core.Dict).GetName("BaseFont")
	assert.Equal(t, core.Name("Helvetica"), name)
}

func TestObjectHashObjectStreams(t *testing.T) {
	b := pdftest.Document(isbnPage).XRefStream().
		AddObjectStream(10, map[int]string{
			11: "(eleven)",
			12: "<< /A 1 >>",
		})
	h := newHash(t, b)

	obj, err := h.Get(11)
	require.NoError(t, err)
	assert.Equal(t, core.String("eleven"), obj)

	obj, err = h.Get(12)
	require.NoError(t, err)
	assert.Equal(t, core.Dict{"A": core.Int(1)}, obj)

	report := h.ObjectStreamReport()
	assert.Contains(t, report, fmt.Sprintf(" %-10s | %8d | %8d | %8d \n", "10:0", 1, 1, 2))
}

func TestObjectHashEachAndReferences(t *testing.T) {
	h := newHash(t, pdftest.Document(isbnPage, secondPage))

	refs := h.References()
	require.NotEmpty(t, refs)
	for i := 1; i < len(refs); i++ {
		assert.Less(t, refs[i-1].Number, refs[i].Number)
	}

	var seen []int
	require.NoError(t, h.Each(func(ref core.Reference, obj core.Object) error {
		seen = append(seen, ref.Number)
		return nil
	}))
	assert.Len(t, seen, len(refs))

	pageRefs, err := h.PageReferences()
	require.NoError(t, err)
	assert.Equal(t, []core.Reference{{Number: 4}, {Number: 6}}, pageRefs)
}

func TestObjectHashStreamsDecoded(t *testing.T) {
	h := newHash(t, pdftest.Document(isbnPage))
	obj, err := h.Get(5)
	require.NoError(t, err)
	stream, ok := obj.(*core.Stream)
	require.True(t, ok)
	assert.True(t, stream.IsDecoded())
	data, err := stream.Decode()
	require.NoError(t, err)
	assert.Equal(t, isbnPage, string(data))
}

func TestObjectHashSelfReferencingLength(t *testing.T) {
	b := pdftest.Document(isbnPage).
		Add(20, "<< /Length 20 0 R >>\nstream\nabc\nendstream")
	h := newHash(t, b)
	obj, err := h.Get(20)
	require.NoError(t, err)
	stream, ok := obj.(*core.Stream)
	require.True(t, ok)
	assert.Equal(t, "abc", string(stream.Data))
}

func TestObjectHashUnencrypted(t *testing.T) {
	h := newHash(t, pdftest.Document(isbnPage))
	assert.False(t, h.Encrypted())
	data, err := h.SecHandler().DecryptString([]byte("abc"), core.Reference{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestObjectHashConcurrentGet(t *testing.T) {
	shared := cache.NewSynchronized[core.Reference, core.Object](cache.NewLRU[core.Reference, core.Object](16))
	h := newHash(t, pdftest.Document(isbnPage, secondPage), WithCache(shared))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := openFromHash(h)
			if _, err := r.Page(2); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func openFromHash(h *ObjectHash) *Reader {
	return &Reader{objects: h, layout: nil, logger: h.logger}
}

func TestObjectHashLimitsPerDocument(t *testing.T) {
	plain := bytes.Repeat([]byte("0 0 m 10 10 l S\n"), 64)
	var packed bytes.Buffer
	zw := zlib.NewWriter(&packed)
	_, err := zw.Write(plain)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	data := pdftest.Document("").AddStream(20, "/Filter /FlateDecode", packed.Bytes()).Bytes()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r, err := NewReaderBytes(data, WithLimits(Limits{MaxDecodedSize: 100}))
			if err != nil {
				errs <- err
				return
			}
			if _, err := r.Objects().Get(20); !errors.Is(err, pdferr.ErrMalformed) {
				errs <- fmt.Errorf("limited reader: expected malformed error, got %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			r, err := NewReaderBytes(data)
			if err != nil {
				errs <- err
				return
			}
			obj, err := r.Objects().Get(20)
			if err != nil {
				errs <- fmt.Errorf("default reader: %w", err)
				return
			}
			if stream, ok := obj.(*core.Stream); !ok || !bytes.Equal(stream.Decoded(), plain) {
				errs <- fmt.Errorf("default reader: unexpected object %v", obj)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
