package reader

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/yob/pdf-reader-sub001/cache"
	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/pages"
	"github.com/yob/pdf-reader-sub001/pdferr"
	"github.com/yob/pdf-reader-sub001/resolver"
	"github.com/yob/pdf-reader-sub001/security"
)

// ObjectHash gives access to every indirect object in a document.
// Objects are loaded on demand, decrypted, have their stream filters
// applied and are kept in a bounded cache. Concurrent use is safe only
// with a synchronized cache (see WithCache).
type ObjectHash struct {
	src    io.ReaderAt
	size   int64
	closer io.Closer

	xref    *core.XRefTable
	version float64

	sec        security.DocumentHandler
	encryptRef core.Reference

	objects        cache.Cache[core.Reference, core.Object]
	deref          *resolver.ObjectResolver
	logger         *slog.Logger
	maxDecodedSize int64

	mu         sync.Mutex
	objStreams map[int]*core.ObjectStream
	counters   *cache.Counters
}

var (
	_ core.ReferenceResolver = (*ObjectHash)(nil)
	_ pages.ObjectResolver   = (*ObjectHash)(nil)
)

// OpenObjectHash opens the file at path. Close releases it.
func OpenObjectHash(path string, opts ...Option) (*ObjectHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	h, err := NewObjectHash(f, info.Size(), opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	h.closer = f
	return h, nil
}

// NewObjectHash reads the cross-reference data of the size bytes in src
// and sets up decryption when the document is encrypted.
func NewObjectHash(src io.ReaderAt, size int64, opts ...Option) (*ObjectHash, error) {
	if src == nil {
		return nil, pdferr.New(pdferr.InvalidArgument, "no PDF source given")
	}
	return newObjectHash(src, size, newConfig(opts))
}

func newObjectHash(src io.ReaderAt, size int64, cfg *config) (*ObjectHash, error) {
	xref, err := core.LoadXRef(src, size)
	if err != nil {
		return nil, fmt.Errorf("failed to load xref: %w", err)
	}
	cfg.logger.Debug("loaded cross-reference data", "entries", xref.Size())

	h := &ObjectHash{
		src:        src,
		size:       size,
		xref:       xref,
		version:    core.HeaderVersion(src, size),
		objects:    cfg.cache,
		logger:     cfg.logger,
		objStreams: make(map[int]*core.ObjectStream),
		counters:   cache.NewCounters(),

		maxDecodedSize: cfg.limits.MaxDecodedSize,
	}
	var ropts []resolver.Option
	if cfg.limits.MaxDerefDepth > 0 {
		ropts = append(ropts, resolver.WithMaxDepth(cfg.limits.MaxDerefDepth))
	}
	h.deref = resolver.NewResolver(h, ropts...)

	if err := h.setupEncryption(cfg.password); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *ObjectHash) setupEncryption(password string) error {
	enc := h.Trailer().Get("Encrypt")
	if enc == nil {
		return nil
	}
	if ref, ok := enc.(core.Reference); ok {
		h.encryptRef = ref
	}
	dict, err := h.DerefDict(enc)
	if err != nil {
		return fmt.Errorf("failed to load encryption dictionary: %w", err)
	}
	if dict == nil {
		return nil
	}
	if filter, _ := dict.GetName("Filter"); filter != "Standard" {
		return pdferr.Unsupportedf("unsupported security handler %s", filter)
	}

	var fileID []byte
	if ids, ok := h.Trailer().GetArray("ID"); ok {
		if first, ok := ids.Get(0).(core.String); ok {
			fileID = []byte(first)
		}
	}
	sec, err := security.NewStandardHandler(dict, fileID, password)
	if err != nil {
		return err
	}
	h.sec = sec
	h.logger.Debug("document is encrypted", "owner", sec.Owner())
	return nil
}

// Close releases the file opened by OpenObjectHash
func (h *ObjectHash) Close() error {
	if h.closer != nil {
		return h.closer.Close()
	}
	return nil
}

// Trailer returns the trailer dictionary of the newest xref section
func (h *ObjectHash) Trailer() core.Dict {
	return h.xref.Trailer
}

// Size returns the number of objects in the cross-reference data
func (h *ObjectHash) Size() int { return h.xref.Size() }

// References returns every object reference in object number order
func (h *ObjectHash) References() []core.Reference { return h.xref.References() }

// Encrypted reports whether the trailer names an encryption dictionary
func (h *ObjectHash) Encrypted() bool {
	return h.Trailer().Has("Encrypt")
}

// SecHandler returns the decryption handler, a NullHandler for
// unencrypted documents
func (h *ObjectHash) SecHandler() security.DocumentHandler {
	if h.sec == nil {
		return security.NullHandler{}
	}
	return h.sec
}

// PDFVersion returns the header version, or the catalog /Version when it
// is newer
func (h *ObjectHash) PDFVersion() float64 {
	version := h.version
	root, err := h.Catalog()
	if err != nil || root == nil {
		return version
	}
	v := pages.NewCatalog(root, h).Version()
	if catalogVersion, err := strconv.ParseFloat(v, 64); err == nil && catalogVersion > version {
		return catalogVersion
	}
	return version
}

// Catalog returns the document catalog
func (h *ObjectHash) Catalog() (core.Dict, error) {
	root := h.Trailer().Get("Root")
	if root == nil {
		return nil, pdferr.Malformedf("trailer has no /Root")
	}
	dict, err := h.DerefDict(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if dict == nil {
		return nil, pdferr.Malformedf("catalog %s is missing", root)
	}
	return dict, nil
}

// PageReferences returns the references of the page objects in
// document order
func (h *ObjectHash) PageReferences() ([]core.Reference, error) {
	root, err := h.Catalog()
	if err != nil {
		return nil, err
	}
	tree, err := pages.NewCatalog(root, h).Pages()
	if err != nil {
		return nil, err
	}
	return tree.References()
}

// Get returns the object for key, which may be an object number (int or
// numeric string) or a core.Reference. Unknown keys give nil without an
// error.
func (h *ObjectHash) Get(key any) (core.Object, error) {
	ref, ok := h.reference(key)
	if !ok {
		return nil, nil
	}
	if _, ok := h.xref.Lookup(ref); !ok {
		return nil, nil
	}
	return h.ResolveReference(ref)
}

// Fetch is Get with a default. Without a default a missing key is a
// NotFound error.
func (h *ObjectHash) Fetch(key any, def ...core.Object) (core.Object, error) {
	obj, err := h.Get(key)
	if err != nil {
		return nil, err
	}
	if obj != nil {
		return obj, nil
	}
	if len(def) > 0 {
		return def[0], nil
	}
	return nil, pdferr.New(pdferr.NotFound, "object %v not found", key)
}

func (h *ObjectHash) reference(key any) (core.Reference, bool) {
	var num int
	switch k := key.(type) {
	case core.Reference:
		return k, true
	case *core.Reference:
		if k == nil {
			return core.Reference{}, false
		}
		return *k, true
	case int:
		num = k
	case int64:
		num = int(k)
	case core.Int:
		num = int(k)
	case string:
		n, err := strconv.Atoi(k)
		if err != nil {
			return core.Reference{}, false
		}
		num = n
	default:
		return core.Reference{}, false
	}
	entry, ok := h.xref.Get(num)
	if !ok {
		return core.Reference{}, false
	}
	return core.Reference{Number: num, Generation: entry.Generation}, true
}

// Object resolves obj if it is a reference and returns it unchanged
// otherwise
func (h *ObjectHash) Object(obj core.Object) (core.Object, error) {
	ref, ok := obj.(core.Reference)
	if !ok {
		return obj, nil
	}
	return h.ResolveReference(ref)
}

// ResolveReference loads the object for ref. References to objects that
// do not exist resolve to null.
func (h *ObjectHash) ResolveReference(ref core.Reference) (core.Object, error) {
	return h.load(ref, nil)
}

// chained resolves references met while parsing an object, remembering
// which objects are being loaded on this path
type chained struct {
	h     *ObjectHash
	chain []core.Reference
}

func (c chained) ResolveReference(ref core.Reference) (core.Object, error) {
	return c.h.load(ref, c.chain)
}

func (h *ObjectHash) load(ref core.Reference, chain []core.Reference) (core.Object, error) {
	if obj, ok := h.objects.Get(ref); ok {
		return obj, nil
	}
	entry, ok := h.xref.Lookup(ref)
	if !ok {
		return core.Null{}, nil
	}
	for _, r := range chain {
		if r == ref {
			return nil, pdferr.Malformedf("object %s refers to itself while loading", ref)
		}
	}
	chain = append(chain[:len(chain):len(chain)], ref)

	var obj core.Object
	var err error
	if entry.Compressed {
		obj, err = h.fromObjectStream(ref, entry, chain)
	} else {
		obj, err = h.fromOffset(ref, entry, chain)
		if err == nil {
			obj, err = h.decrypt(ref, obj)
		}
	}
	if err != nil {
		return nil, err
	}

	if stream, ok := obj.(*core.Stream); ok {
		if _, err := stream.DecodeLimited(h.maxDecodedSize); err != nil {
			return nil, fmt.Errorf("object %s: %w", ref, err)
		}
	}
	h.objects.Set(ref, obj)
	return obj, nil
}

func (h *ObjectHash) fromOffset(ref core.Reference, entry core.XRefEntry, chain []core.Reference) (core.Object, error) {
	if entry.Offset <= 0 || entry.Offset >= h.size {
		return nil, pdferr.Malformedf("object %s has invalid offset %d", ref, entry.Offset)
	}
	p := core.NewParser(core.NewBuffer(h.src, h.size, entry.Offset))
	p.SetReferenceResolver(chained{h: h, chain: chain})
	ind, err := p.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse object %s: %w", ref, err)
	}
	if ind.Ref.Number != ref.Number {
		return nil, pdferr.Malformedf("expected object %s at offset %d, found %s", ref, entry.Offset, ind.Ref)
	}
	return ind.Object, nil
}

func (h *ObjectHash) fromObjectStream(ref core.Reference, entry core.XRefEntry, chain []core.Reference) (core.Object, error) {
	objStm, err := h.objectStream(entry.StreamNum, chain)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", ref, err)
	}
	obj, num, err := objStm.GetObjectByIndex(entry.Index)
	if err == nil && num == ref.Number {
		return obj, nil
	}
	obj, _, err = objStm.GetObjectByNumber(ref.Number)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", ref, err)
	}
	return obj, nil
}

// objectStream returns the parsed object stream num, counting cache hits
// and misses for ObjectStreamReport
func (h *ObjectHash) objectStream(num int, chain []core.Reference) (*core.ObjectStream, error) {
	key := fmt.Sprintf("%d:0", num)
	h.mu.Lock()
	objStm, ok := h.objStreams[num]
	h.mu.Unlock()
	if ok {
		h.counters.Hit(key)
		return objStm, nil
	}
	h.counters.Miss(key)
	h.logger.Debug("object stream cache miss", "stream", num)

	obj, err := h.load(core.Reference{Number: num}, chain)
	if err != nil {
		return nil, err
	}
	stream, ok := obj.(*core.Stream)
	if !ok {
		return nil, pdferr.Malformedf("object stream %d is not a stream", num)
	}
	objStm, err = core.NewObjectStream(stream)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.objStreams[num] = objStm
	h.mu.Unlock()
	return objStm, nil
}

// ObjectStreamReport renders the object stream cache statistics
func (h *ObjectHash) ObjectStreamReport() string {
	return h.counters.Report()
}

// decrypt returns obj with its strings and stream data decrypted. The
// encryption dictionary and xref streams are stored in the clear.
func (h *ObjectHash) decrypt(ref core.Reference, obj core.Object) (core.Object, error) {
	if h.sec == nil || ref == h.encryptRef {
		return obj, nil
	}
	return h.decryptObject(ref, obj)
}

func (h *ObjectHash) decryptObject(ref core.Reference, obj core.Object) (core.Object, error) {
	switch v := obj.(type) {
	case core.String:
		data, err := h.sec.DecryptString([]byte(v), ref)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt string in %s: %w", ref, err)
		}
		return core.String(data), nil
	case core.Array:
		out := make(core.Array, len(v))
		for i, elem := range v {
			d, err := h.decryptObject(ref, elem)
			if err != nil {
				return nil, err
			}
			out[i] = d
		}
		return out, nil
	case core.Dict:
		out := make(core.Dict, len(v))
		for key, value := range v {
			d, err := h.decryptObject(ref, value)
			if err != nil {
				return nil, err
			}
			out[key] = d
		}
		return out, nil
	case *core.Stream:
		if typ, _ := v.Dict.GetName("Type"); typ == "XRef" {
			return v, nil
		}
		data, err := h.sec.DecryptStream(v, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt stream %s: %w", ref, err)
		}
		dict, err := h.decryptObject(ref, v.Dict)
		if err != nil {
			return nil, err
		}
		return &core.Stream{Dict: dict.(core.Dict), Data: data}, nil
	default:
		return obj, nil
	}
}

// Each calls fn for every object in object number order, stopping at the
// first error
func (h *ObjectHash) Each(fn func(ref core.Reference, obj core.Object) error) error {
	for _, ref := range h.xref.References() {
		obj, err := h.ResolveReference(ref)
		if err != nil {
			return err
		}
		if err := fn(ref, obj); err != nil {
			return err
		}
	}
	return nil
}

// Deref resolves every reference reachable from obj into new containers.
// A reference met again on its own path is left in place.
func (h *ObjectHash) Deref(obj core.Object) (core.Object, error) {
	return h.deref.ResolveDeep(obj)
}

// DerefDict resolves obj one level and checks it is a dictionary. Null
// and missing objects give nil.
func (h *ObjectHash) DerefDict(obj core.Object) (core.Dict, error) {
	return derefAs[core.Dict](h, obj, "dictionary")
}

// DerefArray resolves obj one level and checks it is an array
func (h *ObjectHash) DerefArray(obj core.Object) (core.Array, error) {
	return derefAs[core.Array](h, obj, "array")
}

// DerefName resolves obj one level and checks it is a name
func (h *ObjectHash) DerefName(obj core.Object) (core.Name, error) {
	return derefAs[core.Name](h, obj, "name")
}

// DerefInt resolves obj one level and checks it is an integer
func (h *ObjectHash) DerefInt(obj core.Object) (core.Int, error) {
	return derefAs[core.Int](h, obj, "integer")
}

// DerefString resolves obj one level and checks it is a string
func (h *ObjectHash) DerefString(obj core.Object) (core.String, error) {
	return derefAs[core.String](h, obj, "string")
}

// DerefStream resolves obj one level and checks it is a stream
func (h *ObjectHash) DerefStream(obj core.Object) (*core.Stream, error) {
	return derefAs[*core.Stream](h, obj, "stream")
}

// DerefNumber resolves obj one level and checks it is an integer or real
func (h *ObjectHash) DerefNumber(obj core.Object) (float64, error) {
	resolved, err := h.Object(obj)
	if err != nil {
		return 0, err
	}
	switch resolved.(type) {
	case nil, core.Null:
		return 0, nil
	}
	n, ok := core.Number(resolved)
	if !ok {
		return 0, pdferr.Malformedf("expected number, got %s", resolved.Type())
	}
	return n, nil
}

func derefAs[T core.Object](h *ObjectHash, obj core.Object, what string) (T, error) {
	var zero T
	resolved, err := h.Object(obj)
	if err != nil {
		return zero, err
	}
	switch resolved.(type) {
	case nil, core.Null:
		return zero, nil
	}
	v, ok := resolved.(T)
	if !ok {
		return zero, pdferr.Malformedf("expected %s, got %s", what, resolved.Type())
	}
	return v, nil
}
