package resolver

import (
	"fmt"

	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/pdferr"
)

// ObjectResolver resolves indirect references in PDF objects.
// It can recursively resolve references in dictionaries, arrays and stream
// dictionaries, always building new containers.
type ObjectResolver struct {
	reader   core.ReferenceResolver
	maxDepth int
}

// Option configures the resolver
type Option func(*ObjectResolver)

// DefaultMaxDepth is the default number of references followed along one
// path by ResolveDeep
const DefaultMaxDepth = 1000

// WithMaxDepth caps the references followed along one path of ResolveDeep
// (default DefaultMaxDepth). Containers nested directly inside an object
// do not count. It is a resource guard: a well-formed document with a
// longer acyclic chain, such as a very long outline /Next list, fails
// with a Malformed error.
func WithMaxDepth(depth int) Option {
	return func(r *ObjectResolver) {
		r.maxDepth = depth
	}
}

// NewResolver creates a new object resolver
func NewResolver(reader core.ReferenceResolver, opts ...Option) *ObjectResolver {
	r := &ObjectResolver{
		reader:   reader,
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve follows obj if it is a reference. Nested references are left
// alone.
func (r *ObjectResolver) Resolve(obj core.Object) (core.Object, error) {
	ref, ok := obj.(core.Reference)
	if !ok {
		return obj, nil
	}
	resolved, err := r.reader.ResolveReference(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reference %s: %w", ref, err)
	}
	return resolved, nil
}

// ResolveDeep resolves every reference reachable from obj. A reference
// met again while it is still being resolved on the current path is left
// in place as a core.Reference, so cyclic graphs terminate.
func (r *ObjectResolver) ResolveDeep(obj core.Object) (core.Object, error) {
	w := &walk{r: r, path: make(map[core.Reference]bool)}
	return w.resolve(obj, 0)
}

// walk holds the state of one ResolveDeep call.
type walk struct {
	r    *ObjectResolver
	path map[core.Reference]bool
}

// resolve rebuilds obj. hops counts the references followed to reach it.
func (w *walk) resolve(obj core.Object, hops int) (core.Object, error) {
	switch v := obj.(type) {
	case core.Reference:
		if w.path[v] {
			return v, nil
		}
		if hops >= w.r.maxDepth {
			return nil, pdferr.Malformedf("reference chain longer than %d at %s", w.r.maxDepth, v)
		}
		w.path[v] = true
		defer delete(w.path, v)

		resolved, err := w.r.reader.ResolveReference(v)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve reference %s: %w", v, err)
		}
		return w.resolve(resolved, hops+1)

	case core.Dict:
		resolved := make(core.Dict, len(v))
		for key, value := range v {
			rv, err := w.resolve(value, hops)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve dict key %s: %w", key, err)
			}
			resolved[key] = rv
		}
		return resolved, nil

	case core.Array:
		resolved := make(core.Array, len(v))
		for i, elem := range v {
			re, err := w.resolve(elem, hops)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve array element %d: %w", i, err)
			}
			resolved[i] = re
		}
		return resolved, nil

	case *core.Stream:
		dict, err := w.resolve(v.Dict, hops)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve stream dict: %w", err)
		}
		s := &core.Stream{Dict: dict.(core.Dict), Data: v.Data}
		if v.IsDecoded() {
			s.SetDecoded(v.Decoded())
		}
		return s, nil

	default:
		return obj, nil
	}
}

// ResolveDict resolves a dictionary and all its values
func (r *ObjectResolver) ResolveDict(obj core.Object) (core.Dict, error) {
	resolved, err := r.ResolveDeep(obj)
	if err != nil {
		return nil, err
	}
	switch v := resolved.(type) {
	case nil, core.Null:
		return nil, nil
	case core.Dict:
		return v, nil
	default:
		return nil, pdferr.Malformedf("expected dictionary, got %s", resolved.Type())
	}
}

// ResolveArray resolves an array and all its elements
func (r *ObjectResolver) ResolveArray(obj core.Object) (core.Array, error) {
	resolved, err := r.ResolveDeep(obj)
	if err != nil {
		return nil, err
	}
	switch v := resolved.(type) {
	case nil, core.Null:
		return nil, nil
	case core.Array:
		return v, nil
	default:
		return nil, pdferr.Malformedf("expected array, got %s", resolved.Type())
	}
}
