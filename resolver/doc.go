// Package resolver provides PDF indirect reference resolution.
//
// PDF documents use indirect references (e.g., "5 0 R") to refer to objects
// stored elsewhere in the file. This package resolves these references,
// following them through dictionaries, arrays and stream dictionaries.
//
// # Basic Usage
//
// Create a resolver over anything that can fetch a single reference:
//
//	r := resolver.NewResolver(objects)
//	obj, err := r.Resolve(ref)
//
// # Deep Resolution
//
// For complete expansion of nested references:
//
//	resolved, err := r.ResolveDeep(obj)
//
// Deep resolution never modifies its input; every dictionary, array and
// stream on the way is rebuilt.
//
// # Cycles
//
// A reference met again while it is already being resolved higher up the
// same path is returned as a core.Reference instead of being followed, so
// cyclic object graphs (a page pointing at its /Parent, say) terminate.
// The number of references followed along one path is additionally
// bounded, as a guard against very long chains:
//
//	r := resolver.NewResolver(objects, resolver.WithMaxDepth(50))
package resolver
