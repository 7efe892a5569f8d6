package text

// DisjointSet is a union-find structure that remembers insertion order
type DisjointSet[T comparable] struct {
	parents map[T]T
	ranks   map[T]int
	order   []T
}

// NewDisjointSet creates an empty set
func NewDisjointSet[T comparable]() *DisjointSet[T] {
	return &DisjointSet[T]{
		parents: make(map[T]T),
		ranks:   make(map[T]int),
	}
}

// Add inserts x as its own group. Adding an existing item does nothing.
func (d *DisjointSet[T]) Add(x T) {
	if _, ok := d.parents[x]; ok {
		return
	}
	d.parents[x] = x
	d.ranks[x] = 0
	d.order = append(d.order, x)
}

// Contains reports whether x has been added
func (d *DisjointSet[T]) Contains(x T) bool {
	_, ok := d.parents[x]
	return ok
}

// Len returns the number of items
func (d *DisjointSet[T]) Len() int { return len(d.order) }

// Find returns the representative of x's group
func (d *DisjointSet[T]) Find(x T) (T, bool) {
	parent, ok := d.parents[x]
	if !ok {
		var zero T
		return zero, false
	}
	if parent == x {
		return x, true
	}
	root, _ := d.Find(parent)
	d.parents[x] = root
	return root, true
}

// Union merges the groups of a and b, adding either if missing
func (d *DisjointSet[T]) Union(a, b T) {
	d.Add(a)
	d.Add(b)
	ra, _ := d.Find(a)
	rb, _ := d.Find(b)
	if ra == rb {
		return
	}
	switch {
	case d.ranks[ra] < d.ranks[rb]:
		d.parents[ra] = rb
	case d.ranks[ra] > d.ranks[rb]:
		d.parents[rb] = ra
	default:
		d.parents[rb] = ra
		d.ranks[ra]++
	}
}

// Each calls fn for every item in insertion order
func (d *DisjointSet[T]) Each(fn func(T)) {
	for _, x := range d.order {
		fn(x)
	}
}

// Sets returns the groups. Members keep insertion order and groups are
// ordered by their first inserted member.
func (d *DisjointSet[T]) Sets() [][]T {
	index := make(map[T]int)
	var sets [][]T
	for _, x := range d.order {
		root, _ := d.Find(x)
		i, ok := index[root]
		if !ok {
			i = len(sets)
			index[root] = i
			sets = append(sets, nil)
		}
		sets[i] = append(sets[i], x)
	}
	return sets
}
