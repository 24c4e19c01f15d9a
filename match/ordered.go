package match

// Ordered is a string-keyed map that remembers insertion order.
type Ordered[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrdered returns an empty ordered map.
func NewOrdered[V any]() *Ordered[V] {
	return &Ordered[V]{values: make(map[string]V)}
}

// Set stores v under k. A new key is appended; an existing key keeps its
// position.
func (o *Ordered[V]) Set(k string, v V) {
	if _, ok := o.values[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.values[k] = v
}

// Get returns the value stored under k.
func (o *Ordered[V]) Get(k string) (V, bool) {
	v, ok := o.values[k]
	return v, ok
}

// Value returns the value stored under k, or the zero value.
func (o *Ordered[V]) Value(k string) V {
	return o.values[k]
}

// Has reports whether k is present.
func (o *Ordered[V]) Has(k string) bool {
	_, ok := o.values[k]
	return ok
}

// Len returns the number of entries.
func (o *Ordered[V]) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Ordered[V]) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Values returns the values in insertion order.
func (o *Ordered[V]) Values() []V {
	out := make([]V, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, o.values[k])
	}
	return out
}

// Delete removes k.
func (o *Ordered[V]) Delete(k string) {
	if _, ok := o.values[k]; !ok {
		return
	}
	delete(o.values, k)
	for i, key := range o.keys {
		if key == k {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Rename moves the value under from to the key to, keeping its position.
// It fails when from is missing or to is already taken.
func (o *Ordered[V]) Rename(from, to string) bool {
	v, ok := o.values[from]
	if !ok || o.Has(to) {
		return false
	}
	delete(o.values, from)
	o.values[to] = v
	for i, key := range o.keys {
		if key == from {
			o.keys[i] = to
			break
		}
	}
	return true
}

func (o *Ordered[V]) clone(cp func(V) V) *Ordered[V] {
	out := &Ordered[V]{
		keys:   make([]string, len(o.keys)),
		values: make(map[string]V, len(o.values)),
	}
	copy(out.keys, o.keys)
	for k, v := range o.values {
		if cp != nil {
			v = cp(v)
		}
		out.values[k] = v
	}
	return out
}
