package genview

// Context is the render context handed to a TemplateRenderer: an
// insertion-ordered mapping from name to value.
//
// Setting an existing key replaces its value but keeps its original position.
type Context struct {
	keys   []string
	values map[string]any
}

// NewContext creates an empty render context.
func NewContext() *Context {
	return &Context{values: make(map[string]any)}
}

// ContextOf builds a context from alternating key/value pairs.
//
//	genview.ContextOf("title", "Todos", "count", 3)
//
// A trailing key without a value is stored as nil.
func ContextOf(pairs ...any) *Context {
	c := NewContext()
	for i := 0; i < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		var value any
		if i+1 < len(pairs) {
			value = pairs[i+1]
		}
		c.Set(key, value)
	}
	return c
}

// Set stores value under key.
func (c *Context) Set(key string, value any) {
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Get returns the value stored under key.
func (c *Context) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present.
func (c *Context) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (c *Context) Keys() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of keys.
func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Merge copies every key of other into c, in other's order.
func (c *Context) Merge(other *Context) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		c.Set(k, other.values[k])
	}
}

// Clone returns a shallow copy.
func (c *Context) Clone() *Context {
	out := NewContext()
	out.Merge(c)
	return out
}

// Map returns the context as a plain map for template engines that need one.
func (c *Context) Map() map[string]any {
	out := make(map[string]any, c.Len())
	if c == nil {
		return out
	}
	for k, v := range c.values {
		out[k] = v
	}
	return out
}
