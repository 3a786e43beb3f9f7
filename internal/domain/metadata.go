package domain

// Well-known metadata fields populated by the fetcher in addition to raw headers.
const (
	MetaContentType     = "collector.content-type"
	MetaContentEncoding = "collector.content-encoding"
)

// Metadata is an insertion-ordered string mapping attached to a document.
// The zero value is ready to use.
type Metadata struct {
	keys   []string
	values map[string]string
}

// NewMetadata returns an empty mapping.
func NewMetadata() *Metadata {
	return &Metadata{values: map[string]string{}}
}

// Get returns the value stored under key and whether it exists.
func (m *Metadata) Get(key string) (string, bool) {
	if m == nil || m.values == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (m *Metadata) Set(key, value string) {
	if m.values == nil {
		m.values = map[string]string{}
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// AddIfAbsent stores value only when key has no value yet and reports whether it did.
func (m *Metadata) AddIfAbsent(key, value string) bool {
	if _, ok := m.Get(key); ok {
		return false
	}
	m.Set(key, value)
	return true
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len reports the number of stored keys.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Map returns a copy of the mapping.
func (m *Metadata) Map() map[string]string {
	out := make(map[string]string, m.Len())
	if m == nil {
		return out
	}
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
