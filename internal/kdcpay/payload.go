package kdcpay

import (
	"net/url"
	"strings"
)

// Field is one name/value pair of a gateway payload.
type Field struct {
	Name  string
	Value string
}

// Payload is an ordered set of gateway fields. Order is significant: the
// checksum is computed over whitelisted values in iteration order.
type Payload struct {
	fields []Field
	index  map[string]int
}

func NewPayload() *Payload {
	return &Payload{index: make(map[string]int)}
}

// Set appends name, or replaces its value in place if it is already present.
func (p *Payload) Set(name, value string) {
	if i, ok := p.index[name]; ok {
		p.fields[i].Value = value
		return
	}
	p.index[name] = len(p.fields)
	p.fields = append(p.fields, Field{Name: name, Value: value})
}

func (p *Payload) Get(name string) string {
	v, _ := p.Lookup(name)
	return v
}

func (p *Payload) Lookup(name string) (string, bool) {
	i, ok := p.index[name]
	if !ok {
		return "", false
	}
	return p.fields[i].Value, true
}

func (p *Payload) Len() int { return len(p.fields) }

// Fields returns a copy of the fields in order.
func (p *Payload) Fields() []Field {
	out := make([]Field, len(p.fields))
	copy(out, p.fields)
	return out
}

// Encode renders the payload as an ordered query string.
func (p *Payload) Encode() string {
	parts := make([]string, 0, len(p.fields))
	for _, f := range p.fields {
		parts = append(parts, url.QueryEscape(f.Name)+"="+url.QueryEscape(f.Value))
	}
	return strings.Join(parts, "&")
}

// Map returns the fields as a map, for structured log output.
func (p *Payload) Map() map[string]string {
	out := make(map[string]string, len(p.fields))
	for _, f := range p.fields {
		out[f.Name] = f.Value
	}
	return out
}

// ParsePayload decodes one or more urlencoded strings into a single payload,
// in the order given. Later sources override earlier values without moving
// the field, the way the query string and form body of one request combine.
// A name or value with a broken escape is kept as sent.
func ParsePayload(sources ...string) *Payload {
	p := NewPayload()
	for _, src := range sources {
		for src != "" {
			var pair string
			pair, src, _ = strings.Cut(src, "&")
			if pair == "" {
				continue
			}
			rawName, rawValue, _ := strings.Cut(pair, "=")
			p.Set(unescape(rawName), unescape(rawValue))
		}
	}
	return p
}

func unescape(s string) string {
	v, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return v
}
