package expr

import "sync"

// Parser parses expressions, caching the results by source. Cache hits
// return clones, so trees returned by a Parser never share state. A Parser
// is safe for concurrent use.
type Parser struct {
	mu    sync.Mutex
	cache map[cacheKey]cacheEntry
}

type cacheKey struct {
	src    string
	prefix bool
}

type cacheEntry struct {
	n   Node
	end int
}

// NewParser returns a new Parser with an empty cache.
func NewParser() *Parser { return &Parser{cache: map[cacheKey]cacheEntry{}} }

// DefaultParser is the Parser used by the package-level functions.
var DefaultParser = NewParser()

// Parse parses a whole expression. The returned error is a *diag.Error if it
// is not nil.
func (p *Parser) Parse(src string) (Node, error) {
	n, _, err := p.parse(src, false)
	return n, err
}

// ParsePrefix parses the expression at the start of src, stopping at the
// first token that cannot continue it. It returns the byte offset of that
// token.
func (p *Parser) ParsePrefix(src string) (Node, int, error) {
	return p.parse(src, true)
}

// ParseInterpolated parses a string with {{ }} interpolations. See
// InterpolatedStr.
func (p *Parser) ParseInterpolated(src string) ([]Node, error) {
	return parseInterpolated(src, p.ParsePrefix)
}

func (p *Parser) parse(src string, prefix bool) (Node, int, error) {
	key := cacheKey{src, prefix}
	p.mu.Lock()
	e, ok := p.cache[key]
	p.mu.Unlock()
	if !ok {
		n, end, err := parsePrefix(src, prefix)
		if err != nil {
			return nil, 0, err
		}
		e = cacheEntry{n, end}
		p.mu.Lock()
		p.cache[key] = e
		p.mu.Unlock()
	}
	return e.n.Clone(), e.end, nil
}

// Len returns the number of cached trees.
func (p *Parser) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cache)
}

// Reset empties the cache.
func (p *Parser) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = map[cacheKey]cacheEntry{}
}

// Parse parses a whole expression with DefaultParser.
func Parse(src string) (Node, error) { return DefaultParser.Parse(src) }

// ParsePrefix parses the start of src with DefaultParser.
func ParsePrefix(src string) (Node, int, error) { return DefaultParser.ParsePrefix(src) }

// ParseInterpolated parses a string with interpolations with DefaultParser.
func ParseInterpolated(src string) ([]Node, error) {
	return DefaultParser.ParseInterpolated(src)
}

// ResetCache empties the cache of DefaultParser.
func ResetCache() { DefaultParser.Reset() }
