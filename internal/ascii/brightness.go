package ascii

import "sync"

// BrightnessMap maps every 8-bit luminance to a glyph.
type BrightnessMap [256]rune

// BuildBrightnessMap spreads ramp evenly over the 256 luminance levels.
// ramp must be non-empty.
func BuildBrightnessMap(ramp Ramp) BrightnessMap {
	var m BrightnessMap
	n := len(ramp)
	for i := range m {
		idx := i * n / 256 // floor(i/256*n) in integer math
		if idx > n-1 {
			idx = n - 1
		}
		m[i] = ramp[idx]
	}
	return m
}

// MapCache memoizes brightness maps by character set.
// Safe for concurrent use; the live loop and snapshots share one.
type MapCache struct {
	mu   sync.Mutex
	maps map[Charset]*BrightnessMap
}

// NewMapCache returns an empty cache.
func NewMapCache() *MapCache {
	return &MapCache{maps: make(map[Charset]*BrightnessMap)}
}

// Get returns the cached map for name, building it on first use.
// Returned maps must not be modified.
func (c *MapCache) Get(name Charset) (*BrightnessMap, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.maps[name]; ok {
		return m, nil
	}
	ramp, err := LookupRamp(name)
	if err != nil {
		return nil, err
	}
	m := BuildBrightnessMap(ramp)
	c.maps[name] = &m
	return &m, nil
}

// Len returns the number of cached maps.
func (c *MapCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.maps)
}
