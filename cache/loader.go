package cache

import "golang.org/x/sync/singleflight"

// Loader deduplicates concurrent loads of missing keys over one Cache.
// Values loaded through it are stored with the pool default TTL.
type Loader struct {
	cache *Cache
	group singleflight.Group
}

func NewLoader(c *Cache) *Loader {
	return &Loader{cache: c}
}

// GetOrLoad returns the value under key, calling load and caching its
// result on miss. Concurrent calls for the same key share one load call.
// A load error is returned to every caller of that flight and nothing is
// cached.
func (l *Loader) GetOrLoad(key string, load func() (interface{}, error)) (interface{}, error) {
	if v := l.cache.Get(key, nil); v != nil {
		return v, nil
	}
	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		// Another flight may have filled the key already.
		if v := l.cache.Get(key, nil); v != nil {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return nil, err
		}
		l.cache.Set(key, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}
