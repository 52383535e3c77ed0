package identitymap

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// lruCache evicts the least recently read row once size is exceeded.
// A nil value marks a row that is known to be absent.
type lruCache struct {
	rows *lru.Cache[Key, map[string]any]
}

func newLruCache(size int) *lruCache {
	if size < 1 {
		size = 1
	}
	// lru.New fails only for a non-positive size.
	rows, _ := lru.New[Key, map[string]any](size)
	return &lruCache{rows: rows}
}

func (c *lruCache) add(key Key, value map[string]any) {
	c.rows.Add(key, value)
}

func (c *lruCache) get(key Key) (map[string]any, bool) {
	return c.rows.Get(key)
}

func (c *lruCache) remove(key Key) {
	c.rows.Remove(key)
}

func (c *lruCache) len() int {
	return c.rows.Len()
}

func (c *lruCache) clear() {
	c.rows.Purge()
}
