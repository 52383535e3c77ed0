package identitymap

type isolationStrategy interface {
	add(key Key, row map[string]any)
	addAbsent(key Key)
	get(key Key) (map[string]any, error)
	has(key Key) bool
}

// disabledStrategy serves ReadUncommitted and ReadCommitted: nothing is cached.
type disabledStrategy struct{}

func (disabledStrategy) add(Key, map[string]any) {}
func (disabledStrategy) addAbsent(Key)           {}
func (disabledStrategy) has(Key) bool            { return false }
func (disabledStrategy) get(Key) (map[string]any, error) {
	return nil, ErrKeyNotFound
}

// repeatableReadsStrategy caches loaded rows only.
type repeatableReadsStrategy struct {
	cache *lruCache
}

func (s *repeatableReadsStrategy) add(key Key, row map[string]any) {
	s.cache.add(key, row)
}

func (s *repeatableReadsStrategy) addAbsent(Key) {}

func (s *repeatableReadsStrategy) get(key Key) (map[string]any, error) {
	row, ok := s.cache.get(key)
	if !ok || row == nil {
		return nil, ErrKeyNotFound
	}
	return row, nil
}

func (s *repeatableReadsStrategy) has(key Key) bool {
	row, ok := s.cache.get(key)
	return ok && row != nil
}

// serializableStrategy caches loaded rows and misses.
type serializableStrategy struct {
	cache *lruCache
}

func (s *serializableStrategy) add(key Key, row map[string]any) {
	s.cache.add(key, row)
}

func (s *serializableStrategy) addAbsent(key Key) {
	s.cache.add(key, nil)
}

func (s *serializableStrategy) get(key Key) (map[string]any, error) {
	row, ok := s.cache.get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	if row == nil {
		return nil, ErrObjectNotFound
	}
	return row, nil
}

func (s *serializableStrategy) has(key Key) bool {
	_, ok := s.cache.get(key)
	return ok
}
