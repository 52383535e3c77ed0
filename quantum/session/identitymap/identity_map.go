package identitymap

import "fmt"

// IsolationLevel controls how the identity map caches rows.
type IsolationLevel int

const (
	ReadUncommitted IsolationLevel = iota // Identity map is disabled
	ReadCommitted                         // Identity map is disabled
	RepeatableReads                       // Prevents repeated queries for existent rows only
	Serializable                          // Prevents repeated queries for both existent and nonexistent rows
)

// Key identifies a row by table and primary key.
type Key struct {
	Table string
	ID    string
}

func NewKey(table string, id any) Key {
	return Key{Table: table, ID: fmt.Sprint(id)}
}

// IdentityMap remembers rows loaded by primary key so that one session reads
// each row at most once. Stored and returned rows are copies.
type IdentityMap struct {
	cache    *lruCache
	strategy isolationStrategy
}

func New(cacheSize int, level IsolationLevel) *IdentityMap {
	m := &IdentityMap{cache: newLruCache(cacheSize)}
	m.SetIsolationLevel(level)
	return m
}

func (m *IdentityMap) SetIsolationLevel(level IsolationLevel) {
	switch level {
	case ReadUncommitted, ReadCommitted:
		m.strategy = disabledStrategy{}
	case RepeatableReads:
		m.strategy = &repeatableReadsStrategy{cache: m.cache}
	default:
		m.strategy = &serializableStrategy{cache: m.cache}
	}
}

func (m *IdentityMap) Add(key Key, row map[string]any) {
	m.strategy.add(key, copyRow(row))
}

// AddAbsent records that the key was queried but does not exist.
// Only effective with Serializable isolation level.
func (m *IdentityMap) AddAbsent(key Key) {
	m.strategy.addAbsent(key)
}

func (m *IdentityMap) Get(key Key) (map[string]any, error) {
	row, err := m.strategy.get(key)
	if err != nil {
		return nil, err
	}
	return copyRow(row), nil
}

func (m *IdentityMap) Has(key Key) bool {
	return m.strategy.has(key)
}

func (m *IdentityMap) Remove(key Key) {
	m.cache.remove(key)
}

func (m *IdentityMap) Len() int {
	return m.cache.len()
}

func (m *IdentityMap) Clear() {
	m.cache.clear()
}

func copyRow(row map[string]any) map[string]any {
	if row == nil {
		return nil
	}
	dup := make(map[string]any, len(row))
	for k, v := range row {
		dup[k] = v
	}
	return dup
}
