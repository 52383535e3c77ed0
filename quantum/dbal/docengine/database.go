package docengine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/krew-solutions/quantum-go/quantum/dbal"
)

// counterFile keeps the last issued id, so ids of deleted documents are never
// reused after a reopen.
const counterFile = "_counter"

var (
	ErrRawUnsupported     = errors.New("raw clauses are not supported by the document store")
	ErrCollectionNotFound = errors.New("collection not found")
)

// Database is an embedded document store. Each collection keeps its documents
// by an auto-incrementing int64 id. With a directory, every document is
// persisted as dir/<collection>/<id>.json. A Database is safe for concurrent
// use; builders are not.
type Database struct {
	dir         string
	mu          sync.RWMutex
	collections map[string]*collection
	cmp         *comparisonRegistry
}

type collection struct {
	name   string
	docs   map[int64]dbal.Row
	nextID int64
}

// Open loads every collection found under dir. An empty dir keeps the
// database in memory.
func Open(dir string) (*Database, error) {
	db := &Database{
		dir:         dir,
		collections: make(map[string]*collection),
		cmp:         newDefaultComparisons(),
	}
	if dir == "" {
		return db, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", dir)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		c, err := loadCollection(filepath.Join(dir, e.Name()), e.Name())
		if err != nil {
			return nil, err
		}
		db.collections[c.name] = c
	}
	return db, nil
}

func loadCollection(path, name string) (*collection, error) {
	c := newCollection(name)
	files, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read collection %s", name)
	}
	for _, f := range files {
		if f.Name() == counterFile {
			raw, err := os.ReadFile(filepath.Join(path, f.Name()))
			if err != nil {
				return nil, errors.Wrapf(err, "failed to read counter of %s", name)
			}
			if n, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64); err == nil && n > c.nextID {
				c.nextID = n
			}
			continue
		}
		base, ok := strings.CutSuffix(f.Name(), ".json")
		if f.IsDir() || !ok {
			continue
		}
		id, err := strconv.ParseInt(base, 10, 64)
		if err != nil {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(path, f.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read document %s/%d", name, id)
		}
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode document %s/%d", name, id)
		}
		c.docs[id] = doc
		if id > c.nextID {
			c.nextID = id
		}
	}
	return c, nil
}

func newCollection(name string) *collection {
	return &collection{name: name, docs: make(map[int64]dbal.Row)}
}

// Builder implements dbal.Engine.
func (db *Database) Builder(name, idColumn string) dbal.QueryBuilder {
	return newBuilder(db, name, idColumn)
}

// Collections returns the collection names in lexical order.
func (db *Database) Collections() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	names := make([]string, 0, len(db.collections))
	for name := range db.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Drop removes a collection with all its documents.
func (db *Database) Drop(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.collections[name]; !ok {
		return errors.Wrap(ErrCollectionNotFound, name)
	}
	delete(db.collections, name)
	if db.dir != "" {
		if err := os.RemoveAll(filepath.Join(db.dir, name)); err != nil {
			return errors.Wrapf(err, "failed to remove collection %s", name)
		}
	}
	return nil
}

// snapshot returns copies of all documents of a collection in id order.
func (db *Database) snapshot(name string) []dbal.Row {
	db.mu.RLock()
	defer db.mu.RUnlock()
	c, ok := db.collections[name]
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(c.docs))
	for id := range c.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	docs := make([]dbal.Row, len(ids))
	for i, id := range ids {
		docs[i] = c.docs[id].Copy()
	}
	return docs
}

func (db *Database) get(name string, id int64) (dbal.Row, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	c, ok := db.collections[name]
	if !ok {
		return nil, false
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, false
	}
	return doc.Copy(), true
}

func (db *Database) insert(name, idColumn string, doc dbal.Row) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	c, ok := db.collections[name]
	if !ok {
		c = newCollection(name)
		db.collections[name] = c
	}
	c.nextID++
	id := c.nextID
	stored := doc.Copy()
	stored[idColumn] = id
	if err := db.persist(name, id, stored); err != nil {
		c.nextID--
		return 0, err
	}
	c.docs[id] = stored
	if err := db.persistCounter(name, id); err != nil {
		return 0, err
	}
	return id, nil
}

func (db *Database) update(name string, id int64, fields dbal.Row) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	c, ok := db.collections[name]
	if !ok {
		return errors.Wrap(ErrCollectionNotFound, name)
	}
	doc, ok := c.docs[id]
	if !ok {
		return errors.Errorf("document %s/%d not found", name, id)
	}
	updated := doc.Copy()
	for k, v := range fields {
		updated[k] = v
	}
	if err := db.persist(name, id, updated); err != nil {
		return err
	}
	c.docs[id] = updated
	return nil
}

func (db *Database) delete(name string, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	c, ok := db.collections[name]
	if !ok {
		return errors.Wrap(ErrCollectionNotFound, name)
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	if db.dir != "" {
		err := os.Remove(db.documentPath(name, id))
		if err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "failed to remove document %s/%d", name, id)
		}
	}
	delete(c.docs, id)
	return nil
}

func (db *Database) documentPath(name string, id int64) string {
	return filepath.Join(db.dir, name, fmt.Sprintf("%d.json", id))
}

// persist writes through a temporary file so a crash never leaves a partial
// document behind.
func (db *Database) persist(name string, id int64, doc dbal.Row) error {
	if db.dir == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Join(db.dir, name), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create collection %s", name)
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to encode document %s/%d", name, id)
	}
	path := db.documentPath(name, id)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write document %s/%d", name, id)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "failed to write document %s/%d", name, id)
	}
	return nil
}

func (db *Database) persistCounter(name string, id int64) error {
	if db.dir == "" {
		return nil
	}
	path := filepath.Join(db.dir, name, counterFile)
	if err := os.WriteFile(path, []byte(strconv.FormatInt(id, 10)), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write counter of %s", name)
	}
	return nil
}

// documentID accepts the id forms a caller may hold: Go integers, float64
// from decoded JSON and numeric strings.
func documentID(id any) (int64, bool) {
	switch v := id.(type) {
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	if f, ok := normalize(id).(float64); ok && f == float64(int64(f)) {
		return int64(f), true
	}
	return 0, false
}

// decodeDocument keeps whole numbers as int64 so that a reloaded document
// looks like the one that was inserted.
func decodeDocument(raw []byte) (dbal.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return dbal.Row(convertNumbers(doc).(map[string]any)), nil
}

func convertNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, item := range t {
			t[k] = convertNumbers(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = convertNumbers(item)
		}
		return t
	}
	return v
}
