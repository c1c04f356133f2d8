// Package filestore is a single-file JSON document store. Each top-level key
// is a named collection holding an insertion-ordered array of records.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store 文件存储，所有读写经同一把锁串行化
type Store struct {
	path string
	mu   sync.Mutex
	doc  map[string]json.RawMessage
}

// Open 打开（不存在则创建）文档文件
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}

	s := &Store{path: path, doc: make(map[string]json.RawMessage)}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// flush writes the document through a temp file and rename.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".db-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Collection 某个集合的类型化视图
type Collection[T any] struct {
	store *Store
	name  string
}

// NewCollection binds a typed view to the named top-level array.
func NewCollection[T any](s *Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

func (c *Collection[T]) load() ([]T, error) {
	raw, ok := c.store.doc[c.name]
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", c.name, err)
	}
	return items, nil
}

// Read 在锁内读取集合快照
func (c *Collection[T]) Read(fn func(items []T) error) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	items, err := c.load()
	if err != nil {
		return err
	}
	return fn(items)
}

// Update 在锁内执行读-改-写；fn 返回 changed=false 时不落盘
func (c *Collection[T]) Update(fn func(items []T) ([]T, bool, error)) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	items, err := c.load()
	if err != nil {
		return err
	}

	next, changed, err := fn(items)
	if err != nil || !changed {
		return err
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", c.name, err)
	}

	prev, hadPrev := c.store.doc[c.name]
	c.store.doc[c.name] = raw
	if err := c.store.flush(); err != nil {
		if hadPrev {
			c.store.doc[c.name] = prev
		} else {
			delete(c.store.doc, c.name)
		}
		return fmt.Errorf("write %s: %w", c.store.path, err)
	}
	return nil
}
