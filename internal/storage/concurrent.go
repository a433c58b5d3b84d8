package storage

import (
	"sync"

	"chunkgen/internal/block"
)

// Concurrent guards a Storage with a reader-writer lock so that a late write
// can land while neighbouring mesh workers read the same chunk.
type Concurrent struct {
	mu    sync.RWMutex
	inner Storage
}

// NewConcurrent wraps s. Wrapping an already concurrent storage returns it unchanged.
func NewConcurrent(s Storage) *Concurrent {
	if c, ok := s.(*Concurrent); ok {
		return c
	}
	return &Concurrent{inner: s}
}

// NewConcurrentPalette returns a locked palette filled with one value.
func NewConcurrentPalette(fill block.ID) *Concurrent {
	return &Concurrent{inner: NewPalette(fill)}
}

func (c *Concurrent) Get(x, y, z int) block.ID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inner.Get(x, y, z)
}

func (c *Concurrent) Set(x, y, z int, id block.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Set(x, y, z, id)
}

// SetIndex writes a block by flat index.
func (c *Concurrent) SetIndex(i int, id block.ID) {
	x, y, z := Coords(i)
	c.Set(x, y, z, id)
}

// FillIndex writes id at flat index i only if the cell currently holds air.
// It reports whether the write happened.
func (c *Concurrent) FillIndex(i int, id block.ID) bool {
	x, y, z := Coords(i)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inner.Get(x, y, z) != block.AirID {
		return false
	}
	c.inner.Set(x, y, z, id)
	return true
}

func (c *Concurrent) IsUniform() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inner.IsUniform()
}

func (c *Concurrent) UniformValue() block.ID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inner.UniformValue()
}

func (c *Concurrent) CopyTo(dst []block.ID) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.inner.CopyTo(dst)
}

func (c *Concurrent) Kind() Kind {
	return c.inner.Kind()
}
