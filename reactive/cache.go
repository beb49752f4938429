package reactive

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

type cacheEntry struct {
	handle uint64
	path   string
	w      Wrapper
	next   *cacheEntry
}

// cache holds one wrapper per (target handle, access path) so the same nested path
// always yields the same wrapper pointer. Entries are indexed by an xxhash of the pair;
// colliding pairs share a chain and are told apart by comparing the full key.
type cache struct {
	index    map[uint64]*cacheEntry
	byHandle map[uint64][]uint64
	size     int
}

func newCache() *cache {
	return &cache{
		index:    map[uint64]*cacheEntry{},
		byHandle: map[uint64][]uint64{},
	}
}

func cacheHash(handle uint64, path string) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], handle)
	d := xxhash.New()
	d.Write(buf[:])
	d.WriteString(path)
	return d.Sum64()
}

func (c *cache) get(handle uint64, path string) (Wrapper, bool) {
	for e := c.index[cacheHash(handle, path)]; e != nil; e = e.next {
		if e.handle == handle && e.path == path {
			return e.w, true
		}
	}
	return nil, false
}

func (c *cache) put(handle uint64, path string, w Wrapper) {
	h := cacheHash(handle, path)
	head := c.index[h]
	for e := head; e != nil; e = e.next {
		if e.handle == handle && e.path == path {
			e.w = w
			return
		}
	}
	c.index[h] = &cacheEntry{handle: handle, path: path, w: w, next: head}
	c.byHandle[handle] = append(c.byHandle[handle], h)
	c.size++
}

// release forgets every wrapper of handle and returns how many there were.
func (c *cache) release(handle uint64) int {
	removed := 0
	for _, h := range c.byHandle[handle] {
		var prev *cacheEntry
		for e := c.index[h]; e != nil; e = e.next {
			if e.handle != handle {
				prev = e
				continue
			}
			if prev == nil {
				c.index[h] = e.next
			} else {
				prev.next = e.next
			}
			removed++
		}
		if c.index[h] == nil {
			delete(c.index, h)
		}
	}
	delete(c.byHandle, handle)
	c.size -= removed
	return removed
}

func (c *cache) len() int {
	return c.size
}
