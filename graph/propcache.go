/*
 * PartGraph
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package graph

import (
	"sync"
	"sync/atomic"

	"github.com/krotik/common/bitutil"
	"github.com/krotik/common/errorutil"
)

/*
NodeEdgeScope says if a property key addresses node or edge columns.
*/
type NodeEdgeScope int

/*
Possible property key scopes.
*/
const (
	ScopeNode NodeEdgeScope = iota
	ScopeEdge
)

/*
PropertyKey addresses a chunked property column.
*/
type PropertyKey struct {
	Scope NodeEdgeScope // Node or edge column
	Name  string        // Column name
}

/*
CachePolicy is the replacement policy of a PropertyCache.
*/
type CachePolicy int

/*
Possible replacement policies. PolicyLRU bounds the number of entries,
PolicyBytes bounds the total payload size.
*/
const (
	PolicyLRU CachePolicy = iota
	PolicyBytes
)

/*
propCacheShards is the number of stripes of the cache hash map.
*/
const propCacheShards = 16

/*
propCacheEntry data structure
*/
type propCacheEntry struct {
	key   PropertyKey     // Key of the entry
	value interface{}     // Cached column value
	bytes uint64          // Payload size at insertion time
	prev  *propCacheEntry // Pointer to previous entry in the access list
	next  *propCacheEntry // Pointer to next entry in the access list
}

/*
Pool for cache entries
*/
var propEntryPool = &sync.Pool{New: func() interface{} { return &propCacheEntry{} }}

/*
propCacheShard is a stripe of the cache hash map with its own lock.
*/
type propCacheShard struct {
	lock    sync.Mutex
	entries map[PropertyKey]*propCacheEntry
}

/*
PropertyCache is a capacity bounded cache for unloaded property
columns. The hash map is striped over several shards with per-shard
locks; the MRU access list has a single lock which is only held across
constant time splice operations. Eviction happens synchronously during
Insert and invokes the eviction callback exactly once per evicted key.
*/
type PropertyCache struct {
	policy       CachePolicy             // Replacement policy
	lruCapacity  uint64                  // Max number of entries (PolicyLRU)
	byteCapacity uint64                  // Max payload bytes (PolicyBytes)
	valueBytes   func(interface{}) uint64 // Size supplier for values
	evictCb      func(key PropertyKey)   // Callback for evicted keys
	shards       []*propCacheShard       // Striped hash map
	listLock     *sync.Mutex             // Lock for access list and byte count
	first        *propCacheEntry         // MRU end of the access list
	last         *propCacheEntry         // LRU end of the access list
	totalBytes   uint64                  // Payload bytes of all entries
	size         int64                   // Number of entries
}

/*
NewPropertyCache creates a new property cache. PolicyLRU requires a
non-zero entry capacity, PolicyBytes a non-zero byte capacity and a
size supplier.
*/
func NewPropertyCache(policy CachePolicy, lruCapacity uint64,
	byteCapacity uint64, valueBytes func(interface{}) uint64) *PropertyCache {

	errorutil.AssertTrue(policy != PolicyLRU || lruCapacity > 0,
		"LRU policy requires a non-zero entry capacity")
	errorutil.AssertTrue(policy != PolicyBytes || byteCapacity > 0,
		"Byte policy requires a non-zero byte capacity")
	errorutil.AssertTrue(policy != PolicyBytes || valueBytes != nil,
		"Byte policy requires a size supplier")

	pc := &PropertyCache{policy, lruCapacity, byteCapacity, valueBytes, nil,
		make([]*propCacheShard, propCacheShards), &sync.Mutex{}, nil, nil, 0, 0}

	for i := 0; i < propCacheShards; i++ {
		pc.shards[i] = &propCacheShard{sync.Mutex{},
			make(map[PropertyKey]*propCacheEntry)}
	}

	return pc
}

/*
SetEvictionCallback registers a callback which is invoked once per
evicted key.
*/
func (pc *PropertyCache) SetEvictionCallback(cb func(key PropertyKey)) {
	pc.evictCb = cb
}

/*
shard returns the hash map stripe of a key.
*/
func (pc *PropertyCache) shard(key PropertyKey) *propCacheShard {
	data := append([]byte(key.Name), byte(key.Scope))

	hash, err := bitutil.MurMurHashData(data, 0, len(data)-1, 42)
	errorutil.AssertOk(err)

	return pc.shards[hash%propCacheShards]
}

/*
Size returns the number of cached entries.
*/
func (pc *PropertyCache) Size() uint64 {
	return uint64(atomic.LoadInt64(&pc.size))
}

/*
Bytes returns the payload bytes of all cached entries.
*/
func (pc *PropertyCache) Bytes() uint64 {
	pc.listLock.Lock()
	defer pc.listLock.Unlock()

	return pc.totalBytes
}

/*
Contains returns true if the given key is cached.
*/
func (pc *PropertyCache) Contains(key PropertyKey) bool {
	shard := pc.shard(key)

	shard.lock.Lock()
	defer shard.lock.Unlock()

	_, ok := shard.entries[key]

	return ok
}

/*
Insert stores a value at the most recently used end of the cache and
evicts old entries if a capacity is exceeded.
*/
func (pc *PropertyCache) Insert(key PropertyKey, value interface{}) {
	var bytes uint64

	if pc.valueBytes != nil {
		bytes = pc.valueBytes(value)
	}

	entry := propEntryPool.Get().(*propCacheEntry)
	entry.key = key
	entry.value = value
	entry.bytes = bytes
	entry.prev = nil
	entry.next = nil

	shard := pc.shard(key)

	shard.lock.Lock()
	old := shard.entries[key]
	shard.entries[key] = entry
	shard.lock.Unlock()

	pc.listLock.Lock()

	if old != nil {
		pc.unlink(old)
		pc.totalBytes -= old.bytes
		propEntryPool.Put(old)
	} else {
		atomic.AddInt64(&pc.size, 1)
	}

	pc.pushFront(entry)
	pc.totalBytes += bytes

	pc.listLock.Unlock()

	pc.evictIfNecessary()
}

/*
Get returns the cached value of a key and splices the entry to the most
recently used end of the access list.
*/
func (pc *PropertyCache) Get(key PropertyKey) (interface{}, bool) {
	shard := pc.shard(key)

	shard.lock.Lock()
	defer shard.lock.Unlock()

	entry, ok := shard.entries[key]

	if !ok {
		return nil, false
	}

	// The shard lock pins the entry - the list lock is only taken
	// while splicing to the front

	pc.listLock.Lock()
	if pc.first != entry {
		pc.unlink(entry)
		pc.pushFront(entry)
	}
	pc.listLock.Unlock()

	return entry.value, true
}

/*
pushFront links an entry at the MRU end. Callers must hold the list
lock.
*/
func (pc *PropertyCache) pushFront(entry *propCacheEntry) {
	entry.prev = nil
	entry.next = pc.first

	if pc.first != nil {
		pc.first.prev = entry
	}

	pc.first = entry

	if pc.last == nil {
		pc.last = entry
	}
}

/*
unlink removes an entry from the access list. Callers must hold the
list lock.
*/
func (pc *PropertyCache) unlink(entry *propCacheEntry) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else if pc.first == entry {
		pc.first = entry.next
	}

	if entry.next != nil {
		entry.next.prev = entry.prev
	} else if pc.last == entry {
		pc.last = entry.prev
	}

	entry.prev = nil
	entry.next = nil
}

/*
evictIfNecessary removes entries from the LRU end until the configured
capacity holds. Under the byte policy the last remaining entry is never
evicted even if it alone exceeds the capacity.
*/
func (pc *PropertyCache) evictIfNecessary() {

	for {
		if pc.policy == PolicyLRU {
			if pc.Size() <= pc.lruCapacity {
				return
			}
		} else if pc.Bytes() <= pc.byteCapacity || pc.Size() <= 1 {
			return
		}

		if !pc.evictOldest() {
			return
		}
	}
}

/*
evictOldest removes the entry at the LRU end of the access list.
*/
func (pc *PropertyCache) evictOldest() bool {
	pc.listLock.Lock()
	tail := pc.last
	pc.listLock.Unlock()

	if tail == nil {
		return false
	}

	key := tail.key

	// Remove the entry from the map before unlinking it so concurrent
	// readers no longer find it

	shard := pc.shard(key)

	shard.lock.Lock()
	if shard.entries[key] != tail {

		// The key was overwritten in the meantime - nothing to evict

		shard.lock.Unlock()
		return true
	}
	delete(shard.entries, key)
	shard.lock.Unlock()

	pc.listLock.Lock()
	pc.unlink(tail)
	pc.totalBytes -= tail.bytes
	pc.listLock.Unlock()

	atomic.AddInt64(&pc.size, -1)

	propEntryPool.Put(tail)

	if pc.evictCb != nil {
		pc.evictCb(key)
	}

	return true
}
