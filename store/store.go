// Package store implements the name-indexed resource-record database used
// by both the mDNS responder and the discovery engine (spec.md §4.6): a
// radix-like trie keyed by reversed label sequence, so that suffix/subtree
// queries are a subtree traversal, paired with a btree-backed expiration
// index so the next record to expire is found in O(log n) rather than by a
// linear scan.
package store

import (
	"time"

	"github.com/google/btree"
	"github.com/linkdata/deadlock"

	"github.com/opendisco/dnswire"
)

type trieNode struct {
	children map[string]*trieNode
	keys     map[string]struct{} // identity keys of records whose Name is exactly this node's path
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[string]*trieNode), keys: make(map[string]struct{})}
}

type record struct {
	rr        dnswire.ResourceRecord
	expiresAt time.Time
}

type expiryKey struct {
	expiresAt time.Time
	key       string
}

func lessExpiry(a, b expiryKey) bool {
	if !a.expiresAt.Equal(b.expiresAt) {
		return a.expiresAt.Before(b.expiresAt)
	}
	return a.key < b.key
}

// Store is a concurrency-safe, name-indexed multiset of resource records.
// A single exclusive lock protects all mutations (spec.md §5); reads take
// the same lock in shared mode. Its mutex is a deadlock.RWMutex rather than
// sync.RWMutex so that a lock-ordering bug between the receive loop, the
// refresh timer, and a user-facing call surfaces as a diagnostic instead of
// a silent hang.
type Store struct {
	mu      deadlock.RWMutex
	root    *trieNode
	records map[string]*record
	expiry  *btree.BTreeG[expiryKey]
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		root:    newTrieNode(),
		records: make(map[string]*record),
		expiry:  btree.NewG(32, lessExpiry),
	}
}

func (s *Store) nodeFor(name dnswire.Name, create bool) *trieNode {
	node := s.root
	for _, label := range name.ReversedLabels() {
		key := lowerLabel(label)
		child, ok := node.children[key]
		if !ok {
			if !create {
				return nil
			}
			child = newTrieNode()
			node.children[key] = child
		}
		node = child
	}
	return node
}

func lowerLabel(label []byte) string {
	b := make([]byte, len(label))
	for i, c := range label {
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}

// Add inserts rr, or, if a record with the same (name, class, type, rdata)
// identity already exists, refreshes its expiration to now + rr.TTL. A
// TTL of zero (an mDNS "goodbye" record, RFC 6762 §10.1) is stored with an
// already-past expiration so the next Expire call evicts it, letting
// callers uniformly funnel goodbyes through Add.
func (s *Store) Add(rr dnswire.ResourceRecord, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rr.IdentityKey()
	expiresAt := now.Add(time.Duration(rr.TTL) * time.Second)
	if rr.TTL == 0 {
		expiresAt = now.Add(-time.Nanosecond)
	}

	if old, ok := s.records[key]; ok {
		s.expiry.Delete(expiryKey{expiresAt: old.expiresAt, key: key})
		old.rr = rr
		old.expiresAt = expiresAt
	} else {
		node := s.nodeFor(rr.Name, true)
		node.keys[key] = struct{}{}
		s.records[key] = &record{rr: rr, expiresAt: expiresAt}
	}
	s.expiry.ReplaceOrInsert(expiryKey{expiresAt: expiresAt, key: key})
}

// Remove deletes every record at name, or only those of the given type if
// typ is non-nil.
func (s *Store) Remove(name dnswire.Name, typ *dnswire.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node := s.nodeFor(name, false)
	if node == nil {
		return
	}
	for key := range node.keys {
		rec, ok := s.records[key]
		if !ok {
			continue
		}
		if typ != nil && rec.rr.Type != *typ {
			continue
		}
		delete(node.keys, key)
		delete(s.records, key)
		s.expiry.Delete(expiryKey{expiresAt: rec.expiresAt, key: key})
	}
}

// Find returns every non-expired record at exactly name matching qtype and
// qclass, honoring TypeANY/ClassANY wildcards. now is used only to filter
// already-expired-but-not-yet-swept records; it does not mutate the store.
func (s *Store) Find(name dnswire.Name, qtype dnswire.Type, qclass dnswire.Class, now time.Time) []dnswire.ResourceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node := s.nodeFor(name, false)
	if node == nil {
		return nil
	}
	return s.collect(node, qtype, qclass, now)
}

func (s *Store) collect(node *trieNode, qtype dnswire.Type, qclass dnswire.Class, now time.Time) []dnswire.ResourceRecord {
	var out []dnswire.ResourceRecord
	for key := range node.keys {
		rec, ok := s.records[key]
		if !ok || !rec.expiresAt.After(now) {
			continue
		}
		if qtype != dnswire.TypeANY && rec.rr.Type != qtype {
			continue
		}
		if qclass != dnswire.ClassANY && rec.rr.Class.Value() != qclass {
			continue
		}
		out = append(out, rec.rr)
	}
	return out
}

// FindSubtree returns matching records at name and at every descendant of
// name, supporting mDNS service-enumeration-style queries (spec.md §4.6),
// e.g. the PTR records under "_services._dns-sd._udp.local.".
func (s *Store) FindSubtree(name dnswire.Name, qtype dnswire.Type, qclass dnswire.Class, now time.Time) []dnswire.ResourceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node := s.nodeFor(name, false)
	if node == nil {
		return nil
	}
	var out []dnswire.ResourceRecord
	s.walk(node, qtype, qclass, now, &out)
	return out
}

func (s *Store) walk(node *trieNode, qtype dnswire.Type, qclass dnswire.Class, now time.Time, out *[]dnswire.ResourceRecord) {
	*out = append(*out, s.collect(node, qtype, qclass, now)...)
	for _, child := range node.children {
		s.walk(child, qtype, qclass, now, out)
	}
}

// Expire evicts every record whose expiration is at or before now.
func (s *Store) Expire(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		min, ok := s.expiry.Min()
		if !ok || min.expiresAt.After(now) {
			return
		}
		s.expiry.DeleteMin()
		rec, ok := s.records[min.key]
		if !ok {
			continue
		}
		if node := s.nodeFor(rec.rr.Name, false); node != nil {
			delete(node.keys, min.key)
		}
		delete(s.records, min.key)
	}
}

// NextExpiration returns the smallest expiration instant among all stored
// records, or ok=false if the store is empty.
func (s *Store) NextExpiration() (t time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	min, ok := s.expiry.Min()
	if !ok {
		return time.Time{}, false
	}
	return min.expiresAt, true
}

// Len returns the number of records currently stored, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// TTLRemaining returns the time left before rr (matched by identity) would
// expire, for use when emitting a stored record with its remaining TTL
// rather than its original one (spec.md §4.7).
func (s *Store) TTLRemaining(rr dnswire.ResourceRecord, now time.Time) (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[rr.IdentityKey()]
	if !ok {
		return 0, false
	}
	if d := rec.expiresAt.Sub(now); d > 0 {
		return d, true
	}
	return 0, true
}
