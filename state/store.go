// Package state provides chain state snapshots and the forged-transaction
// repository for the admission node.
// 체인 높이와 최근에 본 트랜잭션 캐시를 제공함
package state

import (
	"sync"

	"github.com/ahwlsqja/mempool-admission/types"
)

// CacheResult splits a batch into ids newly recorded and ids already seen.
type CacheResult struct {
	Added    []*types.Transaction
	NotAdded []*types.Transaction
}

// Store holds the admission-facing chain state: the current height and a
// bounded cache of recently seen transaction ids.
type Store struct {
	mu sync.RWMutex

	// 현재 블록 높이
	lastHeight uint32

	// 최근에 본 트랜잭션 캐시 (중복 방지)
	seen     map[string]struct{}
	seenFIFO []string // 삽입 순서 (퇴출용)
	maxSeen  int
}

// NewStore creates a state store with a bounded seen-cache.
func NewStore(cacheSize int) *Store {
	if cacheSize <= 0 {
		cacheSize = 10000
	}
	return &Store{
		seen:    make(map[string]struct{}),
		maxSeen: cacheSize,
	}
}

// CacheTransactions records a batch in the seen-cache. Transactions whose id
// is already cached — including duplicates within the same batch — are
// returned as NotAdded. Input order is preserved in both halves.
func (s *Store) CacheTransactions(txs []*types.Transaction) CacheResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := CacheResult{}
	for _, tx := range txs {
		if _, ok := s.seen[tx.ID]; ok {
			result.NotAdded = append(result.NotAdded, tx)
			continue
		}
		s.recordLocked(tx.ID)
		result.Added = append(result.Added, tx)
	}
	return result
}

// HasSeen reports whether an id is in the seen-cache.
func (s *Store) HasSeen(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[id]
	return ok
}

// ClearSeen resets the seen-cache. 노드가 자동으로 호출하지 않음 (호출 측에서 직접 호출)
func (s *Store) ClearSeen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = make(map[string]struct{})
	s.seenFIFO = nil
}

// recordLocked inserts an id, evicting the oldest entries past capacity.
func (s *Store) recordLocked(id string) {
	s.seen[id] = struct{}{}
	s.seenFIFO = append(s.seenFIFO, id)

	for len(s.seenFIFO) > s.maxSeen {
		oldest := s.seenFIFO[0]
		s.seenFIFO = s.seenFIFO[1:]
		delete(s.seen, oldest)
	}
}

// GetLastHeight returns the current chain height snapshot.
func (s *Store) GetLastHeight() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastHeight
}

// SetLastHeight advances the chain height snapshot.
func (s *Store) SetLastHeight(height uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if height > s.lastHeight {
		s.lastHeight = height
	}
}
