package state

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/ahwlsqja/mempool-admission/types"
)

func cacheTx(id string) *types.Transaction {
	return &types.Transaction{ID: id}
}

func TestStoreCacheTransactions(t *testing.T) {
	store := NewStore(100)

	t.Run("FirstSeenIsAdded", func(t *testing.T) {
		result := store.CacheTransactions([]*types.Transaction{cacheTx("a"), cacheTx("b")})
		if len(result.Added) != 2 || len(result.NotAdded) != 0 {
			t.Fatalf("Expected 2 added, got %+v", result)
		}
	})

	t.Run("SecondSeenIsNotAdded", func(t *testing.T) {
		result := store.CacheTransactions([]*types.Transaction{cacheTx("a"), cacheTx("c")})
		if len(result.Added) != 1 || result.Added[0].ID != "c" {
			t.Errorf("Expected only c added, got %+v", result)
		}
		if len(result.NotAdded) != 1 || result.NotAdded[0].ID != "a" {
			t.Errorf("Expected a not added, got %+v", result)
		}
	})

	t.Run("IntraBatchDuplicates", func(t *testing.T) {
		result := store.CacheTransactions([]*types.Transaction{cacheTx("d"), cacheTx("d")})
		if len(result.Added) != 1 || len(result.NotAdded) != 1 {
			t.Errorf("Expected intra-batch dedup, got %+v", result)
		}
	})

	t.Run("ClearSeen", func(t *testing.T) {
		store.ClearSeen()
		if store.HasSeen("a") {
			t.Error("Expected cache cleared")
		}
	})
}

func TestStoreCacheEviction(t *testing.T) {
	store := NewStore(3)

	for i := 0; i < 5; i++ {
		store.CacheTransactions([]*types.Transaction{cacheTx(fmt.Sprintf("tx%d", i))})
	}

	// 용량 3이므로 가장 오래된 2개는 밀려남
	if store.HasSeen("tx0") || store.HasSeen("tx1") {
		t.Error("Expected oldest entries evicted")
	}
	if !store.HasSeen("tx2") || !store.HasSeen("tx4") {
		t.Error("Expected recent entries retained")
	}
}

func TestStoreHeight(t *testing.T) {
	store := NewStore(10)

	if store.GetLastHeight() != 0 {
		t.Errorf("Expected initial height 0, got %d", store.GetLastHeight())
	}

	store.SetLastHeight(100)
	if store.GetLastHeight() != 100 {
		t.Errorf("Expected height 100, got %d", store.GetLastHeight())
	}

	// 높이는 뒤로 가지 않음
	store.SetLastHeight(50)
	if store.GetLastHeight() != 100 {
		t.Errorf("Expected height to stay at 100, got %d", store.GetLastHeight())
	}
}

func TestFileForgedRepository(t *testing.T) {
	// 임시 디렉토리 생성
	tmpDir, err := os.MkdirTemp("", "forged_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	repo, err := NewFileForgedRepository(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}

	ctx := context.Background()

	t.Run("EmptyLookup", func(t *testing.T) {
		found, err := repo.GetForgedTransactionsIds(ctx, []string{"a", "b"})
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if len(found) != 0 {
			t.Errorf("Expected no forged ids, got %v", found)
		}
	})

	t.Run("MarkAndLookup", func(t *testing.T) {
		if err := repo.MarkForged([]string{"b", "d"}); err != nil {
			t.Fatalf("MarkForged failed: %v", err)
		}

		found, err := repo.GetForgedTransactionsIds(ctx, []string{"a", "b", "c", "d"})
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		// 입력 순서 유지
		if len(found) != 2 || found[0] != "b" || found[1] != "d" {
			t.Errorf("Expected [b d], got %v", found)
		}
	})

	t.Run("SurvivesReopen", func(t *testing.T) {
		if err := repo.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		reopened, err := NewFileForgedRepository(tmpDir)
		if err != nil {
			t.Fatalf("Failed to reopen repository: %v", err)
		}
		defer reopened.Close()

		found, err := reopened.GetForgedTransactionsIds(ctx, []string{"b"})
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if len(found) != 1 || found[0] != "b" {
			t.Errorf("Expected persisted [b], got %v", found)
		}
	})
}
