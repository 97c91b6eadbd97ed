package mempool

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ahwlsqja/mempool-admission/types"
)

func testTx(id string, sender string, nonce, fee uint64) *types.Transaction {
	return &types.Transaction{
		ID:              id,
		Version:         2,
		Type:            types.TxTransfer,
		TypeGroup:       types.TypeGroupCore,
		Nonce:           &nonce,
		SenderPublicKey: sender,
		Fee:             fee,
		Amount:          1000,
	}
}

func newRunningPool(t *testing.T, config *Config) *Pool {
	t.Helper()
	pool := NewPool(config)
	if err := pool.Start(); err != nil {
		t.Fatalf("Failed to start pool: %v", err)
	}
	t.Cleanup(func() { _ = pool.Stop() })
	return pool
}

func addOne(t *testing.T, pool *Pool, tx *types.Transaction) *AddResult {
	t.Helper()
	result, err := pool.AddTransactions(context.Background(), []*types.Transaction{tx})
	if err != nil {
		t.Fatalf("AddTransactions failed: %v", err)
	}
	return result
}

func TestPoolAddAndHas(t *testing.T) {
	pool := newRunningPool(t, nil)

	tx := testTx("tx1", "sender1", 1, 100)
	result := addOne(t, pool, tx)

	if len(result.Added) != 1 || len(result.NotAdded) != 0 {
		t.Fatalf("Expected clean add, got %+v", result)
	}
	if !pool.Has("tx1") {
		t.Error("Expected pool to contain tx1")
	}
	if pool.Size() != 1 {
		t.Errorf("Expected size 1, got %d", pool.Size())
	}
	if pool.SizeBytes() <= 0 {
		t.Error("Expected positive byte size")
	}
}

func TestPoolNotRunning(t *testing.T) {
	pool := NewPool(nil)

	_, err := pool.AddTransactions(context.Background(), []*types.Transaction{testTx("tx1", "s", 1, 1)})
	if err != ErrPoolNotRunning {
		t.Errorf("Expected ErrPoolNotRunning, got %v", err)
	}
}

func TestPoolDuplicate(t *testing.T) {
	pool := newRunningPool(t, nil)

	tx := testTx("tx1", "sender1", 1, 100)
	addOne(t, pool, tx)

	result := addOne(t, pool, tx)
	if len(result.NotAdded) != 1 {
		t.Fatalf("Expected one failure, got %+v", result)
	}
	failed := result.NotAdded[0]
	if failed.Type != types.ErrDuplicate {
		t.Errorf("Expected ERR_DUPLICATE, got %s", failed.Type)
	}
	if !strings.Contains(failed.Message, "tx1") {
		t.Errorf("Expected message to name the id, got %q", failed.Message)
	}
}

func TestPoolNonceOrder(t *testing.T) {
	pool := newRunningPool(t, nil)

	addOne(t, pool, testTx("tx1", "sender1", 5, 100))

	// 같은 발신자의 같거나 더 낮은 nonce는 거부됨
	result := addOne(t, pool, testTx("tx2", "sender1", 5, 100))
	if len(result.NotAdded) != 1 || result.NotAdded[0].Type != types.ErrApply {
		t.Fatalf("Expected ERR_APPLY for low nonce, got %+v", result)
	}

	// 다음 nonce는 허용됨
	result = addOne(t, pool, testTx("tx3", "sender1", 6, 100))
	if len(result.Added) != 1 {
		t.Fatalf("Expected add for next nonce, got %+v", result)
	}
}

func TestPoolSenderQuota(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTransactionsPerSender = 2
	pool := newRunningPool(t, cfg)

	addOne(t, pool, testTx("tx1", "sender1", 1, 100))
	if pool.HasExceededMaxTransactions("sender1") {
		t.Error("Quota should not be exceeded with 1 of 2")
	}

	addOne(t, pool, testTx("tx2", "sender1", 2, 100))
	if !pool.HasExceededMaxTransactions("sender1") {
		t.Error("Quota should be exceeded with 2 of 2")
	}
	if pool.HasExceededMaxTransactions("sender2") {
		t.Error("Quota applies per sender")
	}
}

func TestPoolFullEviction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTransactionsInPool = 1
	pool := newRunningPool(t, cfg)

	addOne(t, pool, testTx("cheap", "sender1", 1, 100))

	// 더 높은 수수료는 기존 것을 퇴출시키고 들어옴
	result := addOne(t, pool, testTx("rich", "sender2", 1, 200))
	if len(result.Added) != 1 {
		t.Fatalf("Expected eviction and add, got %+v", result)
	}
	if pool.Has("cheap") {
		t.Error("Expected cheap transaction to be evicted")
	}
	if !pool.Has("rich") {
		t.Error("Expected rich transaction stored")
	}

	// 더 낮은 수수료는 ERR_POOL_FULL
	result = addOne(t, pool, testTx("poor", "sender3", 1, 50))
	if len(result.NotAdded) != 1 {
		t.Fatalf("Expected pool-full failure, got %+v", result)
	}
	failed := result.NotAdded[0]
	if failed.Type != types.ErrPoolFull || failed.Message != "Pool is full." {
		t.Errorf("Expected ERR_POOL_FULL 'Pool is full.', got %s %q", failed.Type, failed.Message)
	}

	stats := pool.GetStats()
	if stats.TxsEvicted != 1 {
		t.Errorf("Expected 1 eviction, got %d", stats.TxsEvicted)
	}
}

func TestPoolHasSenderType(t *testing.T) {
	pool := newRunningPool(t, nil)

	tx := testTx("tx1", "sender1", 1, 100)
	tx.Type = types.TxDelegateRegistration
	addOne(t, pool, tx)

	if !pool.HasSenderType("sender1", types.TypeGroupCore, types.TxDelegateRegistration) {
		t.Error("Expected pending delegate registration for sender1")
	}
	if pool.HasSenderType("sender1", types.TypeGroupCore, types.TxVote) {
		t.Error("Unexpected pending vote")
	}
	if pool.HasSenderType("sender2", types.TypeGroupCore, types.TxDelegateRegistration) {
		t.Error("Unexpected pending registration for sender2")
	}
}

func TestPoolRemoveForBlock(t *testing.T) {
	pool := newRunningPool(t, nil)

	addOne(t, pool, testTx("tx1", "sender1", 1, 100))
	addOne(t, pool, testTx("tx2", "sender2", 1, 100))

	pool.RemoveForBlock(42, []string{"tx1", "missing"})

	if pool.Has("tx1") {
		t.Error("Expected tx1 removed after block commit")
	}
	if !pool.Has("tx2") {
		t.Error("Expected tx2 untouched")
	}
	if got := pool.GetStats().TxsCommitted; got != 1 {
		t.Errorf("Expected 1 committed, got %d", got)
	}
}

func TestPoolBulkOrderAndStats(t *testing.T) {
	pool := newRunningPool(t, nil)

	var txs []*types.Transaction
	for i := 0; i < 5; i++ {
		txs = append(txs, testTx(fmt.Sprintf("tx%d", i), fmt.Sprintf("sender%d", i), 1, 100))
	}

	result, err := pool.AddTransactions(context.Background(), txs)
	if err != nil {
		t.Fatalf("AddTransactions failed: %v", err)
	}
	if len(result.Added) != 5 {
		t.Fatalf("Expected 5 added, got %d", len(result.Added))
	}
	for i, tx := range result.Added {
		if tx.ID != fmt.Sprintf("tx%d", i) {
			t.Errorf("Added[%d]: expected tx%d, got %s", i, i, tx.ID)
		}
	}

	stats := pool.GetStats()
	if stats.TxsAdded != 5 || stats.CurrentSize != 5 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestPoolFlush(t *testing.T) {
	pool := newRunningPool(t, nil)

	addOne(t, pool, testTx("tx1", "sender1", 1, 100))
	pool.Flush()

	if pool.Size() != 0 || pool.SizeBytes() != 0 {
		t.Error("Expected empty pool after flush")
	}
	if pool.Has("tx1") {
		t.Error("Expected tx1 gone after flush")
	}
}
