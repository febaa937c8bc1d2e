package registry

import (
	"fmt"
	"testing"
	"time"

	"github.com/meme-bots/go-custody/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertChain(t *testing.T) {
	r := New(WithCapacity(2, 1))

	require.NoError(t, r.UpsertChain(&types.ChainConfig{ChainID: 8453, RPC: "https://base.rpc"}))
	require.NoError(t, r.UpsertChain(&types.ChainConfig{ChainID: 1, Name: "mainnet", RPC: "https://eth.rpc"}))

	c, err := r.Chain(8453)
	require.NoError(t, err)
	assert.Equal(t, "Base", c.Name)

	// replacing an existing chain does not count against capacity
	require.NoError(t, r.UpsertChain(&types.ChainConfig{ChainID: 8453, Name: "base", RPC: "https://other.rpc"}))
	c, err = r.Chain(8453)
	require.NoError(t, err)
	assert.Equal(t, "https://other.rpc", c.RPC)

	err = r.UpsertChain(&types.ChainConfig{ChainID: 10, RPC: "https://op.rpc"})
	assert.True(t, errors.Is(err, types.ErrCapacityExceeded))
	assert.Equal(t, types.KindConfiguration, types.KindOf(err))

	chains := r.Chains()
	require.Len(t, chains, 2)
	assert.Equal(t, uint64(1), chains[0].ChainID)

	// snapshots do not alias registry state
	chains[0].RPC = "mutated"
	c, err = r.Chain(1)
	require.NoError(t, err)
	assert.Equal(t, "https://eth.rpc", c.RPC)

	assert.True(t, r.RemoveChain(1))
	assert.False(t, r.RemoveChain(1))
	_, err = r.Chain(1)
	assert.True(t, errors.Is(err, types.ErrChainNotConfigured))
}

func TestUpsertNetwork(t *testing.T) {
	r := New(WithCapacity(1, 1))

	err := r.UpsertNetwork(&types.NetworkConfig{Name: "devnet"})
	assert.True(t, errors.Is(err, types.ErrNetworkNotConfigured))

	require.NoError(t, r.UpsertNetwork(&types.NetworkConfig{Name: "devnet", RPC: "https://api.devnet.solana.com"}))
	require.NoError(t, r.UpsertNetwork(&types.NetworkConfig{Name: "devnet", RPC: "https://devnet.helius"}))
	err = r.UpsertNetwork(&types.NetworkConfig{Name: "mainnet-beta", RPC: "https://api.mainnet-beta.solana.com"})
	assert.True(t, errors.Is(err, types.ErrCapacityExceeded))

	n, err := r.Network("devnet")
	require.NoError(t, err)
	assert.Equal(t, "https://devnet.helius", n.RPC)
	assert.Len(t, r.Networks(), 1)

	_, err = r.Network("testnet")
	assert.True(t, errors.Is(err, types.ErrNetworkNotConfigured))
}

func TestHistory(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	uid := 0
	r := New(
		WithMaxHistory(3),
		WithClock(func() time.Time { return now }),
		WithUIDSource(func() string { uid++; return fmt.Sprintf("uid-%d", uid) }),
	)

	for i := 0; i < 5; i++ {
		network := "Base"
		if i%2 == 1 {
			network = "mainnet-beta"
		}
		rec := r.Record(types.TransactionRecord{Network: network, TxHash: fmt.Sprintf("0x%02d", i), Status: types.Submitted(fmt.Sprintf("0x%02d", i))})
		assert.Equal(t, uint64(i+1), rec.ID)
		assert.Equal(t, now, rec.Timestamp)
	}

	all := r.History(0)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"0x04", "0x03", "0x02"}, []string{all[0].TxHash, all[1].TxHash, all[2].TxHash})
	assert.Equal(t, uint64(5), all[0].ID)

	assert.Len(t, r.History(1), 1)

	base := r.HistoryFor("Base", 10)
	require.Len(t, base, 2)
	assert.Equal(t, "0x04", base[0].TxHash)

	_, ok := r.Lookup("uid-1")
	assert.False(t, ok, "trimmed")
	rec, ok := r.Lookup("uid-5")
	require.True(t, ok)
	assert.Equal(t, types.TxSubmitted, rec.Status.State)

	assert.True(t, r.SetStatus("uid-5", types.Confirmed(42)))
	rec, _ = r.Lookup("uid-5")
	assert.Equal(t, "confirmed(42)", rec.Status.String())
	assert.False(t, r.SetStatus("uid-1", types.Confirmed(1)))
}

func TestRecordDefaultUID(t *testing.T) {
	r := New()
	a := r.Record(types.TransactionRecord{TxHash: "a"})
	b := r.Record(types.TransactionRecord{TxHash: "b"})
	assert.NotEmpty(t, a.UID)
	assert.NotEqual(t, a.UID, b.UID)
	assert.False(t, a.Timestamp.IsZero())
}
