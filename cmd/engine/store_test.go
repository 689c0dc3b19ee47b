package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	aliceGeneric  = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	alicePolkadot = "15oF4uVJwmo4TdGW7VfQxNLavjCXviqxT9S1MgbjMNHr6Sp5"
	alicePubKey   = "0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"
	aliceH160     = "0x04a99fd6822c8558854ccde39a5684e7a56da27d"
	aliceRevive   = "0x9621dde636de098b43efb0fa9b61facfe328f99d"
	bobGeneric    = "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "watchlist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func aliceAccount() FlaggedAccount {
	return FlaggedAccount{
		PublicKey:     alicePubKey,
		Address:       aliceGeneric,
		NetworkPrefix: 42,
		H160:          aliceH160,
		ReviveH160:    aliceRevive,
		Reason:        "chargeback abuse",
	}
}

func TestStoreLookups(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := openTestStore(t)

	n, err := store.ReplaceSource(ctx, "escrow-admin", []FlaggedAccount{aliceAccount()})
	require.NoError(err)
	require.Equal(1, n)

	hit, err := store.LookupPublicKey(ctx, alicePubKey)
	require.NoError(err)
	require.NotNil(hit)
	require.Equal("escrow-admin", hit.Source)
	require.Equal("chargeback abuse", hit.Reason)
	require.EqualValues(42, hit.NetworkPrefix)
	require.False(hit.UpdatedAt.IsZero())

	for _, h160 := range []string{aliceH160, aliceRevive} {
		hit, err = store.LookupH160(ctx, h160)
		require.NoError(err)
		require.NotNil(hit, h160)
		require.Equal(aliceGeneric, hit.Address)
	}

	hit, err = store.LookupPublicKey(ctx, "0x00")
	require.NoError(err)
	require.Nil(hit)
}

func TestStoreReplaceSource(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := openTestStore(t)

	bob := FlaggedAccount{PublicKey: "0xbob", Address: bobGeneric, H160: "0xb1", ReviveH160: "0xb2"}
	_, err := store.ReplaceSource(ctx, "escrow-admin", []FlaggedAccount{aliceAccount()})
	require.NoError(err)
	_, err = store.ReplaceSource(ctx, "partner", []FlaggedAccount{bob})
	require.NoError(err)

	count, err := store.Count(ctx)
	require.NoError(err)
	require.Equal(2, count)

	// a new list for one source drops its stale entries only
	_, err = store.ReplaceSource(ctx, "escrow-admin", nil)
	require.NoError(err)

	hit, err := store.LookupPublicKey(ctx, alicePubKey)
	require.NoError(err)
	require.Nil(hit)
	hit, err = store.LookupPublicKey(ctx, "0xbob")
	require.NoError(err)
	require.NotNil(hit)
	require.Equal("partner", hit.Source)
}

func TestStoreMetadata(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := openTestStore(t)

	v, err := store.Metadata(ctx, lastModifiedKey)
	require.NoError(err)
	require.Empty(v)

	require.NoError(store.SetMetadata(ctx, lastModifiedKey, "Wed, 21 Oct 2026 07:28:00 GMT"))
	require.NoError(store.SetMetadata(ctx, lastModifiedKey, "Thu, 22 Oct 2026 07:28:00 GMT"))
	v, err = store.Metadata(ctx, lastModifiedKey)
	require.NoError(err)
	require.Equal("Thu, 22 Oct 2026 07:28:00 GMT", v)
}

func TestStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "watchlist.db")

	store, err := OpenStore(path)
	require.NoError(t, err)
	_, err = store.ReplaceSource(ctx, "escrow-admin", []FlaggedAccount{aliceAccount()})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = OpenStore(path)
	require.NoError(t, err)
	defer store.Close()
	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
