package validator_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/piyushdaiya/dotescrow-kit/internal/ss58"
	"github.com/piyushdaiya/dotescrow-kit/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceGeneric  = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	alicePolkadot = "15oF4uVJwmo4TdGW7VfQxNLavjCXviqxT9S1MgbjMNHr6Sp5"
	aliceAstar    = "ajYMsCKsEAhEvHpeA4XqsfiA9v1CdzZPrCfS6pEfeGHW9j8"
	aliceH160     = "0x04a99fd6822c8558854ccde39a5684e7a56da27d"
	aliceRevive   = "0x9621dde636de098b43efb0fa9b61facfe328f99d"
)

func engine(t *testing.T, flagged map[string]string) string {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/check", r.URL.Path)
		addr := r.URL.Query().Get("address")
		reason, ok := flagged[addr]
		_ = json.NewEncoder(w).Encode(validator.EngineResponse{
			Address: addr,
			Flagged: ok,
			Source:  "escrow-admin",
			Reason:  reason,
		})
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestStrategySyntax(t *testing.T) {
	require := require.New(t)
	sub := &validator.SubstrateStrategy{}
	h160 := &validator.H160Strategy{}

	require.True(sub.IsValidSyntax(aliceGeneric))
	require.True(sub.IsValidSyntax("  " + alicePolkadot))
	require.False(sub.IsValidSyntax(aliceH160))
	require.True(h160.IsValidSyntax(aliceH160))
	require.False(h160.IsValidSyntax(aliceGeneric))
}

func TestProfileSubstrate(t *testing.T) {
	require := require.New(t)
	url := engine(t, map[string]string{aliceGeneric: "disputed milestone fraud"})

	p, err := validator.Profile(context.Background(), validator.DefaultStrategies(), aliceGeneric, url)
	require.NoError(err)
	require.True(p.IsValid)
	require.Equal("ss58", p.Format)
	require.Equal("Generic Substrate", p.Network)
	require.NotNil(p.NetworkPrefix)
	require.EqualValues(42, *p.NetworkPrefix)
	require.Equal(alicePolkadot, p.Canonical)
	require.Equal(aliceH160, p.H160)
	require.Equal(aliceRevive, p.ReviveH160)
	require.True(p.Flagged)
	require.Equal("disputed milestone fraud", p.FlagReason)
	require.Contains(p.ValidationDetails, "FLAGGED by escrow-admin")
}

func TestProfileHeuristicDisagreement(t *testing.T) {
	p, err := validator.Profile(context.Background(), validator.DefaultStrategies(), aliceAstar, engine(t, nil))
	require.NoError(t, err)
	require.True(t, p.IsValid)
	require.Equal(t, "Unknown", p.Network)
	require.Contains(t, p.ValidationDetails, "prefix 5 (Astar)")
	require.False(t, p.Flagged)
}

func TestProfileSubstrateFailsValidatorGates(t *testing.T) {
	// decodes as SS58 but the payload is 31 bytes
	p, err := validator.Profile(context.Background(), validator.DefaultStrategies(), "12K3n5t4wSaF5mj27Tw9vStXWLWyRjjiH5Cp3CFLpKVChC7", "")
	require.NoError(t, err)
	require.False(t, p.IsValid)
	require.Equal(t, "Invalid address format", p.ValidationDetails)
	require.Nil(t, p.NetworkPrefix)
}

func TestProfileH160(t *testing.T) {
	require := require.New(t)
	url := engine(t, nil)

	p, err := validator.Profile(context.Background(), validator.DefaultStrategies(), "0x04A99FD6822C8558854CCDE39A5684E7A56DA27D", url)
	require.NoError(err)
	require.True(p.IsValid)
	require.Equal("h160", p.Format)
	require.Equal(aliceH160, p.H160)
	require.Equal("5C4hrfjw9DjXZTzV3MyGFvSMHATDDfpVM3oYekKmagjkrrdz", p.SS58)
	require.False(p.Flagged)
}

func TestH160StrategyPrefix(t *testing.T) {
	url := engine(t, nil)

	polkadot := ss58.PrefixPolkadot
	p, err := (&validator.H160Strategy{SS58Prefix: &polkadot}).Inspect(context.Background(), aliceH160, url)
	require.NoError(t, err)
	require.Equal(t, "11111111111112GQ5GW8nSruyNdRYY2p3K88mmH38T9", p.SS58)

	p, err = (&validator.H160Strategy{}).Inspect(context.Background(), aliceH160, url)
	require.NoError(t, err)
	require.Equal(t, "5C4hrfjw9DjXZTzV3MyGFvSMHATDDfpVM3oYekKmagjkrrdz", p.SS58)
}

func TestProfileStripsByteOrderMark(t *testing.T) {
	p, err := validator.Profile(context.Background(), validator.DefaultStrategies(), "\uFEFF"+aliceGeneric, engine(t, nil))
	require.NoError(t, err)
	require.True(t, p.IsValid)
	require.Equal(t, aliceGeneric, p.Address)
}

func TestProfileEngineOfflineFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := validator.Profile(context.Background(), validator.DefaultStrategies(), aliceGeneric, srv.URL)
	require.NoError(t, err)
	require.True(t, p.IsValid)
	require.False(t, p.Flagged)
	require.Contains(t, p.ValidationDetails, "Watchlist Engine Offline")
}

func TestProfileNoStrategy(t *testing.T) {
	p, err := validator.Profile(context.Background(), validator.DefaultStrategies(), "hello world", "")
	require.NoError(t, err)
	require.False(t, p.IsValid)
	require.Equal(t, "UNKNOWN", p.Network)
}

func TestCheckWatchlistNoEngine(t *testing.T) {
	_, err := validator.CheckWatchlist(context.Background(), "", aliceGeneric)
	require.Error(t, err)
}
