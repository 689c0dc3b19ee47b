package validator

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/piyushdaiya/dotescrow-kit/internal/core"
	"github.com/piyushdaiya/dotescrow-kit/internal/ss58"
	"github.com/sirupsen/logrus"
)

// EngineResponse is the watchlist engine's /check answer.
type EngineResponse struct {
	Address    string                 `json:"address"`
	Flagged    bool                   `json:"flagged"`
	Source     string                 `json:"source,omitempty"`
	Reason     string                 `json:"reason,omitempty"`
	Network    string                 `json:"network,omitempty"`
	Validation *core.ValidationResult `json:"validation,omitempty"`
}

// Short timeout: inspection should not hang if the engine is down.
const engineTimeout = 2 * time.Second

func CheckWatchlist(ctx context.Context, engineURL, address string) (*EngineResponse, error) {
	if engineURL == "" {
		return nil, fmt.Errorf("no watchlist engine configured")
	}
	client := &http.Client{Timeout: engineTimeout}
	endpoint := fmt.Sprintf("%s/check?address=%s", strings.TrimRight(engineURL, "/"), url.QueryEscape(address))

	var result EngineResponse
	if err := getJSON(ctx, client, endpoint, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// applyWatchlist fails open: an unreachable engine is noted, not fatal.
func applyWatchlist(ctx context.Context, profile *AddressProfile, engineURL string) {
	resp, err := CheckWatchlist(ctx, engineURL, profile.Address)
	if err != nil {
		logrus.WithError(err).WithField("engine", engineURL).Debug("watchlist check skipped")
		profile.ValidationDetails += " | [Warning: Watchlist Engine Offline]"
		return
	}
	if resp.Flagged {
		profile.Flagged = true
		profile.FlagSource = resp.Source
		profile.FlagReason = resp.Reason
		profile.ValidationDetails += fmt.Sprintf(" | FLAGGED by %s", resp.Source)
	}
}

// Profile runs the first strategy that accepts the address's syntax.
func Profile(ctx context.Context, strategies []ChainStrategy, address, engineURL string) (*AddressProfile, error) {
	cleanAddr := ss58.TrimAddress(address)
	for _, strategy := range strategies {
		if !strategy.IsValidSyntax(cleanAddr) {
			continue
		}
		logrus.WithFields(logrus.Fields{
			"address":  cleanAddr,
			"strategy": strategy.Name(),
		}).Debug("inspecting address")
		return strategy.Inspect(ctx, cleanAddr, engineURL)
	}
	return &AddressProfile{
		Address:           cleanAddr,
		Format:            "unknown",
		Network:           "UNKNOWN",
		IsValid:           false,
		ValidationDetails: "Invalid Format or No Matching Chain Strategy",
	}, nil
}

// DefaultStrategies lists H160 first since the SS58 decoder would reject it anyway.
func DefaultStrategies() []ChainStrategy {
	return []ChainStrategy{
		&H160Strategy{},
		&SubstrateStrategy{},
	}
}
