package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/piyushdaiya/dotescrow-kit/internal/ss58"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const lastModifiedKey = "last_modified"

// WatchlistDocument is the yaml file escrow admins publish:
//
//	source: escrow-admin
//	entries:
//	  - address: 5Grwva...
//	    reason: chargeback abuse
type WatchlistDocument struct {
	Source  string           `yaml:"source"`
	Entries []WatchlistEntry `yaml:"entries"`
}

type WatchlistEntry struct {
	Address string `yaml:"address"`
	Reason  string `yaml:"reason"`
}

type Syncer struct {
	store    *Store
	url      string
	client   *http.Client
	interval time.Duration
	metrics  *Metrics
}

func NewSyncer(store *Store, url string, interval, timeout time.Duration, metrics *Metrics) *Syncer {
	return &Syncer{
		store:    store,
		url:      url,
		client:   &http.Client{Timeout: timeout},
		interval: interval,
		metrics:  metrics,
	}
}

// Run syncs whenever the remote list changed, then sleeps until the next round.
func (s *Syncer) Run(ctx context.Context) {
	for {
		if s.shouldUpdate(ctx) {
			logrus.WithField("url", s.url).Info("watchlist update detected, downloading")
			if loaded, err := s.SyncOnce(ctx); err != nil {
				logrus.WithError(err).Error("watchlist download failed")
			} else {
				logrus.WithField("loaded", loaded).Info("watchlist database update complete")
			}
		} else {
			logrus.Debug("watchlist database is up to date")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.interval):
		}
	}
}

func (s *Syncer) shouldUpdate(ctx context.Context) bool {
	localLastMod, _ := s.store.Metadata(ctx, lastModifiedKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.url, nil)
	if err != nil {
		return true
	}
	resp, err := s.client.Do(req)
	if err != nil {
		logrus.WithError(err).Warn("could not check remote watchlist headers")
		return true // fail open
	}
	defer resp.Body.Close()

	remoteLastMod := resp.Header.Get("Last-Modified")
	return remoteLastMod == "" || localLastMod != remoteLastMod
}

// SyncOnce downloads the watchlist and replaces the stored accounts of its source.
func (s *Syncer) SyncOnce(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("downloading watchlist: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("downloading watchlist: HTTP %d", resp.StatusCode)
	}

	doc, err := ParseWatchlist(resp.Body)
	if err != nil {
		return 0, err
	}
	accounts, skipped := resolveEntries(doc.Entries)
	if skipped > 0 {
		logrus.WithField("skipped", skipped).Warn("watchlist contained invalid addresses")
	}

	loaded, err := s.store.ReplaceSource(ctx, doc.Source, accounts)
	if err != nil {
		return 0, err
	}
	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		if err := s.store.SetMetadata(ctx, lastModifiedKey, lastMod); err != nil {
			return loaded, fmt.Errorf("recording last modified: %w", err)
		}
	}
	if s.metrics != nil {
		if total, err := s.store.Count(ctx); err == nil {
			s.metrics.flaggedAccounts.Set(float64(total))
		}
	}
	return loaded, nil
}

func ParseWatchlist(r io.Reader) (*WatchlistDocument, error) {
	var doc WatchlistDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing watchlist: %w", err)
	}
	doc.Source = strings.TrimSpace(doc.Source)
	if doc.Source == "" {
		return nil, fmt.Errorf("parsing watchlist: source is required")
	}
	return &doc, nil
}

func resolveEntries(entries []WatchlistEntry) ([]FlaggedAccount, int) {
	accounts := make([]FlaggedAccount, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		acc, err := ss58.Decode(e.Address)
		if err != nil {
			logrus.WithError(err).WithField("address", e.Address).Debug("skipping watchlist entry")
			skipped++
			continue
		}
		h160, _ := ss58.SS58ToH160(acc.Address)
		revive, _ := ss58.SubstrateToH160(acc.Address)
		accounts = append(accounts, FlaggedAccount{
			PublicKey:     acc.PublicKeyHex(),
			Address:       acc.Address,
			NetworkPrefix: acc.Prefix,
			H160:          h160,
			ReviveH160:    revive,
			Reason:        e.Reason,
		})
	}
	return accounts, skipped
}
