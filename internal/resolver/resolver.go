// Package resolver turns opaque item references stored inside recipe
// components back into live item snapshots, falling back to a name search
// of the host's item directory when the reference has gone stale.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/forgelight/crucible/internal/domain"
	"github.com/forgelight/crucible/internal/logger"
)

const (
	defaultCacheSize = 512
	defaultCacheTTL  = 5 * time.Minute

	// maxFuzzyDistance bounds the levenshtein fallback so "Iron Ore" can
	// recover "Iron ore" but never matches "Gold Ore".
	maxFuzzyDistance = 2
)

// Directory is the host's item catalogue, covering the world item
// directory and any compendium packs.
type Directory interface {
	Lookup(ctx context.Context, ref string) (*domain.ItemSnapshot, error)
	SearchByName(ctx context.Context, name string) ([]domain.ItemSnapshot, error)
}

// Service resolves component references to item snapshots
type Service interface {
	// Resolve returns the snapshot for ref. When the reference no longer
	// resolves, it searches the directory by cachedName, exact match first
	// and then closest fuzzy match within a small edit distance.
	Resolve(ctx context.Context, ref, cachedName string) (*domain.ItemSnapshot, error)
	// Invalidate drops a cached snapshot after the underlying item changed.
	Invalidate(ref string)
}

type service struct {
	dir   Directory
	cache *snapshotCache
}

// NewService creates a new resolver service
func NewService(dir Directory) Service {
	return &service{
		dir:   dir,
		cache: newSnapshotCache(defaultCacheSize, defaultCacheTTL),
	}
}

func (s *service) Resolve(ctx context.Context, ref, cachedName string) (*domain.ItemSnapshot, error) {
	if snap, ok := s.cache.Get(ref); ok {
		return snap, nil
	}

	snap, err := s.dir.Lookup(ctx, ref)
	if err == nil && snap != nil {
		s.cache.Set(ref, snap)
		return snap, nil
	}

	if cachedName == "" {
		return nil, fmt.Errorf("%w: ref %q", domain.ErrItemNotFound, ref)
	}

	logger.FromContext(ctx).Debug("Item ref stale, falling back to name search",
		"ref", ref, "name", cachedName)

	snap, err = s.searchFallback(ctx, cachedName)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ref, snap)
	return snap, nil
}

func (s *service) Invalidate(ref string) {
	s.cache.Invalidate(ref)
}

func (s *service) searchFallback(ctx context.Context, name string) (*domain.ItemSnapshot, error) {
	candidates, err := s.dir.SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("directory search failed: %w", err)
	}

	for i := range candidates {
		if candidates[i].Name == name {
			return &candidates[i], nil
		}
	}

	best := -1
	bestDist := maxFuzzyDistance + 1
	lower := strings.ToLower(name)
	for i := range candidates {
		dist := levenshtein.ComputeDistance(lower, strings.ToLower(candidates[i].Name))
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrItemNotFound, name)
	}

	return &candidates[best], nil
}
