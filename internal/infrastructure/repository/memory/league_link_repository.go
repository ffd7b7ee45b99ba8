// Package memory provides map-backed repositories for local development
// and tests, where a database is not available.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gridironhq/fantasy-dashboard/internal/domain/leaguelink"
)

type LeagueLinkRepository struct {
	mu     sync.RWMutex
	items  map[string]leaguelink.LeagueLink
	orders []string
}

func NewLeagueLinkRepository() *LeagueLinkRepository {
	return &LeagueLinkRepository{
		items: make(map[string]leaguelink.LeagueLink),
	}
}

func (r *LeagueLinkRepository) ListByUser(_ context.Context, userID string) ([]leaguelink.LeagueLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]leaguelink.LeagueLink, 0)
	// Newest first, matching the database ordering.
	for i := len(r.orders) - 1; i >= 0; i-- {
		link, ok := r.items[r.orders[i]]
		if !ok || link.UserID != userID {
			continue
		}
		out = append(out, link)
	}

	return out, nil
}

func (r *LeagueLinkRepository) GetByID(_ context.Context, linkID string) (leaguelink.LeagueLink, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.items[linkID]
	if !ok {
		return leaguelink.LeagueLink{}, false, nil
	}

	return link, true, nil
}

func (r *LeagueLinkRepository) Create(_ context.Context, link leaguelink.LeagueLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[link.ID]; exists {
		return fmt.Errorf("create league link: duplicate id %s", link.ID)
	}

	now := time.Now()
	if link.CreatedAt.IsZero() {
		link.CreatedAt = now
	}
	if link.UpdatedAt.IsZero() {
		link.UpdatedAt = now
	}

	r.items[link.ID] = link
	r.orders = append(r.orders, link.ID)

	return nil
}

func (r *LeagueLinkRepository) UpdateTeam(_ context.Context, linkID string, teamID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.items[linkID]
	if !ok {
		return fmt.Errorf("update league link team: not found")
	}

	link.TeamID = teamID
	link.UpdatedAt = time.Now()
	r.items[linkID] = link

	return nil
}

func (r *LeagueLinkRepository) Delete(_ context.Context, linkID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[linkID]; !ok {
		return fmt.Errorf("soft delete league link: not found")
	}
	delete(r.items, linkID)

	for i, id := range r.orders {
		if id == linkID {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			break
		}
	}

	return nil
}
