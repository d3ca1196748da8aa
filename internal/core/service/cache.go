package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/academyhq/academy-client/internal/clock"
	"github.com/academyhq/academy-client/internal/core/domain"
	"github.com/academyhq/academy-client/internal/core/ports"
	"github.com/academyhq/academy-client/internal/metrics"
)

const defaultStaleness = 30 * time.Second

// tmpIDPrefix marks provisional identifiers assigned to optimistic creates
// until the server confirms the real id.
const tmpIDPrefix = "tmp-"

// cachedList is the server-confirmed state of one list query, before any
// pending optimistic mutations are folded over it.
type cachedList struct {
	query     domain.ListQuery
	base      domain.ListPage
	fetchedAt time.Time
	stale     bool
}

// pendingMutation is one in-flight optimistic write. The journal holds the
// mutations of a resource type in issue order; rolling one back removes only
// its own effect, so an earlier mutation failing cannot clobber patches from
// mutations issued after it.
type pendingMutation struct {
	id       uint64
	op       domain.MutationOp
	entity   domain.Entity
	targetID string
}

// ResourceCache provides list views that reflect the user's own optimistic
// edits immediately while staying eventually consistent with the server,
// across arbitrarily many distinct query keys per resource type.
//
// Reads compose the last confirmed page with the pending-mutation journal.
// The journal, not a snapshot restore, is the rollback mechanism: optimistic
// total deltas are speculative and corrected by the next real response.
type ResourceCache struct {
	api   ports.ResourceAPI
	clock clock.Clock
	ttl   time.Duration
	log   zerolog.Logger

	mu      sync.Mutex
	lists   map[domain.ResourceType]map[string]*cachedList
	journal map[domain.ResourceType][]*pendingMutation
	nextID  uint64

	flights singleflight.Group
}

// NewResourceCache creates a ResourceCache. If ttl <= 0 a 30s staleness
// window is used.
func NewResourceCache(api ports.ResourceAPI, clk clock.Clock, ttl time.Duration, log zerolog.Logger) *ResourceCache {
	if ttl <= 0 {
		ttl = defaultStaleness
	}
	if clk == nil {
		clk = clock.New()
	}
	return &ResourceCache{
		api:     api,
		clock:   clk,
		ttl:     ttl,
		log:     log,
		lists:   make(map[domain.ResourceType]map[string]*cachedList),
		journal: make(map[domain.ResourceType][]*pendingMutation),
	}
}

// Query returns the list view for the query, serving a fresh cache entry when
// one exists and fetching otherwise. Concurrent queries for the same key
// coalesce into one network call. The returned page includes the effect of
// any pending optimistic mutations.
func (c *ResourceCache) Query(ctx context.Context, resource domain.ResourceType, query domain.ListQuery) (*domain.ListPage, error) {
	if !resource.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownResource, resource)
	}
	query = query.Normalize()
	key := query.Key()

	c.mu.Lock()
	l := c.lists[resource][key]
	fresh := l != nil && !l.stale && c.clock.Now().Sub(l.fetchedAt) < c.ttl
	if fresh {
		page := c.overlayLocked(resource, l)
		c.mu.Unlock()
		metrics.CacheRequestsTotal.WithLabelValues(string(resource), "hit").Inc()
		return &page, nil
	}
	result := "miss"
	if l != nil {
		result = "stale"
	}
	c.mu.Unlock()
	metrics.CacheRequestsTotal.WithLabelValues(string(resource), result).Inc()

	flightKey := string(resource) + "?" + key
	_, err, shared := c.flights.Do(flightKey, func() (any, error) {
		page, err := c.api.List(ctx, resource, query)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.lists[resource] == nil {
			c.lists[resource] = make(map[string]*cachedList)
		}
		c.lists[resource][key] = &cachedList{
			query:     query,
			base:      page.Clone(),
			fetchedAt: c.clock.Now(),
		}
		c.mu.Unlock()
		return nil, nil
	})
	if shared {
		c.log.Debug().Str("resource", string(resource)).Str("key", key).Msg("list fetch shared with concurrent caller")
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	l = c.lists[resource][key]
	if l == nil {
		// Evicted between fetch and read; treat as an empty page rather than
		// re-entering the fetch path.
		return &domain.ListPage{Items: []domain.Entity{}}, nil
	}
	page := c.overlayLocked(resource, l)
	return &page, nil
}

// Mutate applies an optimistic create, update or delete and issues the
// network call. On success the provisional state is reconciled with the
// server-confirmed entity (temporary create ids are replaced, never
// duplicated). On failure the mutation's effect is removed and the visible
// lists are bit-for-bit as they were before the attempt.
func (c *ResourceCache) Mutate(ctx context.Context, resource domain.ResourceType, op domain.MutationOp, entity domain.Entity) (domain.Entity, error) {
	if !resource.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownResource, resource)
	}
	if (op == domain.OpUpdate || op == domain.OpDelete) && entity.ID() == "" {
		return nil, fmt.Errorf("%s %s: entity id required", op, resource)
	}

	pm := c.applyOptimistic(resource, op, entity)

	confirmed, err := c.call(ctx, resource, op, pm)
	if err != nil {
		c.rollback(resource, pm.id)
		metrics.MutationsTotal.WithLabelValues(string(resource), string(op), "rolled_back").Inc()
		c.log.Warn().
			Str("resource", string(resource)).
			Str("operation", string(op)).
			Err(err).
			Msg("mutation rolled back")
		return nil, err
	}

	c.confirm(resource, pm, confirmed)
	metrics.MutationsTotal.WithLabelValues(string(resource), string(op), "confirmed").Inc()
	return confirmed, nil
}

// Invalidate marks cached lists of the resource type stale, forcing a refetch
// on next query. A nil predicate matches every key.
func (c *ResourceCache) Invalidate(resource domain.ResourceType, pred func(domain.ListQuery) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.lists[resource] {
		if pred == nil || pred(l.query) {
			l.stale = true
		}
	}
}

// applyOptimistic journals the mutation so it becomes visible in every
// affected list immediately, with zero latency.
func (c *ResourceCache) applyOptimistic(resource domain.ResourceType, op domain.MutationOp, entity domain.Entity) *pendingMutation {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	pm := &pendingMutation{id: c.nextID, op: op, entity: entity.Clone()}
	switch op {
	case domain.OpCreate:
		pm.targetID = tmpIDPrefix + strconv.FormatUint(c.nextID, 10)
		pm.entity["id"] = pm.targetID
	default:
		pm.targetID = entity.ID()
	}
	c.journal[resource] = append(c.journal[resource], pm)
	return pm
}

func (c *ResourceCache) call(ctx context.Context, resource domain.ResourceType, op domain.MutationOp, pm *pendingMutation) (domain.Entity, error) {
	switch op {
	case domain.OpCreate:
		payload := pm.entity.Clone()
		delete(payload, "id") // server assigns the real id
		return c.api.Create(ctx, resource, payload)
	case domain.OpUpdate:
		return c.api.Update(ctx, resource, pm.targetID, pm.entity)
	case domain.OpDelete:
		if err := c.api.Delete(ctx, resource, pm.targetID); err != nil {
			return nil, err
		}
		return pm.entity, nil
	default:
		return nil, fmt.Errorf("unknown mutation operation %q", op)
	}
}

// rollback removes exactly one mutation's effect. Later-issued overlapping
// mutations keep their place in the journal and stay visible.
func (c *ResourceCache) rollback(resource domain.ResourceType, mutationID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.journal[resource]
	for i, pm := range entries {
		if pm.id == mutationID {
			c.journal[resource] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// confirm folds the server-confirmed entity into every affected base page and
// retires the journal entry. Matching is by entity id, so confirmations
// arriving out of issue order apply idempotently.
func (c *ResourceCache) confirm(resource domain.ResourceType, pm *pendingMutation, confirmed domain.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range c.lists[resource] {
		switch pm.op {
		case domain.OpCreate:
			// A new item may belong to any page or filter view under unknown
			// sort order; conservatively it is shown on first pages only and
			// the true placement is corrected by the next real fetch.
			if l.query.Page != 1 {
				continue
			}
			if idx := indexByID(l.base.Items, confirmed.ID()); idx >= 0 {
				l.base.Items[idx] = confirmed.Clone()
			} else {
				l.base.Items = append([]domain.Entity{confirmed.Clone()}, l.base.Items...)
				l.base.Total++
			}
		case domain.OpUpdate:
			if idx := indexByID(l.base.Items, confirmed.ID()); idx >= 0 {
				l.base.Items[idx] = mergeEntity(l.base.Items[idx], confirmed)
			}
		case domain.OpDelete:
			if idx := indexByID(l.base.Items, pm.targetID); idx >= 0 {
				l.base.Items = append(l.base.Items[:idx], l.base.Items[idx+1:]...)
				if l.base.Total > 0 {
					l.base.Total--
				}
			}
		}
	}

	entries := c.journal[resource]
	for i, e := range entries {
		if e.id == pm.id {
			c.journal[resource] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
}

// overlayLocked folds the pending journal over a base page, in issue order.
// The base is never modified; a fresh copy is produced per read.
func (c *ResourceCache) overlayLocked(resource domain.ResourceType, l *cachedList) domain.ListPage {
	page := l.base.Clone()
	for _, pm := range c.journal[resource] {
		switch pm.op {
		case domain.OpCreate:
			if l.query.Page != 1 {
				continue
			}
			if indexByID(page.Items, pm.targetID) < 0 {
				page.Items = append([]domain.Entity{pm.entity.Clone()}, page.Items...)
				page.Total++
			}
		case domain.OpUpdate:
			if idx := indexByID(page.Items, pm.targetID); idx >= 0 {
				page.Items[idx] = mergeEntity(page.Items[idx], pm.entity)
			}
		case domain.OpDelete:
			if idx := indexByID(page.Items, pm.targetID); idx >= 0 {
				page.Items = append(page.Items[:idx], page.Items[idx+1:]...)
				if page.Total > 0 {
					page.Total--
				}
			}
		}
	}
	if page.Total < len(page.Items) {
		page.Total = len(page.Items)
	}
	return page
}

func indexByID(items []domain.Entity, id string) int {
	for i, e := range items {
		if e.ID() == id {
			return i
		}
	}
	return -1
}

// mergeEntity patches the fields of patch over base, keeping fields the patch
// does not mention.
func mergeEntity(base, patch domain.Entity) domain.Entity {
	merged := base.Clone()
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}

// MutationConflict reports whether err is a server-side rejection (as opposed
// to a transport failure).
func MutationConflict(err error) bool {
	var mc *domain.MutationConflictError
	return errors.As(err, &mc)
}
