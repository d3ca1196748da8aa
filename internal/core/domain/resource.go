package domain

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ResourceType identifies one of the managed collections.
type ResourceType string

const (
	ResourcePlayers ResourceType = "players"
	ResourceTeams   ResourceType = "teams"
	ResourceMatches ResourceType = "matches"
	ResourceStats   ResourceType = "stats"
	ResourceUsers   ResourceType = "users"
)

// ResourceTypes lists every managed collection.
var ResourceTypes = []ResourceType{
	ResourcePlayers, ResourceTeams, ResourceMatches, ResourceStats, ResourceUsers,
}

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	for _, known := range ResourceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// MutationOp is one of the three write operations against a resource.
type MutationOp string

const (
	OpCreate MutationOp = "create"
	OpUpdate MutationOp = "update"
	OpDelete MutationOp = "delete"
)

// Entity is a schemaless resource item. The cache only ever interprets the
// "id" field; everything else is opaque payload owned by the backend.
type Entity map[string]any

// ID returns the entity's identifier, or "" when absent.
func (e Entity) ID() string {
	id, _ := e["id"].(string)
	return id
}

// Clone returns a shallow per-field copy, so cached state cannot be mutated
// through a returned entity.
func (e Entity) Clone() Entity {
	if e == nil {
		return nil
	}
	c := make(Entity, len(e))
	for k, v := range e {
		c[k] = v
	}
	return c
}

// ListQuery identifies one list view of a resource: page, page size, search
// term and arbitrary filters. Two queries with the same Key address the same
// cached list.
type ListQuery struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

// Normalize fills in defaults so equivalent queries produce equal keys.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
	return q
}

// Key serializes the query into a canonical cache key. Filters are emitted in
// sorted order so map iteration order cannot produce distinct keys.
func (q ListQuery) Key() string {
	q = q.Normalize()
	var b strings.Builder
	fmt.Fprintf(&b, "page=%d&limit=%d", q.Page, q.Limit)
	if q.Search != "" {
		fmt.Fprintf(&b, "&q=%s", url.QueryEscape(q.Search))
	}
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "&%s=%s", url.QueryEscape(k), url.QueryEscape(q.Filters[k]))
	}
	return b.String()
}

// ListPage is the materialized result of one resource query.
type ListPage struct {
	Items []Entity `json:"data"`
	Total int      `json:"total"`
}

// Clone deep-copies the page one entity level down.
func (p ListPage) Clone() ListPage {
	items := make([]Entity, len(p.Items))
	for i, e := range p.Items {
		items[i] = e.Clone()
	}
	return ListPage{Items: items, Total: p.Total}
}
