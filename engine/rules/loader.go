package rules

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultCacheKeyPrefix = "governance:rules:"
	defaultCacheTTL       = 60 * time.Second
)

// Store is the persistence contract for the three rule tables. Rule saves
// are full replacements: delete-all-then-reinsert, last writer wins.
type Store interface {
	Guardrails(ctx context.Context, workspaceID string) ([]GuardrailRule, error)
	EscalationPolicies(ctx context.Context, workspaceID string) ([]EscalationPolicy, error)
	ComplianceChecks(ctx context.Context, workspaceID string) ([]ComplianceCheck, error)
}

// RuleSet is one workspace's full rule configuration, loaded read-only per
// invocation.
type RuleSet struct {
	Guardrails []GuardrailRule    `json:"guardrails,omitempty"`
	Policies   []EscalationPolicy `json:"policies,omitempty"`
	Checks     []ComplianceCheck  `json:"checks,omitempty"`
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

func WithCache(client *redis.Client, ttl time.Duration) LoaderOption {
	return func(l *Loader) {
		l.cache = client
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

func WithCacheKeyPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		if prefix != "" {
			l.keyPrefix = prefix
		}
	}
}

// Loader reads rule sets with an optional short-TTL Redis cache. Rule edits
// are infrequent administrative actions, so a stale read within the TTL does
// not affect correctness.
type Loader struct {
	store     Store
	cache     *redis.Client
	ttl       time.Duration
	keyPrefix string
}

func NewLoader(store Store, opts ...LoaderOption) (*Loader, error) {
	if store == nil {
		return nil, errors.New("rule store is required")
	}
	l := &Loader{
		store:     store,
		ttl:       defaultCacheTTL,
		keyPrefix: defaultCacheKeyPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l, nil
}

// Load returns the workspace rule set. A retrieval failure on any table
// degrades to an empty slice for that table: fail-open on rule retrieval,
// fail-closed on rule violation.
func (l *Loader) Load(ctx context.Context, workspaceID string) RuleSet {
	if set, ok := l.fromCache(ctx, workspaceID); ok {
		return set
	}

	var set RuleSet
	var err error

	set.Guardrails, err = l.store.Guardrails(ctx, workspaceID)
	if err != nil {
		log.Warn().Err(err).Str("workspace_id", workspaceID).Msg("guardrail load failed, treating as empty")
		set.Guardrails = nil
	}
	set.Policies, err = l.store.EscalationPolicies(ctx, workspaceID)
	if err != nil {
		log.Warn().Err(err).Str("workspace_id", workspaceID).Msg("escalation policy load failed, treating as empty")
		set.Policies = nil
	}
	set.Checks, err = l.store.ComplianceChecks(ctx, workspaceID)
	if err != nil {
		log.Warn().Err(err).Str("workspace_id", workspaceID).Msg("compliance check load failed, treating as empty")
		set.Checks = nil
	}

	l.toCache(ctx, workspaceID, set)
	return set
}

func (l *Loader) fromCache(ctx context.Context, workspaceID string) (RuleSet, bool) {
	if l.cache == nil {
		return RuleSet{}, false
	}
	raw, err := l.cache.Get(ctx, l.keyPrefix+workspaceID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("rule cache read failed")
		}
		return RuleSet{}, false
	}
	var set RuleSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return RuleSet{}, false
	}
	return set, true
}

func (l *Loader) toCache(ctx context.Context, workspaceID string, set RuleSet) {
	if l.cache == nil {
		return
	}
	raw, err := json.Marshal(set)
	if err != nil {
		return
	}
	if err := l.cache.Set(ctx, l.keyPrefix+workspaceID, raw, l.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("rule cache write failed")
	}
}
