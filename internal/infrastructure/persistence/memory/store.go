// Package memory implements the engine store in process memory. A single
// store-wide mutex serializes transactions, which trivially provides the
// snapshot reads and all-or-nothing commits the engine requires. Used by
// tests and by embedded deployments without PostgreSQL.
package memory

import (
	"context"
	"sync"

	"github.com/heroforge-edu/heroforge-engine/internal/application/command"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/hero"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/reward"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/settings"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/shared"
)

// Store holds all engine state in memory.
type Store struct {
	mu sync.Mutex

	heroes   map[string]map[string]*hero.Hero      // teacherUID -> heroUID
	requests map[string]map[string]*reward.Request // teacherUID -> requestID
	settings map[string]settings.RewardSettings    // teacherUID
	tables   map[string]hero.LevelingTable         // teacherUID
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		heroes:   make(map[string]map[string]*hero.Hero),
		requests: make(map[string]map[string]*reward.Request),
		settings: make(map[string]settings.RewardSettings),
		tables:   make(map[string]hero.LevelingTable),
	}
}

// WithTx implements command.Store. The transaction runs against a staged
// copy of the store; an error from fn discards the copy, success swaps it
// in. The mutex makes concurrent transactions fully serial, so conflicting
// operations on the same ledger can never interleave.
func (s *Store) WithTx(ctx context.Context, fn func(tx command.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.snapshotLocked()
	tx := &memTx{state: staged}
	if err := fn(tx); err != nil {
		return err
	}

	s.heroes = staged.heroes
	s.requests = staged.requests
	s.settings = staged.settings
	s.tables = staged.tables
	return nil
}

// txState is the staged copy a transaction mutates.
type txState struct {
	heroes   map[string]map[string]*hero.Hero
	requests map[string]map[string]*reward.Request
	settings map[string]settings.RewardSettings
	tables   map[string]hero.LevelingTable
}

// snapshotLocked deep-copies the store. Classroom-sized data, so copying
// everything per transaction is cheaper than tracking a write set.
func (s *Store) snapshotLocked() *txState {
	st := &txState{
		heroes:   make(map[string]map[string]*hero.Hero, len(s.heroes)),
		requests: make(map[string]map[string]*reward.Request, len(s.requests)),
		settings: make(map[string]settings.RewardSettings, len(s.settings)),
		tables:   make(map[string]hero.LevelingTable, len(s.tables)),
	}
	for teacher, roster := range s.heroes {
		copied := make(map[string]*hero.Hero, len(roster))
		for uid, h := range roster {
			copied[uid] = cloneHero(h)
		}
		st.heroes[teacher] = copied
	}
	for teacher, reqs := range s.requests {
		copied := make(map[string]*reward.Request, len(reqs))
		for id, r := range reqs {
			c := *r
			copied[id] = &c
		}
		st.requests[teacher] = copied
	}
	for teacher, cfg := range s.settings {
		st.settings[teacher] = cfg
	}
	for teacher, table := range s.tables {
		st.tables[teacher] = append(hero.LevelingTable(nil), table...)
	}
	return st
}

func cloneHero(h *hero.Hero) *hero.Hero {
	c := *h
	if h.Inventory != nil {
		c.Inventory = make(map[string]int, len(h.Inventory))
		for k, v := range h.Inventory {
			c.Inventory[k] = v
		}
	}
	c.CompletedChapters = append([]string(nil), h.CompletedChapters...)
	return &c
}

// memTx implements command.Tx over the staged state.
type memTx struct {
	state *txState
}

func (t *memTx) Heroes() hero.Repository                { return &heroRepo{state: t.state} }
func (t *memTx) BoonRequests() reward.RequestRepository { return &requestRepo{state: t.state} }
func (t *memTx) Settings() settings.Repository          { return &settingsRepo{state: t.state} }
func (t *memTx) Leveling() hero.LevelingRepository      { return &levelingRepo{state: t.state} }

// ─────────────────────────────────────────────────────────────────────────────
// Repositories
// ─────────────────────────────────────────────────────────────────────────────

type heroRepo struct {
	state *txState
}

func (r *heroRepo) Get(_ context.Context, teacherUID, uid string) (*hero.Hero, error) {
	roster, ok := r.state.heroes[teacherUID]
	if !ok {
		return nil, shared.NewDomainError("hero", "Get", shared.ErrNotFound, "hero not found: "+uid)
	}
	h, ok := roster[uid]
	if !ok {
		return nil, shared.NewDomainError("hero", "Get", shared.ErrNotFound, "hero not found: "+uid)
	}
	return cloneHero(h), nil
}

func (r *heroRepo) Update(_ context.Context, h *hero.Hero) error {
	roster, ok := r.state.heroes[h.TeacherUID]
	if !ok {
		return shared.NewDomainError("hero", "Update", shared.ErrNotFound, "hero not found: "+h.UID)
	}
	if _, ok := roster[h.UID]; !ok {
		return shared.NewDomainError("hero", "Update", shared.ErrNotFound, "hero not found: "+h.UID)
	}
	roster[h.UID] = cloneHero(h)
	return nil
}

type requestRepo struct {
	state *txState
}

func (r *requestRepo) Get(_ context.Context, teacherUID, requestID string) (*reward.Request, error) {
	reqs, ok := r.state.requests[teacherUID]
	if !ok {
		return nil, shared.NewDomainError("reward", "Get", shared.ErrNotFound, "request not found: "+requestID)
	}
	req, ok := reqs[requestID]
	if !ok {
		return nil, shared.NewDomainError("reward", "Get", shared.ErrNotFound, "request not found: "+requestID)
	}
	c := *req
	return &c, nil
}

func (r *requestRepo) Create(_ context.Context, req *reward.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	reqs, ok := r.state.requests[req.TeacherUID]
	if !ok {
		reqs = make(map[string]*reward.Request)
		r.state.requests[req.TeacherUID] = reqs
	}
	if _, exists := reqs[req.ID]; exists {
		return shared.NewDomainError("reward", "Create", shared.ErrAlreadyExists, "request already exists: "+req.ID)
	}
	c := *req
	reqs[req.ID] = &c
	return nil
}

func (r *requestRepo) Delete(_ context.Context, teacherUID, requestID string) error {
	if reqs, ok := r.state.requests[teacherUID]; ok {
		delete(reqs, requestID)
	}
	return nil
}

type settingsRepo struct {
	state *txState
}

func (r *settingsRepo) GetRewardSettings(_ context.Context, teacherUID string) (settings.RewardSettings, error) {
	if cfg, ok := r.state.settings[teacherUID]; ok {
		return cfg, nil
	}
	return settings.Defaults(teacherUID), nil
}

type levelingRepo struct {
	state *txState
}

func (r *levelingRepo) GetTable(_ context.Context, teacherUID string) (hero.LevelingTable, error) {
	if table, ok := r.state.tables[teacherUID]; ok {
		return append(hero.LevelingTable(nil), table...), nil
	}
	return hero.DefaultTable(), nil
}

func (r *levelingRepo) SaveTable(_ context.Context, teacherUID string, table hero.LevelingTable) error {
	if err := table.Validate(); err != nil {
		return err
	}
	r.state.tables[teacherUID] = append(hero.LevelingTable(nil), table...)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixture helpers (outside the transaction boundary)
// ─────────────────────────────────────────────────────────────────────────────

// PutHero seeds a hero directly.
func (s *Store) PutHero(h *hero.Hero) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roster, ok := s.heroes[h.TeacherUID]
	if !ok {
		roster = make(map[string]*hero.Hero)
		s.heroes[h.TeacherUID] = roster
	}
	roster[h.UID] = cloneHero(h)
}

// GetHero reads a hero's committed state directly.
func (s *Store) GetHero(teacherUID, uid string) (*hero.Hero, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roster, ok := s.heroes[teacherUID]
	if !ok {
		return nil, false
	}
	h, ok := roster[uid]
	if !ok {
		return nil, false
	}
	return cloneHero(h), true
}

// PutRequest seeds a boon request directly.
func (s *Store) PutRequest(r *reward.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reqs, ok := s.requests[r.TeacherUID]
	if !ok {
		reqs = make(map[string]*reward.Request)
		s.requests[r.TeacherUID] = reqs
	}
	c := *r
	reqs[r.ID] = &c
}

// HasRequest reports whether a request still exists.
func (s *Store) HasRequest(teacherUID, requestID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	reqs, ok := s.requests[teacherUID]
	if !ok {
		return false
	}
	_, ok = reqs[requestID]
	return ok
}

// PutSettings seeds reward settings directly.
func (s *Store) PutSettings(cfg settings.RewardSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[cfg.TeacherUID] = cfg
}
