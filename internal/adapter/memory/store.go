package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/koshhq/kosh/internal/domain"
	"github.com/koshhq/kosh/internal/ports"
)

// Store is an in-memory implementation of ports.Store. It backs unit tests
// and local development; transactions are serialized under one mutex and
// rolled back by snapshot.
type Store struct {
	mu sync.Mutex

	assets      map[string]domain.Asset
	assignments map[string]domain.Assignment
	holders     map[string]domain.Holder
	repairLogs  []domain.RepairRecord
	audits      []domain.AuditEntry
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		assets:      make(map[string]domain.Asset),
		assignments: make(map[string]domain.Assignment),
		holders:     make(map[string]domain.Holder),
	}
}

// Repos returns repositories that take the store lock per call
func (s *Store) Repos() ports.Repositories {
	return s.repos(false)
}

// WithinTx holds the store lock for the whole callback and restores a
// snapshot when fn fails, so all writes commit or none do.
func (s *Store) WithinTx(_ context.Context, fn func(r ports.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.clone()
	if err := fn(s.repos(true)); err != nil {
		s.assets = snapshot.assets
		s.assignments = snapshot.assignments
		s.holders = snapshot.holders
		s.repairLogs = snapshot.repairLogs
		s.audits = snapshot.audits
		return err
	}
	return nil
}

func (s *Store) repos(inTx bool) ports.Repositories {
	return ports.Repositories{
		Assets:      &assetRepo{store: s, inTx: inTx},
		Assignments: &assignmentRepo{store: s, inTx: inTx},
		Holders:     &holderRepo{store: s, inTx: inTx},
		RepairLogs:  &repairLogRepo{store: s, inTx: inTx},
		Audits:      &auditRepo{store: s, inTx: inTx},
	}
}

func (s *Store) clone() *Store {
	c := &Store{
		assets:      make(map[string]domain.Asset, len(s.assets)),
		assignments: make(map[string]domain.Assignment, len(s.assignments)),
		holders:     make(map[string]domain.Holder, len(s.holders)),
		repairLogs:  append([]domain.RepairRecord(nil), s.repairLogs...),
		audits:      append([]domain.AuditEntry(nil), s.audits...),
	}
	for id, a := range s.assets {
		c.assets[id] = a
	}
	for id, a := range s.assignments {
		c.assignments[id] = a
	}
	for id, h := range s.holders {
		h.Index = append([]domain.IndexEntry(nil), h.Index...)
		c.holders[id] = h
	}
	return c
}

// lock takes the store mutex unless the caller already holds it inside a
// transaction.
func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type assetRepo struct {
	store *Store
	inTx  bool
}

func (r *assetRepo) Create(_ context.Context, asset *domain.Asset) error {
	defer r.store.lock(r.inTx)()
	for _, a := range r.store.assets {
		if a.SerialNumber == asset.SerialNumber {
			return domain.NewConflict("asset with serial number " + asset.SerialNumber + " already exists")
		}
	}
	r.store.assets[asset.ID] = *asset
	return nil
}

func (r *assetRepo) FindByID(_ context.Context, id string) (*domain.Asset, error) {
	defer r.store.lock(r.inTx)()
	a, ok := r.store.assets[id]
	if !ok {
		return nil, domain.NewNotFound("asset not found")
	}
	return &a, nil
}

func (r *assetRepo) FindBySerial(_ context.Context, serialNumber string) (*domain.Asset, error) {
	defer r.store.lock(r.inTx)()
	for _, a := range r.store.assets {
		if a.SerialNumber == serialNumber {
			asset := a
			return &asset, nil
		}
	}
	return nil, domain.NewNotFound("asset not found with serial number " + serialNumber)
}

func (r *assetRepo) FindByName(_ context.Context, name string) ([]*domain.Asset, error) {
	defer r.store.lock(r.inTx)()
	var out []*domain.Asset
	for _, a := range r.store.assets {
		if strings.Contains(strings.ToLower(a.Name), strings.ToLower(name)) {
			asset := a
			out = append(out, &asset)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SerialNumber < out[j].SerialNumber })
	return out, nil
}

func (r *assetRepo) FindAvailableByCategory(_ context.Context, category string) (*domain.Asset, error) {
	defer r.store.lock(r.inTx)()
	var candidates []domain.Asset
	for _, a := range r.store.assets {
		if a.Category == category && a.Status == domain.AssetStatusAvailable {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil, domain.NewNotFound("no available asset in category " + category)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].SerialNumber < candidates[j].SerialNumber })
	return &candidates[0], nil
}

func (r *assetRepo) Update(_ context.Context, asset *domain.Asset) error {
	defer r.store.lock(r.inTx)()
	stored, ok := r.store.assets[asset.ID]
	if !ok {
		return domain.NewNotFound("asset not found")
	}
	// status and holder only change through their dedicated methods
	next := *asset
	next.Status = stored.Status
	next.HolderID = stored.HolderID
	r.store.assets[asset.ID] = next
	return nil
}

func (r *assetRepo) CompareAndSetStatus(_ context.Context, id string, from, to domain.AssetStatus) error {
	defer r.store.lock(r.inTx)()
	stored, ok := r.store.assets[id]
	if !ok {
		return domain.NewNotFound("asset not found")
	}
	if stored.Status != from {
		return domain.NewConflict("asset " + stored.SerialNumber + " is no longer " + string(from))
	}
	stored.Status = to
	r.store.assets[id] = stored
	return nil
}

func (r *assetRepo) SetHolder(_ context.Context, id string, holderID *string) error {
	defer r.store.lock(r.inTx)()
	stored, ok := r.store.assets[id]
	if !ok {
		return domain.NewNotFound("asset not found")
	}
	stored.HolderID = holderID
	r.store.assets[id] = stored
	return nil
}

func (r *assetRepo) Delete(_ context.Context, id string) error {
	defer r.store.lock(r.inTx)()
	if _, ok := r.store.assets[id]; !ok {
		return domain.NewNotFound("asset not found")
	}
	delete(r.store.assets, id)
	return nil
}

func (r *assetRepo) List(_ context.Context, filter domain.AssetFilter) ([]*domain.Asset, error) {
	defer r.store.lock(r.inTx)()
	var out []*domain.Asset
	for _, a := range r.store.assets {
		if filter.Category != nil && a.Category != *filter.Category {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		asset := a
		out = append(out, &asset)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SerialNumber < out[j].SerialNumber })
	out = paginate(out, filter.Limit, filter.Offset)
	return out, nil
}

func (r *assetRepo) CountByStatus(_ context.Context) (*domain.AssetStats, error) {
	defer r.store.lock(r.inTx)()
	stats := &domain.AssetStats{}
	for _, a := range r.store.assets {
		stats.Total++
		switch a.Status {
		case domain.AssetStatusAvailable:
			stats.Available++
		case domain.AssetStatusAssigned:
			stats.Assigned++
		case domain.AssetStatusUnderMaintenance:
			stats.Maintenance++
		case domain.AssetStatusRetired:
			stats.Retired++
		}
	}
	return stats, nil
}

type assignmentRepo struct {
	store *Store
	inTx  bool
}

func (r *assignmentRepo) Create(_ context.Context, assignment *domain.Assignment) error {
	defer r.store.lock(r.inTx)()
	r.store.assignments[assignment.ID] = *assignment
	return nil
}

func (r *assignmentRepo) FindByID(_ context.Context, id string) (*domain.Assignment, error) {
	defer r.store.lock(r.inTx)()
	a, ok := r.store.assignments[id]
	if !ok {
		return nil, domain.NewNotFound("assignment not found")
	}
	return &a, nil
}

func (r *assignmentRepo) FindOpenByAsset(_ context.Context, assetID string) (*domain.Assignment, error) {
	defer r.store.lock(r.inTx)()
	for _, a := range r.store.assignments {
		if a.AssetID == assetID && a.Status == domain.AssignmentStatusAssigned {
			assignment := a
			return &assignment, nil
		}
	}
	return nil, domain.NewNotFound("no open assignment found for asset")
}

func (r *assignmentRepo) Update(_ context.Context, assignment *domain.Assignment) error {
	defer r.store.lock(r.inTx)()
	if _, ok := r.store.assignments[assignment.ID]; !ok {
		return domain.NewNotFound("assignment not found")
	}
	r.store.assignments[assignment.ID] = *assignment
	return nil
}

func (r *assignmentRepo) List(_ context.Context, filter domain.AssignmentFilter) ([]*domain.Assignment, error) {
	defer r.store.lock(r.inTx)()
	var out []*domain.Assignment
	for _, a := range r.store.assignments {
		if a.Status == domain.AssignmentStatusDeleted && !filter.IncludeDeleted {
			continue
		}
		if filter.AssetID != nil && a.AssetID != *filter.AssetID {
			continue
		}
		if filter.HolderID != nil && a.HolderID != *filter.HolderID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		assignment := a
		out = append(out, &assignment)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignedAt.After(out[j].AssignedAt) })
	out = paginate(out, filter.Limit, filter.Offset)
	return out, nil
}

type holderRepo struct {
	store *Store
	inTx  bool
}

func (r *holderRepo) Create(_ context.Context, holder *domain.Holder) error {
	defer r.store.lock(r.inTx)()
	for _, h := range r.store.holders {
		if h.Email == holder.Email {
			return domain.NewConflict("holder with email " + holder.Email + " already exists")
		}
	}
	stored := *holder
	stored.Index = append([]domain.IndexEntry(nil), holder.Index...)
	r.store.holders[holder.ID] = stored
	return nil
}

func (r *holderRepo) FindByID(_ context.Context, id string) (*domain.Holder, error) {
	defer r.store.lock(r.inTx)()
	h, ok := r.store.holders[id]
	if !ok {
		return nil, domain.NewNotFound("holder not found")
	}
	h.Index = append([]domain.IndexEntry(nil), h.Index...)
	return &h, nil
}

func (r *holderRepo) FindByEmail(_ context.Context, email string) (*domain.Holder, error) {
	defer r.store.lock(r.inTx)()
	for _, h := range r.store.holders {
		if h.Email == email {
			holder := h
			holder.Index = append([]domain.IndexEntry(nil), h.Index...)
			return &holder, nil
		}
	}
	return nil, domain.NewNotFound("holder not found with email " + email)
}

func (r *holderRepo) FindByName(_ context.Context, name string) ([]*domain.Holder, error) {
	defer r.store.lock(r.inTx)()
	var out []*domain.Holder
	for _, h := range r.store.holders {
		if strings.Contains(strings.ToLower(h.Name), strings.ToLower(name)) {
			holder := h
			out = append(out, &holder)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *holderRepo) AppendIndexEntry(_ context.Context, holderID string, entry domain.IndexEntry) error {
	defer r.store.lock(r.inTx)()
	h, ok := r.store.holders[holderID]
	if !ok {
		return domain.NewNotFound("holder not found")
	}
	h.Index = append(append([]domain.IndexEntry(nil), h.Index...), entry)
	r.store.holders[holderID] = h
	return nil
}

func (r *holderRepo) MarkIndexReturned(_ context.Context, holderID, assignmentID string) error {
	defer r.store.lock(r.inTx)()
	h, ok := r.store.holders[holderID]
	if !ok {
		return domain.NewNotFound("holder not found")
	}
	index := append([]domain.IndexEntry(nil), h.Index...)
	for i, e := range index {
		if e.AssignmentID == assignmentID {
			index[i].Returned = true
			h.Index = index
			r.store.holders[holderID] = h
			return nil
		}
	}
	return domain.NewNotFound("assignment not found in holder's index")
}

func (r *holderRepo) OpenIndexEntries(_ context.Context, holderID string) ([]domain.IndexEntry, error) {
	defer r.store.lock(r.inTx)()
	h, ok := r.store.holders[holderID]
	if !ok {
		return nil, domain.NewNotFound("holder not found")
	}
	var open []domain.IndexEntry
	for _, e := range h.Index {
		if !e.Returned {
			open = append(open, e)
		}
	}
	return open, nil
}

type repairLogRepo struct {
	store *Store
	inTx  bool
}

func (r *repairLogRepo) Create(_ context.Context, record *domain.RepairRecord) error {
	defer r.store.lock(r.inTx)()
	r.store.repairLogs = append(r.store.repairLogs, *record)
	return nil
}

func (r *repairLogRepo) FindLatestOpen(_ context.Context, assetID string) (*domain.RepairRecord, error) {
	defer r.store.lock(r.inTx)()
	for i := len(r.store.repairLogs) - 1; i >= 0; i-- {
		record := r.store.repairLogs[i]
		if record.AssetID != assetID {
			continue
		}
		if record.Status == domain.RepairStatusUnderRepair {
			return &record, nil
		}
		break
	}
	return nil, domain.NewNotFound("no open repair record for asset")
}

func (r *repairLogRepo) List(_ context.Context, assetID *string) ([]*domain.RepairRecord, error) {
	defer r.store.lock(r.inTx)()
	var out []*domain.RepairRecord
	for i := len(r.store.repairLogs) - 1; i >= 0; i-- {
		record := r.store.repairLogs[i]
		if assetID != nil && record.AssetID != *assetID {
			continue
		}
		out = append(out, &record)
	}
	return out, nil
}

type auditRepo struct {
	store *Store
	inTx  bool
}

func (r *auditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	defer r.store.lock(r.inTx)()
	r.store.audits = append(r.store.audits, *entry)
	return nil
}

func (r *auditRepo) List(_ context.Context, limit, offset int) ([]*domain.AuditEntry, error) {
	defer r.store.lock(r.inTx)()
	var out []*domain.AuditEntry
	for i := len(r.store.audits) - 1; i >= 0; i-- {
		entry := r.store.audits[i]
		out = append(out, &entry)
	}
	return paginate(out, limit, offset), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
