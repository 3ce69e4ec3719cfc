package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tnqbao/gau-photo-share/entity"
	"github.com/tnqbao/gau-photo-share/infra"
	"github.com/tnqbao/gau-photo-share/repository"
)

var errInjected = errors.New("injected failure")

func discardLogger() *infra.LoggerClient {
	return infra.NewLoggerClientWithHandler(slog.NewTextHandler(io.Discard, nil))
}

type fakeDispatcher struct {
	jobs []entity.DerivationJob
	err  error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, job entity.DerivationJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type memJobStore struct {
	states map[uuid.UUID]entity.JobState
}

func newMemJobStore() *memJobStore {
	return &memJobStore{states: map[uuid.UUID]entity.JobState{}}
}

func (m *memJobStore) Save(_ context.Context, state entity.JobState) error {
	m.states[state.JobID] = state
	return nil
}

func (m *memJobStore) Get(_ context.Context, jobID uuid.UUID) (*entity.JobState, error) {
	state, ok := m.states[jobID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

type memLinkStore struct {
	links      map[string]*entity.ShortLink
	inserts    int
	failInsert int // 1-based insert call that fails, 0 never
	queryMiss  bool
	queryErr   error
	deleteErr  error
	deleted    []string
}

func newMemLinkStore() *memLinkStore {
	return &memLinkStore{links: map[string]*entity.ShortLink{}}
}

func (m *memLinkStore) Insert(_ context.Context, link *entity.ShortLink) error {
	m.inserts++
	if m.failInsert == m.inserts {
		return &entity.StoreError{Op: "insert", Kind: entity.ErrStoreTransport, Err: errInjected}
	}
	if _, exists := m.links[link.RowKey]; exists {
		return &entity.StoreError{Op: "insert", Kind: entity.ErrDuplicateKey, Err: errInjected}
	}
	m.links[link.RowKey] = link
	return nil
}

func (m *memLinkStore) Query(_ context.Context, filter repository.QueryFilter) (*entity.ShortLink, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if m.queryMiss {
		return nil, nil
	}
	return m.links[filter.Value], nil
}

func (m *memLinkStore) Delete(_ context.Context, partitionKey, _ string) entity.Outcome {
	if m.deleteErr != nil {
		return entity.Outcome{Target: partitionKey, Err: m.deleteErr}
	}
	delete(m.links, partitionKey)
	m.deleted = append(m.deleted, partitionKey)
	return entity.Outcome{Target: partitionKey}
}

type memAssetStore struct {
	assets map[uuid.UUID]*entity.Asset
}

func newMemAssetStore() *memAssetStore {
	return &memAssetStore{assets: map[uuid.UUID]*entity.Asset{}}
}

func (m *memAssetStore) Create(_ context.Context, asset *entity.Asset) error {
	copied := *asset
	copied.UpdatedAt = time.Now()
	m.assets[asset.ID] = &copied
	return nil
}

func (m *memAssetStore) UpdateShortIDs(_ context.Context, id uuid.UUID, shortIDs []string) error {
	m.assets[id].ShortIDs = append([]string(nil), shortIDs...)
	return nil
}

func (m *memAssetStore) UpdateStatus(_ context.Context, id uuid.UUID, status entity.AssetStatus) error {
	m.assets[id].Status = status
	m.assets[id].UpdatedAt = time.Now()
	return nil
}

func (m *memAssetStore) FindReapable(_ context.Context, staleBefore time.Time, limit int) ([]entity.Asset, error) {
	var out []entity.Asset
	for _, a := range m.assets {
		if (a.Status == entity.AssetStatusFailed || a.Status == entity.AssetStatusPending) && a.UpdatedAt.Before(staleBefore) {
			out = append(out, *a)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memAssetStore) only() *entity.Asset {
	for _, a := range m.assets {
		return a
	}
	return nil
}
