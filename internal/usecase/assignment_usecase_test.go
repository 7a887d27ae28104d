package usecase

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koshhq/kosh/internal/adapter/memory"
	"github.com/koshhq/kosh/internal/domain"
)

type testEnv struct {
	store       *memory.Store
	audit       *AuditTrail
	registry    *AssetRegistry
	engine      *AssignmentEngine
	maintenance *MaintenanceEngine
	onboarding  *OnboardingService
	resolver    *Resolver
}

func newTestEnv() *testEnv {
	store := memory.NewStore()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	audit := NewAuditTrail(store, logger)
	engine := NewAssignmentEngine(store, audit, nil, logger)
	return &testEnv{
		store:       store,
		audit:       audit,
		registry:    NewAssetRegistry(store, audit, logger),
		engine:      engine,
		maintenance: NewMaintenanceEngine(store, audit, nil, logger),
		onboarding:  NewOnboardingService(store, engine, logger),
		resolver:    NewResolver(store),
	}
}

func (env *testEnv) createAsset(t *testing.T, serial, name, category string) *domain.Asset {
	t.Helper()
	asset, err := env.registry.Create(context.Background(), CreateAssetRequest{
		Name:         name,
		Category:     category,
		SerialNumber: serial,
		Cost:         1000,
	}, "admin-1")
	require.NoError(t, err)
	return asset
}

func (env *testEnv) createHolder(t *testing.T, name, email string) *domain.Holder {
	t.Helper()
	holder := domain.NewHolder(name, email, "hash")
	require.NoError(t, env.store.Repos().Holders.Create(context.Background(), holder))
	return holder
}

func TestAssign(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")
	alice := env.createHolder(t, "Alice", "alice@example.com")

	assignment, err := env.engine.Assign(ctx, "DL-1025", "alice@example.com", "admin-1")
	require.NoError(t, err)

	assert.Equal(t, domain.AssignmentStatusAssigned, assignment.Status)
	assert.Equal(t, alice.ID, assignment.HolderID)
	assert.Equal(t, "Asset is assigned.", assignment.Remarks)
	assert.Equal(t, assignment.AssignedAt.Add(domain.LoanPeriod), assignment.ExpectedReturnAt)

	asset, err := env.registry.Get(ctx, "DL-1025")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusAssigned, asset.Status)
	require.NotNil(t, asset.HolderID)
	assert.Equal(t, alice.ID, *asset.HolderID)

	entries, err := env.store.Repos().Holders.OpenIndexEntries(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, assignment.ID, entries[0].AssignmentID)
	assert.False(t, entries[0].Returned)
}

func TestAssign_NotAvailable(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")
	env.createHolder(t, "Alice", "alice@example.com")
	env.createHolder(t, "Bob", "bob@example.com")

	_, err := env.engine.Assign(ctx, "DL-1025", "alice@example.com", "admin-1")
	require.NoError(t, err)

	_, err = env.engine.Assign(ctx, "DL-1025", "bob@example.com", "admin-1")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
	assert.Contains(t, err.Error(), "not available")
}

func TestAssign_CategoryExclusivity(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")
	env.createAsset(t, "DL-2000", "Dell XPS", "Laptop")
	env.createAsset(t, "MON-3000", "Dell Monitor", "Monitor")
	env.createHolder(t, "Alice", "alice@example.com")

	_, err := env.engine.Assign(ctx, "DL-1025", "alice@example.com", "admin-1")
	require.NoError(t, err)

	_, err = env.engine.Assign(ctx, "DL-2000", "alice@example.com", "admin-1")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
	assert.Contains(t, err.Error(), "Laptop")

	_, err = env.engine.Assign(ctx, "MON-3000", "alice@example.com", "admin-1")
	require.NoError(t, err)
}

func TestAssign_ExclusivityFreedAfterReturn(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")
	env.createAsset(t, "DL-2000", "Dell XPS", "Laptop")
	env.createHolder(t, "Alice", "alice@example.com")

	_, err := env.engine.Assign(ctx, "DL-1025", "alice@example.com", "admin-1")
	require.NoError(t, err)
	_, err = env.engine.Return(ctx, "DL-1025", "", "admin-1")
	require.NoError(t, err)

	_, err = env.engine.Assign(ctx, "DL-2000", "alice@example.com", "admin-1")
	require.NoError(t, err)
}

func TestAssign_UnknownAsset(t *testing.T) {
	env := newTestEnv()
	env.createHolder(t, "Alice", "alice@example.com")

	_, err := env.engine.Assign(context.Background(), "NOPE-1", "alice@example.com", "admin-1")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestAssign_UnverifiedHolder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")
	holder := domain.NewHolder("Eve", "eve@example.com", "hash")
	holder.Verified = false
	require.NoError(t, env.store.Repos().Holders.Create(ctx, holder))

	_, err := env.engine.Assign(ctx, "DL-1025", "eve@example.com", "admin-1")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	// failed assign must leave the asset untouched
	asset, err := env.registry.Get(ctx, "DL-1025")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusAvailable, asset.Status)
}

func TestReturn_RoundTrip(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")
	alice := env.createHolder(t, "Alice", "alice@example.com")

	assigned, err := env.engine.Assign(ctx, "DL-1025", "alice@example.com", "admin-1")
	require.NoError(t, err)

	returned, err := env.engine.Return(ctx, "DL-1025", "back in good shape", "admin-1")
	require.NoError(t, err)

	assert.Equal(t, assigned.ID, returned.ID)
	assert.Equal(t, domain.AssignmentStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnedAt)
	assert.Equal(t, "back in good shape", returned.Remarks)

	asset, err := env.registry.Get(ctx, "DL-1025")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusAvailable, asset.Status)
	assert.Nil(t, asset.HolderID)

	entries, err := env.store.Repos().Holders.OpenIndexEntries(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReturn_NotAssigned(t *testing.T) {
	env := newTestEnv()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")

	_, err := env.engine.Return(context.Background(), "DL-1025", "", "admin-1")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestList_ExcludesDeleted(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")
	alice := env.createHolder(t, "Alice", "alice@example.com")

	_, err := env.engine.Assign(ctx, "DL-1025", "alice@example.com", "admin-1")
	require.NoError(t, err)
	require.NoError(t, env.registry.Delete(ctx, "DL-1025", "admin-1"))

	visible, err := env.engine.List(ctx, domain.AssignmentFilter{HolderID: &alice.ID})
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := env.engine.List(ctx, domain.AssignmentFilter{HolderID: &alice.ID, IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.AssignmentStatusDeleted, all[0].Status)
}
