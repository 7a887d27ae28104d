package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koshhq/kosh/internal/domain"
)

func TestCreateAsset(t *testing.T) {
	env := newTestEnv()

	asset, err := env.registry.Create(context.Background(), CreateAssetRequest{
		Name:         "Dell Latitude",
		Category:     "Laptop",
		SerialNumber: "DL-1025",
		Cost:         1200,
	}, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, domain.AssetStatusAvailable, asset.Status)
	assert.Equal(t, "DL-1025", asset.SerialNumber)

	logs, err := env.audit.List(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Asset Created", logs[0].Action)
	assert.Equal(t, domain.TargetKindAsset, logs[0].Target.Kind)
	assert.Equal(t, asset.ID, logs[0].Target.ID)
}

func TestCreateAsset_DuplicateSerial(t *testing.T) {
	env := newTestEnv()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")

	_, err := env.registry.Create(context.Background(), CreateAssetRequest{
		Name:         "Another Laptop",
		Category:     "Laptop",
		SerialNumber: "DL-1025",
	}, "admin-1")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestCreateAsset_Validation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.registry.Create(ctx, CreateAssetRequest{Category: "Laptop", SerialNumber: "DL-1"}, "admin-1")
	assert.True(t, domain.IsKind(err, domain.KindValidation), "missing name: %v", err)

	_, err = env.registry.Create(ctx, CreateAssetRequest{Name: "A", Category: "Laptop", SerialNumber: "DL-1", Cost: -1}, "admin-1")
	assert.True(t, domain.IsKind(err, domain.KindValidation), "negative cost: %v", err)

	_, err = env.registry.Create(ctx, CreateAssetRequest{Name: "A", Category: "Laptop", SerialNumber: "DL-1", Status: "Broken"}, "admin-1")
	assert.True(t, domain.IsKind(err, domain.KindValidation), "bad status: %v", err)
}

func TestUpdateAsset(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")

	name := "Dell Latitude 7420"
	cost := 1350.0
	asset, err := env.registry.Update(ctx, "DL-1025", UpdateAssetRequest{Name: &name, Cost: &cost}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "Dell Latitude 7420", asset.Name)
	assert.Equal(t, 1350.0, asset.Cost)
	assert.Equal(t, "Laptop", asset.Category)
}

func TestUpdateAsset_SerialRenameRejected(t *testing.T) {
	env := newTestEnv()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")

	serial := "DL-9999"
	_, err := env.registry.Update(context.Background(), "DL-1025", UpdateAssetRequest{SerialNumber: &serial}, "admin-1")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestUpdateAsset_NotFound(t *testing.T) {
	env := newTestEnv()

	name := "X"
	_, err := env.registry.Update(context.Background(), "NOPE-1", UpdateAssetRequest{Name: &name}, "admin-1")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestDeleteAsset_ClosesOpenAssignment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")
	alice := env.createHolder(t, "Alice", "alice@example.com")

	_, err := env.engine.Assign(ctx, "DL-1025", "alice@example.com", "admin-1")
	require.NoError(t, err)

	require.NoError(t, env.registry.Delete(ctx, "DL-1025", "admin-1"))

	_, err = env.registry.Get(ctx, "DL-1025")
	assert.True(t, domain.IsNotFound(err))

	assignments, err := env.engine.List(ctx, domain.AssignmentFilter{HolderID: &alice.ID, IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, domain.AssignmentStatusDeleted, assignments[0].Status)
	require.NotNil(t, assignments[0].ReturnedAt)
	assert.Contains(t, assignments[0].Remarks, "[Deleted]")

	entries, err := env.store.Repos().Holders.OpenIndexEntries(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteAsset_KeepsReturnedHistory(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")
	alice := env.createHolder(t, "Alice", "alice@example.com")

	_, err := env.engine.Assign(ctx, "DL-1025", "alice@example.com", "admin-1")
	require.NoError(t, err)
	_, err = env.engine.Return(ctx, "DL-1025", "", "admin-1")
	require.NoError(t, err)

	require.NoError(t, env.registry.Delete(ctx, "DL-1025", "admin-1"))

	// a normally returned assignment keeps its Returned status
	assignments, err := env.engine.List(ctx, domain.AssignmentFilter{HolderID: &alice.ID, IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, domain.AssignmentStatusReturned, assignments[0].Status)
}

func TestStats(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")
	env.createAsset(t, "DL-2000", "Dell XPS", "Laptop")
	env.createAsset(t, "MON-3000", "Dell Monitor", "Monitor")
	env.createHolder(t, "Alice", "alice@example.com")

	_, err := env.engine.Assign(ctx, "DL-1025", "alice@example.com", "admin-1")
	require.NoError(t, err)
	require.NoError(t, env.maintenance.SendForRepair(ctx, "MON-3000", "", "admin-1"))

	stats, err := env.registry.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Available)
	assert.Equal(t, 1, stats.Assigned)
	assert.Equal(t, 1, stats.Maintenance)
	assert.Equal(t, 0, stats.Retired)
}
