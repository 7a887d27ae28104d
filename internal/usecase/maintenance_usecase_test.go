package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koshhq/kosh/internal/domain"
)

func TestSendForRepair_WhileAssigned(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")
	env.createHolder(t, "Alice", "alice@example.com")

	_, err := env.engine.Assign(ctx, "DL-1025", "alice@example.com", "admin-1")
	require.NoError(t, err)

	require.NoError(t, env.maintenance.SendForRepair(ctx, "DL-1025", "screen cracked", "admin-1"))

	asset, err := env.registry.Get(ctx, "DL-1025")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusUnderMaintenance, asset.Status)
	assert.NotNil(t, asset.HolderID)

	history, err := env.maintenance.History(ctx, strPtr("DL-1025"))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.RepairStatusUnderRepair, history[0].Status)
	assert.Equal(t, "screen cracked", history[0].Remarks)
	assert.Equal(t, domain.AssetStatusAssigned, history[0].PriorStatus)
}

func TestSendForRepair_Twice(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")

	require.NoError(t, env.maintenance.SendForRepair(ctx, "DL-1025", "", "admin-1"))

	err := env.maintenance.SendForRepair(ctx, "DL-1025", "", "admin-1")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestMarkRepaired_RestoresAssigned(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")
	alice := env.createHolder(t, "Alice", "alice@example.com")

	_, err := env.engine.Assign(ctx, "DL-1025", "alice@example.com", "admin-1")
	require.NoError(t, err)
	require.NoError(t, env.maintenance.SendForRepair(ctx, "DL-1025", "screen cracked", "admin-1"))
	require.NoError(t, env.maintenance.MarkRepaired(ctx, "DL-1025", "fixed", "admin-1"))

	asset, err := env.registry.Get(ctx, "DL-1025")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusAssigned, asset.Status)
	require.NotNil(t, asset.HolderID)
	assert.Equal(t, alice.ID, *asset.HolderID)

	history, err := env.maintenance.History(ctx, strPtr("DL-1025"))
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.RepairStatusRepaired, history[0].Status)
}

func TestMarkRepaired_RestoresAvailable(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")

	require.NoError(t, env.maintenance.SendForRepair(ctx, "DL-1025", "", "admin-1"))
	require.NoError(t, env.maintenance.MarkRepaired(ctx, "DL-1025", "", "admin-1"))

	asset, err := env.registry.Get(ctx, "DL-1025")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusAvailable, asset.Status)
}

func TestMarkRepaired_NotUnderMaintenance(t *testing.T) {
	env := newTestEnv()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")

	err := env.maintenance.MarkRepaired(context.Background(), "DL-1025", "", "admin-1")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestRetire_WhileAssigned(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")
	alice := env.createHolder(t, "Alice", "alice@example.com")

	_, err := env.engine.Assign(ctx, "DL-1025", "alice@example.com", "admin-1")
	require.NoError(t, err)

	require.NoError(t, env.maintenance.Retire(ctx, "DL-1025", "end of life", "admin-1"))

	asset, err := env.registry.Get(ctx, "DL-1025")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusRetired, asset.Status)
	assert.Nil(t, asset.HolderID)

	assignments, err := env.engine.List(ctx, domain.AssignmentFilter{HolderID: &alice.ID})
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, domain.AssignmentStatusReturned, assignments[0].Status)
	require.NotNil(t, assignments[0].ReturnedAt)
	assert.Contains(t, assignments[0].Remarks, "[Retired] end of life")

	entries, err := env.store.Repos().Holders.OpenIndexEntries(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	history, err := env.maintenance.History(ctx, strPtr("DL-1025"))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.RepairStatusDecommissioned, history[0].Status)
}

func TestRetire_IsTerminal(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")
	env.createHolder(t, "Alice", "alice@example.com")

	require.NoError(t, env.maintenance.Retire(ctx, "DL-1025", "", "admin-1"))

	_, err := env.engine.Assign(ctx, "DL-1025", "alice@example.com", "admin-1")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))

	err = env.maintenance.SendForRepair(ctx, "DL-1025", "", "admin-1")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))

	err = env.maintenance.Retire(ctx, "DL-1025", "", "admin-1")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestRetire_FromMaintenance(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")

	require.NoError(t, env.maintenance.SendForRepair(ctx, "DL-1025", "", "admin-1"))
	require.NoError(t, env.maintenance.Retire(ctx, "DL-1025", "beyond repair", "admin-1"))

	asset, err := env.registry.Get(ctx, "DL-1025")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusRetired, asset.Status)
}

func TestHistory_AllAssets(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createAsset(t, "DL-1025", "Dell Latitude", "Laptop")
	env.createAsset(t, "MON-3000", "Dell Monitor", "Monitor")

	require.NoError(t, env.maintenance.SendForRepair(ctx, "DL-1025", "", "admin-1"))
	require.NoError(t, env.maintenance.SendForRepair(ctx, "MON-3000", "", "admin-1"))

	history, err := env.maintenance.History(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func strPtr(s string) *string { return &s }
