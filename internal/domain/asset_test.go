package domain

import (
	"testing"
)

func TestNewAsset(t *testing.T) {
	asset, err := NewAsset("DL-1025", "Dell Latitude", "Laptop", "dev laptop", 1200, "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if asset.SerialNumber != "DL-1025" {
		t.Errorf("Expected serial DL-1025, got %s", asset.SerialNumber)
	}

	if asset.Status != AssetStatusAvailable {
		t.Errorf("Expected status %s, got %s", AssetStatusAvailable, asset.Status)
	}

	if asset.HolderID != nil {
		t.Errorf("Expected HolderID to be nil, got %v", asset.HolderID)
	}

	if asset.ID == "" {
		t.Error("Expected generated ID")
	}
}

func TestNewAsset_MissingFields(t *testing.T) {
	_, err := NewAsset("", "Dell Latitude", "Laptop", "", 1200, "")
	if err == nil {
		t.Fatal("Expected error for missing serial number")
	}

	if !IsKind(err, KindValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestNewAsset_NegativeCost(t *testing.T) {
	_, err := NewAsset("DL-1025", "Dell Latitude", "Laptop", "", -5, "")
	if err == nil {
		t.Fatal("Expected error for negative cost")
	}

	if !IsKind(err, KindValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestNewAsset_InvalidStatus(t *testing.T) {
	_, err := NewAsset("DL-1025", "Dell Latitude", "Laptop", "", 0, "Broken")
	if err == nil {
		t.Fatal("Expected error for invalid status")
	}

	if !IsKind(err, KindValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestNewAsset_ExplicitStatus(t *testing.T) {
	asset, err := NewAsset("DL-1025", "Dell Latitude", "Laptop", "", 0, AssetStatusRetired)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if asset.Status != AssetStatusRetired {
		t.Errorf("Expected status %s, got %s", AssetStatusRetired, asset.Status)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    AssetStatus
		to      AssetStatus
		allowed bool
	}{
		{AssetStatusAvailable, AssetStatusAssigned, true},
		{AssetStatusAvailable, AssetStatusUnderMaintenance, true},
		{AssetStatusAvailable, AssetStatusRetired, true},
		{AssetStatusAssigned, AssetStatusAvailable, true},
		{AssetStatusAssigned, AssetStatusUnderMaintenance, true},
		{AssetStatusAssigned, AssetStatusRetired, true},
		{AssetStatusUnderMaintenance, AssetStatusAvailable, true},
		{AssetStatusUnderMaintenance, AssetStatusAssigned, true},
		{AssetStatusUnderMaintenance, AssetStatusRetired, true},
		{AssetStatusUnderMaintenance, AssetStatusUnderMaintenance, false},
		{AssetStatusRetired, AssetStatusAvailable, false},
		{AssetStatusRetired, AssetStatusAssigned, false},
		{AssetStatusRetired, AssetStatusUnderMaintenance, false},
	}

	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.allowed {
			t.Errorf("CanTransition(%s, %s) = %v, expected %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestAsset_Transition_RetiredIsTerminal(t *testing.T) {
	asset, _ := NewAsset("DL-1025", "Dell Latitude", "Laptop", "", 0, "")
	asset.Status = AssetStatusRetired

	err := asset.Transition(AssetStatusAvailable)
	if err == nil {
		t.Fatal("Expected error transitioning out of Retired")
	}

	if !IsKind(err, KindConflict) {
		t.Errorf("Expected conflict error, got %v", err)
	}

	if asset.Status != AssetStatusRetired {
		t.Errorf("Expected status to stay %s, got %s", AssetStatusRetired, asset.Status)
	}
}

func TestAsset_Transition(t *testing.T) {
	asset, _ := NewAsset("DL-1025", "Dell Latitude", "Laptop", "", 0, "")

	if err := asset.Transition(AssetStatusAssigned); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if asset.Status != AssetStatusAssigned {
		t.Errorf("Expected status %s, got %s", AssetStatusAssigned, asset.Status)
	}
}
