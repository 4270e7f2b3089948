package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"coffee-loyalty/models"
)

func TestAddMenuItemValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := AddMenuItem(ctx, "", 100); err == nil {
		t.Error("empty name should be rejected")
	}
	if _, err := AddMenuItem(ctx, "Latte", -1); err == nil {
		t.Error("negative price should be rejected")
	}
}

func TestAddModifierValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := AddModifier(ctx, "", models.ModifierCategorySyrup, 50, 0); err == nil {
		t.Error("empty name should be rejected")
	}
	if _, err := AddModifier(ctx, "Vanilla", "", 50, 0); err == nil {
		t.Error("empty category should be rejected")
	}
}

func TestListSizesForItem(t *testing.T) {
	skipWithoutDB(t)
	ctx := context.Background()
	suffix := time.Now().UnixNano()

	itemID, err := AddMenuItem(ctx, fmt.Sprintf("Test Flat White %d", suffix), 250)
	if err != nil {
		t.Fatalf("AddMenuItem: %v", err)
	}

	// inserted out of price order on purpose
	for _, s := range []struct {
		size string
		name string
		diff int64
	}{
		{"L", "Large 450ml", 80},
		{"S", "Small 250ml", 0},
		{"M", "Medium 350ml", 40},
	} {
		if err := AddMenuItemSize(ctx, itemID, s.size, s.name, s.diff); err != nil {
			t.Fatalf("AddMenuItemSize(%s): %v", s.size, err)
		}
	}

	sizes, err := ListSizesForItem(ctx, itemID)
	if err != nil {
		t.Fatalf("ListSizesForItem: %v", err)
	}
	if len(sizes) != 3 {
		t.Fatalf("sizes = %d, want 3", len(sizes))
	}
	for i, want := range []string{"S", "M", "L"} {
		if sizes[i].Size != want {
			t.Errorf("sizes[%d] = %s, want %s (ascending price_diff)", i, sizes[i].Size, want)
		}
	}

	// re-adding a size re-prices instead of duplicating
	if err := AddMenuItemSize(ctx, itemID, "M", "Medium 350ml", 50); err != nil {
		t.Fatalf("re-add size: %v", err)
	}
	sizes, _ = ListSizesForItem(ctx, itemID)
	if len(sizes) != 3 {
		t.Errorf("sizes after re-add = %d, want 3", len(sizes))
	}
}

func TestListModifiersForItem(t *testing.T) {
	skipWithoutDB(t)
	ctx := context.Background()
	suffix := time.Now().UnixNano()

	itemID, err := AddMenuItem(ctx, fmt.Sprintf("Test Americano %d", suffix), 180)
	if err != nil {
		t.Fatalf("AddMenuItem: %v", err)
	}

	vanillaID, err := AddModifier(ctx, fmt.Sprintf("Vanilla %d", suffix), models.ModifierCategorySyrup, 50, 1)
	if err != nil {
		t.Fatalf("AddModifier: %v", err)
	}
	oatID, err := AddModifier(ctx, fmt.Sprintf("Oat %d", suffix), models.ModifierCategoryMilk, 70, 1)
	if err != nil {
		t.Fatalf("AddModifier: %v", err)
	}

	if err := AttachModifier(ctx, itemID, vanillaID); err != nil {
		t.Fatalf("AttachModifier: %v", err)
	}
	// attaching an already-attached pair is a no-op
	if err := AttachModifier(ctx, itemID, vanillaID); err != nil {
		t.Fatalf("re-AttachModifier: %v", err)
	}
	if err := AttachModifier(ctx, itemID, oatID); err != nil {
		t.Fatalf("AttachModifier: %v", err)
	}

	mods, err := ListModifiersForItem(ctx, itemID)
	if err != nil {
		t.Fatalf("ListModifiersForItem: %v", err)
	}
	if len(mods) != 2 {
		t.Fatalf("modifiers = %d, want 2", len(mods))
	}

	byID, err := ModifiersByIDs(ctx, []int64{vanillaID, oatID})
	if err != nil {
		t.Fatalf("ModifiersByIDs: %v", err)
	}
	if len(byID) != 2 {
		t.Errorf("ModifiersByIDs = %d rows, want 2", len(byID))
	}
	if empty, err := ModifiersByIDs(ctx, nil); err != nil || len(empty) != 0 {
		t.Errorf("ModifiersByIDs(nil) = %v, %v; want empty, nil", empty, err)
	}

	// unavailable modifiers never show up
	if err := SetModifierAvailability(ctx, vanillaID, false); err != nil {
		t.Fatalf("SetModifierAvailability: %v", err)
	}
	mods, err = ListModifiersForItem(ctx, itemID)
	if err != nil {
		t.Fatalf("ListModifiersForItem: %v", err)
	}
	for _, m := range mods {
		if !m.IsAvailable {
			t.Errorf("unavailable modifier %q returned", m.Name)
		}
		if m.ID == vanillaID {
			t.Error("hidden modifier still listed")
		}
	}

	if err := DetachModifier(ctx, itemID, oatID); err != nil {
		t.Fatalf("DetachModifier: %v", err)
	}
	// detaching an absent pair is a no-op
	if err := DetachModifier(ctx, itemID, oatID); err != nil {
		t.Fatalf("re-DetachModifier: %v", err)
	}
}

func TestAttachModifierUnknownTarget(t *testing.T) {
	skipWithoutDB(t)
	ctx := context.Background()

	err := AttachModifier(ctx, -1, -1)
	if !errors.Is(err, ErrReferentialViolation) {
		t.Errorf("AttachModifier to unknown rows = %v, want ErrReferentialViolation", err)
	}
}

func TestGetMenuItemNotFound(t *testing.T) {
	skipWithoutDB(t)
	ctx := context.Background()

	if _, err := GetMenuItem(ctx, -1); !errors.Is(err, ErrMenuItemNotFound) {
		t.Errorf("GetMenuItem(-1) = %v, want ErrMenuItemNotFound", err)
	}
}
