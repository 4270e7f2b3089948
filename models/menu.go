package models

// MenuItem is one row of the menu_items table. Price is in the smallest
// currency unit.
type MenuItem struct {
	ID        int64
	Name      string
	Price     int64
	Available bool
}

// MenuItemSize is a selectable serving size for a menu item. PriceDiff is
// added to the item's base price.
type MenuItemSize struct {
	ID         int64
	MenuItemID int64
	Size       string // "S", "M", "L"
	SizeName   string
	PriceDiff  int64
	Available  bool
}

// Modifier is an optional add-on (syrup, alternative milk, extra shot).
type Modifier struct {
	ID          int64
	Name        string
	Category    string // "syrup", "milk", "extra"
	Price       int64
	IsAvailable bool
	SortOrder   int
}

const (
	ModifierCategorySyrup = "syrup"
	ModifierCategoryMilk  = "milk"
	ModifierCategoryExtra = "extra"
)
