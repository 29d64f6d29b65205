package domain

// InventorySettings controls how add-to-cart treats stock levels.
type InventorySettings struct {
	TrackInventory  bool
	AllowBackorders bool
}
