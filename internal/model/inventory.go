package model

type InventoryItem struct {
	InventoryID  int64  `json:"inventory_id"`
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name,omitempty"`
	StockLevel   int    `json:"stock_level"`
	ReorderLevel int    `json:"reorder_level"`
	SupplierID   int64  `json:"supplier_id,omitempty"`
}

func (i InventoryItem) IsLowStock() bool {
	return i.StockLevel <= i.ReorderLevel
}

type InventoryUpdate struct {
	StockLevel   int `json:"stock_level"`
	ReorderLevel int `json:"reorder_level"`
}
