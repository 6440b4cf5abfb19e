package orders

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
	TopicStockAdjusted      = "inventory.stock_adjusted"
	TopicLowStock           = "inventory.low_stock"
)

// Partition key = order_id so every event of one order stays in order.
func PartitionKey(id string) []byte { return []byte(id) }
