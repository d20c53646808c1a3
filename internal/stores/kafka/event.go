package kafka

import "time"

const (
	TopicAccountCreated = `user-service.account-created`
	TopicOrderPaid      = `order-service.order-paid`
)

// AccountCreatedEvent is published when a user registers.
type AccountCreatedEvent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderPaidEvent is published once per order line when payment is confirmed,
// so a downstream consumer can reconcile inventory.
type OrderPaidEvent struct {
	OrderId   string    `json:"order_id"`
	ProductId string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}
