package sqs

import (
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
)

// Product change actions carried by ProductMessage.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ProductMessage is the queue payload describing one product change.
type ProductMessage struct {
	EventID    string    `json:"event_id"`
	Action     string    `json:"action"`
	ProductID  int64     `json:"product_id"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
	Category   string    `json:"category"`
	Available  bool      `json:"available"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewProductMessage snapshots product for action under a fresh event ID.
func NewProductMessage(action string, product *model.Product) ProductMessage {
	return ProductMessage{
		EventID:    uuid.NewString(),
		Action:     action,
		ProductID:  product.ID,
		Name:       product.Name,
		Price:      product.Price.StringFixed(model.PriceScale),
		Category:   product.Category.String(),
		Available:  product.Available,
		OccurredAt: time.Now().UTC(),
	}
}
