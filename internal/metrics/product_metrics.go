package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductsCreated counts products persisted through the catalog service.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "The total number of products created",
	})

	// ProductsUpdated counts successful product updates.
	ProductsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_updated_total",
		Help: "The total number of products updated",
	})

	// ProductsDeleted counts products removed from the catalog.
	ProductsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_deleted_total",
		Help: "The total number of products deleted",
	})

	// ProductMessagesConsumed counts product change messages handled by the notification service.
	ProductMessagesConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_messages_consumed_total",
		Help: "The total number of product change messages consumed, by action",
	}, []string{"action"})
)
