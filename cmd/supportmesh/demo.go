package main

import (
	"time"

	"github.com/hupe1980/supportmesh/commerce"
	"github.com/hupe1980/supportmesh/model"
)

// demoBackend returns the in-memory commerce backend seeded with a few orders
// and a subscription, so the offline REPL has something to act on.
func demoBackend() *commerce.Backend {
	b := commerce.NewBackend()
	b.SeedOrder(commerce.Order{
		ID:       "43189",
		Email:    "demo@example.com",
		Status:   commerce.StatusShipped,
		Carrier:  "DHL",
		Tracking: "JD014600003828331270",
	})
	b.SeedOrder(commerce.Order{
		ID:          "51022",
		Email:       "demo@example.com",
		Status:      commerce.StatusDelivered,
		TotalCents:  4999,
		DeliveredAt: time.Now().Add(-5 * 24 * time.Hour),
	})
	b.SeedOrder(commerce.Order{
		ID:         "60750",
		Email:      "demo@example.com",
		Status:     commerce.StatusProcessing,
		TotalCents: 12900,
	})
	b.SeedSubscription(commerce.Subscription{
		Email:  "demo@example.com",
		Plan:   "monthly-box",
		Status: "active",
	})
	return b
}

func seededMock() *model.Mock {
	return model.NewMock()
}
