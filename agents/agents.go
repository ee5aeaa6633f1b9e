// Package agents declares the specialist workflows: one per supported intent,
// all built on the shared step-graph framework. The key set is the router's
// fixed classification enumeration.
package agents

import (
	"regexp"
	"strings"

	"github.com/hupe1980/supportmesh/workflow"
)

// Agent keys. These are both registry keys and classifier labels.
const (
	KeyWismo        = "wismo"
	KeyRefund       = "refund"
	KeyOrderChange  = "order_change"
	KeySubscription = "subscription"
	KeyDiscount     = "discount"
	KeyAccount      = "account"
	KeyProductQA    = "product_qa"
	KeyFeedback     = "feedback"
)

// RegisterAll registers every specialist workflow into the registry.
func RegisterAll(r *workflow.Registry) {
	r.Register(Wismo())
	r.Register(Refund())
	r.Register(OrderChange())
	r.Register(Subscription())
	r.Register(Discount())
	r.Register(Account())
	r.Register(ProductQA())
	r.Register(Feedback())
}

var (
	orderIDPattern = regexp.MustCompile(`#?(\d{4,10})\b`)
	emailPattern   = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)
)

// extractOrderID pulls an order number out of free text ("#43189",
// "order 43189"). Returns "" when nothing plausible is present.
func extractOrderID(text string) string {
	m := orderIDPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// extractEmail pulls the first email address out of free text.
func extractEmail(text string) string {
	return emailPattern.FindString(text)
}

func containsAny(text string, words ...string) bool {
	lower := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
