package commerce

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/supportmesh/tool"
)

// Order statuses reported by lookup_order.
const (
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Order is a commerce order as the in-memory backend models it.
type Order struct {
	ID            string
	Email         string
	Status        string
	Carrier       string
	Tracking      string
	TotalCents    int
	RefundedCents int
	DeliveredAt   time.Time
}

// Subscription is a customer's plan state.
type Subscription struct {
	Email  string
	Plan   string
	Status string // active|paused|cancelled
}

// Backend is an in-memory stand-in for the commerce endpoints. It implements
// every action in AllTools with the same response contract the HTTP client
// returns, and adds failure injection hooks for exercising workflow failure
// branches.
type Backend struct {
	mu            sync.Mutex
	orders        map[string]Order
	subscriptions map[string]Subscription
	feedback      []string
	failNext      map[string]int
	panicNext     map[string]bool
}

// NewBackend constructs an empty backend.
func NewBackend() *Backend {
	return &Backend{
		orders:        map[string]Order{},
		subscriptions: map[string]Subscription{},
		failNext:      map[string]int{},
		panicNext:     map[string]bool{},
	}
}

// SeedOrder adds or replaces an order.
func (b *Backend) SeedOrder(o Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders[normalizeOrderID(o.ID)] = o
}

// SeedSubscription adds or replaces a subscription keyed by customer email.
func (b *Backend) SeedSubscription(s Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions[strings.ToLower(s.Email)] = s
}

// FailNext makes the next n calls to the named action return a transport
// error.
func (b *Backend) FailNext(action string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext[action] = n
}

// PanicNext makes the next call to the named action panic. Used to verify the
// tracer never loses a trace.
func (b *Backend) PanicNext(action string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.panicNext[action] = true
}

// Feedback returns the recorded feedback entries.
func (b *Backend) Feedback() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.feedback...)
}

// Tool returns the named action bound to this backend.
func (b *Backend) Tool(name string) tool.Tool {
	return tool.NewFunc(name, "commerce action "+name, func(_ context.Context, args map[string]any) (tool.Result, error) {
		return b.call(name, args)
	})
}

// Tools returns the full action set.
func (b *Backend) Tools() []tool.Tool {
	out := make([]tool.Tool, 0, len(AllTools))
	for _, name := range AllTools {
		out = append(out, b.Tool(name))
	}
	return out
}

func (b *Backend) call(action string, args map[string]any) (tool.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.panicNext[action] {
		b.panicNext[action] = false
		panic(fmt.Sprintf("injected panic in %s", action))
	}
	if n := b.failNext[action]; n > 0 {
		b.failNext[action] = n - 1
		return tool.Result{}, tool.NewError(action, "injected transport failure", "TRANSPORT")
	}

	switch action {
	case ToolLookupOrder:
		return b.lookupOrder(args), nil
	case ToolIssueRefund:
		return b.issueRefund(args), nil
	case ToolUpdateSubscription:
		return b.updateSubscription(args), nil
	case ToolApplyDiscount:
		return b.applyDiscount(args), nil
	case ToolUpdateAddress:
		return b.updateAddress(args), nil
	case ToolUpdateAccount:
		return tool.Result{Success: true, Data: map[string]any{"updated": true}}, nil
	case ToolRecordFeedback:
		b.feedback = append(b.feedback, stringArg(args, "text"))
		return tool.Result{Success: true, Data: map[string]any{"recorded": true}}, nil
	default:
		return tool.Result{}, tool.NewError(action, "unknown action", "EXECUTION")
	}
}

func (b *Backend) lookupOrder(args map[string]any) tool.Result {
	id := normalizeOrderID(stringArg(args, "order_id"))
	o, ok := b.orders[id]
	if !ok {
		return tool.Result{Success: false, Error: "order not found"}
	}
	data := map[string]any{
		"order_id":       o.ID,
		"status":         o.Status,
		"total_cents":    o.TotalCents,
		"refunded_cents": o.RefundedCents,
	}
	if o.Carrier != "" {
		data["carrier"] = o.Carrier
		data["tracking"] = o.Tracking
	}
	if !o.DeliveredAt.IsZero() {
		data["delivered_at"] = o.DeliveredAt.Format(time.RFC3339)
	}
	return tool.Result{Success: true, Data: data}
}

func (b *Backend) issueRefund(args map[string]any) tool.Result {
	id := normalizeOrderID(stringArg(args, "order_id"))
	o, ok := b.orders[id]
	if !ok {
		return tool.Result{Success: false, Error: "order not found"}
	}
	if o.RefundedCents >= o.TotalCents {
		return tool.Result{Success: false, Error: "order already fully refunded"}
	}
	o.RefundedCents = o.TotalCents
	b.orders[id] = o
	return tool.Result{Success: true, Data: map[string]any{
		"refund_id":      uuid.NewString(),
		"refunded_cents": o.RefundedCents,
	}}
}

func (b *Backend) updateSubscription(args map[string]any) tool.Result {
	email := strings.ToLower(stringArg(args, "email"))
	action := stringArg(args, "action") // cancel|pause|resume
	sub, ok := b.subscriptions[email]
	if !ok {
		return tool.Result{Success: false, Error: "no subscription on file"}
	}
	switch action {
	case "cancel":
		sub.Status = "cancelled"
	case "pause":
		sub.Status = "paused"
	case "resume":
		sub.Status = "active"
	default:
		return tool.Result{Success: false, Error: fmt.Sprintf("unknown subscription action %q", action)}
	}
	b.subscriptions[email] = sub
	return tool.Result{Success: true, Data: map[string]any{"status": sub.Status, "plan": sub.Plan}}
}

func (b *Backend) applyDiscount(args map[string]any) tool.Result {
	percent := intArg(args, "percent")
	if percent <= 0 || percent > 50 {
		return tool.Result{Success: false, Error: "discount percent out of range"}
	}
	return tool.Result{Success: true, Data: map[string]any{
		"code":    fmt.Sprintf("SAVE%d-%s", percent, strings.ToUpper(uuid.NewString()[:8])),
		"percent": percent,
	}}
}

func (b *Backend) updateAddress(args map[string]any) tool.Result {
	id := normalizeOrderID(stringArg(args, "order_id"))
	o, ok := b.orders[id]
	if !ok {
		return tool.Result{Success: false, Error: "order not found"}
	}
	if o.Status != StatusProcessing {
		return tool.Result{Success: false, Error: "order already handed to carrier"}
	}
	return tool.Result{Success: true, Data: map[string]any{"order_id": o.ID, "address": stringArg(args, "address")}}
}

func normalizeOrderID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(strings.ToUpper(id)), "#")
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
