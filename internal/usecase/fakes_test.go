package usecase

import (
	"context"
	"errors"
	"slices"
	"storefront-backend/internal/domain"
	"sync"
	"time"
)

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[string]*domain.Order
	history []domain.OrderHistory
	failOn  string
}

func newFakeOrderRepo(orders ...domain.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[string]*domain.Order)}
	for i := range orders {
		o := orders[i]
		r.orders[o.ID] = &o
	}
	return r
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	cp.Items = slices.Clone(o.Items)
	return &cp, nil
}

func (r *fakeOrderRepo) MarkItemsCancelled(_ context.Context, orderID string, itemIDs []string, requestID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "MarkItemsCancelled" {
		return errors.New("mark failed")
	}
	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	for _, id := range itemIDs {
		i := slices.IndexFunc(o.Items, func(item domain.LineItem) bool { return item.ID == id })
		if i < 0 || o.Items[i].IsCancelled() {
			return domain.ErrInvalidSelection
		}
	}
	for _, id := range itemIDs {
		i := slices.IndexFunc(o.Items, func(item domain.LineItem) bool { return item.ID == id })
		o.Items[i].CancelledAt = &at
		o.Items[i].CancellationRequestID = &requestID
	}
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "UpdateStatus" {
		return errors.New("update failed")
	}
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (r *fakeOrderRepo) CreateOrderHistory(_ context.Context, h *domain.OrderHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "CreateOrderHistory" {
		return errors.New("history failed")
	}
	r.history = append(r.history, *h)
	return nil
}

func (r *fakeOrderRepo) GetOrderHistory(_ context.Context, orderID string) ([]domain.OrderHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.OrderHistory
	for _, h := range r.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeCatalogRepo struct {
	products map[string]*domain.ProductRef
	bundles  map[string]*domain.BundleRef
}

func (r *fakeCatalogRepo) GetProductRef(_ context.Context, id string) (*domain.ProductRef, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeCatalogRepo) GetBundleRef(_ context.Context, id string) (*domain.BundleRef, error) {
	b, ok := r.bundles[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return b, nil
}

type fakeCancellationRepo struct {
	mu        sync.Mutex
	requests  map[string]*domain.CancellationRequest
	order     []string
	createErr error
}

func newFakeCancellationRepo() *fakeCancellationRepo {
	return &fakeCancellationRepo{requests: make(map[string]*domain.CancellationRequest)}
}

func (r *fakeCancellationRepo) Create(_ context.Context, req *domain.CancellationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	cp := *req
	r.requests[req.ID] = &cp
	r.order = append(r.order, req.ID)
	return nil
}

func (r *fakeCancellationRepo) GetByID(_ context.Context, id string) (*domain.CancellationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *fakeCancellationRepo) List(_ context.Context, f domain.CancellationFilter) ([]domain.CancellationRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.CancellationRequest
	for _, id := range r.order {
		req := r.requests[id]
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		if f.OrderID != "" && req.OrderID != f.OrderID {
			continue
		}
		matched = append(matched, *req)
	}
	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := min(start+f.Limit, len(matched))
	return matched[start:end], total, nil
}

func (r *fakeCancellationRepo) UpdateDecision(_ context.Context, id, status string, decidedBy, note *string, decidedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return domain.ErrRequestNotFound
	}
	req.Status = status
	req.DecidedBy = decidedBy
	req.DecisionNote = note
	req.DecidedAt = &decidedAt
	return nil
}

// fakeTx runs fn directly; rollback is observed through the repos' failOn hooks.
type fakeTx struct {
	calls int
}

func (t *fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type fakeGateway struct {
	executed []domain.CancellationRequest
	err      error
}

func (g *fakeGateway) ExecuteRefund(_ context.Context, req domain.CancellationRequest) error {
	if g.err != nil {
		return g.err
	}
	g.executed = append(g.executed, req)
	return nil
}

type fakeCache struct {
	items map[string]interface{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]interface{})}
}

func (c *fakeCache) Get(key string) (interface{}, bool) {
	v, ok := c.items[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value interface{}, _ time.Duration) {
	c.items[key] = value
}

func (c *fakeCache) Delete(key string) {
	delete(c.items, key)
}

func (c *fakeCache) Flush() {
	c.items = make(map[string]interface{})
}
