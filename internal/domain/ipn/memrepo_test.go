package ipn

import (
	"context"
	"sync"

	"MercadoPagoGateway/internal/domain/order"
)

// memRepo serializes transactions the way a row lock would.
type memRepo struct {
	txMu sync.Mutex
	mu   sync.Mutex

	orders        map[string]order.Order
	invoices      []order.Invoice
	statusUpdates int
	failUpdate    error
}

func newMemRepo(orders ...order.Order) *memRepo {
	r := &memRepo{orders: map[string]order.Order{}}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *memRepo) InTransaction(_ context.Context, fn func(order.TxOrderRepo) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(r)
}

func (r *memRepo) GetOrder(_ context.Context, id string) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	o.Items = append([]order.Item(nil), o.Items...)
	return o, nil
}

func (r *memRepo) GetOrderForUpdate(ctx context.Context, id string) (order.Order, error) {
	return r.GetOrder(ctx, id)
}

func (r *memRepo) CreateOrder(_ context.Context, o order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; ok {
		return order.ErrAlreadyExists
	}
	r.orders[o.ID] = o
	return nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id string, status order.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate != nil {
		return r.failUpdate
	}
	o := r.orders[id]
	o.Status = status
	r.orders[id] = o
	r.statusUpdates++
	return nil
}

func (r *memRepo) CreateInvoice(_ context.Context, inv order.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices = append(r.invoices, inv)
	o := r.orders[inv.OrderID]
	for _, ii := range inv.Items {
		for i := range o.Items {
			if o.Items[i].ID == ii.OrderItemID {
				o.Items[i].QtyInvoiced += ii.Quantity
			}
		}
	}
	r.orders[inv.OrderID] = o
	return nil
}

func (r *memRepo) status(id string) order.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id].Status
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []order.Event
	err    error
	// ctxErr is the context state seen by the last publish.
	ctxErr error
	// stall blocks each publish until its context is done, like an
	// unreachable broker.
	stall bool
}

func (p *recordingPublisher) PublishOrderEvent(ctx context.Context, e order.Event) error {
	if p.stall {
		<-ctx.Done()
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctxErr = ctx.Err()
	p.events = append(p.events, e)
	return p.err
}
