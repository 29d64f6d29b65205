// Package analytics delivers best-effort commerce events. Delivery is
// decoupled from the caller: events go onto a buffered channel consumed by a
// background goroutine, so a slow or failing recorder can never block or fail
// a cart mutation.
package analytics

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AddToCartEvent captures a successful add for reporting.
type AddToCartEvent struct {
	ProductID string
	SKU       string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Currency  string
	At        time.Time
}

// Sink is what the cart service publishes to.
type Sink interface {
	TrackAddToCart(event AddToCartEvent)
}

// Recorder persists a single event.
type Recorder interface {
	Record(ctx context.Context, event AddToCartEvent) error
}

// Dispatcher fans events from publishers to a Recorder on its own goroutine.
type Dispatcher struct {
	events   chan AddToCartEvent
	recorder Recorder
	logger   *log.Logger
	timeout  time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

// NewDispatcher starts the delivery goroutine. Close must be called to stop it.
func NewDispatcher(recorder Recorder, logger *log.Logger, buffer int) *Dispatcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if buffer <= 0 {
		buffer = 64
	}
	d := &Dispatcher{
		events:   make(chan AddToCartEvent, buffer),
		recorder: recorder,
		logger:   logger,
		timeout:  5 * time.Second,
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// TrackAddToCart enqueues an event without blocking. When the buffer is full
// the event is dropped and counted against the log, never the caller.
func (d *Dispatcher) TrackAddToCart(event AddToCartEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	select {
	case d.events <- event:
	default:
		d.logger.Printf("analytics: buffer full, dropping add-to-cart product_id=%s", event.ProductID)
	}
}

// Close drains queued events and stops the delivery goroutine.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.events)
		<-d.done
	})
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for event := range d.events {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.recorder.Record(ctx, event); err != nil {
			d.logger.Printf("analytics: record add-to-cart product_id=%s error=%v", event.ProductID, err)
		}
		cancel()
	}
}

type postgresRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgresRecorder writes events into the cart_events table.
func NewPostgresRecorder(pool *pgxpool.Pool) Recorder {
	return &postgresRecorder{pool: pool}
}

func (r *postgresRecorder) Record(ctx context.Context, event AddToCartEvent) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO cart_events (kind, product_id, sku, name, quantity, unit_price, currency, occurred_at)
VALUES ('add_to_cart', $1, $2, $3, $4, $5::numeric, $6, $7)
`, event.ProductID, event.SKU, event.Name, event.Quantity, event.UnitPrice.String(), event.Currency, event.At)
	return err
}
