package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Fullex26/linenotify/internal/config"
	"github.com/Fullex26/linenotify/internal/notifiers"
	"github.com/Fullex26/linenotify/internal/store"
	"github.com/Fullex26/linenotify/pkg/models"
)

// Version is set at build time via ldflags: -X github.com/Fullex26/linenotify/internal/dispatch.Version=<tag>
var Version = "dev"

// ErrHistoryDisabled is returned by history queries when no store is open.
var ErrHistoryDisabled = errors.New("delivery history is disabled")

// Dispatcher sends payloads through a notifier and records every attempt
type Dispatcher struct {
	cfg      *config.Config
	notifier notifiers.Notifier
	store    *store.Store
}

// Option customises a Dispatcher
type Option func(*Dispatcher)

// WithNotifier replaces the LINE notifier built from config
func WithNotifier(n notifiers.Notifier) Option {
	return func(d *Dispatcher) { d.notifier = n }
}

// WithStore uses an already open store instead of opening cfg.History.Path
func WithStore(s *store.Store) Option {
	return func(d *Dispatcher) { d.store = s }
}

// Stats summarises recent history
type Stats struct {
	Counts        map[models.Outcome]int
	LastDelivered time.Time // zero when nothing was ever delivered
}

// New creates a dispatcher. When history is enabled the store is opened and
// deliveries past the retention window are pruned.
func New(cfg *config.Config, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{cfg: cfg}
	for _, opt := range opts {
		opt(d)
	}

	if d.notifier == nil {
		d.notifier = notifiers.NewLine(cfg.Line)
	}

	if d.store == nil && cfg.History.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.History.Path), 0750); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
		db, err := store.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		d.store = db
	}

	if _, err := d.Prune(); err != nil && !errors.Is(err, ErrHistoryDisabled) {
		slog.Warn("pruning history failed", "error", err)
	}

	return d, nil
}

// Send delivers p and records the attempt. A non-2xx answer is returned as a
// delivery with OutcomeRejected, not as an error.
func (d *Dispatcher) Send(ctx context.Context, p models.Payload) (models.Delivery, error) {
	del, err := d.notifier.Send(ctx, p)
	if del.ID == "" {
		del.ID = uuid.NewString()
	}
	d.record(del)

	if err != nil {
		slog.Error("notification failed", "notifier", d.notifier.Name(), "id", del.ID, "error", err)
		return del, err
	}

	attrs := []any{
		"notifier", d.notifier.Name(),
		"id", del.ID,
		"status", del.StatusCode,
		"outcome", del.Outcome.String(),
		"has_image", p.HasImage(),
	}
	if del.RateRemaining >= 0 {
		attrs = append(attrs, "rate_remaining", del.RateRemaining)
	}
	if del.Outcome == models.OutcomeDelivered {
		slog.Info("notification sent", attrs...)
	} else {
		slog.Warn("notification rejected", append(attrs, "response", del.Response)...)
	}
	return del, nil
}

// Test sends a test message and fails unless the API accepted it
func (d *Dispatcher) Test(ctx context.Context) (models.Delivery, error) {
	slog.Info("testing notifier", "name", d.notifier.Name())
	del, err := d.notifier.Test(ctx)
	if del.ID == "" {
		del.ID = uuid.NewString()
	}
	d.record(del)

	if err != nil {
		return del, fmt.Errorf("%s: %w", d.notifier.Name(), err)
	}
	if del.Outcome != models.OutcomeDelivered {
		return del, fmt.Errorf("%s: api returned status %d: %s", d.notifier.Name(), del.StatusCode, del.Response)
	}
	slog.Info("notifier OK", "name", d.notifier.Name())
	return del, nil
}

// History returns up to limit deliveries, newest first
func (d *Dispatcher) History(limit int) ([]models.Delivery, error) {
	if d.store == nil {
		return nil, ErrHistoryDisabled
	}
	return d.store.RecentDeliveries(limit)
}

// Stats returns outcome counts for the last N hours
func (d *Dispatcher) Stats(hours int) (Stats, error) {
	if d.store == nil {
		return Stats{}, ErrHistoryDisabled
	}
	counts, err := d.store.DeliveryCount(hours)
	if err != nil {
		return Stats{}, err
	}
	last, err := d.store.LastDeliveredAt()
	if err != nil {
		return Stats{}, err
	}
	return Stats{Counts: counts, LastDelivered: last}, nil
}

// Prune applies the configured retention and returns the number of removed rows
func (d *Dispatcher) Prune() (int64, error) {
	if d.store == nil {
		return 0, ErrHistoryDisabled
	}
	if d.cfg.History.RetentionDays <= 0 {
		return 0, nil
	}
	pruned, err := d.store.Prune(d.cfg.History.RetentionDays)
	if err != nil {
		return 0, err
	}
	if pruned > 0 {
		slog.Info("pruned old deliveries", "count", pruned)
	}
	return pruned, nil
}

// Close releases the store
func (d *Dispatcher) Close() error {
	if d.store == nil {
		return nil
	}
	return d.store.Close()
}

func (d *Dispatcher) record(del models.Delivery) {
	if d.store == nil {
		return
	}
	if err := d.store.SaveDelivery(del); err != nil {
		slog.Error("failed to save delivery", "id", del.ID, "error", err)
	}
}
