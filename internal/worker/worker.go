package worker

import (
	"context"
	"time"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// SheetRow is the row that would be appended to the integrations spreadsheet
type SheetRow struct {
	Sheet     string
	Email     string
	Source    string
	Timestamp time.Time
	Fields    map[string]string
}

// SheetSync turns integration events into spreadsheet rows. No sheet is
// written; each row is logged and handed to the optional recorder.
type SheetSync struct {
	record func(SheetRow)
	logger *zap.Logger
}

// NewSheetSync creates a sheet sync; record may be nil
func NewSheetSync(record func(SheetRow)) *SheetSync {
	return &SheetSync{record: record, logger: util.ComponentLogger("sheet-sync")}
}

// Handler returns an event handler routing every integration event to the sync
func (s *SheetSync) Handler() *broker.EventHandler {
	eh := broker.NewEventHandler()
	eh.OnOrderPlaced(s.HandleOrderPlaced)
	eh.OnNewsletterSignup(s.HandleNewsletterSignup)
	eh.OnContactSubmitted(s.HandleContactSubmitted)
	return eh
}

func (s *SheetSync) HandleOrderPlaced(_ context.Context, e *models.OrderPlacedEvent) error {
	s.emit(SheetRow{
		Sheet:     "orders",
		Email:     e.Email,
		Source:    models.SourceCheckout,
		Timestamp: e.Timestamp,
		Fields: map[string]string{
			"order_id": e.OrderID,
			"total":    e.Total.StringFixed(2),
		},
	})
	return nil
}

func (s *SheetSync) HandleNewsletterSignup(_ context.Context, e *models.NewsletterSignupEvent) error {
	s.emit(SheetRow{
		Sheet:     "newsletter",
		Email:     e.Email,
		Source:    e.Source,
		Timestamp: e.Timestamp,
	})
	return nil
}

func (s *SheetSync) HandleContactSubmitted(_ context.Context, e *models.ContactSubmittedEvent) error {
	s.emit(SheetRow{
		Sheet:     "contact",
		Email:     e.Email,
		Source:    e.Source,
		Timestamp: e.Timestamp,
		Fields: map[string]string{
			"first_name": e.FirstName,
			"last_name":  e.LastName,
			"subject":    e.Subject,
			"message":    e.Message,
		},
	})
	return nil
}

func (s *SheetSync) emit(row SheetRow) {
	fields := []zap.Field{
		zap.String("sheet", row.Sheet),
		zap.String("email", row.Email),
		zap.String("source", row.Source),
		zap.Time("timestamp", row.Timestamp),
	}
	for k, v := range row.Fields {
		fields = append(fields, zap.String(k, v))
	}
	s.logger.Info("[DEMO] Would sync row to Google Sheets", fields...)

	if s.record != nil {
		s.record(row)
	}
}

// SheetSyncWorker consumes integration events from Kafka
type SheetSyncWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewSheetSyncWorker creates a new sheet sync worker
func NewSheetSyncWorker(consumer *broker.Consumer, sync *SheetSync) *SheetSyncWorker {
	return &SheetSyncWorker{
		consumer:     consumer,
		eventHandler: sync.Handler(),
		logger:       util.ComponentLogger("sheet-sync"),
	}
}

// Start starts the worker
func (w *SheetSyncWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting sheet sync worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *SheetSyncWorker) Stop() error {
	w.logger.Info("Stopping sheet sync worker")
	return w.consumer.Close()
}
