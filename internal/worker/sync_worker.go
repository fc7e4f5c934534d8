package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"housebudget/internal/amqp"
	"housebudget/internal/ledger"
	"housebudget/internal/log"
	"housebudget/internal/month"
	"housebudget/internal/sheets"
)

// ReportPreset is the span mirrored to the report sheet.
const ReportPreset = month.Preset6Months

// LedgerSource is the part of the ledger service the sync worker reads.
type LedgerSource interface {
	Reload(ctx context.Context) (bool, error)
	Snapshot() ledger.Ledger
}

// SyncWorker mirrors the analytics report to a ReportWriter whenever the
// ledger changes.
type SyncWorker struct {
	source  LedgerSource
	reports sheets.ReportWriter
	now     func() time.Time
	logger  *log.Logger

	mu         sync.Mutex
	lastSynced int64
}

func NewSyncWorker(source LedgerSource, reports sheets.ReportWriter, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &SyncWorker{
		source:  source,
		reports: reports,
		now:     time.Now,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// LastSynced returns the ledger revision of the last written report.
func (w *SyncWorker) LastSynced() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSynced
}

// HandleLedgerChanged processes a single ledger change message from AMQP.
// Revisions at or below the last synced one are acknowledged without work.
func (w *SyncWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	if msg.Revision <= w.LastSynced() {
		w.logger.DebugContext(ctx, "Skipping already synced revision",
			log.FieldRevision, msg.Revision,
			log.FieldOperation, msg.Operation)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing ledger change",
		log.FieldRevision, msg.Revision,
		log.FieldOperation, msg.Operation,
		log.FieldMonth, msg.Month)

	if _, err := w.source.Reload(ctx); err != nil {
		return fmt.Errorf("reload ledger: %w", err)
	}
	return w.sync(ctx, false)
}

// HandleAlertRaised logs alerts seen on the bus.
func (w *SyncWorker) HandleAlertRaised(ctx context.Context, msg *amqp.AlertRaisedMessage) error {
	w.logger.InfoContext(ctx, "Budget alert raised",
		log.FieldAlertType, msg.AlertType,
		log.FieldCategoryID, msg.CategoryID,
		"message", msg.Message)
	return nil
}

// SyncIfStale reloads the ledger and writes the report when its revision
// moved past the last synced one. It is the periodic backup for lost
// messages and the worker's startup check.
func (w *SyncWorker) SyncIfStale(ctx context.Context) error {
	if _, err := w.source.Reload(ctx); err != nil {
		return fmt.Errorf("reload ledger: %w", err)
	}
	return w.sync(ctx, false)
}

// SyncNow writes the report regardless of the last synced revision.
func (w *SyncWorker) SyncNow(ctx context.Context) error {
	return w.sync(ctx, true)
}

func (w *SyncWorker) sync(ctx context.Context, force bool) error {
	snap := w.source.Snapshot()
	if !force && snap.Revision <= w.LastSynced() {
		return nil
	}
	if !snap.OnboardingCompleted {
		w.logger.DebugContext(ctx, "Skipping report sync before onboarding", log.FieldRevision, snap.Revision)
		return nil
	}

	span, err := month.Preset(ReportPreset, w.now())
	if err != nil {
		return err
	}
	report := snap.Report(span)
	if err := w.reports.WriteReport(ctx, report); err != nil {
		w.logger.ErrorContext(ctx, "Failed to write report",
			log.NewFields().
				WithOperation(log.OpSync).
				WithRevision(snap.Revision).
				WithError(err).
				ToSlice()...)
		return fmt.Errorf("write report: %w", err)
	}

	w.mu.Lock()
	if snap.Revision > w.lastSynced {
		w.lastSynced = snap.Revision
	}
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Report synced",
		log.FieldRevision, snap.Revision,
		"span", span.String())
	return nil
}
