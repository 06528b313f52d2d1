package worker

// production_sheet_worker.go
// Processes jobs from QueueProductionSheet: recomputes the production report,
// renders it to PDF, keeps a copy in the sheet store and mails it to the
// kitchen. Storage and SMTP are retried with exponential backoff.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/dto"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/infra"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxSheetAttempts = 3

// ProductionSheetPayload is the job envelope sent to QueueProductionSheet.
type ProductionSheetPayload struct {
	EventID     string              `json:"event_id"`
	Query       dto.ProductionQuery `json:"query"`
	To          string              `json:"to"`
	RequestedBy string              `json:"requested_by"`
}

// SheetRenderer produces the report and its PDF for one event.
type SheetRenderer interface {
	RenderSheet(ctx context.Context, eventID uuid.UUID, q dto.ProductionQuery) (dto.ProductionReport, []byte, error)
}

// SheetMailer delivers a rendered sheet.
type SheetMailer interface {
	SendProductionSheet(to, subject, body, fileName string, pdf []byte) error
}

type ProductionSheetWorker struct {
	renderer  SheetRenderer
	store     infra.SheetStore
	mailer    SheetMailer
	defaultTo string
	backoff   time.Duration
}

// NewProductionSheetWorker wires the worker. defaultTo is used when a job
// carries no recipient.
func NewProductionSheetWorker(renderer SheetRenderer, store infra.SheetStore, mailer SheetMailer, defaultTo string) *ProductionSheetWorker {
	return &ProductionSheetWorker{
		renderer:  renderer,
		store:     store,
		mailer:    mailer,
		defaultTo: defaultTo,
		backoff:   time.Second,
	}
}

// Process handles a single production sheet job:
//  1. Parse the payload
//  2. Recompute the report and render the PDF
//  3. Store the PDF (retried)
//  4. Mail it (retried)
func (w *ProductionSheetWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ProductionSheetPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("production_sheet: invalid payload: %w", err)
	}
	eventID, err := uuid.Parse(payload.EventID)
	if err != nil {
		return fmt.Errorf("production_sheet: invalid event_id %q", payload.EventID)
	}
	to := payload.To
	if to == "" {
		to = w.defaultTo
	}
	if to == "" {
		return fmt.Errorf("production_sheet: no recipient")
	}

	report, pdf, err := w.renderer.RenderSheet(ctx, eventID, payload.Query)
	if err != nil {
		return fmt.Errorf("production_sheet: render: %w", err)
	}

	fileName := infra.SheetFileName(report)
	key := fmt.Sprintf("events/%s/%s", report.EventID, fileName)

	var location string
	if err := withRetry(ctx, maxSheetAttempts, w.backoff, func(attempt int) error {
		loc, err := w.store.Put(ctx, key, pdf)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("key", key).Msg("production_sheet: store failed")
			return err
		}
		location = loc
		return nil
	}); err != nil {
		return fmt.Errorf("production_sheet: store: %w", err)
	}

	subject := fmt.Sprintf("Fisa de productie: %s (%s)", report.EventName, report.EventDate)
	body := fmt.Sprintf("Fisa de productie pentru %s, %d portii, cost total %s.\n",
		report.EventName, report.Portions, report.Totals.TotalCost.StringFixed(2))

	if err := withRetry(ctx, maxSheetAttempts, w.backoff, func(attempt int) error {
		err := w.mailer.SendProductionSheet(to, subject, body, fileName, pdf)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("to", to).Msg("production_sheet: send failed")
		}
		return err
	}); err != nil {
		return fmt.Errorf("production_sheet: send: %w", err)
	}

	log.Info().
		Str("event_id", report.EventID).
		Str("to", to).
		Str("stored_at", location).
		Str("requested_by", payload.RequestedBy).
		Msg("production_sheet: sent")
	return nil
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 immediate, then base, 2×base, …
// Returns nil if any attempt succeeds; the last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * base
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
