package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	kafkago "github.com/segmentio/kafka-go"
)

// ScanIngester stores a batch of raw scans for one company.
type ScanIngester interface {
	IngestForCompany(ctx context.Context, companyID string, fallbackDate time.Time, raws []attendance.RawScanEvent) (attendance.IngestScansResponse, error)
}

type ScanConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	PollTimeout time.Duration
	// RetryBackoff is the first wait after a failed ingest; it doubles up to
	// MaxRetryBackoff.
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	// Location resolves the reporting date of undated events from the message timestamp.
	Location *time.Location
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// ScanConsumer feeds scan events published by badge readers into the scan store.
type ScanConsumer struct {
	cfg             ScanConsumerConfig
	reader          messageReader
	ingester        ScanIngester
	poll            time.Duration
	retryBackoff    time.Duration
	maxRetryBackoff time.Duration
}

func NewScanConsumer(cfg ScanConsumerConfig, ingester ScanIngester) (*ScanConsumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errors.New("scan topic must not be empty")
	}
	if strings.TrimSpace(cfg.GroupID) == "" {
		return nil, errors.New("consumer group must not be empty")
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})

	return newScanConsumer(cfg, reader, ingester), nil
}

func newScanConsumer(cfg ScanConsumerConfig, reader messageReader, ingester ScanIngester) *ScanConsumer {
	poll := cfg.PollTimeout
	if poll <= 0 {
		poll = 5 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	maxBackoff := cfg.MaxRetryBackoff
	if maxBackoff < backoff {
		maxBackoff = max(backoff, 30*time.Second)
	}
	return &ScanConsumer{
		cfg:             cfg,
		reader:          reader,
		ingester:        ingester,
		poll:            poll,
		retryBackoff:    backoff,
		maxRetryBackoff: maxBackoff,
	}
}

// Close shuts down the underlying Kafka reader.
func (c *ScanConsumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Run consumes until ctx is cancelled or the reader is closed. Payloads that
// fail to decode are logged and committed. A batch the store rejects is retried
// with backoff and its offset stays uncommitted until it is stored.
func (c *ScanConsumer) Run(ctx context.Context) error {
	slog.Info("Scan consumer started",
		"topic", c.cfg.Topic,
		"group", c.cfg.GroupID,
		"brokers", strings.Join(c.cfg.Brokers, ","),
	)
	defer slog.Info("Scan consumer stopped")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fetchCtx, cancel := context.WithTimeout(ctx, c.poll)
		msg, err := c.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if errors.Is(err, context.Canceled) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				continue
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, kafkago.ErrGroupClosed) {
				return nil
			}
			slog.Error("Scan consumer fetch failed", "error", err)
			continue
		}

		if err := c.handleWithRetry(ctx, msg); err != nil {
			return err
		}

		commitCtx, commitCancel := context.WithTimeout(ctx, c.poll)
		if err := c.reader.CommitMessages(commitCtx, msg); err != nil {
			if !(errors.Is(err, context.Canceled) && ctx.Err() != nil) {
				slog.Error("Scan consumer commit failed", "error", err, "offset", msg.Offset)
			}
		}
		commitCancel()
	}
}

// handleWithRetry returns only when msg has been handled or ctx is done.
func (c *ScanConsumer) handleWithRetry(ctx context.Context, msg kafkago.Message) error {
	backoff := c.retryBackoff
	for attempt := 1; ; attempt++ {
		err := c.handle(ctx, msg)
		if err == nil {
			return nil
		}
		slog.Error("Scan message ingest failed",
			"error", err,
			"offset", msg.Offset,
			"attempt", attempt,
			"retry_in", backoff,
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, c.maxRetryBackoff)
	}
}

// handle decodes and stores one message. Undecodable payloads are dropped
// with a warning; only store failures are returned.
func (c *ScanConsumer) handle(ctx context.Context, msg kafkago.Message) error {
	batch, err := decodeScanMessage(msg.Value)
	if err != nil {
		slog.Warn("Scan message dropped", "error", err, "partition", msg.Partition, "offset", msg.Offset)
		return nil
	}

	fallback := batch.date
	if fallback.IsZero() {
		ts := msg.Time
		if ts.IsZero() {
			ts = time.Now()
		}
		t := ts.In(c.cfg.Location)
		fallback = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}

	resp, err := c.ingester.IngestForCompany(ctx, batch.companyID, fallback, batch.events)
	if err != nil {
		return fmt.Errorf("ingest scans for company %s: %w", batch.companyID, err)
	}
	slog.Debug("Scan message ingested",
		"company_id", batch.companyID,
		"accepted", resp.Accepted,
		"rejected", resp.Rejected,
		"offset", msg.Offset,
	)
	return nil
}

// scanEnvelope is either one flat scan tagged with its company, or a batch
// under "events" sharing the envelope's company and date.
type scanEnvelope struct {
	CompanyID string `json:"company_id"`
	attendance.RawScanEvent
	Events []attendance.RawScanEvent `json:"events"`
}

type scanBatch struct {
	companyID string
	date      time.Time
	events    []attendance.RawScanEvent
}

func decodeScanMessage(raw []byte) (scanBatch, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	var env scanEnvelope
	if err := dec.Decode(&env); err != nil {
		return scanBatch{}, fmt.Errorf("decode scan payload: %w", err)
	}

	companyID := strings.TrimSpace(env.CompanyID)
	if companyID == "" {
		return scanBatch{}, errors.New("company_id missing or empty")
	}

	batch := scanBatch{companyID: companyID}
	if env.Date != "" {
		d, err := time.Parse("2006-01-02", env.Date)
		if err != nil {
			return scanBatch{}, fmt.Errorf("invalid date %q: %w", env.Date, err)
		}
		batch.date = d
	}

	if len(env.Events) > 0 {
		batch.events = env.Events
		return batch, nil
	}
	if env.EmployeeID == "" && env.Time == "" {
		return scanBatch{}, errors.New("payload carries no scan")
	}
	batch.events = []attendance.RawScanEvent{env.RawScanEvent}
	return batch, nil
}
