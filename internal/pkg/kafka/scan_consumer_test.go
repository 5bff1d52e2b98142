package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeScanMessage_Flat(t *testing.T) {
	batch, err := decodeScanMessage([]byte(`{
		"company_id": "c1",
		"employee_id": "emp-1",
		"employee_name": "Alice Martin",
		"department": "IT",
		"date": "2026-03-02",
		"time": "07:58",
		"direction": "entry",
		"source": "rfid"
	}`))
	require.NoError(t, err)

	assert.Equal(t, "c1", batch.companyID)
	assert.Equal(t, "2026-03-02", batch.date.Format("2006-01-02"))
	require.Len(t, batch.events, 1)
	assert.Equal(t, "emp-1", batch.events[0].EmployeeID)
	assert.Equal(t, "07:58", batch.events[0].Time)
}

func TestDecodeScanMessage_Batch(t *testing.T) {
	batch, err := decodeScanMessage([]byte(`{
		"company_id": "c1",
		"events": [
			{"employee_id": "emp-1", "time": "07:58", "direction": "entry", "source": "rfid"},
			{"employee_id": "emp-2", "time": "08:20", "direction": "entry", "source": "biometric"}
		]
	}`))
	require.NoError(t, err)

	assert.True(t, batch.date.IsZero())
	require.Len(t, batch.events, 2)
	assert.Equal(t, "emp-2", batch.events[1].EmployeeID)
}

func TestDecodeScanMessage_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":        `{`,
		"missing company": `{"employee_id": "emp-1", "time": "07:58"}`,
		"bad date":        `{"company_id": "c1", "date": "02/03/2026", "employee_id": "emp-1", "time": "07:58"}`,
		"no scan":         `{"company_id": "c1"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeScanMessage([]byte(payload))
			assert.Error(t, err)
		})
	}
}

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafkago.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return kafkago.Message{}, kafkago.ErrGroupClosed
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

type ingestCall struct {
	companyID string
	date      time.Time
	events    []attendance.RawScanEvent
}

type fakeIngester struct {
	calls []ingestCall
}

func (f *fakeIngester) IngestForCompany(_ context.Context, companyID string, fallbackDate time.Time, raws []attendance.RawScanEvent) (attendance.IngestScansResponse, error) {
	f.calls = append(f.calls, ingestCall{companyID: companyID, date: fallbackDate, events: raws})
	return attendance.IngestScansResponse{Accepted: len(raws)}, nil
}

func TestScanConsumer_Run(t *testing.T) {
	published := time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC)
	reader := &fakeReader{messages: []kafkago.Message{
		{Offset: 1, Time: published, Value: []byte(`{"company_id":"c1","employee_id":"emp-1","time":"07:58","direction":"entry","source":"rfid"}`)},
		{Offset: 2, Time: published, Value: []byte(`garbage`)},
		{Offset: 3, Time: published, Value: []byte(`{"company_id":"c2","date":"2026-03-01","events":[{"employee_id":"emp-9","time":"17:01","direction":"exit","source":"biometric"}]}`)},
	}}
	ingester := &fakeIngester{}

	// Messages are dated in the consumer's timezone: 23:30 UTC is already the 3rd in Jakarta.
	jakarta := time.FixedZone("WIB", 7*3600)
	c := newScanConsumer(ScanConsumerConfig{Topic: "attendance.scans", GroupID: "g", Location: jakarta}, reader, ingester)

	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
	require.Len(t, ingester.calls, 2)

	assert.Equal(t, "c1", ingester.calls[0].companyID)
	assert.Equal(t, "2026-03-03", ingester.calls[0].date.Format("2006-01-02"))

	assert.Equal(t, "c2", ingester.calls[1].companyID)
	assert.Equal(t, "2026-03-01", ingester.calls[1].date.Format("2006-01-02"))
	require.Len(t, ingester.calls[1].events, 1)
	assert.Equal(t, "emp-9", ingester.calls[1].events[0].EmployeeID)
}

type flakyIngester struct {
	mu       sync.Mutex
	failures int
	attempts int
	stored   int
}

func (f *flakyIngester) IngestForCompany(_ context.Context, _ string, _ time.Time, raws []attendance.RawScanEvent) (attendance.IngestScansResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.attempts <= f.failures {
		return attendance.IngestScansResponse{}, errors.New("db unavailable")
	}
	f.stored += len(raws)
	return attendance.IngestScansResponse{Accepted: len(raws)}, nil
}

func TestScanConsumer_RetriesFailedIngestBeforeCommit(t *testing.T) {
	reader := &fakeReader{messages: []kafkago.Message{
		{Offset: 7, Value: []byte(`{"company_id":"c1","date":"2026-03-02","employee_id":"emp-1","time":"07:58","direction":"entry","source":"rfid"}`)},
	}}
	ingester := &flakyIngester{failures: 2}

	c := newScanConsumer(ScanConsumerConfig{
		Topic:        "attendance.scans",
		GroupID:      "g",
		RetryBackoff: time.Millisecond,
	}, reader, ingester)

	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 3, ingester.attempts)
	assert.Equal(t, 1, ingester.stored)
	assert.Equal(t, []int64{7}, reader.committed)
}

func TestScanConsumer_FailedIngestIsNotCommitted(t *testing.T) {
	reader := &fakeReader{messages: []kafkago.Message{
		{Offset: 7, Value: []byte(`{"company_id":"c1","date":"2026-03-02","employee_id":"emp-1","time":"07:58","direction":"entry","source":"rfid"}`)},
	}}
	ingester := &flakyIngester{failures: 1 << 30}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := newScanConsumer(ScanConsumerConfig{
		Topic:        "attendance.scans",
		GroupID:      "g",
		RetryBackoff: time.Millisecond,
	}, reader, ingester)

	assert.ErrorIs(t, c.Run(ctx), context.DeadlineExceeded)
	assert.Empty(t, reader.committed)
	assert.GreaterOrEqual(t, ingester.attempts, 1)
	assert.Zero(t, ingester.stored)
}

func TestScanConsumer_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newScanConsumer(ScanConsumerConfig{Topic: "t", GroupID: "g"}, &fakeReader{}, &fakeIngester{})
	assert.ErrorIs(t, c.Run(ctx), context.Canceled)
}

func TestNewScanConsumer_Validation(t *testing.T) {
	_, err := NewScanConsumer(ScanConsumerConfig{Topic: "t", GroupID: "g"}, &fakeIngester{})
	assert.Error(t, err)

	_, err = NewScanConsumer(ScanConsumerConfig{Brokers: []string{"localhost:9092"}, GroupID: "g"}, &fakeIngester{})
	assert.Error(t, err)

	_, err = NewScanConsumer(ScanConsumerConfig{Brokers: []string{"localhost:9092"}, Topic: "t"}, &fakeIngester{})
	assert.Error(t, err)
}
