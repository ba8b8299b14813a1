package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goliatone/go-access-notifier/core"
)

type stubDirectory struct {
	recipients []core.Recipient
	err        error
}

func (s *stubDirectory) ListAll(context.Context) ([]core.Recipient, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.recipients, nil
}

type stubSender struct {
	mu    sync.Mutex
	sent  []string
	body  map[string]string
	fail  map[string]error
	calls int
}

func newStubSender() *stubSender {
	return &stubSender{body: map[string]string{}, fail: map[string]error{}}
}

func (s *stubSender) Send(_ context.Context, phone string, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err, ok := s.fail[phone]; ok {
		return err
	}
	s.sent = append(s.sent, phone)
	s.body[phone] = body
	return nil
}

type stubLedger struct {
	mu      sync.Mutex
	seen    map[string]bool
	records []core.DispatchRecord
	seenErr error
}

func newStubLedger() *stubLedger {
	return &stubLedger{seen: map[string]bool{}}
}

func (s *stubLedger) Seen(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seenErr != nil {
		return false, s.seenErr
	}
	return s.seen[key], nil
}

func (s *stubLedger) Record(_ context.Context, record core.DispatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[record.IdempotencyKey] = true
	s.records = append(s.records, record)
	return nil
}

type stubAppender struct {
	mu      sync.Mutex
	records []core.EventRecord
}

func (s *stubAppender) Append(_ context.Context, record core.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func TestBroadcasterPersonalizesPerRecipient(t *testing.T) {
	sender := newStubSender()
	broadcaster := NewBroadcaster(BroadcasterConfig{
		Recipients: &stubDirectory{recipients: []core.Recipient{
			{Name: "Alice", Phone: "+15550001"},
			{Name: "Bob", Phone: "+15550002"},
		}},
		Sender: sender,
	})

	alert := core.Alert{EventID: "evt-1", Severity: core.SeverityWarning, Message: "Door opened."}
	if err := broadcaster.Broadcast(context.Background(), alert); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected two sends, got %d", len(sender.sent))
	}
	if got := sender.body["+15550001"]; got != "Hi Alice,\nDoor opened." {
		t.Fatalf("unexpected personalized body: %q", got)
	}
}

func TestBroadcasterFailureIsolation(t *testing.T) {
	sender := newStubSender()
	sender.fail["+15550002"] = errors.New("carrier rejected")
	broadcaster := NewBroadcaster(BroadcasterConfig{
		Recipients: &stubDirectory{recipients: []core.Recipient{
			{Name: "Alice", Phone: "+15550001"},
			{Name: "Bob", Phone: "+15550002"},
			{Name: "Carol", Phone: "+15550003"},
		}},
		Sender: sender,
	})

	err := broadcaster.Broadcast(context.Background(), core.Alert{EventID: "evt-1", Message: "m"})
	if err != nil {
		t.Fatalf("per-recipient failure must not fail the broadcast: %v", err)
	}
	if sender.calls != 3 {
		t.Fatalf("expected all three recipients attempted, got %d", sender.calls)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected two successful sends, got %d", len(sender.sent))
	}
}

func TestBroadcasterDirectoryFailurePropagates(t *testing.T) {
	broadcaster := NewBroadcaster(BroadcasterConfig{
		Recipients: &stubDirectory{err: errors.New("db down")},
		Sender:     newStubSender(),
	})

	if err := broadcaster.Broadcast(context.Background(), core.Alert{EventID: "evt-1"}); err == nil {
		t.Fatalf("expected directory failure to propagate")
	}
}

func TestBroadcasterLedgerSuppressesRepeats(t *testing.T) {
	sender := newStubSender()
	ledger := newStubLedger()
	broadcaster := NewBroadcaster(BroadcasterConfig{
		Recipients: &stubDirectory{recipients: []core.Recipient{
			{Name: "Alice", Phone: "+15550001"},
		}},
		Sender: sender,
		Ledger: ledger,
	})

	alert := core.Alert{EventID: "evt-1", Message: "m"}
	if err := broadcaster.Broadcast(context.Background(), alert); err != nil {
		t.Fatalf("first broadcast failed: %v", err)
	}
	if err := broadcaster.Broadcast(context.Background(), alert); err != nil {
		t.Fatalf("second broadcast failed: %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("expected the repeat dispatch to be suppressed, got %d sends", sender.calls)
	}
	if len(ledger.records) != 1 || ledger.records[0].Status != "sent" {
		t.Fatalf("expected one sent ledger record, got %+v", ledger.records)
	}
}

func TestBroadcasterLedgerFailureRecordsFailedStatus(t *testing.T) {
	sender := newStubSender()
	sender.fail["+15550001"] = errors.New("carrier rejected")
	ledger := newStubLedger()
	broadcaster := NewBroadcaster(BroadcasterConfig{
		Recipients: &stubDirectory{recipients: []core.Recipient{
			{Name: "Alice", Phone: "+15550001"},
		}},
		Sender: sender,
		Ledger: ledger,
	})

	if err := broadcaster.Broadcast(context.Background(), core.Alert{EventID: "evt-1", Message: "m"}); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	if len(ledger.records) != 1 || ledger.records[0].Status != "failed" {
		t.Fatalf("expected a failed ledger record, got %+v", ledger.records)
	}
}

func TestBroadcasterLedgerLookupFailureDegradesToSend(t *testing.T) {
	sender := newStubSender()
	ledger := newStubLedger()
	ledger.seenErr = errors.New("ledger down")
	broadcaster := NewBroadcaster(BroadcasterConfig{
		Recipients: &stubDirectory{recipients: []core.Recipient{
			{Name: "Alice", Phone: "+15550001"},
		}},
		Sender: sender,
		Ledger: ledger,
	})

	if err := broadcaster.Broadcast(context.Background(), core.Alert{EventID: "evt-1", Message: "m"}); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("expected ledger failure to degrade to plain send")
	}
}

func TestBroadcasterMirrorsSuccessfulSendsIntoEventLog(t *testing.T) {
	sender := newStubSender()
	sender.fail["+15550002"] = errors.New("carrier rejected")
	events := &stubAppender{}
	broadcaster := NewBroadcaster(BroadcasterConfig{
		Recipients: &stubDirectory{recipients: []core.Recipient{
			{Name: "Alice", Phone: "+15550001"},
			{Name: "Bob", Phone: "+15550002"},
		}},
		Sender: sender,
		Events: events,
	})

	if err := broadcaster.Broadcast(context.Background(), core.Alert{EventID: "evt-1", Message: "m"}); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	if len(events.records) != 1 {
		t.Fatalf("expected one sms event record, got %d", len(events.records))
	}
	record := events.records[0]
	if record.Kind != core.EventKindSMS {
		t.Fatalf("expected sms kind, got %q", record.Kind)
	}
	if record.Payload["phone"] != "+15550001" {
		t.Fatalf("expected the successful recipient in the payload, got %+v", record.Payload)
	}
}

func TestBroadcasterSkipsBlankPhones(t *testing.T) {
	sender := newStubSender()
	broadcaster := NewBroadcaster(BroadcasterConfig{
		Recipients: &stubDirectory{recipients: []core.Recipient{
			{Name: "Ghost", Phone: "   "},
			{Name: "Alice", Phone: "+15550001"},
		}},
		Sender: sender,
	})

	if err := broadcaster.Broadcast(context.Background(), core.Alert{EventID: "evt-1", Message: "m"}); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("expected the blank phone to be skipped, got %d sends", sender.calls)
	}
}
