package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/psanford/gsmd/internal/logging"
	"github.com/psanford/gsmd/mms"
)

// MemoryStore keeps encoded records in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	inbox   map[string][]byte
	outbox  map[string][]byte
	sent    map[string]string // message id -> outbox id
	reports map[string][][]byte
	now     func() time.Time
	log     *zap.Logger
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(log *zap.Logger) *MemoryStore {
	return &MemoryStore{
		inbox:   make(map[string][]byte),
		outbox:  make(map[string][]byte),
		sent:    make(map[string]string),
		reports: make(map[string][][]byte),
		now:     time.Now,
		log:     logging.OrNop(log),
	}
}

func (s *MemoryStore) SaveInbox(_ context.Context, rec *InboxRecord) error {
	b, err := encode(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbox[rec.ID] = b
	s.log.Debug("inbox saved", zap.String("id", rec.ID), zap.Int("bytes", len(b)))
	return nil
}

func (s *MemoryStore) LoadInbox(_ context.Context, id string) (*InboxRecord, error) {
	s.mu.Lock()
	b, ok := s.inbox[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("inbox %q: %w", id, ErrNotFound)
	}
	return decode[InboxRecord](b)
}

func (s *MemoryStore) SaveOutbox(_ context.Context, rec *OutboxRecord) error {
	b, err := encode(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox[rec.ID] = b
	if rec.MessageID != "" {
		s.sent[rec.MessageID] = rec.ID
	}
	s.log.Debug("outbox saved", zap.String("id", rec.ID), zap.String("message_id", rec.MessageID))
	return nil
}

func (s *MemoryStore) LoadOutbox(_ context.Context, id string) (*OutboxRecord, error) {
	s.mu.Lock()
	b, ok := s.outbox[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("outbox %q: %w", id, ErrNotFound)
	}
	return decode[OutboxRecord](b)
}

func (s *MemoryStore) UpdateDeliveryStatus(_ context.Context, messageID string, state mms.DeliveryState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.sent[messageID]
	if !ok {
		s.log.Warn("delivery status for unknown message", zap.String("message_id", messageID))
		return fmt.Errorf("outbox message %q: %w", messageID, ErrNotFound)
	}
	rec, err := decode[OutboxRecord](s.outbox[id])
	if err != nil {
		return err
	}
	rec.State = state
	rec.UpdatedAt = s.now().UTC()
	b, err := encode(rec)
	if err != nil {
		return err
	}
	s.outbox[id] = b
	return nil
}

func (s *MemoryStore) AppendReport(_ context.Context, rep *Report) error {
	b, err := encode(rep)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[rep.MessageID] = append(s.reports[rep.MessageID], b)
	return nil
}

func (s *MemoryStore) Reports(_ context.Context, messageID string) ([]Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Report
	for _, b := range s.reports[messageID] {
		rep, err := decode[Report](b)
		if err != nil {
			return nil, err
		}
		out = append(out, *rep)
	}
	return out, nil
}
