package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/psanford/gsmd/internal/logging"
	"github.com/psanford/gsmd/mms"
)

const (
	defaultPrefix    = "gsmd:"
	maxUpdateRetries = 5
)

// RedisStore keeps msgpack records in Redis:
//
//	<prefix>inbox:<id>          record
//	<prefix>outbox:<id>         record
//	<prefix>sent:<message id>   outbox id
//	<prefix>reports:<message id> list of records
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
	log    *zap.Logger
}

var _ Store = (*RedisStore)(nil)

type RedisOptions struct {
	Addr   string
	DB     int
	Prefix string
	Log    *zap.Logger
}

func NewRedisStore(opts RedisOptions) *RedisStore {
	cli := redis.NewClient(&redis.Options{Addr: opts.Addr, DB: opts.DB})
	return NewRedisStoreWithClient(cli, opts.Prefix, opts.Log)
}

func NewRedisStoreWithClient(rdb redis.UniversalClient, prefix string, log *zap.Logger) *RedisStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix, now: time.Now, log: logging.OrNop(log)}
}

func (s *RedisStore) Close() error {
	if err := s.rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}

func (s *RedisStore) key(kind, id string) string {
	return s.prefix + kind + ":" + id
}

func (s *RedisStore) get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return b, err
}

func (s *RedisStore) SaveInbox(ctx context.Context, rec *InboxRecord) error {
	b, err := encode(rec)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key("inbox", rec.ID), b, 0).Err(); err != nil {
		return err
	}
	s.log.Debug("inbox saved", zap.String("id", rec.ID), zap.Int("bytes", len(b)))
	return nil
}

func (s *RedisStore) LoadInbox(ctx context.Context, id string) (*InboxRecord, error) {
	b, err := s.get(ctx, s.key("inbox", id))
	if err != nil {
		return nil, err
	}
	return decode[InboxRecord](b)
}

func (s *RedisStore) SaveOutbox(ctx context.Context, rec *OutboxRecord) error {
	b, err := encode(rec)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.key("outbox", rec.ID), b, 0)
		if rec.MessageID != "" {
			p.Set(ctx, s.key("sent", rec.MessageID), rec.ID, 0)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Debug("outbox saved", zap.String("id", rec.ID), zap.String("message_id", rec.MessageID))
	return nil
}

func (s *RedisStore) LoadOutbox(ctx context.Context, id string) (*OutboxRecord, error) {
	b, err := s.get(ctx, s.key("outbox", id))
	if err != nil {
		return nil, err
	}
	return decode[OutboxRecord](b)
}

func (s *RedisStore) UpdateDeliveryStatus(ctx context.Context, messageID string, state mms.DeliveryState) error {
	id, err := s.rdb.Get(ctx, s.key("sent", messageID)).Result()
	if err == redis.Nil {
		s.log.Warn("delivery status for unknown message", zap.String("message_id", messageID))
		return fmt.Errorf("outbox message %q: %w", messageID, ErrNotFound)
	}
	if err != nil {
		return err
	}

	key := s.key("outbox", id)
	update := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		if err != nil {
			return err
		}
		rec, err := decode[OutboxRecord](b)
		if err != nil {
			return err
		}
		rec.State = state
		rec.UpdatedAt = s.now().UTC()
		nb, err := encode(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, nb, 0)
			return nil
		})
		return err
	}

	// optimistic update, retried while another writer races on key
	for i := 0; i < maxUpdateRetries; i++ {
		err := s.rdb.Watch(ctx, update, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		s.log.Debug("outbox update raced", zap.String("key", key), zap.Int("attempt", i+1))
	}
	return fmt.Errorf("%s: %d attempts: %w", key, maxUpdateRetries, redis.TxFailedErr)
}

func (s *RedisStore) AppendReport(ctx context.Context, rep *Report) error {
	b, err := encode(rep)
	if err != nil {
		return err
	}
	return s.rdb.RPush(ctx, s.key("reports", rep.MessageID), b).Err()
}

func (s *RedisStore) Reports(ctx context.Context, messageID string) ([]Report, error) {
	raw, err := s.rdb.LRange(ctx, s.key("reports", messageID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Report, 0, len(raw))
	for _, r := range raw {
		rep, err := decode[Report]([]byte(r))
		if err != nil {
			return nil, err
		}
		out = append(out, *rep)
	}
	return out, nil
}
