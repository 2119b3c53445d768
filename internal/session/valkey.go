package session

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_SESSION_PREFIX = "reviewlens:session:"
	VALKEY_RETRIES        = 3
)

type ValkeyOptions struct {
	Address  string
	Password string
	TLS      bool
}

// NewValkeyClient connects and pings the server before returning.
func NewValkeyClient(ctx context.Context, opts ValkeyOptions) (valkey.Client, error) {
	clientOpts := valkey.ClientOption{
		InitAddress:      []string{opts.Address},
		Password:         opts.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if opts.TLS {
		clientOpts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("[SessionStore] failed to create Valkey client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[SessionStore] failed to ping Valkey: %w", err)
	}

	slog.Info("[SessionStore] Successfully connected to valkey",
		slog.String("address", opts.Address))
	return client, nil
}

// ValkeyStore keeps JSON-encoded session state in Valkey with a TTL.
type ValkeyStore[T any] struct {
	client valkey.Client
	ttl    time.Duration
}

func NewValkeyStore[T any](client valkey.Client, ttl time.Duration) *ValkeyStore[T] {
	return &ValkeyStore[T]{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return VALKEY_SESSION_PREFIX + id
}

func (v *ValkeyStore[T]) ttlSeconds() int64 {
	secs := int64(v.ttl / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

func (v *ValkeyStore[T]) Create(ctx context.Context, state T) (string, error) {
	id := NewID()
	return id, v.Save(ctx, id, state)
}

func (v *ValkeyStore[T]) Get(ctx context.Context, id string) (T, error) {
	var state T
	key := sessionKey(id)

	results := v.doMultiWithRetry(ctx, func() []valkey.Completed {
		return []valkey.Completed{
			v.client.B().Get().Key(key).Build(),
			v.client.B().Expire().Key(key).Seconds(v.ttlSeconds()).Build(),
		}
	})

	data, err := results[0].ToString()
	if valkey.IsValkeyNil(err) {
		return state, ErrSessionNotFound
	}
	if err != nil {
		return state, fmt.Errorf("[SessionStore] failed to read session: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return state, fmt.Errorf("[SessionStore] failed to decode session: %w", err)
	}
	return state, nil
}

func (v *ValkeyStore[T]) Save(ctx context.Context, id string, state T) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("[SessionStore] failed to encode session: %w", err)
	}

	key := sessionKey(id)
	results := v.doMultiWithRetry(ctx, func() []valkey.Completed {
		return []valkey.Completed{
			v.client.B().Set().Key(key).Value(string(data)).Build(),
			v.client.B().Expire().Key(key).Seconds(v.ttlSeconds()).Build(),
		}
	})
	for _, res := range results {
		if err := res.Error(); err != nil {
			return fmt.Errorf("[SessionStore] failed to save session: %w", err)
		}
	}
	return nil
}

func (v *ValkeyStore[T]) Delete(ctx context.Context, id string) error {
	res := v.doWithRetry(ctx, func() valkey.Completed {
		return v.client.B().Del().Key(sessionKey(id)).Build()
	})
	if err := res.Error(); err != nil {
		return fmt.Errorf("[SessionStore] failed to delete session: %w", err)
	}
	return nil
}

// doMultiWithRetry retries the whole batch while a connection-level error is
// reported. Commands are rebuilt per attempt since executed commands are recycled.
func (v *ValkeyStore[T]) doMultiWithRetry(ctx context.Context, build func() []valkey.Completed) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult
	for i := 0; i < VALKEY_RETRIES; i++ {
		results = v.client.DoMulti(ctx, build()...)

		failed := false
		for _, r := range results {
			if err := r.Error(); isConnectionError(err) {
				failed = true
				slog.Warn("[SessionStore] Do Multi failed",
					slog.Int("attempt", i+1),
					slog.String("error", err.Error()))
				break
			}
		}
		if !failed || ctx.Err() != nil {
			break
		}
		time.Sleep(250 * time.Millisecond)
	}
	return results
}

func (v *ValkeyStore[T]) doWithRetry(ctx context.Context, build func() valkey.Completed) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < VALKEY_RETRIES; i++ {
		result = v.client.Do(ctx, build())
		err := result.Error()
		if err == nil || !isConnectionError(err) || ctx.Err() != nil {
			break
		}

		slog.Warn("[SessionStore] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		time.Sleep(250 * time.Millisecond)
	}
	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
