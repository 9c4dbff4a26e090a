package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Opener dials a backend.
type Opener func(ctx context.Context) (Store, error)

// Provider hands out a connected Store.
type Provider interface {
	Get(ctx context.Context) (Store, error)
}

// Handle is a lazily connected Store shared across requests. The first Get
// dials; a failed Ping drops the connection so the next Get dials again.
// Concurrent callers share one dial and each waits only as long as its own
// context allows.
type Handle struct {
	open        Opener
	log         zerolog.Logger
	dialTimeout time.Duration

	dial singleflight.Group
	mu   sync.Mutex
	cur  Store
}

// DefaultDialTimeout bounds a dial that outlives the caller that started it.
const DefaultDialTimeout = 15 * time.Second

func NewHandle(open Opener, log zerolog.Logger) *Handle {
	return &Handle{open: open, log: log, dialTimeout: DefaultDialTimeout}
}

func (h *Handle) current() Store {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cur
}

func (h *Handle) Get(ctx context.Context) (Store, error) {
	if s := h.current(); s != nil {
		return s, nil
	}
	if h.open == nil {
		return nil, errors.New("store: no database configured")
	}

	ch := h.dial.DoChan("open", func() (interface{}, error) {
		if s := h.current(); s != nil {
			return s, nil
		}
		// the dial serves every waiter, so it is not tied to the first caller
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.dialTimeout)
		defer cancel()
		s, err := h.open(dctx)
		if err != nil {
			h.log.Warn().Err(err).Msg("database connect failed")
			return nil, err
		}
		h.log.Info().Msg("database connected")
		h.mu.Lock()
		h.cur = s
		h.mu.Unlock()
		return s, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Store), nil
	}
}

// Ping connects if needed and checks the connection. On failure the
// connection is closed and forgotten.
func (h *Handle) Ping(ctx context.Context) error {
	s, err := h.Get(ctx)
	if err != nil {
		return err
	}
	if err := s.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("database ping failed, dropping connection")
		h.reset(s)
		return err
	}
	return nil
}

func (h *Handle) reset(s Store) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cur == s {
		_ = s.Close()
		h.cur = nil
	}
}

func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cur == nil {
		return nil
	}
	err := h.cur.Close()
	h.cur = nil
	return err
}

type static struct{ s Store }

func (p static) Get(context.Context) (Store, error) { return p.s, nil }

// Static wraps an already open Store.
func Static(s Store) Provider {
	return static{s: s}
}
