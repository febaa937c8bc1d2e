package sol

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type (
	watcherState uint8

	// Watcher keeps a recent blockhash warm so transfers skip the
	// getLatestBlockhash round trip while the cached value is fresh.
	Watcher struct {
		client   *Client
		interval time.Duration
		maxAge   time.Duration
		now      func() time.Time
		logger   zerolog.Logger

		hash          solana.Hash
		hashUpdatedAt time.Time
		hashLock      sync.RWMutex

		ctx    context.Context
		cancel context.CancelFunc
		wg     sync.WaitGroup

		stateMu sync.Mutex
		state   watcherState
	}
)

const (
	_ watcherState = iota
	watcherStatePending
	watcherStateOpen
	watcherStateClosed
)

const (
	DefaultWatchInterval = time.Second
	DefaultBlockhashAge  = 3 * time.Second
)

func NewWatcher(client *Client, now func() time.Time, logger zerolog.Logger) *Watcher {
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		client:   client,
		interval: DefaultWatchInterval,
		maxAge:   DefaultBlockhashAge,
		now:      now,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		state:    watcherStatePending,
	}
}

func (w *Watcher) Start() error {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()

	if w.state != watcherStatePending {
		return errors.New("cannot Start() watcher that has already been started")
	}
	w.state = watcherStateOpen

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.WatchBlockHash(w.interval)
	}()
	return nil
}

func (w *Watcher) Close() error {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()

	if w.state != watcherStateOpen {
		return errors.New("cannot Close() watcher that isn't open")
	}
	w.state = watcherStateClosed
	w.cancel()
	w.wg.Wait()
	return nil
}

// Refresh fetches the latest blockhash once and caches it.
func (w *Watcher) Refresh(ctx context.Context) (solana.Hash, error) {
	hash, err := w.client.LatestBlockhash(ctx)
	if err != nil {
		return solana.Hash{}, err
	}
	w.hashLock.Lock()
	w.hash = hash
	w.hashUpdatedAt = w.now()
	w.hashLock.Unlock()
	return hash, nil
}

func (w *Watcher) WatchBlockHash(interval time.Duration) {
	for {
		select {
		case <-time.After(interval):
		case <-w.ctx.Done():
			return
		}

		if _, err := w.Refresh(w.ctx); err != nil {
			w.logger.Warn().Err(err).Msg("refresh blockhash")
		}
	}
}

// GetRecentBlockHash returns the cached blockhash if it is younger than the
// maximum age.
func (w *Watcher) GetRecentBlockHash() (solana.Hash, bool) {
	w.hashLock.RLock()
	defer w.hashLock.RUnlock()
	if w.hash.IsZero() || w.now().Sub(w.hashUpdatedAt) > w.maxAge {
		return solana.Hash{}, false
	}
	return w.hash, true
}
