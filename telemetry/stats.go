package telemetry

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brunoscheufler/pocketnotes/store"
	"github.com/dustin/go-humanize"
)

const topAccountsLimit = 5

// StatsCollector counts store operations. The counting methods are no-ops on
// a nil collector.
type StatsCollector struct {
	accountStore store.AccountStore
	noteStore    store.NoteStore

	accountReads  atomic.Int64
	accountWrites atomic.Int64
	noteReads     atomic.Int64
	noteWrites    atomic.Int64
	blobCopies    atomic.Int64
	blobBytes     atomic.Int64
	failures      atomic.Int64

	opsPerSec atomic.Int64

	startTime time.Time

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

type Stats struct {
	AccountCount  int
	NoteCount     int
	TopAccounts   []store.AccountStats
	AccountReads  int64
	AccountWrites int64
	NoteReads     int64
	NoteWrites    int64
	BlobCopies    int64
	BlobBytes     string
	Failures      int64
	OpsPerSec     int64
	Uptime        time.Duration
	GoRoutines    int
	MemoryUsage   string
	LastUpdated   time.Time
}

func NewStatsCollector(accountStore store.AccountStore, noteStore store.NoteStore) *StatsCollector {
	ctx, cancel := context.WithCancel(context.Background())
	return &StatsCollector{
		accountStore: accountStore,
		noteStore:    noteStore,
		startTime:    time.Now(),
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (sc *StatsCollector) IncrementAccountRead() {
	if sc == nil {
		return
	}
	sc.accountReads.Add(1)
}

func (sc *StatsCollector) IncrementAccountWrite() {
	if sc == nil {
		return
	}
	sc.accountWrites.Add(1)
}

func (sc *StatsCollector) IncrementNoteRead() {
	if sc == nil {
		return
	}
	sc.noteReads.Add(1)
}

func (sc *StatsCollector) IncrementNoteWrite() {
	if sc == nil {
		return
	}
	sc.noteWrites.Add(1)
}

// TrackBlobCopy records one persisted image of the given size
func (sc *StatsCollector) TrackBlobCopy(size int64) {
	if sc == nil {
		return
	}
	sc.blobCopies.Add(1)
	sc.blobBytes.Add(size)
}

func (sc *StatsCollector) IncrementFailure() {
	if sc == nil {
		return
	}
	sc.failures.Add(1)
}

func (sc *StatsCollector) totalOps() int64 {
	return sc.accountReads.Load() + sc.accountWrites.Load() +
		sc.noteReads.Load() + sc.noteWrites.Load() + sc.blobCopies.Load()
}

// CollectStats snapshots the counters; store totals are best effort
func (sc *StatsCollector) CollectStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		AccountReads:  sc.accountReads.Load(),
		AccountWrites: sc.accountWrites.Load(),
		NoteReads:     sc.noteReads.Load(),
		NoteWrites:    sc.noteWrites.Load(),
		BlobCopies:    sc.blobCopies.Load(),
		BlobBytes:     humanize.IBytes(uint64(sc.blobBytes.Load())),
		Failures:      sc.failures.Load(),
		OpsPerSec:     sc.opsPerSec.Load(),
		Uptime:        time.Since(sc.startTime),
		GoRoutines:    runtime.NumGoroutine(),
		LastUpdated:   time.Now(),
	}

	if sc.accountStore != nil && sc.noteStore != nil {
		all, err := store.GetTopAccountsByNotes(ctx, sc.accountStore, sc.noteStore, 0)
		if err == nil {
			stats.AccountCount = len(all)
			for _, a := range all {
				stats.NoteCount += a.NoteCount
			}
			if len(all) > topAccountsLimit {
				all = all[:topAccountsLimit]
			}
			stats.TopAccounts = all
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.MemoryUsage = humanize.IBytes(m.Alloc)

	return stats, nil
}

// Stop gracefully shuts down the stats collector
func (sc *StatsCollector) Stop() {
	sc.stopOnce.Do(sc.cancel)
}

func (sc *StatsCollector) StartRateCalculation() {
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		lastTotal := sc.totalOps()
		for {
			select {
			case <-sc.ctx.Done():
				return
			case <-ticker.C:
				current := sc.totalOps()
				sc.opsPerSec.Store(current - lastTotal)
				lastTotal = current
			}
		}
	}()
}
