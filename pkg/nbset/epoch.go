// pkg/nbset/epoch.go
package nbset

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// reclaimEvery bounds how many retirements accumulate before a
// reclamation pass is attempted.
const reclaimEvery = 256

// EpochManager provides epoch-based reclamation for nodes unlinked
// from the tree. A spliced-out node may still be referenced by
// searches and helpers that started before the splice, so the
// structure cannot drop it immediately; instead the node is retired
// under the current epoch and released only once every reader that
// could still reach it has left.
//
// The scheme:
//  1. The global epoch is a monotonically increasing counter
//  2. Operations enter an epoch before touching shared nodes and
//     leave when done
//  3. Writers advance the epoch after unlinking
//  4. A retired node is released once no reader remains in an epoch
//     where it was visible
//
// Releasing here means dropping the manager's reference; the Go
// runtime frees the memory once nothing else reaches it.
type EpochManager struct {
	// globalEpoch is bumped by writers. Padded onto its own cache
	// line: it is the hottest word in the manager and sits next to
	// otherwise read-mostly fields.
	globalEpoch uint64
	_           cpu.CacheLinePad

	// nextReaderID hands out unique reader identities.
	nextReaderID uint64
	_            cpu.CacheLinePad

	// readers tracks active readers and their entry epochs.
	readers sync.Map // readerID -> *readerState

	// retired holds nodes unlinked at each epoch, waiting for the
	// readers of that epoch to drain.
	retiredMu    sync.Mutex
	retired      map[uint64][]*node
	retiredCount uint64
	reclaimed    uint64
}

// readerState tracks a single reader's entry epoch.
type readerState struct {
	epoch  uint64
	active int32 // atomic: 1 = active
}

// NewEpochManager creates an epoch manager.
func NewEpochManager() *EpochManager {
	return &EpochManager{
		globalEpoch: 1, // epoch 0 means "not set"
		retired:     make(map[uint64][]*node),
	}
}

// ReaderGuard is an active reader session. It pins every node that
// was reachable when Enter was called until Leave.
type ReaderGuard struct {
	mgr      *EpochManager
	state    *readerState
	readerID uint64
}

// Enter begins a read or mutate operation under the current epoch.
// The returned guard must be released with Leave.
func (e *EpochManager) Enter() *ReaderGuard {
	readerID := atomic.AddUint64(&e.nextReaderID, 1)
	state := &readerState{}

	state.epoch = atomic.LoadUint64(&e.globalEpoch)
	atomic.StoreInt32(&state.active, 1)

	e.readers.Store(readerID, state)

	return &ReaderGuard{
		mgr:      e,
		state:    state,
		readerID: readerID,
	}
}

// Leave ends the session, allowing nodes retired since Enter to be
// reclaimed.
func (g *ReaderGuard) Leave() {
	if g == nil || g.state == nil {
		return
	}
	atomic.StoreInt32(&g.state.active, 0)
	g.mgr.readers.Delete(g.readerID)
}

// Epoch returns the epoch this guard entered at.
func (g *ReaderGuard) Epoch() uint64 {
	if g == nil || g.state == nil {
		return 0
	}
	return g.state.epoch
}

// Advance increments the global epoch and returns the new value.
// Called after an unlink becomes visible.
func (e *EpochManager) Advance() uint64 {
	return atomic.AddUint64(&e.globalEpoch, 1)
}

// CurrentEpoch returns the current global epoch.
func (e *EpochManager) CurrentEpoch() uint64 {
	return atomic.LoadUint64(&e.globalEpoch)
}

// Retire hands an unlinked node to the manager. The node is released
// once every reader that might still hold it has left. Retirement
// periodically triggers a reclamation pass.
func (e *EpochManager) Retire(n *node) {
	if n == nil {
		return
	}
	epoch := atomic.LoadUint64(&e.globalEpoch)

	e.retiredMu.Lock()
	e.retired[epoch] = append(e.retired[epoch], n)
	e.retiredCount++
	due := e.retiredCount%reclaimEvery == 0
	e.retiredMu.Unlock()

	// Readers that entered at or before the retirement epoch may
	// still hold the node; bumping the epoch lets the next pass see
	// it as reclaimable once they drain.
	e.Advance()

	if due {
		e.TryReclaim()
	}
}

// TryReclaim releases every retired node whose epoch precedes all
// active readers. Returns the number of nodes released.
func (e *EpochManager) TryReclaim() int {
	minEpoch := e.findMinActiveEpoch()

	e.retiredMu.Lock()
	defer e.retiredMu.Unlock()

	reclaimed := 0
	for epoch, nodes := range e.retired {
		if epoch < minEpoch {
			reclaimed += len(nodes)
			delete(e.retired, epoch)
		}
	}
	e.reclaimed += uint64(reclaimed)
	return reclaimed
}

// findMinActiveEpoch returns the minimum entry epoch among active
// readers, or the current epoch if none are active.
func (e *EpochManager) findMinActiveEpoch() uint64 {
	minEpoch := atomic.LoadUint64(&e.globalEpoch)

	e.readers.Range(func(_, value interface{}) bool {
		state := value.(*readerState)
		if atomic.LoadInt32(&state.active) == 1 && state.epoch < minEpoch {
			minEpoch = state.epoch
		}
		return true
	})

	return minEpoch
}

// PendingCount returns the number of nodes waiting to be reclaimed.
func (e *EpochManager) PendingCount() int {
	e.retiredMu.Lock()
	defer e.retiredMu.Unlock()

	count := 0
	for _, nodes := range e.retired {
		count += len(nodes)
	}
	return count
}

// ReclaimedCount returns the total number of nodes released so far.
func (e *EpochManager) ReclaimedCount() uint64 {
	e.retiredMu.Lock()
	defer e.retiredMu.Unlock()
	return e.reclaimed
}

// ActiveReaderCount returns the number of sessions currently inside
// an operation.
func (e *EpochManager) ActiveReaderCount() int {
	count := 0
	e.readers.Range(func(_, value interface{}) bool {
		state := value.(*readerState)
		if atomic.LoadInt32(&state.active) == 1 {
			count++
		}
		return true
	})
	return count
}
