package inspector

import (
	"sort"

	"github.com/google/uuid"

	"github.com/mj1618/ui-inspector/internal/bridge"
	"github.com/mj1618/ui-inspector/internal/model"
)

// FetchState is the progress of one lazy child fetch.
type FetchState int

const (
	// FetchNone means there is no entry for the key.
	FetchNone FetchState = iota
	// FetchRequested waits for the next dispatch pass.
	FetchRequested
	// FetchDispatched has a GatherChildren request on the way.
	FetchDispatched
	// Fetched holds children waiting to be merged.
	Fetched
)

func (s FetchState) String() string {
	switch s {
	case FetchRequested:
		return "requested"
	case FetchDispatched:
		return "dispatched"
	case Fetched:
		return "fetched"
	default:
		return "none"
	}
}

type fetchKey struct {
	drill   string
	runtime string
}

func keyOf(id model.DrillID, rid model.RuntimeID) fetchKey {
	return fetchKey{drill: id.Key(), runtime: rid.Key()}
}

type fetchEntry struct {
	seq       uint64
	drill     model.DrillID
	runtime   model.RuntimeID
	state     FetchState
	requestID uuid.UUID
	children  []model.Node
}

// FetchCoordinator tracks lazy child fetches keyed by (DrillID, RuntimeID).
// There is at most one outstanding fetch per key. Replies for keys that
// are no longer dispatched are dropped.
type FetchCoordinator struct {
	entries map[fetchKey]*fetchEntry
	byID    map[uuid.UUID]fetchKey
	seq     uint64
}

// NewFetchCoordinator returns an empty coordinator.
func NewFetchCoordinator() *FetchCoordinator {
	return &FetchCoordinator{
		entries: make(map[fetchKey]*fetchEntry),
		byID:    make(map[uuid.UUID]fetchKey),
	}
}

// Request asks for the children of a node. It does nothing if the key is
// already tracked and returns the key's state.
func (f *FetchCoordinator) Request(id model.DrillID, rid model.RuntimeID) FetchState {
	k := keyOf(id, rid)
	if e, ok := f.entries[k]; ok {
		return e.state
	}
	f.seq++
	f.entries[k] = &fetchEntry{seq: f.seq, drill: id, runtime: rid, state: FetchRequested}
	return FetchRequested
}

// DispatchPending sends one GatherChildren per requested key, oldest
// first, and marks it dispatched. A key whose send fails stays requested
// and is retried on the next pass. It returns the number sent.
func (f *FetchCoordinator) DispatchPending(send func(bridge.Request) (uuid.UUID, error)) int {
	var pending []*fetchEntry
	for _, e := range f.entries {
		if e.state == FetchRequested {
			pending = append(pending, e)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].seq < pending[j].seq })

	sent := 0
	for _, e := range pending {
		id, err := send(bridge.GatherChildren{DrillID: e.drill, RuntimeID: e.runtime})
		if err != nil {
			continue
		}
		e.state = FetchDispatched
		e.requestID = id
		f.byID[id] = keyOf(e.drill, e.runtime)
		sent++
	}
	return sent
}

// Receive records the reply to request reqID. Only a key in FetchDispatched
// under that same request moves to Fetched; anything else is ignored and
// reported false.
func (f *FetchCoordinator) Receive(reqID uuid.UUID, id model.DrillID, rid model.RuntimeID, children []model.Node) bool {
	e, ok := f.entries[keyOf(id, rid)]
	if !ok || e.state != FetchDispatched || e.requestID != reqID {
		return false
	}
	delete(f.byID, reqID)
	e.state = Fetched
	e.children = children
	return true
}

// Fail drops the entry dispatched under a request id, returning its
// address. Unknown ids report false.
func (f *FetchCoordinator) Fail(requestID uuid.UUID) (model.DrillID, bool) {
	k, ok := f.byID[requestID]
	if !ok {
		return model.Unknown(), false
	}
	delete(f.byID, requestID)
	e, ok := f.entries[k]
	if !ok || e.state != FetchDispatched || e.requestID != requestID {
		return model.Unknown(), false
	}
	delete(f.entries, k)
	return e.drill, true
}

// TakeFetched removes a Fetched entry and returns its children.
func (f *FetchCoordinator) TakeFetched(id model.DrillID, rid model.RuntimeID) ([]model.Node, bool) {
	k := keyOf(id, rid)
	e, ok := f.entries[k]
	if !ok || e.state != Fetched {
		return nil, false
	}
	delete(f.entries, k)
	return e.children, true
}

// FetchedKey is the address of a completed fetch.
type FetchedKey struct {
	DrillID   model.DrillID
	RuntimeID model.RuntimeID
}

// Ready lists the keys in Fetched, oldest first.
func (f *FetchCoordinator) Ready() []FetchedKey {
	var ready []*fetchEntry
	for _, e := range f.entries {
		if e.state == Fetched {
			ready = append(ready, e)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].seq < ready[j].seq })
	keys := make([]FetchedKey, len(ready))
	for i, e := range ready {
		keys[i] = FetchedKey{DrillID: e.drill, RuntimeID: e.runtime}
	}
	return keys
}

// Abandon forgets a key. A reply still on its way will be dropped.
func (f *FetchCoordinator) Abandon(id model.DrillID, rid model.RuntimeID) {
	k := keyOf(id, rid)
	if e, ok := f.entries[k]; ok {
		delete(f.byID, e.requestID)
		delete(f.entries, k)
	}
}

// Reset forgets every key.
func (f *FetchCoordinator) Reset() {
	f.entries = make(map[fetchKey]*fetchEntry)
	f.byID = make(map[uuid.UUID]fetchKey)
}

// State reports the state of a key.
func (f *FetchCoordinator) State(id model.DrillID, rid model.RuntimeID) FetchState {
	if e, ok := f.entries[keyOf(id, rid)]; ok {
		return e.state
	}
	return FetchNone
}

// Len is the number of tracked keys.
func (f *FetchCoordinator) Len() int { return len(f.entries) }
