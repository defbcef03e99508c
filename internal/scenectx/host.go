package scenectx

import "context"

// Host is the single external collaborator the Analyzer consumes (spec §6):
// a read-only call returning the host's current mode, active object,
// selections, per-object dimensions, topology, materials, and modifier
// names. No other host call is made by the core — the wire protocol behind
// this interface is explicitly out of scope (spec §1).
type Host interface {
	FetchScene(ctx context.Context) (Snapshot, error)
}

// Snapshot is the raw shape returned by the host RPC, before the Analyzer
// derives ProportionInfo from it.
type Snapshot struct {
	Mode            Mode
	ActiveObject    string
	SelectedObjects []string
	Objects         []ObjectInfo
	Topology        *TopologyInfo
	Materials       []string
	Modifiers       []string
}
