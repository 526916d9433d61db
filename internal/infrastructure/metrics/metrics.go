package metrics

import (
	"expvar"
)

// Traversal metrics. Counters are expvar-published so any collaborator can
// scrape them from /debug/vars or the server's Prometheus endpoint.
var (
	transitionsTotal = new(expvar.Int)
	forksTotal       = new(expvar.Int)
	prunesTotal      = new(expvar.Int)
	statesStarted    = new(expvar.Int)
	statesCompleted  = new(expvar.Int)
	hookFailures     = new(expvar.Int)
)

// Snapshot store metrics keyed by backend kind (memory, postgres, sqlite).
var (
	snapshotsSaved  = expvar.NewMap("flowr_snapshots_saved_total")
	snapshotsLoaded = expvar.NewMap("flowr_snapshots_loaded_total")
)

func init() {
	expvar.Publish("flowr_transitions_total", transitionsTotal)
	expvar.Publish("flowr_forks_total", forksTotal)
	expvar.Publish("flowr_prunes_total", prunesTotal)
	expvar.Publish("flowr_states_started_total", statesStarted)
	expvar.Publish("flowr_states_completed_total", statesCompleted)
	expvar.Publish("flowr_hook_failures_total", hookFailures)
}

// Traversal helpers
func IncTransitions()    { transitionsTotal.Add(1) }
func IncForks()          { forksTotal.Add(1) }
func IncPrunes()         { prunesTotal.Add(1) }
func IncStatesStarted()  { statesStarted.Add(1) }
func IncStatesComplete() { statesCompleted.Add(1) }
func IncHookFailures()   { hookFailures.Add(1) }

// Snapshot store helpers
func SnapshotSaved(kind string)  { snapshotsSaved.Add(kind, 1) }
func SnapshotLoaded(kind string) { snapshotsLoaded.Add(kind, 1) }
