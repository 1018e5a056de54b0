package computed

import (
	"sync"

	"memo.elv.sh/pkg/state"
	"memo.elv.sh/pkg/track"
	"memo.elv.sh/pkg/vals"
)

// entry is the cache of one computed field. The value and rec fields are
// always consistent: value is what the getter returned when reading last
// through a wrapper that logged into rec. The last field is nil until the
// first successful evaluation.
type entry struct {
	name string
	def  Field

	mu    sync.Mutex
	value any
	last  *state.Snapshot
	rec   *track.Record
	stats Stats
}

// Stats counts what happened on reads of a computed field.
type Stats struct {
	// Evaluations is the number of successful getter calls.
	Evaluations int
	// Hits is the number of reads answered from the cache.
	Hits int
	// Failures is the number of getter calls that returned an error.
	Failures int
}

// get returns the value of the field as of next, recomputing it if a path the
// cached value depends on has changed.
func (e *entry) get(next state.Snapshot, opts *options) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.last != nil && !track.Changed(*e.last, next, e.rec) {
		e.stats.Hits++
		return e.value, nil
	}

	rec := track.NewRecord()
	v, err := e.def.Get(track.Wrap(next, rec))
	if err != nil {
		e.stats.Failures++
		return nil, err
	}
	if opts.purityCheck {
		v2, err := e.def.Get(track.Wrap(next, track.NewRecord()))
		if err != nil {
			e.stats.Failures++
			return nil, err
		}
		if !vals.Equal(v, v2) {
			e.stats.Failures++
			return nil, &ImpureGetterError{e.name, v, v2}
		}
	}
	e.value, e.last, e.rec = v, &next, rec
	e.stats.Evaluations++
	opts.logger.Printf("%s: evaluated at version %d", e.name, next.Version())
	return v, nil
}

func (e *entry) getStats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// dependencies returns the paths the cached value depends on, or nil if the
// field has not been evaluated.
func (e *entry) dependencies() []state.Path {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		return nil
	}
	return e.rec.Paths()
}
