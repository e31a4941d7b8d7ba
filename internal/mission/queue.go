// Package mission turns an ordered list of directives into tick-by-tick
// execution. Each node has a runner owning a queue of pending work; the
// runner activates one engine at a time and retires it when it completes.
package mission

import (
	"fly-and-charge/sim/internal/directive"
	"fly-and-charge/sim/internal/engine"
)

// entry is one pending unit of work. Plan entries carry a directive and get
// their engine built at activation, when the node's pose is current. Spawned
// entries carry an engine that already exists, e.g. the charge-return chain
// an exchange produces.
type entry struct {
	d      directive.Directive
	engine engine.Engine
}

func (e entry) partOfMission() bool {
	if e.engine != nil {
		return e.engine.PartOfMission()
	}
	return true
}

// queue is a deque of pending entries. Spawned engines are prepended so they
// run before the rest of the plan; everything else appends.
type queue struct {
	entries []entry
}

func (q *queue) pushDirective(d directive.Directive) {
	q.entries = append(q.entries, entry{d: d})
}

func (q *queue) prependEngines(engines []engine.Engine) {
	if len(engines) == 0 {
		return
	}
	front := make([]entry, 0, len(engines)+len(q.entries))
	for _, e := range engines {
		if e != nil {
			front = append(front, entry{engine: e})
		}
	}
	q.entries = append(front, q.entries...)
}

func (q *queue) popFront() (entry, bool) {
	if len(q.entries) == 0 {
		return entry{}, false
	}
	head := q.entries[0]
	q.entries[0] = entry{}
	q.entries = q.entries[1:]
	return head, true
}

func (q *queue) len() int {
	return len(q.entries)
}

// dropMissionEntries removes every queued entry that counts toward the
// mission, keeping synthesized work like a charge-return chain. Returns how
// many entries were dropped.
func (q *queue) dropMissionEntries() int {
	kept := q.entries[:0]
	dropped := 0
	for _, e := range q.entries {
		if e.partOfMission() {
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(q.entries); i++ {
		q.entries[i] = entry{}
	}
	q.entries = kept
	return dropped
}
