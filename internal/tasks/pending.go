package tasks

import (
	"sort"
	"sync"
	"time"
)

// ReadHandle identifies one in-flight read.
type ReadHandle struct {
	Seq     uint64
	Started time.Time
}

// PendingReads maps file names to their in-flight reads. Safe for concurrent use.
type PendingReads struct {
	mu    sync.Mutex
	reads map[string]ReadHandle
}

// NewPendingReads creates an empty registry.
func NewPendingReads() *PendingReads {
	return &PendingReads{reads: make(map[string]ReadHandle)}
}

// Start records a read of name under seq, replacing any earlier read of the same name.
//
// Returns the replaced handle, if there was one.
func (p *PendingReads) Start(name string, seq uint64) (ReadHandle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev, ok := p.reads[name]
	p.reads[name] = ReadHandle{Seq: seq, Started: time.Now()}
	return prev, ok
}

// Finish removes the entry for name if it still belongs to seq.
//
// A completion from a replaced read leaves the newer entry in place and returns false.
func (p *PendingReads) Finish(name string, seq uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, ok := p.reads[name]
	if !ok || h.Seq != seq {
		return false
	}
	delete(p.reads, name)
	return true
}

// Get returns the in-flight read for name.
func (p *PendingReads) Get(name string) (ReadHandle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, ok := p.reads[name]
	return h, ok
}

// Len returns the number of in-flight reads.
func (p *PendingReads) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.reads)
}

// Names returns the file names with reads in flight, sorted.
func (p *PendingReads) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.reads))
	for name := range p.reads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
