package synchronizer

import (
	"sync"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/cancellation"
)

type runVal struct {
	runID string
	flag  *cancellation.Flag
}

// pendingRunStore tracks the running synchronizations by progress token.
type pendingRunStore struct {
	pendingRuns map[string]runVal
	mu          sync.Mutex
}

// setPendingRun registers a run and returns the flag raised when the client cancels it.
// ok is false when a run is already registered under token.
func (p *pendingRunStore) setPendingRun(token, runID string) (flag *cancellation.Flag, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pendingRuns == nil {
		p.pendingRuns = make(map[string]runVal)
	}
	if _, exists := p.pendingRuns[token]; exists {
		return nil, false
	}

	flag = &cancellation.Flag{}
	p.pendingRuns[token] = runVal{runID: runID, flag: flag}
	return flag, true
}

// cancel raises the flag of the run registered under token.
func (p *pendingRunStore) cancel(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	val, ok := p.pendingRuns[token]
	if !ok {
		return false
	}
	val.flag.Cancel()
	return true
}

func (p *pendingRunStore) deletePendingRun(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.pendingRuns[token]; !ok {
		return false
	}
	delete(p.pendingRuns, token)
	return true
}

// cancelAll raises the flags of every pending run.
func (p *pendingRunStore) cancelAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, val := range p.pendingRuns {
		val.flag.Cancel()
	}
}

func (p *pendingRunStore) runIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]string, 0, len(p.pendingRuns))
	for _, val := range p.pendingRuns {
		ids = append(ids, val.runID)
	}
	return ids
}
