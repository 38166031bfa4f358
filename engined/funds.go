package main

import (
	"log"
	"sync"
)

// memoryLedger is a stand-in funds custody collaborator for local and
// development deployments: it records outbound transfers per principal.
// Production deployments wire a real payment rail behind core.FundsLedger.
type memoryLedger struct {
	mu       sync.Mutex
	balances map[string]uint64
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{balances: make(map[string]uint64)}
}

func (l *memoryLedger) Transfer(to string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[to] += amount
	log.Printf("INFO: funds ledger: transferred %d base units to %s (total %d)", amount, to, l.balances[to])
	return nil
}
