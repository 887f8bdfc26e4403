package service

import (
	"sync"
	"sync/atomic"
	"time"

	"clinic-scheduling-api/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// Interval for cleaning up stale mutexes
	lockCleanupInterval = time.Minute
)

// SlotLocker serializes booking writers for one provider-day.
type SlotLocker interface {
	// Lock blocks until the provider-day is free and returns its unlock func.
	Lock(providerID uuid.UUID, date time.Time) (unlock func())
}

// SlotLockService hands out one in-process mutex per (provider, date).
//
// It narrows contention before the database advisory lock is taken, so
// concurrent requests for the same provider-day on one instance queue here
// instead of holding pool connections while they wait.
//
// Lock Ordering (to prevent deadlocks):
// 1. Acquire provider-day mutex FIRST
// 2. Then open the transaction and take the advisory lock
type SlotLockService struct {
	log     *logrus.Logger
	idleTTL time.Duration

	// Per provider-day mutex
	locks sync.Map // map[string]*mutexWithTimestamp

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix nanoseconds
}

// NewSlotLockService starts the background cleanup goroutine.
// Call Stop() during graceful shutdown.
func NewSlotLockService(log *logrus.Logger, idleTTL time.Duration) *SlotLockService {
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	svc := &SlotLockService{
		log:      log,
		idleTTL:  idleTTL,
		stopChan: make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupLoop()

	return svc
}

// Stop gracefully shuts down the service.
// Safe to call multiple times.
func (s *SlotLockService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("SlotLockService stopped")
	}
}

func (s *SlotLockService) Lock(providerID uuid.UUID, date time.Time) func() {
	key := slotLockKey(providerID, date)
	for {
		mt := s.getMutex(key)
		mt.mu.Lock()
		// cleanup may have evicted mt between LoadOrStore and Lock
		if cur, ok := s.locks.Load(key); ok && cur == mt {
			return func() {
				mt.lastUsed.Store(time.Now().UnixNano())
				mt.mu.Unlock()
			}
		}
		mt.mu.Unlock()
	}
}

// Size returns the number of tracked provider-days.
func (s *SlotLockService) Size() int {
	n := 0
	s.locks.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func slotLockKey(providerID uuid.UUID, date time.Time) string {
	return providerID.String() + "|" + entity.FormatDate(date)
}

func (s *SlotLockService) getMutex(key string) *mutexWithTimestamp {
	mt, _ := s.locks.LoadOrStore(key, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().UnixNano())
	return result
}

func (s *SlotLockService) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(lockCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Slot lock cleanup goroutine stopping")
			return
		case <-ticker.C:
			s.cleanupStale(time.Now())
		}
	}
}

// cleanupStale removes idle mutexes, using TryLock so a held or contended
// mutex is never dropped. lastUsed is re-checked under the lock.
func (s *SlotLockService) cleanupStale(now time.Time) int {
	cutoff := now.Add(-s.idleTTL).UnixNano()
	var cleaned int

	s.locks.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoff {
				s.locks.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		s.log.Debugf("Cleaned up %d stale slot locks", cleaned)
	}
	return cleaned
}
