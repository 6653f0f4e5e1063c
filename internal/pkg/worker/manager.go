package worker

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	metrics "github.com/MamadouBacke/Scolaria/internal/pkg/metrics/counter"
	"github.com/MamadouBacke/Scolaria/internal/pkg/plans"
)

const (
	counterFlushInterval = 5 * time.Second
	downgradeInterval    = 1 * time.Hour
)

// Manager runs the periodic background tasks: login counter flushes
// and the scheduled plan-change sweep.
type Manager struct {
	plans              *plans.Service
	counterFlushTicker *time.Ticker
	downgradeTicker    *time.Ticker
	stopCh             chan struct{}
	wg                 sync.WaitGroup
	mu                 sync.Mutex
	running            bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global background task manager (singleton).
// The plan service must be passed on the first call.
func GetManager(planService *plans.Service) *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			plans:  planService,
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// Start starts the background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[Worker Manager] Starting background tasks")

	m.counterFlushTicker = time.NewTicker(counterFlushInterval)
	m.wg.Add(1)
	go m.counterFlushWorker()

	m.downgradeTicker = time.NewTicker(downgradeInterval)
	m.wg.Add(1)
	go m.downgradeWorker()

	log.Info("[Worker Manager] Started successfully")
}

// Stop stops the background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[Worker Manager] Stopping background tasks...")

	if m.counterFlushTicker != nil {
		m.counterFlushTicker.Stop()
	}
	if m.downgradeTicker != nil {
		m.downgradeTicker.Stop()
	}

	// Workers read stopCh without holding the mutex; the channel must
	// stay non-nil until every select has observed the close.
	close(m.stopCh)
	m.running = false

	m.wg.Wait()

	log.Info("[Worker Manager] Stopped successfully")
}

// counterFlushWorker periodically flushes pending login counters from Redis to DB
func (m *Manager) counterFlushWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			log.Info("[Worker Manager] Counter flush worker stopping")
			return
		case <-m.counterFlushTicker.C:
			if err := metrics.FlushAll(); err != nil {
				log.Errorf("[Worker Manager] Counter flush error: %v", err)
			}
		}
	}
}

// downgradeWorker periodically applies scheduled plan changes that have come due
func (m *Manager) downgradeWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			log.Info("[Worker Manager] Downgrade worker stopping")
			return
		case <-m.downgradeTicker.C:
			applied, errs := m.plans.ApplyDueDowngrades()
			if applied > 0 {
				log.Infof("[Worker Manager] Applied %d scheduled plan changes", applied)
			}
			for _, err := range errs {
				log.Errorf("[Worker Manager] Plan change sweep error: %v", err)
			}
		}
	}
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
