package jobqueue

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/DevEdward666/study-hub-app/internal/pkg/billing"
	"github.com/DevEdward666/study-hub-app/internal/pkg/env"
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue           *Queue
	reconcileTicker *time.Ticker
	warningTicker   *time.Ticker
	stopCh          chan struct{}
	wg              sync.WaitGroup
	mu              sync.Mutex
	running         bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton). The billing
// engine is captured on first call; later calls ignore the argument.
func GetManager(engine *billing.Service) *Manager {
	managerOnce.Do(func() {
		workerCount := env.GetEnvInt("JOB_WORKER_COUNT", 2)

		globalManager = &Manager{
			queue:  NewQueue(workerCount, engine),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	// Start the job queue
	m.queue.Start()

	reconcileInterval := time.Duration(env.GetEnvInt("SESSION_RECONCILE_INTERVAL_MINUTES", 5)) * time.Minute
	warningInterval := time.Duration(env.GetEnvInt("SESSION_WARNING_INTERVAL_MINUTES", 10)) * time.Minute

	// Start reconcile sweeper, enqueues a sweep job on each tick
	m.reconcileTicker = time.NewTicker(reconcileInterval)
	m.wg.Add(1)
	go m.reconcileWorker()

	// Start subscription warning worker
	m.warningTicker = time.NewTicker(warningInterval)
	m.wg.Add(1)
	go m.warningWorker()

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.reconcileTicker != nil {
		m.reconcileTicker.Stop()
	}
	if m.warningTicker != nil {
		m.warningTicker.Stop()
	}

	// Signal workers to stop
	close(m.stopCh)
	m.stopCh = nil
	m.running = false

	// Wait for background workers to finish
	m.wg.Wait()

	// Stop the job queue
	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// reconcileWorker runs periodically to enqueue stale-session sweeps
func (m *Manager) reconcileWorker() {
	defer m.wg.Done()
	maxHours := env.GetEnvInt("MAX_SESSION_HOURS", 12)
	log.Infof("[JobQueue Manager] Started reconcile worker (maxAge: %d hours)", maxHours)

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Reconcile worker stopping")
			return
		case <-m.reconcileTicker.C:
			payload := SessionReconcileJobPayload{MaxAgeHours: maxHours}
			if _, err := m.queue.EnqueueJob(JobTypeSessionReconcile, payload.ToMap()); err != nil {
				log.Errorf("[JobQueue Manager] Error enqueuing reconcile job: %v", err)
			}
		}
	}
}

// warningWorker runs periodically to enqueue low-hours warning passes
func (m *Manager) warningWorker() {
	defer m.wg.Done()
	window := env.GetEnvInt("SESSION_WARNING_WINDOW_MINUTES", 30)
	log.Infof("[JobQueue Manager] Started warning worker (window: %d minutes)", window)

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Warning worker stopping")
			return
		case <-m.warningTicker.C:
			payload := SessionWarningJobPayload{WindowMinutes: window}
			if _, err := m.queue.EnqueueJob(JobTypeSessionWarning, payload.ToMap()); err != nil {
				log.Errorf("[JobQueue Manager] Error enqueuing warning job: %v", err)
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

// RunReconcileOnce exposes a manual trigger for a single stale-session sweep (admin use).
func (m *Manager) RunReconcileOnce() error {
	maxHours := env.GetEnvInt("MAX_SESSION_HOURS", 12)
	payload := SessionReconcileJobPayload{MaxAgeHours: maxHours}
	_, err := m.queue.EnqueueJob(JobTypeSessionReconcile, payload.ToMap())
	return err
}
