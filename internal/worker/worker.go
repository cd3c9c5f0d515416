package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/job"
	"github.com/akolanti/newschat/internal/metrics"
	"github.com/akolanti/newschat/internal/news"
	"github.com/akolanti/newschat/internal/rag"
	"github.com/akolanti/newschat/pkg/logger_i"
)

var (
	_jobService        *job.Service
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	dispatcherChannel  chan bool
	currentWorkerCount int64
	logger             = logger_i.NewLogger("worker_pool")
	_ragService        rag.Service
	_newsService       news.Service
	minWorkerCount     = config.MinWorkerCount
	idleWorkerTimeout  = config.IdleWorkerTimeout
)

func InitServices(jobService *job.Service, ragService rag.Service, newsService news.Service) {
	_jobService = jobService
	_ragService = ragService
	_newsService = newsService
	dispatcherChannel = jobService.DispatcherChannel
}

func InitWorkerPool(stopWorkerChan chan bool, waitGroup *sync.WaitGroup) {
	stopWorkerChannel = stopWorkerChan
	workerWaitGroup = waitGroup
	logger.Info("Initializing worker pool")
	// the dispatcher counts as a member so Wait covers it too
	waitGroup.Add(1)
	go dispatcher(stopWorkerChan, dispatcherChannel, waitGroup)
}

func dispatcher(stop <-chan bool, signals <-chan bool, wg *sync.WaitGroup) {
	defer wg.Done()
	createWorker()
	logger.Info("Dispatcher started")
	for {
		select {
		case <-stop:
			logger.Info("Dispatcher stopped")
			return
		case <-signals:
			if stopped(stop) {
				return
			}
			if atomic.LoadInt64(&currentWorkerCount) < config.MaxWorkerCount {
				createWorker()
			}
		}
	}
}

// stopped reports whether stop is closed without blocking.
func stopped(stop <-chan bool) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

func createWorker() {
	workerWaitGroup.Add(1)
	count := atomic.AddInt64(&currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	logger.Info("Created new worker", "workerCount", count)
	go worker()
}

func worker() {
	idle := time.NewTimer(idleWorkerTimeout)
	defer idle.Stop()

	for {
		select {
		case currentJob := <-_jobService.JobChannel:
			metrics.DecrementJobsInQueue()
			executeJob(currentJob)
			idle.Reset(idleWorkerTimeout)

		case <-stopWorkerChannel:
			atomic.AddInt64(&currentWorkerCount, -1)
			removeWorker("Stop worker signal received")
			return

		case <-idle.C:
			if tryRetire() {
				removeWorker("Idle worker timeout")
				return
			}
			idle.Reset(idleWorkerTimeout)
		}
	}
}

// tryRetire claims one slot above the minimum pool size.
func tryRetire() bool {
	for {
		n := atomic.LoadInt64(&currentWorkerCount)
		if n <= atomic.LoadInt64(&minWorkerCount) {
			return false
		}
		if atomic.CompareAndSwapInt64(&currentWorkerCount, n, n-1) {
			return true
		}
	}
}
