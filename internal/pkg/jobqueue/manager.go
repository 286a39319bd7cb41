package jobqueue

import (
	"strconv"
	"sync"

	"github.com/RegioJobs/RegioJobs/internal/pkg/cache"
	"github.com/RegioJobs/RegioJobs/internal/pkg/env"
	"github.com/RegioJobs/RegioJobs/internal/pkg/mail"
)

var (
	globalQueue *Queue
	queueOnce   sync.Once
)

// GetGlobalQueue returns the process-wide notification retry queue (singleton).
func GetGlobalQueue() *Queue {
	queueOnce.Do(func() {
		workers := DefaultWorkers
		if raw := env.GetEnv("JOBQUEUE_WORKERS", ""); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				workers = n
			}
		}
		globalQueue = NewQueue(cache.GetClient(), mail.SendMail, workers)
	})
	return globalQueue
}
