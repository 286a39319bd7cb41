package jobqueue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// Redis keys
	NotificationQueueKey = "notify_queue"
	DeadLetterKey        = "notify_dead"

	// Job settings
	DefaultMaxRetries = 3
	DefaultWorkers    = 2
	RetryDelay        = 30 * time.Second
	popTimeout        = 5 * time.Second
)

// NotificationJob is one pending email redelivery. Jobs only exist for
// notifications whose state change was already committed; losing one never
// loses billing data.
type NotificationJob struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

// SendFunc delivers one notification.
type SendFunc func(to, subject, body string) error

// Queue retries failed notification dispatches using a Redis list. Jobs
// that exhaust their retries move to a dead-letter list for inspection.
type Queue struct {
	client     *redis.Client
	send       SendFunc
	workers    int
	retryDelay time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewQueue creates a notification retry queue.
func NewQueue(client *redis.Client, send SendFunc, workers int) *Queue {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Queue{
		client:     client,
		send:       send,
		workers:    workers,
		retryDelay: RetryDelay,
		stopCh:     make(chan struct{}),
	}
}

// EnqueueNotification queues a failed dispatch for redelivery.
func (q *Queue) EnqueueNotification(to, subject, body string) error {
	job := NotificationJob{
		ID:        uuid.NewString(),
		To:        to,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now(),
	}
	return q.push(NotificationQueueKey, job)
}

func (q *Queue) push(key string, job NotificationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.LPush(context.Background(), key, data).Err()
}

// Start launches the queue workers.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}
	q.running = true
	log.Infof("[JobQueue] Starting %d notification workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop signals the workers and waits for them to drain.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.stopCh)
	q.mu.Unlock()

	q.wg.Wait()
	log.Info("[JobQueue] Notification workers stopped")
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()

	for {
		select {
		case <-q.stopCh:
			return
		default:
		}

		res, err := q.client.BRPop(context.Background(), popTimeout, NotificationQueueKey).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			log.Errorf("[JobQueue] worker %d: pop failed: %v", id, err)
			time.Sleep(popTimeout)
			continue
		}
		// BRPop returns [key, value]
		if len(res) < 2 {
			continue
		}

		var job NotificationJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			log.Errorf("[JobQueue] worker %d: dropping malformed job: %v", id, err)
			continue
		}
		q.process(id, job)
	}
}

func (q *Queue) process(workerID int, job NotificationJob) {
	err := q.send(job.To, job.Subject, job.Body)
	if err == nil {
		log.Infof("[JobQueue] notification %s delivered to %s after %d retry attempt(s)", job.ID, job.To, job.Attempts+1)
		return
	}

	job.Attempts++
	if job.Attempts >= DefaultMaxRetries {
		log.Errorf("[JobQueue] notification %s to %s failed permanently: %v", job.ID, job.To, err)
		if pushErr := q.push(DeadLetterKey, job); pushErr != nil {
			log.Errorf("[JobQueue] dead-lettering notification %s failed: %v", job.ID, pushErr)
		}
		return
	}

	log.Warnf("[JobQueue] worker %d: notification %s failed (attempt %d/%d), requeueing: %v",
		workerID, job.ID, job.Attempts, DefaultMaxRetries, err)
	time.Sleep(q.retryDelay)
	if pushErr := q.push(NotificationQueueKey, job); pushErr != nil {
		log.Errorf("[JobQueue] requeueing notification %s failed: %v", job.ID, pushErr)
	}
}
