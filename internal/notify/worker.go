package notify

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
)

// Task is a function that represents a background delivery
type Task func(ctx context.Context) error

// Queue runs outbound deliveries off the request path. A full queue
// drops the task: notification failure must never block a request.
type Queue struct {
	taskQueue chan Task
	wg        sync.WaitGroup
	isClosing atomic.Bool // thread-safe value
}

func NewQueue(size int) *Queue {
	q := &Queue{
		taskQueue: make(chan Task, 1000), // Buffer for 1000 pending tasks
	}

	// Start the workers
	for i := 0; i < size; i++ {
		q.wg.Add(1) // add to WaitGroup
		go q.startWorker()
	}

	return q
}

func (q *Queue) startWorker() {
	defer q.wg.Done() // signal when worker finished
	for task := range q.taskQueue {
		ctx := context.Background()
		if err := task(ctx); err != nil {
			// retry once, at-least-once best effort
			if err := task(ctx); err != nil {
				log.Printf("Notification delivery failed: %v", err)
			}
		}
	}
}

func (q *Queue) Submit(t Task) {
	if q.isClosing.Load() {
		log.Println("Warning: task submitted during shutdown, dropping.")
		return
	}
	select {
	case q.taskQueue <- t: // send task to worker pool
	default:
		log.Println("Task queue full, dropping task!")
	}
}

// Shutdown closes the queue and waits for workers to finish
func (q *Queue) Shutdown() {
	q.isClosing.Store(true)
	close(q.taskQueue) // Stop accepting new tasks
	q.wg.Wait()        // Wait for all active workers to finish tasks
}
