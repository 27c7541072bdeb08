package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/bankofshash/support-ai/internal/conversation"
	"github.com/bankofshash/support-ai/pkg/logging"
)

// ReplyMessenger delivers the orchestrator's reply back to the transport the
// message arrived on.
type ReplyMessenger interface {
	SendReply(ctx context.Context, resp *conversation.Response) error
}

const (
	defaultWorkerCount = 2
	defaultWaitSeconds = 2
	defaultBatchSize   = 5
)

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// Worker consumes chat jobs from the queue, runs them through the
// orchestrator, and pushes replies back through the messenger.
type Worker struct {
	orchestrator *conversation.Orchestrator
	queue        queueClient
	messenger    ReplyMessenger
	logger       *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup
}

// NewWorker wires a worker pool.
func NewWorker(orchestrator *conversation.Orchestrator, queue queueClient, messenger ReplyMessenger, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if orchestrator == nil {
		panic("worker: orchestrator cannot be nil")
	}
	if queue == nil {
		panic("worker: queue cannot be nil")
	}
	if messenger == nil {
		panic("worker: messenger cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Worker{
		orchestrator: orchestrator,
		queue:        queue,
		messenger:    messenger,
		logger:       logger,
		cfg:          cfg,
	}
}

// Start launches the consumer goroutines. They run until ctx is canceled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("chat worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("chat worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("failed to receive chat jobs", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg queueMessage) {
	var payload queuePayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		w.logger.Error("failed to decode chat job", "error", err)
		w.deleteMessage(msg.ReceiptHandle)
		return
	}

	resp, err := w.orchestrator.ProcessMessage(ctx, payload.Message)
	if err != nil {
		w.logger.Error("chat job failed",
			"job_id", payload.ID,
			"conversation_id", payload.Message.ConversationID,
			"error", err,
		)
		w.deleteMessage(msg.ReceiptHandle)
		return
	}

	if err := w.messenger.SendReply(ctx, resp); err != nil {
		w.logger.Error("failed to deliver reply",
			"job_id", payload.ID,
			"conversation_id", resp.ConversationID,
			"error", err,
		)
	}
	w.deleteMessage(msg.ReceiptHandle)
}

func (w *Worker) deleteMessage(receiptHandle string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.queue.Delete(ctx, receiptHandle); err != nil {
		w.logger.Error("failed to delete chat job", "error", err)
	}
}
