package tag

//go:generate $MOCKGEN -source=queue.go -destination=mocks/processor_mock.go

import (
	"context"
	"sync"

	"github.com/anorlov/qobuz-grabber/internal/logger"
)

// Processor defines the interface for writing metadata tags to audio files.
type Processor interface {
	// WriteTags writes the requested metadata into the request's track file.
	WriteTags(ctx context.Context, req *WriteRequest) error
}

// defaultQueueCapacity bounds how many pending writes may pile up
// before submitters block.
const defaultQueueCapacity = 64

// job pairs a write request with the channel its submitter awaits.
type job struct {
	ctx    context.Context //nolint:containedctx // The worker needs the submitter's context for logging and cancellation.
	req    *WriteRequest
	result chan error
}

// QueuedProcessor serializes all tag writes through a single worker
// goroutine. Serializing keeps rewrites of large FLAC files from
// competing for disk bandwidth and guarantees a file is never rewritten
// by two goroutines at once. A failed write is reported only to its
// submitter; the worker itself never stops on errors.
type QueuedProcessor struct {
	jobs     chan *job
	workerWG sync.WaitGroup
	// mu guards closed so no submission can race Close into sending
	// on a closed channel.
	mu     sync.RWMutex
	closed bool
}

// NewQueuedProcessor creates a QueuedProcessor and starts its worker.
// Callers must Close it to release the worker.
func NewQueuedProcessor() *QueuedProcessor {
	q := &QueuedProcessor{
		jobs:     make(chan *job, defaultQueueCapacity),
		workerWG: sync.WaitGroup{},
		mu:       sync.RWMutex{},
		closed:   false,
	}

	q.workerWG.Add(1)
	go q.run()

	return q
}

// WriteTags submits a write and waits for its completion.
// The returned error belongs to this write alone.
func (q *QueuedProcessor) WriteTags(ctx context.Context, req *WriteRequest) error {
	if req.TrackPath == "" {
		return ErrEmptyTrackPath
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	j := &job{
		ctx: ctx,
		req: req,
		// Buffered so the worker never blocks on a submitter
		// that gave up waiting.
		result: make(chan error, 1),
	}

	q.mu.RLock()

	if q.closed {
		q.mu.RUnlock()

		return ErrQueueClosed
	}

	select {
	case q.jobs <- j:
		q.mu.RUnlock()
	case <-ctx.Done():
		q.mu.RUnlock()

		return ctx.Err()
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting writes and waits for queued ones to finish.
func (q *QueuedProcessor) Close() {
	q.mu.Lock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
	}

	q.mu.Unlock()

	q.workerWG.Wait()
}

// run is the single worker loop. Individual failures are logged and
// reported to their submitters without stopping the worker.
func (q *QueuedProcessor) run() {
	defer q.workerWG.Done()

	for j := range q.jobs {
		err := q.process(j)
		if err != nil {
			logger.Errorf(j.ctx, "Failed to write tags to '%s': %v", j.req.TrackPath, err)
		}

		j.result <- err
	}
}

// process executes a single write, converting panics into errors so a
// malformed file can never take the worker down.
func (q *QueuedProcessor) process(j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(j.ctx, "Panic while tagging '%s': %v", j.req.TrackPath, r)

			err = ErrTagWritePanic
		}
	}()

	switch j.req.Format {
	case FormatFLAC:
		return writeFLACTags(j.req)
	case FormatMP3:
		return writeMP3Tags(j.ctx, j.req)
	case FormatUnknown:
		return ErrUnknownFormat
	default:
		return ErrUnknownFormat
	}
}
