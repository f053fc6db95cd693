package downloader

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Phase identifies a stage of the per-track download pipeline.
// Phases only move forward; the publisher drops out-of-order events.
type Phase uint8

const (
	// PhaseDownloadStart - the track download is about to begin.
	PhaseDownloadStart Phase = iota
	// PhaseDownload - audio bytes are being transferred.
	PhaseDownload
	// PhaseLyrics - lyrics are being fetched.
	PhaseLyrics
	// PhaseCover - cover art is being fetched.
	PhaseCover
	// PhaseTagging - metadata is being written into the file.
	PhaseTagging
	// PhaseComplete - the track finished, successfully or not.
	PhaseComplete
)

// String returns the wire name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseDownloadStart:
		return "download_start"
	case PhaseDownload:
		return "download"
	case PhaseLyrics:
		return "lyrics"
	case PhaseCover:
		return "cover"
	case PhaseTagging:
		return "tagging"
	case PhaseComplete:
		return "complete"
	default:
		return fmt.Sprintf("unknown: %d", p)
	}
}

// ProgressEvent describes the state of one track at one moment.
// Loaded and Total reset between tracks.
type ProgressEvent struct {
	// TrackID identifies the track the event belongs to.
	TrackID string
	// Phase is the current pipeline stage.
	Phase Phase
	// Loaded is the number of bytes transferred so far.
	Loaded int64
	// Total is the expected byte count, zero when unknown.
	Total int64
	// Speed is the transfer rate in bytes per second, zero outside PhaseDownload.
	Speed float64
}

// ProgressFunc consumes progress events.
type ProgressFunc func(ProgressEvent)

// progressPublisher fans events out to subscribed consumers and enforces
// that a track's phase never moves backwards, so interleaved goroutines
// can publish without coordinating.
type progressPublisher struct {
	mu        sync.Mutex
	consumers []ProgressFunc
	phases    map[string]Phase
}

func newProgressPublisher() *progressPublisher {
	return &progressPublisher{
		mu:        sync.Mutex{},
		consumers: nil,
		phases:    make(map[string]Phase),
	}
}

// Subscribe registers a consumer for all subsequent events.
func (p *progressPublisher) Subscribe(consumer ProgressFunc) {
	if consumer == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.consumers = append(p.consumers, consumer)
}

// Publish delivers the event to every consumer, dropping events whose
// phase precedes the track's current one. PhaseComplete clears the
// track's phase record so its ID can be downloaded again later.
func (p *progressPublisher) Publish(event ProgressEvent) {
	p.mu.Lock()

	current, seen := p.phases[event.TrackID]
	if seen && event.Phase < current {
		p.mu.Unlock()

		return
	}

	if event.Phase == PhaseComplete {
		delete(p.phases, event.TrackID)
	} else {
		p.phases[event.TrackID] = event.Phase
	}

	consumers := make([]ProgressFunc, len(p.consumers))
	copy(consumers, p.consumers)

	p.mu.Unlock()

	for _, consumer := range consumers {
		consumer(event)
	}
}

// publishTo delivers the event to subscribed consumers and, when set,
// to the per-call consumer as well.
func (p *progressPublisher) publishTo(extra ProgressFunc, event ProgressEvent) {
	p.Publish(event)

	if extra != nil {
		extra(event)
	}
}

// defaultThrottleInterval is the minimum spacing between updates a
// throttled consumer forwards for one track.
const defaultThrottleInterval = 2 * time.Second

// NewThrottledConsumer wraps a consumer so it sees at most one event per
// interval per track. Phase transitions and terminal events always pass
// through, so consumers never miss the end of a track.
func NewThrottledConsumer(consumer ProgressFunc, interval time.Duration) ProgressFunc {
	if interval <= 0 {
		interval = defaultThrottleInterval
	}

	var (
		mu         sync.Mutex
		lastEmit   = make(map[string]time.Time)
		lastPhases = make(map[string]Phase)
	)

	return func(event ProgressEvent) {
		mu.Lock()

		now := time.Now()
		phaseChanged := lastPhases[event.TrackID] != event.Phase
		terminal := event.Phase == PhaseComplete

		if !terminal && !phaseChanged && now.Sub(lastEmit[event.TrackID]) < interval {
			mu.Unlock()

			return
		}

		if terminal {
			delete(lastEmit, event.TrackID)
			delete(lastPhases, event.TrackID)
		} else {
			lastEmit[event.TrackID] = now
			lastPhases[event.TrackID] = event.Phase
		}

		mu.Unlock()

		consumer(event)
	}
}

// progressWriter counts bytes flowing through it and reports transfer
// progress. It throttles its own reporting so hot copy loops do not
// flood the publisher.
type progressWriter struct {
	trackID    string
	total      int64
	loaded     int64
	startedAt  time.Time
	lastReport time.Time
	report     func(ProgressEvent)
}

// progressWriterReportInterval bounds how often the writer emits events.
const progressWriterReportInterval = 250 * time.Millisecond

func newProgressWriter(trackID string, total int64, report func(ProgressEvent)) *progressWriter {
	now := time.Now()

	return &progressWriter{
		trackID:    trackID,
		total:      total,
		loaded:     0,
		startedAt:  now,
		lastReport: now,
		report:     report,
	}
}

// Write implements io.Writer.
func (w *progressWriter) Write(p []byte) (int, error) {
	w.loaded += int64(len(p))

	now := time.Now()
	if now.Sub(w.lastReport) < progressWriterReportInterval && w.loaded != w.total {
		return len(p), nil
	}

	w.lastReport = now

	speed := float64(0)
	if elapsed := now.Sub(w.startedAt).Seconds(); elapsed > 0 {
		speed = float64(w.loaded) / elapsed
	}

	if w.report != nil {
		w.report(ProgressEvent{
			TrackID: w.trackID,
			Phase:   PhaseDownload,
			Loaded:  w.loaded,
			Total:   w.total,
			Speed:   speed,
		})
	}

	return len(p), nil
}

var _ io.Writer = (*progressWriter)(nil)
