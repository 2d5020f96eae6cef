package playback

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPreRoll is the pause inserted before each announcement so the audio
// does not overlap the preceding on-screen alert.
const DefaultPreRoll = 4 * time.Second

// Item is a single pending announcement on a client's queue.
type Item struct {
	PaymentID string
	DonorName string
	Text      string
	AudioURL  string
}

// PlayFunc performs one playback of the referenced audio resource. It blocks
// until playback finishes or fails; there is no cancellation mid-playback.
type PlayFunc func(ctx context.Context, audioURL string) error

// Scheduler serializes announcement playback for one connected client.
//
// Until Unlock is called, items accumulate and nothing plays. Afterwards the
// queue drains strictly in FIFO order with at most one playback in flight;
// completion and failure both advance the queue, so a bad audio resource can
// never stall it.
type Scheduler struct {
	mu       sync.Mutex
	queue    []Item
	playing  bool
	unlocked bool
	preRoll  time.Duration

	play       PlayFunc
	onFinished func(Item)
	logger     *zap.Logger
}

// NewScheduler creates a scheduler. onFinished may be nil; it is invoked
// after every playback attempt, successful or not.
func NewScheduler(play PlayFunc, onFinished func(Item), logger *zap.Logger) *Scheduler {
	return &Scheduler{
		preRoll:    DefaultPreRoll,
		play:       play,
		onFinished: onFinished,
		logger:     logger,
	}
}

// SetPreRoll overrides the pre-roll delay. Call before playback starts.
func (s *Scheduler) SetPreRoll(d time.Duration) {
	s.mu.Lock()
	s.preRoll = d
	s.mu.Unlock()
}

// Enqueue adds an announcement to the queue. Items without an audio
// reference are dropped here; they stay visible in activity logs upstream
// but never reach playback.
func (s *Scheduler) Enqueue(item Item) {
	if item.AudioURL == "" {
		s.logger.Warn("Dropping announcement without audio reference",
			zap.String("paymentID", item.PaymentID),
			zap.String("donor", item.DonorName))
		return
	}

	s.mu.Lock()
	s.queue = append(s.queue, item)
	s.mu.Unlock()

	s.playNext()
}

// Unlock permits playback. Browsers require a user gesture before audio may
// start; headless clients unlock immediately.
func (s *Scheduler) Unlock() {
	s.mu.Lock()
	s.unlocked = true
	s.mu.Unlock()

	s.playNext()
}

// Pending returns the number of queued announcements not yet started.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// playNext dequeues the head entry unless playback is already in flight,
// the queue is empty, or audio is still locked.
func (s *Scheduler) playNext() {
	s.mu.Lock()
	if s.playing || !s.unlocked || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}

	item := s.queue[0]
	s.queue = s.queue[1:]
	s.playing = true
	preRoll := s.preRoll
	s.mu.Unlock()

	go s.run(item, preRoll)
}

func (s *Scheduler) run(item Item, preRoll time.Duration) {
	time.Sleep(preRoll)

	if err := s.play(context.Background(), item.AudioURL); err != nil {
		// Failure counts as completion: the queue must keep moving
		s.logger.Warn("Playback failed, advancing queue",
			zap.String("paymentID", item.PaymentID),
			zap.Error(err))
	}

	if s.onFinished != nil {
		s.onFinished(item)
	}

	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()

	s.playNext()
}
