package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/event"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/clock"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/outcome"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/override"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/settlement"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/wager"
	"golang.org/x/sync/errgroup"
)

// Config tunes the scheduler
type Config struct {
	Modes       []entity.GameMode
	Tick        time.Duration
	HistorySize int
	// SeedCount outcomes are generated for the preceding rounds of a mode with no history
	SeedCount int
}

// DefaultConfig runs every mode on a 1 Hz tick
func DefaultConfig() Config {
	return Config{
		Modes:       entity.AllModes(),
		Tick:        time.Second,
		HistorySize: 100,
		SeedCount:   20,
	}
}

type modeState struct {
	lastProcessed int64 // -1 until the first boundary is handled
	prediction    int
	hasPrediction bool
	history       []entity.RoundOutcome // newest first
	unsettled     []entity.RoundOutcome // rounds whose last settlement pass left wagers pending
}

// Scheduler closes rounds on their boundaries: it draws the outcome,
// records it and settles the round's wagers
type Scheduler struct {
	clock        *clock.Clock
	generator    *outcome.Generator
	overrides    *override.Channel
	outcomes     persistence.OutcomeRepository
	settler      *settlement.Settler
	book         *wager.Book
	locks        *wager.ModeLocks
	publisher    event.Publisher
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	cfg          Config

	mu     sync.RWMutex
	states map[entity.GameMode]*modeState
}

// New creates a scheduler
func New(
	clk *clock.Clock,
	generator *outcome.Generator,
	overrides *override.Channel,
	outcomes persistence.OutcomeRepository,
	settler *settlement.Settler,
	book *wager.Book,
	locks *wager.ModeLocks,
	publisher event.Publisher,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg Config,
) *Scheduler {
	if len(cfg.Modes) == 0 {
		cfg.Modes = entity.AllModes()
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultConfig().HistorySize
	}

	states := make(map[entity.GameMode]*modeState, len(cfg.Modes))
	for _, m := range cfg.Modes {
		states[m] = &modeState{lastProcessed: -1}
	}

	return &Scheduler{
		clock:        clk,
		generator:    generator,
		overrides:    overrides,
		outcomes:     outcomes,
		settler:      settler,
		book:         book,
		locks:        locks,
		publisher:    publisher,
		timeProvider: timeProvider,
		logger:       logger,
		cfg:          cfg,
		states:       states,
	}
}

// Load restores each mode's history from the store, seeding an empty one
func (s *Scheduler) Load(ctx context.Context) error {
	now := s.timeProvider.Now()
	for _, mode := range s.cfg.Modes {
		recent, err := s.outcomes.ListRecent(ctx, mode, s.cfg.HistorySize)
		if err != nil {
			return err
		}
		if len(recent) == 0 && s.cfg.SeedCount > 0 {
			if recent, err = s.seed(ctx, mode, now); err != nil {
				return err
			}
		}

		history := make([]entity.RoundOutcome, 0, len(recent))
		for _, o := range recent {
			history = append(history, *o)
		}

		s.mu.Lock()
		s.states[mode].history = history
		s.mu.Unlock()

		s.logger.Info("Round history loaded", map[string]any{"mode": mode, "outcomes": len(history)})
	}
	return nil
}

// seed generates outcomes for the rounds before the last finished one, so
// the first boundary still draws normally
func (s *Scheduler) seed(ctx context.Context, mode entity.GameMode, now time.Time) ([]*entity.RoundOutcome, error) {
	current := clock.Index(mode, now)
	seeded := make([]*entity.RoundOutcome, 0, s.cfg.SeedCount)
	for i := 0; i < s.cfg.SeedCount; i++ {
		index := current - 2 - int64(i)
		o, err := s.generator.Generate(mode, clock.RoundID(mode, index), nil)
		if err != nil {
			return nil, err
		}
		o.DrawnAt = time.Unix((index+1)*mode.Seconds(), 0).UTC()
		if err := s.outcomes.Create(ctx, o); err != nil && !errs.IsDuplicateReferenceError(err) {
			return nil, err
		}
		seeded = append(seeded, o)
	}
	return seeded, nil
}

// Run loads history and processes ticks until ctx is done
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		return err
	}

	ticker := s.timeProvider.NewTicker(coreport.Duration(s.cfg.Tick))
	defer ticker.Stop()

	s.logger.Info("Round scheduler started", map[string]any{"modes": len(s.cfg.Modes), "tick": s.cfg.Tick.String()})
	s.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Round scheduler stopped", nil)
			return nil
		case <-ticker.C():
			s.Tick(ctx)
		}
	}
}

// Tick processes every mode concurrently against one reading of the clock
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.timeProvider.Now()

	var g errgroup.Group
	for _, mode := range s.cfg.Modes {
		g.Go(func() error {
			s.processMode(ctx, mode, now)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scheduler) processMode(ctx context.Context, mode entity.GameMode, now time.Time) {
	unlock := s.locks.Lock(mode)
	defer unlock()

	s.resettle(ctx, mode)

	finished := clock.Index(mode, now) - 1

	s.mu.RLock()
	st := s.states[mode]
	last, prediction, hasPrediction := st.lastProcessed, st.prediction, st.hasPrediction
	s.mu.RUnlock()

	if last >= finished {
		if !hasPrediction {
			s.predict(mode)
		}
		return
	}
	if last >= 0 && finished-last > 1 {
		s.logger.Warn("Skipped round boundaries", map[string]any{
			"mode":    mode,
			"skipped": finished - last - 1,
			"from":    clock.RoundID(mode, last+1),
			"to":      clock.RoundID(mode, finished-1),
		})
	}

	roundID := clock.RoundID(mode, finished)
	o, fresh, err := s.resolveOutcome(ctx, mode, roundID, prediction, hasPrediction)
	if err != nil {
		s.logger.Error("Failed to resolve round outcome", map[string]any{"mode": mode, "round_id": roundID, "error": err.Error()})
		return
	}

	s.mu.Lock()
	st.lastProcessed = finished
	if fresh {
		st.history = append([]entity.RoundOutcome{*o}, st.history...)
		if len(st.history) > s.cfg.HistorySize {
			st.history = st.history[:s.cfg.HistorySize]
		}
	}
	s.mu.Unlock()

	if fresh {
		s.publisher.Publish(ctx, event.OutcomeDrawn{Outcome: *o})
	}

	if report := s.settler.Settle(context.WithoutCancel(ctx), *o); !report.Complete() {
		s.markUnsettled(mode, *o)
	}
	s.book.RemoveThrough(mode, finished)
	s.predict(mode)
}

// resettle runs another settlement pass over rounds that still have
// pending wagers. Callers hold the mode lock.
func (s *Scheduler) resettle(ctx context.Context, mode entity.GameMode) {
	s.mu.RLock()
	retry := s.states[mode].unsettled
	s.mu.RUnlock()
	if len(retry) == 0 {
		return
	}

	var still []entity.RoundOutcome
	for _, o := range retry {
		if report := s.settler.Settle(context.WithoutCancel(ctx), o); !report.Complete() {
			still = append(still, o)
		}
	}

	s.mu.Lock()
	s.states[mode].unsettled = still
	s.mu.Unlock()

	if len(still) < len(retry) {
		s.logger.Info("Retried round settlements", map[string]any{
			"mode":      mode,
			"completed": len(retry) - len(still),
			"remaining": len(still),
		})
	}
}

// markUnsettled queues a round for resettle, keeping at most HistorySize rounds
func (s *Scheduler) markUnsettled(mode entity.GameMode, o entity.RoundOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.states[mode]
	st.unsettled = append(st.unsettled, o)
	if over := len(st.unsettled) - s.cfg.HistorySize; over > 0 {
		for _, dropped := range st.unsettled[:over] {
			s.logger.Error("Giving up on round settlement", map[string]any{"mode": mode, "round_id": dropped.RoundID})
		}
		st.unsettled = st.unsettled[over:]
	}
}

// Unsettled returns the round IDs of the mode that still await a settlement retry
func (s *Scheduler) Unsettled(mode entity.GameMode) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[mode]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(st.unsettled))
	for _, o := range st.unsettled {
		ids = append(ids, o.RoundID)
	}
	return ids
}

// resolveOutcome reuses a persisted outcome and otherwise draws a new one
// from the override or the prediction. fresh reports a new record.
func (s *Scheduler) resolveOutcome(ctx context.Context, mode entity.GameMode, roundID string, prediction int, hasPrediction bool) (*entity.RoundOutcome, bool, error) {
	existing, err := s.outcomes.GetByRoundID(ctx, roundID)
	if err == nil {
		return existing, false, nil
	}
	if !errs.IsNotFoundError(err) {
		return nil, false, err
	}

	var o *entity.RoundOutcome
	if forced := s.overrides.Take(mode); forced != nil {
		o, err = s.generator.Generate(mode, roundID, forced)
	} else if hasPrediction {
		o, err = entity.NewRoundOutcome(roundID, mode, prediction, false, s.timeProvider.Now())
	} else {
		o, err = s.generator.Generate(mode, roundID, nil)
	}
	if err != nil {
		return nil, false, err
	}

	if err := s.outcomes.Create(ctx, o); err != nil {
		if errs.IsDuplicateReferenceError(err) {
			existing, getErr := s.outcomes.GetByRoundID(ctx, roundID)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	s.logger.Info("Round outcome drawn", map[string]any{
		"mode":     mode,
		"round_id": roundID,
		"number":   o.Number,
		"forced":   o.Forced,
	})
	return o, true, nil
}

func (s *Scheduler) predict(mode entity.GameMode) {
	n := s.generator.Draw()
	s.mu.Lock()
	st := s.states[mode]
	st.prediction, st.hasPrediction = n, true
	s.mu.Unlock()
}

// History returns up to limit outcomes of the mode, newest first
func (s *Scheduler) History(mode entity.GameMode, limit int) []entity.RoundOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[mode]
	if !ok {
		return nil
	}
	if limit <= 0 || limit > len(st.history) {
		limit = len(st.history)
	}
	out := make([]entity.RoundOutcome, limit)
	copy(out, st.history[:limit])
	return out
}

// Prediction returns the pre-drawn number for the open round of the mode
func (s *Scheduler) Prediction(mode entity.GameMode) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[mode]
	if !ok {
		return 0, false
	}
	return st.prediction, st.hasPrediction
}
