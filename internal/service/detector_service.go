package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-skin-detector/internal/analyzer"
	apperrors "go-skin-detector/internal/errors"
	"go-skin-detector/internal/intake"
	"go-skin-detector/internal/logger"
	"go-skin-detector/internal/observer"
	"go-skin-detector/internal/repository"
	"go-skin-detector/pkg/models"
)

// DetectorService drives one skin-detector lifecycle per session
type DetectorService interface {
	// OpenSession returns the session with the given id, or a new one when the
	// id is empty or unknown
	OpenSession(ctx context.Context, sessionID string) (models.SessionSnapshot, error)

	// SelectImage reads an upload and makes it the session's image. An empty
	// upload leaves the session as it was.
	SelectImage(ctx context.Context, sessionID string, r io.Reader, filename string) (models.SessionSnapshot, error)

	Analyze(ctx context.Context, sessionID string) (models.SessionSnapshot, error)
	Reset(ctx context.Context, sessionID string) (models.SessionSnapshot, error)
	Snapshot(ctx context.Context, sessionID string) (models.SessionSnapshot, error)

	// Subscribe streams the session's lifecycle events until cancel is called.
	// A subscribed session is kept alive; the channel is closed when the
	// session is evicted or the service closes.
	Subscribe(ctx context.Context, sessionID string) (events <-chan models.LifecycleEvent, cancel func(), err error)

	// Sweep evicts sessions idle for longer than the session TTL
	Sweep(ctx context.Context) (int, error)

	Stats() models.StatsResponse

	// Start runs the event loop and the idle-session sweeper until Close
	Start(ctx context.Context)
	Close()
}

// Dependencies are the collaborators of the service
type Dependencies struct {
	Sessions  repository.SessionRepository
	Loader    intake.Loader
	Loop      *analyzer.EventLoop
	Scheduler analyzer.Scheduler
	Verdicts  analyzer.VerdictSource
	Publisher *observer.EventPublisher
	Metrics   *observer.MetricsObserver
}

// Settings tune timing and session lifetime
type Settings struct {
	Analysis      analyzer.Options
	SessionTTL    time.Duration
	SweepInterval time.Duration
	// Now defaults to time.Now
	Now func() time.Time
}

type detectorService struct {
	deps     Dependencies
	settings Settings

	mu            sync.Mutex
	subscriptions map[string]map[*observer.ChannelObserver]func()

	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewDetectorService creates a new detector service
func NewDetectorService(deps Dependencies, settings Settings) DetectorService {
	if settings.Now == nil {
		settings.Now = time.Now
	}
	if settings.SessionTTL <= 0 {
		settings.SessionTTL = 30 * time.Minute
	}
	if settings.SweepInterval <= 0 {
		settings.SweepInterval = time.Minute
	}
	return &detectorService{
		deps:          deps,
		settings:      settings,
		subscriptions: make(map[string]map[*observer.ChannelObserver]func()),
		done:          make(chan struct{}),
	}
}

func (s *detectorService) OpenSession(ctx context.Context, sessionID string) (models.SessionSnapshot, error) {
	if sessionID != "" {
		session, err := s.deps.Sessions.Get(ctx, sessionID)
		if err == nil {
			return s.snapshotOf(session.Machine)
		}
		if !errors.Is(err, repository.ErrSessionNotFound) {
			return models.SessionSnapshot{}, apperrors.NewInternalError("failed to load session", err)
		}
	}

	id := uuid.NewString()
	machine := analyzer.NewMachine(id, s.deps.Loop, s.deps.Scheduler, s.deps.Verdicts, s.deps.Publisher, s.settings.Analysis)
	if err := s.deps.Sessions.Save(ctx, &repository.Session{ID: id, Machine: machine}); err != nil {
		return models.SessionSnapshot{}, apperrors.NewInternalError("failed to store session", err)
	}

	logger.WithField("session_id", id).Debug("Session opened")
	return s.snapshotOf(machine)
}

func (s *detectorService) SelectImage(ctx context.Context, sessionID string, r io.Reader, filename string) (models.SessionSnapshot, error) {
	machine, err := s.machine(ctx, sessionID)
	if err != nil {
		return models.SessionSnapshot{}, err
	}

	// reading happens on the caller's goroutine, never on the event loop
	img, err := s.deps.Loader.Load(ctx, r, filename)
	if err != nil {
		return models.SessionSnapshot{}, apperrors.NewValidationError("failed to read image", err)
	}

	snap, err := machine.SelectImage(img)
	if err != nil {
		return snap, mapMachineError(err)
	}
	return snap, nil
}

func (s *detectorService) Analyze(ctx context.Context, sessionID string) (models.SessionSnapshot, error) {
	machine, err := s.machine(ctx, sessionID)
	if err != nil {
		return models.SessionSnapshot{}, err
	}

	snap, err := machine.Analyze()
	if err != nil {
		return snap, mapMachineError(err)
	}
	return snap, nil
}

func (s *detectorService) Reset(ctx context.Context, sessionID string) (models.SessionSnapshot, error) {
	machine, err := s.machine(ctx, sessionID)
	if err != nil {
		return models.SessionSnapshot{}, err
	}

	snap, err := machine.Reset()
	if err != nil {
		return snap, mapMachineError(err)
	}
	return snap, nil
}

func (s *detectorService) Snapshot(ctx context.Context, sessionID string) (models.SessionSnapshot, error) {
	machine, err := s.machine(ctx, sessionID)
	if err != nil {
		return models.SessionSnapshot{}, err
	}
	return s.snapshotOf(machine)
}

func (s *detectorService) Subscribe(ctx context.Context, sessionID string) (<-chan models.LifecycleEvent, func(), error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	sub := observer.NewChannelObserver(sessionID, 8)
	session.Watch()
	s.deps.Publisher.Subscribe(sub)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.deps.Publisher.Unsubscribe(sub)
			sub.Close()
			session.Unwatch()

			s.mu.Lock()
			delete(s.subscriptions[sessionID], sub)
			if len(s.subscriptions[sessionID]) == 0 {
				delete(s.subscriptions, sessionID)
			}
			s.mu.Unlock()
		})
	}

	s.mu.Lock()
	if s.subscriptions[sessionID] == nil {
		s.subscriptions[sessionID] = make(map[*observer.ChannelObserver]func())
	}
	s.subscriptions[sessionID][sub] = cancel
	s.mu.Unlock()

	return sub.Events(), cancel, nil
}

// closeSubscriptions ends the streams of one session, or of all sessions when
// sessionID is empty
func (s *detectorService) closeSubscriptions(sessionID string) {
	var cancels []func()
	s.mu.Lock()
	for id, subs := range s.subscriptions {
		if sessionID != "" && id != sessionID {
			continue
		}
		for _, cancel := range subs {
			cancels = append(cancels, cancel)
		}
	}
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

func (s *detectorService) Sweep(ctx context.Context) (int, error) {
	cutoff := s.settings.Now().Add(-s.settings.SessionTTL)
	expired, err := s.deps.Sessions.Sweep(ctx, cutoff)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to sweep sessions", err)
	}

	for _, session := range expired {
		s.closeSubscriptions(session.ID)
		if err := session.Machine.Discard(); err != nil {
			logger.WithError(err).WithField("session_id", session.ID).Warn("Failed to discard session")
		}
	}
	if len(expired) > 0 {
		logger.WithFields(map[string]interface{}{
			"evicted": len(expired),
			"active":  s.deps.Sessions.Count(),
		}).Info("Evicted idle sessions")
	}
	return len(expired), nil
}

func (s *detectorService) Stats() models.StatsResponse {
	stats := models.StatsResponse{
		ActiveSessions: s.deps.Sessions.Count(),
		EventLoop:      s.deps.Loop.Stats(),
	}
	if s.deps.Metrics != nil {
		stats.Analyses = s.deps.Metrics.GetMetrics()
	}
	return stats
}

func (s *detectorService) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.deps.Loop.Start()

		s.wg.Add(1)
		go s.sweepLoop(ctx)
	})
}

func (s *detectorService) sweepLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.settings.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				logger.WithError(err).Warn("Session sweep failed")
			}
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

func (s *detectorService) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.closeSubscriptions("")
		s.deps.Loop.Close()
	})
}

func (s *detectorService) session(ctx context.Context, sessionID string) (*repository.Session, error) {
	session, err := s.deps.Sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, apperrors.NewNotFoundError("session not found", err)
		}
		return nil, apperrors.NewInternalError("failed to load session", err)
	}
	return session, nil
}

func (s *detectorService) machine(ctx context.Context, sessionID string) (*analyzer.Machine, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Machine, nil
}

func (s *detectorService) snapshotOf(machine *analyzer.Machine) (models.SessionSnapshot, error) {
	snap, err := machine.Snapshot()
	if err != nil {
		return snap, mapMachineError(err)
	}
	return snap, nil
}

func mapMachineError(err error) error {
	switch {
	case errors.Is(err, analyzer.ErrNoImage):
		return apperrors.NewConflictError("no image selected", err)
	case errors.Is(err, analyzer.ErrAnalysisInProgress):
		return apperrors.NewConflictError("analysis already in progress", err)
	default:
		return apperrors.NewInternalError("session unavailable", err)
	}
}
