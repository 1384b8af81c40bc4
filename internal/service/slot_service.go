package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	"github.com/noah-isme/tutor-sessions-api/pkg/cache"
	appErrors "github.com/noah-isme/tutor-sessions-api/pkg/errors"
	"github.com/noah-isme/tutor-sessions-api/pkg/timewindow"
)

const (
	defaultSlotDuration   = 60
	defaultSlotStride     = 30 * time.Minute
	defaultMaxSuggestions = 50
	slotCacheNamespace    = "slots"
)

// SlotConfig tunes the suggestion scan.
type SlotConfig struct {
	Stride          time.Duration
	MaxResults      int
	DefaultTimezone string
	CacheTTL        time.Duration
}

// SlotService derives bookable intervals from availability minus existing sessions.
type SlotService struct {
	courses      courseReader
	availability availabilityLister
	sessions     overlapFinder
	zones        *zoneResolver
	cache        *CacheService
	metrics      *MetricsService
	config       SlotConfig
	logger       *zap.Logger
	now          Clock
}

// SlotServiceOption configures the service.
type SlotServiceOption func(*SlotService)

// WithSlotClock overrides the clock used to skip past candidates.
func WithSlotClock(clock Clock) SlotServiceOption {
	return func(s *SlotService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithSlotCache enables caching of suggestion results.
func WithSlotCache(cache *CacheService) SlotServiceOption {
	return func(s *SlotService) {
		s.cache = cache
	}
}

// WithSlotMetrics attaches domain metrics.
func WithSlotMetrics(metrics *MetricsService) SlotServiceOption {
	return func(s *SlotService) {
		s.metrics = metrics
	}
}

// NewSlotService constructs the service.
func NewSlotService(courses courseReader, availability availabilityLister, sessions overlapFinder, tutors tutorLocator, cfg SlotConfig, logger *zap.Logger, opts ...SlotServiceOption) *SlotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Stride <= 0 {
		cfg.Stride = defaultSlotStride
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxSuggestions
	}
	svc := &SlotService{
		courses:      courses,
		availability: availability,
		sessions:     sessions,
		zones:        &zoneResolver{tutors: tutors, fallback: cfg.DefaultTimezone, logger: logger},
		config:       cfg,
		logger:       logger,
		now:          systemClock,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Suggest returns up to MaxResults free candidate slots in chronological order.
// An unknown course, a course owned by someone else, an empty range or a tutor
// without availability all yield an empty list.
func (s *SlotService) Suggest(ctx context.Context, q models.SlotQuery) ([]models.Slot, error) {
	slots := []models.Slot{}
	if q.DurationMinutes <= 0 {
		q.DurationMinutes = defaultSlotDuration
	}
	if q.MaxResults <= 0 || q.MaxResults > s.config.MaxResults {
		q.MaxResults = s.config.MaxResults
	}
	from, to := q.From.UTC(), q.To.UTC()
	if !from.Before(to) {
		return slots, nil
	}

	key := slotCacheKey(q.TutorID, q.CourseID, from, to, q.DurationMinutes, q.MaxResults)
	if s.cache.Get(ctx, key, &slots) {
		return slots, nil
	}

	course, err := s.courses.FindByID(ctx, q.CourseID)
	if err != nil && !isNoRows(err) {
		return nil, appErrors.Internal(err, "failed to load course")
	}
	if err != nil || course.TutorID != q.TutorID {
		return slots, nil
	}

	windows, err := s.availability.ListActiveByTutor(ctx, q.TutorID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load availability")
	}
	if len(windows) == 0 {
		return slots, nil
	}
	loc, err := s.zones.locate(ctx, q.TutorID)
	if err != nil {
		return nil, err
	}
	busy, err := s.sessions.FindOverlapping(ctx, q.TutorID, from, to)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load sessions")
	}

	now := s.now()
	duration := time.Duration(q.DurationMinutes) * time.Minute
	timewindow.Step(from, to, s.config.Stride, duration, func(r timewindow.Range) bool {
		if r.Start.Before(now) {
			return true
		}
		if !withinAvailability(windows, r.Start, r.End, loc) || overlapsAny(busy, r.Start, r.End, "") {
			return true
		}
		slots = append(slots, models.Slot{
			Start: r.Start.UTC().Format(time.RFC3339),
			End:   r.End.UTC().Format(time.RFC3339),
		})
		return len(slots) < q.MaxResults
	})

	s.cache.Set(ctx, key, slots, s.config.CacheTTL)
	s.metrics.ObserveSlotSuggestions(len(slots))
	return slots, nil
}

// InvalidateTutor drops every cached suggestion for the tutor.
func (s *SlotService) InvalidateTutor(ctx context.Context, tutorID string) {
	s.cache.Invalidate(ctx, cache.Key(slotCacheNamespace, tutorID, "*"))
}

func slotCacheKey(tutorID, courseID string, from, to time.Time, duration, max int) string {
	return cache.Key(slotCacheNamespace, tutorID, courseID,
		strconv.FormatInt(from.Unix(), 10),
		strconv.FormatInt(to.Unix(), 10),
		strconv.Itoa(duration),
		strconv.Itoa(max),
	)
}
