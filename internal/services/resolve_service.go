package services

import (
	"log"
	"time"

	"github.com/averlane/shortener/internal/models"
	"github.com/averlane/shortener/internal/repository"
)

// ResolveService is the redirect hot path. Per request it performs exactly
// one store call (the atomic conditional increment) and, on success, one
// non-blocking channel send; there is no intermediate state.
type ResolveService struct {
	linkRepo repository.LinkRepository
	events   chan<- models.VisitEvent
	nowFunc  func() time.Time
}

// NewResolveService wires the resolver. events may be nil, in which case
// successful resolutions are counted but not individually recorded.
func NewResolveService(linkRepo repository.LinkRepository, events chan<- models.VisitEvent) *ResolveService {
	return &ResolveService{
		linkRepo: linkRepo,
		events:   events,
		nowFunc:  time.Now,
	}
}

// Resolve maps a short code to its destination and accounts the visit.
//
// Success means the store's conditional update claimed a visit slot; the
// visit event is then enqueued best-effort. A rejection (not found,
// inactive, expired, limit reached) mutates nothing and records nothing,
// and is returned as its distinct sentinel for the caller to map.
//
// Resolve must not be retried on timeout: the increment may already have
// landed, and retrying would double count.
func (s *ResolveService) Resolve(code, referrer, userAgent string) (string, error) {
	now := s.nowFunc()

	link, err := s.linkRepo.ConsumeVisit(code, now)
	if err != nil {
		return "", err
	}

	s.enqueueVisit(models.VisitEvent{
		LinkID:     link.ID,
		OccurredAt: now,
		Referrer:   referrer,
		UserAgent:  userAgent,
	})

	return link.LongURL, nil
}

// enqueueVisit hands the event to the worker pool without ever blocking
// the redirect. The counter increment already happened and is the source
// of truth; a dropped event costs one analytics row, nothing more.
func (s *ResolveService) enqueueVisit(event models.VisitEvent) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- event:
	default:
		log.Printf("WARNING: visit event buffer full, dropping event for link %d", event.LinkID)
	}
}
