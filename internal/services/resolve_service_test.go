package services

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/averlane/shortener/internal/errors"
	"github.com/averlane/shortener/internal/models"
	"github.com/averlane/shortener/internal/repository"
)

func TestResolveRedirectsAndEmitsEvent(t *testing.T) {
	db := newTestDB(t)
	linkRepo := repository.NewLinkRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	linkSvc := NewLinkService(linkRepo, visitRepo, 1000)

	link, err := linkSvc.CreateLink("https://example.com/dest", nil, 1, -1)
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	events := make(chan models.VisitEvent, 1)
	resolver := NewResolveService(linkRepo, events)

	destination, err := resolver.Resolve(link.Code(), "https://ref.example", "test-agent")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if destination != "https://example.com/dest" {
		t.Errorf("destination = %q", destination)
	}

	select {
	case ev := <-events:
		if ev.LinkID != link.ID {
			t.Errorf("event link id = %d, want %d", ev.LinkID, link.ID)
		}
		if ev.Referrer != "https://ref.example" || ev.UserAgent != "test-agent" {
			t.Errorf("event metadata = %+v", ev)
		}
	default:
		t.Fatal("no visit event emitted for successful resolution")
	}

	got, err := linkRepo.GetLinkByShortCode(link.Code())
	if err != nil {
		t.Fatalf("GetLinkByShortCode: %v", err)
	}
	if got.VisitCount != 1 {
		t.Errorf("visit count after resolve = %d, want 1", got.VisitCount)
	}
}

func TestResolveRejectionsEmitNothing(t *testing.T) {
	db := newTestDB(t)
	linkRepo := repository.NewLinkRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	linkSvc := NewLinkService(linkRepo, visitRepo, 1000)

	link, err := linkSvc.CreateLink("https://example.com", nil, 1, -1)
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	if _, err := linkSvc.SetLinkActive(link.Code(), false); err != nil {
		t.Fatalf("SetLinkActive: %v", err)
	}

	events := make(chan models.VisitEvent, 1)
	resolver := NewResolveService(linkRepo, events)

	if _, err := resolver.Resolve(link.Code(), "", ""); !errors.Is(err, apperrors.ErrLinkInactive) {
		t.Fatalf("Resolve(inactive) = %v, want ErrLinkInactive", err)
	}
	if _, err := resolver.Resolve("missing", "", ""); !errors.Is(err, apperrors.ErrLinkNotFound) {
		t.Fatalf("Resolve(unknown) = %v, want ErrLinkNotFound", err)
	}

	select {
	case ev := <-events:
		t.Fatalf("rejected resolution emitted event %+v", ev)
	default:
	}
}

func TestResolveFullBufferDoesNotBlock(t *testing.T) {
	db := newTestDB(t)
	linkRepo := repository.NewLinkRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	linkSvc := NewLinkService(linkRepo, visitRepo, 1000)

	link, err := linkSvc.CreateLink("https://example.com", nil, 1, -1)
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	// Unbuffered channel with no reader: the send can never complete, so a
	// blocking enqueue would hang the test.
	events := make(chan models.VisitEvent)
	resolver := NewResolveService(linkRepo, events)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := resolver.Resolve(link.Code(), "", ""); err != nil {
			t.Errorf("Resolve: %v", err)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Resolve blocked on full event buffer")
	}

	// The increment still counted even though the event was dropped.
	got, err := linkRepo.GetLinkByShortCode(link.Code())
	if err != nil {
		t.Fatalf("GetLinkByShortCode: %v", err)
	}
	if got.VisitCount != 1 {
		t.Errorf("visit count = %d, want 1", got.VisitCount)
	}
}

func TestResolveExpiredLink(t *testing.T) {
	db := newTestDB(t)
	linkRepo := repository.NewLinkRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	linkSvc := NewLinkService(linkRepo, visitRepo, 1000)

	expires := time.Now().Add(time.Hour)
	link, err := linkSvc.CreateLink("https://example.com", &expires, 1, -1)
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	resolver := NewResolveService(linkRepo, nil)

	// Usable while the expiry is in the future.
	if _, err := resolver.Resolve(link.Code(), "", ""); err != nil {
		t.Fatalf("Resolve before expiry: %v", err)
	}

	// Advance the resolver's clock past the expiry; quota slots remain.
	resolver.nowFunc = func() time.Time { return expires.Add(time.Minute) }
	if _, err := resolver.Resolve(link.Code(), "", ""); !errors.Is(err, apperrors.ErrLinkExpired) {
		t.Fatalf("Resolve after expiry = %v, want ErrLinkExpired", err)
	}
}

func TestResolveExhaustsQuotaExactly(t *testing.T) {
	db := newTestDB(t)
	linkRepo := repository.NewLinkRepository(db)
	visitRepo := repository.NewVisitRepository(db)

	svc := NewLinkService(linkRepo, visitRepo, 2)
	link, err := svc.CreateLink("https://example.com", nil, 1, -1)
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	resolver := NewResolveService(linkRepo, nil)
	for i := 0; i < 2; i++ {
		if _, err := resolver.Resolve(link.Code(), "", ""); err != nil {
			t.Fatalf("Resolve #%d: %v", i+1, err)
		}
	}
	if _, err := resolver.Resolve(link.Code(), "", ""); !errors.Is(err, apperrors.ErrVisitLimitReached) {
		t.Fatalf("Resolve past limit = %v, want ErrVisitLimitReached", err)
	}
}
