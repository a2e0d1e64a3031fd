package repository

import (
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/averlane/shortener/internal/database"
	apperrors "github.com/averlane/shortener/internal/errors"
	"github.com/averlane/shortener/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// mustCreateLink inserts a link and attaches code, mirroring the creation
// service's two-step flow.
func mustCreateLink(t *testing.T, repo *GormLinkRepository, code string, mutate func(*models.Link)) *models.Link {
	t.Helper()
	link := &models.Link{
		LongURL:    "https://example.com/target",
		IsActive:   true,
		VisitLimit: 100,
		OwnerID:    1,
	}
	if mutate != nil {
		mutate(link)
	}
	if err := repo.CreateLink(link); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	if err := repo.AttachShortCode(link.ID, code); err != nil {
		t.Fatalf("AttachShortCode: %v", err)
	}
	link.ShortCode = &code
	return link
}

func TestAttachShortCodeOnlyOnce(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))

	link := &models.Link{LongURL: "https://example.com", IsActive: true, VisitLimit: 10, OwnerID: 1}
	if err := repo.CreateLink(link); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	if err := repo.AttachShortCode(link.ID, "abc"); err != nil {
		t.Fatalf("first AttachShortCode: %v", err)
	}
	if err := repo.AttachShortCode(link.ID, "def"); !errors.Is(err, apperrors.ErrCodeAlreadyAssigned) {
		t.Fatalf("second AttachShortCode = %v, want ErrCodeAlreadyAssigned", err)
	}

	got, err := repo.GetLinkByShortCode("abc")
	if err != nil {
		t.Fatalf("GetLinkByShortCode: %v", err)
	}
	if got.Code() != "abc" {
		t.Errorf("code = %q, want %q", got.Code(), "abc")
	}
}

func TestAttachShortCodeUnknownLink(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	if err := repo.AttachShortCode(9999, "ghost"); !errors.Is(err, apperrors.ErrLinkNotFound) {
		t.Fatalf("AttachShortCode(unknown) = %v, want ErrLinkNotFound", err)
	}
}

func TestConsumeVisitSuccess(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	mustCreateLink(t, repo, "ok1", nil)

	link, err := repo.ConsumeVisit("ok1", time.Now())
	if err != nil {
		t.Fatalf("ConsumeVisit: %v", err)
	}
	if link.VisitCount != 1 {
		t.Errorf("visit count = %d, want 1", link.VisitCount)
	}
	if link.LongURL != "https://example.com/target" {
		t.Errorf("destination = %q", link.LongURL)
	}
}

func TestConsumeVisitClassification(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	now := time.Now()
	past := now.Add(-time.Hour)

	mustCreateLink(t, repo, "inact", func(l *models.Link) { l.IsActive = false })
	mustCreateLink(t, repo, "exprd", func(l *models.Link) { l.ExpiresAt = &past })
	mustCreateLink(t, repo, "limit", func(l *models.Link) {
		l.VisitLimit = 2
		l.VisitCount = 2
	})
	// Inactive beats quota and expiry: a disabled link with slots left and
	// a past expiry still reports inactive.
	mustCreateLink(t, repo, "multi", func(l *models.Link) {
		l.IsActive = false
		l.ExpiresAt = &past
		l.VisitLimit = 1
		l.VisitCount = 1
	})

	cases := []struct {
		code string
		want error
	}{
		{"nope", apperrors.ErrLinkNotFound},
		{"inact", apperrors.ErrLinkInactive},
		{"exprd", apperrors.ErrLinkExpired},
		{"limit", apperrors.ErrVisitLimitReached},
		{"multi", apperrors.ErrLinkInactive},
	}
	for _, c := range cases {
		if _, err := repo.ConsumeVisit(c.code, now); !errors.Is(err, c.want) {
			t.Errorf("ConsumeVisit(%q) = %v, want %v", c.code, err, c.want)
		}
	}

	// Rejections must not mutate the counter.
	link, err := repo.GetLinkByShortCode("limit")
	if err != nil {
		t.Fatalf("GetLinkByShortCode: %v", err)
	}
	if link.VisitCount != 2 {
		t.Errorf("rejected visit moved counter to %d", link.VisitCount)
	}
}

func TestConsumeVisitExpiryBoundary(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	now := time.Now().Truncate(time.Second)

	exact := now
	mustCreateLink(t, repo, "edge", func(l *models.Link) { l.ExpiresAt = &exact })

	// expires_at == now is already expired: usability requires expires_at > now.
	if _, err := repo.ConsumeVisit("edge", now); !errors.Is(err, apperrors.ErrLinkExpired) {
		t.Fatalf("ConsumeVisit at expiry instant = %v, want ErrLinkExpired", err)
	}
	if _, err := repo.ConsumeVisit("edge", now.Add(-time.Minute)); err != nil {
		t.Fatalf("ConsumeVisit before expiry: %v", err)
	}
}

// TestConsumeVisitConcurrent is the crux: with 3 slots left and 10 racers,
// exactly 3 claims succeed, the rest observe the limit, and the stored
// counter lands on exactly 3.
func TestConsumeVisitConcurrent(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	mustCreateLink(t, repo, "race", func(l *models.Link) { l.VisitLimit = 3 })

	const racers = 10
	now := time.Now()
	results := make(chan error, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ConsumeVisit("race", now)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, limited int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, apperrors.ErrVisitLimitReached):
			limited++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 3 {
		t.Errorf("successes = %d, want 3", successes)
	}
	if limited != racers-3 {
		t.Errorf("limit rejections = %d, want %d", limited, racers-3)
	}

	link, err := repo.GetLinkByShortCode("race")
	if err != nil {
		t.Fatalf("GetLinkByShortCode: %v", err)
	}
	if link.VisitCount != 3 {
		t.Errorf("final visit count = %d, want 3", link.VisitCount)
	}
}

func TestCountActiveLinksForOwner(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	mustCreateLink(t, repo, "a1", func(l *models.Link) { l.OwnerID = 7 })
	mustCreateLink(t, repo, "a2", func(l *models.Link) { l.OwnerID = 7 })
	mustCreateLink(t, repo, "a3", func(l *models.Link) {
		l.OwnerID = 7
		l.IsActive = false
	})
	mustCreateLink(t, repo, "b1", func(l *models.Link) { l.OwnerID = 8 })

	count, err := repo.CountActiveLinksForOwner(7)
	if err != nil {
		t.Fatalf("CountActiveLinksForOwner: %v", err)
	}
	if count != 2 {
		t.Errorf("active links for owner 7 = %d, want 2", count)
	}
}

func TestSetLinkActive(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	mustCreateLink(t, repo, "tog", nil)

	link, err := repo.SetLinkActive("tog", false)
	if err != nil {
		t.Fatalf("SetLinkActive: %v", err)
	}
	if link.IsActive {
		t.Error("link still active after deactivation")
	}
	if _, err := repo.ConsumeVisit("tog", time.Now()); !errors.Is(err, apperrors.ErrLinkInactive) {
		t.Errorf("ConsumeVisit on deactivated link = %v, want ErrLinkInactive", err)
	}

	if _, err := repo.SetLinkActive("missing", true); !errors.Is(err, apperrors.ErrLinkNotFound) {
		t.Errorf("SetLinkActive(unknown) = %v, want ErrLinkNotFound", err)
	}
}

func TestDeleteLinkCascadesVisits(t *testing.T) {
	db := newTestDB(t)
	linkRepo := NewLinkRepository(db)
	visitRepo := NewVisitRepository(db)

	link := mustCreateLink(t, linkRepo, "del", nil)
	for i := 0; i < 3; i++ {
		err := visitRepo.CreateVisit(&models.Visit{LinkID: link.ID, OccurredAt: time.Now()})
		if err != nil {
			t.Fatalf("CreateVisit: %v", err)
		}
	}

	if err := linkRepo.DeleteLink("del"); err != nil {
		t.Fatalf("DeleteLink: %v", err)
	}
	if _, err := linkRepo.GetLinkByShortCode("del"); !errors.Is(err, apperrors.ErrLinkNotFound) {
		t.Errorf("link still present after delete: %v", err)
	}
	count, err := visitRepo.CountVisitsByLinkID(link.ID)
	if err != nil {
		t.Fatalf("CountVisitsByLinkID: %v", err)
	}
	if count != 0 {
		t.Errorf("visits remaining after cascade delete = %d", count)
	}
}
