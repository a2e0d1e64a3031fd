// Package workers persists visit events asynchronously so that recording
// never sits on the redirect path.
package workers

import (
	"log"

	apperrors "github.com/averlane/shortener/internal/errors"
	"github.com/averlane/shortener/internal/models"
	"github.com/averlane/shortener/internal/repository"
)

// StartVisitWorkers launches workerCount goroutines draining events from
// the channel. Workers exit when the channel is closed.
func StartVisitWorkers(workerCount int, events <-chan models.VisitEvent, visitRepo repository.VisitRepository) {
	log.Printf("Starting %d visit worker(s)...", workerCount)
	for i := 0; i < workerCount; i++ {
		go visitWorker(events, visitRepo)
	}
}

func visitWorker(events <-chan models.VisitEvent, visitRepo repository.VisitRepository) {
	for event := range events {
		visit := &models.Visit{
			LinkID:     event.LinkID,
			OccurredAt: event.OccurredAt,
			Referrer:   event.Referrer,
			UserAgent:  event.UserAgent,
		}

		// A failed append is logged and swallowed: the link's visit counter
		// was already incremented atomically and must not be rolled back for
		// a secondary logging failure.
		if err := visitRepo.CreateVisit(visit); err != nil {
			log.Printf("ERROR: %v", apperrors.ErrVisitRecordingFailed{LinkID: event.LinkID, Err: err})
		}
	}
}
