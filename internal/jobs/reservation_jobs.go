package jobs

import (
	"context"

	"library-lending-backend/internal/logger"
)

// ExpireReservationHolds expires pickup holds whose window has passed and
// promotes the next reservation in line for each freed book.
func (jr *JobRunner) ExpireReservationHolds() {
	jr.runWithRecovery("ExpireReservationHolds", func() {
		ctx := context.Background()

		expired, err := jr.services.Reservations.ExpireHolds(ctx, jr.now())
		if err != nil {
			logger.Error("Failed to expire reservation holds", "error", err)
			return
		}

		logger.Info("Expired reservation holds", "count", expired)
	})
}
