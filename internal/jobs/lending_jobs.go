package jobs

import (
	"context"

	"library-lending-backend/internal/logger"
)

// SendOverdueReminders e-mails every patron holding a book past its due date
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()

		overdue, err := jr.services.Lending.ListOverdue(ctx, jr.now())
		if err != nil {
			logger.Error("Failed to list overdue loans", "error", err)
			return
		}

		sent := 0
		for _, rec := range overdue {
			patron, err := jr.services.Patrons.GetPatron(ctx, rec.PatronID)
			if err != nil {
				logger.Error("Failed to load patron for reminder", "patron_id", rec.PatronID, "error", err)
				continue
			}
			if patron.Email == "" {
				logger.Debug("Patron has no email, skipping reminder", "patron_id", patron.ID)
				continue
			}
			if err := jr.services.Email.SendOverdueReminder(ctx, patron.Email, patron.Name, rec); err != nil {
				logger.Error("Failed to send overdue reminder",
					"lending_id", rec.ID,
					"patron_id", rec.PatronID,
					"isbn", rec.ISBN,
					"error", err)
				continue
			}
			sent++
		}

		logger.Info("Sent overdue reminders", "overdue", len(overdue), "sent", sent)
	})
}

// RefreshPopularity rebuilds the borrow counts used by popularity recommendations
func (jr *JobRunner) RefreshPopularity() {
	jr.runWithRecovery("RefreshPopularity", func() {
		if err := jr.services.Recommendations.RefreshPopularity(context.Background()); err != nil {
			logger.Error("Failed to refresh popularity data", "error", err)
		}
	})
}
