package utils

import (
	"context"
	"log"
	"time"

	"coursehub/models"
	"coursehub/services/enrollment"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ReminderJob emails learners whose completed enrollment is about to expire.
// It never changes enrollment status.
type ReminderJob struct {
	DB      *gorm.DB
	Service *enrollment.Service
	Mailer  Mailer
	Days    int
}

// Run sends every due reminder and returns how many were sent.
func (j *ReminderJob) Run(ctx context.Context) (int, error) {
	due, err := j.Service.DueForReminder(ctx, j.Days)
	if err != nil {
		return 0, err
	}
	log.Printf("[ENROLLMENT-SCHEDULER] Found %d enrollments expiring within %d days", len(due), j.Days)

	sent := 0
	for _, e := range due {
		var user models.User
		res := j.DB.WithContext(ctx).Where("id = ? AND is_deleted = ?", e.UserID, false).Limit(1).Find(&user)
		if res.Error != nil || res.RowsAffected == 0 {
			log.Printf("[ENROLLMENT-SCHEDULER] Skipping enrollment %d, user %d unavailable: %v", e.ID, e.UserID, res.Error)
			continue
		}

		title := "your course"
		if e.Course != nil {
			title = e.Course.Title
		}
		subject, body := ExpiryReminderEmail(user.Name, title, *e.ExpiresAt)
		if err := j.Mailer.Send(ctx, user.Email, user.Name, subject, body); err != nil {
			log.Printf("[ENROLLMENT-SCHEDULER] Error sending reminder for enrollment %d: %v", e.ID, err)
			continue
		}
		if err := j.Service.MarkReminded(ctx, e.ID); err != nil {
			log.Printf("[ENROLLMENT-SCHEDULER] Error marking enrollment %d reminded: %v", e.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// StartEnrollmentScheduler runs job on the cron spec until the returned
// scheduler is stopped.
func StartEnrollmentScheduler(spec string, job *ReminderJob) (*cron.Cron, error) {
	log.Println("[ENROLLMENT-SCHEDULER] Initializing enrollment reminder scheduler...")

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		sent, err := job.Run(ctx)
		if err != nil {
			log.Printf("[ENROLLMENT-SCHEDULER] Reminder run failed: %v", err)
			return
		}
		log.Printf("[ENROLLMENT-SCHEDULER] Sent %d reminders", sent)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Printf("[ENROLLMENT-SCHEDULER] Scheduler started with spec %q", spec)
	return c, nil
}
