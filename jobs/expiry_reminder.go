package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/relaycrm/relay/internal/authz"
	"github.com/relaycrm/relay/internal/mailer"
	"github.com/relaycrm/relay/internal/plans"
	"github.com/relaycrm/relay/internal/subscriptions"
)

// Reminder days before the end date when an email goes out. Exact match
// only, so a subscription gets at most one email per threshold.
var reminderDays = []int{7, 1}

// SubscriptionSweeper lists and deactivates subscriptions during the
// daily sweep.
type SubscriptionSweeper interface {
	ListActive(ctx context.Context) ([]subscriptions.Subscription, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// PlanResolver looks up the plan referenced by a subscription.
type PlanResolver interface {
	ByID(ctx context.Context, id string) (plans.Plan, error)
}

// EmailEnqueuer hands reminder emails to the mail queue.
type EmailEnqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error)
}

// ExpiryReminder is the daily job that deactivates subscriptions past
// their end date and emails the ones approaching it.
type ExpiryReminder struct {
	subs   SubscriptionSweeper
	plans  PlanResolver
	queue  EmailEnqueuer
	logger *slog.Logger
	now    func() time.Time
}

func NewExpiryReminder(subs SubscriptionSweeper, planResolver PlanResolver, queue EmailEnqueuer, logger *slog.Logger) *ExpiryReminder {
	return &ExpiryReminder{
		subs:   subs,
		plans:  planResolver,
		queue:  queue,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source, used by tests.
func (j *ExpiryReminder) WithClock(now func() time.Time) *ExpiryReminder {
	j.now = now
	return j
}

// Handle runs one sweep. Per-subscription failures are logged and do not
// abort the rest of the sweep.
func (j *ExpiryReminder) Handle(ctx context.Context, _ *asynq.Task) error {
	now := j.now()
	subs, err := j.subs.ListActive(ctx)
	if err != nil {
		return err
	}

	var expired, reminded int
	for _, sub := range subs {
		view := authz.Subscription{
			ID:        sub.ID,
			Email:     sub.Email,
			PlanID:    sub.PlanID,
			StartDate: sub.StartDate,
			EndDate:   sub.EndDate,
			Active:    sub.Active,
		}
		if _, flipped := authz.MaterializeExpiry(view, now); flipped {
			if err := j.subs.SetActive(ctx, sub.ID, false); err != nil {
				j.logger.Error("deactivate expired subscription", slog.String("subscription_id", sub.ID), slog.Any("error", err))
				continue
			}
			expired++
			continue
		}

		daysLeft := authz.DaysLeft(sub.EndDate, now)
		if !reminderDue(daysLeft) {
			continue
		}
		planName := "your"
		if plan, err := j.plans.ByID(ctx, sub.PlanID); err == nil {
			planName = plan.Name
		} else {
			j.logger.Warn("resolve plan for reminder", slog.String("plan_id", sub.PlanID), slog.Any("error", err))
		}
		email := mailer.ExpiryReminder(sub.Email, planName, daysLeft, sub.EndDate)
		if _, err := j.queue.EnqueueSendEmail(ctx, SendEmailPayload{
			To:      email.To,
			Subject: email.Subject,
			HTML:    email.HTML,
		}); err != nil {
			j.logger.Error("enqueue reminder email", slog.String("email", sub.Email), slog.Any("error", err))
			continue
		}
		reminded++
	}

	j.logger.Info("expiry sweep complete",
		slog.Int("scanned", len(subs)),
		slog.Int("expired", expired),
		slog.Int("reminded", reminded),
	)
	return nil
}

func reminderDue(daysLeft int) bool {
	for _, d := range reminderDays {
		if daysLeft == d {
			return true
		}
	}
	return false
}
