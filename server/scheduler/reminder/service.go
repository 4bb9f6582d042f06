// Package reminder dispatches push notifications for declared weekly
// study blocks: a "pre" reminder five minutes before a block and a
// "now" reminder at its start, each delivered at most once per
// occurrence.
package reminder

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hablaai/habla/internal/clock"
	apperrors "github.com/hablaai/habla/internal/errors"
	"github.com/hablaai/habla/server/service/schedule"
	"github.com/hablaai/habla/server/timezone"
	"github.com/hablaai/habla/store"
)

// lookahead is how far before a block the "pre" reminder fires. It must
// equal the dispatch cadence so each run sees exactly one upcoming slot.
const lookahead = 5 * time.Minute

// Config tunes the dispatch fan-out.
type Config struct {
	// Concurrency bounds how many users are processed in parallel.
	Concurrency int
	// SendsPerSecond rate-limits push deliveries across all users.
	SendsPerSecond rate.Limit
}

// DefaultConfig returns the production fan-out settings.
func DefaultConfig() Config {
	return Config{
		Concurrency:    8,
		SendsPerSecond: 50,
	}
}

// Service computes due reminders and delivers them.
type Service struct {
	store   *store.Store
	pusher  Pusher
	clock   clock.Clock
	limiter *rate.Limiter
	conc    int
}

// NewService creates a reminder dispatch service.
func NewService(s *store.Store, pusher Pusher, c clock.Clock, cfg Config) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	if cfg.SendsPerSecond <= 0 {
		cfg.SendsPerSecond = DefaultConfig().SendsPerSecond
	}
	return &Service{
		store:   s,
		pusher:  pusher,
		clock:   c,
		limiter: rate.NewLimiter(cfg.SendsPerSecond, int(cfg.SendsPerSecond)),
		conc:    cfg.Concurrency,
	}
}

// event is one due reminder for one user.
type event struct {
	block   schedule.WeeklyBlock
	isoDate string
	phase   store.DispatchPhase
}

// ProcessDueReminders runs one dispatch cycle and returns how many
// reminders were delivered. Users are processed concurrently; one
// user's failure is logged and never blocks the others.
//
// The cycle instant is truncated to the dispatch grid before matching.
// Blocks are quarter-hour quantized and matched by exact HH:MM
// equality, so a cycle running off-grid (a timer that fired at 18:03)
// must still evaluate the 18:00 slot or that occurrence is lost for
// good. Every slot is evaluated exactly once as long as cycles run at
// the grid cadence, aligned or not.
func (s *Service) ProcessDueReminders(ctx context.Context) (int, error) {
	users, err := s.store.ListUsersWithSchedule(ctx)
	if err != nil {
		return 0, apperrors.Unavailable("failed to list users with schedules", err)
	}

	now := s.clock.Now().Truncate(lookahead)
	var dispatched atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.conc)
	for _, user := range users {
		user := user
		g.Go(func() error {
			n, err := s.processUser(ctx, user, now)
			if err != nil {
				slog.Error("failed to process user reminders", "user_id", user.ID, "error", err)
				return nil
			}
			dispatched.Add(int64(n))
			return nil
		})
	}
	_ = g.Wait()

	return int(dispatched.Load()), nil
}

func (s *Service) processUser(ctx context.Context, user *store.User, now time.Time) (int, error) {
	blocks, dropped := schedule.ParseWeeklyBlocks(user.WeeklySchedule)
	if dropped > 0 {
		slog.Warn("dropped malformed weekly blocks", "user_id", user.ID, "dropped", dropped)
	}
	if len(blocks) == 0 {
		return 0, nil
	}

	loc := timezone.UserLocation(user.Timezone)
	current := timezone.LocalParts(now, loc)
	soon := timezone.LocalParts(now.Add(lookahead), loc)

	var events []event
	for _, block := range blocks {
		if block.Day == current.Weekday && block.Time == current.Time {
			events = append(events, event{block: block, isoDate: current.ISODate, phase: store.DispatchPhaseNow})
		}
		if block.Day == soon.Weekday && block.Time == soon.Time {
			events = append(events, event{block: block, isoDate: soon.ISODate, phase: store.DispatchPhasePre})
		}
	}

	dispatched := 0
	for _, ev := range events {
		sent, err := s.dispatch(ctx, user, ev)
		if err != nil {
			return dispatched, err
		}
		if sent {
			dispatched++
		}
	}
	return dispatched, nil
}

// dispatch claims the occurrence/phase marker and, when this run wins
// the claim, delivers the payload to every subscription. The marker is
// claimed before sending, so a duplicate timer firing or a crashed run
// can never redeliver: at-most-once, not at-least-once.
func (s *Service) dispatch(ctx context.Context, user *store.User, ev event) (bool, error) {
	claimed, err := s.store.CreateDispatchIfAbsent(ctx, &store.NotificationDispatch{
		ID:            store.DispatchID(ev.isoDate, ev.block.Time, ev.phase),
		UserID:        user.ID,
		CreatedTs:     s.clock.Now().Unix(),
		ScheduledDate: ev.isoDate,
		ScheduledTime: ev.block.Time,
		Phase:         ev.phase,
	})
	if err != nil {
		return false, apperrors.Unavailable("failed to claim dispatch marker", err)
	}
	if !claimed {
		return false, nil
	}

	subs, err := s.store.ListPushSubscriptions(ctx, user.ID)
	if err != nil {
		return false, apperrors.Unavailable("failed to list push subscriptions", err)
	}

	payload := buildPayload(user, ev)
	for _, sub := range subs {
		if err := s.limiter.Wait(ctx); err != nil {
			return true, err
		}
		if err := s.pusher.Send(ctx, sub, payload); err != nil {
			if IsGone(err) {
				if delErr := s.store.DeletePushSubscription(ctx, user.ID, sub.ID); delErr != nil {
					slog.Error("failed to delete stale push subscription",
						"user_id", user.ID, "subscription_id", sub.ID, "error", delErr)
				} else {
					slog.Info("deleted stale push subscription",
						"user_id", user.ID, "subscription_id", sub.ID)
				}
				continue
			}
			// Partial delivery failure never unwinds the dispatch: the
			// marker is already written.
			slog.Warn("push delivery failed",
				"user_id", user.ID, "subscription_id", sub.ID, "error", err)
		}
	}

	slog.Info("reminder dispatched",
		"user_id", user.ID,
		"scheduled_date", ev.isoDate,
		"scheduled_time", ev.block.Time,
		"phase", ev.phase,
		"subscriptions", len(subs),
	)
	return true, nil
}

// payload is the notification body shown to the learner.
type payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag"`
}

var blockLabels = map[schedule.BlockType]string{
	schedule.BlockTypeChat:   "conversação",
	schedule.BlockTypeLesson: "aula",
}

func buildPayload(user *store.User, ev event) []byte {
	label := blockLabels[ev.block.Type]

	var p payload
	switch ev.phase {
	case store.DispatchPhasePre:
		p = payload{
			Title: "Sua sessão começa em 5 minutos",
			Body:  "Prepare-se! Sua " + label + " de espanhol das " + ev.block.Time + " está chegando.",
		}
	default:
		p = payload{
			Title: "Hora de praticar espanhol!",
			Body:  "Sua " + label + " das " + ev.block.Time + " começa agora. Vamos lá?",
		}
	}
	p.Tag = store.DispatchID(ev.isoDate, ev.block.Time, ev.phase)

	data, _ := json.Marshal(p)
	return data
}
