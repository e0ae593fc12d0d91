package notifier

import (
	"context"
	"time"

	orderrepo "github.com/proxyluxe/backend/internal/repo/order-repo"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type OrderSource interface {
	FindExpiring(ctx context.Context, from, to time.Time) ([]orderrepo.ExpiringOrder, error)
}

// Sweeper emails owners of paid orders whose end date is tomorrow or
// the day after. Runs once a day at midnight.
type Sweeper struct {
	orders     OrderSource
	sender     Sender
	workerPool WorkerPoolI
	cron       *cron.Cron
	now        func() time.Time
}

func NewSweeper(orders OrderSource, sender Sender) *Sweeper {
	return &Sweeper{
		orders:     orders,
		sender:     sender,
		workerPool: NewWorkerPool(10),
		cron:       cron.New(),
		now:        time.Now,
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc("0 0 * * *", func() { s.Sweep(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	zap.L().Info("expiry sweep scheduled")
	return nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
	s.workerPool.Close()
}

// Sweep fetches expiring orders and fans the notices out through the
// worker pool.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.now()
	from := startOfDay(now.AddDate(0, 0, 1))
	to := startOfDay(now.AddDate(0, 0, 2))

	expiring, err := s.orders.FindExpiring(ctx, from, to)
	if err != nil {
		zap.L().Error("can't fetch expiring orders", zap.Error(err))
		return
	}
	if len(expiring) == 0 {
		return
	}
	zap.L().Info("sending expiry notices", zap.Int("count", len(expiring)))

	var g errgroup.Group
	for _, e := range expiring {
		e := e
		g.Go(func() error {
			return s.workerPool.AddTask(ctx, func() error {
				lang := e.Lang
				if lang == "" {
					lang = "en"
				}
				s.sender.SendExpiryNotice(e.Email, lang, e.Order.EndDate)
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		zap.L().Error("Error sending expiry notices", zap.Error(err))
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
