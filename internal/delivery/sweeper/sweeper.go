// Package sweeper runs the periodic cleanup of expired credentials:
// sessions, one-time codes, and pending OAuth state entries.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"pentrack/config"
	"pentrack/internal/delivery"
	"pentrack/internal/domain/service"
	"pentrack/internal/usecase"

	"go.uber.org/fx"
)

const sweepInterval = 60 * time.Second

type sweeper struct {
	sessions   usecase.SessionUsecase
	stateStore service.StateStore
	stateTTL   time.Duration
	logger     *slog.Logger
	stop       chan struct{}
}

// Params holds dependencies for the sweeper.
type Params struct {
	fx.In

	Lc         fx.Lifecycle
	Config     *config.Config
	Logger     *slog.Logger
	Sessions   usecase.SessionUsecase
	StateStore service.StateStore
}

// NewSweeper creates the background cleanup delivery.
func NewSweeper(params Params) (delivery.Delivery, error) {
	s := &sweeper{
		sessions:   params.Sessions,
		stateStore: params.StateStore,
		stateTTL:   params.Config.Auth.StateTTL,
		logger:     params.Logger,
		stop:       make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			close(s.stop)

			return nil
		},
	})

	return s, nil
}

// Serve ticks until the application stops. A failed sweep is logged and
// retried on the next tick; expiry checks elsewhere keep stale credentials
// unusable in the meantime.
func (s *sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	s.logger.Info("Starting credential sweeper", slog.Duration("interval", sweepInterval))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *sweeper) sweep(ctx context.Context) {
	states := s.stateStore.SweepExpired(time.Now(), s.stateTTL)

	sessions, codes, err := s.sessions.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("Credential sweep failed", slog.Any("error", err))

		return
	}

	if sessions > 0 || codes > 0 || states > 0 {
		s.logger.Debug("Credential sweep completed",
			slog.Int64("sessions", sessions),
			slog.Int64("codes", codes),
			slog.Int("states", states))
	}
}
