package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cardsite/backend/internal/metrics"
	"github.com/cardsite/backend/internal/model"
	"github.com/cardsite/backend/internal/repository"
	"golang.org/x/sync/errgroup"
)

// DefaultSinkTimeout bounds a single analytics sink write.
const DefaultSinkTimeout = 10 * time.Second

// AnalyticsService records fire-and-forget analytics beacons.
type AnalyticsService interface {
	// Track validates the action and records the event. Sink failures are
	// logged and never returned, so callers can always acknowledge the beacon.
	Track(ctx context.Context, action string, rc model.RequestContext, metadata map[string]any) (*model.AnalyticsEvent, error)
}

// AnalyticsOptions configures an AnalyticsService.
type AnalyticsOptions struct {
	SinkTimeout time.Duration
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

type analyticsService struct {
	sinks []repository.AnalyticsRepository
	opts  AnalyticsOptions
}

// NewAnalyticsService creates an AnalyticsService writing to every sink.
// With no sinks events are only logged.
func NewAnalyticsService(sinks []repository.AnalyticsRepository, opts AnalyticsOptions) AnalyticsService {
	if opts.SinkTimeout <= 0 {
		opts.SinkTimeout = DefaultSinkTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &analyticsService{sinks: sinks, opts: opts}
}

func (s *analyticsService) Track(ctx context.Context, action string, rc model.RequestContext, metadata map[string]any) (*model.AnalyticsEvent, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return nil, &ValidationError{Field: "action", Message: MsgActionRequired}
	}

	e := model.NewAnalyticsEvent(action, s.opts.Now(), rc, metadata)
	slog.InfoContext(ctx, "analytics event",
		"action", e.Action,
		"timestamp", e.String(model.EventKeyTimestamp),
		"user_agent", rc.UserAgent,
		"referer", rc.Referer,
		"ip", rc.ClientIP,
		"metadata", e.Metadata(),
	)

	if len(s.sinks) == 0 {
		s.opts.Metrics.AnalyticsWrite("log", metrics.ResultSkipped)
		return e, nil
	}

	// Sink writes must not be cut short when the client disconnects.
	base := context.WithoutCancel(ctx)
	var g errgroup.Group
	for _, sink := range s.sinks {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(base, s.opts.SinkTimeout)
			defer cancel()
			if err := sink.Insert(sctx, e); err != nil {
				slog.WarnContext(ctx, "analytics sink write failed",
					"sink", sink.Name(),
					"action", e.Action,
					"error", err,
				)
				s.opts.Metrics.AnalyticsWrite(sink.Name(), metrics.ResultFailed)
				return nil
			}
			s.opts.Metrics.AnalyticsWrite(sink.Name(), metrics.ResultSuccess)
			return nil
		})
	}
	_ = g.Wait()
	return e, nil
}
