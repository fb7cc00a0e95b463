package identifiersvc

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rzbill/cuidd/internal/eventlog"
	logpkg "github.com/rzbill/cuidd/pkg/log"
)

// Events returns one page of the mint/revoke audit trail.
func (s *Service) Events(ctx context.Context, req EventsRequest) (EventsResult, error) {
	ctx, span := s.tracer.Start(ctx, "identifiers.Events", trace.WithAttributes(
		attribute.Int64("after", int64(req.After)),
		attribute.Int("wait_ms", req.WaitMs),
	))
	defer span.End()

	if req.Limit < 0 || req.WaitMs < 0 {
		return EventsResult{}, fail(span, errors.Wrap(ErrInvalidArgument, "limit and wait_ms must not be negative"))
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	limit = min(limit, s.rt.Config().MaxListLimit)

	audit := s.rt.Audit()
	if req.WaitMs > 0 && !req.Reverse {
		wait := min(time.Duration(req.WaitMs)*time.Millisecond, maxEventWait)
		wctx, cancel := context.WithTimeout(ctx, wait)
		err := audit.WaitAfter(wctx, req.After)
		cancel()
		// A timeout just yields an empty page.
		if err != nil && ctx.Err() != nil {
			return EventsResult{}, fail(span, ctx.Err())
		}
	}

	items, err := audit.Read(eventlog.ReadOptions{After: req.After, Limit: limit, Reverse: req.Reverse})
	if err != nil {
		return EventsResult{}, fail(span, err)
	}
	res := EventsResult{Items: items}
	if len(items) == limit {
		res.NextAfter = items[len(items)-1].Seq
	}
	span.SetAttributes(attribute.Int("items", len(items)))
	return res, nil
}

// TrimEvents drops audit events older than olderThan and returns how many
// were removed.
func (s *Service) TrimEvents(ctx context.Context, olderThan time.Duration) (int, error) {
	ctx, span := s.tracer.Start(ctx, "identifiers.TrimEvents")
	defer span.End()

	if olderThan <= 0 {
		return 0, fail(span, errors.Wrap(ErrInvalidArgument, "retention must be positive"))
	}
	cutoff := time.Now().Add(-olderThan).UnixMilli()
	n, err := s.rt.Audit().TrimOlderThan(ctx, cutoff, 0)
	if err != nil {
		return n, fail(span, err)
	}
	span.SetAttributes(attribute.Int("deleted", n))
	if n > 0 {
		s.logger.Info("trimmed audit events", logpkg.Int("deleted", n), logpkg.Int64("cutoff_ms", cutoff))
	}
	return n, nil
}
