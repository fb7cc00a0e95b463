package identifiersvc

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rzbill/cuidd/internal/eventlog"
	"github.com/rzbill/cuidd/internal/kinds"
	"github.com/rzbill/cuidd/internal/ledger"
	"github.com/rzbill/cuidd/internal/runtime"
	"github.com/rzbill/cuidd/pkg/cuid"
	logpkg "github.com/rzbill/cuidd/pkg/log"
)

// Service mints, records and queries identifiers.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
	tracer trace.Tracer
}

// New returns a Service. A nil logger discards output.
func New(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewNop()
	}
	return &Service{
		rt:     rt,
		logger: logger.WithComponent("identifiers"),
		tracer: rt.TracerProvider().Tracer("github.com/rzbill/cuidd/internal/services/identifiers"),
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (s *Service) checkKind(kind string) error {
	if err := kinds.Validate(kind); err != nil {
		return errors.Wrap(ErrInvalidArgument, err.Error())
	}
	if !s.rt.Kinds().Allowed(kind) {
		return errors.Wrapf(ErrKindNotAllowed, "%q", kind)
	}
	return nil
}

// Mint generates req.Count identifiers and records them atomically. A batch
// that collides with an existing record is regenerated up to
// Config.DuplicateRetries times.
func (s *Service) Mint(ctx context.Context, req MintRequest) ([]ledger.Record, error) {
	count := req.Count
	if count == 0 {
		count = 1
	}
	ctx, span := s.tracer.Start(ctx, "identifiers.Mint", trace.WithAttributes(
		attribute.String("kind", req.Kind),
		attribute.Int("count", count),
	))
	defer span.End()

	if err := s.checkKind(req.Kind); err != nil {
		return nil, fail(span, err)
	}
	cfg := s.rt.Config()
	if count < 0 || count > cfg.MaxBatch {
		return nil, fail(span, errors.Wrapf(ErrInvalidArgument, "count must be between 1 and %d, got %d", cfg.MaxBatch, req.Count))
	}
	if len(req.Label) > maxLabelLen {
		return nil, fail(span, errors.Wrapf(ErrInvalidArgument, "label longer than %d bytes", maxLabelLen))
	}

	gen := s.rt.Generator()
	start := time.Now()
	for attempt := 0; ; attempt++ {
		recs := make([]ledger.Record, count)
		for i := range recs {
			recs[i] = newRecord(gen.Next(), req.Kind, req.Label)
		}
		err := s.rt.Ledger().Append(ctx, recs)
		if err == nil {
			s.logger.Debug("minted",
				logpkg.Str("kind", req.Kind),
				logpkg.Int("count", count),
				logpkg.Int("attempt", attempt),
				logpkg.Dur("dur", time.Since(start)),
			)
			span.SetAttributes(attribute.Int("attempts", attempt+1))
			s.audit(ctx, eventlog.Event{
				Action: eventlog.ActionMint,
				Kind:   req.Kind,
				IDs:    lo.Map(recs, func(r ledger.Record, _ int) string { return r.ID }),
				Label:  req.Label,
			})
			return recs, nil
		}
		if !errors.Is(err, ledger.ErrDuplicate) || attempt >= cfg.DuplicateRetries {
			s.logger.Error("mint failed", logpkg.Str("kind", req.Kind), logpkg.Err(err))
			return nil, fail(span, errors.Wrap(err, "record identifiers"))
		}
		s.logger.Warn("identifier collision, regenerating batch",
			logpkg.Str("kind", req.Kind),
			logpkg.Int("attempt", attempt),
			logpkg.Err(err),
		)
	}
}

func newRecord(id cuid.ID, kind, label string) ledger.Record {
	// Parse cannot fail on generator output.
	p, _ := id.Parts()
	return ledger.Record{
		ID:          id.String(),
		Kind:        kind,
		Label:       label,
		IssuedAtMs:  p.TimestampMs,
		Fingerprint: p.Fingerprint,
	}
}

// Generate returns count identifiers without recording them.
func (s *Service) Generate(ctx context.Context, count int) ([]cuid.ID, error) {
	_, span := s.tracer.Start(ctx, "identifiers.Generate", trace.WithAttributes(attribute.Int("count", count)))
	defer span.End()

	if count == 0 {
		count = 1
	}
	if count < 0 || count > s.rt.Config().MaxBatch {
		return nil, fail(span, errors.Wrapf(ErrInvalidArgument, "count must be between 1 and %d", s.rt.Config().MaxBatch))
	}
	gen := s.rt.Generator()
	return lo.Times(count, func(int) cuid.ID { return gen.Next() }), nil
}

// Inspect decodes id and looks it up in the ledger. Unknown but well-formed
// identifiers are not an error.
func (s *Service) Inspect(ctx context.Context, id string) (Inspection, error) {
	ctx, span := s.tracer.Start(ctx, "identifiers.Inspect")
	defer span.End()

	p, err := cuid.Parse(id)
	if err != nil {
		return Inspection{}, fail(span, errors.Wrap(ErrInvalidArgument, err.Error()))
	}
	out := Inspection{ID: id, Parts: p, Time: p.Time().Format(time.RFC3339Nano)}

	rec, err := s.rt.Ledger().Get(ctx, id)
	switch {
	case err == nil:
		out.Known = true
		out.Record = &rec
	case errors.Is(err, ledger.ErrNotFound):
	default:
		return Inspection{}, fail(span, err)
	}
	span.SetAttributes(attribute.Bool("known", out.Known))
	return out, nil
}

// List returns one page of recorded identifiers.
func (s *Service) List(ctx context.Context, req ListRequest) (ListResult, error) {
	ctx, span := s.tracer.Start(ctx, "identifiers.List", trace.WithAttributes(attribute.String("kind", req.Kind)))
	defer span.End()

	if req.Kind != "" {
		if err := kinds.Validate(req.Kind); err != nil {
			return ListResult{}, fail(span, errors.Wrap(ErrInvalidArgument, err.Error()))
		}
	}
	if req.After != "" && !cuid.Valid(req.After) {
		return ListResult{}, fail(span, errors.Wrapf(ErrInvalidArgument, "after %q is not an identifier", req.After))
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, s.rt.Config().MaxListLimit)

	filter, err := newCELFilter(req.Filter)
	if err != nil {
		return ListResult{}, fail(span, err)
	}

	items, err := s.rt.Ledger().List(ctx, req.Kind, ledger.ListOptions{
		After:   req.After,
		Limit:   limit,
		Reverse: req.Reverse,
		Match:   filter.Eval,
	})
	if err != nil {
		return ListResult{}, fail(span, err)
	}
	res := ListResult{Items: items}
	if res.Items == nil {
		res.Items = []ledger.Record{}
	}
	if len(items) == limit {
		res.NextAfter = items[len(items)-1].ID
	}
	span.SetAttributes(attribute.Int("items", len(items)))
	return res, nil
}

// Revoke forgets an issued identifier.
func (s *Service) Revoke(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "identifiers.Revoke")
	defer span.End()

	if !cuid.Valid(id) {
		return fail(span, errors.Wrapf(ErrInvalidArgument, "%q is not an identifier", id))
	}
	rec, err := s.rt.Ledger().Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return fail(span, errors.Wrapf(ErrNotFound, "%s", id))
		}
		return fail(span, err)
	}
	s.audit(ctx, eventlog.Event{Action: eventlog.ActionRevoke, Kind: rec.Kind, IDs: []string{id}, Label: rec.Label})
	s.logger.Info("revoked", logpkg.Str("id", id), logpkg.Str("kind", rec.Kind))
	return nil
}

// audit records e. The ledger change it describes is already committed, so
// a failure is logged rather than returned.
func (s *Service) audit(ctx context.Context, e eventlog.Event) {
	if _, err := s.rt.Audit().Append(ctx, e); err != nil {
		s.logger.Warn("audit append failed",
			logpkg.Str("action", e.Action.String()),
			logpkg.Str("kind", e.Kind),
			logpkg.Err(err),
		)
	}
}

// Stats returns per-kind issue counts. Configured kinds are registered when
// the runtime opens, so they are listed even before their first mint.
func (s *Service) Stats(ctx context.Context) ([]ledger.KindMeta, error) {
	ctx, span := s.tracer.Start(ctx, "identifiers.Stats")
	defer span.End()

	metas, err := s.rt.Ledger().Kinds(ctx)
	if err != nil {
		return nil, fail(span, err)
	}
	return metas, nil
}
