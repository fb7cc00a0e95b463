package identifiersvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rzbill/cuidd/internal/eventlog"
)

func TestMintAndRevokeAreAudited(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	recs, err := svc.Mint(ctx, MintRequest{Kind: "secret", Count: 2, Label: "vault"})
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, recs[1].ID))

	res, err := svc.Events(ctx, EventsRequest{})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	require.Zero(t, res.NextAfter)

	mint := res.Items[0]
	require.Equal(t, uint64(1), mint.Seq)
	require.Equal(t, eventlog.ActionMint, mint.Action)
	require.Equal(t, "secret", mint.Kind)
	require.Equal(t, "vault", mint.Label)
	require.Equal(t, []string{recs[0].ID, recs[1].ID}, mint.IDs)

	revoke := res.Items[1]
	require.Equal(t, eventlog.ActionRevoke, revoke.Action)
	require.Equal(t, []string{recs[1].ID}, revoke.IDs)
	require.Equal(t, "secret", revoke.Kind)
}

func TestFailedMintIsNotAudited(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	_, err := svc.Mint(ctx, MintRequest{Kind: "spaceship"})
	require.Error(t, err)
	res, err := svc.Events(ctx, EventsRequest{})
	require.NoError(t, err)
	require.Empty(t, res.Items)
}

func TestEventsPaging(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	for i := 0; i < 3; i++ {
		_, err := svc.Mint(ctx, MintRequest{Kind: "todo"})
		require.NoError(t, err)
	}

	page, err := svc.Events(ctx, EventsRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, uint64(2), page.NextAfter)

	rest, err := svc.Events(ctx, EventsRequest{After: page.NextAfter, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	require.Equal(t, uint64(3), rest.Items[0].Seq)

	newest, err := svc.Events(ctx, EventsRequest{Reverse: true, Limit: 1})
	require.NoError(t, err)
	require.Equal(t, uint64(3), newest.Items[0].Seq)

	_, err = svc.Events(ctx, EventsRequest{Limit: -1})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEventsWait(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	start := time.Now()
	res, err := svc.Events(ctx, EventsRequest{WaitMs: 30})
	require.NoError(t, err)
	require.Empty(t, res.Items)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_, _ = svc.Mint(ctx, MintRequest{Kind: "todo"})
	}()
	res, err = svc.Events(ctx, EventsRequest{WaitMs: 5000})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
}

func TestTrimEvents(t *testing.T) {
	ctx := context.Background()
	svc, rt := newTestService(t, nil)

	old := time.Now().Add(-2 * time.Hour).UnixMilli()
	_, err := rt.Audit().Append(ctx, eventlog.Event{AtMs: old, Action: eventlog.ActionMint, Kind: "todo"})
	require.NoError(t, err)
	_, err = svc.Mint(ctx, MintRequest{Kind: "todo"})
	require.NoError(t, err)

	n, err := svc.TrimEvents(ctx, time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	res, err := svc.Events(ctx, EventsRequest{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.Equal(t, uint64(2), res.Items[0].Seq)

	_, err = svc.TrimEvents(ctx, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}
