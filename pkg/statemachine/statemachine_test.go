package statemachine_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrymomot/pushgate/pkg/statemachine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type status string
type event string

const (
	draft     status = "draft"
	inReview  status = "in_review"
	approved  status = "approved"
	published status = "published"

	submit  event = "submit"
	approve event = "approve"
	publish event = "publish"
)

func TestMachine(t *testing.T) {
	t.Parallel()

	t.Run("basic transitions", func(t *testing.T) {
		t.Parallel()

		sm := statemachine.MustNew(draft,
			statemachine.WithTransition[status, event](draft, inReview, submit),
			statemachine.WithTransition[status, event](inReview, approved, approve),
		)
		ctx := context.Background()

		assert.Equal(t, draft, sm.Current())

		require.NoError(t, sm.Fire(ctx, submit, nil))
		assert.Equal(t, inReview, sm.Current())

		require.NoError(t, sm.Fire(ctx, approve, nil))
		assert.Equal(t, approved, sm.Current())
	})

	t.Run("undefined event returns typed error and keeps state", func(t *testing.T) {
		t.Parallel()

		sm := statemachine.MustNew(draft,
			statemachine.WithTransition[status, event](draft, inReview, submit),
		)

		err := sm.Fire(context.Background(), publish, nil)
		require.Error(t, err)
		assert.True(t, statemachine.IsNoTransitionAvailableError(err))
		assert.Contains(t, err.Error(), "draft")
		assert.Contains(t, err.Error(), "publish")
		assert.Equal(t, draft, sm.Current())
	})

	t.Run("guards pick the first passing transition", func(t *testing.T) {
		t.Parallel()

		isOwner := func(_ context.Context, _ status, _ event, data any) bool {
			role, _ := data.(string)
			return role == "owner"
		}

		newReview := func() *statemachine.Machine[status, event] {
			return statemachine.MustNew(inReview,
				statemachine.WithTransition(inReview, published, approve,
					statemachine.WithGuard(statemachine.Guard[status, event](isOwner)),
				),
				statemachine.WithTransition[status, event](inReview, approved, approve),
			)
		}
		ctx := context.Background()

		sm := newReview()
		require.NoError(t, sm.Fire(ctx, approve, "reviewer"))
		assert.Equal(t, approved, sm.Current())

		sm = newReview()
		require.NoError(t, sm.Fire(ctx, approve, "owner"))
		assert.Equal(t, published, sm.Current())
	})

	t.Run("rejected by guards", func(t *testing.T) {
		t.Parallel()

		never := func(context.Context, status, event, any) bool { return false }
		sm := statemachine.MustNew(draft,
			statemachine.WithTransition(draft, inReview, submit,
				statemachine.WithGuard(statemachine.Guard[status, event](never)),
			),
		)

		err := sm.Fire(context.Background(), submit, nil)
		assert.True(t, statemachine.IsTransitionRejectedError(err))
		assert.Equal(t, draft, sm.Current())
	})

	t.Run("failing action aborts transition", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		fail := func(context.Context, status, status, event, any) error { return boom }
		sm := statemachine.MustNew(draft,
			statemachine.WithTransition(draft, inReview, submit,
				statemachine.WithAction(statemachine.Action[status, event](fail)),
			),
		)

		err := sm.Fire(context.Background(), submit, nil)
		require.ErrorIs(t, err, boom)
		assert.Equal(t, draft, sm.Current())
	})

	t.Run("actions see from and to", func(t *testing.T) {
		t.Parallel()

		var gotFrom, gotTo status
		record := func(_ context.Context, from, to status, _ event, _ any) error {
			gotFrom, gotTo = from, to
			return nil
		}
		sm := statemachine.MustNew(draft,
			statemachine.WithTransition(draft, inReview, submit,
				statemachine.WithAction(statemachine.Action[status, event](record)),
			),
		)

		require.NoError(t, sm.Fire(context.Background(), submit, nil))
		assert.Equal(t, draft, gotFrom)
		assert.Equal(t, inReview, gotTo)
	})
}

func TestListeners(t *testing.T) {
	t.Parallel()

	var seen []string
	sm := statemachine.MustNew(draft,
		statemachine.WithTransition[status, event](draft, inReview, submit),
		statemachine.WithTransition[status, event](inReview, approved, approve),
		statemachine.WithListener[status, event](func(from, to status, evt event) {
			seen = append(seen, string(from)+">"+string(to)+":"+string(evt))
		}),
	)
	ctx := context.Background()

	require.NoError(t, sm.Fire(ctx, submit, nil))
	require.Error(t, sm.Fire(ctx, submit, nil))
	require.NoError(t, sm.Fire(ctx, approve, nil))

	assert.Equal(t, []string{"draft>in_review:submit", "in_review>approved:approve"}, seen)
}

func TestListenerCanReadCurrent(t *testing.T) {
	t.Parallel()

	sm := statemachine.MustNew(draft,
		statemachine.WithTransition[status, event](draft, inReview, submit),
	)

	var observed status
	sm.OnTransition(func(_, _ status, _ event) {
		observed = sm.Current()
	})

	require.NoError(t, sm.Fire(context.Background(), submit, nil))
	assert.Equal(t, inReview, observed)
}

func TestWithTransitionsRejectsNoopSelfLoop(t *testing.T) {
	t.Parallel()

	_, err := statemachine.New(draft, statemachine.WithTransitions([]statemachine.Transition[status, event]{
		{From: draft, To: inReview, Event: submit},
		{From: inReview, To: inReview, Event: submit},
	}))
	require.ErrorIs(t, err, statemachine.ErrInvalidTransition)

	assert.Panics(t, func() {
		statemachine.MustNew(draft, statemachine.WithTransitions([]statemachine.Transition[status, event]{
			{From: draft, To: draft, Event: submit},
		}))
	})
}

func TestConcurrentFire(t *testing.T) {
	t.Parallel()

	sm := statemachine.MustNew(draft,
		statemachine.WithTransition[status, event](draft, inReview, submit),
	)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sm.Fire(context.Background(), submit, nil); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, inReview, sm.Current())
}
