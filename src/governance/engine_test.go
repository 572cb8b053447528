package governance

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/groupgov/src/types"
)

type fakeRoster struct {
	mu     sync.Mutex
	roster Roster
	err    error
}

func (f *fakeRoster) Roster(ctx context.Context, groupID string) (Roster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return Roster{}, f.err
	}
	return f.roster, nil
}

func (f *fakeRoster) set(r Roster) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roster = r
}

func (f *fakeRoster) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeExecutor struct {
	mu       sync.Mutex
	executed []string
}

func (f *fakeExecutor) Execute(ctx context.Context, p *types.Proposal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, p.ID)
	return nil
}

func (f *fakeExecutor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.executed)
}

type fakeNotifier struct {
	mu        sync.Mutex
	announced int
	reminded  [][]string
	outcomes  []string
}

func (f *fakeNotifier) Announce(ctx context.Context, p *types.Proposal, voters []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.announced++
	return nil
}

func (f *fakeNotifier) Remind(ctx context.Context, p *types.Proposal, voters []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminded = append(f.reminded, voters)
	return nil
}

func (f *fakeNotifier) Outcome(ctx context.Context, p *types.Proposal, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, status)
	return nil
}

func (f *fakeNotifier) outcomeList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.outcomes...)
}

type harness struct {
	engine   *Engine
	store    *MemoryStore
	roster   *fakeRoster
	executor *fakeExecutor
	notifier *fakeNotifier
	clock    time.Time
}

func newHarness(t *testing.T, r Roster) *harness {
	h := &harness{
		store:    NewMemoryStore(),
		roster:   &fakeRoster{roster: r},
		executor: &fakeExecutor{},
		notifier: &fakeNotifier{},
		clock:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	h.engine = NewEngine(h.store, h.roster, h.executor, h.notifier)
	h.engine.now = func() time.Time { return h.clock }
	return h
}

func (h *harness) advance(d time.Duration) {
	h.clock = h.clock.Add(d)
}

func (h *harness) status(t *testing.T, id string) string {
	p, err := h.store.GetProposal(context.Background(), id)
	require.NoError(t, err)
	return p.Status
}

func TestProposeOwnerAloneSelfPasses(t *testing.T) {
	h := newHarness(t, Roster{OwnerID: "owner"})
	ctx := context.Background()

	id, err := h.engine.Propose(ctx, "g1", "owner", types.CategoryConfig, "welcome_message", "on")
	require.NoError(t, err)

	// The owner is the whole electorate; the automatic self ballot
	// completes attendance with 100 weight.
	assert.Equal(t, types.StatusPassed, h.status(t, id))
	assert.Equal(t, 1, h.executor.count())
	assert.Equal(t, []string{types.StatusPassed}, h.notifier.outcomeList())
	assert.Equal(t, 1, h.notifier.announced)
}

func TestAttendanceGateBlocksEarlyResult(t *testing.T) {
	h := newHarness(t, Roster{OwnerID: "owner", AdminIDs: []string{"a1", "a2"}})
	ctx := context.Background()

	id, err := h.engine.Propose(ctx, "g1", "owner", types.CategoryConfig, "slow_mode", "on")
	require.NoError(t, err)

	// Owner (50) already voted yes via self ballot; a1 agrees. The
	// combined weight clears the threshold but a2 has not voted.
	require.NoError(t, h.engine.CastBallot(ctx, id, "a1", types.ChoiceYes))
	assert.Equal(t, types.StatusPending, h.status(t, id))
	assert.Equal(t, 0, h.executor.count())

	require.NoError(t, h.engine.CastBallot(ctx, id, "a2", types.ChoiceNo))
	assert.Equal(t, types.StatusPassed, h.status(t, id))
	assert.Equal(t, 1, h.executor.count())
}

func TestTieScorePasses(t *testing.T) {
	h := newHarness(t, Roster{AdminIDs: []string{"a1", "a2"}})
	ctx := context.Background()

	id, err := h.engine.Propose(ctx, "g1", "a1", types.CategoryConfig, "slow_mode", "off")
	require.NoError(t, err)

	require.NoError(t, h.engine.CastBallot(ctx, id, "a2", types.ChoiceNo))

	// Two equal-weight admins split 50/50; an exact 50.0 passes.
	assert.Equal(t, types.StatusPassed, h.status(t, id))
}

func TestRejection(t *testing.T) {
	h := newHarness(t, Roster{OwnerID: "owner", AdminIDs: []string{"a1", "a2", "a3"}})
	ctx := context.Background()

	id, err := h.engine.Propose(ctx, "g1", "a1", types.CategoryConfig, "slow_mode", "on")
	require.NoError(t, err)

	require.NoError(t, h.engine.CastBallot(ctx, id, "a2", types.ChoiceNo))
	require.NoError(t, h.engine.CastBallot(ctx, id, "a3", types.ChoiceNo))
	require.NoError(t, h.engine.CastBallot(ctx, id, "owner", types.ChoiceNo))

	assert.Equal(t, types.StatusRejected, h.status(t, id))
	assert.Equal(t, 0, h.executor.count())
	assert.Equal(t, []string{types.StatusRejected}, h.notifier.outcomeList())
}

func TestBlacklistOwnerHasNoWeight(t *testing.T) {
	h := newHarness(t, Roster{OwnerID: "owner", AdminIDs: []string{"a1", "a2"}})
	ctx := context.Background()

	id, err := h.engine.Propose(ctx, "g1", "a1", types.CategoryBlacklistAdd, "spamword", "")
	require.NoError(t, err)

	// a2 disagrees; the owner still owes attendance even with zero
	// weight, so nothing is final yet.
	require.NoError(t, h.engine.CastBallot(ctx, id, "a2", types.ChoiceNo))
	assert.Equal(t, types.StatusPending, h.status(t, id))

	// The owner's no carries no weight: admins split 50/50 and the
	// tie passes.
	require.NoError(t, h.engine.CastBallot(ctx, id, "owner", types.ChoiceNo))
	assert.Equal(t, types.StatusPassed, h.status(t, id))
	assert.Equal(t, 1, h.executor.count())
}

func TestRecastIsIdempotent(t *testing.T) {
	h := newHarness(t, Roster{OwnerID: "owner", AdminIDs: []string{"a1", "a2"}})
	ctx := context.Background()

	id, err := h.engine.Propose(ctx, "g1", "owner", types.CategoryConfig, "slow_mode", "on")
	require.NoError(t, err)

	require.NoError(t, h.engine.CastBallot(ctx, id, "a1", types.ChoiceYes))
	require.NoError(t, h.engine.CastBallot(ctx, id, "a1", types.ChoiceYes))
	require.NoError(t, h.engine.CastBallot(ctx, id, "a1", types.ChoiceNo))

	ballots, err := h.store.ListBallots(ctx, id)
	require.NoError(t, err)
	assert.Len(t, ballots, 2) // owner self ballot + one row for a1

	choices := map[string]string{}
	for _, b := range ballots {
		choices[b.VoterID] = b.Choice
	}
	assert.Equal(t, types.ChoiceNo, choices["a1"], "last cast wins")
	assert.Equal(t, types.StatusPending, h.status(t, id))
}

func TestLazyExpiryOnCast(t *testing.T) {
	h := newHarness(t, Roster{OwnerID: "owner", AdminIDs: []string{"a1"}})
	ctx := context.Background()

	id, err := h.engine.Propose(ctx, "g1", "owner", types.CategoryConfig, "slow_mode", "on")
	require.NoError(t, err)

	h.advance(31 * 24 * time.Hour)

	err = h.engine.CastBallot(ctx, id, "a1", types.ChoiceYes)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, types.StatusExpired, h.status(t, id))
	assert.Contains(t, h.notifier.outcomeList(), types.StatusExpired)

	// Once terminal, further casts report the closure.
	err = h.engine.CastBallot(ctx, id, "a1", types.ChoiceYes)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestReminderCooldown(t *testing.T) {
	h := newHarness(t, Roster{OwnerID: "owner", AdminIDs: []string{"a1", "a2"}})
	ctx := context.Background()

	id, err := h.engine.Propose(ctx, "g1", "owner", types.CategoryConfig, "slow_mode", "on")
	require.NoError(t, err)

	assert.ErrorIs(t, h.engine.PingNonvoters(ctx, id, "a1"), ErrForbidden)

	require.NoError(t, h.engine.PingNonvoters(ctx, id, "owner"))
	require.Len(t, h.notifier.reminded, 1)
	assert.ElementsMatch(t, []string{"a1", "a2"}, h.notifier.reminded[0])

	assert.ErrorIs(t, h.engine.PingNonvoters(ctx, id, "owner"), ErrCooldown)

	h.advance(25 * time.Hour)
	require.NoError(t, h.engine.PingNonvoters(ctx, id, "owner"))
	assert.Len(t, h.notifier.reminded, 2)
}

func TestCancel(t *testing.T) {
	h := newHarness(t, Roster{OwnerID: "owner", AdminIDs: []string{"a1"}})
	ctx := context.Background()

	id, err := h.engine.Propose(ctx, "g1", "owner", types.CategoryConfig, "slow_mode", "on")
	require.NoError(t, err)

	assert.ErrorIs(t, h.engine.Cancel(ctx, id, "a1"), ErrForbidden)

	require.NoError(t, h.engine.Cancel(ctx, id, "owner"))
	assert.Equal(t, types.StatusCancelled, h.status(t, id))
	assert.Equal(t, 0, h.executor.count())

	assert.ErrorIs(t, h.engine.CastBallot(ctx, id, "a1", types.ChoiceYes), ErrClosed)
	assert.ErrorIs(t, h.engine.Cancel(ctx, id, "owner"), ErrClosed)
}

func TestRosterFailureLeavesPending(t *testing.T) {
	h := newHarness(t, Roster{OwnerID: "owner", AdminIDs: []string{"a1"}})
	ctx := context.Background()

	id, err := h.engine.Propose(ctx, "g1", "owner", types.CategoryConfig, "slow_mode", "on")
	require.NoError(t, err)

	h.roster.fail(fmt.Errorf("gateway timeout"))

	// The ballot is durable and acknowledged; evaluation is retried by
	// the next cast instead of guessing membership.
	require.NoError(t, h.engine.CastBallot(ctx, id, "a1", types.ChoiceYes))
	assert.Equal(t, types.StatusPending, h.status(t, id))
	assert.Empty(t, h.notifier.outcomeList())

	h.roster.fail(nil)
	require.NoError(t, h.engine.CastBallot(ctx, id, "a1", types.ChoiceYes))
	assert.Equal(t, types.StatusPassed, h.status(t, id))
}

func TestRosterChangeReEvaluated(t *testing.T) {
	h := newHarness(t, Roster{OwnerID: "owner", AdminIDs: []string{"a1", "a2"}})
	ctx := context.Background()

	id, err := h.engine.Propose(ctx, "g1", "owner", types.CategoryConfig, "slow_mode", "on")
	require.NoError(t, err)

	require.NoError(t, h.engine.CastBallot(ctx, id, "a1", types.ChoiceYes))
	assert.Equal(t, types.StatusPending, h.status(t, id), "a2 still owes a ballot")

	// a2 is demoted mid-vote. The next evaluation sees the live
	// roster, where attendance is already complete.
	h.roster.set(Roster{OwnerID: "owner", AdminIDs: []string{"a1"}})

	require.NoError(t, h.engine.CastBallot(ctx, id, "a1", types.ChoiceYes))
	assert.Equal(t, types.StatusPassed, h.status(t, id))
}

func TestConcurrentDecidingBallotsExecuteOnce(t *testing.T) {
	for run := 0; run < 20; run++ {
		h := newHarness(t, Roster{OwnerID: "owner", AdminIDs: []string{"a1", "a2"}})
		ctx := context.Background()

		id, err := h.engine.Propose(ctx, "g1", "owner", types.CategoryConfig, "slow_mode", "on")
		require.NoError(t, err)

		var wg sync.WaitGroup
		for _, voter := range []string{"a1", "a2"} {
			wg.Add(1)
			go func(v string) {
				defer wg.Done()
				assert.NoError(t, h.engine.CastBallot(ctx, id, v, types.ChoiceYes))
			}(voter)
		}
		wg.Wait()

		// Both evaluators may reach the threshold; only the one that
		// wins the status flip runs the effect.
		assert.Equal(t, types.StatusPassed, h.status(t, id))
		assert.Equal(t, 1, h.executor.count())
		assert.Equal(t, []string{types.StatusPassed}, h.notifier.outcomeList())
	}
}

func TestProposeRejectsUnknownCategory(t *testing.T) {
	h := newHarness(t, Roster{OwnerID: "owner"})

	_, err := h.engine.Propose(context.Background(), "g1", "owner", "coup", "x", "y")
	assert.Error(t, err)
}

func TestCastBallotUnknownProposal(t *testing.T) {
	h := newHarness(t, Roster{OwnerID: "owner"})

	err := h.engine.CastBallot(context.Background(), "missing", "owner", types.ChoiceYes)
	assert.ErrorIs(t, err, ErrNotFound)
}
