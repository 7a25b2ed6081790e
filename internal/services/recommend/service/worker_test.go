package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"contextual/internal/adapters/dingtalk"
	"contextual/internal/core/event"
	"contextual/internal/core/policy"
	perr "contextual/internal/platform/errors"
	"contextual/internal/platform/queue"
	"contextual/internal/platform/testkit"
	"contextual/internal/services/recommend/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	err   error
	calls int
	last  string
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	f.last = texts[0]
	if f.err != nil {
		return nil, f.err
	}
	return [][]float32{{1, 0, 0}}, nil
}

type fakeSearch struct {
	cands []domain.Candidate
	err   error
	calls int
}

func (f *fakeSearch) Search(context.Context, string, []float32, int) ([]domain.Candidate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.cands) == 0 {
		return nil, perr.ErrNotFound
	}
	return f.cands, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	cards []dingtalk.ActionCard
	err   error
}

func (f *fakeNotifier) Send(_ context.Context, c dingtalk.ActionCard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.cards = append(f.cards, c)
	return nil
}

type fakeStore struct {
	mu   sync.Mutex
	rows map[string]domain.Notification
	err  error
}

func (f *fakeStore) SaveNotification(_ context.Context, n domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows[n.MessageID] = n
	return nil
}

type fakeDedupe struct{ seen map[string]bool }

func (f *fakeDedupe) Seen(_ context.Context, id string) (bool, error) { return f.seen[id], nil }
func (f *fakeDedupe) Mark(_ context.Context, id string) error         { f.seen[id] = true; return nil }

type rig struct {
	emb    *fakeEmbedder
	search *fakeSearch
	notif  *fakeNotifier
	store  *fakeStore
	src    *chanSource
	w      *Worker
}

func newRig(t *testing.T, cands ...domain.Candidate) *rig {
	t.Helper()
	r := &rig{
		emb:    &fakeEmbedder{},
		search: &fakeSearch{cands: cands},
		notif:  &fakeNotifier{},
		store:  &fakeStore{rows: map[string]domain.Notification{}},
		src:    &chanSource{ch: make(chan queue.Delivery, 8)},
	}
	r.w = New(Deps{
		Source:   r.src,
		Embedder: r.emb,
		Searcher: r.search,
		Notifier: r.notif,
		Store:    r.store,
	}, domain.Config{
		ProjectKey: "SCRUM",
		TopK:       3,
		DefaultKey: "DEMO-1",
		TenantID:   "tenant-demo",
		Gate:       policy.Gate{Min: 0.70, Low: 0.80},
		Card:       dingtalk.CardOptions{CallbackBase: "http://cb", WarnScore: 0.80},
	})
	return r
}

func commitMsg(t *testing.T, id, message string) queue.Message {
	t.Helper()
	env := event.New("tenant-x", event.Commit{ID: id, Repo: "acme/api", Message: message, Files: []string{"login.go"}})
	b, err := json.Marshal(env)
	require.NoError(t, err)
	m := queue.NewMessage(event.TypeGitCommitRaw, b)
	return m
}

func TestProcess_NotifiesWithScore(t *testing.T) {
	r := newRig(t, domain.Candidate{Key: "SCRUM-7", Score: 0.91}, domain.Candidate{Key: "SCRUM-3", Score: 0.84})
	m := commitMsg(t, "abc123def4567890", "fix login bug")

	out := r.w.Process(context.Background(), m)
	require.Equal(t, domain.OutcomeNotified, out)

	assert.Equal(t, "fix login bug\nfiles: login.go\nrepo:acme/api", r.emb.last)
	require.Len(t, r.notif.cards, 1)
	assert.Contains(t, r.notif.cards[0].Text, "**SCRUM-7**（置信度 0.91）")
	assert.Contains(t, r.notif.cards[0].Text, "- SCRUM-3（0.84）")

	row := r.store.rows[m.ID]
	require.NotNil(t, row.Confidence)
	assert.InDelta(t, 0.91, *row.Confidence, 1e-9)
	assert.Equal(t, "SCRUM-7", row.RecommendedKey)
	assert.Equal(t, "abc123def456", row.CommitHash)
	assert.Equal(t, "abc123def4567890", row.TraceID)
	assert.Equal(t, "tenant-x", row.TenantID)
}

func TestProcess_BelowMinDropsWithoutSideEffects(t *testing.T) {
	r := newRig(t, domain.Candidate{Key: "SCRUM-7", Score: 0.69})

	out := r.w.Process(context.Background(), commitMsg(t, "abc123def4567890", "x"))
	assert.Equal(t, domain.OutcomeDropped, out)
	assert.True(t, out.Ack())
	assert.Empty(t, r.notif.cards)
	assert.Empty(t, r.store.rows)
}

func TestProcess_WarnTierStillSends(t *testing.T) {
	r := newRig(t, domain.Candidate{Key: "SCRUM-7", Score: 0.75})

	require.Equal(t, domain.OutcomeNotified, r.w.Process(context.Background(), commitMsg(t, "abc", "x")))
	assert.Contains(t, r.notif.cards[0].Title, "低置信度")
}

func TestProcess_NoCandidatesUsesDefaultKey(t *testing.T) {
	r := newRig(t)
	m := commitMsg(t, "abc123def456", "fix login bug")

	require.Equal(t, domain.OutcomeNotified, r.w.Process(context.Background(), m))
	row := r.store.rows[m.ID]
	assert.Equal(t, "DEMO-1", row.RecommendedKey)
	assert.Nil(t, row.Confidence)
	assert.NotContains(t, r.notif.cards[0].Title, "低置信度")
}

func TestProcess_EmbeddingFailureDegrades(t *testing.T) {
	for name, err := range map[string]error{
		"upstream":  perr.Upstreamf("status 500"),
		"dimension": perr.DimensionMismatch(768, 1024),
	} {
		t.Run(name, func(t *testing.T) {
			r := newRig(t, domain.Candidate{Key: "SCRUM-7", Score: 0.99})
			r.emb.err = err
			m := commitMsg(t, "abc", "x")

			require.Equal(t, domain.OutcomeNotified, r.w.Process(context.Background(), m))
			assert.Zero(t, r.search.calls, "no search without a vector")
			assert.Equal(t, "DEMO-1", r.store.rows[m.ID].RecommendedKey)
			assert.Nil(t, r.store.rows[m.ID].Confidence)
		})
	}
}

func TestProcess_SearchFailureDegrades(t *testing.T) {
	r := newRig(t)
	r.search.err = perr.Wrap(errors.New("conn reset"), perr.ErrorCodeDB, "search")
	m := commitMsg(t, "abc", "x")

	require.Equal(t, domain.OutcomeNotified, r.w.Process(context.Background(), m))
	assert.Equal(t, "DEMO-1", r.store.rows[m.ID].RecommendedKey)
}

func TestProcess_DispatchFailureRetries(t *testing.T) {
	r := newRig(t, domain.Candidate{Key: "SCRUM-7", Score: 0.9})
	r.notif.err = perr.WithOp(perr.Upstreamf("dingtalk errcode 310000"), "dingtalk.send")

	out := r.w.Process(context.Background(), commitMsg(t, "abc", "x"))
	assert.Equal(t, domain.OutcomeRetry, out)
	assert.False(t, out.Ack())
	assert.Empty(t, r.store.rows)
}

func TestProcess_StoreFailureRetries(t *testing.T) {
	r := newRig(t, domain.Candidate{Key: "SCRUM-7", Score: 0.9})
	r.store.err = errors.New("pg down")
	assert.Equal(t, domain.OutcomeRetry, r.w.Process(context.Background(), commitMsg(t, "abc", "x")))
}

func TestProcess_RejectsGarbage(t *testing.T) {
	r := newRig(t)
	assert.Equal(t, domain.OutcomeRejected, r.w.Process(context.Background(), queue.NewMessage("x", []byte("nope"))))
	assert.Zero(t, r.emb.calls)
}

func TestProcess_RedeliveryKeepsOneRow(t *testing.T) {
	r := newRig(t, domain.Candidate{Key: "SCRUM-7", Score: 0.9})
	m := commitMsg(t, "abc", "x")

	r.w.Process(context.Background(), m)
	m.Attempt = 2
	r.w.Process(context.Background(), m)
	assert.Len(t, r.store.rows, 1)
	assert.Len(t, r.notif.cards, 2)
}

func TestProcess_Dedupe(t *testing.T) {
	r := newRig(t, domain.Candidate{Key: "SCRUM-7", Score: 0.9})
	dd := &fakeDedupe{seen: map[string]bool{"abc": true}}
	r.w.d.Dedupe = dd

	assert.Equal(t, domain.OutcomeDuplicate, r.w.Process(context.Background(), commitMsg(t, "abc", "x")))
	assert.Empty(t, r.notif.cards)
}

// chanSource hands out deliveries from a channel and records settlement
type chanSource struct {
	ch chan queue.Delivery
}

func (s *chanSource) Deliveries(ctx context.Context) (<-chan queue.Delivery, error) {
	out := make(chan queue.Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d := <-s.ch:
				select {
				case out <- d:
				case <-ctx.Done():
					_ = d.Nack(context.Background(), true)
					return
				}
			}
		}
	}()
	return out, nil
}

type settle struct {
	mu      sync.Mutex
	acked   bool
	nacked  bool
	requeue bool
}

type fakeDelivery struct {
	m queue.Message
	s *settle
}

func (d fakeDelivery) Message() queue.Message { return d.m }
func (d fakeDelivery) Ack(context.Context) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	d.s.acked = true
	return nil
}
func (d fakeDelivery) Nack(_ context.Context, requeue bool) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	d.s.nacked, d.s.requeue = true, requeue
	return nil
}

func (s *settle) state() (acked, nacked, requeue bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acked, s.nacked, s.requeue
}

func TestRun_SettlesAndDrains(t *testing.T) {
	r := newRig(t, domain.Candidate{Key: "SCRUM-7", Score: 0.9})
	dd := &fakeDedupe{seen: map[string]bool{}}
	r.w.d.Dedupe = dd

	ok, low, bad := &settle{}, &settle{}, &settle{}
	r.src.ch <- fakeDelivery{commitMsg(t, "t-ok", "x"), ok}
	r.src.ch <- fakeDelivery{queue.NewMessage("x", []byte("{")), bad}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.w.Run(ctx) }()

	testkit.Eventually(t, 2*time.Second, func() bool {
		a, _, _ := ok.state()
		_, n, _ := bad.state()
		return a && n
	}, "first two deliveries settled")

	_, _, requeue := bad.state()
	assert.False(t, requeue, "undecodable body is not requeued")

	r.search.cands = []domain.Candidate{{Key: "SCRUM-1", Score: 0.1}}
	r.src.ch <- fakeDelivery{commitMsg(t, "t-low", "x"), low}
	testkit.Eventually(t, 2*time.Second, func() bool { a, _, _ := low.state(); return a }, "dropped delivery acked")
	assert.True(t, dd.seen["t-ok"], "notified trace is marked")
	assert.False(t, dd.seen["t-low"], "dropped trace is not marked")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, uint64(3), r.w.Stats().Processed)
	assert.Equal(t, uint64(1), r.w.Stats().Dropped)
}

func TestRun_DispatchFailureNacksWithRequeue(t *testing.T) {
	r := newRig(t, domain.Candidate{Key: "SCRUM-7", Score: 0.9})
	r.notif.err = perr.Upstreamf("down")

	s := &settle{}
	r.src.ch <- fakeDelivery{commitMsg(t, "abc", "x"), s}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.w.Run(ctx) }()

	testkit.Eventually(t, 2*time.Second, func() bool { _, n, _ := s.state(); return n }, "nacked")
	_, _, requeue := s.state()
	assert.True(t, requeue)
}

func TestNewPanicsOnMissingDeps(t *testing.T) {
	assert.Panics(t, func() { New(Deps{}, domain.Config{}) })
}
