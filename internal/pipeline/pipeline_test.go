package pipeline_test

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmagro/sidecar-payouts/internal/payouts"
	"github.com/dmagro/sidecar-payouts/internal/pipeline"
	"github.com/dmagro/sidecar-payouts/internal/sidecar"
)

// stubSidecar records requested paths and answers from per-path fixtures.
type stubSidecar struct {
	mu       sync.Mutex
	paths    []string
	root     int
	chain    string
	payouts  map[string]string // account -> body
	failures map[string]int    // account -> status
}

func (s *stubSidecar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.paths = append(s.paths, r.URL.Path+"?"+r.URL.RawQuery)
	s.mu.Unlock()

	switch {
	case r.URL.Path == "/":
		if s.root != 0 {
			w.WriteHeader(s.root)
		}
	case r.URL.Path == "/node/version":
		_, _ = w.Write([]byte(`{"clientVersion":"1.0.0","clientImplName":"parity-polkadot","chain":"` + s.chain + `"}`))
	case strings.HasPrefix(r.URL.Path, "/accounts/"):
		account := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/accounts/"), "/staking-payouts")
		if status, ok := s.failures[account]; ok {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte(s.payouts[account]))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *stubSidecar) requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

func newRunner(t *testing.T, stub *stubSidecar, opts ...pipeline.Option) *pipeline.Runner {
	t.Helper()

	server := httptest.NewServer(stub)
	t.Cleanup(server.Close)

	return pipeline.New(sidecar.NewClientWithHTTP(server.Client(), server.URL), opts...)
}

func TestRunEmptyErasReportsZero(t *testing.T) {
	t.Parallel()

	stub := &stubSidecar{chain: "Development", payouts: map[string]string{"alice": `{"erasPayouts": []}`}}
	runner := newRunner(t, stub)

	report, err := runner.Run(context.Background(), pipeline.Request{Accounts: []string{"alice"}, Depth: 2})

	require.NoError(t, err)
	assert.Equal(t, "Development", report.Chain)
	require.Len(t, report.Accounts, 1)
	assert.Equal(t, 0.0, report.Accounts[0].Summary.Total)
	assert.Equal(t, payouts.OutcomeNoEras, report.Accounts[0].Summary.Outcome)
	assert.Equal(t, []string{
		"/?",
		"/node/version?",
		"/accounts/alice/staking-payouts?depth=3&unclaimedOnly=true",
	}, stub.requests())
}

func TestRunSumsUnclaimed(t *testing.T) {
	t.Parallel()

	body := `{"at":{"hash":"0x00","height":"100"},"erasPayouts":[{"era":1,"payouts":[
		{"nominatorStakingPayout": 10.5, "claimed": false},
		{"nominatorStakingPayout": 4.0, "claimed": true}
	]}]}`
	stub := &stubSidecar{chain: "Development", payouts: map[string]string{"alice": body}}
	runner := newRunner(t, stub)

	report, err := runner.Run(context.Background(), pipeline.Request{Accounts: []string{"alice"}, Depth: 0})

	require.NoError(t, err)
	assert.Equal(t, 10.5, report.Accounts[0].Summary.Total)
	assert.Equal(t, 10.5, report.Total())
}

func TestRunNoChainStopsAfterProbe(t *testing.T) {
	t.Parallel()

	stub := &stubSidecar{chain: "None", payouts: map[string]string{"alice": `{"erasPayouts":[]}`}}
	runner := newRunner(t, stub)

	report, err := runner.Run(context.Background(), pipeline.Request{Accounts: []string{"alice"}, Depth: 1})

	require.ErrorIs(t, err, sidecar.ErrNoChainAttached)
	assert.Nil(t, report)
	assert.Equal(t, []string{"/?", "/node/version?"}, stub.requests())
}

func TestRunUnreachableStopsImmediately(t *testing.T) {
	t.Parallel()

	stub := &stubSidecar{root: http.StatusServiceUnavailable, chain: "Development"}
	runner := newRunner(t, stub)

	_, err := runner.Run(context.Background(), pipeline.Request{Accounts: []string{"alice"}, Depth: 1})

	require.ErrorIs(t, err, sidecar.ErrUnreachable)
	assert.Equal(t, []string{"/?"}, stub.requests())
}

func TestRunQueryFailedIsTerminal(t *testing.T) {
	t.Parallel()

	stub := &stubSidecar{chain: "Development", failures: map[string]int{"bogus": http.StatusBadRequest}}
	runner := newRunner(t, stub)

	_, err := runner.Run(context.Background(), pipeline.Request{Accounts: []string{"bogus"}, Depth: 1})

	require.ErrorIs(t, err, sidecar.ErrQueryFailed)
}

func TestRunInvalidBodyIsTerminal(t *testing.T) {
	t.Parallel()

	stub := &stubSidecar{chain: "Development", payouts: map[string]string{"alice": "not json"}}
	runner := newRunner(t, stub)

	_, err := runner.Run(context.Background(), pipeline.Request{Accounts: []string{"alice"}, Depth: 1})

	require.ErrorIs(t, err, payouts.ErrInvalidResponseShape)
}

func TestRunMissingPayoutsArrayIsInformational(t *testing.T) {
	t.Parallel()

	body := `{"erasPayouts":[{"payouts":[{"nominatorStakingPayout":2,"claimed":false}]},{"era":9}]}`
	stub := &stubSidecar{chain: "Development", payouts: map[string]string{"alice": body}}
	runner := newRunner(t, stub)

	report, err := runner.Run(context.Background(), pipeline.Request{Accounts: []string{"alice"}, Depth: 1})

	require.NoError(t, err)
	ar := report.Accounts[0]
	require.ErrorIs(t, ar.Err, payouts.ErrMissingPayoutsArray)
	assert.Equal(t, payouts.OutcomeMissingPayouts, ar.Summary.Outcome)
	assert.Equal(t, 2.0, ar.Summary.Total)
}

func TestRunLenientPolicy(t *testing.T) {
	t.Parallel()

	body := `{"erasPayouts":[{"payouts":[]},{"payouts":[{"nominatorStakingPayout":5,"claimed":false}]}]}`
	stub := &stubSidecar{chain: "Development", payouts: map[string]string{"alice": body}}
	runner := newRunner(t, stub, pipeline.WithPolicy(payouts.PolicyLenient))

	report, err := runner.Run(context.Background(), pipeline.Request{Accounts: []string{"alice"}, Depth: 1})

	require.NoError(t, err)
	assert.Equal(t, "lenient", report.Policy)
	assert.Equal(t, 5.0, report.Accounts[0].Summary.Total)
}

func TestRunMultipleAccountsKeepsOrder(t *testing.T) {
	t.Parallel()

	stub := &stubSidecar{chain: "Kusama", payouts: map[string]string{
		"alice": `{"erasPayouts":[{"payouts":[{"nominatorStakingPayout":1,"claimed":false}]}]}`,
		"bob":   `{"erasPayouts":[{"payouts":[{"nominatorStakingPayout":2,"claimed":false}]}]}`,
		"carol": `{"erasPayouts":[]}`,
	}}
	started := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	runner := newRunner(t, stub,
		pipeline.WithConcurrency(3),
		pipeline.WithClock(func() time.Time { return started }),
	)

	report, err := runner.Run(context.Background(), pipeline.Request{Accounts: []string{"alice", "bob", "carol"}, Depth: 5})

	require.NoError(t, err)
	require.Len(t, report.Accounts, 3)
	assert.Equal(t, "alice", report.Accounts[0].Account)
	assert.Equal(t, "bob", report.Accounts[1].Account)
	assert.Equal(t, "carol", report.Accounts[2].Account)
	assert.Equal(t, 3.0, report.Total())
	assert.Equal(t, started, report.StartedAt)
	assert.True(t, strings.HasSuffix(report.Accounts[1].URL, "/accounts/bob/staking-payouts?depth=6&unclaimedOnly=true"))
}

func TestRunRejectsMissingAccounts(t *testing.T) {
	t.Parallel()

	stub := &stubSidecar{chain: "Development"}
	runner := newRunner(t, stub)

	_, err := runner.Run(context.Background(), pipeline.Request{})
	require.ErrorIs(t, err, pipeline.ErrNoAccounts)

	_, err = runner.Run(context.Background(), pipeline.Request{Accounts: []string{"alice", " "}})
	require.ErrorIs(t, err, pipeline.ErrEmptyAccount)

	assert.Empty(t, stub.requests())
}

func TestRunRejectsDepthThatWouldOverflow(t *testing.T) {
	t.Parallel()

	maxDepth := ^uint(0)
	if uint64(maxDepth) != math.MaxUint64 {
		t.Skip("uint is narrower than 64 bits")
	}
	stub := &stubSidecar{chain: "Development"}
	runner := newRunner(t, stub)

	_, err := runner.Run(context.Background(), pipeline.Request{Accounts: []string{"alice"}, Depth: maxDepth})

	require.ErrorIs(t, err, pipeline.ErrDepthTooLarge)
	assert.Empty(t, stub.requests())

	_, err = runner.Run(context.Background(), pipeline.Request{Accounts: []string{"alice"}, Depth: maxDepth - 1})
	require.NotErrorIs(t, err, pipeline.ErrDepthTooLarge)
}
