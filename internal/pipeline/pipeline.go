// Package pipeline runs the probe, fetch and aggregate stages in order and
// collects one report per account.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmagro/sidecar-payouts/internal/logger"
	"github.com/dmagro/sidecar-payouts/internal/payouts"
)

var (
	ErrNoAccounts   = errors.New("at least one account id is required")
	ErrEmptyAccount = errors.New("account id must not be empty")

	// ErrDepthTooLarge means depth+1 would not fit the upstream query.
	ErrDepthTooLarge = errors.New("depth is too large")
)

// Sidecar is the upstream the runner needs. *sidecar.Client satisfies it.
type Sidecar interface {
	BaseURL() string
	Probe(ctx context.Context) (string, error)
	PayoutsURL(accountID string, depth uint) string
	FetchPayouts(ctx context.Context, accountID string, depth uint) (string, error)
}

// Option configures the Runner
type Option func(*Runner)

// WithPolicy sets the aggregation policy (strict by default).
func WithPolicy(p payouts.Policy) Option {
	return func(r *Runner) { r.policy = p }
}

// WithConcurrency sets how many accounts are fetched at once. Values below
// one are ignored.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithClock injects the time source used for Report.StartedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

type Runner struct {
	sidecar     Sidecar
	policy      payouts.Policy
	concurrency int
	log         *slog.Logger
	now         func() time.Time
}

// New constructs a Runner. By default it is strict, handles one account at a
// time and logs nothing.
func New(sc Sidecar, opts ...Option) *Runner {
	r := &Runner{
		sidecar:     sc,
		policy:      payouts.PolicyStrict,
		concurrency: 1,
		log:         logger.Discard(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Request is the caller input: accounts and the requested lookback depth.
type Request struct {
	Accounts []string
	Depth    uint
}

// Report is the outcome of a successful run.
type Report struct {
	BaseURL   string          `json:"sidecar"`
	Chain     string          `json:"chain"`
	Depth     uint            `json:"depth"`
	Policy    string          `json:"policy"`
	StartedAt time.Time       `json:"startedAt"`
	Accounts  []AccountReport `json:"accounts"`
}

// AccountReport holds the aggregation result for one account. Err is set
// only for ErrMissingPayoutsArray, which does not fail the run.
type AccountReport struct {
	Account string          `json:"account"`
	URL     string          `json:"url"`
	Summary payouts.Summary `json:"summary"`
	Err     error           `json:"-"`
}

// Total sums every account's total.
func (r *Report) Total() float64 {
	var total float64
	for _, a := range r.Accounts {
		total += a.Summary.Total
	}
	return total
}

// Run probes the sidecar, then fetches and aggregates each account. A probe
// failure stops the run before any payout query is issued. A failed query or
// an unparseable body for any account fails the whole run.
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	if len(req.Accounts) == 0 {
		return nil, ErrNoAccounts
	}
	for _, a := range req.Accounts {
		if strings.TrimSpace(a) == "" {
			return nil, ErrEmptyAccount
		}
	}
	if uint64(req.Depth) == math.MaxUint64 {
		return nil, fmt.Errorf("%w: %d", ErrDepthTooLarge, req.Depth)
	}

	report := &Report{
		BaseURL:   r.sidecar.BaseURL(),
		Depth:     req.Depth,
		Policy:    r.policy.String(),
		StartedAt: r.now(),
		Accounts:  make([]AccountReport, len(req.Accounts)),
	}

	r.log.DebugContext(ctx, "Probing sidecar", slog.String("url", report.BaseURL))
	chain, err := r.sidecar.Probe(ctx)
	if err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}
	report.Chain = chain
	r.log.InfoContext(ctx, "Sidecar connected", slog.String("chain", chain))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, account := range req.Accounts {
		g.Go(func() error {
			ar, err := r.runAccount(gctx, account, req.Depth)
			if err != nil {
				return err
			}
			report.Accounts[i] = ar
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *Runner) runAccount(ctx context.Context, account string, depth uint) (AccountReport, error) {
	ar := AccountReport{Account: account, URL: r.sidecar.PayoutsURL(account, depth)}

	r.log.InfoContext(ctx, "Querying staking payouts", slog.String("url", ar.URL))
	body, err := r.sidecar.FetchPayouts(ctx, account, depth)
	if err != nil {
		return ar, fmt.Errorf("fetch %s: %w", account, err)
	}

	sum, err := payouts.Aggregate([]byte(body), r.policy)
	ar.Summary = sum
	switch {
	case errors.Is(err, payouts.ErrMissingPayoutsArray):
		r.log.WarnContext(ctx, "Era record without payouts, stopped",
			slog.String("account", account),
			slog.Int("era", sum.StoppedAt),
		)
		ar.Err = err
	case err != nil:
		return ar, fmt.Errorf("aggregate %s: %w", account, err)
	}

	r.log.DebugContext(ctx, "Aggregated payouts",
		slog.String("account", account),
		slog.String("outcome", sum.Outcome.String()),
		slog.Float64("total", sum.Total),
		slog.Int("eras", len(sum.Eras)),
	)
	return ar, nil
}
