package rules

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/formkit"
)

// Set is a formkit.Validator made of independent rules.
type Set struct {
	rules []Rule
	limit int
	log   *zap.Logger
}

// Option configures a Set.
type Option func(*Set)

// WithConcurrency bounds how many rules run at once. n <= 1 runs them one
// after another.
func WithConcurrency(n int) Option { return func(s *Set) { s.limit = n } }

// WithLogger sets the debug logger.
func WithLogger(l *zap.Logger) Option { return func(s *Set) { s.log = l } }

// New returns a Set running rules, by default up to GOMAXPROCS at a time.
func New(rules []Rule, opts ...Option) *Set {
	s := &Set{rules: rules, limit: runtime.GOMAXPROCS(0), log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Add appends rules.
func (s *Set) Add(rules ...Rule) *Set {
	s.rules = append(s.rules, rules...)
	return s
}

// Len returns the number of top-level rules.
func (s *Set) Len() int { return len(s.rules) }

// Validate runs every rule against data. Issues keep rule order whatever
// the concurrency. It fails only when ctx is done.
func (s *Set) Validate(ctx context.Context, data any) (formkit.Result, error) {
	results := make([]formkit.Issues, len(s.rules))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.limit, 1))
	for i, r := range s.rules {
		if r == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r(gctx, data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return formkit.Result{}, err
	}
	var all formkit.Issues
	for _, iss := range results {
		all = append(all, iss...)
	}
	s.log.Debug("rules evaluated", zap.Int("rules", len(s.rules)), zap.Int("issues", len(all)))
	if len(all) > 0 {
		return formkit.Result{Issues: all}, nil
	}
	return formkit.Result{Value: data}, nil
}

var _ formkit.Validator = (*Set)(nil)
