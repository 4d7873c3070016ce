package probe

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Suite runs a set of checks against one target
type Suite struct {
	checks      []Check
	client      *http.Client
	concurrency int
	logger      logger.Logger
}

// NewSuite builds the default checks from opts. Checks without inputs are left out.
func NewSuite(opts Options, requestTimeout time.Duration, logger logger.Logger) *Suite {
	checks := []Check{NewSecurityHeadersCheck()}
	if len(opts.Params) > 0 {
		checks = append(checks, NewSQLInjectionCheck(opts.Params), NewReflectedXSSCheck(opts.Params))
	}
	if len(opts.ProtectedPaths) > 0 || opts.LoginPath != "" {
		checks = append(checks, NewAuthBypassCheck(opts.ProtectedPaths, opts.LoginPath))
	}

	client := &http.Client{
		Timeout: requestTimeout,
		// redirects to a login page must not look like a successful bypass
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return NewSuiteWithChecks(client, opts.Concurrency, logger, checks...)
}

// NewSuiteWithChecks runs exactly the given checks
func NewSuiteWithChecks(client *http.Client, concurrency int, logger logger.Logger, checks ...Check) *Suite {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Suite{
		checks:      checks,
		client:      client,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Checks returns the check names in execution order
func (s *Suite) Checks() []string {
	names := make([]string, len(s.checks))
	for i, c := range s.checks {
		names[i] = c.Name()
	}
	return names
}

// Run executes all checks concurrently. Findings of every check that completed
// are returned together with the first error.
func (s *Suite) Run(ctx context.Context, target string) ([]*findings.Finding, error) {
	if _, err := ParseTarget(target); err != nil {
		return nil, err
	}

	var (
		mu  sync.Mutex
		out []*findings.Finding
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, check := range s.checks {
		check := check
		g.Go(func() error {
			found, err := check.Run(gctx, s.client, target)

			mu.Lock()
			out = append(out, found...)
			mu.Unlock()

			if err != nil {
				s.logger.Warn("Probe check ", check.Name(), " failed: ", err)
				return err
			}
			s.logger.Debug("Probe check ", check.Name(), " reported ", len(found), " findings")
			return nil
		})
	}

	err := g.Wait()
	return out, err
}
