//go:build integration
// +build integration

package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/scanner"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/throttle"
	"github.com/MGTheTrain/scan-warden/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// gatedScanner blocks every scan until release is closed and tracks how many run at once
type gatedScanner struct {
	release chan struct{}
	running atomic.Int32
	peak    atomic.Int32
}

func newGatedScanner() *gatedScanner {
	return &gatedScanner{release: make(chan struct{})}
}

func (s *gatedScanner) Name() string     { return "gated" }
func (s *gatedScanner) Kind() scans.Kind { return scans.KindSAST }

func (s *gatedScanner) Scan(ctx context.Context, target string) ([]*findings.Finding, error) {
	n := s.running.Add(1)
	defer s.running.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	<-s.release
	f := NewTestFinding("gated", "main.go", findings.SeverityMedium)
	f.Tool = "gated"
	return []*findings.Finding{&f}, nil
}

func (s *gatedScanner) Parse([]byte) ([]*findings.Finding, error) {
	return nil, nil
}

// overlapIngest records the highest number of concurrent ingests per tool and target
type overlapIngest struct {
	inner findings.IngestService

	mu     sync.Mutex
	active map[string]int
	peak   map[string]int
}

func newOverlapIngest(inner findings.IngestService) *overlapIngest {
	return &overlapIngest{inner: inner, active: map[string]int{}, peak: map[string]int{}}
}

func (o *overlapIngest) Ingest(ctx context.Context, scanID, tool, target string, batch []*findings.Finding, autoResolve bool) (*findings.IngestResult, error) {
	key := tool + "|" + target
	o.mu.Lock()
	o.active[key]++
	if o.active[key] > o.peak[key] {
		o.peak[key] = o.active[key]
	}
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.active[key]--
		o.mu.Unlock()
	}()

	// widen the window in which an unserialized ingest would overlap
	time.Sleep(20 * time.Millisecond)
	return o.inner.Ingest(ctx, scanID, tool, target, batch, autoResolve)
}

func (o *overlapIngest) peakFor(tool, target string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.peak[tool+"|"+target]
}

func TestScanService_WorkerPoolBound(t *testing.T) {
	services := SetupTestServices(t)
	gated := newGatedScanner()
	registry := scanner.NewRegistry(gated)

	const workers = 2
	scanService, err := NewScanService(registry, services.DBContext.ScanRepo, services.IngestService, throttle.NoopThrottle{}, workers, testutil.SetupTestLogger(t))
	require.NoError(t, err)

	ignoreSetup := goleak.IgnoreCurrent()

	ctx := context.Background()
	for _, target := range []string{"./a", "./b", "./c", "./d", "./e"} {
		_, err := scanService.Trigger(ctx, "gated", target, scans.TriggerManual, nil)
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool { return gated.running.Load() == workers }, 5*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(workers), gated.running.Load(), "queued jobs wait for a free worker")

	close(gated.release)
	scanService.Wait()

	assert.Equal(t, int32(workers), gated.peak.Load())
	jobs, err := scanService.List(ctx, &scans.ScanQuery{Tool: "gated", Status: string(scans.StatusSucceeded)})
	require.NoError(t, err)
	assert.Len(t, jobs, 5)

	goleak.VerifyNone(t, ignoreSetup)
}

func TestScanService_SameTargetIngestsDoNotOverlap(t *testing.T) {
	services := SetupTestServices(t)
	gated := newGatedScanner()
	close(gated.release)
	registry := scanner.NewRegistry(gated)
	recorder := newOverlapIngest(services.IngestService)

	scanService, err := NewScanService(registry, services.DBContext.ScanRepo, recorder, throttle.NoopThrottle{}, 4, testutil.SetupTestLogger(t))
	require.NoError(t, err)

	ignoreSetup := goleak.IgnoreCurrent()

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := scanService.Trigger(ctx, "gated", TestTarget, scans.TriggerManual, nil)
		require.NoError(t, err)
	}
	_, err = scanService.Trigger(ctx, "gated", "./other", scans.TriggerManual, nil)
	require.NoError(t, err)

	scanService.Wait()

	assert.Equal(t, 1, recorder.peakFor("gated", TestTarget))
	assert.Equal(t, 1, recorder.peakFor("gated", "./other"))

	tracked, err := services.FindingService.List(ctx, &findings.FindingQuery{Tool: "gated", Target: TestTarget})
	require.NoError(t, err)
	assert.Len(t, tracked, 1, "repeated scans of one target track a single finding")

	goleak.VerifyNone(t, ignoreSetup)
}
