package scanner

import (
	"sort"

	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/probe"
	"github.com/MGTheTrain/scan-warden/internal/pkg/config"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"
)

// Registry maps tool names to scanners
type Registry struct {
	scanners map[string]scans.Scanner
}

// NewRegistry creates a registry holding the given scanners
func NewRegistry(scanners ...scans.Scanner) *Registry {
	r := &Registry{scanners: make(map[string]scans.Scanner, len(scanners))}
	for _, s := range scanners {
		r.Register(s)
	}
	return r
}

// NewDefaultRegistry registers every external tool, the probe suite and the SARIF importer
func NewDefaultRegistry(settings config.ScannerSettings, runner Runner, logger logger.Logger) *Registry {
	r := NewRegistry()
	for _, tool := range DefaultTools() {
		tool.Binary = settings.BinaryFor(tool.Name, tool.Binary)
		r.Register(NewCommandScanner(tool, runner, settings.TimeoutFor(tool.Name), logger))
	}

	suite := probe.NewSuite(probe.Options{
		Params:         settings.Probe.Params,
		ProtectedPaths: settings.Probe.ProtectedPaths,
		LoginPath:      settings.Probe.LoginPath,
		Concurrency:    settings.Probe.Concurrency,
	}, settings.Probe.RequestTimeout, logger)
	r.Register(NewProbeScanner(suite))
	r.Register(SARIFImporter{})

	return r
}

// Register adds or replaces a scanner
func (r *Registry) Register(s scans.Scanner) {
	r.scanners[s.Name()] = s
}

// Get returns the scanner registered under name
func (r *Registry) Get(name string) (scans.Scanner, bool) {
	s, ok := r.scanners[name]
	return s, ok
}

// Names returns the registered tool names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
