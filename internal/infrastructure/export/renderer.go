// Package export renders findings reports as JSON, Markdown or SARIF.
package export

import (
	"fmt"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
)

// Renderer implements reports.Renderer for all supported formats
type Renderer struct {
	// ToolVersion is written as the SARIF driver version
	ToolVersion string
}

// NewRenderer creates a Renderer
func NewRenderer(toolVersion string) *Renderer {
	return &Renderer{ToolVersion: toolVersion}
}

// Render encodes summary and list in format
func (r *Renderer) Render(format string, summary *reports.Summary, list []*findings.Finding) ([]byte, error) {
	switch format {
	case reports.FormatJSON:
		return RenderJSON(summary, list)
	case reports.FormatMarkdown:
		return RenderMarkdown(summary, list)
	case reports.FormatSARIF:
		return RenderSARIF(list, r.ToolVersion)
	default:
		return nil, fmt.Errorf("%w: %s", reports.ErrUnsupportedFormat, format)
	}
}
