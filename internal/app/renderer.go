package app

import (
	"github.com/ledgerbook/ledgerbook/internal/export"
	"github.com/ledgerbook/ledgerbook/report"
)

// NewPDFRenderer selects the renderer named by PDF_RENDERER. The returned
// close func releases a local browser when one was started.
func NewPDFRenderer(cfg *Config) (export.PDFRenderer, func() error) {
	noop := func() error { return nil }
	switch cfg.PDFRenderer {
	case "chromium":
		c := report.NewChromium(cfg.ChromiumBin)
		return c, c.Close
	case "none":
		return nil, noop
	default:
		return report.NewClient(cfg.GotenbergURL), noop
	}
}
