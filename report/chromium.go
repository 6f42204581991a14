package report

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// Chromium prints PDFs with a local headless browser driven over the
// DevTools protocol. The browser is launched on first use.
type Chromium struct {
	bin        string
	newProcess func(bin string) browserProcess
	dial       func(controlURL string) (*rod.Browser, error)

	mu      sync.Mutex
	browser *rod.Browser
}

// browserProcess is a launched browser; *launcher.Launcher satisfies it.
type browserProcess interface {
	Launch() (string, error)
	Kill()
	Cleanup()
}

// NewChromium returns a renderer using bin, or the launcher's default
// browser lookup when bin is empty.
func NewChromium(bin string) *Chromium {
	return &Chromium{bin: bin, newProcess: launchHeadless, dial: dialBrowser}
}

func launchHeadless(bin string) browserProcess {
	l := launcher.New().Headless(true).NoSandbox(true)
	if bin != "" {
		l = l.Bin(bin)
	}
	return l
}

func dialBrowser(controlURL string) (*rod.Browser, error) {
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	return browser, nil
}

// RenderHTML loads html into a fresh page and prints it as A4.
func (c *Chromium) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	browser, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()
	page = page.Context(ctx)

	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("set content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}
	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      gson.Num(paperWidthIn),
		PaperHeight:     gson.Num(paperHeightIn),
	})
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return io.ReadAll(stream)
}

// Ping launches the browser when needed and checks it still responds.
func (c *Chromium) Ping(ctx context.Context) error {
	browser, err := c.connect(ctx)
	if err != nil {
		return err
	}
	_, err = browser.Version()
	return err
}

// Close shuts the browser down.
func (c *Chromium) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser == nil {
		return nil
	}
	err := c.browser.Close()
	c.browser = nil
	return err
}

func (c *Chromium) connect(_ context.Context) (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser != nil {
		if _, err := c.browser.Version(); err == nil {
			return c.browser, nil
		}
		_ = c.browser.Close()
		c.browser = nil
	}

	proc := c.newProcess(c.bin)
	controlURL, err := proc.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	browser, err := c.dial(controlURL)
	if err != nil {
		proc.Kill()
		proc.Cleanup()
		return nil, fmt.Errorf("connect chromium: %w", err)
	}
	c.browser = browser
	return browser, nil
}
