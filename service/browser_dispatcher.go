package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"

	"tienda/models"
	"tienda/utils"
)

// detectChromePath detects the path to Chrome/Chromium executable
// Checks the configured path first, then common installation paths
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// clickDownloadScript clicks a temporary <a download> link, as a page would
const clickDownloadScript = `(() => {
	const link = document.createElement('a');
	link.href = %s;
	link.download = %s;
	link.target = '_blank';
	document.body.appendChild(link);
	link.click();
	document.body.removeChild(link);
	return true;
})()`

// BrowserDispatcher downloads files with a headless Chrome instance.
// Chrome saves each download under its GUID in the download directory; the
// file is renamed to the suggested filename once Chrome reports it complete.
type BrowserDispatcher struct {
	downloadDir string
	browserCtx  context.Context
	cancel      context.CancelFunc

	mu      sync.Mutex
	byURL   map[string][]string // url -> filenames in dispatch order, until Chrome assigns GUIDs
	byGUID  map[string]string // guid -> suggested filename
	pending sync.WaitGroup
}

// NewBrowserDispatcher starts headless Chrome and configures it to save downloads in downloadDir
func NewBrowserDispatcher(ctx context.Context, downloadDir string, chromePath string) (*BrowserDispatcher, error) {
	if err := os.MkdirAll(downloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}
	absDir, err := filepath.Abs(downloadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve download directory: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if path := detectChromePath(chromePath); path != "" {
		log.Printf("🌐 Using Chrome at %s", path)
		opts = append(opts, chromedp.ExecPath(path))
	} else {
		log.Printf("⚠️  Chrome not found in common paths, letting chromedp locate it")
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	d := &BrowserDispatcher{
		downloadDir: absDir,
		browserCtx:  browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
		byURL:  make(map[string][]string),
		byGUID: make(map[string]string),
	}

	chromedp.ListenBrowser(browserCtx, d.handleEvent)

	err = chromedp.Run(browserCtx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllowAndName).
			WithDownloadPath(absDir).
			WithEventsEnabled(true),
		chromedp.Navigate("about:blank"),
	)
	if err != nil {
		d.cancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Printf("✅ BrowserDispatcher: saving downloads to %s", absDir)
	return d, nil
}

// Ensure BrowserDispatcher implements DownloadDispatcher
var _ DownloadDispatcher = (*BrowserDispatcher)(nil)

// Dispatch asks the browser to download the directive's URL and returns once
// the click has been issued
func (d *BrowserDispatcher) Dispatch(ctx context.Context, directive models.DownloadDirective) error {
	href, err := json.Marshal(directive.URL)
	if err != nil {
		return fmt.Errorf("failed to encode url: %w", err)
	}
	name, err := json.Marshal(directive.Filename)
	if err != nil {
		return fmt.Errorf("failed to encode filename: %w", err)
	}

	d.expect(directive.URL, directive.Filename)
	d.pending.Add(1)

	var clicked bool
	if err := chromedp.Run(d.browserCtx, chromedp.Evaluate(fmt.Sprintf(clickDownloadScript, href, name), &clicked)); err != nil {
		d.forget(directive.URL, directive.Filename)
		d.pending.Done()
		return fmt.Errorf("failed to start download of %s: %w", directive.URL, err)
	}

	log.Printf("📥 BrowserDispatcher: started %s -> %s", directive.URL, directive.Filename)
	return nil
}

// expect queues the filename for the next download of url.
// Entries sharing a URL keep their own names, in dispatch order.
func (d *BrowserDispatcher) expect(url, filename string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byURL[url] = append(d.byURL[url], filename)
}

// forget drops a queued filename whose download never started
func (d *BrowserDispatcher) forget(url, filename string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := d.byURL[url]
	for i := len(names) - 1; i >= 0; i-- {
		if names[i] == filename {
			names = append(names[:i], names[i+1:]...)
			break
		}
	}
	if len(names) == 0 {
		delete(d.byURL, url)
		return
	}
	d.byURL[url] = names
}

func (d *BrowserDispatcher) handleEvent(ev interface{}) {
	switch e := ev.(type) {
	case *browser.EventDownloadWillBegin:
		d.mu.Lock()
		name := e.SuggestedFilename
		if names := d.byURL[e.URL]; len(names) > 0 {
			name = names[0]
			if len(names) == 1 {
				delete(d.byURL, e.URL)
			} else {
				d.byURL[e.URL] = names[1:]
			}
		}
		d.byGUID[e.GUID] = name
		d.mu.Unlock()

	case *browser.EventDownloadProgress:
		if e.State != browser.DownloadProgressStateCompleted && e.State != browser.DownloadProgressStateCanceled {
			return
		}
		d.mu.Lock()
		name, ok := d.byGUID[e.GUID]
		delete(d.byGUID, e.GUID)
		d.mu.Unlock()
		if !ok {
			return
		}
		defer d.pending.Done()

		if e.State == browser.DownloadProgressStateCanceled {
			log.Printf("⚠️  BrowserDispatcher: download %s was canceled", name)
			return
		}
		from := filepath.Join(d.downloadDir, e.GUID)
		to := filepath.Join(d.downloadDir, utils.SafeFilename(name))
		if err := os.Rename(from, to); err != nil {
			log.Printf("❌ BrowserDispatcher: failed to rename %s: %v", from, err)
			return
		}
		log.Printf("✓ BrowserDispatcher: saved %s", to)
	}
}

// Wait blocks until every dispatched download finished or ctx is done.
// Callers should bound ctx: a link Chrome refuses to fetch never reports progress.
func (d *BrowserDispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts the browser down
func (d *BrowserDispatcher) Close() {
	d.cancel()
}
