package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chromedp/cdproto/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBrowserDispatcher(t *testing.T) *BrowserDispatcher {
	t.Helper()
	return &BrowserDispatcher{
		downloadDir: t.TempDir(),
		byURL:       make(map[string][]string),
		byGUID:      make(map[string]string),
	}
}

// finish simulates Chrome writing the GUID file and reporting completion
func finish(t *testing.T, d *BrowserDispatcher, guid string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(d.downloadDir, guid), []byte(guid), 0644))
	d.handleEvent(&browser.EventDownloadProgress{GUID: guid, State: browser.DownloadProgressStateCompleted})
}

func TestBrowserDispatcher_SharedURLKeepsEachName(t *testing.T) {
	d := newTestBrowserDispatcher(t)
	const url = "https://example.com/pack.zip"

	d.expect(url, "Wallpaper.zip")
	d.expect(url, "Icons.zip")
	d.pending.Add(2)

	d.handleEvent(&browser.EventDownloadWillBegin{GUID: "g1", URL: url, SuggestedFilename: "pack.zip"})
	d.handleEvent(&browser.EventDownloadWillBegin{GUID: "g2", URL: url, SuggestedFilename: "pack.zip"})
	assert.Empty(t, d.byURL)

	finish(t, d, "g1")
	finish(t, d, "g2")
	d.pending.Wait()

	first, err := os.ReadFile(filepath.Join(d.downloadDir, "Wallpaper.zip"))
	require.NoError(t, err)
	assert.Equal(t, "g1", string(first))
	second, err := os.ReadFile(filepath.Join(d.downloadDir, "Icons.zip"))
	require.NoError(t, err)
	assert.Equal(t, "g2", string(second))
	assert.Empty(t, d.byGUID)
}

func TestBrowserDispatcher_UnknownURLUsesSuggestedName(t *testing.T) {
	d := newTestBrowserDispatcher(t)
	d.pending.Add(1)

	d.handleEvent(&browser.EventDownloadWillBegin{GUID: "g1", URL: "https://example.com/x", SuggestedFilename: "x.zip"})
	finish(t, d, "g1")
	d.pending.Wait()

	_, err := os.Stat(filepath.Join(d.downloadDir, "x.zip"))
	assert.NoError(t, err)
}

func TestBrowserDispatcher_Forget(t *testing.T) {
	d := newTestBrowserDispatcher(t)
	const url = "https://example.com/pack.zip"

	d.expect(url, "A.zip")
	d.expect(url, "B.zip")
	d.forget(url, "B.zip")
	assert.Equal(t, []string{"A.zip"}, d.byURL[url])

	d.forget(url, "A.zip")
	assert.NotContains(t, d.byURL, url)
}

func TestBrowserDispatcher_CanceledDownload(t *testing.T) {
	d := newTestBrowserDispatcher(t)
	d.expect("https://example.com/a", "A.zip")
	d.pending.Add(1)

	d.handleEvent(&browser.EventDownloadWillBegin{GUID: "g1", URL: "https://example.com/a"})
	d.handleEvent(&browser.EventDownloadProgress{GUID: "g1", State: browser.DownloadProgressStateCanceled})
	d.pending.Wait()

	_, err := os.Stat(filepath.Join(d.downloadDir, "A.zip"))
	assert.True(t, os.IsNotExist(err))
}
