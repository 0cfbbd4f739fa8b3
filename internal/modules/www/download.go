package www

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DoneFunc is called from the download goroutine when a download ends.
type DoneFunc func(dest string, err error)

// Downloader saves resources into a directory in the background.
type Downloader struct {
	client *resty.Client
	dir    string
	done   DoneFunc
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDownloader saves into dir using m's client. done may be nil.
func (m *Module) NewDownloader(dir string, done DoneFunc) *Downloader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Downloader{
		client: m.client,
		dir:    dir,
		done:   done,
		logger: m.logger.Named("download"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start reserves a destination for uri and downloads into it. The
// destination is returned before the transfer completes.
func (d *Downloader) Start(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("cannot download %q: not an http(s) URI", uri)
	}
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	dest, err := reserve(d.dir, fileName(u))
	if err != nil {
		return "", err
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		err := d.fetch(uri, dest)
		if err != nil {
			os.Remove(dest)
			d.logger.Warn("download failed", zap.String("uri", uri), zap.Error(err))
		} else {
			d.logger.Info("download finished", zap.String("uri", uri), zap.String("dest", dest))
		}
		if d.done != nil {
			d.done(dest, err)
		}
	}()
	return dest, nil
}

func (d *Downloader) fetch(uri, dest string) error {
	resp, err := d.client.R().SetContext(d.ctx).SetOutput(dest).Get(uri)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("download failed: HTTP %d", resp.StatusCode())
	}
	return nil
}

// Wait blocks until every started download has ended.
func (d *Downloader) Wait() { d.wg.Wait() }

// Stop cancels downloads in flight and waits for them.
func (d *Downloader) Stop() {
	d.cancel()
	d.wg.Wait()
}

func fileName(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "index.html"
	}
	return strings.ReplaceAll(name, string(filepath.Separator), "_")
}

// reserve creates an empty file named name in dir, adding a counter
// before the extension when the name is taken.
func reserve(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		dest := filepath.Join(dir, candidate)
		f, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", dest, err)
		}
		f.Close()
		return dest, nil
	}
	return "", fmt.Errorf("no free file name for %s in %s", name, dir)
}
