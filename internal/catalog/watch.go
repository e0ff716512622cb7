package catalog

import (
	"context"
	"os"
	"time"
)

// Watch polls the catalog file every interval and calls fn whenever its
// modification time moves past the last seen one. Load errors are passed to fn
// and polling continues. Watch returns when ctx is done.
func Watch(ctx context.Context, path string, interval time.Duration, since time.Time, fn func(*Catalog, error)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := since
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				fn(nil, err)
				continue
			}
			if !info.ModTime().After(last) {
				continue
			}
			last = info.ModTime()
			fn(Load(path))
		}
	}
}
