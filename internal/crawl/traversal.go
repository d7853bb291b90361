package crawl

import (
	"context"

	"go.uber.org/zap"
)

// TraversalOptions bound a traversal run.
type TraversalOptions struct {
	// MaxItems caps the number of entries yielded; 0 means unlimited.
	MaxItems int
}

// Traversal walks a directory-listing tree breadth-first, yielding every
// entry exactly once. It is lazy (pages are fetched as Next is called) and
// non-restartable. Directories whose listing cannot be fetched or parsed
// are skipped: the consumer sees nothing for them and must re-probe the
// directory itself to learn why.
type Traversal struct {
	list    ListFunc
	logger  *zap.Logger
	opts    TraversalOptions
	queue   []string
	seen    map[string]struct{}
	pending []Entry
	yielded int
}

// NewTraversal seeds a breadth-first traversal at rootURL.
func NewTraversal(list ListFunc, rootURL string, opts TraversalOptions, logger *zap.Logger) *Traversal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Traversal{
		list:   list,
		logger: logger,
		opts:   opts,
		queue:  []string{rootURL},
		seen:   make(map[string]struct{}),
	}
}

// Next returns the next entry in breadth-first page order. The boolean is
// false once the queue is exhausted, the item budget is reached, or ctx is
// done.
func (t *Traversal) Next(ctx context.Context) (Entry, bool) {
	for {
		if ctx.Err() != nil {
			return Entry{}, false
		}
		if t.opts.MaxItems > 0 && t.yielded >= t.opts.MaxItems {
			return Entry{}, false
		}
		if len(t.pending) > 0 {
			entry := t.pending[0]
			t.pending = t.pending[1:]
			t.yielded++
			if entry.IsDir {
				t.queue = append(t.queue, entry.URL)
			}
			return entry, true
		}
		if len(t.queue) == 0 {
			return Entry{}, false
		}

		dirURL := t.queue[0]
		t.queue = t.queue[1:]
		if _, ok := t.seen[dirURL]; ok {
			continue
		}
		t.seen[dirURL] = struct{}{}

		entries, err := t.list(ctx, dirURL)
		if err != nil {
			// Deliberate policy: a directory that fails to list is skipped,
			// not surfaced. Rediscovery on a later run is cheap.
			t.logger.Debug("skipping unlistable directory",
				zap.String("url", dirURL), zap.Error(err))
			continue
		}
		for _, e := range entries {
			t.pending = append(t.pending, Entry{
				Name:  e.Name,
				URL:   e.URL,
				IsDir: e.IsDir(),
				Raw:   e.Raw,
			})
		}
	}
}
