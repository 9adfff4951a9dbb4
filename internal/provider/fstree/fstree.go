// Package fstree is a virtual provider that exposes the nodes of a directory
// tree. The tree is rescanned periodically and whenever the watcher reports a
// structural change, and every rescan is announced as a diff.
package fstree

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/log"
	"github.com/zjrosen/mxview/internal/metrics"
	"github.com/zjrosen/mxview/internal/model"
	"github.com/zjrosen/mxview/internal/notify"
	"github.com/zjrosen/mxview/internal/provider"
	"github.com/zjrosen/mxview/internal/watcher"
)

const (
	DefaultDomain = "files"

	PropType = "type"
	PropName = "name"
)

// Config controls what is scanned and how often.
type Config struct {
	Domain          string
	Root            string
	MaxDepth        int
	RefreshInterval time.Duration
	ResolveTimeout  time.Duration
	Debounce        time.Duration
	// Watch enables fsnotify driven rescans in addition to the ticker.
	Watch bool
}

// DefaultConfig returns the defaults for root.
func DefaultConfig(root string) Config {
	return Config{
		Domain:          DefaultDomain,
		Root:            root,
		MaxDepth:        2,
		RefreshInterval: time.Second,
		ResolveTimeout:  time.Second,
		Debounce:        250 * time.Millisecond,
		Watch:           true,
	}
}

// StatFunc reads file metadata. It may block.
type StatFunc func(path string) (fs.FileInfo, error)

// Node is one scanned entry.
type Node struct {
	// Path is the slash separated path relative to the root, starting with "/".
	Path string
	Abs  string
	Info fs.FileInfo
}

// Parent returns the relative path of the containing directory.
func (n *Node) Parent() string { return path.Dir(n.Path) }

// Base returns the entry's own name.
func (n *Node) Base() string { return path.Base(n.Path) }

// Provider serves the nodes of one directory tree.
type Provider struct {
	*provider.Base[*Node]
	cfg   Config
	nodes *provider.Collection[*Node]
	stat  StatFunc

	mu      sync.Mutex
	cancel  context.CancelFunc
	watcher *watcher.Watcher
	wg      sync.WaitGroup
}

var _ model.Provider = (*Provider)(nil)

// Option customizes a Provider.
type Option func(*Provider)

// WithStat replaces os.Stat for resolving live nodes.
func WithStat(fn StatFunc) Option {
	return func(p *Provider) { p.stat = fn }
}

// New returns a stopped provider. m may be nil.
func New(cfg Config, m *metrics.Metrics, opts ...Option) *Provider {
	if cfg.Domain == "" {
		cfg.Domain = DefaultDomain
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 1
	}
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = time.Second
	}
	nodes := provider.NewCollection[*Node]()
	p := &Provider{
		cfg:   cfg,
		nodes: nodes,
		stat:  os.Stat,
	}
	p.Base = provider.NewBase[*Node](cfg.Domain, &kind{nodes: nodes}, nodes.Snapshot, m)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start scans the tree, announces every node and begins refreshing.
func (p *Provider) Start(ctx context.Context, sink notify.Sink) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.IsRunning() {
		return nil
	}

	nodes, err := Scan(p.cfg.Root, p.cfg.MaxDepth)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", p.cfg.Root, err)
	}
	p.nodes.Replace(nodes)
	p.Activate(sink)

	var changes <-chan struct{}
	if p.cfg.Watch {
		w, err := watcher.New(watcher.Config{Root: p.cfg.Root, MaxDepth: p.cfg.MaxDepth - 1, DebounceDur: p.cfg.Debounce})
		if err == nil {
			changes, err = w.Start()
		}
		if err != nil {
			log.Warn(log.CatProvider, "watcher unavailable, relying on periodic refresh", "root", p.cfg.Root, "error", err)
			if w != nil {
				_ = w.Stop()
			}
			changes = nil
		} else {
			p.watcher = w
		}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	p.wg.Add(1)
	go p.run(runCtx, changes)

	return nil
}

// Stop ends refreshing, announces the removal of every node and empties the
// tree. Repeated calls emit nothing.
func (p *Provider) Stop(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.wg.Wait()
	if p.watcher != nil {
		_ = p.watcher.Stop()
		p.watcher = nil
	}

	p.Deactivate()
	p.nodes.Clear()
	return nil
}

func (p *Provider) run(ctx context.Context, changes <-chan struct{}) {
	defer p.wg.Done()

	var tick <-chan time.Time
	if p.cfg.RefreshInterval > 0 {
		ticker := time.NewTicker(p.cfg.RefreshInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			p.Rescan()
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			p.Rescan()
		}
	}
}

// Rescan rebuilds the node collection and announces the difference.
func (p *Provider) Rescan() (added, removed int) {
	if !p.IsRunning() {
		return 0, 0
	}
	nodes, err := Scan(p.cfg.Root, p.cfg.MaxDepth)
	if err != nil {
		log.ErrorErr(log.CatProvider, "rescan failed", err, "root", p.cfg.Root)
		return 0, 0
	}
	p.nodes.Replace(nodes)
	return p.Refresh()
}

// Item resolves the live node behind name. Resolution waits at most the
// configured resolve timeout, and any failure surfaces as not found.
func (p *Provider) Item(name objname.Name) (model.Item, error) {
	return p.Lookup(name, p.resolve)
}

func (p *Provider) resolve(name objname.Name) (*Node, bool) {
	parent, ok1 := name.Property(PropType)
	base, ok2 := name.Property(PropName)
	if !ok1 || !ok2 || name.Len() != 2 {
		return nil, false
	}
	rel := path.Join(parent, base)

	var found *Node
	for _, n := range p.nodes.Snapshot() {
		if n != nil && n.Path == rel {
			found = n
			break
		}
	}
	if found == nil {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.ResolveTimeout)
	defer cancel()

	info, err := p.statContext(ctx, found.Abs)
	if err != nil {
		log.Debug(log.CatProvider, "node did not resolve", "name", name, "error", err)
		return nil, false
	}
	return &Node{Path: found.Path, Abs: found.Abs, Info: info}, true
}

type statResult struct {
	info fs.FileInfo
	err  error
}

func (p *Provider) statContext(ctx context.Context, abs string) (fs.FileInfo, error) {
	ch := make(chan statResult, 1)
	go func() {
		info, err := p.stat(abs)
		ch <- statResult{info: info, err: err}
	}()

	select {
	case r := <-ch:
		return r.info, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Scan walks root down to maxDepth levels and returns every entry below it.
func Scan(root string, maxDepth int) ([]*Node, error) {
	root = filepath.Clean(root)
	var nodes []*Node

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			log.Warn(log.CatProvider, "skipping unreadable entry", "path", p, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		slashed := "/" + filepath.ToSlash(rel)
		depth := strings.Count(slashed, "/")
		if depth > maxDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			log.Warn(log.CatProvider, "skipping entry without info", "path", p, "error", err)
			return nil
		}
		nodes = append(nodes, &Node{Path: slashed, Abs: p, Info: info})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}
