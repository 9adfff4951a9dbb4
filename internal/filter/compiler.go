package filter

import (
	"context"
	"strings"
	"time"

	"github.com/zjrosen/mxview/internal/cachemanager"
	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/log"
	"github.com/zjrosen/mxview/internal/model"
)

// DefaultCacheTTL is how long a parsed expression stays cached.
const DefaultCacheTTL = 10 * time.Minute

// Compiler turns expressions into predicates, keeping parsed ASTs in a cache.
type Compiler struct {
	ttl    time.Duration
	cache  *cachemanager.InMemoryCacheManager[string, Expr]
	parsed *cachemanager.ReadThroughCache[string, Expr, string]
}

// NewCompiler creates a Compiler. A non-positive ttl disables caching.
func NewCompiler(ttl time.Duration) *Compiler {
	cache := cachemanager.NewInMemoryCacheManager[string, Expr]("filter", ttl, cachemanager.DefaultCleanupInterval)
	parse := func(_ context.Context, expr string) (Expr, error) {
		log.Debug(log.CatFilter, "parsing expression", "expr", expr)
		return Parse(expr)
	}
	return &Compiler{
		ttl:    ttl,
		cache:  cache,
		parsed: cachemanager.NewReadThroughCache[string, Expr, string](cache, parse, ttl <= 0),
	}
}

// Parse returns the AST for expr, from cache when possible. Surrounding
// whitespace is ignored.
func (c *Compiler) Parse(ctx context.Context, expr string) (Expr, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	ast, err := c.parsed.GetWithRefresh(ctx, expr, expr, c.ttl)
	if err != nil {
		log.Warn(log.CatFilter, "invalid expression", "expr", expr, "error", err)
		return nil, err
	}
	return ast, nil
}

// Compile returns a predicate for expr. Attribute fields are read through
// read; an empty expression accepts every name.
func (c *Compiler) Compile(ctx context.Context, expr string, read AttributeReader) (model.Predicate, error) {
	ast, err := c.Parse(ctx, expr)
	if err != nil {
		return nil, err
	}
	if ast == nil {
		return model.Always, nil
	}
	return func(name objname.Name) bool {
		return Eval(ast, name, read)
	}, nil
}

// Stats returns the cache hit and miss counts.
func (c *Compiler) Stats() (hits, misses uint64) {
	return c.cache.Stats()
}

// Flush drops every cached expression.
func (c *Compiler) Flush(ctx context.Context) error {
	return c.cache.Flush(ctx)
}
