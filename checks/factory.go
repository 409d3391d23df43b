package checks

import (
	"context"
	"fmt"

	"github.com/kmd/mea/config"
	"github.com/kmd/mea/health"
	"github.com/kmd/mea/secret"
)

// New builds the checker described by def. Target and header values are
// resolved through resolver. The returned close func releases resources held
// by the checker and is never nil.
func New(ctx context.Context, def config.Check, resolver *secret.Resolver) (health.Checker, func(), error) {
	noop := func() {}

	switch def.Type {
	case config.TypeHTTP:
		target, err := resolver.ResolveValue(ctx, def.Target)
		if err != nil {
			return nil, noop, fmt.Errorf("check %q: target: %w", def.Name, err)
		}
		headers, err := resolver.ResolveMap(ctx, def.Headers)
		if err != nil {
			return nil, noop, fmt.Errorf("check %q: headers: %w", def.Name, err)
		}
		return NewHTTP(target, def.ExpectedStatus, headers), noop, nil

	case config.TypeTCP:
		target, err := resolver.ResolveValue(ctx, def.Target)
		if err != nil {
			return nil, noop, fmt.Errorf("check %q: target: %w", def.Name, err)
		}
		return NewTCP(target), noop, nil

	case config.TypePostgres:
		dsn, err := resolver.ResolveValue(ctx, def.Target)
		if err != nil {
			return nil, noop, fmt.Errorf("check %q: target: %w", def.Name, err)
		}
		pg, err := NewPostgres(ctx, dsn)
		if err != nil {
			return nil, noop, fmt.Errorf("check %q: %w", def.Name, err)
		}
		return pg, pg.Close, nil

	case config.TypeMemory:
		return health.NewMemoryChecker(health.MemoryCheckerConfig{
			WarningThreshold:  def.WarningThreshold,
			CriticalThreshold: def.CriticalThreshold,
			MaxAlloc:          def.MaxAllocMB * 1024 * 1024,
		}), noop, nil

	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownType, def.Type)
	}
}

// RegisterAll builds every definition and registers it with reg, carrying
// over tags and timeout. On error nothing built so far is left open. The
// returned close func releases all built checkers.
func RegisterAll(ctx context.Context, reg *health.Registry, defs []config.Check, resolver *secret.Resolver) (func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	for _, def := range defs {
		checker, closeFn, err := New(ctx, def, resolver)
		if err != nil {
			closeAll()
			return func() {}, err
		}
		closers = append(closers, closeFn)

		opts := []health.EntryOption{health.WithTags(def.Tags...)}
		if def.Timeout.Duration > 0 {
			opts = append(opts, health.WithTimeout(def.Timeout.Duration))
		}
		if err := reg.Register(def.Name, checker, opts...); err != nil {
			closeAll()
			return func() {}, err
		}
	}
	return closeAll, nil
}
