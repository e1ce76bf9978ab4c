package service

import (
	"context"

	"github.com/msto63/exprkit/foundation/expr/ast"
	"github.com/msto63/exprkit/pkg/core/health"
)

// selfTestInput exercises every grammar rule once
const selfTestInput = "probe = (7 - 1) * 2 / x + 1"

// RegisterHealth adds the service's checks to registry
func (s *Service) RegisterHealth(registry *health.Registry) {
	registry.RegisterFunc("parser", s.parserCheck)
	if s.store != nil {
		registry.Register(health.PingCheck("store", s.store.Ping))
	}
	if s.trees != nil {
		registry.RegisterFunc("cache", func(ctx context.Context) health.CheckResult {
			hits, misses, size := s.CacheStats()
			return health.CheckResult{
				Status:  health.StatusHealthy,
				Message: "ok",
				Details: map[string]interface{}{
					"hits":   hits,
					"misses": misses,
					"size":   size,
				},
			}
		})
	}
}

func (s *Service) parserCheck(ctx context.Context) health.CheckResult {
	node, err := s.engine.Parse(selfTestInput)
	if err != nil {
		return health.CheckResult{Status: health.StatusUnhealthy, Message: err.Error()}
	}

	const want = "probe = ((((7 - 1) * 2) / x) + 1)"
	if got := ast.Render(node); got != want {
		return health.CheckResult{
			Status:  health.StatusDegraded,
			Message: "unexpected parse result",
			Details: map[string]interface{}{"rendered": got, "expected": want},
		}
	}
	return health.CheckResult{
		Status:  health.StatusHealthy,
		Message: "ok",
		Details: map[string]interface{}{"mode": s.engine.Mode().String()},
	}
}
