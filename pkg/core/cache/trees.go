package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/msto63/exprkit/foundation/expr/ast"
	"github.com/msto63/exprkit/foundation/expr/parser"
)

// TreeCache caches parsed trees by parse mode and source text. Trees are
// immutable, so a cached tree may be handed to several callers.
type TreeCache struct {
	cache *Cache[ast.Node]
}

// NewTreeCache creates a tree cache
func NewTreeCache(cfg Config) *TreeCache {
	return &TreeCache{cache: New[ast.Node](cfg)}
}

// Parse returns the cached tree for input or calls parse and caches the
// result. Failed parses are not cached.
func (t *TreeCache) Parse(mode parser.Mode, input string, parse func(string) (ast.Node, error)) (ast.Node, bool, error) {
	key := treeKey(mode, input)
	if node, ok := t.cache.Get(key); ok {
		return node, true, nil
	}

	node, err := parse(input)
	if err != nil {
		return nil, false, err
	}
	t.cache.Set(key, node)
	return node, false, nil
}

// Stats returns hit and miss counts and the hit rate in percent
func (t *TreeCache) Stats() (hits, misses int64, hitRate float64) {
	return t.cache.Stats()
}

// Size returns the number of cached trees
func (t *TreeCache) Size() int {
	return t.cache.Size()
}

// Clear drops every cached tree
func (t *TreeCache) Clear() {
	t.cache.Clear()
}

// Close stops the background sweep
func (t *TreeCache) Close() {
	t.cache.Close()
}

func treeKey(mode parser.Mode, input string) string {
	sum := sha256.Sum256([]byte(mode.String() + "\x00" + input))
	return hex.EncodeToString(sum[:])
}
