package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	exerr "github.com/msto63/exprkit/foundation/core/error"
	"github.com/msto63/exprkit/foundation/expr"
	"github.com/msto63/exprkit/foundation/expr/ast"
	"github.com/msto63/exprkit/foundation/expr/executor"
	"github.com/msto63/exprkit/foundation/expr/parser"
	"github.com/msto63/exprkit/internal/store"
	"github.com/msto63/exprkit/pkg/core/cache"
	coreGrpc "github.com/msto63/exprkit/pkg/core/grpc"
	"github.com/msto63/exprkit/pkg/core/logging"
)

// pruneEvery is how many history records are written between prunes
const pruneEvery = 100

// ParseResult is the outcome of a parse request
type ParseResult struct {
	RequestID string
	Tree      ast.Node
	Rendered  string
	Variables []string
	Cached    bool
}

// TokenizeResult is the outcome of a tokenize request
type TokenizeResult struct {
	RequestID string
	Tokens    []parser.Token
}

// EvaluateResult is the outcome of an evaluate request
type EvaluateResult struct {
	RequestID string
	Tree      ast.Node
	Rendered  string
	Value     int64

	// Assigned is the variable written by an assignment statement
	Assigned string
}

// Config holds service configuration
type Config struct {
	Mode           parser.Mode
	MaxInputLength int

	// Store persists variables and history. Without it variables live in
	// memory and no history is kept.
	Store *store.Store

	// Trees caches parse results; nil disables caching
	Trees *cache.TreeCache

	DisableHistory bool
	HistoryLimit   int

	Logger *logging.Logger
}

// Service binds the expression engine to variable storage and history.
// Assignments run one at a time, so a statement such as x = x + 1 reads and
// writes x atomically with respect to other calls on the same Service.
// Writers outside this Service sharing the store file are not serialized.
type Service struct {
	writeMu sync.Mutex

	engine  *expr.Engine
	store   *store.Store
	env     executor.Environment
	memory  *executor.MemoryEnvironment
	trees   *cache.TreeCache
	logger  *logging.Logger
	config  Config
	records atomic.Int64
}

// NewService creates a new service
func NewService(cfg Config) (*Service, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.New("exprkit-service")
	}
	if cfg.Mode != parser.ModeStrict && cfg.Mode != parser.ModeLegacy {
		return nil, exerr.Newf("unknown parse mode %d", int(cfg.Mode)).
			WithCode(exerr.CodeInvalidInput).
			WithOperation("service.NewService")
	}

	s := &Service{
		engine: expr.New(expr.Options{
			Logger:         cfg.Logger.Foundation(),
			Mode:           cfg.Mode,
			MaxInputLength: cfg.MaxInputLength,
		}),
		store:  cfg.Store,
		trees:  cfg.Trees,
		logger: cfg.Logger,
		config: cfg,
	}

	if cfg.Store != nil {
		s.env = cfg.Store
	} else {
		s.memory = executor.NewMemoryEnvironment(nil)
		s.env = s.memory
	}
	return s, nil
}

// Mode returns the parse mode in use
func (s *Service) Mode() parser.Mode {
	return s.engine.Mode()
}

// Engine returns the underlying engine
func (s *Service) Engine() *expr.Engine {
	return s.engine
}

// Parse parses input into a tree
func (s *Service) Parse(ctx context.Context, input string) (*ParseResult, error) {
	requestID := requestID(ctx)
	logger := s.logger.With("request_id", requestID)

	node, cached, err := s.parse(input)
	if err != nil {
		logger.Debug("Parse failed", "input", input, "error", err)
		s.record(ctx, &store.HistoryEntry{RequestID: requestID, Input: input, Kind: store.KindParse}, err)
		return nil, withRequestID(err, requestID)
	}

	result := &ParseResult{
		RequestID: requestID,
		Tree:      node,
		Rendered:  ast.Render(node),
		Variables: ast.Variables(node),
		Cached:    cached,
	}
	logger.Debug("Parsed statement", "rendered", result.Rendered, "cached", cached)
	s.record(ctx, &store.HistoryEntry{
		RequestID: requestID,
		Input:     input,
		Kind:      store.KindParse,
		Rendered:  result.Rendered,
	}, nil)
	return result, nil
}

// Tokenize splits input into tokens
func (s *Service) Tokenize(ctx context.Context, input string) (*TokenizeResult, error) {
	requestID := requestID(ctx)

	tokens, err := s.engine.Tokenize(input)
	s.record(ctx, &store.HistoryEntry{RequestID: requestID, Input: input, Kind: store.KindTokenize}, err)
	if err != nil {
		s.logger.Debug("Tokenize failed", "request_id", requestID, "error", err)
		return nil, withRequestID(err, requestID)
	}

	return &TokenizeResult{RequestID: requestID, Tokens: tokens}, nil
}

// Evaluate parses and evaluates input against the service's variables
func (s *Service) Evaluate(ctx context.Context, input string) (*EvaluateResult, error) {
	requestID := requestID(ctx)
	logger := s.logger.With("request_id", requestID)
	entry := &store.HistoryEntry{RequestID: requestID, Input: input, Kind: store.KindEvaluate}

	node, _, err := s.parse(input)
	if err != nil {
		logger.Debug("Evaluate failed to parse", "input", input, "error", err)
		s.record(ctx, entry, err)
		return nil, withRequestID(err, requestID)
	}
	entry.Rendered = ast.Render(node)

	value, err := s.evaluateTree(ctx, node)
	if err != nil {
		logger.Debug("Evaluate failed", "rendered", entry.Rendered, "error", err)
		s.record(ctx, entry, err)
		return nil, withRequestID(err, requestID)
	}
	entry.Value = &value
	s.record(ctx, entry, nil)

	result := &EvaluateResult{
		RequestID: requestID,
		Tree:      node,
		Rendered:  entry.Rendered,
		Value:     value,
	}
	if a, ok := node.(*ast.Assignment); ok {
		result.Assigned = a.Target
		logger.Info("Variable assigned", "name", a.Target, "value", value)
	}
	return result, nil
}

// evaluateTree holds writeMu for assignments; pure expressions only read
func (s *Service) evaluateTree(ctx context.Context, node ast.Node) (int64, error) {
	if _, ok := node.(*ast.Assignment); ok {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
	}
	return s.engine.EvaluateTree(ctx, node, s.env)
}

// Variables returns all variables
func (s *Service) Variables(ctx context.Context) (map[string]int64, error) {
	return s.env.Variables(ctx)
}

// SetVariable binds name to value directly
func (s *Service) SetVariable(ctx context.Context, name string, value int64) error {
	if name == "" {
		return exerr.New("variable name is required").
			WithCode(exerr.CodeInvalidInput).
			WithOperation("service.SetVariable")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.env.Assign(ctx, name, value)
}

// ClearVariables removes all variables and returns how many were removed
func (s *Service) ClearVariables(ctx context.Context) (int64, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.store != nil {
		return s.store.ClearVariables(ctx)
	}

	vars, err := s.memory.Variables(ctx)
	if err != nil {
		return 0, err
	}
	s.memory.Clear()
	return int64(len(vars)), nil
}

// History returns recent requests, newest first. It is empty when no store
// is configured.
func (s *Service) History(ctx context.Context, limit int) ([]*store.HistoryEntry, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.History(ctx, limit)
}

// CacheStats returns parse cache statistics; all zero when caching is off
func (s *Service) CacheStats() (hits, misses int64, size int) {
	if s.trees == nil {
		return 0, 0, 0
	}
	hits, misses, _ = s.trees.Stats()
	return hits, misses, s.trees.Size()
}

func (s *Service) parse(input string) (ast.Node, bool, error) {
	if s.trees == nil {
		node, err := s.engine.Parse(input)
		return node, false, err
	}
	return s.trees.Parse(s.engine.Mode(), input, s.engine.Parse)
}

// record writes a history entry. Failures are logged and otherwise ignored
// so that history problems never fail a request.
func (s *Service) record(ctx context.Context, entry *store.HistoryEntry, err error) {
	if s.store == nil || s.config.DisableHistory {
		return
	}
	if err != nil {
		entry.Error = err.Error()
	}

	if recErr := s.store.RecordHistory(ctx, entry); recErr != nil {
		s.logger.Warn("Failed to record history", "request_id", entry.RequestID, "error", recErr)
		return
	}

	if s.config.HistoryLimit > 0 && s.records.Add(1)%pruneEvery == 0 {
		if _, pruneErr := s.store.PruneHistory(ctx, s.config.HistoryLimit); pruneErr != nil {
			s.logger.Warn("Failed to prune history", "error", pruneErr)
		}
	}
}

func requestID(ctx context.Context) string {
	if id := coreGrpc.GetRequestID(ctx); id != "" {
		return id
	}
	return uuid.New().String()
}

func withRequestID(err error, requestID string) error {
	if coded, ok := exerr.As(err); ok && coded.RequestID() == "" {
		coded.WithRequestID(requestID)
	}
	return err
}
