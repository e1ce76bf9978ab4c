package cmd

import (
	"strconv"
	"strings"

	exerr "github.com/msto63/exprkit/foundation/core/error"
	exlog "github.com/msto63/exprkit/foundation/core/log"
	"github.com/msto63/exprkit/internal/service"
	"github.com/msto63/exprkit/internal/store"
	"github.com/msto63/exprkit/pkg/core/logging"
)

// newLocalService builds a service for the one-shot and interactive
// commands. With an empty dbPath variables live in memory.
func newLocalService(dbPath string, legacy bool) (*service.Service, func(), error) {
	cfg := service.Config{
		Mode:   parseMode(legacy),
		Logger: logging.Wrap(exlog.GetDefault()),
	}
	if appConfig != nil {
		cfg.MaxInputLength = appConfig.Parser.MaxInputLength
		cfg.DisableHistory = appConfig.Store.DisableHistory
		cfg.HistoryLimit = appConfig.Store.HistoryLimit
	}

	cleanup := func() {}
	if dbPath != "" {
		storeCfg := store.DefaultConfig()
		storeCfg.Path = dbPath
		if appConfig != nil {
			storeCfg.BusyTimeout = appConfig.Store.BusyTimeout.Duration
		}
		st, err := store.Open(storeCfg)
		if err != nil {
			return nil, nil, err
		}
		cfg.Store = st
		cleanup = func() { st.Close() }
	}

	svc, err := service.NewService(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

// parseAssignment splits a name=value flag
func parseAssignment(s string) (string, int64, error) {
	name, raw, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", 0, exerr.Newf("expected name=value, got %q", s).WithCode(exerr.CodeInvalidInput)
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return "", 0, exerr.Wrap(err, "invalid value for "+name).WithCode(exerr.CodeInvalidInput)
	}
	return name, value, nil
}
