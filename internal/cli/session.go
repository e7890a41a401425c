package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/roach88/janus/internal/config"
	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/origin"
	"github.com/roach88/janus/internal/runtime"
	"github.com/roach88/janus/internal/store"
	"github.com/roach88/janus/internal/support"
)

// newLogger builds the text logger every command logs through. --verbose
// wins over JANUS_LOG_LEVEL.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level, err := opts.Env.Level()
	if err != nil || opts.Env.LogLevel == "" {
		level = slog.LevelInfo
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadRuntimeConfig loads --runtime, or the built-in description when unset.
func loadRuntimeConfig(opts *RootOptions) (*config.Runtime, error) {
	cfg, err := config.Load(opts.Runtime)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load runtime description", err)
	}
	return cfg, nil
}

// buildVerifier routes signed origins through the dev keyring and, when
// JANUS_JWT_ISSUER/JANUS_JWT_PUBLIC_KEY are set, bearer origins through JWT
// verification. Every other origin kind is rejected.
func buildVerifier(cfg *config.Runtime, env config.Env) (support.Verifier, error) {
	keyring, err := origin.NewKeyring(cfg.Accounts, cfg.StrictAccounts)
	if err != nil {
		return nil, err
	}
	routes := []origin.Route{{Kind: ir.OriginSigned, Verifier: keyring}}

	if env.JWTEnabled() {
		if env.JWTIssuer == "" || env.JWTPublicKey == "" {
			return nil, errors.New("JANUS_JWT_ISSUER and JANUS_JWT_PUBLIC_KEY must be set together")
		}
		key, err := origin.ParsePublicKey(env.JWTPublicKey)
		if err != nil {
			return nil, err
		}
		jwtv, err := origin.NewJWTVerifier(origin.JWTConfig{Issuer: env.JWTIssuer, Key: key})
		if err != nil {
			return nil, err
		}
		routes = append(routes, origin.Route{Kind: ir.OriginBearer, Verifier: jwtv})
	}

	return origin.NewChain(routes...), nil
}

// session is an open store with a runtime over it.
type session struct {
	store   *store.Store
	runtime *runtime.Runtime
	logger  *slog.Logger
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// openSession opens --db and builds a runtime for it. Extra options are
// appended after the logger.
func openSession(ctx context.Context, opts *RootOptions, logger *slog.Logger, extra ...runtime.Option) (*session, error) {
	cfg, err := loadRuntimeConfig(opts)
	if err != nil {
		return nil, err
	}

	verifier, err := buildVerifier(cfg, opts.Env)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to configure origins", err)
	}

	logger.Debug("opening database", "path", opts.Database)
	st, err := openStore(opts)
	if err != nil {
		return nil, err
	}

	rtOpts := append([]runtime.Option{runtime.WithLogger(logger)}, extra...)
	rt, err := runtime.New(ctx, st, cfg, verifier, rtOpts...)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to create runtime", err)
	}

	return &session{store: st, runtime: rt, logger: logger}, nil
}

// openStore opens --db for read-only commands.
func openStore(opts *RootOptions) (*store.Store, error) {
	if opts.Database == "" {
		return nil, NewExitError(ExitCommandError, "no database: pass --db or set JANUS_DB")
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// errorCode maps a dispatch outcome to the CLI error code.
func errorCode(outcome string) string {
	switch outcome {
	case "BadOrigin":
		return ErrCodeBadOrigin
	case string(runtime.ErrCodeUnknownCall):
		return ErrCodeUnknownCall
	case string(runtime.ErrCodeInvalidArgs):
		return ErrCodeInvalidArgs
	case string(runtime.ErrCodeDispatchFailed):
		return ErrCodeDispatchFailed
	default:
		return ErrCodeGeneric
	}
}
