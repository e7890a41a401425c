package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/pallet/janus"
	"github.com/roach88/janus/internal/runtime"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	MetricsAddr string

	// TokenGenerator allows overriding the call token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	TokenGenerator runtime.TokenGenerator

	// Registry receives the runtime metrics. If nil, a fresh registry is used.
	Registry *prometheus.Registry

	// MetricsListening is called with the bound address once the metrics
	// server listens (for testing).
	MetricsListening func(addr string)
}

// CallRequest is one line of run's input.
type CallRequest struct {
	Module   string    `json:"module,omitempty"`   // Default Janus
	Function string    `json:"function,omitempty"` // Default do_something
	Origin   string    `json:"origin"`
	Args     ir.Object `json:"args"`
	Token    string    `json:"token,omitempty"`
}

// CallResponse is one line of run's output, in input order.
type CallResponse struct {
	Line    int              `json:"line"`
	Receipt *runtime.Receipt `json:"receipt,omitempty"`
	Code    string           `json:"code,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the engine and dispatch calls from stdin",
		Long: `Start the single-writer engine over the database.

Reads one JSON call per line from stdin, dispatches the calls in order and
writes one JSON response per line to stdout. Stops at end of input or on
SIGINT/SIGTERM.

Input lines look like:
  {"origin":"signed:alice","args":{"something":42}}
  {"module":"Janus","function":"do_something","origin":"none","args":{"something":1}}

With --metrics-addr (or JANUS_METRICS_ADDR), Prometheus metrics are served
at /metrics while the engine runs.

Example:
  janus run --db ./janus.db < calls.jsonl
  janus run --db ./janus.db --metrics-addr :9108 --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (default $JANUS_METRICS_ADDR)")

	return cmd
}

func runEngine(opts *RunOptions, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
	}
	rtOpts := []runtime.Option{runtime.WithMetrics(runtime.NewMetrics(reg))}
	if opts.TokenGenerator != nil {
		rtOpts = append(rtOpts, runtime.WithTokens(opts.TokenGenerator))
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sess, err := openSession(ctx, opts.RootOptions, logger, rtOpts...)
	if err != nil {
		return err
	}
	defer sess.Close()

	addr := opts.MetricsAddr
	if addr == "" {
		addr = opts.Env.MetricsAddr
	}
	if addr != "" {
		stop, err := serveMetrics(addr, reg, logger, opts.MetricsListening)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start metrics server", err)
		}
		defer stop()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	eng := runtime.NewEngine(sess.runtime)
	runErr := make(chan error, 1)
	go func() { runErr <- eng.Run(ctx) }()

	logger.Info("engine started", "db", opts.Database, "runtime", sess.runtime.Config().Name)

	stats := pump(ctx, eng, cmd)
	eng.Stop()

	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "engine error", err)
	}

	logger.Info("engine stopped gracefully",
		"lines", stats.lines,
		"accepted", stats.accepted,
		"rejected", stats.rejected,
		"malformed", stats.malformed,
	)
	return nil
}

type pumpStats struct {
	lines, accepted, rejected, malformed int
}

type inflight struct {
	line  int
	reply <-chan runtime.Result
	resp  *CallResponse // Set when the line never reached the engine
}

// pump submits stdin lines to the engine and writes responses in input
// order. Reading and writing run concurrently so the engine stays busy.
func pump(ctx context.Context, eng *runtime.Engine, cmd *cobra.Command) pumpStats {
	queue := make(chan inflight, 64)

	send := func(item inflight) bool {
		select {
		case queue <- item:
			return true
		case <-ctx.Done():
			return false
		}
	}
	malformed := func(line int, msg string) inflight {
		return inflight{line: line, resp: &CallResponse{Line: line, Code: ErrCodeGeneric, Error: msg}}
	}

	go func() {
		defer close(queue)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		line := 0
		for scanner.Scan() {
			line++
			raw := scanner.Bytes()
			if len(raw) == 0 {
				continue
			}

			call, err := decodeCallRequest(raw)
			if err != nil {
				if !send(malformed(line, err.Error())) {
					return
				}
				continue
			}
			reply, ok := eng.Submit(call)
			if !ok {
				send(malformed(line, "engine stopped"))
				return
			}
			if !send(inflight{line: line, reply: reply}) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			send(malformed(line+1, err.Error()))
		}
	}()

	enc := json.NewEncoder(cmd.OutOrStdout())
	var stats pumpStats
	for {
		var item inflight
		select {
		case next, ok := <-queue:
			if !ok {
				return stats
			}
			item = next
		case <-ctx.Done():
			return stats
		}

		stats.lines++
		resp := item.resp
		if resp == nil {
			res := <-item.reply
			resp = &CallResponse{Line: item.line}
			if res.Receipt.Outcome != "" {
				receipt := res.Receipt
				resp.Receipt = &receipt
			}
			if res.Err != nil {
				resp.Code = errorCode(res.Receipt.Outcome)
				resp.Error = res.Err.Error()
				stats.rejected++
			} else {
				stats.accepted++
			}
		} else {
			stats.malformed++
		}
		_ = enc.Encode(resp)
	}
}

func decodeCallRequest(raw []byte) (runtime.Call, error) {
	var req CallRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return runtime.Call{}, fmt.Errorf("invalid call JSON: %w", err)
	}
	o, err := ir.ParseOrigin(req.Origin)
	if err != nil {
		return runtime.Call{}, err
	}
	if req.Module == "" {
		req.Module = janus.PalletName
	}
	if req.Function == "" {
		req.Function = janus.CallDoSomething
	}
	return runtime.Call{
		Module:   req.Module,
		Function: req.Function,
		Args:     req.Args,
		Origin:   o,
		Token:    req.Token,
	}, nil
}

// serveMetrics serves reg at /metrics until the returned stop func is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger, listening func(string)) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())
	if listening != nil {
		listening(ln.Addr().String())
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
