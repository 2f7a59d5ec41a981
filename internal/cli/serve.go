package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"depviz/pkg/config"
	deperrors "depviz/pkg/errors"
	"depviz/pkg/graph"
	"depviz/pkg/pipeline"
)

// newServeCmd creates the serve command, exposing the analysis pipeline
// over an HTTP API.
func newServeCmd(root *rootOpts) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer over HTTP",
		Long: `Serve starts an HTTP server exposing the analysis pipeline.

Endpoints:
  GET /healthz                     liveness probe
  GET /api/v1/analyze?package=...  full analysis as JSON
  GET /api/v1/dot?package=...      DOT document as text

Query parameters: package (required), max_depth, filter, stage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			prov, closeProvider, err := newProvider(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeProvider()

			logger := loggerFromContext(ctx)
			srv := &http.Server{
				Addr:              addr,
				Handler:           newAPIRouter(cfg, pipeline.NewRunner(prov)),
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			logger.Infof("listening on %s", addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// newAPIRouter wires the HTTP API. The configured package settings act as
// defaults; query parameters override them per request.
func newAPIRouter(cfg *config.Config, runner *pipeline.Runner) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/analyze", handleAnalyze(cfg, runner))
		r.Get("/dot", handleDOT(cfg, runner))
	})

	return r
}

// analyzeResponse is the JSON shape of a pipeline run.
type analyzeResponse struct {
	RunID    string              `json:"run_id"`
	Package  string              `json:"package"`
	MaxDepth int                 `json:"max_depth"`
	Nodes    []string            `json:"nodes"`
	Edges    map[string][]string `json:"edges"`
	Cycles   []graph.Cycle       `json:"cycles,omitempty"`
	Order    []string            `json:"order,omitempty"`
	Excluded []string            `json:"excluded,omitempty"`
	DOT      string              `json:"dot,omitempty"`
	Elapsed  string              `json:"elapsed"`
}

func handleAnalyze(cfg *config.Config, runner *pipeline.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := requestOptions(cfg, r)
		if err != nil {
			writeError(w, err)
			return
		}

		res, err := runner.Run(r.Context(), opts)
		if err != nil {
			writeError(w, err)
			return
		}

		edges := make(map[string][]string, res.Graph.NodeCount())
		for _, n := range res.Graph.Nodes() {
			if res.Graph.Expanded(n) {
				edges[n] = res.Graph.Deps(n)
			}
		}

		writeJSON(w, http.StatusOK, analyzeResponse{
			RunID:    res.RunID,
			Package:  opts.Package,
			MaxDepth: opts.MaxDepth,
			Nodes:    res.Graph.Nodes(),
			Edges:    edges,
			Cycles:   res.Cycles,
			Order:    res.Order,
			Excluded: res.Excluded,
			DOT:      res.DOT,
			Elapsed:  res.Elapsed.String(),
		})
	}
}

func handleDOT(cfg *config.Config, runner *pipeline.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := requestOptions(cfg, r)
		if err != nil {
			writeError(w, err)
			return
		}
		opts.Stage = pipeline.StageExport

		res, err := runner.Run(r.Context(), opts)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(res.DOT))
	}
}

// requestOptions merges query parameters over the configured defaults.
func requestOptions(cfg *config.Config, r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()

	pkg := q.Get("package")
	if pkg == "" {
		pkg = cfg.PackageName
	}
	if err := deperrors.ValidatePackageName(pkg); err != nil {
		return pipeline.Options{}, err
	}

	depth := cfg.MaxDepth
	if s := q.Get("max_depth"); s != "" {
		d, err := strconv.Atoi(s)
		if err != nil {
			return pipeline.Options{}, deperrors.New(deperrors.ErrCodeInvalidDepth, "max_depth %q is not an integer", s)
		}
		if d < 0 || d > config.MaxDepthLimit {
			return pipeline.Options{}, deperrors.New(deperrors.ErrCodeInvalidDepth,
				"max_depth must be between 0 and %d, got %d", config.MaxDepthLimit, d)
		}
		depth = d
	}

	stage, err := pipeline.ParseStage(q.Get("stage"))
	if err != nil {
		return pipeline.Options{}, err
	}

	filter := cfg.FilterSubstring
	if q.Has("filter") {
		filter = q.Get("filter")
	}

	return pipeline.Options{
		Package:  pkg,
		MaxDepth: depth,
		Filter:   filter,
		Stage:    stage,
	}, nil
}

// errorResponse is the JSON shape of an API error.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := deperrors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case deperrors.ErrCodeInvalidInput, deperrors.ErrCodeInvalidPackage,
		deperrors.ErrCodeInvalidDepth, deperrors.ErrCodeInvalidStage:
		status = http.StatusBadRequest
	case deperrors.ErrCodeNotFound, deperrors.ErrCodePackageNotFound:
		status = http.StatusNotFound
	case deperrors.ErrCodeNetwork, deperrors.ErrCodeTimeout:
		status = http.StatusBadGateway
	}
	if code == "" {
		code = deperrors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Code: string(code), Message: deperrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
