package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	config "github.com/hanpama/gqlvalidate/internal/config"
	eventbus "github.com/hanpama/gqlvalidate/internal/eventbus"
	executor "github.com/hanpama/gqlvalidate/internal/executor"
	grpcsvc "github.com/hanpama/gqlvalidate/internal/grpcsvc"
	introspection "github.com/hanpama/gqlvalidate/internal/introspection"
	logger "github.com/hanpama/gqlvalidate/internal/logger"
	otel "github.com/hanpama/gqlvalidate/internal/otel"
	resolver "github.com/hanpama/gqlvalidate/internal/resolver"
	schema "github.com/hanpama/gqlvalidate/internal/schema"
	server "github.com/hanpama/gqlvalidate/internal/server"
	validation "github.com/hanpama/gqlvalidate/internal/validation"
)

func cmdServe(args []string, stdout, stderr io.Writer) error {
	cfg, err := parseConfig("serve", serveUsage, args, stderr, (*config.Config).RegisterServeFlags)
	if err != nil {
		return err
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logger.New("server", level, stdout)

	eventbus.Use(eventbus.New())
	unsubscribe := log.Subscribe()
	defer unsubscribe()
	shutdown, err := otel.Setup(cfg.OTelEndpoint, cfg.OTelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	sch, err := loadSchema(cfg.SchemaFiles)
	if err != nil {
		return err
	}
	v, err := loadValidator(sch, cfg.RulesFile)
	if err != nil {
		return err
	}
	h, err := newHandler(cfg, sch, v)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}

	var gs *grpc.Server
	var lis net.Listener
	if cfg.GRPCAddr != "" {
		if lis, err = net.Listen("tcp", cfg.GRPCAddr); err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		gs = grpcsvc.NewServer(grpcsvc.New(sch, v))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("GraphQL server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if gs != nil {
		g.Go(func() error {
			log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC validation service listening")
			return gs.Serve(lis)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if gs != nil {
			gs.GracefulStop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newHandler builds the GraphQL handler. Mutation fields echo their
// validated arguments: a single input-object argument is returned as is,
// otherwise the argument map is.
func newHandler(cfg *config.Config, sch *schema.Schema, v *validation.Validator) (*server.Handler, error) {
	res := resolver.New(sch, resolver.WithConcurrency(cfg.Concurrency))
	if mutation := sch.GetMutationType(); mutation != nil {
		for _, f := range mutation.Fields {
			res.Register(mutation.Name, f.Name, echo)
		}
	}

	var rt executor.Runtime = res
	if cfg.Introspection {
		var err error
		if rt, sch, err = introspection.Wrap(rt, sch); err != nil {
			return nil, err
		}
	}

	opts := []server.Option{
		server.WithTimeout(cfg.Timeout),
		server.WithMaxBodyBytes(cfg.MaxBodyBytes),
		server.WithGraphiQL(cfg.GraphiQL),
		server.WithDocumentCache(cfg.DocumentCacheSize),
		server.WithValidator(v),
	}
	if cfg.Pretty {
		opts = append(opts, server.WithPretty())
	}
	if len(cfg.CORSOrigins) > 0 {
		opts = append(opts, server.WithCORS(cfg.CORSOrigins...))
	}
	if len(cfg.MetadataHeaders) > 0 {
		opts = append(opts, server.WithMetadataHeaders(cfg.MetadataHeaders...))
	}
	h, err := server.New(rt, sch, opts...)
	if err != nil {
		return nil, fmt.Errorf("server init: %w", err)
	}
	return h, nil
}

func echo(ctx context.Context, source any, args map[string]any) (any, error) {
	if len(args) == 1 {
		for _, v := range args {
			if m, ok := v.(map[string]any); ok {
				return m, nil
			}
		}
	}
	return args, nil
}
