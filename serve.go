// serve.go
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"codenames-sync/controllers"
	"codenames-sync/logger"
	"codenames-sync/metrics"
	"codenames-sync/services"
	"codenames-sync/websocket"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the in-memory reference backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateServe(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: CODENAMES_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: CODENAMES_PORT)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "external URL used in share links (env: CODENAMES_PUBLIC_URL)")
	fs.IntVar(&cfg.firstGameID, "first-game-id", 1, "id given to the first created game (env: CODENAMES_FIRST_GAME_ID)")
	fs.BoolVar(&cfg.metrics, "metrics", false, "publish metrics to CloudWatch (env: CODENAMES_METRICS)")
	fs.BoolVar(&cfg.xray, "xray", false, "trace requests with AWS X-Ray (env: CODENAMES_XRAY)")
	bindFlags(v, fs)
	return cmd
}

// backend is the wired reference server.
type backend struct {
	handler http.Handler
	games   *services.GameService
	hub     *websocket.Hub
	flush   func()
}

func newBackend(cfg *Config) (*backend, error) {
	var pub metrics.Publisher = metrics.Nop{}
	flush := func() {}
	if cfg.metrics {
		cw, err := metrics.NewCloudWatch(cfg.xray)
		if err != nil {
			return nil, err
		}
		pub = cw
		flush = cw.Flush
		logger.Info.Printf("[newBackend] Publishing metrics to CloudWatch namespace %s", metrics.Namespace)
	}

	games := services.NewGameService(services.WithFirstID(cfg.firstGameID), services.WithMetrics(pub))
	hub := websocket.NewHub(games, pub)
	games.SetBroadcaster(hub)

	if cfg.env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := controllers.NewRouter(controllers.NewGameController(games, hub, cfg.resolvedPublicURL()))

	var handler http.Handler = router
	if cfg.xray {
		handler = xray.Handler(xray.NewFixedSegmentNamer("codenames-sync"), router)
		logger.Info.Println("[newBackend] X-Ray tracing enabled")
	}
	return &backend{handler: handler, games: games, hub: hub, flush: flush}, nil
}

func runServe(ctx context.Context, cfg *Config) error {
	b, err := newBackend(cfg)
	if err != nil {
		return err
	}
	defer b.flush()

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           b.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       10 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info.Printf("[runServe] Listening on http://%s/ (share links: %s)", srv.Addr, cfg.resolvedPublicURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info.Println("[runServe] Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
