package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chrissnell/airfieldwx/internal/log"
	"github.com/chrissnell/airfieldwx/internal/observability"
	"github.com/chrissnell/airfieldwx/internal/render"
	"github.com/chrissnell/airfieldwx/internal/storage"
	"github.com/chrissnell/airfieldwx/pkg/config"
)

// Options are the collaborators the REST server needs.
type Options struct {
	Store   storage.EventStore
	Health  *storage.HealthManager
	Backend string
	Clock   clockwork.Clock
	Metrics *observability.Metrics
	Render  render.Config
}

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	store      storage.EventStore
	health     *storage.HealthManager
	backend    string
	clock      clockwork.Clock
	metrics    *observability.Metrics
	render     render.Config
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.RESTServerData, opts Options, logger *zap.SugaredLogger) (*Controller, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("REST server requires an event store")
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		store:      opts.Store,
		health:     opts.Health,
		backend:    opts.Backend,
		clock:      opts.Clock,
		metrics:    opts.Metrics,
		render:     opts.Render,
		logger:     logger,
	}

	if ctrl.clock == nil {
		ctrl.clock = clockwork.NewRealClock()
	}
	if ctrl.metrics == nil {
		ctrl.metrics = observability.NewMetricsForTesting()
	}
	if ctrl.health == nil {
		ctrl.health = storage.NewHealthManager(ctrl.clock)
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("rest.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = config.DefaultListenAddr
	}

	// Set default HTTP port if not specified
	if rc.HTTPPort == 0 {
		logger.Infof("rest.http_port not provided; defaulting to %d", config.DefaultHTTPPort)
		rc.HTTPPort = config.DefaultHTTPPort
	}
	ctrl.restConfig = rc

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.HTTPPort)
	ctrl.Server.Handler = ctrl.Handler()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	c.logger.Infof("starting REST server on %s", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.TLSCertPath != "" && c.restConfig.TLSKeyPath != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.TLSCertPath, c.restConfig.TLSKeyPath); err != http.ErrServerClosed {
				c.logger.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				c.logger.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Handler returns the full middleware chain around the router.
func (c *Controller) Handler() http.Handler {
	var h http.Handler = c.setupRouter()

	if c.restConfig.EnableCORS {
		h = handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type"}),
		)(h)
	}

	h = handlers.CombinedLoggingHandler(log.NewHTTPWriter(c.logger.Named("http")), h)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.metricsMiddleware)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/rain", c.handlers.CreateRain).Methods(http.MethodPost)
	api.HandleFunc("/rain", c.handlers.ListRain).Methods(http.MethodGet)
	api.HandleFunc("/rain/events", c.handlers.GetRainEvents).Methods(http.MethodGet)
	api.HandleFunc("/rain/stats", c.handlers.GetRainStats).Methods(http.MethodGet)

	api.HandleFunc("/runway", c.handlers.CreateRunwayState).Methods(http.MethodPost)
	api.HandleFunc("/runway", c.handlers.ListRunwayStates).Methods(http.MethodGet)
	api.HandleFunc("/runway/episodes", c.handlers.GetWetRunwayEpisodes).Methods(http.MethodGet)

	api.HandleFunc("/forecasts", c.handlers.CreateForecast).Methods(http.MethodPost)
	api.HandleFunc("/forecasts", c.handlers.ListForecasts).Methods(http.MethodGet)

	api.HandleFunc("/metars", c.handlers.IngestReports).Methods(http.MethodPost)
	api.HandleFunc("/metars", c.handlers.ListReports).Methods(http.MethodGet)

	api.HandleFunc("/timeline", c.handlers.GetTimeline).Methods(http.MethodGet)

	router.HandleFunc("/healthz", c.handlers.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return router
}

// metricsMiddleware records request durations by route template.
func (c *Controller) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := c.clock.Now()
		next.ServeHTTP(w, r)

		route := "unmatched"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		c.metrics.RequestDuration.WithLabelValues(route).Observe(c.clock.Since(start).Seconds())
	})
}
