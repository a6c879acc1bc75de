package emailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/toolforge/jobs-emailer/compose"
	v1 "github.com/toolforge/jobs-emailer/emailer/api/v1"
	"github.com/toolforge/jobs-emailer/events"
	"github.com/toolforge/jobs-emailer/model"
	"github.com/toolforge/jobs-emailer/sendmail"
	"github.com/toolforge/jobs-emailer/settings"
	"github.com/toolforge/jobs-emailer/utils"

	"github.com/labstack/echo/v5"
	"github.com/rs/zerolog/log"
	"k8s.io/client-go/kubernetes"
)

// Emailer wires the four loops together:
//  1. watch pod events from kubernetes, filter them, cache the relevant ones
//  2. periodically collapse the cache into one email per user and queue them
//  3. periodically send queued emails, up to a configured max per batch
//  4. periodically re-read our ConfigMap so operators can reconfigure
//     without restarts (and without losing cached events)
type Emailer struct {
	cfg     model.Config
	client  kubernetes.Interface
	store   *settings.Store
	cache   *events.Cache
	queue   *utils.Queue[compose.Email]
	sender  sendmail.Sender
	version string
	commit  string
}

func New(cfg model.Config, client kubernetes.Interface, version, commit string) *Emailer {
	store := settings.NewStore()
	return &Emailer{
		cfg:     cfg,
		client:  client,
		store:   store,
		cache:   events.NewCache(),
		queue:   utils.NewQueue[compose.Email](),
		sender:  sendmail.NewSMTPSender(store),
		version: version,
		commit:  commit,
	}
}

// Start launches the worker loops and the embedded web server. Everything
// winds down when ctx is cancelled.
func (e *Emailer) Start(ctx context.Context) {
	go e.store.Run(ctx, e.client, e.cfg.ConfigMapNamespace, e.cfg.ConfigMapName)
	go events.NewWatcher(e.client, e.store, e.cache).Run(ctx)
	go compose.Run(ctx, e.cache, e.queue, e.store)
	go sendmail.Run(ctx, e.queue, e.store, e.sender)

	srv := echo.New()
	srv.Use(v1.MetricsMiddleware())

	features := map[string]string{
		"configmap": fmt.Sprintf("%s/%s", e.cfg.ConfigMapNamespace, e.cfg.ConfigMapName),
	}
	if !e.store.Snapshot().SendForReal {
		features["dry_run"] = "enabled"
	}

	srv.GET("/healthz", v1.Healthz(e.version, e.commit, features))
	srv.GET("/metrics", v1.MetricsHandler())

	go func() {
		log.Info().Str("addr", e.cfg.ListenAddr).Msg("starting embedded web server")
		if err := srv.Start(e.cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("web server failed")
		}
	}()
}
