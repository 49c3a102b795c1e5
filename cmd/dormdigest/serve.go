package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dormdigest/internal/config"
	"dormdigest/internal/pkg"
	"dormdigest/internal/repository/mysql"
	"dormdigest/internal/repository/redis"
	"dormdigest/internal/router"
	"dormdigest/internal/scheduler"
	"dormdigest/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, cleanup, err := bootstrap()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := mysql.Migrate(db, log); err != nil {
			return err
		}

		var cache *redis.SessionCache
		if cfg.Redis.Addr != "" {
			client, err := redis.New(ctx, cfg.Redis)
			if err != nil {
				return err
			}
			defer client.Close()
			cache = redis.NewSessionCache(client, cfg.Redis)
			log.Info("session cache enabled", zap.String("addr", cfg.Redis.Addr))
		}

		listeners, closeListeners := approvalListeners(cfg, log)
		defer closeListeners()

		users := service.NewUserService(db, log)
		clubs := service.NewClubService(db, log)
		sessions := service.NewSessionService(db, log, service.SessionServiceConfig{Cache: cache})
		events := service.NewEventService(db, log, service.EventServiceConfig{
			ChunkSize:     cfg.Description.ChunkSize,
			ExcerptLength: cfg.Description.ExcerptLength,
			Listeners:     listeners,
		})

		sched := scheduler.NewScheduler(sessions, cfg.Session.MaxAge, log)
		if err := sched.Start(cfg.Session.PurgeSchedule); err != nil {
			return err
		}
		defer sched.Stop()

		gin.SetMode(cfg.Server.Mode)
		r := router.InitRouter(router.Deps{
			DB:            db,
			Log:           log,
			Users:         users,
			Clubs:         clubs,
			Events:        events,
			Sessions:      sessions,
			SessionMaxAge: cfg.Session.MaxAge,
			FeedDomain:    cfg.Server.FeedDomain,
		})

		srv := &http.Server{Addr: cfg.Server.Listen, Handler: r}
		errCh := make(chan error, 1)
		go func() {
			log.Info("http server listening", zap.String("addr", cfg.Server.Listen))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

// approvalListeners always logs approvals and adds the Kafka feed and the
// submitter mail when configured.
func approvalListeners(cfg *config.Config, log *zap.Logger) ([]service.ApprovalListener, func()) {
	listeners := []service.ApprovalListener{&service.LogListener{Log: log}}
	closeFn := func() {}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		listeners = append(listeners, &service.KafkaListener{Producer: producer})
		closeFn = func() {
			if err := producer.Close(); err != nil {
				log.Warn("close kafka producer", zap.Error(err))
			}
		}
		log.Info("approval feed enabled", zap.String("topic", cfg.Kafka.Topic))
	}
	if cfg.SMTP.Host != "" {
		mailer := pkg.NewMailer(pkg.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		listeners = append(listeners, &service.MailListener{Mailer: mailer})
		log.Info("approval mail enabled", zap.String("host", cfg.SMTP.Host))
	}
	return listeners, closeFn
}
