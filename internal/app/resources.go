package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/ordernotify/internal/pkg/config"
	"github.com/shandysiswandi/ordernotify/internal/pkg/idempotency"
	"github.com/shandysiswandi/ordernotify/internal/pkg/instrument"
	"github.com/shandysiswandi/ordernotify/internal/pkg/mail"
	"github.com/shandysiswandi/ordernotify/internal/pkg/messaging"
)

const (
	redisPingTimeout = 5 * time.Second
	guardNamespace   = "order-notify"
)

func (a *App) loadConfig(path string) error {
	cfg, err := config.Load(path,
		config.WithEnvAlias("mail.resend.api_key", "RESEND_API_KEY"),
		config.WithDefault("mail.driver", mail.DriverResend),
		config.WithDefault("messaging.driver", messaging.DriverNone),
		config.WithDefault("messaging.client_id", "ordernotify"),
		config.WithDefault("modules.order.currency_label", "Kč"),
		config.WithDefault("modules.order.idempotency.lock_seconds", 60),
		config.WithDefault("modules.order.idempotency.ttl_seconds", 86400),
		config.WithDefault("app.server.max_background_tasks", 64),
		config.WithDefault("app.server.http.address", ":8080"),
	)
	if err != nil {
		return err
	}

	a.config = cfg
	return nil
}

func (a *App) startInstrument(ctx context.Context) error {
	ins, err := instrument.New(ctx, instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPInsecure:     a.config.GetBool("instrument.otlp_insecure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricInterval:   a.config.GetSecond("instrument.metric_interval_seconds"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		return err
	}

	a.ins = ins
	a.onClose("instrument", ins.Shutdown)
	return nil
}

// openGuard connects to Redis only when redis.url is set. Without it the
// duplicate submission guard is unavailable and nil is returned.
func (a *App) openGuard(ctx context.Context) (*idempotency.Store, error) {
	url := strings.TrimSpace(a.config.GetString("redis.url"))
	if url == "" {
		slog.InfoContext(ctx, "redis is not configured, duplicate submission guard disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)
	a.onClose("redis", func(context.Context) error { return rdb.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}

	return idempotency.New(rdb, guardNamespace), nil
}

func (a *App) openMail() (mail.Sender, error) {
	return mail.Open(mail.Config{
		Driver: a.config.GetString("mail.driver"),
		From:   a.config.GetString("mail.from"),
		Resend: mail.ResendConfig{
			APIKey:  a.config.GetString("mail.resend.api_key"),
			BaseURL: a.config.GetString("mail.resend.base_url"),
		},
		SMTP: mail.SMTPConfig{
			Host:               a.config.GetString("mail.smtp.host"),
			Port:               a.config.GetInt("mail.smtp.port"),
			Username:           a.config.GetString("mail.smtp.username"),
			Password:           a.config.GetString("mail.smtp.password"),
			InsecureSkipVerify: a.config.GetBool("mail.smtp.insecure_skip_verify"),
		},
	})
}

func (a *App) openBroker(ctx context.Context) (messaging.Broker, error) {
	broker, err := messaging.Open(ctx, messaging.Config{
		Driver:   a.config.GetString("messaging.driver"),
		ClientID: a.config.GetString("messaging.client_id"),
		Kafka: messaging.KafkaConfig{
			Brokers:      a.config.GetArray("messaging.kafka.brokers"),
			DialTimeout:  a.config.GetSecond("messaging.kafka.dial_timeout_seconds"),
			WriteTimeout: a.config.GetSecond("messaging.kafka.write_timeout_seconds"),
		},
		NATS: messaging.NATSConfig{
			URL:           a.config.GetString("messaging.nats.url"),
			MaxReconnects: a.config.GetInt("messaging.nats.max_reconnects"),
			ReconnectWait: a.config.GetSecond("messaging.nats.reconnect_wait_seconds"),
			Timeout:       a.config.GetSecond("messaging.nats.timeout_seconds"),
			FlushTimeout:  a.config.GetSecond("messaging.nats.flush_timeout_seconds"),
		},
		NSQ: messaging.NSQConfig{
			Addr:         a.config.GetString("messaging.nsq.addr"),
			DialTimeout:  a.config.GetSecond("messaging.nsq.dial_timeout_seconds"),
			WriteTimeout: a.config.GetSecond("messaging.nsq.write_timeout_seconds"),
		},
		PubSub: messaging.PubSubConfig{
			ProjectID:       a.config.GetString("messaging.pubsub.project_id"),
			Endpoint:        a.config.GetString("messaging.pubsub.endpoint"),
			CredentialsFile: a.config.GetString("messaging.pubsub.credentials_file"),
		},
	})
	if err != nil {
		return nil, err
	}

	a.onClose("messaging", func(context.Context) error { return broker.Close() })
	return broker, nil
}
