package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/example/kdcpay-gateway/internal/config"
	"github.com/example/kdcpay-gateway/internal/logging"
	"github.com/example/kdcpay-gateway/internal/queue"
)

func newOutcomesCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "outcomes",
		Short: "Log every payment outcome event from the outcome topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			if len(cfg.Kafka.Brokers) == 0 {
				return errors.New("kafka.brokers is required")
			}
			log := logging.New(cfg.LogLevel, cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r := queue.NewReader(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Group)
			defer r.Close()

			log.WithField("topic", cfg.Kafka.Topic).Info("outcome audit started")
			for {
				msg, err := r.ReadMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				auditOutcome(log, msg)
			}
		},
	}
}

func auditOutcome(log logrus.FieldLogger, msg kafka.Message) {
	ev, err := queue.DecodeOutcomeEvent(msg.Value)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"partition": msg.Partition,
			"offset":    msg.Offset,
		}).Warn("skip malformed outcome event")
		return
	}
	log.WithFields(logrus.Fields{
		"event_id":      ev.EventID,
		"payment_token": ev.PaymentToken,
		"outcome":       ev.Outcome,
		"occurred_at":   ev.OccurredAt,
		"partition":     msg.Partition,
		"offset":        msg.Offset,
	}).Info("payment outcome")
}
