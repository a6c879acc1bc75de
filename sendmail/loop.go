package sendmail

import (
	"context"
	"fmt"
	"time"

	"github.com/toolforge/jobs-emailer/compose"
	"github.com/toolforge/jobs-emailer/settings"
	"github.com/toolforge/jobs-emailer/utils"

	"github.com/rs/zerolog/log"
)

// Run delivers queued emails in batches. Flooding an email server is very
// easy: at most SendMax deliveries go out per interval no matter how deep
// the queue is.
func Run(ctx context.Context, queue *utils.Queue[compose.Email], store *settings.Store, sender Sender) {
	for {
		log.Debug().Msg("send emails loop")

		snapshot := store.Snapshot()
		batch := queue.PopN(snapshot.SendMax)
		if len(batch) == 0 {
			log.Debug().Msg("no emails to send")
		} else {
			sendBatch(ctx, batch, snapshot, sender)
			if queue.Len() > 0 {
				log.Warn().Int("sent", len(batch)).Int("pending", queue.Len()).
					Msg("sent max emails, waiting before sending more")
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(snapshot.SendInterval):
		}
	}
}

func sendBatch(ctx context.Context, batch []compose.Email, s settings.Settings, sender Sender) {
	server := fmt.Sprintf("%s:%d", s.SMTPServerFQDN, s.SMTPServerPort)

	for _, email := range batch {
		log.Info().Str("from", email.FromAddr).Str("to", email.ToAddr).
			Str("server", server).Msg("sending email")
		log.Debug().Str("subject", email.Subject).Msg("email subject")
		log.Debug().Str("body", email.Body).Msg("email body")

		if !s.SendForReal {
			log.Info().Msg("not sending email for real")
			emailsSentTotal.WithLabelValues("dryrun").Inc()
			continue
		}

		if err := sender.Send(ctx, email); err != nil {
			// the email is dropped, there is no point in retrying a
			// relay that just refused us until the next compose run
			log.Error().Err(err).Str("to", email.ToAddr).Msg("failed to send email")
			emailsSentTotal.WithLabelValues("error").Inc()
			continue
		}

		log.Debug().Str("to", email.ToAddr).Str("server", server).Msg("sent email")
		emailsSentTotal.WithLabelValues("success").Inc()
	}
}
