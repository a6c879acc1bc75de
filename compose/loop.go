package compose

import (
	"context"
	"time"

	"github.com/toolforge/jobs-emailer/events"
	"github.com/toolforge/jobs-emailer/settings"
	"github.com/toolforge/jobs-emailer/utils"

	"github.com/rs/zerolog/log"
)

// Run drains the event cache on every tick and queues one email per user.
// The interval is deliberately long: the longer we wait, the more events
// collapse into a single email per user.
func Run(ctx context.Context, cache *events.Cache, queue *utils.Queue[Email], store *settings.Store) {
	for {
		log.Debug().Msg("compose emails loop")

		snapshot := store.Snapshot()
		composed := 0
		for _, userjobs := range cache.DrainAll() {
			queue.Push(Compose(userjobs, snapshot))
			composed++
		}

		if composed > 0 {
			emailsComposedTotal.Add(float64(composed))
			log.Info().Int("new", composed).Int("queued", queue.Len()).
				Msg("new pending emails in the queue")
		}
		queueDepth.Set(float64(queue.Len()))

		select {
		case <-ctx.Done():
			return
		case <-time.After(snapshot.ComposeInterval):
		}
	}
}
