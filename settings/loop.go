package settings

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Run polls the settings ConfigMap until the context is cancelled. A new
// configuration is only applied when the ConfigMap's resourceVersion
// advanced past the last applied one, and API errors keep the previous
// settings so a broken control plane never takes the emailer down with it.
func (s *Store) Run(ctx context.Context, client kubernetes.Interface, namespace, name string) {
	var lastSeenVersion int64

	for {
		log.Debug().Msg("read configmap loop")

		cm, err := client.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			configReadsTotal.WithLabelValues("error").Inc()
			log.Warn().Err(err).Str("namespace", namespace).Str("name", name).
				Msg("unable to query configmap, will use previous config")
		} else {
			configReadsTotal.WithLabelValues("success").Inc()
			version, _ := strconv.ParseInt(cm.ObjectMeta.ResourceVersion, 10, 64)
			if version > lastSeenVersion {
				lastSeenVersion = version
				s.Apply(cm.Data)
				configAppliesTotal.Inc()
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.Snapshot().ReadInterval):
		}
	}
}
