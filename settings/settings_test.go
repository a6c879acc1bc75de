package settings

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func TestDefaults(t *testing.T) {
	s := NewStore().Snapshot()

	if s.ComposeInterval != 300*time.Second {
		t.Errorf("ComposeInterval = %v, want 300s", s.ComposeInterval)
	}
	if s.SendMax != 10 {
		t.Errorf("SendMax = %d, want 10", s.SendMax)
	}
	if s.SendForReal {
		t.Error("SendForReal should default to false")
	}
	if !s.Debug {
		t.Error("Debug should default to true")
	}
	if s.SMTPServerPort != 465 {
		t.Errorf("SMTPServerPort = %d, want 465", s.SMTPServerPort)
	}
}

func TestApply(t *testing.T) {
	t.Run("known keys", func(t *testing.T) {
		store := NewStore()
		store.Apply(map[string]string{
			"task_send_emails_max":        "25",
			"task_send_emails_loop_sleep": "5",
			"email_to_domain":             "tools.wmflabs.org",
			"email_to_prefix":             "tools",
			"smtp_server_fqdn":            "relay.example.org",
			"smtp_server_port":            "25",
			"send_emails_for_real":        "yes",
			"debug":                       "no",
		})

		s := store.Snapshot()
		if s.SendMax != 25 {
			t.Errorf("SendMax = %d, want 25", s.SendMax)
		}
		if s.SendInterval != 5*time.Second {
			t.Errorf("SendInterval = %v, want 5s", s.SendInterval)
		}
		if s.EmailToDomain != "tools.wmflabs.org" || s.EmailToPrefix != "tools" {
			t.Errorf("to-address settings not applied: %+v", s)
		}
		if s.SMTPServerFQDN != "relay.example.org" || s.SMTPServerPort != 25 {
			t.Errorf("smtp settings not applied: %+v", s)
		}
		if !s.SendForReal {
			t.Error("SendForReal should be true")
		}
		if s.Debug {
			t.Error("Debug should be false")
		}
	})

	t.Run("unknown key ignored", func(t *testing.T) {
		store := NewStore()
		store.Apply(map[string]string{"no_such_key": "whatever"})

		if store.Snapshot() != Defaults() {
			t.Error("unknown key should not change anything")
		}
	})

	t.Run("malformed number keeps previous value", func(t *testing.T) {
		store := NewStore()
		store.Apply(map[string]string{
			"task_send_emails_max":    "not-a-number",
			"task_watch_pods_timeout": "-5",
		})

		s := store.Snapshot()
		if s.SendMax != 10 {
			t.Errorf("SendMax = %d, want previous value 10", s.SendMax)
		}
		if s.WatchTimeout != 60*time.Second {
			t.Errorf("WatchTimeout = %v, want previous value 60s", s.WatchTimeout)
		}
	})

	t.Run("debug key drives the global log level", func(t *testing.T) {
		t.Cleanup(func() {
			zerolog.SetGlobalLevel(zerolog.Disabled)
		})

		store := NewStore()

		store.Apply(map[string]string{"debug": "no"})
		if got := zerolog.GlobalLevel(); got != zerolog.InfoLevel {
			t.Errorf("global level = %v after debug=no, want info", got)
		}

		store.Apply(map[string]string{"debug": "yes"})
		if got := zerolog.GlobalLevel(); got != zerolog.DebugLevel {
			t.Errorf("global level = %v after debug=yes, want debug", got)
		}
	})

	t.Run("anything but yes means no", func(t *testing.T) {
		store := NewStore()
		store.Apply(map[string]string{"send_emails_for_real": "true"})

		if store.Snapshot().SendForReal {
			t.Error("only the literal 'yes' should enable real sends")
		}
	})
}

func TestRunAppliesConfigMap(t *testing.T) {
	client := fake.NewClientset(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:            "jobs-emailer-configmap",
			Namespace:       "jobs-emailer",
			ResourceVersion: "100",
		},
		Data: map[string]string{
			"task_send_emails_max": "3",
		},
	})

	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		store.Run(ctx, client, "jobs-emailer", "jobs-emailer-configmap")
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for store.Snapshot().SendMax != 3 {
		select {
		case <-deadline:
			t.Fatal("configmap was never applied")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("settings loop did not stop on context cancel")
	}
}

func TestRunKeepsSettingsOnAPIError(t *testing.T) {
	// no configmap in the fake cluster, every Get fails with NotFound
	client := fake.NewClientset()

	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		store.Run(ctx, client, "jobs-emailer", "jobs-emailer-configmap")
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if store.Snapshot() != Defaults() {
		t.Error("settings should stay at defaults when the configmap is unreadable")
	}

	cancel()
	<-done
}
