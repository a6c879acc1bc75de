package settings

import (
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Settings is a typed snapshot of the runtime configuration. The ConfigMap
// carries everything as strings; the poll loop parses and applies them so
// the worker loops never see a half-updated or malformed value.
type Settings struct {
	ComposeInterval time.Duration
	SendInterval    time.Duration
	SendMax         int
	WatchTimeout    time.Duration
	ReadInterval    time.Duration

	EmailToDomain string
	EmailToPrefix string
	EmailFromAddr string

	SMTPServerFQDN string
	SMTPServerPort int

	SendForReal bool
	Debug       bool
}

// Defaults mirrors the values the daemon runs with until the ConfigMap is
// first read. Pick a big compose interval and chances are several events
// for the same user collapse into a single email.
func Defaults() Settings {
	return Settings{
		ComposeInterval: 300 * time.Second,
		SendInterval:    30 * time.Second,
		SendMax:         10,
		WatchTimeout:    60 * time.Second,
		ReadInterval:    10 * time.Second,
		EmailToDomain:   "toolsbeta.wmflabs.org",
		EmailToPrefix:   "toolsbeta",
		EmailFromAddr:   "root@toolforge.org",
		SMTPServerFQDN:  "mail.toolforge.org",
		SMTPServerPort:  465,
		SendForReal:     false,
		Debug:           true,
	}
}

// Store holds the current settings behind a RWMutex so the watch, compose
// and send loops can snapshot them without blocking each other.
type Store struct {
	mu      sync.RWMutex
	current Settings
}

func NewStore() *Store {
	return &Store{current: Defaults()}
}

func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Apply merges ConfigMap data into the current settings. Unknown keys are
// warned about and ignored, malformed values keep the previous one. The
// global log level follows the "debug" key.
func (s *Store) Apply(data map[string]string) {
	s.mu.Lock()
	next := s.current

	for key, value := range data {
		if !applyKey(&next, key, value) {
			log.Warn().Str("key", key).Msg("ignoring unknown config key (doesn't have a previous value)")
		}
	}

	s.current = next
	s.mu.Unlock()

	reconfigureLogging(next.Debug)
	log.Info().Interface("settings", next).Msg("new configuration")
}

func applyKey(s *Settings, key, value string) bool {
	switch key {
	case "task_compose_emails_loop_sleep":
		setSeconds(&s.ComposeInterval, key, value)
	case "task_send_emails_loop_sleep":
		setSeconds(&s.SendInterval, key, value)
	case "task_send_emails_max":
		setInt(&s.SendMax, key, value)
	case "task_watch_pods_timeout":
		setSeconds(&s.WatchTimeout, key, value)
	case "task_read_configmap_sleep":
		setSeconds(&s.ReadInterval, key, value)
	case "email_to_domain":
		s.EmailToDomain = value
	case "email_to_prefix":
		s.EmailToPrefix = value
	case "email_from_addr":
		s.EmailFromAddr = value
	case "smtp_server_fqdn":
		s.SMTPServerFQDN = value
	case "smtp_server_port":
		setInt(&s.SMTPServerPort, key, value)
	case "send_emails_for_real":
		s.SendForReal = value == "yes"
	case "debug":
		s.Debug = value == "yes"
	default:
		return false
	}
	return true
}

func setSeconds(dst *time.Duration, key, value string) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", value).Msg("not a valid number of seconds, keeping previous value")
		return
	}
	*dst = time.Duration(n) * time.Second
}

func setInt(dst *int, key, value string) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", value).Msg("not a valid number, keeping previous value")
		return
	}
	*dst = n
}

func reconfigureLogging(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}
