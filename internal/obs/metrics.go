package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectAttempts     = promauto.NewCounter(prometheus.CounterOpts{Name: "stitch_connect_attempts_total", Help: "Connection attempts started"})
	ConnectFailures     = promauto.NewCounterVec(prometheus.CounterOpts{Name: "stitch_connect_failures_total", Help: "Failed connection attempts by reason"}, []string{"reason"})
	Disconnects         = promauto.NewCounter(prometheus.CounterOpts{Name: "stitch_disconnects_total", Help: "Sessions ended after being established"})
	SessionActive       = promauto.NewGauge(prometheus.GaugeOpts{Name: "stitch_session_active", Help: "1 while a session is live"})
	ClipboardSends      = promauto.NewCounter(prometheus.CounterOpts{Name: "stitch_clipboard_sends_total", Help: "Clipboard payloads sent to the server"})
	ClipboardSuppressed = promauto.NewCounter(prometheus.CounterOpts{Name: "stitch_clipboard_suppressed_total", Help: "Clipboard sends suppressed as unchanged"})
)
