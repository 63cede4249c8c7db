package domain

// HealthStatus is the snapshot served by the health endpoint.
type HealthStatus struct {
	UptimeSeconds      float64  `json:"uptime_seconds"`
	MessagesProcessed  int64    `json:"messages_processed"`
	MentionsRecorded   int64    `json:"mentions_recorded"`
	AlertsSent         int64    `json:"alerts_sent"`
	DBConnected        bool     `json:"db_connected"`
	TransportConnected bool     `json:"telegram_connected"`
	Detectors          []string `json:"detectors"`
}

// Healthy reports whether both hard dependencies are up.
func (h HealthStatus) Healthy() bool {
	return h.DBConnected && h.TransportConnected
}

// Reason returns a short explanation for a degraded status.
func (h HealthStatus) Reason() string {
	switch {
	case !h.DBConnected && !h.TransportConnected:
		return "database and transport disconnected"
	case !h.DBConnected:
		return "database disconnected"
	case !h.TransportConnected:
		return "transport disconnected"
	default:
		return ""
	}
}
