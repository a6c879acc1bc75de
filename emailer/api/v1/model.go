package v1

// response models

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	Commit        string            `json:"commit"`
	UptimeSeconds int               `json:"uptime_seconds"`
	Features      map[string]string `json:"features"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
