package model

// HealthStatus represents the health check status
type HealthStatus struct {
	Status  string      `json:"status"`
	Service string      `json:"service"`
	Version string      `json:"version"`
	Assets  AssetHealth `json:"assets"`
}

// AssetHealth describes the static bundle the server is serving.
type AssetHealth struct {
	Available bool   `json:"available"`
	Embedded  bool   `json:"embedded"`
	Dir       string `json:"dir,omitempty"`
	Version   string `json:"version,omitempty"`
}
