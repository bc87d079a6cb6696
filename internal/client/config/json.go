package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/mandaditos/internal/flagx"
	"github.com/dmitrijs2005/mandaditos/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	ServerURL           string         `json:"server_url"`
	Transport           string         `json:"transport"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	SyncTimeout         timex.Duration `json:"sync_timeout"`
	DatabasePath        string         `json:"database_path"`
	DeviceName          string         `json:"device_name"`
	LogFile             string         `json:"log_file"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays the fields present in the file named by -c/-config.
// It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.Transport, jc.Transport)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.DeviceName, jc.DeviceName)
	setString(&cfg.LogFile, jc.LogFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.SyncTimeout.Duration > 0 {
		cfg.SyncTimeout = jc.SyncTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
