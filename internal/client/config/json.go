package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pairchat/internal/flagx"
	"github.com/dmitrijs2005/pairchat/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent
// keys leave the Config untouched.
type JsonConfig struct {
	ServerURL           *string         `json:"server_url"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	DataDir             *string         `json:"data_dir"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
}

// parseJson overlays Config with the file named by -c / -config.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags(os.Args[1:])
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

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DataDir != nil {
		cfg.DataDir = *jc.DataDir
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}
