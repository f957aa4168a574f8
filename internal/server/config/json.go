package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/amanotes/internal/flagx"
	"github.com/dmitrijs2005/amanotes/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Pointer fields tell an absent
// key apart from an explicit zero, so absent keys keep their defaults.
type JsonConfig struct {
	EndpointAddrGRPC *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN      *string         `json:"database_dsn"`
	PingInterval     *timex.Duration `json:"ping_interval"`
}

// parseJson overlays values from the file named by -c/-config. A missing
// flag loads nothing; an unreadable or malformed file panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrGRPC != nil {
		config.EndpointAddrGRPC = *c.EndpointAddrGRPC
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.PingInterval != nil {
		config.PingInterval = c.PingInterval.Duration
	}
}
