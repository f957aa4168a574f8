package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/amanotes/internal/flagx"
	"github.com/dmitrijs2005/amanotes/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the corresponding Config field untouched.
type JsonConfig struct {
	ServerEndpointAddr  *string         `json:"server_endpoint_addr"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	Mode                *string         `json:"mode"`
	DataDir             *string         `json:"data_dir"`
	DatabaseDSN         *string         `json:"database_dsn"`
	DemoAPIURL          *string         `json:"demo_api_url"`
	DemoAPITimeout      *timex.Duration `json:"demo_api_timeout"`
	LogLevel            *string         `json:"log_level"`
	TokenSecret         *string         `json:"token_secret"`
	FederatedSecret     *string         `json:"federated_secret"`
	GoogleIDToken       *string         `json:"google_id_token"`
	S3Region            *string         `json:"s3_region"`
	S3AccessKey         *string         `json:"s3_access_key"`
	S3SecretKey         *string         `json:"s3_secret_key"`
	S3BaseEndpoint      *string         `json:"s3_base_endpoint"`
	S3Bucket            *string         `json:"s3_bucket"`
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Panics on read or unmarshal errors.
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
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	setString(&cfg.Mode, jc.Mode)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.DemoAPIURL, jc.DemoAPIURL)
	if jc.DemoAPITimeout != nil {
		cfg.DemoAPITimeout = jc.DemoAPITimeout.Duration
	}
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.TokenSecret, jc.TokenSecret)
	setString(&cfg.FederatedSecret, jc.FederatedSecret)
	setString(&cfg.GoogleIDToken, jc.GoogleIDToken)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3Bucket, jc.S3Bucket)
}
