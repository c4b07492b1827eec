package config

import (
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/gopherblog/internal/flagx"
)

// JsonConfig is the on-disk shape of the client config file. The timeout
// is given in seconds.
type JsonConfig struct {
	ServerURL      string `json:"server_url"`
	RequestTimeout int    `json:"request_timeout"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	jc := JsonConfig{ServerURL: cfg.ServerURL, RequestTimeout: int(cfg.RequestTimeout.Seconds())}
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	cfg.ServerURL = jc.ServerURL
	cfg.RequestTimeout = time.Duration(jc.RequestTimeout) * time.Second
	return nil
}
