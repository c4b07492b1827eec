package config

import (
	"os"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/gopherblog/internal/flagx"
)

// JsonConfig is the on-disk shape of the configuration file. Keys that are
// absent keep the value already present in Config.
type JsonConfig struct {
	EndpointAddrHTTP      string `json:"endpoint_addr_http"`
	Storage               string `json:"storage"`
	MongoURI              string `json:"mongo_uri"`
	MongoDatabase         string `json:"mongo_database"`
	DatabaseDSN           string `json:"database_dsn"`
	JWTPrivateKey         string `json:"jwt_private_key"`
	JWTPublicKey          string `json:"jwt_public_key"`
	AccessTokenExpiresIn  int    `json:"access_token_expires_in"`
	RefreshTokenExpiresIn int    `json:"refresh_token_expires_in"`
	CookieSecure          bool   `json:"cookie_secure"`
	S3RootUser            string `json:"s3_root_user"`
	S3RootPassword        string `json:"s3_root_password"`
	S3Bucket              string `json:"s3_bucket"`
	S3Region              string `json:"s3_region"`
	S3BaseEndpoint        string `json:"s3_base_endpoint"`
	LogFormat             string `json:"log_format"`
}

// parseJson overlays the file named by -c/-config onto config.
// No flag means nothing to load.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := JsonConfig(*config)
	if err := json.Unmarshal(file, &c); err != nil {
		return err
	}
	*config = Config(c)

	return nil
}
