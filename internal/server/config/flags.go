package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/gopherblog/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string              HTTP bind address (e.g., ":8000")
//	-storage string        mongo, postgres or memory
//	-mongo-uri string      MongoDB connection URI
//	-mongo-db string       MongoDB database name
//	-d string              PostgreSQL DSN
//	-private-key string    base64 PEM RSA private key
//	-public-key string     base64 PEM RSA public key
//	-t int                 access token expiry, minutes
//	-r int                 refresh token expiry, minutes
//	-cookie-secure         set Secure on session cookies
//	-u / -p string         S3 root user / password
//	-b / -g / -e string    S3 bucket / region / base endpoint
//	-log-format string     json, text or zap
//
// Flags not defined here (e.g. -c) are filtered out before parsing.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.Storage, "storage", config.Storage, "storage backend: mongo, postgres, memory")
	fs.StringVar(&config.MongoURI, "mongo-uri", config.MongoURI, "mongodb uri")
	fs.StringVar(&config.MongoDatabase, "mongo-db", config.MongoDatabase, "mongodb database")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "postgres DSN")
	fs.StringVar(&config.JWTPrivateKey, "private-key", config.JWTPrivateKey, "base64 PEM RSA private key")
	fs.StringVar(&config.JWTPublicKey, "public-key", config.JWTPublicKey, "base64 PEM RSA public key")
	fs.IntVar(&config.AccessTokenExpiresIn, "t", config.AccessTokenExpiresIn, "access token expiry (in minutes)")
	fs.IntVar(&config.RefreshTokenExpiresIn, "r", config.RefreshTokenExpiresIn, "refresh token expiry (in minutes)")
	fs.BoolVar(&config.CookieSecure, "cookie-secure", config.CookieSecure, "mark session cookies Secure")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format: json, text, zap")

	return flagx.ParseKnown(fs, args)
}
