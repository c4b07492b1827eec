package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Keys is the RSA pair used for RS256. It is immutable once loaded.
type Keys struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// ParseKeys decodes base64-encoded PEM private and public keys.
func ParseKeys(privateB64, publicB64 string) (*Keys, error) {
	privPEM, err := base64.StdEncoding.DecodeString(privateB64)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	pubPEM, err := base64.StdEncoding.DecodeString(publicB64)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}

	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	if !priv.PublicKey.Equal(pub) {
		return nil, fmt.Errorf("public key does not match private key")
	}

	return &Keys{Private: priv, Public: pub}, nil
}

// GenerateKeys creates a fresh pair. Tokens signed with it do not survive
// a restart.
func GenerateKeys(bits int) (*Keys, error) {
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, err
	}
	return &Keys{Private: priv, Public: &priv.PublicKey}, nil
}

// Encode returns the pair as base64 PEM, the format ParseKeys accepts.
func (k *Keys) Encode() (privateB64, publicB64 string, err error) {
	pubDER, err := x509.MarshalPKIXPublicKey(k.Public)
	if err != nil {
		return "", "", err
	}

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(k.Private)})
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	return base64.StdEncoding.EncodeToString(privPEM), base64.StdEncoding.EncodeToString(pubPEM), nil
}
