package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	JWTAccessTokenTTL  time.Duration
	JWTRefreshTokenTTL time.Duration
	JWTGraceTokenTTL   time.Duration
	OTPIssuerName      string

	// Vault ist optional: ohne VAULT_ADDR kommen Schlüssel und DSN
	// direkt aus der Umgebung.
	VaultAddr            string
	VaultAppRoleRoleID   string
	VaultAppRoleSecretID string
	VaultJWTSecretPath   string
	VaultDBCredsPath     string

	// Fallback ohne Vault
	JWTPrivateKeyFile string
	JWTPublicKeyFile  string
	DatabaseDSN       string

	// IPs, die die internen Wartungs-Endpunkte erreichen dürfen
	InternalIPs []string
}

func LoadConfig() (*Config, error) {
	var cfg Config
	var err error

	cfg.Port = os.Getenv("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("ungültiger PORT: %w", err)
	}

	ttlAccessStr := os.Getenv("JWT_ACCESS_TOKEN_TTL")
	if ttlAccessStr == "" {
		ttlAccessStr = "1h"
	}
	cfg.JWTAccessTokenTTL, err = time.ParseDuration(ttlAccessStr)
	if err != nil {
		return nil, fmt.Errorf("ungültige JWT_ACCESS_TOKEN_TTL: %w", err)
	}

	ttlRefreshStr := os.Getenv("JWT_REFRESH_TOKEN_TTL")
	if ttlRefreshStr == "" {
		ttlRefreshStr = "168h"
	}
	cfg.JWTRefreshTokenTTL, err = time.ParseDuration(ttlRefreshStr)
	if err != nil {
		return nil, fmt.Errorf("ungültige JWT_REFRESH_TOKEN_TTL: %w", err)
	}

	ttlGraceStr := os.Getenv("JWT_GRACE_TOKEN_TTL")
	if ttlGraceStr == "" {
		ttlGraceStr = "5m"
	}
	cfg.JWTGraceTokenTTL, err = time.ParseDuration(ttlGraceStr)
	if err != nil {
		return nil, fmt.Errorf("ungültige JWT_GRACE_TOKEN_TTL: %w", err)
	}

	cfg.OTPIssuerName = os.Getenv("OTP_ISSUER_NAME")
	if cfg.OTPIssuerName == "" {
		cfg.OTPIssuerName = "Scrumboard"
	}

	internalIPsStr := os.Getenv("INTERNAL_IPS")
	if internalIPsStr == "" {
		cfg.InternalIPs = []string{"127.0.0.1", "::1"}
	} else {
		cfg.InternalIPs = strings.Split(internalIPsStr, ",")
	}

	cfg.VaultAddr = os.Getenv("VAULT_ADDR")
	if cfg.VaultAddr != "" {
		cfg.VaultAppRoleRoleID = os.Getenv("SCRUMBOARD_APPROLE_ROLE_ID")
		cfg.VaultAppRoleSecretID = os.Getenv("SCRUMBOARD_APPROLE_SECRET_ID")
		cfg.VaultJWTSecretPath = os.Getenv("VAULT_JWT_SECRET_PATH")
		cfg.VaultDBCredsPath = os.Getenv("VAULT_DB_CREDS_PATH")

		if cfg.VaultAppRoleRoleID == "" {
			return nil, fmt.Errorf("konfiguration fehlt: SCRUMBOARD_APPROLE_ROLE_ID muss gesetzt sein")
		}
		if cfg.VaultAppRoleSecretID == "" {
			return nil, fmt.Errorf("konfiguration fehlt: SCRUMBOARD_APPROLE_SECRET_ID muss gesetzt sein")
		}
		if cfg.VaultJWTSecretPath == "" {
			return nil, fmt.Errorf("konfiguration fehlt: VAULT_JWT_SECRET_PATH muss gesetzt sein")
		}
		if cfg.VaultDBCredsPath == "" {
			return nil, fmt.Errorf("konfiguration fehlt: VAULT_DB_CREDS_PATH muss gesetzt sein")
		}
		return &cfg, nil
	}

	cfg.JWTPrivateKeyFile = os.Getenv("JWT_PRIVATE_KEY_FILE")
	cfg.JWTPublicKeyFile = os.Getenv("JWT_PUBLIC_KEY_FILE")
	if cfg.JWTPrivateKeyFile == "" || cfg.JWTPublicKeyFile == "" {
		return nil, fmt.Errorf("konfiguration fehlt: ohne VAULT_ADDR müssen JWT_PRIVATE_KEY_FILE und JWT_PUBLIC_KEY_FILE gesetzt sein")
	}

	cfg.DatabaseDSN = os.Getenv("DATABASE_DSN")
	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("konfiguration fehlt: ohne VAULT_ADDR muss DATABASE_DSN gesetzt sein")
	}

	return &cfg, nil
}
