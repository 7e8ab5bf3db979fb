package auth

import (
	"crypto/rsa"
	"fmt"
	"log/slog"
	"os"

	"scrumboard/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/vault/api"
)

type Secrets struct {
	PrivateKey  *rsa.PrivateKey
	PublicKey   *rsa.PublicKey
	DatabaseDSN string
}

// LoadSecrets holt Schlüssel und DB-Zugang aus Vault, wenn VAULT_ADDR
// gesetzt ist, sonst aus PEM-Dateien und DATABASE_DSN.
func LoadSecrets(cfg *config.Config) (*Secrets, error) {
	if cfg.VaultAddr != "" {
		return loadSecretsFromVault(cfg)
	}
	return loadSecretsFromFiles(cfg)
}

func loadSecretsFromFiles(cfg *config.Config) (*Secrets, error) {
	privateKeyPEM, err := os.ReadFile(cfg.JWTPrivateKeyFile)
	if err != nil {
		return nil, fmt.Errorf("fehler beim Lesen des privaten Schlüssels: %w", err)
	}
	publicKeyPEM, err := os.ReadFile(cfg.JWTPublicKeyFile)
	if err != nil {
		return nil, fmt.Errorf("fehler beim Lesen des öffentlichen Schlüssels: %w", err)
	}

	secrets := &Secrets{DatabaseDSN: cfg.DatabaseDSN}
	secrets.PrivateKey, err = jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("fehler beim Parsen des privaten Schlüssels: %w", err)
	}
	secrets.PublicKey, err = jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("fehler beim Parsen des öffentlichen Schlüssels: %w", err)
	}

	slog.Info("JWT-Schlüssel aus PEM-Dateien geladen.")
	return secrets, nil
}

func createVaultClient(cfg *config.Config) (*api.Client, error) {
	vaultConfig := api.DefaultConfig()
	vaultConfig.Address = cfg.VaultAddr
	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("fehler beim Erstellen des Vault-Clients: %w", err)
	}

	slog.Info("Führe Vault AppRole-Login aus...")
	appRoleData := map[string]any{
		"role_id":   cfg.VaultAppRoleRoleID,
		"secret_id": cfg.VaultAppRoleSecretID,
	}

	resp, err := client.Logical().Write("auth/approle/login", appRoleData)
	if err != nil {
		return nil, fmt.Errorf("fehler beim Vault AppRole-Login: %w", err)
	}
	if resp == nil || resp.Auth == nil {
		return nil, fmt.Errorf("vault AppRole-Login gab keine Authentifizierungsdaten zurück")
	}

	client.SetToken(resp.Auth.ClientToken)
	slog.Info("Vault AppRole-Login erfolgreich. Kurzlebiger Token gesetzt.")
	return client, nil
}

// readKV2SecretData liest Daten aus der KV v2 Engine; bei KV v2 sind die
// Nutzdaten in einem "data"-Feld verschachtelt.
func readKV2SecretData(client *api.Client, path string) (map[string]any, error) {
	secret, err := client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("fehler beim Lesen des Secrets von Vault %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("keine daten gefunden unter Vault-Pfad: %s", path)
	}

	secretData, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return secret.Data, nil
	}
	return secretData, nil
}

func loadSecretsFromVault(cfg *config.Config) (*Secrets, error) {
	slog.Debug("Erstelle Vault-Client...", slog.String("address", cfg.VaultAddr))
	client, err := createVaultClient(cfg)
	if err != nil {
		return nil, err
	}

	secrets := &Secrets{}

	slog.Debug("Lese JWT-Schlüssel aus Vault", slog.String("path", cfg.VaultJWTSecretPath))
	jwtSecretData, err := readKV2SecretData(client, cfg.VaultJWTSecretPath)
	if err != nil {
		slog.Error("Fehler beim Lesen der JWT-Daten", slog.Any("error", err))
		return nil, err
	}

	privateKeyPEM, _ := jwtSecretData["private_key"].(string)
	publicKeyPEM, _ := jwtSecretData["public_key"].(string)
	if privateKeyPEM == "" || publicKeyPEM == "" {
		return nil, fmt.Errorf("private_key oder public_key fehlen im Vault Secret")
	}

	secrets.PrivateKey, err = jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("fehler beim Parsen des privaten Schlüssels: %w", err)
	}
	secrets.PublicKey, err = jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("fehler beim Parsen des öffentlichen Schlüssels: %w", err)
	}
	slog.Info("JWT-Schlüssel erfolgreich geladen.")

	slog.Debug("Lese dynamische DB-Credentials aus Vault", slog.String("path", cfg.VaultDBCredsPath))
	dbSecret, err := client.Logical().Read(cfg.VaultDBCredsPath)
	if err != nil {
		return nil, fmt.Errorf("fehler beim Lesen der DB-Credentials: %w", err)
	}
	if dbSecret == nil || dbSecret.Data == nil {
		return nil, fmt.Errorf("keine Credentials von Vault unter %s erhalten", cfg.VaultDBCredsPath)
	}

	username, ok1 := dbSecret.Data["username"].(string)
	password, ok2 := dbSecret.Data["password"].(string)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("vault antwort enthielt keine username/password felder")
	}

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "db"
	}
	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "3306"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "scrumboard"
	}

	secrets.DatabaseDSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", username, password, dbHost, dbPort, dbName)
	slog.Info("Dynamische DB-Credentials geladen und DSN generiert", slog.String("db_user", username))

	return secrets, nil
}
