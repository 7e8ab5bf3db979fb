package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"scrumboard/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("geheim123!")
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if hash == "geheim123!" {
		t.Fatal("das Passwort darf nicht im Klartext gespeichert werden")
	}
	if !CheckPasswordHash("geheim123!", hash) {
		t.Error("korrektes Passwort wurde abgelehnt")
	}
	if CheckPasswordHash("falsch", hash) {
		t.Error("falsches Passwort wurde akzeptiert")
	}
}

func TestGenerateTokenCarriesClaims(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	user := &models.User{ID: uuid.New(), IsAdmin: true}
	signed, err := GenerateToken(user, privateKey, 15*time.Minute)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (any, error) {
		return &privateKey.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		t.Fatalf("Token konnte nicht geparst werden: %v", err)
	}
	if !token.Valid {
		t.Fatal("Token ist nicht gültig")
	}
	if claims.UserID != user.ID.String() {
		t.Errorf("erwartet user_id %s, bekommen %s", user.ID, claims.UserID)
	}
	if !claims.IsAdmin {
		t.Error("is_admin Claim fehlt")
	}
	if claims.Issuer != "scrumboard-service" {
		t.Errorf("unerwarteter Issuer %q", claims.Issuer)
	}
}

func TestGenerateTokenRejectsNilInput(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if _, err := GenerateToken(nil, privateKey, time.Minute); err == nil {
		t.Error("erwartet Fehler bei nil-Benutzer")
	}
	if _, err := GenerateToken(&models.User{ID: uuid.New()}, nil, time.Minute); err == nil {
		t.Error("erwartet Fehler bei nil-Schlüssel")
	}
}

func TestValidateOTPCode(t *testing.T) {
	key, err := GenerateOTPSecret("Scrumboard", "dev@example.com")
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	code, err := totp.GenerateCode(key.Secret(), time.Now().UTC())
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	valid, err := ValidateOTPCode(key.Secret(), code)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if !valid {
		t.Error("gültiger Code wurde abgelehnt")
	}

	valid, err = ValidateOTPCode(key.Secret(), "000000")
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if valid {
		t.Error("ungültiger Code wurde akzeptiert")
	}
}

func TestValidateOTPCodeRejectsBadSecret(t *testing.T) {
	if _, err := ValidateOTPCode("kein base32 @@@", "123456"); err == nil {
		t.Error("erwartet Fehler bei kaputtem Secret")
	}
}
