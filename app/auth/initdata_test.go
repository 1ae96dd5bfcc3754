package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"
)

const testBotToken = "1234567890:TEST-TOKEN"

// signInitData builds a signed payload the way Telegram does on its side.
func signInitData(t *testing.T, botToken string, params map[string]string) string {
	t.Helper()

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))
	hash := hex.EncodeToString(mac.Sum(nil))

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set("hash", hash)
	return values.Encode()
}

func TestVerify_ValidSignature(t *testing.T) {
	initData := signInitData(t, testBotToken, map[string]string{
		"auth_date": fmt.Sprintf("%d", time.Now().Unix()),
		"user":      `{"id":42,"username":"alice","first_name":"Alice","last_name":"A"}`,
		"query_id":  "AAEtest",
	})

	user, err := Verify(initData, testBotToken)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.ID != 42 {
		t.Errorf("Expected user id 42, got %d", user.ID)
	}
	if user.Username != "alice" {
		t.Errorf("Expected username alice, got %q", user.Username)
	}
	if user.FirstName != "Alice" {
		t.Errorf("Expected first name Alice, got %q", user.FirstName)
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	initData := signInitData(t, testBotToken, map[string]string{
		"auth_date": fmt.Sprintf("%d", time.Now().Unix()),
		"user":      `{"id":42}`,
	})

	tampered := strings.Replace(initData, "42", "43", 1)
	if _, err := Verify(tampered, testBotToken); !errors.Is(err, ErrInvalidInitData) {
		t.Errorf("Expected ErrInvalidInitData, got %v", err)
	}
}

func TestVerify_WrongBotToken(t *testing.T) {
	initData := signInitData(t, "other:TOKEN", map[string]string{
		"auth_date": fmt.Sprintf("%d", time.Now().Unix()),
		"user":      `{"id":42}`,
	})

	if _, err := Verify(initData, testBotToken); !errors.Is(err, ErrInvalidInitData) {
		t.Errorf("Expected ErrInvalidInitData, got %v", err)
	}
}

func TestVerify_MissingHash(t *testing.T) {
	if _, err := Verify("auth_date=1&user=%7B%22id%22%3A42%7D", testBotToken); !errors.Is(err, ErrInvalidInitData) {
		t.Errorf("Expected ErrInvalidInitData, got %v", err)
	}
}

func TestVerify_ExpiredAuthDate(t *testing.T) {
	initData := signInitData(t, testBotToken, map[string]string{
		"auth_date": fmt.Sprintf("%d", time.Now().Add(-25*time.Hour).Unix()),
		"user":      `{"id":42}`,
	})

	if _, err := Verify(initData, testBotToken); !errors.Is(err, ErrExpiredInitData) {
		t.Errorf("Expected ErrExpiredInitData, got %v", err)
	}
}

func TestVerify_MissingUser(t *testing.T) {
	initData := signInitData(t, testBotToken, map[string]string{
		"auth_date": fmt.Sprintf("%d", time.Now().Unix()),
	})

	if _, err := Verify(initData, testBotToken); err == nil {
		t.Error("Expected an error for a payload without a user object")
	}
}

func TestParseUser_Defensive(t *testing.T) {
	// Malformed display fields are dropped, the id still comes through.
	user, err := parseUser(`{"id":7,"username":123,"first_name":null}`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.ID != 7 {
		t.Errorf("Expected id 7, got %d", user.ID)
	}
	if user.Username != "" {
		t.Errorf("Expected empty username, got %q", user.Username)
	}

	if _, err := parseUser(`{"username":"bob"}`); err == nil {
		t.Error("Expected an error when id is missing")
	}
	if _, err := parseUser(`{"id":0}`); err == nil {
		t.Error("Expected an error when id is zero")
	}
}
