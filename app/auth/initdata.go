// Package auth verifies the signed init data a Telegram Mini App sends
// with every request. A payload that fails verification is rejected
// outright; there is no partial trust and no fallback identity.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidInitData = errors.New("invalid init data signature")
	ErrExpiredInitData = errors.New("init data is too old")
)

const maxInitDataAge = 24 * time.Hour

type TelegramUser struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Verify recomputes the HMAC over the payload's parameters (alphabetically
// sorted, excluding the hash itself) with a key derived from the bot token
// and compares it in constant time against the supplied signature. On
// success the embedded user object is parsed and returned.
func Verify(initData, botToken string) (*TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse init data: %w", err)
	}

	supplied := values.Get("hash")
	if supplied == "" {
		return nil, ErrInvalidInitData
	}
	values.Del("hash")

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	dataCheckString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(dataCheckString))
	computed := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(computed), []byte(supplied)) {
		return nil, ErrInvalidInitData
	}

	if authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64); err == nil {
		if time.Since(time.Unix(authDate, 0)) > maxInitDataAge {
			return nil, ErrExpiredInitData
		}
	}

	user, err := parseUser(values.Get("user"))
	if err != nil {
		return nil, err
	}

	return user, nil
}

// parseUser reads the embedded user JSON defensively: a malformed display
// field is dropped rather than failing the whole payload, only the numeric
// id is mandatory.
func parseUser(raw string) (*TelegramUser, error) {
	if raw == "" {
		return nil, fmt.Errorf("init data carries no user object")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse user object: %w", err)
	}

	var user TelegramUser
	if err := json.Unmarshal(fields["id"], &user.ID); err != nil || user.ID == 0 {
		return nil, fmt.Errorf("user object carries no usable id")
	}

	// Best effort for display fields.
	json.Unmarshal(fields["username"], &user.Username)
	json.Unmarshal(fields["first_name"], &user.FirstName)
	json.Unmarshal(fields["last_name"], &user.LastName)

	return &user, nil
}
