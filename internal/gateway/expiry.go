package gateway

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var unverified = jwt.NewParser()

// expiryOf decodes the exp claim without checking the signature; the shop API owns
// verification. ok is false when the token carries no exp claim.
func expiryOf(token string) (exp time.Time, ok bool, err error) {
	claims := jwt.MapClaims{}
	if _, _, err := unverified.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false, err
	}
	date, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, err
	}
	if date == nil {
		return time.Time{}, false, nil
	}
	return date.Time, true, nil
}

// needsRefresh reports whether token is unusable at now. Undecodable tokens count as
// expired; tokens without exp never do.
func needsRefresh(token string, now time.Time) bool {
	exp, ok, err := expiryOf(token)
	if err != nil {
		return true
	}
	if !ok {
		return false
	}
	return !now.Before(exp)
}
