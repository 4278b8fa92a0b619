package utils

import (
	"sync"
	"time"
)

const blacklistKeyPrefix = "jwt:blacklist:"

// revokedTokens is the in-process fallback when Redis is down. Entries map
// token to its natural expiry; anything past expiry is garbage.
var (
	revokedTokens   = map[string]time.Time{}
	revokedTokensMu sync.Mutex
)

// BlacklistToken revokes a session token until its natural expiry, so logout
// takes effect before the JWT would otherwise lapse.
func BlacklistToken(token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}

	if rc := GetRedis(); rc != nil {
		ctx, cancel := cacheCtx()
		defer cancel()
		if rc.Set(ctx, blacklistKeyPrefix+token, "1", ttl).Err() == nil {
			return
		}
	}

	revokedTokensMu.Lock()
	sweepRevokedLocked()
	revokedTokens[token] = expiresAt
	revokedTokensMu.Unlock()
}

// IsTokenBlacklisted reports whether the token was revoked by a logout.
// Redis errors fail open: an unreachable Redis must not lock every reviewer
// out of the dashboard.
func IsTokenBlacklisted(token string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := cacheCtx()
		defer cancel()
		if n, err := rc.Exists(ctx, blacklistKeyPrefix+token).Result(); err == nil {
			return n > 0
		}
	}

	revokedTokensMu.Lock()
	defer revokedTokensMu.Unlock()
	exp, ok := revokedTokens[token]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(revokedTokens, token)
		return false
	}
	return true
}

func sweepRevokedLocked() {
	now := time.Now()
	for tok, exp := range revokedTokens {
		if now.After(exp) {
			delete(revokedTokens, tok)
		}
	}
}
