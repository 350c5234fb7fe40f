// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Dr-Payne25/GVisit/auth"
)

// limiterIdle is how long a client must be quiet before its bucket is
// dropped. A bucket refills completely within a minute, so dropping it
// after that changes nothing for the client.
const limiterIdle = time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginLimiter throttles login attempts per client.
// Clients are keyed by a salted hash of their IP so raw addresses are not
// held in memory.
type LoginLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*clientLimiter
	perMinute   int
	salt        string
	trustProxy  bool
	lastCleanup time.Time
	now         func() time.Time
}

// NewLoginLimiter allows perMinute attempts per client. Forwarded client
// addresses are only believed when trustProxy is set.
func NewLoginLimiter(perMinute int, salt string, trustProxy bool) *LoginLimiter {
	return &LoginLimiter{
		limiters:    make(map[string]*clientLimiter),
		perMinute:   perMinute,
		salt:        salt,
		trustProxy:  trustProxy,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow reports whether the client behind r may attempt another login
func (l *LoginLimiter) Allow(r *http.Request) bool {
	now := l.now()
	return l.limiter(auth.HashIP(GetClientIP(r, l.trustProxy), l.salt), now).AllowN(now, 1)
}

func (l *LoginLimiter) limiter(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Drop idle clients every minute to bound memory
	if now.Sub(l.lastCleanup) > limiterIdle {
		for k, c := range l.limiters {
			if now.Sub(c.lastSeen) > limiterIdle {
				delete(l.limiters, k)
			}
		}
		l.lastCleanup = now
	}

	c, ok := l.limiters[key]
	if !ok {
		// perMinute attempts up front, refilled evenly over a minute
		c = &clientLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute),
		}
		l.limiters[key] = c
	}
	c.lastSeen = now
	return c.limiter
}
