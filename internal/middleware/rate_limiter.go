package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/badkluster/taller-backend-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
)

// In-memory per-IP fixed-window limiter. The API runs as a single instance
// per taller, so no shared store is needed; entries are purged in the
// background to keep the map from growing with one-off IPs.

type ventana struct {
	count int
	fin   time.Time
	mu    sync.Mutex
}

type ipLimiter struct {
	mu       sync.Mutex
	ventanas map[string]*ventana
	limite   int
	duracion time.Duration
	mensaje  string
}

var (
	limitersMu sync.Mutex
	limiters   []*ipLimiter
)

func newIPLimiter(limite int, duracion time.Duration, mensaje string) *ipLimiter {
	l := &ipLimiter{
		ventanas: make(map[string]*ventana),
		limite:   limite,
		duracion: duracion,
		mensaje:  mensaje,
	}
	limitersMu.Lock()
	limiters = append(limiters, l)
	limitersMu.Unlock()
	return l
}

func (l *ipLimiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		l.mu.Lock()
		v, ok := l.ventanas[ip]
		if !ok {
			v = &ventana{}
			l.ventanas[ip] = v
		}
		l.mu.Unlock()

		v.mu.Lock()
		defer v.mu.Unlock()

		ahora := time.Now()
		if ahora.After(v.fin) {
			v.count = 0
			v.fin = ahora.Add(l.duracion)
		}

		v.count++
		if v.count > l.limite {
			c.Header("Retry-After", v.fin.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.mensaje))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter caps login attempts at 10 per minute per IP to slow down
// password guessing against the single operator account.
func LoginRateLimiter() gin.HandlerFunc {
	return newIPLimiter(10, time.Minute, "Demasiados intentos de login. Intente en 1 minuto.").handler()
}

// RateLimiter caps arbitrary routes at limit requests per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newIPLimiter(limit, window, "Demasiadas solicitudes. Intente nuevamente en un momento.").handler()
}

const purgeInterval = 5 * time.Minute

func init() {
	go purgeExpiredWindows()
}

func purgeExpiredWindows() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		ahora := time.Now()

		limitersMu.Lock()
		registrados := append([]*ipLimiter(nil), limiters...)
		limitersMu.Unlock()

		for _, l := range registrados {
			l.mu.Lock()
			for ip, v := range l.ventanas {
				v.mu.Lock()
				if ahora.After(v.fin) {
					delete(l.ventanas, ip)
				}
				v.mu.Unlock()
			}
			l.mu.Unlock()
		}
	}
}
