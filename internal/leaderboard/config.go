// Package leaderboard mantiene el leaderboard unificado de todas las plataformas:
// fan-out a los adapters, merge, cache en memoria con stale-while-revalidate.
package leaderboard

import "time"

// Config controla los tiempos y tamaños del leaderboard.
type Config struct {
	TTL            time.Duration // ventana en la que el snapshot se sirve como fresco
	StaleAfter     time.Duration // edad máxima para servir stale mientras se refresca
	SourceTimeout  time.Duration // timeout por plataforma
	RefreshTimeout time.Duration // timeout del refresh completo (desacoplado del request)
	LockTTL        time.Duration // TTL del lock distribuido
	PerSourceLimit int
	PageSize       int
	MaxPageSize    int
	Concurrency    int // fuentes consultadas a la vez (0 = todas)
}

// DefaultConfig devuelve los valores por defecto.
func DefaultConfig() Config {
	return Config{
		TTL:            5 * time.Minute,
		StaleAfter:     time.Hour,
		SourceTimeout:  8 * time.Second,
		RefreshTimeout: 30 * time.Second,
		LockTTL:        time.Minute,
		PerSourceLimit: 100,
		PageSize:       25,
		MaxPageSize:    100,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TTL <= 0 {
		c.TTL = d.TTL
	}
	if c.StaleAfter < c.TTL {
		c.StaleAfter = c.TTL
	}
	if c.SourceTimeout <= 0 {
		c.SourceTimeout = d.SourceTimeout
	}
	if c.RefreshTimeout <= 0 {
		c.RefreshTimeout = d.RefreshTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = d.LockTTL
	}
	if c.PerSourceLimit <= 0 {
		c.PerSourceLimit = d.PerSourceLimit
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = d.MaxPageSize
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.PageSize > c.MaxPageSize {
		c.PageSize = c.MaxPageSize
	}
	return c
}
