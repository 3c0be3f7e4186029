package platforms

import (
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/truthbounty/internal/adapters/httpx"
	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/alejandrodnm/truthbounty/internal/ports"
)

// Settings es la configuración de una plataforma.
type Settings struct {
	Enabled    bool
	BaseURL    string // REST base o endpoint del subgraph
	DataURL    string // solo Polymarket: data-api del leaderboard
	RatePerSec float64
	Burst      int
}

// Registry resuelve el adapter de cada plataforma y qué capacidades tiene.
type Registry struct {
	adapters map[domain.Platform]ports.PlatformAdapter
	order    []domain.Platform
}

// NewRegistry construye los adapters de las plataformas habilitadas.
// Una plataforma ausente del mapa se habilita con los valores por defecto.
func NewRegistry(settings map[domain.Platform]Settings, recorder httpx.Recorder) *Registry {
	var adapters []ports.PlatformAdapter
	for _, p := range domain.AllPlatforms() {
		s, ok := settings[p]
		if !ok {
			s = Settings{Enabled: true}
		}
		if !s.Enabled {
			slog.Info("platform disabled", "platform", p)
			continue
		}

		opts := []httpx.Option{httpx.WithRateLimit(s.RatePerSec, s.Burst)}
		if recorder != nil {
			opts = append(opts, httpx.WithRecorder(recorder))
		}
		client := httpx.New(string(p), opts...)

		if a := newAdapter(p, client, s); a != nil {
			adapters = append(adapters, a)
		}
	}
	return NewStaticRegistry(adapters...)
}

// NewStaticRegistry crea un registry con adapters ya construidos (tests, wiring manual).
func NewStaticRegistry(adapters ...ports.PlatformAdapter) *Registry {
	r := &Registry{adapters: make(map[domain.Platform]ports.PlatformAdapter, len(adapters))}
	for _, a := range adapters {
		p := a.Platform()
		if _, dup := r.adapters[p]; !dup {
			r.order = append(r.order, p)
		}
		r.adapters[p] = a
	}
	return r
}

func newAdapter(p domain.Platform, client *httpx.Client, s Settings) ports.PlatformAdapter {
	switch p {
	case domain.PlatformPolymarket:
		return NewPolymarket(client, s.BaseURL, s.DataURL)
	case domain.PlatformManifold:
		return NewManifold(client, s.BaseURL)
	case domain.PlatformMetaculus:
		return NewMetaculus(client, s.BaseURL)
	case domain.PlatformSXBet:
		return NewSXBet(client, s.BaseURL)
	case domain.PlatformAzuro:
		return NewAzuro(client, s.BaseURL)
	case domain.PlatformOvertime:
		return NewOvertime(client, s.BaseURL)
	case domain.PlatformOmen:
		return NewOmen(client, s.BaseURL)
	case domain.PlatformPancakeSwap:
		return NewPancakeSwap(client, s.BaseURL)
	case domain.PlatformLimitless:
		return NewLimitless(client, s.BaseURL)
	}
	// Kalshi, Drift y Speed Markets no tienen API pública utilizable.
	return nil
}

// Enabled devuelve las plataformas con adapter, en orden estable.
func (r *Registry) Enabled() []domain.Platform {
	out := make([]domain.Platform, len(r.order))
	copy(out, r.order)
	return out
}

// Get devuelve el adapter de la plataforma.
func (r *Registry) Get(p domain.Platform) (ports.PlatformAdapter, error) {
	a, ok := r.adapters[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no adapter", domain.ErrNotSupported, p)
	}
	return a, nil
}

// Leaderboards devuelve los adapters que exponen leaderboard.
func (r *Registry) Leaderboards() []ports.LeaderboardProvider {
	var out []ports.LeaderboardProvider
	for _, p := range r.order {
		if lp, ok := r.adapters[p].(ports.LeaderboardProvider); ok {
			out = append(out, lp)
		}
	}
	return out
}

// Leaderboard devuelve el provider de leaderboard de la plataforma.
func (r *Registry) Leaderboard(p domain.Platform) (ports.LeaderboardProvider, error) {
	a, err := r.Get(p)
	if err != nil {
		return nil, err
	}
	lp, ok := a.(ports.LeaderboardProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no leaderboard", domain.ErrNotSupported, p)
	}
	return lp, nil
}

// Markets devuelve el provider de mercados de la plataforma.
func (r *Registry) Markets(p domain.Platform) (ports.MarketProvider, error) {
	a, err := r.Get(p)
	if err != nil {
		return nil, err
	}
	mp, ok := a.(ports.MarketProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no markets", domain.ErrNotSupported, p)
	}
	return mp, nil
}

// Resolver devuelve el resolver de la plataforma.
func (r *Registry) Resolver(p domain.Platform) (ports.Resolver, error) {
	a, err := r.Get(p)
	if err != nil {
		return nil, err
	}
	rv, ok := a.(ports.Resolver)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no resolver", domain.ErrNotSupported, p)
	}
	return rv, nil
}

// Resolvers devuelve los adapters capaces de resolver mercados.
func (r *Registry) Resolvers() []ports.Resolver {
	var out []ports.Resolver
	for _, p := range r.order {
		if rv, ok := r.adapters[p].(ports.Resolver); ok {
			out = append(out, rv)
		}
	}
	return out
}
