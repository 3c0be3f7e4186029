package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/alejandrodnm/truthbounty/internal/leaderboard"
	"github.com/alejandrodnm/truthbounty/internal/simulation"
)

const (
	defaultPlatformLimit = 50
	maxPlatformLimit     = 200
	healthTimeout        = 3 * time.Second
)

func (s *Server) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	checks := gin.H{}
	healthy := true
	for _, h := range s.deps.Health {
		if err := h.Ping(ctx); err != nil {
			checks[h.Name] = err.Error()
			healthy = false
			continue
		}
		checks[h.Name] = "ok"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}

func (s *Server) getLeaderboard(c *gin.Context) {
	q := leaderboard.Query{
		Search: c.Query("search"),
		Sort:   strings.ToLower(c.Query("sort")),
	}

	var err error
	if q.Page, err = intParam(c, "page"); err != nil {
		respondError(c, err)
		return
	}
	if q.Limit, err = intParam(c, "limit"); err != nil {
		respondError(c, err)
		return
	}
	if raw := c.Query("platform"); raw != "" && raw != "all" {
		p, err := domain.ParsePlatform(raw)
		if err != nil {
			respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
			return
		}
		q.Platform = p
	}

	page, err := s.deps.Leaderboard.Get(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": page})
}

func (s *Server) getTruthScore(c *gin.Context) {
	res, err := s.deps.TruthScore.Get(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (s *Server) listBets(c *gin.Context) {
	var f domain.BetFilter

	if raw := c.Query("platform"); raw != "" {
		p, err := domain.ParsePlatform(raw)
		if err != nil {
			respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
			return
		}
		f.Platform = p
	}
	if raw := c.Query("status"); raw != "" {
		st, ok := domain.ParseBetStatus(strings.ToLower(raw))
		if !ok {
			respondError(c, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, raw))
			return
		}
		f.Status = st
	}
	if raw := strings.TrimSpace(c.Query("user")); raw != "" {
		f.User = raw
		if strings.HasPrefix(strings.ToLower(raw), "0x") {
			addr, err := domain.NormalizeAddress(raw)
			if err != nil {
				respondError(c, err)
				return
			}
			f.User = addr
		}
	}
	limit, err := intParam(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}
	f.Limit = limit

	bets, err := s.deps.Bets.ListBets(c.Request.Context(), f)
	if errors.Is(err, domain.ErrTableMissing) {
		bets, err = []domain.Bet{}, nil
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if bets == nil {
		bets = []domain.Bet{}
	}
	c.JSON(http.StatusOK, gin.H{"data": bets})
}

// platformData es la respuesta de GET /api/:platform.
type platformData struct {
	Platform    domain.Platform           `json:"platform"`
	Markets     []domain.MarketData       `json:"markets"`
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
	Errors      map[string]string         `json:"errors,omitempty"`
}

// getPlatform consulta mercados y leaderboard en paralelo. Si una mitad falla
// se devuelve la otra con 200.
func (s *Server) getPlatform(c *gin.Context) {
	p, err := domain.ParsePlatform(c.Param("platform"))
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := s.deps.Platforms.Get(p); err != nil {
		respondError(c, err)
		return
	}
	limit, err := intParam(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}
	if limit <= 0 {
		limit = defaultPlatformLimit
	}
	limit = min(limit, maxPlatformLimit)

	data := platformData{
		Platform:    p,
		Markets:     []domain.MarketData{},
		Leaderboard: []domain.LeaderboardEntry{},
	}
	var marketsErr, lbErr error

	ctx := c.Request.Context()
	var g errgroup.Group
	g.Go(func() error {
		mp, err := s.deps.Platforms.Markets(p)
		if err != nil {
			marketsErr = err
			return nil
		}
		markets, err := mp.FetchMarkets(ctx, limit)
		if err != nil {
			marketsErr = err
			return nil
		}
		if markets != nil {
			data.Markets = markets
		}
		return nil
	})
	g.Go(func() error {
		lp, err := s.deps.Platforms.Leaderboard(p)
		if err != nil {
			lbErr = err
			return nil
		}
		entries, err := lp.FetchLeaderboard(ctx, limit)
		if err != nil {
			lbErr = err
			return nil
		}
		if entries != nil {
			data.Leaderboard = entries
		}
		return nil
	})
	g.Wait()

	if marketsErr != nil && lbErr != nil {
		if errors.Is(marketsErr, domain.ErrNotSupported) && errors.Is(lbErr, domain.ErrNotSupported) {
			respondError(c, marketsErr)
			return
		}
		respondError(c, fmt.Errorf("%w: %s: %v", domain.ErrUpstream, p, errors.Join(marketsErr, lbErr)))
		return
	}

	failed := func(err error) bool { return err != nil && !errors.Is(err, domain.ErrNotSupported) }
	if failed(marketsErr) || failed(lbErr) {
		data.Errors = map[string]string{}
		if failed(marketsErr) {
			data.Errors["markets"] = marketsErr.Error()
		}
		if failed(lbErr) {
			data.Errors["leaderboard"] = lbErr.Error()
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// simulateRequest es el body de POST /api/:platform/simulate.
type simulateRequest struct {
	User     string  `json:"user" binding:"required"`
	MarketID string  `json:"marketId" binding:"required"`
	Outcome  *int    `json:"outcome" binding:"required,min=0"`
	Amount   float64 `json:"amount" binding:"required,gt=0,lte=10000"`
	Price    float64 `json:"price" binding:"omitempty,gt=0,lt=1"`
}

func (s *Server) simulate(c *gin.Context) {
	p, err := domain.ParsePlatform(c.Param("platform"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	bet, err := s.deps.Simulator.Place(c.Request.Context(), simulation.Request{
		Platform: p,
		User:     req.User,
		MarketID: req.MarketID,
		Outcome:  *req.Outcome,
		Amount:   req.Amount,
		Price:    req.Price,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": bet})
}

func (s *Server) resolve(c *gin.Context) {
	p, err := domain.ParsePlatform(c.Param("platform"))
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := s.deps.Resolver.RunByPlatform(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

// intParam lee un query param entero opcional (0 si falta).
func intParam(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, name)
	}
	return n, nil
}
