package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	reputationobserver "quinty/contexts/community-experience/reputation-observer"
	bountyengine "quinty/contexts/escrow-core/bounty-engine"
	disputeengine "quinty/contexts/escrow-core/dispute-engine"
	airdropengine "quinty/contexts/qualification/airdrop-engine"
	"quinty/internal/shared/contentref"

	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	_ "quinty/internal/platform/httpserver/docs"
)

// Options toggle the outer middleware surface; engines stay unaffected.
type Options struct {
	EnableSwagger   bool
	EnableRateLimit bool
}

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	options    Options
	limiter    *rate.Limiter
	bounty     bountyengine.Module
	dispute    disputeengine.Module
	airdrop    airdropengine.Module
	reputation reputationobserver.Module
	content    *contentref.Store
}

func New(
	bounty bountyengine.Module,
	dispute disputeengine.Module,
	airdrop airdropengine.Module,
	reputation reputationobserver.Module,
	logger *slog.Logger,
	addr string,
	options Options,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		options:    options,
		bounty:     bounty,
		dispute:    dispute,
		airdrop:    airdrop,
		reputation: reputation,
		content:    contentref.NewStore(),
	}
	if options.EnableRateLimit {
		s.limiter = rate.NewLimiter(rate.Limit(100), 200)
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.Handler())
}

// Handler wraps the mux with rate limiting and CORS.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	if s.limiter != nil {
		handler = s.rateLimitMiddleware(handler)
	}
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-Caller-Address"},
	}).Handler(handler)
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, errorBody{
				Code:    "rate_limited",
				Message: "too many requests",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerRoutes() {
	if s.options.EnableSwagger {
		s.mux.Handle("/swagger/", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	s.mux.HandleFunc("POST /v1/bounties", s.handleCreateBounty)
	s.mux.HandleFunc("GET /v1/bounties", s.handleListBounties)
	s.mux.HandleFunc("GET /v1/bounties/{bounty_id}", s.handleGetBounty)
	s.mux.HandleFunc("POST /v1/bounties/{bounty_id}/submissions", s.handleSubmitSolution)
	s.mux.HandleFunc("GET /v1/bounties/{bounty_id}/submissions", s.handleListSubmissions)
	s.mux.HandleFunc("POST /v1/bounties/{bounty_id}/replies", s.handleAddReply)
	s.mux.HandleFunc("POST /v1/bounties/{bounty_id}/select-winners", s.handleSelectWinners)
	s.mux.HandleFunc("POST /v1/bounties/{bounty_id}/reveal", s.handleRevealSolution)
	s.mux.HandleFunc("POST /v1/bounties/{bounty_id}/slash", s.handleTriggerSlash)

	s.mux.HandleFunc("POST /v1/disputes/pengadilan", s.handleInitiatePengadilan)
	s.mux.HandleFunc("GET /v1/disputes", s.handleListDisputes)
	s.mux.HandleFunc("GET /v1/disputes/treasury", s.handleTreasury)
	s.mux.HandleFunc("GET /v1/disputes/{dispute_id}", s.handleGetDispute)
	s.mux.HandleFunc("POST /v1/disputes/{dispute_id}/votes", s.handleVote)
	s.mux.HandleFunc("POST /v1/disputes/{dispute_id}/resolve", s.handleResolveDispute)

	s.mux.HandleFunc("POST /v1/airdrops", s.handleCreateAirdrop)
	s.mux.HandleFunc("GET /v1/airdrops", s.handleListAirdrops)
	s.mux.HandleFunc("GET /v1/airdrops/verifiers", s.handleListVerifiers)
	s.mux.HandleFunc("POST /v1/airdrops/verifiers", s.handleAddVerifier)
	s.mux.HandleFunc("DELETE /v1/airdrops/verifiers", s.handleRemoveVerifier)
	s.mux.HandleFunc("GET /v1/airdrops/{airdrop_id}", s.handleGetAirdrop)
	s.mux.HandleFunc("POST /v1/airdrops/{airdrop_id}/entries", s.handleSubmitEntry)
	s.mux.HandleFunc("GET /v1/airdrops/{airdrop_id}/entries", s.handleListEntries)
	s.mux.HandleFunc("POST /v1/airdrops/{airdrop_id}/verify", s.handleVerifyEntry)
	s.mux.HandleFunc("POST /v1/airdrops/{airdrop_id}/verify-batch", s.handleVerifyEntries)
	s.mux.HandleFunc("POST /v1/airdrops/{airdrop_id}/finalize", s.handleFinalizeAirdrop)
	s.mux.HandleFunc("POST /v1/airdrops/{airdrop_id}/cancel", s.handleCancelAirdrop)
	s.mux.HandleFunc("GET /v1/airdrops/{airdrop_id}/stats", s.handleAirdropStats)

	s.mux.HandleFunc("GET /v1/reputation/leaderboard", s.handleLeaderboard)
	s.mux.HandleFunc("GET /v1/reputation/profiles/{address}", s.handleGetProfile)

	s.mux.HandleFunc("POST /v1/content", s.handleStoreContent)
	s.mux.HandleFunc("GET /v1/content/{ref}", s.handleResolveContent)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// resolveCaller reads the caller address header. Mutating routes require it.
func resolveCaller(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Caller-Address"))
}

func parsePathID(r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(r.PathValue(name)), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
