package server

import (
	"kvk-ranker/internal/config"
	"kvk-ranker/internal/middleware"
	"kvk-ranker/internal/repository"
	"kvk-ranker/internal/service"
	"kvk-ranker/internal/session"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

type KVKServer struct {
	sessions   *session.Manager
	kingdomSvc *service.KingdomService
	rankingSvc *service.RankingService
	reportSvc  *service.ReportService
	prefs      *repository.PreferenceRepository
	cfg        *config.Config
	logger     zerolog.Logger
}

func NewKVKServer(
	sessions *session.Manager,
	kingdomSvc *service.KingdomService,
	rankingSvc *service.RankingService,
	reportSvc *service.ReportService,
	prefs *repository.PreferenceRepository,
	cfg *config.Config,
	logger zerolog.Logger,
) *KVKServer {
	return &KVKServer{
		sessions:   sessions,
		kingdomSvc: kingdomSvc,
		rankingSvc: rankingSvc,
		reportSvc:  reportSvc,
		prefs:      prefs,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *KVKServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{sid}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{sid}", s.handleDeleteSession)
	mux.HandleFunc("PUT /api/sessions/{sid}/weights", s.handleSetWeights)
	mux.HandleFunc("PUT /api/sessions/{sid}/locale", s.handleSetLocale)
	mux.HandleFunc("POST /api/sessions/{sid}/kingdoms", s.handleAddKingdom)
	mux.HandleFunc("PATCH /api/sessions/{sid}/kingdoms/{kid}", s.handleRenameKingdom)
	mux.HandleFunc("DELETE /api/sessions/{sid}/kingdoms/{kid}", s.handleRemoveKingdom)
	mux.HandleFunc("POST /api/sessions/{sid}/kingdoms/{kid}/screenshot", s.handleUpload)
	mux.HandleFunc("DELETE /api/sessions/{sid}/kingdoms/{kid}/reading", s.handleResetReading)
	mux.HandleFunc("POST /api/sessions/{sid}/ranking", s.handleCalculate)
	mux.HandleFunc("GET /api/sessions/{sid}/report", s.handleReportHTML)
	mux.HandleFunc("GET /api/sessions/{sid}/report.png", s.handleReportPNG)
	mux.HandleFunc("PUT /api/preferences/api-key", s.handleSaveAPIKey)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return middleware.RequestID(s.logger)(middleware.Recover(c.Handler(mux)))
}
