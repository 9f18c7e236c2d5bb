package rest

import (
	"complyflow/internal/service"
	"complyflow/internal/transport/rest/handler"
	"complyflow/internal/transport/rest/middleware"
	"complyflow/internal/transport/ws"
	"net/http"
	"os"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService       *service.AuthService
	StandardService   *service.StandardService
	AssessmentService *service.AssessmentService
	ChatService       *service.ChatService
	ReportService     *service.ReportService
	WSHub             *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	standardHandler := handler.NewStandardHandler(c.StandardService)
	assessmentHandler := handler.NewAssessmentHandler(c.AssessmentService)
	chatHandler := handler.NewChatHandler(c.ChatService)
	reportHandler := handler.NewReportHandler(c.ReportService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/assessments", assessmentHandler.Start).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/standards/{standardId}/observe", wsHandler.ObserverWS).Methods("GET")
	v1.HandleFunc("/ws/sessions/{sessionId}", wsHandler.SessionWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Officer routes (require officer auth)
	officerRoutes := v1.NewRoute().Subrouter()
	officerRoutes.Use(authMW.RequireOfficer)

	officerRoutes.HandleFunc("/standards", standardHandler.Create).Methods("POST", "OPTIONS")
	officerRoutes.HandleFunc("/standards", standardHandler.List).Methods("GET", "OPTIONS")
	officerRoutes.HandleFunc("/standards/{standardId}", standardHandler.Get).Methods("GET", "OPTIONS")
	officerRoutes.HandleFunc("/standards/{standardId}", standardHandler.Update).Methods("PUT", "OPTIONS")
	officerRoutes.HandleFunc("/standards/{standardId}", standardHandler.Delete).Methods("DELETE", "OPTIONS")
	officerRoutes.HandleFunc("/users/{userId}/assessments", assessmentHandler.ListByUser).Methods("GET", "OPTIONS")
	officerRoutes.HandleFunc("/assessments/{sessionId}", assessmentHandler.Get).Methods("GET", "OPTIONS")
	officerRoutes.HandleFunc("/assessments/{sessionId}/analysis", assessmentHandler.Analysis).Methods("GET", "OPTIONS")

	// Report routes (officer only)
	officerRoutes.HandleFunc("/reports/{standardId}/overview", reportHandler.GetOverview).Methods("GET", "OPTIONS")
	officerRoutes.HandleFunc("/reports/{standardId}/overview", reportHandler.GenerateOverview).Methods("POST", "OPTIONS")
	officerRoutes.HandleFunc("/reports/{standardId}/sessions/top", reportHandler.TopSessions).Methods("GET", "OPTIONS")

	// Respondent routes (require session-scoped auth)
	respondentRoutes := v1.NewRoute().Subrouter()
	respondentRoutes.Use(authMW.RequireRespondent)

	respondentRoutes.HandleFunc("/assessments/{sessionId}/question/next", assessmentHandler.NextQuestion).Methods("GET", "OPTIONS")
	respondentRoutes.HandleFunc("/assessments/{sessionId}/answers", assessmentHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/assessments/{sessionId}/progress", assessmentHandler.Progress).Methods("GET", "OPTIONS")
	respondentRoutes.HandleFunc("/assessments/{sessionId}/complete", assessmentHandler.Complete).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/assessments/{sessionId}/conversation", chatHandler.StartConversation).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/assessments/{sessionId}/messages", chatHandler.PostMessage).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/assessments/{sessionId}/transcript", chatHandler.Transcript).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
