package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/rs/cors"
	"golang.org/x/exp/rand"

	"incubator/portal/config"
	"incubator/portal/handlers"
	"incubator/portal/handlers/admin"
	"incubator/portal/handlers/auth"
	"incubator/portal/handlers/chat"
	"incubator/portal/handlers/landing"
	"incubator/portal/handlers/media"
	"incubator/portal/handlers/news"
	"incubator/portal/handlers/profile"
	"incubator/portal/handlers/progress"
	"incubator/portal/logger"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal(err)
	}

	lg := logger.New(logger.Options{
		Prefix:       "[portal] ",
		RollbarToken: cfg.RollbarToken,
		Environment:  cfg.Environment,
	})

	// Initialize random seed
	rand.Seed(uint64(time.Now().UnixNano()))

	auth.TokenTTL = cfg.TokenTTL
	media.UploadDir = cfg.UploadDir

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := handlers.EnsureSchema(ctx, db); err != nil {
		cancel()
		lg.Error("Schema setup failed", err)
		logger.Flush(lg)
		log.Fatal(err)
	}
	cancel()

	r := mux.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	})

	// Public routes (no auth required)
	r.HandleFunc("/api/auth/login", auth.LoginHandler(db)).Methods("POST", "OPTIONS")
	if cfg.Environment != "production" {
		r.HandleFunc("/api/test/seed", handlers.SeedHandler(db)).Methods("POST", "OPTIONS")
	}

	// STOMP over WebSocket; the token travels in the CONNECT frame
	broker := chat.NewBroker(chat.NewSQLStore(db))
	r.Handle("/ws", broker)
	r.Handle("/ws/websocket", broker)

	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(auth.AuthMiddleware)

	// Chat routes
	protected.HandleFunc("/chat-rooms", chat.GetRoomsHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/chat-rooms", chat.CreateRoomHandler(db)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/chat-rooms/contacts", chat.GetContactsHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/chat-rooms/individual", chat.IndividualRoomHandler(db)).Methods("POST", "OPTIONS")

	// Profile routes
	protected.HandleFunc("/profile/alumni/me", profile.GetAlumniProfileHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/profile/alumni/me", profile.UpdateAlumniProfileHandler(db)).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/profile/investor/me", profile.GetInvestorProfileHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/profile/investor/me", profile.UpdateInvestorProfileHandler(db)).Methods("PUT", "OPTIONS")

	progress.Routes(protected.PathPrefix("/progresstracking").Subrouter(), db)
	news.Routes(protected.PathPrefix("/v1/news").Subrouter(), db)
	landing.Routes(protected.PathPrefix("/landing-page").Subrouter(), db)
	admin.Routes(protected.PathPrefix("/admin").Subrouter(), db)

	lg.Info("Server starting on port " + cfg.Port)
	err = http.ListenAndServe(":"+cfg.Port, c.Handler(r))
	lg.Error("Server stopped", err)
	logger.Flush(lg)
	log.Fatal(err)
}
