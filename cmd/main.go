package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HeliosEnergia/api-backoffice/internal/auditlog"
	"github.com/HeliosEnergia/api-backoffice/internal/auth"
	"github.com/HeliosEnergia/api-backoffice/internal/cache"
	"github.com/HeliosEnergia/api-backoffice/internal/cep"
	"github.com/HeliosEnergia/api-backoffice/internal/company"
	"github.com/HeliosEnergia/api-backoffice/internal/concessionaire"
	"github.com/HeliosEnergia/api-backoffice/internal/config"
	"github.com/HeliosEnergia/api-backoffice/internal/cooperative"
	"github.com/HeliosEnergia/api-backoffice/internal/distributor"
	"github.com/HeliosEnergia/api-backoffice/internal/landing"
	"github.com/HeliosEnergia/api-backoffice/internal/lead"
	"github.com/HeliosEnergia/api-backoffice/internal/logger"
	"github.com/HeliosEnergia/api-backoffice/internal/metrics"
	"github.com/HeliosEnergia/api-backoffice/internal/migrations"
	"github.com/HeliosEnergia/api-backoffice/internal/notification"
	"github.com/HeliosEnergia/api-backoffice/internal/partner"
	"github.com/HeliosEnergia/api-backoffice/internal/plant"
	"github.com/HeliosEnergia/api-backoffice/internal/storage"
	"github.com/HeliosEnergia/api-backoffice/internal/user"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("configuração inválida", zap.Error(err))
	}
	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		zap.NewExample().Fatal("erro ao iniciar logger", zap.Error(err))
	}
	log := zap.L()
	defer log.Sync()

	auth.Configure(cfg.JWTSecret, cfg.AccessTTL)
	auth.ConfigureRefresh(cfg.RefreshTTL)

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatal("erro ao conectar no banco", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("erro ao obter o pool de conexões", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	if err := migrations.Run(db); err != nil {
		log.Fatal("erro ao migrar o banco", zap.Error(err))
	}

	var cepCache cache.Cache
	if cfg.RedisURL != "" {
		cepCache, err = cache.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal("erro ao conectar no redis", zap.Error(err))
		}
		defer cepCache.Close()
	} else {
		log.Warn("redis não configurado, consultas de CEP sem cache")
	}

	var uploader storage.Uploader
	if cfg.S3Bucket != "" {
		uploader, err = storage.NewS3Uploader(context.Background(), cfg.S3Region, cfg.S3Bucket)
		if err != nil {
			log.Fatal("erro ao configurar o S3", zap.Error(err))
		}
	} else {
		log.Warn("bucket S3 não configurado, anexos de proposta desabilitados")
	}

	registry, err := landing.LoadRegistry(cfg.LandingRegistryPath)
	if err != nil {
		log.Warn("registro de landing pages indisponível", zap.Error(err))
		registry = landing.EmptyRegistry()
	}

	audit := auditlog.NewRecorder(db)
	notifier := notification.NewNotifier(cfg.AlertWebhookURL)
	cepClient := cep.NewClient(cfg.CEPBaseURL, cfg.CEPTimeout, cepCache, cfg.CEPCacheTTL)

	userHandler := user.NewHandler(db, audit)
	companyHandler := company.NewHandler(db, audit)
	distributorHandler := distributor.NewHandler(db, audit)
	concessionaireHandler := concessionaire.NewHandler(db, audit)
	plantHandler := plant.NewHandler(db, audit)
	cooperativeHandler := cooperative.NewHandler(db, audit)
	partnerHandler := partner.NewHandler(db, audit)
	leadHandler := lead.NewHandler(db, audit, uploader)
	auditHandler := auditlog.NewHandler(db)
	cepHandler := cep.NewHandler(cepClient)
	landingHandler := landing.NewHandler(db, registry, notifier)

	r := mux.NewRouter()
	r.Use(logger.Middleware)
	r.Use(metrics.Middleware)

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Rotas públicas
	api.HandleFunc("/auth/login", userHandler.Login).Methods("POST")
	api.HandleFunc("/auth/refresh", auth.RefreshHandler(db)).Methods("POST")
	api.HandleFunc("/auth/forgot-password", userHandler.EsqueciSenha).Methods("POST")
	api.HandleFunc("/auth/reset-password", userHandler.RedefinirSenha).Methods("POST")
	api.HandleFunc("/cep/{cep}", cepHandler.Buscar).Methods("GET")
	api.HandleFunc("/landing/{companyCode}", landingHandler.Pagina).Methods("GET")
	api.HandleFunc("/landing/{companyCode}/contact", landingHandler.CapturarContato).Methods("POST")

	// Rotas autenticadas
	priv := api.NewRoute().Subrouter()
	priv.Use(auth.MiddlewareAutenticacao)

	priv.HandleFunc("/auth/logout", auth.LogoutHandler(db)).Methods("POST")
	priv.HandleFunc("/auth/permissions", auth.PermissionsHandler()).Methods("GET")
	priv.HandleFunc("/auth/me", userHandler.Me).Methods("GET")
	priv.HandleFunc("/auth/change-password", userHandler.AlterarSenha).Methods("POST")

	empresas := priv.PathPrefix("/companies").Subrouter()
	empresas.HandleFunc("", companyHandler.Listar).Methods("GET")
	empresas.HandleFunc("/{id}", companyHandler.BuscarPorID).Methods("GET")
	adminEmpresas := priv.PathPrefix("/companies").Subrouter()
	adminEmpresas.Use(auth.RequireRole(auth.RoleAdmin))
	adminEmpresas.HandleFunc("", companyHandler.Criar).Methods("POST")
	adminEmpresas.HandleFunc("/{id}", companyHandler.Atualizar).Methods("PATCH")
	adminEmpresas.HandleFunc("/{id}", companyHandler.Deletar).Methods("DELETE")

	usuarios := priv.PathPrefix("/users").Subrouter()
	usuarios.Use(auth.RequireRole(auth.RoleCoadmin))
	usuarios.HandleFunc("", userHandler.Criar).Methods("POST")
	usuarios.HandleFunc("", userHandler.Listar).Methods("GET")
	usuarios.HandleFunc("/{id}", userHandler.BuscarPorID).Methods("GET")
	usuarios.HandleFunc("/{id}", userHandler.Atualizar).Methods("PATCH")
	usuarios.HandleFunc("/{id}", userHandler.Deletar).Methods("DELETE")
	usuarios.HandleFunc("/{id}/activate", userHandler.Ativar).Methods("PATCH")
	usuarios.HandleFunc("/{id}/deactivate", userHandler.Desativar).Methods("PATCH")

	dist := priv.PathPrefix("/distributors").Subrouter()
	dist.HandleFunc("", distributorHandler.Listar).Methods("GET")
	dist.HandleFunc("/{id}", distributorHandler.BuscarPorID).Methods("GET")
	adminDist := priv.PathPrefix("/distributors").Subrouter()
	adminDist.Use(auth.RequireRole(auth.RoleAdmin))
	adminDist.HandleFunc("", distributorHandler.Criar).Methods("POST")
	adminDist.HandleFunc("/{id}", distributorHandler.Atualizar).Methods("PATCH")
	adminDist.HandleFunc("/{id}", distributorHandler.Deletar).Methods("DELETE")

	conc := priv.PathPrefix("/concessionaires").Subrouter()
	conc.Use(auth.RequireRole(auth.RoleOperator))
	conc.HandleFunc("", concessionaireHandler.Criar).Methods("POST")
	conc.HandleFunc("", concessionaireHandler.Listar).Methods("GET")
	conc.HandleFunc("/{id}", concessionaireHandler.BuscarPorID).Methods("GET")
	conc.HandleFunc("/{id}", concessionaireHandler.Atualizar).Methods("PATCH")
	conc.HandleFunc("/{id}", concessionaireHandler.Deletar).Methods("DELETE")
	conc.HandleFunc("/{id}/activate", concessionaireHandler.Ativar).Methods("PATCH")
	conc.HandleFunc("/{id}/deactivate", concessionaireHandler.Desativar).Methods("PATCH")

	plantas := priv.PathPrefix("/plants").Subrouter()
	plantas.Use(auth.RequireRole(auth.RoleOperator))
	plantas.HandleFunc("", plantHandler.Criar).Methods("POST")
	plantas.HandleFunc("", plantHandler.Listar).Methods("GET")
	plantas.HandleFunc("/{id}", plantHandler.BuscarPorID).Methods("GET")
	plantas.HandleFunc("/{id}", plantHandler.Atualizar).Methods("PATCH")
	plantas.HandleFunc("/{id}", plantHandler.Deletar).Methods("DELETE")
	plantas.HandleFunc("/{id}/activate", plantHandler.Ativar).Methods("PATCH")
	plantas.HandleFunc("/{id}/deactivate", plantHandler.Desativar).Methods("PATCH")

	coops := priv.PathPrefix("/cooperatives").Subrouter()
	coops.Use(auth.RequireRole(auth.RoleOperator))
	coops.HandleFunc("", cooperativeHandler.Criar).Methods("POST")
	coops.HandleFunc("", cooperativeHandler.Listar).Methods("GET")
	coops.HandleFunc("/{id}", cooperativeHandler.BuscarPorID).Methods("GET")
	coops.HandleFunc("/{id}", cooperativeHandler.Atualizar).Methods("PATCH")
	coops.HandleFunc("/{id}", cooperativeHandler.Deletar).Methods("DELETE")
	coops.HandleFunc("/{id}/activate", cooperativeHandler.Ativar).Methods("PATCH")
	coops.HandleFunc("/{id}/deactivate", cooperativeHandler.Desativar).Methods("PATCH")

	parceiros := priv.PathPrefix("/partners").Subrouter()
	parceiros.Use(auth.RequireRole(auth.RoleCoadmin))
	parceiros.HandleFunc("", partnerHandler.Criar).Methods("POST")
	parceiros.HandleFunc("", partnerHandler.Listar).Methods("GET")
	parceiros.HandleFunc("/{id}", partnerHandler.BuscarPorID).Methods("GET")
	parceiros.HandleFunc("/{id}", partnerHandler.Atualizar).Methods("PATCH")
	parceiros.HandleFunc("/{id}", partnerHandler.Deletar).Methods("DELETE")
	parceiros.HandleFunc("/{id}/activate", partnerHandler.Ativar).Methods("PATCH")
	parceiros.HandleFunc("/{id}/deactivate", partnerHandler.Desativar).Methods("PATCH")

	// /contacts permanece como alias de /leads desde a migração da tabela.
	for _, prefix := range []string{"/leads", "/contacts"} {
		leads := priv.PathPrefix(prefix).Subrouter()
		leads.HandleFunc("", leadHandler.Criar).Methods("POST")
		leads.HandleFunc("", leadHandler.Listar).Methods("GET")
		leads.HandleFunc("/{id}", leadHandler.BuscarPorID).Methods("GET")
		leads.HandleFunc("/{id}", leadHandler.Atualizar).Methods("PATCH")
		leads.HandleFunc("/{id}", leadHandler.Deletar).Methods("DELETE")
		leads.HandleFunc("/{id}/status", leadHandler.AtualizarStatus).Methods("PATCH")
		leads.HandleFunc("/{id}/notes", leadHandler.CriarNota).Methods("POST")
		leads.HandleFunc("/{id}/notes", leadHandler.ListarNotas).Methods("GET")
		leads.HandleFunc("/{id}/proposals", leadHandler.CriarProposta).Methods("POST")
		leads.HandleFunc("/{id}/proposals", leadHandler.ListarPropostas).Methods("GET")
		leads.HandleFunc("/{id}/proposals/{pid}/attachment", leadHandler.AnexarProposta).Methods("POST")
	}

	audits := priv.PathPrefix("/audit-logs").Subrouter()
	audits.Use(auth.RequireRole(auth.RoleAdmin))
	audits.HandleFunc("", auditHandler.Listar).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("servidor iniciado", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("erro no servidor http", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("encerrando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("erro no shutdown", zap.Error(err))
	}
}
