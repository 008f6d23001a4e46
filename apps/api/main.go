package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/kipawa/jaribio/apps/api/echo"
	"github.com/kipawa/jaribio/core"
	"github.com/kipawa/jaribio/core/catalog"
	"github.com/kipawa/jaribio/core/quiz"
	"github.com/kipawa/jaribio/core/report"
	"github.com/kipawa/jaribio/core/user"
	cachesvc "github.com/kipawa/jaribio/services/cache"
	emailsvc "github.com/kipawa/jaribio/services/email"
	logsvc "github.com/kipawa/jaribio/services/logger"
	"github.com/kipawa/jaribio/storage/database"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	if err = database.Migrate(db); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}
	defer func() {
		if sqlDB, derr := db.DB(); derr == nil {
			if derr = sqlDB.Close(); derr != nil {
				logger.Error("Failed to close DB", derr)
			}
		}
	}()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrRepo := database.NewUserRepository(db)
	catRepo := database.NewCatalogRepository(db)
	qzRepo := database.NewQuizRepository(db)
	rptRepo := database.NewReportRepository(db)

	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	catSvc := catalog.NewService(catRepo)
	qzSvc := quiz.NewService(qzRepo)
	rptSvc := report.NewService(rptRepo)
	dashSvc := report.NewDashboardService(usrRepo, catRepo, qzRepo, rptRepo)

	cache := cachesvc.NewMemoryCache()
	cache.StartJanitor(conf.Cache.TTL)
	defer cache.Stop()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	quiz.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	// readiness probe
	http.HandleFunc("/debug/health", func(w http.ResponseWriter, r *http.Request) {
		if herr := database.StatusCheck(r.Context(), db); herr != nil {
			http.Error(w, herr.Error(), http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	go func() {
		if derr := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); derr != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", derr), derr)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	server := echoapi.NewServer(conf.Server.Addr(), shutdown, &echoapi.Deps{
		Logger:       logger,
		Cache:        cache,
		UserSvc:      usrSvc,
		CatalogSvc:   catSvc,
		QuizSvc:      qzSvc,
		ReportSvc:    rptSvc,
		DashboardSvc: dashSvc,
		Validate:     validate,
		Translator:   translator,
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
