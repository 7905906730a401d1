package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/go-kit/kit/log"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/gorilla/mux"
	"github.com/oklog/oklog/pkg/group"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/taskpad/backend/accesslog"
	"github.com/taskpad/backend/authsvc/pkg/authendpoint"
	"github.com/taskpad/backend/authsvc/pkg/authservice"
	"github.com/taskpad/backend/authsvc/pkg/authtransport"
	"github.com/taskpad/backend/healthsvc"
	"github.com/taskpad/backend/tasksvc"
	taskgorm "github.com/taskpad/backend/tasksvc/db/gorm"
	"github.com/taskpad/backend/tasksvc/pkg/taskendpoint"
	"github.com/taskpad/backend/tasksvc/pkg/taskservice"
	"github.com/taskpad/backend/tasksvc/pkg/tasktransport"
	"github.com/taskpad/backend/usersvc"
	usergorm "github.com/taskpad/backend/usersvc/db/gorm"
	"github.com/taskpad/backend/usersvc/pkg/userservice"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	libgorm "gorm.io/gorm"
)

func main() {
	fs := flag.NewFlagSet("taskpad", flag.ExitOnError)
	var (
		httpAddr = fs.String(
			"http.addr",
			getEnv("HTTP_ADDR", ":8080"),
			"HTTP listen address",
		)
		databaseURL = fs.String(
			"database.url",
			getEnv("DATABASE_URL", ""),
			"Postgres URL; sqlite file is used when empty",
		)
		tokenSecret = fs.String(
			"token.secret",
			getEnv("TOKEN_SECRET", "access-secret"),
			"HMAC secret for signing access tokens",
		)
		logDir = fs.String(
			"log.dir",
			getEnv("LOG_DIR", "logs"),
			"Directory for access log files",
		)
	)

	fs.Usage = usageFor(fs, os.Args[0]+" [flags]")
	fs.Parse(os.Args[1:])

	var logger log.Logger
	{
		logger = log.NewLogfmtLogger(os.Stderr)
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}

	if getEnv("APP_ENV", "") == "production" && *tokenSecret == "access-secret" {
		logger.Log("err", "TOKEN_SECRET must be set in production")
		os.Exit(1)
	}

	var db *libgorm.DB
	var err error
	{
		if *databaseURL != "" {
			db, err = libgorm.Open(postgres.Open(*databaseURL), &libgorm.Config{})
		} else {
			db, err = libgorm.Open(sqlite.Open("taskpad.db"), &libgorm.Config{})
		}
		if err != nil {
			logger.Log("err", err)
			os.Exit(1)
		}
	}

	db.AutoMigrate(&usersvc.User{}, &tasksvc.Task{})

	accessLog, err := accesslog.Open(*logDir)
	if err != nil {
		logger.Log("err", err)
		os.Exit(1)
	}
	defer accessLog.Close()

	var (
		userRepository = usergorm.NewUserRepository(db)
		taskRepository = taskgorm.NewTaskRepository(db)
		tokenizer      = authservice.NewTokenizer([]byte(*tokenSecret))
	)

	var requestCount *kitprometheus.Counter
	var requestLatency *kitprometheus.Summary
	{
		requestCount = kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "taskpad",
			Subsystem: "taskservice",
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, []string{"method"})
		requestLatency = kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "taskpad",
			Subsystem: "taskservice",
			Name:      "request_latency_seconds",
			Help:      "Total duration of requests in seconds.",
		}, []string{"method"})
	}

	var userService userservice.Service
	{
		userService = userservice.New(userRepository, log.With(logger, "component", "userservice"))
	}

	var authService authservice.Service
	{
		authService = authservice.New(userService, tokenizer, log.With(logger, "component", "authservice"))
	}

	var taskService taskservice.Service
	{
		taskService = taskservice.New(taskRepository, log.With(logger, "component", "taskservice"))
		taskService = taskservice.InstrumentingMiddleware(requestCount, requestLatency)(taskService)
	}

	var (
		authEndpoints = authendpoint.New(authService, logger)
		taskEndpoints = taskendpoint.New(taskService, logger)
		authHandler   = authtransport.NewHTTPHandler(authEndpoints, logger)
		taskHandler   = tasktransport.NewHTTPHandler(taskEndpoints, tokenizer, logger)
	)

	r := newRouter(healthsvc.NewHTTPHandler(db, time.Now()), authHandler, taskHandler)

	handler := accesslog.Middleware(accessLog, log.With(logger, "component", "accesslog"), r)

	var g group.Group
	{
		httpListener, err := net.Listen("tcp", *httpAddr)
		if err != nil {
			logger.Log("transport", "HTTP", "during", "Listen", "err", err)
			os.Exit(1)
		}
		g.Add(func() error {
			logger.Log("transport", "HTTP", "addr", *httpAddr)
			return http.Serve(httpListener, handler)
		}, func(error) {
			httpListener.Close()
		})
	}
	{
		// This function just sits and waits for ctrl-C.
		cancelInterrupt := make(chan struct{})
		g.Add(func() error {
			c := make(chan os.Signal, 1)
			signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-c:
				return fmt.Errorf("received signal %s", sig)
			case <-cancelInterrupt:
				return nil
			}
		}, func(error) {
			close(cancelInterrupt)
		})
	}
	logger.Log("exit", g.Run())
}

func newRouter(healthHandler, authHandler, taskHandler http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Methods("GET").Path("/").Handler(healthHandler)
	r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())
	r.PathPrefix("/auth").Handler(authHandler)
	r.PathPrefix("/tasks").Handler(taskHandler)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "resource not found"})
}

func usageFor(fs *flag.FlagSet, short string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "USAGE\n")
		fmt.Fprintf(os.Stderr, "  %s\n", short)
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "FLAGS\n")
		w := tabwriter.NewWriter(os.Stderr, 0, 2, 2, ' ', 0)
		fs.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(w, "\t-%s %s\t%s\n", f.Name, f.DefValue, f.Usage)
		})
		w.Flush()
		fmt.Fprintf(os.Stderr, "\n")
	}
}

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = fallback
	}
	return value
}
