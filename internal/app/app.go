package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "todoboard/docs"
	"todoboard/internal/cache"
	"todoboard/internal/config"
	"todoboard/internal/handlers"
	"todoboard/internal/middleware"
	"todoboard/internal/pdf"
	"todoboard/internal/realtime"
	"todoboard/internal/repositories"
	"todoboard/internal/routes"
	"todoboard/internal/services"
	"todoboard/internal/utils"
	"todoboard/internal/views"
)

const startupTimeout = 10 * time.Second

// App owns the HTTP server and every resource that has to be released on shutdown.
type App struct {
	cfg       *config.Config
	handler   http.Handler
	server    *http.Server
	scheduler *services.SchedulerService

	// cancels request contexts so open event streams end on shutdown
	stopRequests context.CancelFunc
	closers      []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

// New wires the store, services and router described by cfg.
func New(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// === Store ===
	repo, err := a.openStore(ctx)
	if err != nil {
		a.closeAll()
		return nil, err
	}

	// === Services ===
	hub := realtime.NewTaskHub()
	notifier := a.buildNotifier()

	taskOpts := []services.TaskServiceOption{services.WithEvents(hub)}
	if notifier != nil {
		taskOpts = append(taskOpts, services.WithNotifier(notifier))
	}
	taskService := services.NewTaskService(repo, taskOpts...)

	aiClient := utils.NewOpenAIClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.Timeout, cfg.AI.DryRun)
	suggestionService := services.NewSuggestionService(aiClient, a.openSuggestionCache(ctx))

	lists := services.NewListViewBuilder(cfg.UI.Locale)
	pdfGen := pdf.NewDocumentGenerator(cfg.UI.FontPath)

	if err := a.scheduleDigest(taskService, notifier); err != nil {
		a.closeAll()
		return nil, err
	}

	// === Handlers ===
	taskHandler := handlers.NewTaskHandler(taskService, suggestionService, lists, pdfGen, hub, cfg.UI.ToastWindow)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSOrigin))
	router.SetHTMLTemplate(views.MustTemplates())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, taskHandler, cfg.Server.ReadOnly)

	a.handler = middleware.MethodOverride(router)
	return a, nil
}

// Handler is the full HTTP stack, method override included.
func (a *App) Handler() http.Handler {
	return a.handler
}

func (a *App) openStore(ctx context.Context) (repositories.TaskRepository, error) {
	cfg := a.cfg.Store
	var repo repositories.TaskRepository

	switch cfg.Driver {
	case "postgres":
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.addCloser("postgres", db.Close)
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := repositories.Migrate(ctx, db); err != nil {
			return nil, err
		}
		repo = repositories.NewTaskRepository(db)

	case "sqlite":
		gdb, err := repositories.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		a.addCloser("sqlite", sqlDB.Close)
		repo = repositories.NewGormTaskRepository(gdb)

	default:
		if a.cfg.SeedEnabled() {
			log.Printf("[store] memory, %d seed tasks, latency %s", len(repositories.SeedTasks()), cfg.Latency)
			return repositories.NewMemoryTaskRepository(cfg.Latency, repositories.SeedTasks()...), nil
		}
		log.Printf("[store] memory, latency %s", cfg.Latency)
		return repositories.NewMemoryTaskRepository(cfg.Latency), nil
	}

	log.Printf("[store] %s ready", cfg.Driver)
	if a.cfg.SeedEnabled() {
		if err := seedIfEmpty(ctx, repo); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func seedIfEmpty(ctx context.Context, repo repositories.TaskRepository) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("seed: list: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, t := range repositories.SeedTasks() {
		t := t
		if err := repo.Store(ctx, &t); err != nil {
			return fmt.Errorf("seed: store %s: %w", t.ID, err)
		}
	}
	log.Printf("[store] seeded %d tasks", len(repositories.SeedTasks()))
	return nil
}

// openSuggestionCache returns nil when Redis is not configured or unreachable.
func (a *App) openSuggestionCache(ctx context.Context) services.SuggestionStore {
	addr := a.cfg.Cache.RedisAddr
	if addr == "" {
		return nil
	}
	client, err := cache.NewRedisClient(ctx, addr)
	if err != nil {
		log.Printf("[cache][warn] suggestions uncached: %v", err)
		return nil
	}
	a.addCloser("redis", client.Close)
	log.Printf("[cache] redis %s ttl=%s", addr, a.cfg.Cache.TTL)
	return cache.NewSuggestionCache(client, a.cfg.Cache.Prefix, a.cfg.Cache.TTL)
}

// buildNotifier returns nil when no channel is configured.
func (a *App) buildNotifier() services.Notifier {
	var out services.MultiNotifier

	if e := a.cfg.Email; e.SMTPHost != "" && e.ToEmail != "" {
		out = append(out, services.NewEmailNotifier(e.SMTPHost, e.SMTPPort, e.SMTPUser, e.SMTPPassword, e.FromEmail, e.ToEmail))
		log.Printf("[notify] email -> %s", e.ToEmail)
	}

	if tg := a.cfg.Telegram; tg.Token != "" {
		n, err := services.NewTelegramNotifier(tg.Token, tg.ChatID)
		if err != nil {
			log.Printf("[notify][warn] telegram disabled: %v", err)
		} else {
			out = append(out, n)
			log.Printf("[notify] telegram chat=%d", tg.ChatID)
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func (a *App) scheduleDigest(tasks services.TaskService, n services.Notifier) error {
	at := a.cfg.Digest.Time
	if at == "" {
		return nil
	}
	if n == nil {
		log.Printf("[digest][warn] digest.time=%s set but no notifier configured", at)
		return nil
	}
	a.scheduler = services.NewSchedulerService(time.Local)
	if _, err := a.scheduler.ScheduleDaily(at, services.NewDigestJob(tasks, n, time.Now)); err != nil {
		return fmt.Errorf("schedule digest: %w", err)
	}
	log.Printf("[digest] daily at %s", at)
	return nil
}

func (a *App) addCloser(name string, fn func() error) {
	a.closers = append(a.closers, namedCloser{name: name, close: fn})
}

func (a *App) closeAll() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			log.Printf("[app][close][err] %s: %v", c.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Start begins serving in the background. Listen errors other than a clean
// shutdown are fatal.
func (a *App) Start() {
	reqCtx, cancel := context.WithCancel(context.Background())
	a.stopRequests = cancel

	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return reqCtx },
	}

	if a.scheduler != nil {
		a.scheduler.Start()
	}

	go func() {
		log.Printf("Server listening on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()
}

// Shutdown stops the scheduler, drains HTTP and closes the store and cache.
func (a *App) Shutdown(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	var errs []error
	if a.server != nil {
		a.stopRequests()
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http: %w", err))
		}
	}
	if err := a.closeAll(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Run loads config, serves until SIGINT/SIGTERM and exits the process.
func Run() {
	cfg := config.LoadConfig()

	a, err := New(cfg)
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}
	a.Start()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"todoboard": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return a.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Exited with code %d", exitCode)
	os.Exit(exitCode)
}
