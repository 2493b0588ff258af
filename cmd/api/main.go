package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	_ "github.com/jhoicas/inventario-audit-api/docs"
	"github.com/jhoicas/inventario-audit-api/internal/application/auth"
	"github.com/jhoicas/inventario-audit-api/internal/application/inventory"
	"github.com/jhoicas/inventario-audit-api/internal/domain/policy"
	"github.com/jhoicas/inventario-audit-api/internal/domain/repository"
	infralock "github.com/jhoicas/inventario-audit-api/internal/infrastructure/lock"
	"github.com/jhoicas/inventario-audit-api/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-audit-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/inventario-audit-api/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-audit-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-audit-api/internal/interfaces/http"
	"github.com/jhoicas/inventario-audit-api/pkg/config"
	"github.com/jhoicas/inventario-audit-api/pkg/logger"
)

// @title       Inventario Audit API
// @version     1.0
// @description Inventario multiusuario con historial automático de cambios de cantidad.
// @BasePath    /
// @securityDefinitions.apikey Bearer
// @in          header
// @name        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	// Bloqueo por artículo: Redis si hay varias instancias, en memoria si no.
	var locker inventory.RecordLocker = infralock.NewLocalLocker()
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = infralock.NewRedisLocker(rdb, cfg.Redis.LockTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("bloqueo por artículo en Redis")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pipelineMetrics := metrics.NewPipelineMetrics(reg)

	access := policy.OwnerPolicy{}
	itemUC := inventory.NewItemUseCase(store.items, store.txRunner, locker, access, log)
	updateItemUC := inventory.NewUpdateItemUseCase(store.txRunner, locker, access, pipelineMetrics, log,
		inventory.UpdateConfig{MaxRetries: cfg.Mutation.MaxRetries})
	changeLogUC := inventory.NewChangeLogUseCase(store.items, store.logs, access, infrapdf.NewMarotoChangeLogPDFGenerator())
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Audit API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ItemUC:      itemUC,
		UpdateItem:  updateItemUC,
		ChangeLogUC: changeLogUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// storage repositorios del driver configurado.
type storage struct {
	items    repository.InventoryItemRepository
	logs     repository.ChangeLogRepository
	users    repository.UserRepository
	txRunner inventory.TxRunner
	close    func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		s := memory.NewStore()
		return &storage{
			items:    memory.NewInventoryItemRepository(s),
			logs:     memory.NewChangeLogRepository(s),
			users:    memory.NewUserRepository(s),
			txRunner: memory.NewTxRunner(s),
			close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		items:    postgres.NewInventoryItemRepository(pool),
		logs:     postgres.NewChangeLogRepository(pool),
		users:    postgres.NewUserRepository(pool),
		txRunner: postgres.NewTxRunner(pool),
		close:    pool.Close,
	}, nil
}
