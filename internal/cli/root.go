// Package cli comandos administrativos sobre la base de datos del inventario.
package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/inventario-audit-api/internal/application/inventory"
	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
	"github.com/jhoicas/inventario-audit-api/internal/domain/policy"
	infrapdf "github.com/jhoicas/inventario-audit-api/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-audit-api/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-audit-api/pkg/config"
	"github.com/jhoicas/inventario-audit-api/pkg/logger"
)

// operator identidad con la que la CLI lee el historial.
var operator = entity.Identity{UserID: "invctl", Role: entity.RoleAdmin}

var rootCmd = &cobra.Command{
	Use:   "invctl",
	Short: "Administración del inventario",
	Long: `invctl aplica el esquema de la base de datos y permite revisar
el historial de cambios de cantidad de un artículo.

Lee la misma configuración que la API (DATABASE_URL, DB_HOST, ...).`,
	SilenceUsage: true,
}

// Execute ejecuta el comando raíz.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(verifyCmd)
}

// session conexión abierta por un comando.
type session struct {
	pool    *pgxpool.Pool
	history *inventory.ChangeLogUseCase
	log     *logger.Logger
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.App.StoreDriver != config.StoreDriverPostgres {
		return nil, fmt.Errorf("invctl requiere STORE_DRIVER=postgres (actual: %s)", cfg.App.StoreDriver)
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &session{
		pool: pool,
		history: inventory.NewChangeLogUseCase(
			postgres.NewInventoryItemRepository(pool),
			postgres.NewChangeLogRepository(pool),
			policy.OwnerPolicy{},
			infrapdf.NewMarotoChangeLogPDFGenerator(),
		),
		log: logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Named("invctl"),
	}, nil
}

func (s *session) Close() { s.pool.Close() }
