package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/inventario-audit-api/internal/infrastructure/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Crea las tablas si no existen",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		if err := postgres.Migrate(cmd.Context(), s.pool); err != nil {
			return err
		}
		s.log.Info().Msg("esquema aplicado")
		fmt.Fprintln(cmd.OutOrStdout(), "Esquema aplicado")
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <item-id>",
	Short: "Muestra el historial de cambios de un artículo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		itemID := args[0]
		if out, _ := cmd.Flags().GetString("pdf"); out != "" {
			doc, err := s.history.ExportPDF(cmd.Context(), operator, itemID)
			if err != nil {
				return fmt.Errorf("exportar historial: %w", err)
			}
			if err := os.WriteFile(out, doc, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Historial exportado a %s\n", out)
			return nil
		}

		entries, err := s.history.ListByItem(cmd.Context(), operator, itemID)
		if err != nil {
			return fmt.Errorf("leer historial: %w", err)
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Sin cambios registrados")
			return nil
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-36s %-20s %-36s %10s\n", "ID", "Fecha", "Usuario", "Cambio")
		fmt.Fprintln(w, "--------------------------------------------------------------------------------------------------------")
		for _, e := range entries {
			fmt.Fprintf(w, "%-36s %-20s %-36s %+10d\n", e.ID, e.Timestamp.Format("2006-01-02 15:04:05"), e.ChangedBy, e.QuantityChanged)
		}
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <item-id>",
	Short: "Reconstruye la cantidad inicial y valida el historial",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		v, err := s.history.Verify(cmd.Context(), operator, args[0])
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Artículo:          %s\n", v.ItemID)
		fmt.Fprintf(w, "Cantidad actual:   %d\n", v.CurrentQuantity)
		fmt.Fprintf(w, "Entradas:          %d\n", v.Entries)
		if !v.Consistent {
			fmt.Fprintf(w, "Historial INCONSISTENTE: %s\n", v.Problem)
			return fmt.Errorf("historial inconsistente")
		}
		fmt.Fprintf(w, "Cantidad inicial:  %d\n", v.InitialQuantity)
		fmt.Fprintln(w, "Historial consistente")
		return nil
	},
}

func init() {
	historyCmd.Flags().String("pdf", "", "Exportar el historial a este archivo PDF")
}
