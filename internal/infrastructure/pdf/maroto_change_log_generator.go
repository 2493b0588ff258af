// Package pdf genera el reporte imprimible del historial de cambios de un artículo.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del artículo + ID  │  Fecha de emisión      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DATOS: Categoría / Dueño / Precio / Cantidad actual         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Usuario | Cambio | Cantidad resultante       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Cantidad inicial / Entradas / Cantidad actual      │
//	│  FOOTER: QR con el ID del artículo                           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appinventory "github.com/jhoicas/inventario-audit-api/internal/application/inventory"
	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
	"github.com/jhoicas/inventario-audit-api/internal/domain/inventory"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
	colorGreen   = &props.Color{Red: 20, Green: 120, Blue: 50}
)

const dateLayout = "02/01/2006 15:04:05"

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appinventory.ChangeLogPDFGenerator = (*MarotoChangeLogPDFGenerator)(nil)

// MarotoChangeLogPDFGenerator implementa inventory.ChangeLogPDFGenerator usando Maroto v2.
type MarotoChangeLogPDFGenerator struct {
	now func() time.Time
}

// NewMarotoChangeLogPDFGenerator construye el generador.
func NewMarotoChangeLogPDFGenerator() *MarotoChangeLogPDFGenerator {
	return &MarotoChangeLogPDFGenerator{now: time.Now}
}

// GenerateChangeLogPDF genera el PDF y devuelve sus bytes. entries debe venir en orden de creación.
func (g *MarotoChangeLogPDFGenerator) GenerateChangeLogPDF(
	_ context.Context,
	item *entity.InventoryItem,
	entries []*entity.ChangeLogEntry,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Historial de cambios: "+item.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(item, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(itemRow(item))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	// Un historial inconsistente se imprime igual; las cantidades resultantes quedan vacías.
	replay, replayErr := inventory.ReplayHistory(item.Quantity, entries)

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(entries, replay.Steps)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(item, len(entries), replay, replayErr))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(item))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(item *entity.InventoryItem, issued time.Time) core.Row {
	return row.New(18).Add(
		col.New(8).Add(
			text.New(item.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("ID: "+item.ID, props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("HISTORIAL DE CAMBIOS", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Emitido: "+issued.Format(dateLayout), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func itemRow(item *entity.InventoryItem) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("DATOS DEL ARTÍCULO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Categoría: %s   |   Dueño: %s   |   Precio: $%s   |   Cantidad actual: %d",
				nonEmpty(item.Category, "—"),
				item.OwnerID,
				item.Price.StringFixed(2),
				item.Quantity,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 3, align.Left),
		h("Usuario", 5, align.Left),
		h("Cambio", 2, align.Right),
		h("Cantidad", 2, align.Right),
	)
}

// tableDetailRows una fila por entrada. steps puede ser más corto que entries si el historial es inconsistente.
func tableDetailRows(entries []*entity.ChangeLogEntry, steps []int64) []core.Row {
	result := make([]core.Row, 0, len(entries))
	for i, e := range entries {
		resulting := "—"
		if i < len(steps) {
			resulting = strconv.FormatInt(steps[i], 10)
		}
		deltaColor := colorGreen
		if e.QuantityChanged < 0 {
			deltaColor = colorRed
		}
		result = append(result, row.New(7).Add(
			col.New(3).Add(text.New(
				e.CreatedAt.Format(dateLayout),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(5).Add(text.New(
				e.ChangedBy,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				formatDelta(e.QuantityChanged),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: deltaColor},
			)),
			col.New(2).Add(text.New(
				resulting,
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

func summaryRow(item *entity.InventoryItem, entries int, replay inventory.HistoryReplay, replayErr error) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}

	initial := strconv.FormatInt(replay.Baseline, 10)
	if replayErr != nil {
		initial = "inconsistente"
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Cantidad inicial:"),
			label("Entradas:"),
			label("Cantidad actual:"),
		),
		col.New(3).Add(
			value(initial),
			value(strconv.Itoa(entries)),
			value(strconv.FormatInt(item.Quantity, 10)),
		),
	)
}

func footerRow(item *entity.InventoryItem) core.Row {
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(item.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Las entradas se generan automáticamente en cada cambio de cantidad\n"+
				"y no pueden modificarse ni eliminarse individualmente.", props.Text{
				Size: 7, Top: 4, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatDelta antepone el signo: 5 → "+5", -8 → "-8".
func formatDelta(d int64) string {
	if d > 0 {
		return "+" + strconv.FormatInt(d, 10)
	}
	return strconv.FormatInt(d, 10)
}
