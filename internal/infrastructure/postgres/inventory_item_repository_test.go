package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-audit-api/internal/domain"
	"github.com/jhoicas/inventario-audit-api/internal/domain/repository"
)

func TestBuildItemWhere(t *testing.T) {
	where, args := buildItemWhere(repository.ItemFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	cat := "herramientas"
	qty := int64(4)
	price := decimal.RequireFromString("9.99")
	where, args = buildItemWhere(repository.ItemFilter{Category: &cat, Price: &price, Quantity: &qty})
	assert.Equal(t, " WHERE category = $1 AND price = $2 AND quantity = $3", where)
	assert.Equal(t, []any{cat, price, qty}, args)
}

func TestMapItemWriteError(t *testing.T) {
	var verr *domain.ValidationError
	err := mapItemWriteError("insert item", &pgconn.PgError{Code: codeUniqueViolation})
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Field)

	err = mapItemWriteError("update item", &pgconn.PgError{Code: codeSerializationFailure})
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = mapItemWriteError("update item", &pgconn.PgError{Code: codeCheckViolation})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = mapItemWriteError("insert item", &pgconn.PgError{Code: codeForeignKeyViolation})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = mapItemWriteError("insert item", errors.New("conexión cerrada"))
	assert.NotErrorIs(t, err, domain.ErrConflict)
}
