package inventory

import (
	"bytes"
	"encoding/json"
	"maps"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/inventario-audit-api/internal/domain"
	"github.com/jhoicas/inventario-audit-api/internal/domain/entity"
)

// Campos editables de un artículo, tal como llegan en el cuerpo JSON.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldQuantity    = "quantity"
	FieldPrice       = "price"
	FieldCategory    = "category"
)

const (
	maxNameLength     = 255
	maxCategoryLength = 100
)

// NUMERIC(10,2): como máximo 8 dígitos enteros.
var maxPrice = decimal.New(1, 8)

// Cotas del exponente y del coeficiente, verificadas antes de Cmp o Truncate
// (ambos reescalan al exponente común).
const (
	maxNumberExponent  = 32
	maxCoefficientBits = 128
)

// Campos de solo lectura: se aceptan en el cuerpo pero se ignoran.
var readOnlyFields = map[string]struct{}{
	"id":           {},
	"owner":        {},
	"date_added":   {},
	"last_updated": {},
}

// ParsePatch convierte los campos crudos de la petición en un ItemPatch validado.
// Solo los campos presentes quedan en el parche. Un campo desconocido es un error de validación.
func ParsePatch(fields map[string]json.RawMessage) (entity.ItemPatch, error) {
	var p entity.ItemPatch
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		raw := fields[key]
		switch key {
		case FieldName:
			s, err := parseString(key, raw)
			if err != nil {
				return entity.ItemPatch{}, err
			}
			name := NormalizeName(s)
			if name == "" {
				return entity.ItemPatch{}, domain.NewValidationError(key, "no puede estar vacío")
			}
			if utf8.RuneCountInString(name) > maxNameLength {
				return entity.ItemPatch{}, domain.NewValidationError(key, "máximo 255 caracteres")
			}
			p.Name = &name
		case FieldDescription:
			s, err := parseString(key, raw)
			if err != nil {
				return entity.ItemPatch{}, err
			}
			p.Description = &s
		case FieldCategory:
			s, err := parseString(key, raw)
			if err != nil {
				return entity.ItemPatch{}, err
			}
			s = strings.TrimSpace(s)
			if utf8.RuneCountInString(s) > maxCategoryLength {
				return entity.ItemPatch{}, domain.NewValidationError(key, "máximo 100 caracteres")
			}
			p.Category = &s
		case FieldQuantity:
			q, err := ParseQuantity(raw)
			if err != nil {
				return entity.ItemPatch{}, err
			}
			p.Quantity = &q
		case FieldPrice:
			price, err := ParsePrice(raw)
			if err != nil {
				return entity.ItemPatch{}, err
			}
			p.Price = &price
		default:
			if _, ok := readOnlyFields[key]; ok {
				continue
			}
			return entity.ItemPatch{}, domain.NewValidationError(key, "campo desconocido")
		}
	}
	return p, nil
}

// ParseCreate valida los campos de creación: name, quantity y price son obligatorios.
func ParseCreate(fields map[string]json.RawMessage) (entity.ItemPatch, error) {
	p, err := ParsePatch(fields)
	if err != nil {
		return entity.ItemPatch{}, err
	}
	if err := requireFields(p, FieldName, FieldQuantity, FieldPrice); err != nil {
		return entity.ItemPatch{}, err
	}
	return p, nil
}

// ParseReplace valida una actualización completa (PUT): mismos obligatorios que la creación.
func ParseReplace(fields map[string]json.RawMessage) (entity.ItemPatch, error) {
	return ParseCreate(fields)
}

func requireFields(p entity.ItemPatch, names ...string) error {
	for _, name := range names {
		missing := false
		switch name {
		case FieldName:
			missing = p.Name == nil
		case FieldQuantity:
			missing = p.Quantity == nil
		case FieldPrice:
			missing = p.Price == nil
		}
		if missing {
			return domain.NewValidationError(name, "campo requerido")
		}
	}
	return nil
}

// NormalizeName recorta espacios y normaliza a NFC para que la unicidad no dependa de la codificación.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ParseQuantity acepta un entero JSON (15, 15.0) o un texto con un entero ("15").
// Rechaza decimales, negativos, valores nulos y no numéricos.
func ParseQuantity(raw json.RawMessage) (int64, error) {
	d, err := parseNumber(FieldQuantity, raw)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, domain.NewValidationError(FieldQuantity, "debe ser un número entero")
	}
	if d.IsNegative() {
		return 0, domain.NewValidationError(FieldQuantity, "no puede ser negativa")
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, domain.NewValidationError(FieldQuantity, "fuera de rango")
	}
	return d.IntPart(), nil
}

// ParsePrice acepta un número JSON o texto decimal no negativo con máximo 2 decimales.
func ParsePrice(raw json.RawMessage) (decimal.Decimal, error) {
	d, err := parseNumber(FieldPrice, raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, domain.NewValidationError(FieldPrice, "no puede ser negativo")
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Zero, domain.NewValidationError(FieldPrice, "máximo 2 decimales")
	}
	if d.GreaterThanOrEqual(maxPrice) {
		return decimal.Zero, domain.NewValidationError(FieldPrice, "máximo 10 dígitos")
	}
	return d, nil
}

func parseNumber(field string, raw json.RawMessage) (decimal.Decimal, error) {
	if isNull(raw) {
		return decimal.Zero, domain.NewValidationError(field, "no puede ser nulo")
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return decimal.Zero, domain.NewValidationError(field, "debe ser numérico")
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, domain.NewValidationError(field, "debe ser numérico")
	}
	if exp := d.Exponent(); exp > maxNumberExponent || exp < -maxNumberExponent {
		return decimal.Zero, domain.NewValidationError(field, "fuera de rango")
	}
	if d.Coefficient().BitLen() > maxCoefficientBits {
		return decimal.Zero, domain.NewValidationError(field, "fuera de rango")
	}
	return d, nil
}

func parseString(field string, raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", domain.NewValidationError(field, "no puede ser nulo")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", domain.NewValidationError(field, "debe ser texto")
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
