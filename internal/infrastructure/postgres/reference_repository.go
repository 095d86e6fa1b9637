package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var (
	_ repository.ResourceStore[*entity.Brand] = (*ReferenceRepo[*entity.Brand])(nil)
	_ repository.ResourceStore[*entity.Model] = (*ReferenceRepo[*entity.Model])(nil)
	_ repository.ResourceStore[*entity.Color] = (*ReferenceRepo[*entity.Color])(nil)
	_ repository.ResourceStore[*entity.Size]  = (*ReferenceRepo[*entity.Size])(nil)
)

// referenceTable describe cómo mapear una entidad de referencia a su tabla.
// columns, fields y values comparten el mismo orden; id es siempre la primera columna.
type referenceTable[T entity.Resource] struct {
	name    string
	columns []string
	newFn   func() T
	fields  func(T) []any // destinos para Scan
	values  func(T) []any // argumentos para INSERT/UPDATE
}

// ReferenceRepo almacén genérico para brand, model, color y size.
type ReferenceRepo[T entity.Resource] struct {
	q     Querier
	table referenceTable[T]
}

func newReferenceRepo[T entity.Resource](q Querier, t referenceTable[T]) *ReferenceRepo[T] {
	return &ReferenceRepo[T]{q: q, table: t}
}

func plainReference[T entity.Resource](name string, newFn func() T, ref func(T) *entity.Reference) referenceTable[T] {
	return referenceTable[T]{
		name:    name,
		columns: []string{"id", "name", "created_at", "updated_at"},
		newFn:   newFn,
		fields: func(doc T) []any {
			r := ref(doc)
			return []any{&r.ID, &r.Name, &r.CreatedAt, &r.UpdatedAt}
		},
		values: func(doc T) []any {
			r := ref(doc)
			return []any{r.ID, r.Name, r.CreatedAt, r.UpdatedAt}
		},
	}
}

// NewBrandRepository construye el almacén de marcas.
func NewBrandRepository(q Querier) *ReferenceRepo[*entity.Brand] {
	return newReferenceRepo(q, plainReference("brands",
		func() *entity.Brand { return &entity.Brand{} },
		func(b *entity.Brand) *entity.Reference { return &b.Reference }))
}

// NewModelRepository construye el almacén de modelos.
func NewModelRepository(q Querier) *ReferenceRepo[*entity.Model] {
	return newReferenceRepo(q, plainReference("models",
		func() *entity.Model { return &entity.Model{} },
		func(m *entity.Model) *entity.Reference { return &m.Reference }))
}

// NewSizeRepository construye el almacén de tallas.
func NewSizeRepository(q Querier) *ReferenceRepo[*entity.Size] {
	return newReferenceRepo(q, plainReference("sizes",
		func() *entity.Size { return &entity.Size{} },
		func(s *entity.Size) *entity.Reference { return &s.Reference }))
}

// NewColorRepository construye el almacén de colores (incluye hex_code).
func NewColorRepository(q Querier) *ReferenceRepo[*entity.Color] {
	return newReferenceRepo(q, referenceTable[*entity.Color]{
		name:    "colors",
		columns: []string{"id", "name", "hex_code", "created_at", "updated_at"},
		newFn:   func() *entity.Color { return &entity.Color{} },
		fields: func(c *entity.Color) []any {
			return []any{&c.ID, &c.Name, &c.HexCode, &c.CreatedAt, &c.UpdatedAt}
		},
		values: func(c *entity.Color) []any {
			return []any{c.ID, c.Name, c.HexCode, c.CreatedAt, c.UpdatedAt}
		},
	})
}

func (r *ReferenceRepo[T]) selectColumns() string {
	return strings.Join(r.table.columns, ", ")
}

// Find devuelve todos los registros ordenados por nombre.
func (r *ReferenceRepo[T]) Find(ctx context.Context) ([]T, error) {
	query := `SELECT ` + r.selectColumns() + ` FROM ` + r.table.name + ` ORDER BY name COLLATE "C" ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table.name, err)
	}
	defer rows.Close()
	list := make([]T, 0)
	for rows.Next() {
		doc := r.table.newFn()
		if err := rows.Scan(r.table.fields(doc)...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table.name, err)
		}
		list = append(list, doc)
	}
	return list, rows.Err()
}

// FindByID devuelve domain.ErrNotFound si el id no existe.
func (r *ReferenceRepo[T]) FindByID(ctx context.Context, id string) (T, error) {
	var zero T
	if !isUUID(id) {
		return zero, domain.ErrNotFound
	}
	query := `SELECT ` + r.selectColumns() + ` FROM ` + r.table.name + ` WHERE id = $1`
	doc := r.table.newFn()
	if err := r.q.QueryRow(ctx, query, id).Scan(r.table.fields(doc)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, domain.ErrNotFound
		}
		return zero, fmt.Errorf("get %s: %w", r.table.name, err)
	}
	return doc, nil
}

// Insert persiste un registro nuevo; un nombre repetido es un error de validación.
func (r *ReferenceRepo[T]) Insert(ctx context.Context, doc T) error {
	placeholders := make([]string, len(r.table.columns))
	for i := range placeholders {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	query := `INSERT INTO ` + r.table.name + ` (` + r.selectColumns() + `) VALUES (` + strings.Join(placeholders, ", ") + `)`
	if _, err := r.q.Exec(ctx, query, r.table.values(doc)...); err != nil {
		if isUniqueViolation(err) {
			return domain.NewValidationError("name", "ya existe")
		}
		return fmt.Errorf("insert %s: %w", r.table.name, err)
	}
	return nil
}

// UpdateByID reemplaza todas las columnas salvo id y created_at y devuelve el registro resultante.
func (r *ReferenceRepo[T]) UpdateByID(ctx context.Context, id string, doc T) (T, error) {
	var zero T
	if !isUUID(id) {
		return zero, domain.ErrNotFound
	}
	values := r.table.values(doc)
	args := []any{id}
	var sets []string
	for i, col := range r.table.columns {
		if col == "id" || col == "created_at" {
			continue
		}
		args = append(args, values[i])
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	query := `UPDATE ` + r.table.name + ` SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + r.selectColumns()
	out := r.table.newFn()
	if err := r.q.QueryRow(ctx, query, args...).Scan(r.table.fields(out)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return zero, domain.NewValidationError("name", "ya existe")
		}
		return zero, fmt.Errorf("update %s: %w", r.table.name, err)
	}
	return out, nil
}

// DeleteByID elimina el registro y lo devuelve. Los productos que lo referencian conservan el id, que queda colgando.
func (r *ReferenceRepo[T]) DeleteByID(ctx context.Context, id string) (T, error) {
	var zero T
	if !isUUID(id) {
		return zero, domain.ErrNotFound
	}
	query := `DELETE FROM ` + r.table.name + ` WHERE id = $1 RETURNING ` + r.selectColumns()
	out := r.table.newFn()
	if err := r.q.QueryRow(ctx, query, id).Scan(r.table.fields(out)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, domain.ErrNotFound
		}
		return zero, fmt.Errorf("delete %s: %w", r.table.name, err)
	}
	return out, nil
}
