package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/catalog"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, price, stock, image_url, image_key, brand_id, model_id, color_id, size_id, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	if err := r.checkReferences(ctx, p); err != nil {
		return err
	}
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	url, key := imageColumns(p.Image)
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Price, p.Stock, url, key,
		nullIfEmpty(p.BrandID), nullIfEmpty(p.ModelID), nullIfEmpty(p.ColorID), nullIfEmpty(p.SizeID),
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if verr := productWriteError(err); verr != nil {
			return verr
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID. Devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update reemplaza los campos editables y devuelve el registro resultante; (nil, nil) si no existe.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	if !isUUID(p.ID) {
		return nil, nil
	}
	if err := r.checkReferences(ctx, p); err != nil {
		return nil, err
	}
	query := `
		UPDATE products SET name = $2, price = $3, stock = $4, image_url = $5, image_key = $6,
			brand_id = $7, model_id = $8, color_id = $9, size_id = $10, updated_at = $11
		WHERE id = $1
		RETURNING ` + productColumns
	url, key := imageColumns(p.Image)
	out, err := scanProduct(r.q.QueryRow(ctx, query,
		p.ID, p.Name, p.Price, p.Stock, url, key,
		nullIfEmpty(p.BrandID), nullIfEmpty(p.ModelID), nullIfEmpty(p.ColorID), nullIfEmpty(p.SizeID),
		p.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		if verr := productWriteError(err); verr != nil {
			return nil, verr
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return out, nil
}

// Delete elimina el producto y devuelve el registro borrado; (nil, nil) si no existía.
func (r *ProductRepo) Delete(ctx context.Context, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}
	return p, nil
}

// Find lista la ventana de productos que cumplen el filtro, en el orden pedido.
func (r *ProductRepo) Find(ctx context.Context, q catalog.Query) ([]*entity.Product, error) {
	if !filterIDsValid(q.Filter) {
		return []*entity.Product{}, nil
	}
	where, args := productWhere(q.Filter)
	args = append(args, q.Limit, q.Skip)
	query := `SELECT ` + productColumns + ` FROM products` + where +
		` ORDER BY ` + productOrderBy(q.Sort) +
		` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		if isInvalidID(err) {
			return []*entity.Product{}, nil
		}
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0, q.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		if isInvalidID(err) {
			return []*entity.Product{}, nil
		}
		return nil, fmt.Errorf("list products: %w", err)
	}
	return list, nil
}

// Count cuenta los productos que cumplen el filtro (mismo WHERE que Find).
func (r *ProductRepo) Count(ctx context.Context, f catalog.Filter) (int, error) {
	if !filterIDsValid(f) {
		return 0, nil
	}
	where, args := productWhere(f)
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&total); err != nil {
		if isInvalidID(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// filterIDsValid: un id de filtro que no es UUID no puede coincidir con ninguna fila.
func filterIDsValid(f catalog.Filter) bool {
	return (f.BrandID == "" || isUUID(f.BrandID)) && (f.ColorID == "" || isUUID(f.ColorID))
}

// checkReferenceIDs rechaza ids de referencia mal formados antes de llegar a la base.
func checkReferenceIDs(p *entity.Product) error {
	for _, ref := range []struct{ field, id string }{
		{"brand_id", p.BrandID}, {"model_id", p.ModelID}, {"color_id", p.ColorID}, {"size_id", p.SizeID},
	} {
		if ref.id != "" && !isUUID(ref.id) {
			return domain.NewValidationError(ref.field, "la referencia no existe")
		}
	}
	return nil
}

// productReferences columna de referencia y tabla que la resuelve, en orden de reporte.
var productReferences = []struct{ field, table string }{
	{"brand_id", "brands"}, {"model_id", "models"}, {"color_id", "colors"}, {"size_id", "sizes"},
}

func referenceIDs(p *entity.Product) []string {
	return []string{p.BrandID, p.ModelID, p.ColorID, p.SizeID}
}

// referenceExistsQuery arma una sola consulta con un EXISTS por referencia informada.
// Devuelve también el campo al que corresponde cada columna del resultado.
func referenceExistsQuery(ids []string) (string, []any, []string) {
	var (
		exprs  []string
		args   []any
		fields []string
	)
	for i, ref := range productReferences {
		if ids[i] == "" {
			continue
		}
		args = append(args, ids[i])
		exprs = append(exprs, fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE id = $%d)", ref.table, len(args)))
		fields = append(fields, ref.field)
	}
	if len(exprs) == 0 {
		return "", nil, nil
	}
	return "SELECT " + strings.Join(exprs, ", "), args, fields
}

// checkReferences exige que cada referencia informada exista al momento de escribir.
// Las referencias borradas después quedan colgando y se toleran en lectura.
func (r *ProductRepo) checkReferences(ctx context.Context, p *entity.Product) error {
	if err := checkReferenceIDs(p); err != nil {
		return err
	}
	query, args, fields := referenceExistsQuery(referenceIDs(p))
	if query == "" {
		return nil
	}
	found := make([]bool, len(fields))
	dest := make([]any, len(fields))
	for i := range found {
		dest[i] = &found[i]
	}
	if err := r.q.QueryRow(ctx, query, args...).Scan(dest...); err != nil {
		return fmt.Errorf("check product references: %w", err)
	}
	for i, ok := range found {
		if !ok {
			return domain.NewValidationError(fields[i], "la referencia no existe")
		}
	}
	return nil
}

// productWhere arma la cláusula WHERE y sus argumentos posicionales a partir del filtro.
func productWhere(f catalog.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.Search != "" {
		add(`name ILIKE '%' || ? || '%' ESCAPE '\'`, escapeLike(f.Search))
	}
	if f.BrandID != "" {
		add(`brand_id = ?`, f.BrandID)
	}
	if f.ColorID != "" {
		add(`color_id = ?`, f.ColorID)
	}
	if f.MinPrice != nil {
		add(`price >= ?`, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add(`price <= ?`, *f.MaxPrice)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// productOrderBy traduce el criterio a SQL; el desempate es siempre created_at DESC, id DESC.
func productOrderBy(s catalog.SortKey) string {
	const tiebreak = "created_at DESC, id DESC"
	switch s {
	case catalog.SortPriceAsc:
		return "price ASC, " + tiebreak
	case catalog.SortPriceDesc:
		return "price DESC, " + tiebreak
	default:
		return tiebreak
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutraliza los comodines de LIKE para que la búsqueda sea literal.
func escapeLike(s string) string { return likeEscaper.Replace(s) }

func imageColumns(img *entity.ImageRef) (any, any) {
	if img == nil || img.URL == "" {
		return nil, nil
	}
	return img.URL, nullIfEmpty(img.Key)
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var (
		p                                 entity.Product
		url, key                          *string
		brandID, modelID, colorID, sizeID *string
	)
	if err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.Stock, &url, &key,
		&brandID, &modelID, &colorID, &sizeID, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if url != nil && *url != "" {
		p.Image = &entity.ImageRef{URL: *url, Key: derefString(key)}
	}
	p.BrandID = derefString(brandID)
	p.ModelID = derefString(modelID)
	p.ColorID = derefString(colorID)
	p.SizeID = derefString(sizeID)
	return &p, nil
}

// productWriteError traduce violaciones de integridad a errores de validación.
func productWriteError(err error) error {
	switch {
	case isInvalidID(err):
		return domain.NewValidationError("id", "formato de id inválido")
	case isCheckViolation(err):
		if strings.Contains(constraintName(err), "stock") {
			return domain.NewValidationError("stock", "no puede ser negativo")
		}
		return domain.NewValidationError("price", "no puede ser negativo")
	}
	return nil
}
