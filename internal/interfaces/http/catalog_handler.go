package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain"
)

const (
	mimeXLSX    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	importField = "file"
)

// CatalogService planilla y ficha técnica (lo implementa *catalog.UseCase).
type CatalogService interface {
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, r io.Reader) (*dto.ImportResult, error)
	SpecSheet(ctx context.Context, id string) ([]byte, error)
}

// CatalogHandler exportación, importación masiva y ficha PDF.
type CatalogHandler struct {
	uc CatalogService
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc CatalogService) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// Export godoc
// @Summary      Exportar catálogo a Excel
// @Tags         products
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/products/export [get]
func (h *CatalogHandler) Export(c *fiber.Ctx) error {
	data, err := h.uc.Export(c.UserContext())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, mimeXLSX)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="productos.xlsx"`)
	return c.Send(data)
}

// Import godoc
// @Summary      Carga masiva desde Excel
// @Description  Cada fila se crea por separado; una fila inválida no aborta el lote.
// @Tags         products
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Planilla .xlsx"
// @Success      200  {object}  dto.ImportResult
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/products/import [post]
func (h *CatalogHandler) Import(c *fiber.Ctx) error {
	fh, err := formFile(c, importField)
	if err != nil {
		return err
	}
	if fh == nil {
		return domain.NewValidationError(importField, "es obligatorio")
	}
	data, err := readFormFile(fh)
	if err != nil {
		return domain.NewValidationError(importField, "no se pudo leer el archivo")
	}
	out, err := h.uc.Import(c.UserContext(), bytes.NewReader(data))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// SpecSheet godoc
// @Summary      Ficha técnica del producto en PDF
// @Tags         products
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/pdf [get]
func (h *CatalogHandler) SpecSheet(c *fiber.Ctx) error {
	id := c.Params("id")
	data, err := h.uc.SpecSheet(c.UserContext(), id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="producto-%s.pdf"`, safeFilename(id)))
	return c.Send(data)
}

// safeFilename deja solo letras ASCII, dígitos, '-' y '_' para usar el valor dentro de
// Content-Disposition; el resto se reemplaza por '_'.
func safeFilename(s string) string {
	if s == "" {
		return "sin-id"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
