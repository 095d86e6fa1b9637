package http

import (
	"context"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/ports"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/catalog"
)

// Campo multipart con la imagen del producto.
const imageField = "image"

// ProductService ciclo de vida de productos (lo implementa *usecase.ProductUseCase).
type ProductService interface {
	Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProductResponse, error)
	Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id string) (string, error)
	List(ctx context.Context, raw catalog.RawListParams) (*dto.ProductPage, error)
}

// ProductHandler maneja las peticiones HTTP para Product.
type ProductHandler struct {
	uc ProductService
}

// NewProductHandler construye el handler.
func NewProductHandler(uc ProductService) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create godoc
// @Summary      Crear producto
// @Description  Acepta multipart/form-data (campo "image" opcional) o JSON.
// @Tags         products
// @Security     Bearer
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Param        name      formData  string  true   "Nombre"
// @Param        price     formData  string  true   "Precio"
// @Param        stock     formData  string  true   "Stock"
// @Param        brand_id  formData  string  true   "Marca"
// @Param        model_id  formData  string  false  "Modelo"
// @Param        color_id  formData  string  false  "Color"
// @Param        size_id   formData  string  false  "Talla"
// @Param        image     formData  file    false  "Imagen"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	img, err := readImage(c)
	if err != nil {
		return err
	}
	in.Image = img
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Description  Filtro por texto, marca, color y rango de precio. Valores no numéricos se ignoran.
// @Tags         products
// @Produce      json
// @Param        search    query  string  false  "Texto contenido en el nombre"
// @Param        brandId   query  string  false  "Marca"
// @Param        colorId   query  string  false  "Color"
// @Param        minPrice  query  string  false  "Precio mínimo (inclusive)"
// @Param        maxPrice  query  string  false  "Precio máximo (inclusive)"
// @Param        sort      query  string  false  "price-asc | price-desc | newest"
// @Param        page      query  string  false  "Página (default 1)"
// @Param        limit     query  string  false  "Tamaño de página (default 8, máx 100)"
// @Success      200  {object}  dto.ProductPage
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var raw catalog.RawListParams
	if err := c.QueryParser(&raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.List(c.UserContext(), raw)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Description  Campos ausentes no cambian; precio y stock no numéricos conservan el valor anterior.
// @Tags         products
// @Security     Bearer
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Param        id     path      string  true   "ID del producto"
// @Param        image  formData  file    false  "Imagen nueva"
// @Success      200  {object}  dto.ProductResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	img, err := readImage(c)
	if err != nil {
		return err
	}
	in.Image = img
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.DeletedResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := h.uc.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.DeletedResponse{ID: id})
}

// readImage extrae la imagen del formulario. Nil si la petición no es multipart o no trae el campo.
func readImage(c *fiber.Ctx) (*ports.ImageUpload, error) {
	fh, err := formFile(c, imageField)
	if err != nil || fh == nil {
		return nil, err
	}
	data, err := readFormFile(fh)
	if err != nil {
		return nil, domain.NewValidationError(imageField, "no se pudo leer el archivo")
	}
	return &ports.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

func formFile(c *fiber.Ctx, field string) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, domain.NewValidationError(field, "formulario multipart inválido")
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	return files[0], nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
