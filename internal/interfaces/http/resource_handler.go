package http

import (
	"context"
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// ResourceService CRUD genérico que expone el handler (lo implementa *resource.Service[T]).
type ResourceService[T entity.Resource] interface {
	Create(ctx context.Context, payload []byte) (T, error)
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, id string, payload []byte) (T, error)
	Delete(ctx context.Context, id string) (string, error)
}

// ResourceHandler expone marcas, modelos, colores y tallas con el mismo código.
// El payload se entrega crudo al servicio: la decodificación y las reglas de campo son suyas.
type ResourceHandler[T entity.Resource] struct {
	svc ResourceService[T]
}

// NewResourceHandler construye el handler para una entidad de referencia.
func NewResourceHandler[T entity.Resource](svc ResourceService[T]) *ResourceHandler[T] {
	return &ResourceHandler[T]{svc: svc}
}

// List devuelve todos los registros ordenados por nombre.
func (h *ResourceHandler[T]) List(c *fiber.Ctx) error {
	list, err := h.svc.List(c.UserContext())
	if err != nil {
		return err
	}
	if list == nil {
		list = []T{}
	}
	return c.JSON(list)
}

// GetByID devuelve un registro o 404.
func (h *ResourceHandler[T]) GetByID(c *fiber.Ctx) error {
	doc, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(doc)
}

// Create inserta un registro nuevo (201).
func (h *ResourceHandler[T]) Create(c *fiber.Ctx) error {
	doc, err := h.svc.Create(c.UserContext(), c.Body())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// Update mezcla el payload sobre el registro existente.
func (h *ResourceHandler[T]) Update(c *fiber.Ctx) error {
	doc, err := h.svc.Update(c.UserContext(), c.Params("id"), c.Body())
	if err != nil {
		return err
	}
	return c.JSON(doc)
}

// Delete elimina el registro y devuelve su id.
func (h *ResourceHandler[T]) Delete(c *fiber.Ctx) error {
	id, err := h.svc.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.DeletedResponse{ID: id})
}

// mountResource registra las rutas CRUD de una entidad: lectura pública, escritura solo admin.
func mountResource[T entity.Resource](r fiber.Router, path string, svc ResourceService[T], guard ...fiber.Handler) {
	h := NewResourceHandler(svc)
	g := r.Group(path)
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Post("/", guarded(guard, h.Create)...)
	g.Put("/:id", guarded(guard, h.Update)...)
	g.Delete("/:id", guarded(guard, h.Delete)...)
}

func guarded(guard []fiber.Handler, h fiber.Handler) []fiber.Handler {
	return append(slices.Clip(guard), h)
}
