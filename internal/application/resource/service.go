// Package resource implementa el CRUD genérico de las entidades de referencia
// (marcas, modelos, colores, tallas). El servicio no conoce ninguna entidad concreta:
// solo usa la capacidad entity.Resource y el puerto repository.ResourceStore.
package resource

import (
	"context"
	"slices"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

// Claves que el payload nunca puede sobrescribir.
var protectedKeys = []string{"id", "created_at", "updated_at"}

// Service CRUD uniforme sobre cualquier ResourceStore.
type Service[T entity.Resource] struct {
	store repository.ResourceStore[T]
	newFn func() T
	now   func() time.Time
}

// NewService construye el servicio. newFn devuelve un documento vacío listo para decodificar.
func NewService[T entity.Resource](store repository.ResourceStore[T], newFn func() T) *Service[T] {
	return &Service[T]{store: store, newFn: newFn, now: time.Now}
}

// Create decodifica el payload, aplica las reglas de campo y persiste.
func (s *Service[T]) Create(ctx context.Context, payload []byte) (T, error) {
	var zero T
	doc := s.newFn()
	if err := mergeInto(doc, payload); err != nil {
		return zero, err
	}
	doc.SetID(uuid.New().String())
	if err := doc.Validate(); err != nil {
		return zero, err
	}
	doc.Touch(s.now())
	if err := s.store.Insert(ctx, doc); err != nil {
		return zero, err
	}
	return doc, nil
}

// List devuelve todos los registros ordenados por nombre ascendente.
func (s *Service[T]) List(ctx context.Context) ([]T, error) {
	list, err := s.store.Find(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(list, func(a, b T) int {
		return strings.Compare(a.DisplayName(), b.DisplayName())
	})
	return list, nil
}

// Get obtiene un registro por id.
func (s *Service[T]) Get(ctx context.Context, id string) (T, error) {
	return s.store.FindByID(ctx, id)
}

// Update obtiene el registro, fusiona el payload (solo las claves presentes), revalida y persiste.
func (s *Service[T]) Update(ctx context.Context, id string, payload []byte) (T, error) {
	var zero T
	doc, err := s.store.FindByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if err := mergeInto(doc, payload); err != nil {
		return zero, err
	}
	doc.SetID(id)
	if err := doc.Validate(); err != nil {
		return zero, err
	}
	doc.Touch(s.now())
	return s.store.UpdateByID(ctx, id, doc)
}

// Delete elimina el registro y devuelve su id.
func (s *Service[T]) Delete(ctx context.Context, id string) (string, error) {
	deleted, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return "", err
	}
	return deleted.GetID(), nil
}

// Index devuelve id -> nombre de todos los registros (resolución de referencias en
// exportaciones, importaciones y fichas).
func (s *Service[T]) Index(ctx context.Context) (map[string]string, error) {
	list, err := s.store.Find(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(list))
	for _, doc := range list {
		out[doc.GetID()] = doc.DisplayName()
	}
	return out, nil
}

// mergeInto decodifica payload (objeto JSON) sobre doc descartando las claves protegidas.
func mergeInto(doc any, payload []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil || fields == nil {
		return domain.NewValidationError("", "el cuerpo debe ser un objeto JSON")
	}
	for _, k := range protectedKeys {
		delete(fields, k)
	}
	clean, err := json.Marshal(fields)
	if err != nil {
		return domain.NewValidationError("", "cuerpo inválido")
	}
	if err := json.Unmarshal(clean, doc); err != nil {
		return domain.NewValidationError("", "tipo de dato inválido en el cuerpo")
	}
	return nil
}
