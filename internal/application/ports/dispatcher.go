package ports

import "context"

// Dispatcher ejecuta tareas en segundo plano sin que el llamador espere su resultado.
type Dispatcher interface {
	Dispatch(name string, fn func(ctx context.Context) error) bool
}
