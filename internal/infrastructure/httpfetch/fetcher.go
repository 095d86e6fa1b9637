// Package httpfetch descarga recursos remotos (imágenes de producto) con el cliente HTTP de fiber.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/catalogo-api/internal/application/ports"
)

var _ ports.ImageFetcher = (*Fetcher)(nil)

// DefaultMaxBytes tamaño máximo aceptado por descarga.
const DefaultMaxBytes = 8 << 20

// Fetcher cliente GET con espera acotada.
type Fetcher struct {
	timeout  time.Duration
	maxBytes int
}

// New construye el fetcher. timeout se aplica cuando ctx no trae deadline propio.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Fetcher{timeout: timeout, maxBytes: DefaultMaxBytes}
}

// Fetch hace GET a url y devuelve cuerpo y content-type. Cualquier estado distinto de 200 es error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	timeout := f.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, "", context.DeadlineExceeded
	}

	agent := fiber.Get(url).Timeout(timeout).MaxRedirectsCount(3)
	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	agent.SetResponse(resp)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, "", fmt.Errorf("GET %s: %w", url, errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return nil, "", fmt.Errorf("GET %s: estado %d", url, code)
	}
	if len(body) > f.maxBytes {
		return nil, "", fmt.Errorf("GET %s: %d bytes excede el máximo", url, len(body))
	}
	return body, string(resp.Header.ContentType()), nil
}
