// Package tasks ejecuta efectos secundarios "fire-and-forget" (borrado de imágenes,
// notificaciones) fuera del ciclo petición-respuesta.
//
// Las tareas no se reintentan ni se persisten: si el proceso termina antes de ejecutarlas
// se pierden (entrega a lo sumo una vez).
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// ErrClosed se devuelve al cerrar un dispatcher ya cerrado.
var ErrClosed = errors.New("tasks: dispatcher cerrado")

// Config parámetros del dispatcher.
type Config struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration // tiempo máximo por tarea
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

type task struct {
	name string
	fn   func(ctx context.Context) error
}

// Dispatcher cola acotada atendida por un número fijo de workers.
type Dispatcher struct {
	log     *logger.Logger
	queue   chan task
	timeout time.Duration
	group   *errgroup.Group
	ctx     context.Context
	cancel  context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// New arranca los workers. Llamar Close al apagar el proceso.
func New(cfg Config, log *logger.Logger) *Dispatcher {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		log:     log.Named("tasks"),
		queue:   make(chan task, cfg.QueueSize),
		timeout: cfg.Timeout,
		group:   &errgroup.Group{},
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := 0; i < cfg.Workers; i++ {
		d.group.Go(d.work)
	}
	return d
}

// Dispatch encola la tarea sin bloquear. Devuelve false si la cola está llena o el
// dispatcher ya fue cerrado; en ambos casos la tarea se descarta y queda registrada.
func (d *Dispatcher) Dispatch(name string, fn func(ctx context.Context) error) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("task", name).Msg("dispatcher cerrado, tarea descartada")
		return false
	}
	select {
	case d.queue <- task{name: name, fn: fn}:
		return true
	default:
		d.log.Warn().Str("task", name).Msg("cola llena, tarea descartada")
		return false
	}
}

// Close deja de aceptar tareas, drena la cola y espera a los workers.
// Si ctx vence antes, cancela las tareas en curso y devuelve ctx.Err().
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- d.group.Wait() }()

	select {
	case err := <-done:
		d.cancel()
		return err
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}

func (d *Dispatcher) work() error {
	for t := range d.queue {
		d.run(t)
	}
	return nil
}

func (d *Dispatcher) run(t task) {
	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()
	start := time.Now()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return t.fn(ctx)
	}()

	if err != nil {
		d.log.Error().Err(err).Str("task", t.name).Dur("elapsed", time.Since(start)).Msg("tarea fallida")
		return
	}
	d.log.Debug().Str("task", t.name).Dur("elapsed", time.Since(start)).Msg("tarea completada")
}
