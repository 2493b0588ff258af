package lock

import (
	"context"
	"strings"
	"sync"

	"github.com/jhoicas/inventario-audit-api/internal/application/inventory"
)

var _ inventory.RecordLocker = (*LocalLocker)(nil)

// LocalLocker exclusión mutua por clave dentro del proceso.
// Cada clave tiene su propio semáforo; las entradas se liberan cuando nadie las usa.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

// NewLocalLocker construye el locker en memoria.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyLock)}
}

// Lock bloquea key hasta obtenerla o hasta que ctx termine.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	// la clave puede venir de un buffer reutilizado por el servidor HTTP
	key = strings.Clone(key)
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.sem
			l.release(key, kl)
		})
	}, nil
}

func (l *LocalLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// size número de claves con bloqueos activos o en espera.
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
