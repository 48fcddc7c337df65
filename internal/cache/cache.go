// Package cache tem um mapa genérico com expiração por chave. É usado para
// os gráficos por usuário e para os tokens já validados.
package cache

import (
	"sync"
	"time"
)

// sweepEvery é o intervalo da remoção de itens vencidos
const sweepEvery = time.Minute

type entry[V any] struct {
	value   V
	expires time.Time
}

func (e *entry[V]) live(now time.Time) bool {
	return now.Before(e.expires)
}

// Cache guarda valores de V com TTL; seguro para uso concorrente
type Cache[V any] struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]*entry[V]

	stop     chan struct{}
	stopOnce sync.Once
}

// NewCache cria o cache e inicia a goroutine de limpeza; chame Stop ao terminar
func NewCache[V any](ttl time.Duration) *Cache[V] {
	c := &Cache[V]{
		ttl:     ttl,
		entries: make(map[string]*entry[V]),
		stop:    make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// Get retorna o valor se a chave existir e não tiver vencido
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && e.live(time.Now()) {
		return e.value, true
	}
	var zero V
	return zero, false
}

// GetOrCreate retorna o valor existente ou armazena o criado por create.
// create roda sob o lock de escrita, então dois chamadores nunca criam
// valores diferentes para a mesma chave.
func (c *Cache[V]) GetOrCreate(key string, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if e, ok := c.entries[key]; ok && e.live(now) {
		return e.value
	}
	v := create()
	c.entries[key] = &entry[V]{value: v, expires: now.Add(c.ttl)}
	return v
}

func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL grava com um TTL próprio (ex.: o exp de um token)
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = &entry[V]{value: value, expires: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Touch renova a expiração de uma chave existente
func (c *Cache[V]) Touch(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.expires = time.Now().Add(c.ttl)
	}
}

// Len conta as entradas, vencidas ou não, ainda não removidas
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stop encerra a limpeza; pode ser chamado mais de uma vez
func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache[V]) sweepLoop() {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			c.sweep(now)
		case <-c.stop:
			return
		}
	}
}

func (c *Cache[V]) sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if !e.live(now) {
			delete(c.entries, key)
		}
	}
}
