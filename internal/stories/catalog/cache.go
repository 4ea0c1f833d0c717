package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// snapshot - список активных товаров и справочники на момент загрузки.
type snapshot struct {
	products    []Product
	countries   map[int64]Country
	plantations map[int64]Plantation
	types       map[int64]FlowerType
	loadedAt    time.Time
}

// productCache кэширует каталог с фиксированным TTL.
// Правка товара в админке доезжает до бота не позже чем через TTL -
// принятое окно устаревания, не ошибка.
type productCache struct {
	mu      sync.RWMutex
	storage Storage
	ttl     time.Duration
	now     func() time.Time
	cur     *snapshot
}

func newProductCache(storage Storage, ttl time.Duration) *productCache {
	return &productCache{
		storage: storage,
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *productCache) get(ctx context.Context) (*snapshot, error) {
	c.mu.RLock()
	cur := c.cur
	c.mu.RUnlock()

	if cur != nil && c.now().Sub(cur.loadedAt) < c.ttl {
		return cur, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Кто-то мог обновить кэш пока мы ждали блокировку
	if c.cur != nil && c.now().Sub(c.cur.loadedAt) < c.ttl {
		return c.cur, nil
	}

	snap, err := c.load(ctx)
	if err != nil {
		// Старый снимок лучше чем отказ всему боту
		if c.cur != nil {
			return c.cur, nil
		}
		return nil, err
	}

	c.cur = snap
	return snap, nil
}

func (c *productCache) load(ctx context.Context) (*snapshot, error) {
	products, err := c.storage.ListProducts(ctx, ProductListCriteria{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	countries, err := c.storage.ListCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}

	plantations, err := c.storage.ListPlantations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plantations: %w", err)
	}

	types, err := c.storage.ListFlowerTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flower types: %w", err)
	}

	snap := &snapshot{
		products:    products,
		countries:   make(map[int64]Country, len(countries)),
		plantations: make(map[int64]Plantation, len(plantations)),
		types:       make(map[int64]FlowerType, len(types)),
		loadedAt:    c.now(),
	}
	for _, cn := range countries {
		snap.countries[cn.ID] = cn
	}
	for _, pl := range plantations {
		snap.plantations[pl.ID] = pl
	}
	for _, ft := range types {
		snap.types[ft.ID] = ft
	}

	return snap, nil
}
