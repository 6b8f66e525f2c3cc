package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/ipsfa/inventario-client/internal/serviceerr"
)

const (
	catalogCategories = "categories"
	catalogUnits      = "units"
)

// Catalog resolves categories and units given by name or id on the command
// line. Lists are cached for ttl.
type Catalog struct {
	categories *CategoryStore
	units      *UnitStore
	cache      *cache.Cache
}

func NewCatalog(categories *CategoryStore, units *UnitStore, ttl time.Duration) *Catalog {
	return &Catalog{
		categories: categories,
		units:      units,
		cache:      cache.New(ttl, 2*ttl),
	}
}

// Category finds a category by id or by case-insensitive name.
func (c *Catalog) Category(ctx context.Context, ref string) (Category, error) {
	list, err := cachedList(ctx, c.cache, catalogCategories, func(ctx context.Context) ([]Category, error) {
		return c.categories.FetchAll(ctx, nil)
	})
	if err != nil {
		return Category{}, err
	}

	return lookup(list, ref, "category", func(cat Category) string { return cat.Name })
}

// Unit finds an administrative unit by id, code or case-insensitive name.
func (c *Catalog) Unit(ctx context.Context, ref string) (Unit, error) {
	list, err := cachedList(ctx, c.cache, catalogUnits, func(ctx context.Context) ([]Unit, error) {
		return c.units.FetchAll(ctx, nil)
	})
	if err != nil {
		return Unit{}, err
	}

	for _, u := range list {
		if u.Code != "" && u.Code == ref {
			return u, nil
		}
	}

	return lookup(list, ref, "administrative unit", func(u Unit) string { return u.Name })
}

// Invalidate drops the cached lists.
func (c *Catalog) Invalidate() {
	c.cache.Flush()
}

func cachedList[T any](ctx context.Context, c *cache.Cache, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if v, ok := c.Get(key); ok {
		if list, ok := v.([]T); ok {
			return list, nil
		}
	}

	list, err := load(ctx)
	if err != nil {
		return nil, err
	}

	c.Set(key, list, cache.DefaultExpiration)

	return list, nil
}

func lookup[T interface{ Key() int64 }](list []T, ref, label string, name func(T) string) (T, error) {
	var zero T

	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, item := range list {
			if item.Key() == id {
				return item, nil
			}
		}

		return zero, fmt.Errorf("%s %d: %w", label, id, serviceerr.ErrNotFound)
	}

	for _, item := range list {
		if strings.EqualFold(name(item), ref) {
			return item, nil
		}
	}

	return zero, fmt.Errorf("%s %q: %w", label, ref, serviceerr.ErrNotFound)
}
