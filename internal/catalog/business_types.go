package catalog

import (
	"sort"
	"strings"
	"sync"

	"qrmenu-backend/internal/models"
)

var defaultBusinessTypes = []models.BusinessType{
	{Key: "restaurant", Label: "Restaurant", Icon: "utensils", Color: "#ef4444"},
	{Key: "cafe", Label: "Café", Icon: "coffee", Color: "#92400e"},
	{Key: "bakery", Label: "Boulangerie", Icon: "croissant", Color: "#f59e0b"},
	{Key: "bar", Label: "Bar", Icon: "wine", Color: "#7c3aed"},
	{Key: "fastfood", Label: "Fast-food", Icon: "burger", Color: "#f97316"},
	{Key: "pizzeria", Label: "Pizzeria", Icon: "pizza", Color: "#dc2626"},
	{Key: "hotel", Label: "Hôtel", Icon: "hotel", Color: "#0ea5e9"},
	{Key: "foodtruck", Label: "Food truck", Icon: "truck", Color: "#10b981"},
}

// BusinessTypeRegistry maps a business-type key to its display metadata.
// Lookups never fail: unknown keys resolve to the restaurant entry. Deleting a
// type does not touch businesses that still reference it.
type BusinessTypeRegistry struct {
	mu    sync.RWMutex
	types map[string]models.BusinessType
}

func NewBusinessTypeRegistry() *BusinessTypeRegistry {
	r := &BusinessTypeRegistry{types: make(map[string]models.BusinessType, len(defaultBusinessTypes))}
	for _, t := range defaultBusinessTypes {
		r.types[t.Key] = t
	}
	return r
}

func (r *BusinessTypeRegistry) Get(key string) models.BusinessType {
	if t, ok := r.Lookup(key); ok {
		return t
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.types[models.DefaultBusinessType]; ok {
		return t
	}
	// the default entry is protected from deletion, this only guards against a zero registry
	return defaultBusinessTypes[0]
}

func (r *BusinessTypeRegistry) Lookup(key string) (models.BusinessType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[normalizeKey(key)]
	return t, ok
}

func (r *BusinessTypeRegistry) List() []models.BusinessType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]models.BusinessType, 0, len(r.types))
	for _, t := range r.types {
		res = append(res, t)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Key < res[j].Key })
	return res
}

func (r *BusinessTypeRegistry) Add(t models.BusinessType) error {
	t.Key = normalizeKey(t.Key)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[t.Key]; ok {
		return models.ErrBusinessTypeExists
	}
	r.types[t.Key] = t
	return nil
}

// Update replaces the metadata of an existing key. The key itself is immutable.
func (r *BusinessTypeRegistry) Update(key string, t models.BusinessType) error {
	key = normalizeKey(key)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[key]; !ok {
		return models.ErrBusinessTypeNotFound
	}
	t.Key = key
	r.types[key] = t
	return nil
}

func (r *BusinessTypeRegistry) Delete(key string) error {
	key = normalizeKey(key)
	if key == models.DefaultBusinessType {
		return models.ErrDefaultBusinessType
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[key]; !ok {
		return models.ErrBusinessTypeNotFound
	}
	delete(r.types, key)
	return nil
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
