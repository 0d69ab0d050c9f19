package service

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags — булевы флаги, управляющие поведением очереди модерации
// без деплоя: кеширующие заголовки, аналитика. Значение берётся из
// переменной окружения FEATURE_<NAME>, override-ы нужны тестам.
type FeatureFlags struct {
	mu        sync.RWMutex
	overrides map[string]bool
}

// Имена известных флагов.
const (
	FlagCacheHeaders = "CACHE_HEADERS"
	FlagAnalytics    = "MODERATION_ANALYTICS"
)

// NewFeatureFlags создаёт реестр флагов.
func NewFeatureFlags() *FeatureFlags {
	return &FeatureFlags{overrides: make(map[string]bool)}
}

// Enabled возвращает значение флага или fallback, если флаг не задан.
func (f *FeatureFlags) Enabled(name string, fallback bool) bool {
	f.mu.RLock()
	if v, ok := f.overrides[name]; ok {
		f.mu.RUnlock()
		return v
	}
	f.mu.RUnlock()

	raw, ok := os.LookupEnv("FEATURE_" + strings.ToUpper(name))
	if !ok {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// Set выставляет значение флага в обход окружения.
func (f *FeatureFlags) Set(name string, value bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides[name] = value
}
