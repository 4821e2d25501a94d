// Package ui persists display preferences (language, theme) across runs.
package ui

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hpcatalog/catalogadmin/pkg/kvstore"
)

// StorageKey is the durable storage entry holding UI preferences.
const StorageKey = "ui"

// Lang is a display language.
type Lang string

const (
	LangES Lang = "es"
	LangEN Lang = "en"
)

// Theme is a display theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type prefs struct {
	Lang  Lang  `json:"lang"`
	Theme Theme `json:"theme"`
}

// Prefs holds the current UI preferences and keeps them persisted.
type Prefs struct {
	store kvstore.Store

	mu sync.Mutex
	p  prefs
}

// NewPrefs restores preferences from storage, falling back to Spanish and
// the light theme when the entry is absent or malformed.
func NewPrefs(ctx context.Context, store kvstore.Store) *Prefs {
	out := &Prefs{store: store, p: prefs{Lang: LangES, Theme: ThemeLight}}

	raw, ok, err := store.Get(ctx, StorageKey)
	if err != nil || !ok {
		return out
	}

	var saved prefs
	if json.Unmarshal([]byte(raw), &saved) != nil {
		return out
	}
	if saved.Lang == LangES || saved.Lang == LangEN {
		out.p.Lang = saved.Lang
	}
	if saved.Theme == ThemeLight || saved.Theme == ThemeDark {
		out.p.Theme = saved.Theme
	}
	return out
}

// Lang returns the current language.
func (p *Prefs) Lang() Lang {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.p.Lang
}

// Theme returns the current theme.
func (p *Prefs) Theme() Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.p.Theme
}

// ToggleLang switches between Spanish and English and persists the result.
func (p *Prefs) ToggleLang(ctx context.Context) Lang {
	p.mu.Lock()
	if p.p.Lang == LangES {
		p.p.Lang = LangEN
	} else {
		p.p.Lang = LangES
	}
	out := p.p.Lang
	p.mu.Unlock()

	p.persist(ctx)
	return out
}

// ToggleTheme switches between light and dark and persists the result.
func (p *Prefs) ToggleTheme(ctx context.Context) Theme {
	p.mu.Lock()
	if p.p.Theme == ThemeLight {
		p.p.Theme = ThemeDark
	} else {
		p.p.Theme = ThemeLight
	}
	out := p.p.Theme
	p.mu.Unlock()

	p.persist(ctx)
	return out
}

// persist is best effort; a storage failure never surfaces to the caller.
func (p *Prefs) persist(ctx context.Context) {
	p.mu.Lock()
	raw, err := json.Marshal(p.p)
	p.mu.Unlock()
	if err != nil {
		return
	}
	_ = p.store.Set(ctx, StorageKey, string(raw))
}
