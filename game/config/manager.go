package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/stackquest/game/engine"
	"github.com/wricardo/stackquest/game/service"
)

// DefaultPackID is preferred as the default pack when present.
const DefaultPackID = "classic"

const (
	SourceBuiltin = "builtin"
	SourceDisk    = "disk"
)

var ErrInvalidPack = errors.New("invalid pack")

//go:embed builtin
var builtinFS embed.FS

// BuiltinPacks returns the packs compiled into the binary, one directory per
// pack.
func BuiltinPacks() fs.FS {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(err)
	}
	return sub
}

type packSource struct {
	name string
	fsys fs.FS
}

// Manager handles level pack loading and caching. Packs on disk shadow
// builtin packs with the same ID.
type Manager struct {
	sources     []packSource
	defaultPack *engine.Pack
	packs       map[string]*engine.Pack
	origin      map[string]string
	mu          sync.RWMutex
}

// NewManager creates a pack manager over the builtin packs and, when
// packsDir is not empty, the packs found in that directory.
func NewManager(packsDir string) (*Manager, error) {
	if packsDir == "" {
		return newManager(nil)
	}
	if _, err := os.Stat(packsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("packs directory does not exist: %s", packsDir)
	}
	return newManager(os.DirFS(packsDir))
}

// NewManagerFS creates a pack manager over the builtin packs and fsys.
func NewManagerFS(fsys fs.FS) (*Manager, error) {
	return newManager(fsys)
}

func newManager(disk fs.FS) (*Manager, error) {
	m := &Manager{
		sources: []packSource{{name: SourceBuiltin, fsys: BuiltinPacks()}},
		packs:   make(map[string]*engine.Pack),
		origin:  make(map[string]string),
	}
	if disk != nil {
		m.sources = append(m.sources, packSource{name: SourceDisk, fsys: disk})
	}

	if err := m.loadDefaultPack(); err != nil {
		return nil, fmt.Errorf("failed to load default pack: %w", err)
	}
	return m, nil
}

func validPackID(id string) bool {
	return id != "" && id != "." && !strings.ContainsAny(id, `/\`) && fs.ValidPath(id)
}

// LoadPack loads a pack by ID
func (m *Manager) LoadPack(id string) (*engine.Pack, error) {
	m.mu.RLock()
	if pack, exists := m.packs[id]; exists {
		m.mu.RUnlock()
		return pack, nil
	}
	m.mu.RUnlock()

	if !validPackID(id) {
		return nil, fmt.Errorf("%w: %q", service.ErrPackNotFound, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if pack, exists := m.packs[id]; exists {
		return pack, nil
	}

	// Later sources shadow earlier ones.
	for i := len(m.sources) - 1; i >= 0; i-- {
		src := m.sources[i]
		if _, err := fs.Stat(src.fsys, path.Join(id, engine.ManifestFile)); err != nil {
			continue
		}
		pack, err := engine.LoadPack(src.fsys, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPack, id, err)
		}
		m.packs[id] = pack
		m.origin[id] = src.name
		return pack, nil
	}

	return nil, fmt.Errorf("%w: %s", service.ErrPackNotFound, id)
}

// packIDs lists every directory holding a manifest, across all sources.
func (m *Manager) packIDs() []string {
	seen := make(map[string]bool)
	for _, src := range m.sources {
		entries, err := fs.ReadDir(src.fsys, ".")
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			if _, err := fs.Stat(src.fsys, path.Join(entry.Name(), engine.ManifestFile)); err == nil {
				seen[entry.Name()] = true
			}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ListPacks returns information about every loadable pack, sorted by ID.
// Invalid packs are skipped.
func (m *Manager) ListPacks() ([]*service.PackInfo, error) {
	var packs []*service.PackInfo
	for _, id := range m.packIDs() {
		pack, err := m.LoadPack(id)
		if err != nil {
			continue
		}

		m.mu.RLock()
		source := m.origin[id]
		m.mu.RUnlock()

		packs = append(packs, &service.PackInfo{
			PackID:      id,
			Name:        pack.Manifest.Name,
			Description: pack.Manifest.Description,
			Levels:      pack.Levels.Count(),
			Capacity:    pack.Rules.Capacity,
			Speed:       pack.Rules.Speed,
			HalfSize:    pack.Rules.HalfSize,
			Source:      source,
		})
	}
	return packs, nil
}

// GetDefault returns the default pack
func (m *Manager) GetDefault() *engine.Pack {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultPack
}

// SetDefault sets the default pack by ID
func (m *Manager) SetDefault(id string) error {
	pack, err := m.LoadPack(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPack = pack
	return nil
}

// RefreshCache drops every cached pack and reloads the default, picking up
// changes made on disk.
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.packs = make(map[string]*engine.Pack)
	m.origin = make(map[string]string)
	m.mu.Unlock()

	return m.loadDefaultPack()
}

// loadDefaultPack prefers DefaultPackID, then the first valid pack.
func (m *Manager) loadDefaultPack() error {
	pack, err := m.LoadPack(DefaultPackID)
	if err != nil {
		infos, _ := m.ListPacks()
		if len(infos) == 0 {
			return fmt.Errorf("%w: no valid packs available", service.ErrPackNotFound)
		}
		if pack, err = m.LoadPack(infos[0].PackID); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.defaultPack = pack
	m.mu.Unlock()
	return nil
}
