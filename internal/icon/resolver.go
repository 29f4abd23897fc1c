// Package icon resolves application identifiers to freedesktop icon
// names by way of desktop entries. Lookup is best-effort: a missing
// icon resolves to the empty string, never an error.
package icon

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bryanchriswhite/swaytab/internal/logger"
)

// Bounds the lookup cache; prevents unbounded growth if many
// different apps are used
const maxCacheEntries = 256

// applicationDirs returns the XDG application directories plus
// flatpak export locations
func applicationDirs() []string {
	dirs := []string{
		"/usr/share/applications",
		"/usr/local/share/applications",
		"/var/lib/flatpak/exports/share/applications",
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append([]string{filepath.Join(home, ".local", "share", "applications")}, dirs...)
		dirs = append(dirs, filepath.Join(home, ".local", "share", "flatpak", "exports", "share", "applications"))
	}
	return dirs
}

// Resolver maps app identifiers to icon names. The StartupWMClass
// index is built once at startup: it covers apps like Signal whose
// app id does not match their desktop file name.
type Resolver struct {
	dirs []string

	mu      sync.Mutex
	wmClass map[string]string // lowercase StartupWMClass -> desktop file path
	cache   map[string]string // app identifier -> icon name ("" is a cached miss)
}

// NewResolver creates a Resolver over the standard XDG directories
// and builds the StartupWMClass index
func NewResolver() *Resolver {
	return newResolver(applicationDirs())
}

func newResolver(dirs []string) *Resolver {
	r := &Resolver{
		dirs:    dirs,
		wmClass: make(map[string]string),
		cache:   make(map[string]string),
	}
	r.buildIndex()
	return r
}

// buildIndex scans every application directory for desktop entries
// declaring a StartupWMClass
func (r *Resolver) buildIndex() {
	for _, dir := range r.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".desktop") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			_, wmClass, err := parseDesktopEntry(path)
			if err != nil || wmClass == "" {
				continue
			}
			key := strings.ToLower(wmClass)
			// First match wins
			if _, exists := r.wmClass[key]; !exists {
				r.wmClass[key] = path
			}
		}
	}

	logger.WithComponent("icon").Info().
		Int("entries", len(r.wmClass)).
		Msg("Built StartupWMClass index")
}

// Resolve returns the icon name for an app identifier, or ""
func (r *Resolver) Resolve(appID string) string {
	if appID == "" {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[appID]; ok {
		return cached
	}

	name := r.lookup(appID)
	if len(r.cache) >= maxCacheEntries {
		r.cache = make(map[string]string)
	}
	r.cache[appID] = name
	return name
}

// lookup tries the search strategies in order of likelihood
func (r *Resolver) lookup(appID string) string {
	if name := r.fromWMClassIndex(appID); name != "" {
		return name
	}
	if name := r.fromDesktopFile(appID); name != "" {
		return name
	}
	if name := r.fromCaseInsensitiveScan(appID); name != "" {
		return name
	}
	if name := r.fromReverseDomain(appID); name != "" {
		return name
	}
	if name := r.fromVariations(appID); name != "" {
		return name
	}
	logger.WithComponent("icon").Debug().
		Str("app_id", appID).
		Msg("No desktop entry found")
	return ""
}

// fromWMClassIndex resolves via the pre-built StartupWMClass index
func (r *Resolver) fromWMClassIndex(appID string) string {
	path, ok := r.wmClass[strings.ToLower(appID)]
	if !ok {
		return ""
	}
	icon, _, err := parseDesktopEntry(path)
	if err != nil {
		return ""
	}
	return icon
}

// fromDesktopFile tries the exact match <appID>.desktop in each directory
func (r *Resolver) fromDesktopFile(appID string) string {
	for _, dir := range r.dirs {
		icon, _, err := parseDesktopEntry(filepath.Join(dir, appID+".desktop"))
		if err == nil && icon != "" {
			return icon
		}
	}
	return ""
}

// fromCaseInsensitiveScan lists each directory looking for a
// case-insensitive name match
func (r *Resolver) fromCaseInsensitiveScan(appID string) string {
	want := strings.ToLower(appID) + ".desktop"
	for _, dir := range r.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if strings.ToLower(entry.Name()) != want {
				continue
			}
			icon, _, err := parseDesktopEntry(filepath.Join(dir, entry.Name()))
			if err == nil && icon != "" {
				return icon
			}
		}
	}
	return ""
}

// fromReverseDomain matches reverse-domain ids like
// "org.speedcrunch.speedcrunch" by their last segment
func (r *Resolver) fromReverseDomain(appID string) string {
	if !strings.Contains(appID, ".") {
		return ""
	}
	segments := strings.Split(appID, ".")
	last := strings.ToLower(segments[len(segments)-1])
	return r.fromDesktopFile(last)
}

// fromVariations tries common spelling variations of the app id
func (r *Resolver) fromVariations(appID string) string {
	variations := []string{
		strings.ToLower(appID),
		strings.ReplaceAll(appID, "-", "_"),
		strings.ReplaceAll(appID, "_", "-"),
	}
	for _, v := range variations {
		if v == appID {
			continue
		}
		if name := r.fromDesktopFile(v); name != "" {
			return name
		}
	}
	return ""
}

// parseDesktopEntry extracts the Icon and StartupWMClass keys from the
// [Desktop Entry] section of a desktop file
func parseDesktopEntry(path string) (icon, wmClass string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	inEntry := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "["):
			inEntry = line == "[Desktop Entry]"
		case !inEntry:
		case strings.HasPrefix(line, "Icon="):
			icon = strings.TrimPrefix(line, "Icon=")
		case strings.HasPrefix(line, "StartupWMClass="):
			wmClass = strings.TrimPrefix(line, "StartupWMClass=")
		}
		if icon != "" && wmClass != "" {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", fmt.Errorf("failed to read desktop entry: %w", err)
	}
	return icon, wmClass, nil
}
