// Package store implements the template store: validated fetching of
// template markup from the network or a local template root, sanitization,
// and a read-through TTL cache with periodic sweeping.
//
// Validation is strict and happens before any I/O: paths must be absolute,
// carry an allowed extension, contain no traversal segments, and (when a
// known-path allow-list is configured) be members of it. Network loads are
// additionally gated on an origin allow-list, a markup content-type, and a
// byte-size ceiling. A failed load caches nothing.
package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/weft/internal/config"
	"github.com/conneroisu/weft/internal/errors"
	"github.com/conneroisu/weft/internal/logging"
	"github.com/conneroisu/weft/internal/notify"
	"github.com/conneroisu/weft/internal/sanitize"
)

// Preprocessor rewrites fetched markup before sanitization, typically to
// resolve directive context for a known path. It may return the markup
// unchanged.
type Preprocessor func(path, markup string) (string, error)

// Store fetches, validates, sanitizes and caches template markup.
type Store struct {
	cfg     config.StoreConfig
	origins map[string]bool
	client  *http.Client
	san     *sanitize.Sanitizer
	pre     Preprocessor
	bus     *notify.Bus
	logger  logging.Logger

	mu    sync.RWMutex
	cache map[string]cacheEntry

	now  func() time.Time
	done chan struct{}
	wg   sync.WaitGroup

	watcher *templateWatcher
}

// New creates a store and starts its cache sweeper. allowedOrigins is the
// origin allow-list for network loads; an empty list denies all network
// access, leaving only the local template root.
func New(cfg config.StoreConfig, allowedOrigins []string, san *sanitize.Sanitizer, bus *notify.Bus, logger logging.Logger) (*Store, error) {
	if san == nil {
		san = sanitize.New(nil, nil)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		parsed, err := url.Parse(o)
		if err != nil {
			return nil, errors.ConfigError("BAD_ORIGIN", fmt.Sprintf("invalid allowed origin %q", o))
		}
		origins[parsed.Scheme+"://"+parsed.Host] = true
	}

	s := &Store{
		cfg:     cfg,
		origins: origins,
		client:  &http.Client{Timeout: cfg.FetchTimeout},
		san:     san,
		bus:     bus,
		logger:  logger.WithComponent("store"),
		cache:   make(map[string]cacheEntry),
		now:     time.Now,
		done:    make(chan struct{}),
	}

	if cfg.SnapshotPath != "" {
		if err := s.loadSnapshot(); err != nil {
			s.logger.Warn(context.Background(), err, "cache snapshot not restored")
		}
	}

	if cfg.WatchTemplates && cfg.TemplateRoot != "" {
		w, err := newTemplateWatcher(cfg.TemplateRoot, s.invalidateFile, s.logger)
		if err != nil {
			return nil, err
		}
		s.watcher = w
	}

	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	s.wg.Add(1)
	go s.sweepLoop(interval)

	return s, nil
}

// SetPreprocessor installs the context-aware directive preprocessing hook.
func (s *Store) SetPreprocessor(pre Preprocessor) {
	s.pre = pre
}

// Close stops the sweeper and watcher and, when configured, persists the
// cache snapshot.
func (s *Store) Close() error {
	close(s.done)
	s.wg.Wait()

	var err error
	if s.watcher != nil {
		err = s.watcher.Close()
	}
	if s.cfg.SnapshotPath != "" {
		if snapErr := s.SaveSnapshot(); snapErr != nil && err == nil {
			err = snapErr
		}
	}
	return err
}

// Load returns sanitized, validated markup for the template path. A cache
// hit within TTL short-circuits all I/O.
func (s *Store) Load(ctx context.Context, templatePath string) (string, error) {
	if err := s.validatePath(templatePath); err != nil {
		return "", err
	}

	if content, ok := s.cached(templatePath); ok {
		s.logger.Debug(ctx, "template cache hit", "path", templatePath)
		return content, nil
	}

	raw, err := s.fetch(ctx, templatePath)
	if err != nil {
		return "", err
	}

	if s.pre != nil {
		processed, preErr := s.pre(templatePath, raw)
		if preErr != nil {
			return "", errors.MarkupError(templatePath, "preprocessing failed", preErr)
		}
		raw = processed
	}

	cleaned, err := s.san.CleanString(raw)
	if err != nil {
		return "", errors.MarkupError(templatePath, "markup parse failed", err)
	}

	s.put(templatePath, cleaned)

	s.logger.Info(ctx, "template loaded", "path", templatePath, "bytes", len(cleaned))
	if s.bus != nil {
		s.bus.Publish(notify.Notification{
			Signal: notify.SignalTemplateLoaded,
			Path:   templatePath,
		})
	}

	return cleaned, nil
}

// validatePath enforces the path rules that apply before any I/O.
func (s *Store) validatePath(templatePath string) error {
	if templatePath == "" {
		return errors.ConfigError("EMPTY_PATH", "template path cannot be empty")
	}

	pathPart := templatePath
	if isNetworkURL(templatePath) {
		parsed, err := url.Parse(templatePath)
		if err != nil {
			return errors.ConfigError("BAD_PATH", fmt.Sprintf("invalid template URL %q", templatePath))
		}
		pathPart = parsed.Path
	}

	if !strings.HasPrefix(pathPart, "/") {
		return errors.ConfigError("RELATIVE_PATH", fmt.Sprintf("template path %q must be absolute", templatePath))
	}

	for _, segment := range strings.Split(pathPart, "/") {
		if segment == ".." {
			return errors.ConfigError("PATH_TRAVERSAL", fmt.Sprintf("template path %q contains traversal", templatePath))
		}
	}

	ext := strings.ToLower(path.Ext(pathPart))
	allowed := false
	for _, candidate := range s.cfg.AllowedExtensions {
		if ext == strings.ToLower(candidate) {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.ConfigError("BAD_EXTENSION", fmt.Sprintf("template extension %q not allowed", ext))
	}

	if len(s.cfg.KnownPaths) > 0 {
		known := false
		for _, candidate := range s.cfg.KnownPaths {
			if pathPart == candidate {
				known = true
				break
			}
		}
		if !known {
			return errors.ConfigError("UNKNOWN_PATH", fmt.Sprintf("template path %q not in known paths", templatePath))
		}
	}

	return nil
}

// fetch reads the template from the local root when configured, otherwise
// over the network.
func (s *Store) fetch(ctx context.Context, templatePath string) (string, error) {
	if !isNetworkURL(templatePath) && s.cfg.TemplateRoot != "" {
		return s.fetchLocal(templatePath)
	}
	return s.fetchNetwork(ctx, templatePath)
}

func (s *Store) fetchLocal(templatePath string) (string, error) {
	full := filepath.Join(s.cfg.TemplateRoot, filepath.FromSlash(strings.TrimPrefix(templatePath, "/")))

	// The join must stay under the root even after cleaning.
	rootAbs, err := filepath.Abs(s.cfg.TemplateRoot)
	if err != nil {
		return "", errors.ConfigError("BAD_ROOT", "template root unresolvable")
	}
	fullAbs, err := filepath.Abs(full)
	if err != nil || !strings.HasPrefix(fullAbs, rootAbs+string(os.PathSeparator)) {
		return "", errors.ConfigError("PATH_TRAVERSAL", fmt.Sprintf("template path %q escapes template root", templatePath))
	}

	info, err := os.Stat(fullAbs)
	if err != nil {
		return "", errors.NetworkError(templatePath, err)
	}
	if info.Size() > s.cfg.MaxContentBytes {
		return "", errors.ConfigError("TOO_LARGE",
			fmt.Sprintf("template %q is %d bytes, ceiling is %d", templatePath, info.Size(), s.cfg.MaxContentBytes))
	}

	data, err := os.ReadFile(fullAbs)
	if err != nil {
		return "", errors.NetworkError(templatePath, err)
	}
	return string(data), nil
}

func (s *Store) fetchNetwork(ctx context.Context, templatePath string) (string, error) {
	fullURL := templatePath
	if !isNetworkURL(templatePath) {
		if s.cfg.BaseURL == "" {
			return "", errors.ConfigError("NO_BASE_URL", "no template root or base URL configured")
		}
		fullURL = strings.TrimSuffix(s.cfg.BaseURL, "/") + templatePath
	}

	parsed, err := url.Parse(fullURL)
	if err != nil {
		return "", errors.ConfigError("BAD_PATH", fmt.Sprintf("invalid template URL %q", fullURL))
	}
	origin := parsed.Scheme + "://" + parsed.Host
	if !s.origins[origin] {
		return "", errors.ConfigError("ORIGIN_DENIED", fmt.Sprintf("origin %q not in allow-list", origin))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", errors.NetworkError(templatePath, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", errors.NetworkError(templatePath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.NetworkError(templatePath, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") {
		return "", errors.ConfigError("BAD_CONTENT_TYPE",
			fmt.Sprintf("template %q served as %q, expected markup", templatePath, contentType))
	}

	limited := io.LimitReader(resp.Body, s.cfg.MaxContentBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return "", errors.NetworkError(templatePath, err)
	}
	if int64(len(body)) > s.cfg.MaxContentBytes {
		return "", errors.ConfigError("TOO_LARGE",
			fmt.Sprintf("template %q exceeds %d byte ceiling", templatePath, s.cfg.MaxContentBytes))
	}

	return string(body), nil
}

func isNetworkURL(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// invalidateFile maps a changed file under the template root back to its
// template path and drops the cache entry.
func (s *Store) invalidateFile(file string) {
	rootAbs, err := filepath.Abs(s.cfg.TemplateRoot)
	if err != nil {
		return
	}
	fileAbs, err := filepath.Abs(file)
	if err != nil {
		return
	}
	rel, err := filepath.Rel(rootAbs, fileAbs)
	if err != nil {
		return
	}
	templatePath := "/" + filepath.ToSlash(rel)

	s.mu.Lock()
	_, existed := s.cache[templatePath]
	delete(s.cache, templatePath)
	s.mu.Unlock()

	if existed {
		s.logger.Info(context.Background(), "template invalidated", "path", templatePath)
	}
}
