package publicpages

import (
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"
)

// URLBuilder renders the public URL of a page slug in a locale.
type URLBuilder interface {
	PageURL(locale, slug string) (string, error)
}

// URLKitOptions configures the go-urlkit backed builder. LocaleGroups maps a
// locale to a dotted group path such as "frontend.es".
type URLKitOptions struct {
	Manager      *urlkit.RouteManager
	DefaultGroup string
	LocaleGroups map[string]string
	Route        string
	SlugParam    string
	LocaleParam  string
}

type URLKitBuilder struct {
	manager      *urlkit.RouteManager
	defaultGroup string
	localeGroups map[string]string
	route        string
	slugParam    string
	localeParam  string

	mu         sync.RWMutex
	groupCache map[string]*urlkit.Group
}

func NewURLKitBuilder(opts URLKitOptions) *URLKitBuilder {
	if opts.SlugParam == "" {
		opts.SlugParam = "slug"
	}
	if opts.Route == "" {
		opts.Route = "page"
	}
	groups := make(map[string]string, len(opts.LocaleGroups))
	for locale, path := range opts.LocaleGroups {
		groups[strings.ToLower(strings.TrimSpace(locale))] = strings.TrimSpace(path)
	}
	return &URLKitBuilder{
		manager:      opts.Manager,
		defaultGroup: strings.TrimSpace(opts.DefaultGroup),
		localeGroups: groups,
		route:        strings.TrimSpace(opts.Route),
		slugParam:    opts.SlugParam,
		localeParam:  strings.TrimSpace(opts.LocaleParam),
		groupCache:   make(map[string]*urlkit.Group),
	}
}

func (b *URLKitBuilder) PageURL(locale, slug string) (string, error) {
	if b == nil || b.manager == nil {
		return "", nil
	}
	groupPath := b.defaultGroup
	if path, ok := b.localeGroups[strings.ToLower(locale)]; ok && path != "" {
		groupPath = path
	}
	if groupPath == "" {
		return "", nil
	}
	group, err := b.groupForPath(groupPath)
	if err != nil {
		return "", err
	}
	builder, err := safeBuilder(group, b.route)
	if err != nil {
		return "", err
	}
	builder.WithParam(b.slugParam, slug)
	if b.localeParam != "" {
		builder.WithParam(b.localeParam, locale)
	}
	return builder.Build()
}

func (b *URLKitBuilder) groupForPath(path string) (*urlkit.Group, error) {
	b.mu.RLock()
	group, ok := b.groupCache[path]
	b.mu.RUnlock()
	if ok {
		return group, nil
	}

	parts := strings.Split(path, ".")
	current, err := lookupGroup(b.manager, parts[0])
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		if current, err = lookupChildGroup(current, part); err != nil {
			return nil, err
		}
	}

	if current == nil {
		return nil, fmt.Errorf("publicpages: route group %q not found", path)
	}
	b.mu.Lock()
	b.groupCache[path] = current
	b.mu.Unlock()
	return current, nil
}

// go-urlkit panics on unknown groups and routes.

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			builder, err = nil, fmt.Errorf("publicpages: route %q: %v", route, rec)
		}
	}()
	return group.Builder(route), nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("publicpages: route group %q not found", name)
		}
	}()
	return manager.Group(name), nil
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("publicpages: child group %q not found", name)
		}
	}()
	return parent.Group(name), nil
}
