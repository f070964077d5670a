package template

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"path"
	"strings"
	"sync"
	texttemplate "text/template"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"wifiwatch/internal/types"
	"wifiwatch/internal/utils"
)

//go:embed email/* slack/* discord/* telegram/* text/*
var templateFS embed.FS

// Type represents the type of notification template
type Type string

const (
	Email    Type = "email"
	Slack    Type = "slack"
	Discord  Type = "discord"
	Telegram Type = "telegram"
	Text     Type = "text"
)

// DeviceIncrease is the template rendered for a device count increase
const DeviceIncrease = "device_increase"

// Data is passed to every template
type Data struct {
	Title string
	Event *types.DeviceEvent
}

// NewData builds template data for an event
func NewData(event *types.DeviceEvent) Data {
	return Data{
		Title: fmt.Sprintf("%d new device(s) on %s", event.Delta(), event.Subnet),
		Event: event,
	}
}

type renderer interface {
	Execute(buf *bytes.Buffer, data any) error
}

type htmlRenderer struct{ t *htmltemplate.Template }

func (r htmlRenderer) Execute(buf *bytes.Buffer, data any) error { return r.t.Execute(buf, data) }

type textRenderer struct{ t *texttemplate.Template }

func (r textRenderer) Execute(buf *bytes.Buffer, data any) error { return r.t.Execute(buf, data) }

// Loader manages notification templates.
// Email templates are rendered with html/template, all others with text/template.
type Loader struct {
	logger    *zap.Logger
	templates map[Type]map[string]renderer
	mu        sync.RWMutex
}

// NewLoader creates new template loader
func NewLoader(logger *zap.Logger) (*Loader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loader := &Loader{
		logger:    logger,
		templates: make(map[Type]map[string]renderer),
	}

	if err := loader.loadDefaultTemplates(); err != nil {
		return nil, err
	}

	return loader, nil
}

// loadDefaultTemplates loads templates from embedded filesystem
func (t *Loader) loadDefaultTemplates() error {
	for _, tplType := range []Type{Email, Slack, Discord, Telegram, Text} {
		dir := string(tplType)
		entries, err := templateFS.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("failed to read template directory: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			content, err := templateFS.ReadFile(path.Join(dir, entry.Name()))
			if err != nil {
				return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
			}

			name := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
			if err := t.set(tplType, name, string(content)); err != nil {
				return fmt.Errorf("failed to parse template %s: %w", entry.Name(), err)
			}
		}
	}

	t.logger.Debug("Loaded notification templates", zap.Int("types", len(t.templates)))
	return nil
}

// SetCustomTemplate replaces a template for a notification type
func (t *Loader) SetCustomTemplate(tplType Type, name, content string) error {
	if err := t.set(tplType, name, content); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}
	return nil
}

func (t *Loader) set(tplType Type, name, content string) error {
	var r renderer
	if tplType == Email {
		tmpl, err := htmltemplate.New(name).Funcs(htmltemplate.FuncMap(templateFuncs)).Parse(content)
		if err != nil {
			return err
		}
		r = htmlRenderer{tmpl}
	} else {
		tmpl, err := texttemplate.New(name).Funcs(templateFuncs).Parse(content)
		if err != nil {
			return err
		}
		r = textRenderer{tmpl}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.templates[tplType]; !ok {
		t.templates[tplType] = make(map[string]renderer)
	}
	t.templates[tplType][name] = r
	return nil
}

// Render executes the named template of the given type
func (t *Loader) Render(tplType Type, name string, data any) (string, error) {
	t.mu.RLock()
	r, ok := t.templates[tplType][name]
	t.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template not found: %s/%s", tplType, name)
	}

	var buf bytes.Buffer
	if err := r.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s/%s: %w", tplType, name, err)
	}
	return buf.String(), nil
}

var titleCaser = cases.Title(language.English)

// Template functions available in all templates
var templateFuncs = texttemplate.FuncMap{
	"formatTime": func(t time.Time) string {
		return t.Format(time.RFC3339)
	},
	"formatDuration": func(d time.Duration) string {
		return d.Round(time.Millisecond).String()
	},
	"join": func(s []string, sep string) string {
		var result []string
		for _, v := range s {
			v = strings.TrimSpace(utils.NormalizeString(v))
			if v != "" {
				result = append(result, v)
			}
		}
		return strings.Join(result, sep)
	},
	"toTitle": func(s string) string {
		return titleCaser.String(s)
	},
	"macOrUnknown": func(mac string) string {
		if mac == "" {
			return "unknown"
		}
		return mac
	},
}
