package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Sections that are logged below warn level unless Configure says otherwise
var DefaultSections = []string{
	"canonicalize",
	"unify",
	"obligations",
	"solver",
	"fixture",
}

const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Settings control what DefaultLogger emits
type Settings struct {
	Level    slog.Level
	Sections []string
	// Format is one of FormatAuto, FormatText or FormatJSON
	Format string
	Output io.Writer
}

var level = new(slog.LevelVar)

var (
	mu              sync.RWMutex
	enabledSections = slices.Clone(DefaultSections)
)

var LoggerOpts = &slog.HandlerOptions{
	AddSource: false,
	Level:     level,
	ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == "time" {
			return slog.Attr{}
		}
		return a
	},
}

var DefaultLogger = slog.New(newHandler(FormatAuto, os.Stderr))

func init() {
	level.Set(slog.LevelWarn)
}

// SetLevel changes the level of DefaultLogger and every logger derived from it
func SetLevel(l slog.Level) {
	level.Set(l)
}

// Configure replaces DefaultLogger according to s. Loggers derived from the
// previous DefaultLogger keep their handler, but share the level and sections.
func Configure(s Settings) {
	level.Set(s.Level)
	mu.Lock()
	if s.Sections != nil {
		enabledSections = slices.Clone(s.Sections)
	}
	mu.Unlock()
	out := s.Output
	if out == nil {
		out = os.Stderr
	}
	DefaultLogger = slog.New(newHandler(s.Format, out))
}

// Section is DefaultLogger with a section attribute, which decides
// whether its debug and info records are kept
func Section(name string) *slog.Logger {
	return DefaultLogger.With("section", name)
}

func newHandler(format string, out io.Writer) slog.Handler {
	var underlying slog.Handler
	if useJSON(format, out) {
		underlying = slog.NewJSONHandler(out, LoggerOpts)
	} else {
		underlying = slog.NewTextHandler(out, LoggerOpts)
	}
	return &filteringHandler{underlying: &stringerHandler{underlying: underlying}}
}

func useJSON(format string, out io.Writer) bool {
	switch format {
	case FormatJSON:
		return true
	case FormatText:
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

func sectionEnabled(section string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return slices.ContainsFunc(enabledSections, func(enabled string) bool {
		return strings.HasPrefix(section, enabled)
	})
}

var _ slog.Handler = &filteringHandler{}

type filteringHandler struct {
	underlying slog.Handler
	// sections were set through WithAttrs and no longer show up in records
	sections []string
}

func (f filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return f.underlying.Enabled(ctx, level)
}

func (f filteringHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelWarn {
		return f.underlying.Handle(ctx, record)
	}
	// first filter out records which do not match enabledSections
	wantSection := slices.ContainsFunc(f.sections, sectionEnabled)
	record.Attrs(func(attr slog.Attr) bool {
		wantSection = wantSection || attr.Key == "section" && sectionEnabled(attr.Value.String())
		// iterate as long as we have not found our section
		return !wantSection
	})
	if !wantSection {
		return nil
	}
	return f.underlying.Handle(ctx, record)
}

func (f filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sections := slices.Clone(f.sections)
	for _, attr := range attrs {
		if attr.Key == "section" {
			sections = append(sections, attr.Value.String())
		}
	}
	return &filteringHandler{
		underlying: f.underlying.WithAttrs(attrs),
		sections:   sections,
	}
}

func (f filteringHandler) WithGroup(name string) slog.Handler {
	return &filteringHandler{
		underlying: f.underlying.WithGroup(name),
		sections:   f.sections,
	}
}

// stringerHandler renders fmt.Stringer attributes lazily, so that types
// show up as `Vec<?0>` rather than as their Go struct layout in JSON output
type stringerHandler struct {
	underlying slog.Handler
}

type stringerValuer struct{ fmt.Stringer }

func (s stringerValuer) LogValue() slog.Value { return slog.StringValue(s.String()) }

func (h *stringerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.underlying.Enabled(ctx, level)
}

func (h *stringerHandler) Handle(ctx context.Context, record slog.Record) error {
	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		newRecord.AddAttrs(wrapStringer(attr))
		return true
	})
	return h.underlying.Handle(ctx, newRecord)
}

func wrapStringer(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindAny {
		return attr
	}
	if _, ok := attr.Value.Any().(slog.LogValuer); ok {
		return attr
	}
	if s, ok := attr.Value.Any().(fmt.Stringer); ok {
		return slog.Any(attr.Key, stringerValuer{s})
	}
	return attr
}

func (h *stringerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		wrapped[i] = wrapStringer(attr)
	}
	return &stringerHandler{underlying: h.underlying.WithAttrs(wrapped)}
}

func (h *stringerHandler) WithGroup(name string) slog.Handler {
	return &stringerHandler{underlying: h.underlying.WithGroup(name)}
}
