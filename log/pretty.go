package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used for each kind of value.
// Styles render as plain text when the output is not a terminal.
type palette struct {
	key, str, num, yes, no, dur, when, null lipgloss.Style

	trace, debug, info, warn, err lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		yes:  fg("2"),
		no:   fg("1"),
		dur:  fg("5"),
		when: fg("4"),
		null: fg("8"),

		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3").Bold(true),
		err:   fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// groupedAttr is an attribute together with the groups open when it was
// added.
type groupedAttr struct {
	groups []string
	attr   slog.Attr
}

// prettyHandler writes styled records as either key=value text or indented
// JSON.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	style  palette
	json   bool
	groups []string
	attrs  []groupedAttr
}

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w, style: newPalette(w)}
}

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	h := newPrettyTextHandler(w, opts)
	h.json = true

	return h
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.attrs = slices.Clip(h.attrs)

	for _, a := range attrs {
		c.attrs = append(c.attrs, groupedAttr{groups: h.groups, attr: a})
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(slices.Clip(h.groups), name)

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var builtin []slog.Attr

	if !r.Time.IsZero() {
		builtin = append(builtin, slog.Time(slog.TimeKey, r.Time))
	}

	builtin = append(builtin, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			builtin = append(builtin,
				slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	builtin = append(builtin, slog.String(slog.MessageKey, r.Message))

	root := &node{}

	for _, a := range builtin {
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Key == slog.LevelKey {
			style := h.style.level(r.Level)
			root.add(nil, a, &style)

			continue
		}

		root.add(nil, a, nil)
	}

	for _, ga := range h.attrs {
		root.add(ga.groups, ga.attr, nil)
	}

	r.Attrs(func(a slog.Attr) bool {
		root.add(h.groups, a, nil)

		return true
	})

	buf := new(bytes.Buffer)

	if h.json {
		h.writeJSON(buf, root, 0)
	} else {
		h.writeText(buf, root, "")
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// node is one entry of a record's attribute tree. Groups have children.
type node struct {
	key      string
	value    slog.Value
	style    *lipgloss.Style
	children []*node
}

func (n *node) child(key string) *node {
	for _, c := range n.children {
		if c.key == key && c.value.Kind() == slog.KindGroup {
			return c
		}
	}

	c := &node{key: key, value: slog.GroupValue()}
	n.children = append(n.children, c)

	return c
}

// add inserts a beneath the given groups, resolving values and inlining
// groups with empty keys.
func (n *node) add(groups []string, a slog.Attr, style *lipgloss.Style) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		if len(members) == 0 {
			return
		}

		if a.Key != "" {
			groups = append(slices.Clip(groups), a.Key)
		}

		for _, m := range members {
			n.add(groups, m, nil)
		}

		return
	}

	parent := n
	for _, g := range groups {
		parent = parent.child(g)
	}

	parent.children = append(parent.children,
		&node{key: a.Key, value: a.Value, style: style})
}

func (h *prettyHandler) writeText(buf *bytes.Buffer, n *node, prefix string) {
	for _, c := range n.children {
		if c.value.Kind() == slog.KindGroup {
			h.writeText(buf, c, prefix+c.key+".")

			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.style.key.Render(prefix + c.key))
		buf.WriteByte('=')

		if c.style != nil {
			buf.WriteString(c.style.Render(c.value.String()))
		} else {
			buf.WriteString(h.textValue(c.value))
		}
	}
}

func (h *prettyHandler) textValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			s = strconv.Quote(s)
		}

		return h.style.str.Render(s)

	case slog.KindTime:
		return h.style.when.Render(v.Time().Format(time.RFC3339))

	default:
		return h.scalar(v)
	}
}

// scalar renders the kinds that print the same way in text and JSON.
func (h *prettyHandler) scalar(v slog.Value) string {
	switch v.Kind() {
	case slog.KindInt64:
		return h.style.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return h.style.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return h.style.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return h.style.yes.Render("true")
		}

		return h.style.no.Render("false")
	case slog.KindDuration:
		return h.style.dur.Render(v.Duration().String())
	default:
		if v.Any() == nil {
			return h.style.null.Render("null")
		}

		if err, ok := v.Any().(error); ok {
			return h.style.no.Render(err.Error())
		}

		return h.style.str.Render(v.String())
	}
}

func (h *prettyHandler) writeJSON(buf *bytes.Buffer, n *node, depth int) {
	indent := strings.Repeat("  ", depth+1)

	buf.WriteString("{\n")

	for i, c := range n.children {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString(indent)
		buf.WriteString(h.style.key.Render(quoteJSON(c.key)))
		buf.WriteString(": ")

		switch {
		case c.value.Kind() == slog.KindGroup:
			h.writeJSON(buf, c, depth+1)
		case c.style != nil:
			buf.WriteString(c.style.Render(quoteJSON(c.value.String())))
		default:
			buf.WriteString(h.jsonValue(c.value))
		}
	}

	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat("  ", depth))
	buf.WriteByte('}')
}

func (h *prettyHandler) jsonValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.style.str.Render(quoteJSON(v.String()))
	case slog.KindTime:
		return h.style.when.Render(quoteJSON(v.Time().Format(time.RFC3339Nano)))
	case slog.KindDuration:
		return h.style.dur.Render(quoteJSON(v.Duration().String()))
	case slog.KindFloat64:
		f := v.Float64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return h.style.num.Render(quoteJSON(strconv.FormatFloat(f, 'g', -1, 64)))
		}

		return h.scalar(v)
	case slog.KindAny:
		if v.Any() == nil {
			return h.scalar(v)
		}

		if err, ok := v.Any().(error); ok {
			return h.style.no.Render(quoteJSON(err.Error()))
		}

		b, err := json.Marshal(v.Any())
		if err != nil {
			return h.style.str.Render(quoteJSON(v.String()))
		}

		return h.style.str.Render(string(b))
	default:
		return h.scalar(v)
	}
}

// quoteJSON returns s as a JSON string literal without HTML escaping.
func quoteJSON(s string) string {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)

	return strings.TrimSuffix(buf.String(), "\n")
}
