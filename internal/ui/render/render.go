// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"log"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/muesli/termenv"

	"github.com/jeranaias/mle-tui/internal/model"
	"github.com/jeranaias/mle-tui/internal/util"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

const (
	// DefaultWidth is used until the first window size is known.
	DefaultWidth = 80

	// DefaultCacheSize is the number of rendered blocks kept.
	DefaultCacheSize = 128

	// minWidth keeps glamour from wrapping every word onto its own line.
	minWidth = 20
)

// Options configures a Renderer.
type Options struct {
	// Style is the glamour style: auto, dark, light or notty.
	Style string

	// CodeStyle is the chroma style for code messages.
	CodeStyle string

	// Width is the wrap width in cells.
	Width int

	// CacheSize bounds the render cache. Zero uses DefaultCacheSize.
	CacheSize int

	// NoColor disables code highlighting escapes.
	NoColor bool
}

// =============================================================================
// RENDERER
// =============================================================================

type cacheKey struct {
	width   int
	code    bool
	content string
}

// Renderer turns Markdown and code into styled terminal text.
// It is safe for concurrent use.
type Renderer struct {
	mu      sync.Mutex
	opts    Options
	term    *glamour.TermRenderer
	cache   *lru.Cache[cacheKey, string]
	profile termenv.Profile
}

// New creates a Renderer.
func New(opts Options) (*Renderer, error) {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.CodeStyle == "" {
		opts.CodeStyle = "monokai"
	}
	if opts.Style == "" {
		opts.Style = "auto"
	}

	cache, err := lru.New[cacheKey, string](opts.CacheSize)
	if err != nil {
		return nil, err
	}

	r := &Renderer{opts: opts, cache: cache, profile: termenv.Ascii}
	if !opts.NoColor {
		r.profile = termenv.ColorProfile()
	}
	if err := r.rebuild(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) rebuild() error {
	wrap := r.opts.Width
	if wrap < minWidth {
		wrap = minWidth
	}

	styleOpt := glamour.WithStandardStyle(r.opts.Style)
	if r.opts.Style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}
	term, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrap))
	if err != nil {
		return err
	}
	r.term = term
	return nil
}

// Width returns the current wrap width.
func (r *Renderer) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts.Width
}

// SetWidth changes the wrap width. Cached output for other widths is
// dropped.
func (r *Renderer) SetWidth(width int) {
	if width <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if width == r.opts.Width {
		return
	}
	r.opts.Width = width
	if err := r.rebuild(); err != nil {
		log.Printf("RENDER_REBUILD_FAILED | width=%d err=%v", width, err)
	}
	r.cache.Purge()
}

// Markdown renders Markdown source. On renderer failure it falls back to the
// source wrapped at the current width.
func (r *Renderer) Markdown(src string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cacheKey{width: r.opts.Width, content: src}
	if out, ok := r.cache.Get(key); ok {
		return out
	}

	out, err := r.term.Render(src)
	if err != nil {
		log.Printf("RENDER_MARKDOWN_FAILED | len=%d err=%v", len(src), err)
		return util.Wrap(src, r.opts.Width)
	}
	out = strings.Trim(out, "\n")
	r.cache.Add(key, out)
	return out
}

// Code highlights source. An empty language is detected from the content.
func (r *Renderer) Code(src, language string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cacheKey{width: r.opts.Width, code: true, content: language + "\x00" + src}
	if out, ok := r.cache.Get(key); ok {
		return out
	}

	out := highlightCode(strings.TrimRight(src, "\n"), language, r.opts.CodeStyle, formatterName(r.profile))
	r.cache.Add(key, out)
	return out
}

// Message renders one chat message body. Code messages without a Markdown
// fence are highlighted directly; everything else goes through Markdown.
func (r *Renderer) Message(msg model.Message) string {
	if msg.MsgType == model.MsgTypeCode && !strings.Contains(msg.Content, "```") {
		return r.Code(msg.Content, "")
	}
	return r.Markdown(msg.Content)
}

// CacheLen reports how many rendered blocks are cached.
func (r *Renderer) CacheLen() int {
	return r.cache.Len()
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// highlightCode applies chroma highlighting and returns the input unchanged
// when tokenizing or formatting fails.
func highlightCode(code, language, styleName, formatter string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	f := formatters.Get(formatter)
	if f == nil {
		f = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := f.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// formatterName maps a terminal color profile to a chroma formatter.
func formatterName(p termenv.Profile) string {
	switch p {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal8"
	default:
		return "noop"
	}
}
