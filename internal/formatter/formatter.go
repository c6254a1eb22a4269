// Package formatter implements the formatter entity: one template or
// function plus the metadata needed to call it from code and from the
// document.
package formatter

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/leapstack-labs/texfmt/internal/config"
	"github.com/leapstack-labs/texfmt/internal/diag"
	"github.com/leapstack-labs/texfmt/internal/macro"
	"github.com/leapstack-labs/texfmt/internal/options"
	"github.com/leapstack-labs/texfmt/internal/template"
)

// Origin describes the client an entity is created for.
type Origin struct {
	Client string
	Prefix string
	Color  string // client-level color, may be empty
	Logger *slog.Logger
}

// Formatter is a normalized template or function.
type Formatter struct {
	key    string
	client string // owner, used in the dispatch reference
	home   string // client whose context the backing runs in
	prefix string
	ccolor string
	logger *slog.Logger

	tpl *template.Template
	fn  Func

	name          string
	color         string
	comment       string
	explicitArgs  []string
	schema        options.Schema
	clientOptions []string
	bound         options.Schema

	inferred bool
	args     []string
	optIndex int
	inferErr error

	macroDone bool
	macroText string
	doc       *string
}

// NewTemplate creates a template-backed formatter.
func NewTemplate(key, src string, o Origin) *Formatter {
	f := newFormatter(key, o)
	f.tpl = template.Parse(src)
	return f
}

// NewFunction creates a function-backed formatter.
func NewFunction(key string, fn Func, o Origin) *Formatter {
	f := newFormatter(key, o)
	f.fn = fn
	if d, ok := fn.(Documented); ok {
		f.comment = d.Doc()
	}
	return f
}

// New creates a formatter from a template string or a Func.
func New(key string, backing any, o Origin) (*Formatter, error) {
	switch b := backing.(type) {
	case string:
		return NewTemplate(key, b, o), nil
	case *template.Template:
		return NewTemplate(key, b.Source(), o), nil
	case Func:
		return NewFunction(key, b, o), nil
	default:
		return nil, diag.Config(errors.Wrapf(ErrNoBacking, "%s: got %T", key, backing))
	}
}

func newFormatter(key string, o Origin) *Formatter {
	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Formatter{
		key:    key,
		client: o.Client,
		home:   o.Client,
		prefix: o.Prefix,
		ccolor: o.Color,
		logger: logger.With("client", o.Client, "key", key),
	}
}

// Clone returns an unconfigured copy owned by another client, keeping the
// backing, comment, color and option declarations. The copy runs in the
// original home client's context.
func (f *Formatter) Clone(o Origin) *Formatter {
	c := newFormatter(f.key, o)
	c.home = f.home
	c.tpl = f.tpl
	c.fn = f.fn
	c.color = f.color
	c.comment = f.comment
	c.explicitArgs = append([]string(nil), f.explicitArgs...)
	c.schema = f.schema
	c.clientOptions = append([]string(nil), f.clientOptions...)
	return c
}

// Key returns the dot-separated key within the owning client.
func (f *Formatter) Key() string { return f.key }

// Client returns the owning client.
func (f *Formatter) Client() string { return f.client }

// Home returns the client whose context the backing runs in.
func (f *Formatter) Home() string { return f.home }

// Ref returns the qualified reference "client:key".
func (f *Formatter) Ref() string { return f.client + ":" + f.key }

// Name returns the command name, generated from prefix and key unless set.
func (f *Formatter) Name() string {
	if f.name != "" {
		return f.name
	}
	return macro.GenerateName(f.prefix, f.key)
}

// IsHidden reports whether the formatter never gets a document command.
func (f *Formatter) IsHidden() bool {
	return macro.IsHidden(f.Name())
}

// Comment returns the documentation annotation.
func (f *Formatter) Comment() string { return f.comment }

// Template returns the template backing, or nil.
func (f *Formatter) Template() *template.Template { return f.tpl }

// Func returns the function backing, or nil.
func (f *Formatter) Func() Func { return f.fn }

// Kind returns "template" or "function".
func (f *Formatter) Kind() string {
	if f.fn != nil {
		return "function"
	}
	return "template"
}

// Schema returns the effective option schema: bound client options merged
// with the formatter's own declarations.
func (f *Formatter) Schema() options.Schema {
	return options.Merge(f.bound, f.schema)
}

// ColorToken returns the declared color: the entity's own, else the
// client's, else "default".
func (f *Formatter) ColorToken() string {
	return First(f.color, f.ccolor, config.ColorDefault)
}

// ResolveColor turns a color token passed by the document into a concrete
// color. "default" tokens fall through entity, client and global settings.
func (f *Formatter) ResolveColor(token string, opts *config.Options) string {
	return First(
		nonDefault(token),
		nonDefault(f.color),
		nonDefault(f.ccolor),
		opts.DefaultColor,
	)
}

// BindClientOptions resolves the formatter's client_options against the
// client's option schema.
func (f *Formatter) BindClientOptions(client options.Schema) error {
	sub, err := client.Subset(f.clientOptions)
	if err != nil {
		return errors.Wrapf(err, "%s: client_options", f.Ref())
	}
	f.bound = sub
	return nil
}

// Spec returns the macro rendering input. It runs inference.
func (f *Formatter) Spec(opts *config.Options) (macro.Spec, error) {
	args, optIndex, err := f.Infer()
	if err != nil {
		return macro.Spec{}, err
	}
	return macro.Spec{
		Name:     f.Name(),
		Ref:      f.Ref(),
		Color:    f.ColorToken(),
		Args:     args,
		OptIndex: optIndex,
		Comment:  f.comment,
		Dispatch: opts.DispatchCommand,
	}, nil
}

// Macro returns the command definition, generating it on first call.
// Hidden formatters yield "".
func (f *Formatter) Macro(opts *config.Options) (string, error) {
	if f.IsHidden() {
		return "", nil
	}
	if f.macroDone {
		return f.macroText, nil
	}
	spec, err := f.Spec(opts)
	if err != nil {
		return "", err
	}
	f.macroText = macro.Definition(spec)
	f.macroDone = true
	return f.macroText, nil
}

// Macroized reports whether the command definition was generated.
func (f *Formatter) Macroized() bool { return f.macroDone }

// Docstring returns the documentation line. It never fails: problems are
// reported as a "%" warning line. Results without samples are memoized.
func (f *Formatter) Docstring(opts *config.Options, samples map[string]string) string {
	if !opts.Selfdoc {
		f.logger.Warn("docstring requested while self-documentation is disabled")
		return "% texfmt warning: self-documentation is disabled (" + f.Ref() + ")"
	}
	if f.IsHidden() {
		return ""
	}
	if samples == nil && f.doc != nil {
		return *f.doc
	}
	spec, err := f.Spec(opts)
	if err != nil {
		f.logger.Warn("cannot document formatter", "error", err.Error())
		return "% texfmt warning: cannot document " + f.Ref() + ": " + err.Error()
	}
	doc := macro.Docstring(spec, samples)
	if samples == nil {
		f.doc = &doc
	}
	return doc
}

func nonDefault(color string) string {
	if color == config.ColorDefault {
		return ""
	}
	return color
}
