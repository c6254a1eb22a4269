package config

// Default option values.
const (
	DefaultDefaultColor    = "blue"
	DefaultListSep         = ", "
	DefaultListLastSep     = " and "
	DefaultRangeSep        = "--"
	DefaultRangeFollow     = "f."
	DefaultRangeFfollow    = "ff."
	DefaultDispatchCommand = "texfmtDispatch"
)

// Default returns the built-in options.
func Default() *Options {
	return &Options{
		DefaultColor:    DefaultDefaultColor,
		ListSep:         DefaultListSep,
		ListLastSep:     DefaultListLastSep,
		RangeSep:        DefaultRangeSep,
		RangeFollow:     DefaultRangeFollow,
		RangeFfollow:    DefaultRangeFfollow,
		Color:           true,
		Selfdoc:         true,
		DispatchCommand: DefaultDispatchCommand,
	}
}

// DefaultMap returns Default() keyed by koanf path, for use as the lowest
// configuration layer.
func DefaultMap(prefix string) map[string]any {
	d := Default()
	return map[string]any{
		prefix + "default_color":    d.DefaultColor,
		prefix + "list_sep":         d.ListSep,
		prefix + "list_last_sep":    d.ListLastSep,
		prefix + "range_sep":        d.RangeSep,
		prefix + "range_follow":     d.RangeFollow,
		prefix + "range_ffollow":    d.RangeFfollow,
		prefix + "color":            d.Color,
		prefix + "selfdoc":          d.Selfdoc,
		prefix + "strict":           d.Strict,
		prefix + "dispatch_command": d.DispatchCommand,
	}
}

// ApplyDefaults fills empty string fields from Default(). Booleans are left
// alone since false is meaningful.
func ApplyDefaults(o *Options) {
	if o == nil {
		return
	}
	d := Default()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&o.DefaultColor, d.DefaultColor)
	fill(&o.DispatchCommand, d.DispatchCommand)
}
