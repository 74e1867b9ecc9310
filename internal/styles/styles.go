// Package styles resolves subtitle presentation into an ASS style header:
// named presets, per-field overrides, and the hex/ASS color conversion
// style lines require.
package styles

// FontStyle is one named ASS style line's worth of formatting.
type FontStyle struct {
	Font         string `json:"font" yaml:"font"`
	Size         int    `json:"size" yaml:"size"`
	Color        string `json:"color" yaml:"color"`
	OutlineColor string `json:"outline_color" yaml:"outline_color"`
	OutlineWidth int    `json:"outline_width" yaml:"outline_width"`
	ShadowWidth  int    `json:"shadow_width" yaml:"shadow_width"`
	Bold         bool   `json:"bold" yaml:"bold"`
	Italic       bool   `json:"italic" yaml:"italic"`
}

// defaultFontStyle returns the base style every preset starts from before
// its own overrides are applied.
func defaultFontStyle() FontStyle {
	return FontStyle{
		Font:         "Arial",
		Size:         60,
		Color:        "#FFFFFF",
		OutlineColor: "#000000",
		OutlineWidth: 2,
		ShadowWidth:  0,
	}
}

// StyleProfile is a complete, resolved subtitle style: a primary style for
// the source-language line and a secondary style used for the translated
// line in bilingual output.
type StyleProfile struct {
	Name         string    `json:"name" yaml:"name"`
	Primary      FontStyle `json:"primary" yaml:"primary"`
	Secondary    FontStyle `json:"secondary" yaml:"secondary"`
	Alignment    int       `json:"alignment" yaml:"alignment"`
	MarginBottom int       `json:"margin_bottom" yaml:"margin_bottom"`
	PlayResX     int       `json:"play_res_x" yaml:"play_res_x"`
	PlayResY     int       `json:"play_res_y" yaml:"play_res_y"`
}

// DefaultProfile returns the style every other preset and every ad-hoc
// StyleProfile{} literal implicitly falls back to: Arial 60pt primary,
// a dimmer secondary for the translated line, 1920x1080 script resolution.
func DefaultProfile() StyleProfile {
	primary := defaultFontStyle()
	secondary := defaultFontStyle()
	secondary.Size = 45
	secondary.Color = "#CCCCCC"
	return StyleProfile{
		Name:         "default",
		Primary:      primary,
		Secondary:    secondary,
		Alignment:    2,
		MarginBottom: 20,
		PlayResX:     1920,
		PlayResY:     1080,
	}
}

// Presets are the named style profiles selectable via config or CLI flag.
var Presets = map[string]StyleProfile{
	"default": DefaultProfile(),
	"netflix": func() StyleProfile {
		sp := DefaultProfile()
		sp.Name = "netflix"
		sp.Primary.Font = "Netflix Sans"
		sp.Primary.Size = 52
		sp.Secondary.Font = "Netflix Sans"
		sp.Secondary.Size = 40
		return sp
	}(),
	"fansub": func() StyleProfile {
		sp := DefaultProfile()
		sp.Name = "fansub"
		sp.Primary.Font = "Comic Sans MS"
		sp.Primary.Color = "#FFFF00"
		sp.Primary.OutlineWidth = 3
		sp.Secondary.Font = "Comic Sans MS"
		sp.Secondary.Color = "#88FFFF"
		return sp
	}(),
	"minimal": func() StyleProfile {
		sp := DefaultProfile()
		sp.Name = "minimal"
		sp.Primary.OutlineWidth = 0
		sp.Primary.ShadowWidth = 0
		sp.Secondary.OutlineWidth = 0
		sp.Secondary.ShadowWidth = 0
		return sp
	}(),
}

// FontStyleOverride carries only the fields a config section explicitly
// set; nil pointers leave the preset's value untouched.
type FontStyleOverride struct {
	Font         *string
	Size         *int
	Color        *string
	OutlineColor *string
	OutlineWidth *int
	ShadowWidth  *int
	Bold         *bool
	Italic       *bool
}

func (o *FontStyleOverride) apply(fs FontStyle) FontStyle {
	if o == nil {
		return fs
	}
	if o.Font != nil {
		fs.Font = *o.Font
	}
	if o.Size != nil {
		fs.Size = *o.Size
	}
	if o.Color != nil {
		fs.Color = *o.Color
	}
	if o.OutlineColor != nil {
		fs.OutlineColor = *o.OutlineColor
	}
	if o.OutlineWidth != nil {
		fs.OutlineWidth = *o.OutlineWidth
	}
	if o.ShadowWidth != nil {
		fs.ShadowWidth = *o.ShadowWidth
	}
	if o.Bold != nil {
		fs.Bold = *o.Bold
	}
	if o.Italic != nil {
		fs.Italic = *o.Italic
	}
	return fs
}

// Override carries the subset of a StyleProfile a "styles:" config section
// set explicitly. Unset pointer fields leave the preset's value in place.
type Override struct {
	Preset       string
	Primary      *FontStyleOverride
	Secondary    *FontStyleOverride
	Alignment    *int
	MarginBottom *int
	PlayResX     *int
	PlayResY     *int
}

// LoadStyle resolves a style Override against the named preset (falling
// back to "default" when the preset is empty or unrecognized), applying any
// per-field overrides on top.
func LoadStyle(o Override) StyleProfile {
	sp, ok := Presets[o.Preset]
	if !ok {
		sp = Presets["default"]
	}
	sp.Primary = o.Primary.apply(sp.Primary)
	sp.Secondary = o.Secondary.apply(sp.Secondary)
	if o.Alignment != nil {
		sp.Alignment = *o.Alignment
	}
	if o.MarginBottom != nil {
		sp.MarginBottom = *o.MarginBottom
	}
	if o.PlayResX != nil {
		sp.PlayResX = *o.PlayResX
	}
	if o.PlayResY != nil {
		sp.PlayResY = *o.PlayResY
	}
	return sp
}
