package config

import "subgen/internal/styles"

// StyleOverride converts the config file's styles section into the
// styles package's Override shape, which LoadStyle and the pipeline
// package's ExportOptions consume directly.
func (c *Config) StyleOverride() styles.Override {
	return styles.Override{
		Preset:       c.Styles.Preset,
		Primary:      convertFontStyleConfig(c.Styles.Primary),
		Secondary:    convertFontStyleConfig(c.Styles.Secondary),
		Alignment:    c.Styles.Alignment,
		MarginBottom: c.Styles.MarginBottom,
		PlayResX:     c.Styles.PlayResX,
		PlayResY:     c.Styles.PlayResY,
	}
}

func convertFontStyleConfig(f *FontStyleConfig) *styles.FontStyleOverride {
	if f == nil {
		return nil
	}
	return &styles.FontStyleOverride{
		Font:         f.Font,
		Size:         f.Size,
		Color:        f.Color,
		OutlineColor: f.OutlineColor,
		OutlineWidth: f.OutlineWidth,
		ShadowWidth:  f.ShadowWidth,
		Bold:         f.Bold,
		Italic:       f.Italic,
	}
}
