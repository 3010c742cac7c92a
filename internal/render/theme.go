package render

// Corporate theme shared by every output format.
const (
	themePrimary   = "1e3a5f"
	themeSecondary = "2563eb"
	themeAccent    = "7c3aed"
	themeText      = "1f2937"
	themeTextLight = "6b7280"
	themeBorder    = "e5e7eb"
	themeBgAlt     = "f8fafc"
	themeBgSection = "f0f4ff"
)

type rgb struct{ r, g, b int }

var (
	rgbPrimary   = rgb{0x1e, 0x3a, 0x5f}
	rgbSecondary = rgb{0x25, 0x63, 0xeb}
	rgbAccent    = rgb{0x7c, 0x3a, 0xed}
	rgbText      = rgb{0x1f, 0x29, 0x37}
	rgbTextLight = rgb{0x6b, 0x72, 0x80}
	rgbBorder    = rgb{0xe5, 0xe7, 0xeb}
	rgbBgAlt     = rgb{0xf8, 0xfa, 0xfc}
)
