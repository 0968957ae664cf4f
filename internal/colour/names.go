package colour

import "sync"

// garmentColours is the default name table. Order matters: it is the
// tie-break order for equidistant entries and the winner order for
// duplicate values (magenta before fuchsia).
var garmentColours = []NamedColour{
	{Name: "black", RGB: MustParseHex("#000000")},
	{Name: "white", RGB: MustParseHex("#ffffff")},
	{Name: "red", RGB: MustParseHex("#ff0000")},
	{Name: "green", RGB: MustParseHex("#008000")},
	{Name: "blue", RGB: MustParseHex("#0000ff")},
	{Name: "yellow", RGB: MustParseHex("#ffff00")},
	{Name: "orange", RGB: MustParseHex("#ffa500")},
	{Name: "purple", RGB: MustParseHex("#800080")},
	{Name: "cyan", RGB: MustParseHex("#00ffff")},
	{Name: "magenta", RGB: MustParseHex("#ff00ff")},
	{Name: "gray", RGB: MustParseHex("#808080")},
	{Name: "brown", RGB: MustParseHex("#a52a2a")},
	{Name: "pink", RGB: MustParseHex("#ffc0cb")},
	{Name: "lime", RGB: MustParseHex("#00ff00")},
	{Name: "teal", RGB: MustParseHex("#008080")},
	{Name: "navy", RGB: MustParseHex("#000080")},
	{Name: "lightgray", RGB: MustParseHex("#d3d3d3")},
	{Name: "darkgray", RGB: MustParseHex("#a9a9a9")},
	{Name: "chartreuse", RGB: MustParseHex("#7fff00")},
	{Name: "coral", RGB: MustParseHex("#ff7f50")},
	{Name: "salmon", RGB: MustParseHex("#fa8072")},
	{Name: "violet", RGB: MustParseHex("#ee82ee")},
	{Name: "indigo", RGB: MustParseHex("#4b0082")},
	{Name: "gold", RGB: MustParseHex("#ffd700")},
	{Name: "silver", RGB: MustParseHex("#c0c0c0")},
	{Name: "bronze", RGB: MustParseHex("#cd7f32")},
	{Name: "crimson", RGB: MustParseHex("#dc143c")},
	{Name: "orchid", RGB: MustParseHex("#da70d6")},
	{Name: "mintcream", RGB: MustParseHex("#f5fffa")},
	{Name: "lavender", RGB: MustParseHex("#e6e6fa")},
	{Name: "beige", RGB: MustParseHex("#f5f5dc")},
	{Name: "antiquewhite", RGB: MustParseHex("#faebd7")},
	{Name: "aliceblue", RGB: MustParseHex("#f0f8ff")},
	{Name: "azure", RGB: MustParseHex("#f0ffff")},
	{Name: "honeydew", RGB: MustParseHex("#f0fff0")},
	{Name: "seashell", RGB: MustParseHex("#fff5ee")},
	{Name: "ghostwhite", RGB: MustParseHex("#f8f8ff")},
	{Name: "snow", RGB: MustParseHex("#fffafa")},
	{Name: "oldlace", RGB: MustParseHex("#fdf5e6")},
	{Name: "linen", RGB: MustParseHex("#faf0e6")},
	{Name: "papayawhip", RGB: MustParseHex("#ffefd5")},
	{Name: "blanchedalmond", RGB: MustParseHex("#ffebcd")},
	{Name: "bisque", RGB: MustParseHex("#ffe4c4")},
	{Name: "peachpuff", RGB: MustParseHex("#ffdab9")},
	{Name: "moccasin", RGB: MustParseHex("#ffe4b5")},
	{Name: "navajowhite", RGB: MustParseHex("#ffdead")},
	{Name: "wheat", RGB: MustParseHex("#f5deb3")},
	{Name: "burlywood", RGB: MustParseHex("#deb887")},
	{Name: "tan", RGB: MustParseHex("#d2b48c")},
	{Name: "rosybrown", RGB: MustParseHex("#bc8f8f")},
	{Name: "saddlebrown", RGB: MustParseHex("#8b4513")},
	{Name: "sienna", RGB: MustParseHex("#a0522d")},
	{Name: "chocolate", RGB: MustParseHex("#d2691e")},
	{Name: "peru", RGB: MustParseHex("#cd853f")},
	{Name: "darkorange", RGB: MustParseHex("#ff8c00")},
	{Name: "lightsalmon", RGB: MustParseHex("#ffa07a")},
	{Name: "darksalmon", RGB: MustParseHex("#e9967a")},
	{Name: "lightpink", RGB: MustParseHex("#ffb6c1")},
	{Name: "deeppink", RGB: MustParseHex("#ff1493")},
	{Name: "hotpink", RGB: MustParseHex("#ff69b4")},
	{Name: "fuchsia", RGB: MustParseHex("#ff00ff")},
	{Name: "mediumvioletred", RGB: MustParseHex("#c71585")},
	{Name: "darkviolet", RGB: MustParseHex("#9400d3")},
	{Name: "blueviolet", RGB: MustParseHex("#8a2be2")},
	{Name: "mediumorchid", RGB: MustParseHex("#ba55d3")},
	{Name: "darkorchid", RGB: MustParseHex("#9932cc")},
	{Name: "darkblue", RGB: MustParseHex("#00008b")},
	{Name: "mediumblue", RGB: MustParseHex("#0000cd")},
	{Name: "royalblue", RGB: MustParseHex("#4169e1")},
	{Name: "steelblue", RGB: MustParseHex("#4682b4")},
	{Name: "dodgerblue", RGB: MustParseHex("#1e90ff")},
	{Name: "cornflowerblue", RGB: MustParseHex("#6495ed")},
	{Name: "lightskyblue", RGB: MustParseHex("#87cefa")},
	{Name: "skyblue", RGB: MustParseHex("#87ceeb")},
	{Name: "lightblue", RGB: MustParseHex("#add8e6")},
	{Name: "powderblue", RGB: MustParseHex("#b0e0e6")},
	{Name: "paleturquoise", RGB: MustParseHex("#afeeee")},
	{Name: "turquoise", RGB: MustParseHex("#40e0d0")},
	{Name: "mediumturquoise", RGB: MustParseHex("#48d1cc")},
	{Name: "darkturquoise", RGB: MustParseHex("#00ced1")},
	{Name: "lightseagreen", RGB: MustParseHex("#20b2aa")},
	{Name: "darkseagreen", RGB: MustParseHex("#8fbc8f")},
	{Name: "mediumseagreen", RGB: MustParseHex("#3cb371")},
	{Name: "seagreen", RGB: MustParseHex("#2e8b57")},
	{Name: "forestgreen", RGB: MustParseHex("#228b22")},
	{Name: "greenyellow", RGB: MustParseHex("#adff2f")},
	{Name: "yellowgreen", RGB: MustParseHex("#9acd32")},
	{Name: "olive", RGB: MustParseHex("#808000")},
	{Name: "olivedrab", RGB: MustParseHex("#6b8e23")},
	{Name: "darkolivegreen", RGB: MustParseHex("#556b2f")},
	{Name: "lawngreen", RGB: MustParseHex("#7cfc00")},
	{Name: "limegreen", RGB: MustParseHex("#32cd32")},
	{Name: "mediumspringgreen", RGB: MustParseHex("#00fa9a")},
	{Name: "springgreen", RGB: MustParseHex("#00ff7f")},
	{Name: "lightgreen", RGB: MustParseHex("#90ee90")},
	{Name: "darkgreen", RGB: MustParseHex("#006400")},
	{Name: "mediumaquamarine", RGB: MustParseHex("#66cdaa")},
	{Name: "aquamarine", RGB: MustParseHex("#7fffd4")},
	{Name: "darkcyan", RGB: MustParseHex("#008b8b")},
	{Name: "lightcyan", RGB: MustParseHex("#e0ffff")},
	{Name: "cadetblue", RGB: MustParseHex("#5f9ea0")},
	{Name: "mediumslateblue", RGB: MustParseHex("#7b68ee")},
	{Name: "slateblue", RGB: MustParseHex("#6a5acd")},
	{Name: "darkslateblue", RGB: MustParseHex("#483d8b")},
	{Name: "mediumpurple", RGB: MustParseHex("#9370db")},
}

// DefaultNameTable returns a copy of the default garment colour table.
func DefaultNameTable() []NamedColour {
	table := make([]NamedColour, len(garmentColours))
	copy(table, garmentColours)
	return table
}

var (
	defaultNamerOnce sync.Once
	defaultNamer     *TableNamer
)

// DefaultNamer returns a shared RGB-metric namer over DefaultNameTable.
func DefaultNamer() *TableNamer {
	defaultNamerOnce.Do(func() {
		n, err := NewTableNamer(garmentColours)
		if err != nil {
			panic(err)
		}
		defaultNamer = n
	})
	return defaultNamer
}
