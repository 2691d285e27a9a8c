package domain

import "strconv"

// Explanation is the short copy shown next to a criticality badge.
const Explanation = "Instability signs observed in the field. A remote-triggered avalanche means strong to very strong danger."

// BadgeColors are the style tokens of a criticality badge.
type BadgeColors struct {
	Background string `json:"bg"`
	Text       string `json:"text"`
	Border     string `json:"border"`
}

// Labels maps every level to its display label.
var Labels = map[Level]string{
	LevelLow:        "Low",
	LevelLimited:    "Limited",
	LevelMarked:     "Marked",
	LevelStrong:     "Strong",
	LevelVeryStrong: "Very Strong",
}

// Badges maps every level to its badge colors (bulletin palette).
var Badges = map[Level]BadgeColors{
	LevelLow:        {Background: "bg-emerald-100", Text: "text-emerald-800", Border: "border-emerald-300"},
	LevelLimited:    {Background: "bg-amber-100", Text: "text-amber-800", Border: "border-amber-300"},
	LevelMarked:     {Background: "bg-orange-100", Text: "text-orange-800", Border: "border-orange-300"},
	LevelStrong:     {Background: "bg-red-100", Text: "text-red-800", Border: "border-red-300"},
	LevelVeryStrong: {Background: "bg-red-200", Text: "text-red-900", Border: "border-red-500"},
}

// MarkerColors maps every level to its map pin color.
var MarkerColors = map[Level]string{
	LevelLow:        "#10b981",
	LevelLimited:    "#eab308",
	LevelMarked:     "#f97316",
	LevelStrong:     "#ef4444",
	LevelVeryStrong: "#b91c1c",
}

// Label returns the display label of l. Out-of-range values are clamped first.
func (l Level) Label() string {
	return Labels[ClampLevel(int(l))]
}

// Badge returns the badge colors of l. Out-of-range values are clamped first.
func (l Level) Badge() BadgeColors {
	return Badges[ClampLevel(int(l))]
}

// MarkerColor returns the pin color of l. Out-of-range values are clamped first.
func (l Level) MarkerColor() string {
	return MarkerColors[ClampLevel(int(l))]
}

func (l Level) String() string {
	if !l.Valid() {
		return "Level(" + strconv.Itoa(int(l)) + ")"
	}
	return l.Label()
}

// LevelInfo bundles the lookup data of one level.
type LevelInfo struct {
	Level       Level       `json:"level"`
	Label       string      `json:"label"`
	Badge       BadgeColors `json:"badge"`
	MarkerColor string      `json:"marker_color"`
}

// Describe returns the lookup data of l.
func Describe(l Level) LevelInfo {
	l = ClampLevel(int(l))
	return LevelInfo{
		Level:       l,
		Label:       l.Label(),
		Badge:       l.Badge(),
		MarkerColor: l.MarkerColor(),
	}
}

// Scale returns the lookup data of all five levels in ascending order.
func Scale() []LevelInfo {
	levels := Levels()
	out := make([]LevelInfo, len(levels))
	for i, l := range levels {
		out[i] = Describe(l)
	}
	return out
}
