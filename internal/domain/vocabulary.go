package domain

import "strings"

// Indice is a direct instability sign observed in the field.
type Indice string

const (
	IndiceAvalanche Indice = "avalanche"
	IndiceCrack     Indice = "crack"
	IndiceWoumpf    Indice = "woumpf"
)

// Observable is a secondary environmental factor noted by the observer.
type Observable string

const (
	ObservableTransport      Observable = "transport"
	ObservableOverload       Observable = "overload"
	ObservableHumidification Observable = "humidification"
)

// Orientation is one of the eight slope aspects of the compass rose.
type Orientation string

const (
	OrientationN  Orientation = "N"
	OrientationNE Orientation = "NE"
	OrientationE  Orientation = "E"
	OrientationSE Orientation = "SE"
	OrientationS  Orientation = "S"
	OrientationSW Orientation = "SW"
	OrientationW  Orientation = "W"
	OrientationNW Orientation = "NW"
)

// AvalancheType tells whether an avalanche released on its own or was triggered.
type AvalancheType string

const (
	AvalancheSpontaneous AvalancheType = "spontaneous"
	AvalancheTriggered   AvalancheType = "triggered"
)

// AvalancheBreak is the shape of the release: slab (linear) or loose snow (point).
type AvalancheBreak string

const (
	BreakLinear AvalancheBreak = "linear"
	BreakPoint  AvalancheBreak = "point"
)

// Vocabulary order is the display and storage order.
var (
	indiceOrder      = []Indice{IndiceAvalanche, IndiceCrack, IndiceWoumpf}
	observableOrder  = []Observable{ObservableTransport, ObservableOverload, ObservableHumidification}
	orientationOrder = []Orientation{
		OrientationN, OrientationNE, OrientationE, OrientationSE,
		OrientationS, OrientationSW, OrientationW, OrientationNW,
	}
)

var indiceLabels = map[Indice]string{
	IndiceAvalanche: "Recent avalanche",
	IndiceCrack:     "Shooting cracks",
	IndiceWoumpf:    "Woumpf",
}

var observableLabels = map[Observable]string{
	ObservableTransport:      "Wind transport",
	ObservableOverload:       "Overload",
	ObservableHumidification: "Humidification",
}

var orientationLabels = map[Orientation]string{
	OrientationN:  "North",
	OrientationNE: "North-East",
	OrientationE:  "East",
	OrientationSE: "South-East",
	OrientationS:  "South",
	OrientationSW: "South-West",
	OrientationW:  "West",
	OrientationNW: "North-West",
}

// Orientation angles in degrees for marker glyphs, screen coordinates (N up, clockwise).
var orientationAngles = map[Orientation]int{
	OrientationN:  -90,
	OrientationNE: -45,
	OrientationE:  0,
	OrientationSE: 45,
	OrientationS:  90,
	OrientationSW: 135,
	OrientationW:  180,
	OrientationNW: -135,
}

var avalancheTypeLabels = map[AvalancheType]string{
	AvalancheSpontaneous: "Spontaneous",
	AvalancheTriggered:   "Triggered",
}

var avalancheBreakLabels = map[AvalancheBreak]string{
	BreakLinear: "Linear break",
	BreakPoint:  "Point release",
}

// Legacy keys written by earlier versions of the app.
var (
	legacyIndices = map[string]Indice{
		"fissure": IndiceCrack,
	}
	legacyObservables = map[string]Observable{
		"surcharge": ObservableOverload,
	}
	legacyOrientations = map[string]Orientation{
		"SO": OrientationSW,
		"O":  OrientationW,
		"NO": OrientationNW,
	}
	legacyAvalancheTypes = map[string]AvalancheType{
		"spontane": AvalancheSpontaneous,
		"provoque": AvalancheTriggered,
	}
	legacyAvalancheBreaks = map[string]AvalancheBreak{
		"lineaire":   BreakLinear,
		"ponctuelle": BreakPoint,
	}
)

// Indices returns the indice vocabulary in display order.
func Indices() []Indice { return append([]Indice(nil), indiceOrder...) }

// Observables returns the observable vocabulary in display order.
func Observables() []Observable { return append([]Observable(nil), observableOrder...) }

// Orientations returns the eight aspects clockwise from north.
func Orientations() []Orientation { return append([]Orientation(nil), orientationOrder...) }

// Valid reports whether i belongs to the indice vocabulary.
func (i Indice) Valid() bool {
	_, ok := indiceLabels[i]
	return ok
}

// Label returns the display label, or the raw key for unknown indices.
func (i Indice) Label() string {
	if l, ok := indiceLabels[i]; ok {
		return l
	}
	return string(i)
}

// Valid reports whether o belongs to the observable vocabulary.
func (o Observable) Valid() bool {
	_, ok := observableLabels[o]
	return ok
}

// Label returns the display label, or the raw key for unknown observables.
func (o Observable) Label() string {
	if l, ok := observableLabels[o]; ok {
		return l
	}
	return string(o)
}

func (o Orientation) Valid() bool {
	_, ok := orientationLabels[o]
	return ok
}

func (o Orientation) Label() string {
	if l, ok := orientationLabels[o]; ok {
		return l
	}
	return string(o)
}

// Angle returns the marker glyph angle in degrees; 0 for unknown aspects.
func (o Orientation) Angle() int {
	return orientationAngles[o]
}

func (t AvalancheType) Label() string {
	if l, ok := avalancheTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

func (b AvalancheBreak) Label() string {
	if l, ok := avalancheBreakLabels[b]; ok {
		return l
	}
	return string(b)
}

// ParseIndice maps a raw key, current or legacy, to an Indice.
func ParseIndice(raw string) (Indice, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if i := Indice(key); i.Valid() {
		return i, true
	}
	i, ok := legacyIndices[key]
	return i, ok
}

// ParseObservable maps a raw key, current or legacy, to an Observable.
func ParseObservable(raw string) (Observable, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if o := Observable(key); o.Valid() {
		return o, true
	}
	o, ok := legacyObservables[key]
	return o, ok
}

// ParseOrientation accepts English and French compass letters.
func ParseOrientation(raw string) (Orientation, bool) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if o := Orientation(key); o.Valid() {
		return o, true
	}
	o, ok := legacyOrientations[key]
	return o, ok
}

// ParseAvalancheType returns the empty type for unknown values.
func ParseAvalancheType(raw string) AvalancheType {
	key := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := avalancheTypeLabels[AvalancheType(key)]; ok {
		return AvalancheType(key)
	}
	return legacyAvalancheTypes[key]
}

// ParseAvalancheBreak returns the empty break for unknown values.
func ParseAvalancheBreak(raw string) AvalancheBreak {
	key := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := avalancheBreakLabels[AvalancheBreak(key)]; ok {
		return AvalancheBreak(key)
	}
	return legacyAvalancheBreaks[key]
}

// IndiceLabel renders a raw stored key for display. Unknown keys are shown as-is.
func IndiceLabel(raw string) string {
	if i, ok := ParseIndice(raw); ok {
		return i.Label()
	}
	return raw
}

// ObservableLabel renders a raw stored key for display. Unknown keys are shown as-is.
func ObservableLabel(raw string) string {
	if o, ok := ParseObservable(raw); ok {
		return o.Label()
	}
	return raw
}

// NormalizeIndices parses, dedupes and orders raw indice keys, dropping unknown ones.
func NormalizeIndices(raw []string) []Indice {
	seen := make(map[Indice]bool, len(raw))
	for _, r := range raw {
		if i, ok := ParseIndice(r); ok {
			seen[i] = true
		}
	}
	out := make([]Indice, 0, len(seen))
	for _, i := range indiceOrder {
		if seen[i] {
			out = append(out, i)
		}
	}
	return out
}

// NormalizeObservables parses, dedupes and orders raw observable keys, dropping unknown ones.
func NormalizeObservables(raw []string) []Observable {
	seen := make(map[Observable]bool, len(raw))
	for _, r := range raw {
		if o, ok := ParseObservable(r); ok {
			seen[o] = true
		}
	}
	out := make([]Observable, 0, len(seen))
	for _, o := range observableOrder {
		if seen[o] {
			out = append(out, o)
		}
	}
	return out
}

// NormalizeOrientations parses, dedupes and orders raw aspects clockwise from north.
func NormalizeOrientations(raw []string) []Orientation {
	seen := make(map[Orientation]bool, len(raw))
	for _, r := range raw {
		if o, ok := ParseOrientation(r); ok {
			seen[o] = true
		}
	}
	out := make([]Orientation, 0, len(seen))
	for _, o := range orientationOrder {
		if seen[o] {
			out = append(out, o)
		}
	}
	return out
}
