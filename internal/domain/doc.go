// Package domain models backcountry snow-stability ("nivology") field
// observations and the criticality scale derived from them.
//
// # Observations
//
// An observation is a pin on the map with a time, an optional place name and
// elevation, the slope orientations it concerns, and the signs the observer
// noted in the field:
//
//	Indices (direct instability signs):
//	  avalanche  recent avalanche activity, optionally with details
//	  crack      shooting cracks propagating from the skis
//	  woumpf     collapse sound of a settling weak layer
//
//	Observables (secondary factors):
//	  transport       wind-transported snow
//	  overload        recent snow overload
//	  humidification  wetting of the snowpack
//
// Older records store "fissure" and "surcharge" for crack and overload, and
// French orientation letters (SO, O, NO). Both spellings are accepted when
// parsing; the English keys are written back.
//
// Avalanche details:
//
//	type      spontaneous | triggered
//	break     linear | point
//	sizes     European destructive size scale, 1 (sluff) to 5 (extremely large)
//	remote    released from a distance, a classic strong-instability sign
//
// # Criticality
//
// The criticality level is a 1-5 ordinal inspired by the public avalanche
// bulletin danger scale (Low, Limited, Marked, Strong, Very Strong). It is
// computed on read from the stored signals and never persisted.
//
// Precedence:
//
//  1. Avalanche with at least one recorded size: the largest size decides
//     (size 1-3 Marked, 4 Strong, 5 Very Strong).
//  2. Otherwise a count score: 2 per distinct indice, 1 per distinct
//     observable (0 Low, 1-2 Limited, 3-4 Marked, 5-6 Strong, 7+ Very Strong).
//  3. A remote-triggered avalanche lifts the result to at least Strong.
//
// # Attenuation
//
// Signals age. ApplyTimeAttenuation drops one level per AttenuationPeriod
// elapsed since the observation, never below Low. Whether the displayed level
// is attenuated is a configuration choice of the serving layer.
package domain
