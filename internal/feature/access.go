package feature

import (
	"strings"
	"unicode"
)

// Wheelchair is the wheelchair accessibility of a feature.
type Wheelchair string

const (
	WheelchairUnknown Wheelchair = "unknown"
	WheelchairYes     Wheelchair = "yes"
	WheelchairNo      Wheelchair = "no"
	WheelchairLimited Wheelchair = "limited"
)

// Accessibility holds the structured accessibility attributes of a feature.
type Accessibility struct {
	Wheelchair    Wheelchair `json:"wheelchair" enum:"unknown,yes,no,limited"`
	TactilePaving bool       `json:"tactilePaving"`
	AudioSignals  bool       `json:"audioSignals"`
}

// Known reports whether any attribute carries information.
func (a Accessibility) Known() bool {
	return (a.Wheelchair != "" && a.Wheelchair != WheelchairUnknown) || a.TactilePaving || a.AudioSignals
}

// Labels returns the attributes as short phrases, for example
// "wheelchair accessible" or "tactile paving".
func (a Accessibility) Labels() []string {
	var labels []string
	switch a.Wheelchair {
	case WheelchairYes:
		labels = append(labels, "wheelchair accessible")
	case WheelchairLimited:
		labels = append(labels, "limited wheelchair access")
	case WheelchairNo:
		labels = append(labels, "not wheelchair accessible")
	}
	if a.TactilePaving {
		labels = append(labels, "tactile paving")
	}
	if a.AudioSignals {
		labels = append(labels, "audio signals")
	}
	return labels
}

// AccessFlag is one accessibility fact found in free text.
type AccessFlag int

const (
	FlagNone AccessFlag = iota
	FlagWheelchairYes
	FlagWheelchairNo
	FlagWheelchairLimited
	FlagTactilePaving
	FlagAudioSignals
)

// Apply records the flag.
func (a *Accessibility) Apply(flag AccessFlag) {
	switch flag {
	case FlagWheelchairYes:
		a.Wheelchair = WheelchairYes
	case FlagWheelchairNo:
		a.Wheelchair = WheelchairNo
	case FlagWheelchairLimited:
		a.Wheelchair = WheelchairLimited
	case FlagTactilePaving:
		a.TactilePaving = true
	case FlagAudioSignals:
		a.AudioSignals = true
	}
}

// FragmentKind classifies a piece of shape metadata.
type FragmentKind int

const (
	// FragmentText is part of the display name or address.
	FragmentText FragmentKind = iota
	// FragmentAccess is an accessibility phrase or key.
	FragmentAccess
	// FragmentDebug is a renderer or database identifier.
	FragmentDebug
	// FragmentForeign is a key=value pair with no use here.
	FragmentForeign
)

// Fragment is one classified metadata fragment.
type Fragment struct {
	Kind FragmentKind
	Text string
	Flag AccessFlag
}

var accessPhrases = map[string]AccessFlag{
	"wheelchair accessible":           FlagWheelchairYes,
	"wheelchair access":               FlagWheelchairYes,
	"step-free access":                FlagWheelchairYes,
	"step free access":                FlagWheelchairYes,
	"accessible entrance":             FlagWheelchairYes,
	"not wheelchair accessible":       FlagWheelchairNo,
	"no wheelchair access":            FlagWheelchairNo,
	"wheelchair inaccessible":         FlagWheelchairNo,
	"limited wheelchair access":       FlagWheelchairLimited,
	"limited wheelchair accessible":   FlagWheelchairLimited,
	"partially wheelchair accessible": FlagWheelchairLimited,
	"partially accessible":            FlagWheelchairLimited,
	"tactile paving":                  FlagTactilePaving,
	"tactile":                         FlagTactilePaving,
	"audio signals":                   FlagAudioSignals,
	"audio signal":                    FlagAudioSignals,
	"audible signals":                 FlagAudioSignals,
	"accessible pedestrian signals":   FlagAudioSignals,
	"accessible pedestrian signal":    FlagAudioSignals,
}

var accessKeys = map[string]map[string]AccessFlag{
	"wheelchair": {
		"yes": FlagWheelchairYes, "designated": FlagWheelchairYes,
		"no": FlagWheelchairNo, "limited": FlagWheelchairLimited,
	},
	"tactile_paving":        {"yes": FlagTactilePaving},
	"traffic_signals:sound": {"yes": FlagAudioSignals},
	"acoustic":              {"yes": FlagAudioSignals},
}

var debugKeys = map[string]bool{
	"id": true, "osm_id": true, "fid": true, "debug": true, "layer": true, "class": true,
}

var debugPrefixes = []string{"way/", "node/", "relation/", "id:", "fid:", "debug", "osm_id"}

// ClassifyFragment sorts one metadata fragment into a tagged variant.
func ClassifyFragment(s string) Fragment {
	s = strings.Join(strings.Fields(s), " ")
	lower := strings.ToLower(s)
	if s == "" {
		return Fragment{Kind: FragmentForeign}
	}

	if flag, ok := accessPhrases[lower]; ok {
		return Fragment{Kind: FragmentAccess, Flag: flag}
	}

	if k, v, ok := strings.Cut(s, "="); ok {
		key := strings.ToLower(strings.TrimSpace(k))
		val := strings.TrimSpace(v)
		switch {
		case key == "name":
			return Fragment{Kind: FragmentText, Text: val}
		case accessKeys[key] != nil:
			if flag, ok := accessKeys[key][strings.ToLower(val)]; ok {
				return Fragment{Kind: FragmentAccess, Flag: flag}
			}
			return Fragment{Kind: FragmentForeign}
		case debugKeys[key]:
			return Fragment{Kind: FragmentDebug, Text: s}
		}
		return Fragment{Kind: FragmentForeign, Text: s}
	}

	for _, p := range debugPrefixes {
		if strings.HasPrefix(lower, p) {
			return Fragment{Kind: FragmentDebug, Text: s}
		}
	}
	if isDebugID(lower) {
		return Fragment{Kind: FragmentDebug, Text: s}
	}

	return Fragment{Kind: FragmentText, Text: s}
}

// isDebugID matches "#1234", "way 1234" and "node 1234".
func isDebugID(s string) bool {
	if strings.HasPrefix(s, "#") && len(s) > 1 && allDigits(s[1:]) {
		return true
	}
	for _, p := range []string{"way ", "node ", "relation "} {
		if strings.HasPrefix(s, p) && allDigits(strings.TrimSpace(s[len(p):])) {
			return true
		}
	}
	return false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// CleanMetadata extracts a display name and accessibility attributes from
// free-text shape metadata.
//
// Fragments are separated by ';', '|' or ','. Parenthesized accessibility
// or debug fragments are lifted out of names. Duplicate fragments are
// dropped and a house number split from its street ("123, Queen Street
// West") is joined back.
func CleanMetadata(meta string) (name string, access Accessibility) {
	access.Wheelchair = WheelchairUnknown

	var texts []string
	seen := make(map[string]bool)
	for _, raw := range splitFragments(meta) {
		raw = liftParenthesized(raw, &access)

		f := ClassifyFragment(raw)
		switch f.Kind {
		case FragmentAccess:
			access.Apply(f.Flag)
		case FragmentText:
			text := collapseRepeat(f.Text)
			key := strings.ToLower(text)
			if text == "" || seen[key] {
				continue
			}
			seen[key] = true
			texts = append(texts, text)
		}
	}

	return joinAddress(texts), access
}

// splitFragments splits on ; | , outside parentheses.
func splitFragments(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ';', '|', ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

// liftParenthesized removes "(...)" groups whose content is accessibility
// or debug metadata, applying any accessibility flags found.
func liftParenthesized(s string, access *Accessibility) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(s, '(')
		if open < 0 {
			break
		}
		end := strings.IndexByte(s[open:], ')')
		if end < 0 {
			break
		}
		end += open

		keep := false
		for _, inner := range splitFragments(s[open+1 : end]) {
			f := ClassifyFragment(inner)
			switch f.Kind {
			case FragmentAccess:
				access.Apply(f.Flag)
			case FragmentText:
				keep = true
			}
		}

		b.WriteString(s[:open])
		if keep {
			b.WriteString(s[open : end+1])
		}
		s = s[end+1:]
	}
	b.WriteString(s)
	return strings.Join(strings.Fields(b.String()), " ")
}

// collapseRepeat turns "CN Tower CN Tower" into "CN Tower".
func collapseRepeat(s string) string {
	words := strings.Fields(s)
	n := len(words)
	if n < 2 || n%2 != 0 {
		return s
	}
	for i := 0; i < n/2; i++ {
		if !strings.EqualFold(words[i], words[i+n/2]) {
			return s
		}
	}
	return strings.Join(words[:n/2], " ")
}

func joinAddress(texts []string) string {
	var parts []string
	for i := 0; i < len(texts); i++ {
		if isHouseNumber(texts[i]) && i+1 < len(texts) {
			parts = append(parts, texts[i]+" "+texts[i+1])
			i++
			continue
		}
		parts = append(parts, texts[i])
	}
	return strings.Join(parts, ", ")
}

// isHouseNumber matches "12", "12A" and "12-14".
func isHouseNumber(s string) bool {
	if s == "" {
		return false
	}
	if last := rune(s[len(s)-1]); unicode.IsLetter(last) && len(s) > 1 {
		s = s[:len(s)-1]
	}
	lo, hi, ranged := strings.Cut(s, "-")
	if ranged {
		return allDigits(lo) && allDigits(hi)
	}
	return allDigits(s)
}
