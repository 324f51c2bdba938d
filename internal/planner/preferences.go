package planner

import (
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const DefaultAccentColor = "#5A8DEE"

// accentTag admits #RGB and #RRGGBB. Plain hexcolor also takes the alpha forms.
const accentTag = "hexcolor,len=4|len=7"

func validAccent(color string) bool {
	return validate.Var(color, accentTag) == nil
}

// Palette is the set of colors a screen is drawn with.
type Palette struct {
	Primary      string
	Background   string
	Card         string
	Text         string
	Border       string
	Accent       string
	Notification string
}

// Theme is the active mode plus the palette derived from it.
type Theme struct {
	Mode   Mode
	Dark   bool
	Colors Palette
}

var (
	lightPalette = Palette{
		Primary:      DefaultAccentColor,
		Background:   "#FDF6F0",
		Card:         "#FFFFFF",
		Text:         "#1A1A1A",
		Border:       "#E8D7C7",
		Notification: "#FF6B6B",
	}
	darkPalette = Palette{
		Primary:      DefaultAccentColor,
		Background:   "#1A1A1A",
		Card:         "#2C2C2C",
		Text:         "#FFFFFF",
		Border:       "#444444",
		Notification: "#FF6B6B",
	}
)

// ThemeFor builds the theme for p. The accent replaces the primary color.
func ThemeFor(p Preference) Theme {
	base := lightPalette
	if p.Mode == ModeDark {
		base = darkPalette
	}
	accent := p.AccentColor
	if accent == "" {
		accent = DefaultAccentColor
	}
	base.Primary = accent
	base.Accent = accent
	return Theme{Mode: p.Mode, Dark: p.Mode == ModeDark, Colors: base}
}

func DefaultPreference() Preference {
	return Preference{Mode: ModeLight, AccentColor: DefaultAccentColor}
}

// PreferenceStore keeps the display preference under PreferencesKey. Only the
// mode and accent are persisted; the theme is rebuilt from them.
type PreferenceStore struct {
	mu   sync.RWMutex
	kv   KV
	log  *zap.Logger
	pref Preference
}

func NewPreferenceStore(kv KV, log *zap.Logger) *PreferenceStore {
	return &PreferenceStore{kv: kv, log: log.Named("preferences"), pref: DefaultPreference()}
}

// Load reads the stored preference. Missing or broken values fall back to the
// light theme with the default accent.
func (s *PreferenceStore) Load() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pref = DefaultPreference()
	raw, found, err := s.kv.Get(PreferencesKey)
	switch {
	case err != nil:
		s.log.Warn("read failed", zap.Error(err))
	case found:
		var p Preference
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			s.log.Warn("decode failed", zap.Error(err))
			break
		}
		if p.Mode == ModeLight || p.Mode == ModeDark {
			s.pref.Mode = p.Mode
		}
		if validAccent(p.AccentColor) {
			s.pref.AccentColor = p.AccentColor
		}
	}
	return ThemeFor(s.pref)
}

func (s *PreferenceStore) Preference() Preference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pref
}

func (s *PreferenceStore) Theme() Theme {
	return ThemeFor(s.Preference())
}

func (s *PreferenceStore) SetMode(m Mode) (Theme, error) {
	if m != ModeLight && m != ModeDark {
		return Theme{}, ErrInvalidMode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pref.Mode = m
	s.persistLocked()
	return ThemeFor(s.pref), nil
}

func (s *PreferenceStore) ToggleMode() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pref.Mode == ModeDark {
		s.pref.Mode = ModeLight
	} else {
		s.pref.Mode = ModeDark
	}
	s.persistLocked()
	return ThemeFor(s.pref)
}

// SetAccentColor accepts #RGB or #RRGGBB, with or without the leading '#'.
func (s *PreferenceStore) SetAccentColor(color string) (Theme, error) {
	color = strings.TrimSpace(color)
	if color != "" && !strings.HasPrefix(color, "#") {
		color = "#" + color
	}
	if !validAccent(color) {
		return Theme{}, ErrInvalidColor
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pref.AccentColor = strings.ToUpper(color)
	s.persistLocked()
	return ThemeFor(s.pref), nil
}

func (s *PreferenceStore) persistLocked() {
	data, err := json.Marshal(s.pref)
	if err != nil {
		s.log.Error("encode failed", zap.Error(err))
		return
	}
	if err := s.kv.Set(PreferencesKey, string(data)); err != nil {
		s.log.Warn("write failed", zap.Error(err))
	}
}
