// Package layout manages the three tree view layout profiles L1, L2 and L3.
package layout

import (
	"fmt"
	"strconv"

	"github.com/justyntemme/dirstat/internal/debug"
)

// ProfileID names a layout profile.
type ProfileID int

const (
	L1 ProfileID = iota
	L2
	L3
)

// Default is the profile used when nothing was saved.
const Default = L2

// IDs lists the profiles in menu order.
var IDs = []ProfileID{L1, L2, L3}

func (id ProfileID) String() string {
	switch id {
	case L1:
		return "L1"
	case L2:
		return "L2"
	case L3:
		return "L3"
	}
	return fmt.Sprintf("L?(%d)", int(id))
}

// ParseProfileID parses "L1".."L3".
func ParseProfileID(s string) (ProfileID, bool) {
	for _, id := range IDs {
		if id.String() == s {
			return id, true
		}
	}
	return Default, false
}

// Flags are the view options a profile remembers.
type Flags struct {
	ShowCurrentPath  bool
	ShowDetailsPanel bool
}

// DefaultFlags returns the built-in flags of a profile.
func DefaultFlags(id ProfileID) Flags {
	return Flags{
		ShowCurrentPath:  true,
		ShowDetailsPanel: id != L3,
	}
}

// Settings is the key/value store profiles are persisted in.
type Settings interface {
	Lookup(key string) (string, bool)
	Set(key, value string)
}

const (
	activeKey      = "MainWindow/Layout"
	currentPathKey = "TreeViewLayout_%s/ShowCurrentPath"
	detailsKey     = "TreeViewLayout_%s/ShowDetailsPanel"
)

// Profiles holds the record of every profile and which one is active.
type Profiles struct {
	active  ProfileID
	records map[ProfileID]Flags
}

// NewProfiles creates the profiles with their built-in defaults, Default
// being active.
func NewProfiles() *Profiles {
	p := &Profiles{active: Default, records: make(map[ProfileID]Flags, len(IDs))}
	for _, id := range IDs {
		p.records[id] = DefaultFlags(id)
	}
	return p
}

// Active returns the active profile.
func (p *Profiles) Active() ProfileID { return p.active }

// Flags returns the stored flags of a profile.
func (p *Profiles) Flags(id ProfileID) Flags {
	if f, ok := p.records[id]; ok {
		return f
	}
	return DefaultFlags(id)
}

// ActiveFlags returns the stored flags of the active profile.
func (p *Profiles) ActiveFlags() Flags {
	return p.Flags(p.active)
}

// Capture stores the flags currently shown into the active profile.
func (p *Profiles) Capture(current Flags) {
	p.records[p.active] = current
}

// Switch captures the flags currently shown into the active profile, makes
// `to` active and returns the flags to apply.
func (p *Profiles) Switch(to ProfileID, current Flags) Flags {
	if _, ok := p.records[to]; !ok {
		return current
	}
	p.Capture(current)
	debug.Log(debug.UI, "layout %s -> %s", p.active, to)
	p.active = to
	return p.records[to]
}

// Load reads all profiles and the active profile name from s. Missing or
// malformed values keep their defaults.
func (p *Profiles) Load(s Settings) {
	for _, id := range IDs {
		f := DefaultFlags(id)
		f.ShowCurrentPath = lookupBool(s, fmt.Sprintf(currentPathKey, id), f.ShowCurrentPath)
		f.ShowDetailsPanel = lookupBool(s, fmt.Sprintf(detailsKey, id), f.ShowDetailsPanel)
		p.records[id] = f
	}
	if name, ok := s.Lookup(activeKey); ok {
		p.active, _ = ParseProfileID(name)
	}
}

// Save writes all profiles and the active profile name to s.
func (p *Profiles) Save(s Settings) {
	for _, id := range IDs {
		f := p.Flags(id)
		s.Set(fmt.Sprintf(currentPathKey, id), strconv.FormatBool(f.ShowCurrentPath))
		s.Set(fmt.Sprintf(detailsKey, id), strconv.FormatBool(f.ShowDetailsPanel))
	}
	s.Set(activeKey, p.active.String())
}

func lookupBool(s Settings, key string, def bool) bool {
	v, ok := s.Lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
