package csgolog

import (
	"fmt"
	"strings"
	"time"
)

// LogPrefix is the timestamp that starts every log line
type LogPrefix struct {
	Month  int `json:"month"`
	Day    int `json:"day"`
	Year   int `json:"year"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// Prefix returns the prefix itself so entries embedding it satisfy LogEntry
func (p LogPrefix) Prefix() LogPrefix {
	return p
}

// Time converts the prefix to a time in the given location.
// The server writes local wall-clock time without a zone.
func (p LogPrefix) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(p.Year, time.Month(p.Month), p.Day, p.Hour, p.Minute, p.Second, 0, loc)
}

// TeamSide is one of the two competing sides
type TeamSide int

const (
	SideTerrorist TeamSide = iota
	SideCT
)

func (s TeamSide) String() string {
	switch s {
	case SideTerrorist:
		return "TERRORIST"
	case SideCT:
		return "CT"
	default:
		return fmt.Sprintf("TeamSide(%d)", int(s))
	}
}

func (s TeamSide) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TeamAll is a per-player team tag
type TeamAll int

const (
	TeamUnassigned TeamAll = iota
	TeamTerrorist
	TeamCT
	TeamSpectator
	TeamConsole
)

func (t TeamAll) String() string {
	switch t {
	case TeamUnassigned:
		return "UNASSIGNED"
	case TeamTerrorist:
		return "TERRORIST"
	case TeamCT:
		return "CT"
	case TeamSpectator:
		return "SPECTATOR"
	case TeamConsole:
		return "CONSOLE"
	default:
		return fmt.Sprintf("TeamAll(%d)", int(t))
	}
}

func (t TeamAll) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// IdentityKind discriminates PlayerIdentity
type IdentityKind int

const (
	IdentitySteam IdentityKind = iota
	IdentityBot
	IdentityConsole
)

func (k IdentityKind) String() string {
	switch k {
	case IdentitySteam:
		return "steam"
	case IdentityBot:
		return "bot"
	case IdentityConsole:
		return "console"
	default:
		return fmt.Sprintf("IdentityKind(%d)", int(k))
	}
}

func (k IdentityKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// steamIDPrefix marks a persistent platform identity
const steamIDPrefix = "STEAM_"

// PlayerIdentity identifies a player across lines
type PlayerIdentity struct {
	Kind    IdentityKind `json:"kind"`
	SteamID string       `json:"steam_id,omitempty"` // only set for IdentitySteam
}

// ParsePlayerIdentity decodes the identity field of a player descriptor
func ParsePlayerIdentity(s string) (PlayerIdentity, error) {
	switch {
	case strings.HasPrefix(s, steamIDPrefix):
		return PlayerIdentity{Kind: IdentitySteam, SteamID: s}, nil
	case s == "BOT":
		return PlayerIdentity{Kind: IdentityBot}, nil
	case s == "Console":
		return PlayerIdentity{Kind: IdentityConsole}, nil
	}
	return PlayerIdentity{}, fmt.Errorf("unknown player identity %q", s)
}

func (id PlayerIdentity) String() string {
	switch id.Kind {
	case IdentitySteam:
		return id.SteamID
	case IdentityBot:
		return "BOT"
	case IdentityConsole:
		return "Console"
	default:
		return id.Kind.String()
	}
}

// Player is a player as described within a single line
type Player struct {
	Nickname    string         `json:"nickname"`
	EntityIndex int            `json:"entity_index"`
	Identity    PlayerIdentity `json:"identity"`
	Team        TeamAll        `json:"team"`
}

// Vector3 is an integer map position
type Vector3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Vector3F is a floating point position or velocity
type Vector3F struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// KillAttributes are the modifiers attached to a kill
type KillAttributes struct {
	Headshot   bool `json:"headshot"`
	Penetrated bool `json:"penetrated"`
}

// HitGroup is the body location hit by an attack
type HitGroup int

const (
	HitGeneric HitGroup = iota
	HitHead
	HitNeck
	HitChest
	HitStomach
	HitLeftArm
	HitRightArm
	HitLeftLeg
	HitRightLeg
)

var hitGroupNames = map[HitGroup]string{
	HitGeneric:  "generic",
	HitHead:     "head",
	HitNeck:     "neck",
	HitChest:    "chest",
	HitStomach:  "stomach",
	HitLeftArm:  "left arm",
	HitRightArm: "right arm",
	HitLeftLeg:  "left leg",
	HitRightLeg: "right leg",
}

// ParseHitGroup decodes a hitgroup name as written in the log
func ParseHitGroup(s string) (HitGroup, error) {
	for g, name := range hitGroupNames {
		if name == s {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown hitgroup %q", s)
}

func (g HitGroup) String() string {
	if name, ok := hitGroupNames[g]; ok {
		return name
	}
	return fmt.Sprintf("HitGroup(%d)", int(g))
}

func (g HitGroup) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// Cvar is a single server configuration variable
type Cvar struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
