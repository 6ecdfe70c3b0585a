package csgolog

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// captures gives typed access to the named groups of one successful match.
// Every accessor treats a group the pattern cannot have produced as a fault.
type captures struct {
	kind Kind
	re   *regexp.Regexp
	line string
	loc  []int
}

// lookup returns the group text and whether the group took part in the match
func (c *captures) lookup(name string) (string, bool) {
	i := c.re.SubexpIndex(name)
	if i < 0 {
		fault(c.kind, name, "no such capture group")
	}
	start, end := c.loc[2*i], c.loc[2*i+1]
	if start < 0 {
		return "", false
	}
	return c.line[start:end], true
}

// str returns a mandatory group verbatim
func (c *captures) str(name string) string {
	s, ok := c.lookup(name)
	if !ok {
		fault(c.kind, name, "mandatory group did not participate")
	}
	return s
}

// optional returns a group that may be absent
func (c *captures) optional(name string) (string, bool) {
	return c.lookup(name)
}

func (c *captures) integer(name string) int {
	s := c.str(name)
	n, err := strconv.Atoi(s)
	if err != nil {
		fault(c.kind, name, "invalid integer %q", s)
	}
	return n
}

func (c *captures) int64(name string) int64 {
	s := c.str(name)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fault(c.kind, name, "invalid integer %q", s)
	}
	return n
}

func (c *captures) float(name string) float64 {
	s := c.str(name)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fault(c.kind, name, "invalid float %q", s)
	}
	return f
}

// prefix decodes the timestamp shared by every pattern
func (c *captures) prefix() LogPrefix {
	return LogPrefix{
		Month:  c.integer("log_month"),
		Day:    c.integer("log_day"),
		Year:   c.integer("log_year"),
		Hour:   c.integer("log_hour"),
		Minute: c.integer("log_minute"),
		Second: c.integer("log_second"),
	}
}

// player combines the <p>_nick, <p>_entindex, <p>_id and <p>_team groups
func (c *captures) player(p string) Player {
	pl := c.playerNoTeam(p)
	pl.Team = c.team(p + "_team")
	return pl
}

// playerNoTeam decodes a descriptor written without the team field
func (c *captures) playerNoTeam(p string) Player {
	raw := c.str(p + "_id")
	id, err := ParsePlayerIdentity(raw)
	if err != nil {
		fault(c.kind, p+"_id", "%v", err)
	}
	return Player{
		Nickname:    c.str(p + "_nick"),
		EntityIndex: c.integer(p + "_entindex"),
		Identity:    id,
	}
}

func (c *captures) team(name string) TeamAll {
	s := c.str(name)
	switch s {
	case "", "Unassigned":
		return TeamUnassigned
	case "TERRORIST":
		return TeamTerrorist
	case "CT":
		return TeamCT
	case "Spectator":
		return TeamSpectator
	case "Console":
		return TeamConsole
	}
	fault(c.kind, name, "unknown team %q", s)
	return TeamUnassigned
}

func (c *captures) side(name string) TeamSide {
	s := c.str(name)
	switch s {
	case "TERRORIST":
		return SideTerrorist
	case "CT":
		return SideCT
	}
	fault(c.kind, name, "unknown side %q", s)
	return SideTerrorist
}

// vector decodes the <p>_x, <p>_y and <p>_z integer groups
func (c *captures) vector(p string) Vector3 {
	return Vector3{
		X: c.integer(p + "_x"),
		Y: c.integer(p + "_y"),
		Z: c.integer(p + "_z"),
	}
}

func (c *captures) vectorF(p string) Vector3F {
	return Vector3F{
		X: c.float(p + "_x"),
		Y: c.float(p + "_y"),
		Z: c.float(p + "_z"),
	}
}

// killAttributes decodes the optional "(headshot penetrated)" suffix
func (c *captures) killAttributes(name string) KillAttributes {
	s, ok := c.optional(name)
	if !ok {
		return KillAttributes{}
	}
	switch s {
	case "headshot":
		return KillAttributes{Headshot: true}
	case "penetrated":
		return KillAttributes{Penetrated: true}
	case "headshot penetrated":
		return KillAttributes{Headshot: true, Penetrated: true}
	}
	fault(c.kind, name, "unknown kill attributes %q", s)
	return KillAttributes{}
}

func (c *captures) hitGroup(name string) HitGroup {
	s := c.str(name)
	g, err := ParseHitGroup(s)
	if err != nil {
		fault(c.kind, name, "%v", err)
	}
	return g
}

// blindDuration combines whole seconds and a two digit fraction.
// "0" and "68" is 680ms.
func (c *captures) blindDuration(seconds, fraction string) time.Duration {
	return time.Duration(c.integer(seconds))*time.Second +
		time.Duration(c.integer(fraction))*10*time.Millisecond
}

// itemList splits "a b(1) c " as captured between "[ " and "]"
func (c *captures) itemList(name string) []string {
	s := strings.TrimSuffix(c.str(name), " ")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, " ")
}
