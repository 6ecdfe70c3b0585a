package csgolog

import "time"

// Shared sub-patterns
const (
	identityPattern = `STEAM_\d:\d:\d+|BOT|Console`
	teamPattern     = `(?:Unassigned|TERRORIST|CT|Spectator|Console)?`
	switchPattern   = `(?:Unassigned|TERRORIST|CT|Spectator)?`
	sidePattern     = `CT|TERRORIST`
	itemPattern     = `[A-Za-z0-9_]*(?:\(\d+\))?`
	addressPattern  = `\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}:\d{1,5}`
)

// player builds a quoted player descriptor whose groups are prefixed with p.
// Nicknames containing '<' cannot be matched; the format has no escaping.
func player(p string) string {
	return `"(?P<` + p + `_nick>[^<]*)<(?P<` + p + `_entindex>\d+)><(?P<` + p + `_id>` + identityPattern + `)><(?P<` + p + `_team>` + teamPattern + `)>"`
}

// playerNoTeam is the descriptor used by team switches, which omits the team
func playerNoTeam(p string) string {
	return `"(?P<` + p + `_nick>[^<]*)<(?P<` + p + `_entindex>\d+)><(?P<` + p + `_id>STEAM_\d:\d:\d+|BOT)>"`
}

// vector matches "[x y z]" integer coordinates
func vector(p string) string {
	return `\[(?P<` + p + `_x>-?\d+) (?P<` + p + `_y>-?\d+) (?P<` + p + `_z>-?\d+)\]`
}

const killAttributesPattern = `(?: \((?P<kill_attributes>headshot|penetrated|headshot penetrated)\))?`

// lineKinds is the grammar table in index order
var lineKinds = []rule{
	{
		kind: KindLogFileStarted,
		body: `Log file started \(file "(?P<file>[^"]*)"\) \(game "(?P<game>[^"]*)"\) \(version "(?P<version>\d+)"\)$`,
		build: func(c *captures) LogEntry {
			return LogFileStarted{LogPrefix: c.prefix(), File: c.str("file"), Game: c.str("game"), Version: c.integer("version")}
		},
	},
	{
		kind: KindLogFileClosed,
		body: `Log file closed$`,
		build: func(c *captures) LogEntry {
			return LogFileClosed{LogPrefix: c.prefix()}
		},
	},
	{
		kind: KindWorldTriggered,
		body: `World triggered "(?P<event>[^"]*)"$`,
		build: func(c *captures) LogEntry {
			return WorldTriggered{LogPrefix: c.prefix(), Event: c.str("event")}
		},
	},
	{
		// Only seen with Match_Start
		kind: KindWorldTriggeredMap,
		body: `World triggered "(?P<event>[^"]*)" on "(?P<map>[^"]*)"$`,
		build: func(c *captures) LogEntry {
			return WorldTriggeredMap{LogPrefix: c.prefix(), Event: c.str("event"), Map: c.str("map")}
		},
	},
	{
		// Only seen with SFUI_Notice_Round_Draw
		kind: KindWorldTriggeredScore,
		body: `World triggered "(?P<event>[^"]*)" \(CT "(?P<ct>\d+)"\) \(T "(?P<t>\d+)"\)$`,
		build: func(c *captures) LogEntry {
			return WorldTriggeredScore{LogPrefix: c.prefix(), Event: c.str("event"), CTScore: c.integer("ct"), TScore: c.integer("t")}
		},
	},
	{
		kind: KindPlayerTriggered,
		body: player("player") + ` triggered "(?P<event>[^"]*)"$`,
		build: func(c *captures) LogEntry {
			return PlayerTriggered{LogPrefix: c.prefix(), Player: c.player("player"), Event: c.str("event")}
		},
	},
	{
		kind: KindTeamTriggered,
		body: `Team "(?P<team>` + sidePattern + `)" triggered "(?P<event>[^"]*)" \(CT "(?P<ct>\d+)"\) \(T "(?P<t>\d+)"\)$`,
		build: func(c *captures) LogEntry {
			return TeamTriggered{LogPrefix: c.prefix(), Team: c.side("team"), Event: c.str("event"), CTScore: c.integer("ct"), TScore: c.integer("t")}
		},
	},
	{
		kind: KindLoadingMap,
		body: `Loading map "(?P<map>[^"]*)"$`,
		build: func(c *captures) LogEntry {
			return LoadingMap{LogPrefix: c.prefix(), Map: c.str("map")}
		},
	},
	{
		kind: KindServerCvarsStart,
		body: `server cvars start$`,
		build: func(c *captures) LogEntry {
			return ServerCvarsStart{LogPrefix: c.prefix()}
		},
	},
	{
		kind: KindServerCvarDump,
		body: `"(?P<cvar_key>[^"]*)" = "(?P<cvar_value>[^"]*)"$`,
		build: func(c *captures) LogEntry {
			return ServerCvarDump{LogPrefix: c.prefix(), Cvar: Cvar{Key: c.str("cvar_key"), Value: c.str("cvar_value")}}
		},
	},
	{
		kind: KindServerCvarsEnd,
		body: `server cvars end$`,
		build: func(c *captures) LogEntry {
			return ServerCvarsEnd{LogPrefix: c.prefix()}
		},
	},
	{
		kind: KindStartedMap,
		body: `Started map "(?P<map>[^"]*)" \(CRC "(?P<crc>-?\d+)"\)$`,
		build: func(c *captures) LogEntry {
			return StartedMap{LogPrefix: c.prefix(), Map: c.str("map"), CRC: c.int64("crc")}
		},
	},
	{
		kind: KindServerCvar,
		body: `server_cvar: "(?P<cvar_key>[^"]*)" "(?P<cvar_value>[^"]*)"$`,
		build: func(c *captures) LogEntry {
			return ServerCvar{LogPrefix: c.prefix(), Cvar: Cvar{Key: c.str("cvar_key"), Value: c.str("cvar_value")}}
		},
	},
	{
		// Team field is always empty
		kind: KindEnteredGame,
		body: player("player") + ` entered the game$`,
		build: func(c *captures) LogEntry {
			return EnteredGame{LogPrefix: c.prefix(), Player: c.player("player")}
		},
	},
	{
		kind: KindGet5Event,
		body: `get5_event: (?P<json>.+)$`,
		build: func(c *captures) LogEntry {
			return Get5Event{LogPrefix: c.prefix(), JSON: c.str("json")}
		},
	},
	{
		// The command may itself contain double quotes
		kind: KindRconCommand,
		body: `rcon from "(?P<address>` + addressPattern + `)": command "(?P<command>.*)"$`,
		build: func(c *captures) LogEntry {
			return RconCommand{LogPrefix: c.prefix(), Address: c.str("address"), Command: c.str("command")}
		},
	},
	{
		kind: KindRconBadPassword,
		body: `rcon from "(?P<address>` + addressPattern + `)": Bad Password$`,
		build: func(c *captures) LogEntry {
			return RconBadPassword{LogPrefix: c.prefix(), Address: c.str("address")}
		},
	},
	{
		kind: KindSwitchedTeam,
		body: playerNoTeam("player") + ` switched from team <(?P<from>` + switchPattern + `)> to <(?P<to>` + switchPattern + `)>$`,
		build: func(c *captures) LogEntry {
			from := c.team("from")
			pl := c.playerNoTeam("player")
			pl.Team = from
			return SwitchedTeam{LogPrefix: c.prefix(), Player: pl, From: from, To: c.team("to")}
		},
	},
	{
		kind: KindPickedUp,
		body: player("player") + ` picked up "(?P<item>[^"]*)"$`,
		build: func(c *captures) LogEntry {
			return PickedUp{LogPrefix: c.prefix(), Player: c.player("player"), Item: c.str("item")}
		},
	},
	{
		kind: KindDropped,
		body: player("player") + ` dropped "(?P<item>[^"]*)"$`,
		build: func(c *captures) LogEntry {
			return Dropped{LogPrefix: c.prefix(), Player: c.player("player"), Item: c.str("item")}
		},
	},
	{
		kind: KindTeamPlaying,
		body: `Team playing "(?P<side>` + sidePattern + `)": (?:\[(?P<readiness>(?:NOT )?READY)\] )?(?P<team>.*)$`,
		build: func(c *captures) LogEntry {
			e := TeamPlaying{LogPrefix: c.prefix(), Side: c.side("side"), Team: c.str("team")}
			if r, ok := c.optional("readiness"); ok {
				ready := r == "READY"
				e.Ready = &ready
			}
			return e
		},
	},
	{
		kind: KindFreezePeriodStarted,
		body: `Starting Freeze period$`,
		build: func(c *captures) LogEntry {
			return FreezePeriodStarted{LogPrefix: c.prefix()}
		},
	},
	{
		kind: KindLeftBuyzone,
		body: player("player") + ` left buyzone with \[ (?P<items>(?:` + itemPattern + ` )*)\]$`,
		build: func(c *captures) LogEntry {
			return LeftBuyzone{LogPrefix: c.prefix(), Player: c.player("player"), Items: c.itemList("items")}
		},
	},
	{
		kind: KindSayTeam,
		body: player("player") + ` say_team "(?P<msg>.*)"$`,
		build: func(c *captures) LogEntry {
			return SayTeam{LogPrefix: c.prefix(), Player: c.player("player"), Message: c.str("msg")}
		},
	},
	{
		// Caused by round changes or purchases. What "tracked" means is not
		// known; the result may be capped by mp_maxmoney.
		kind: KindMoneyChange,
		body: player("player") + ` money change (?P<money_prev>\d+)(?P<money_op>[+-])(?P<money_diff>\d+) = \$(?P<money_after>\d+)(?: \((?P<tracked>tracked)\)(?: \(purchase: (?P<purchase>` + itemPattern + `)\))?)?$`,
		build: func(c *captures) LogEntry {
			delta := c.integer("money_diff")
			if c.str("money_op") == "-" {
				delta = -delta
			}
			e := MoneyChange{
				LogPrefix: c.prefix(),
				Player:    c.player("player"),
				Previous:  c.integer("money_prev"),
				Delta:     delta,
				After:     c.integer("money_after"),
			}
			_, e.Tracked = c.optional("tracked")
			if item, ok := c.optional("purchase"); ok {
				e.Purchase = &item
			}
			return e
		},
	},
	{
		kind: KindPurchased,
		body: player("player") + ` purchased "(?P<item>` + itemPattern + `)"$`,
		build: func(c *captures) LogEntry {
			return Purchased{LogPrefix: c.prefix(), Player: c.player("player"), Item: c.str("item")}
		},
	},
	{
		// The server writes an unbalanced closing parenthesis
		kind: KindThrewFlashbang,
		body: player("player") + ` threw flashbang ` + vector("pos") + ` flashbang entindex (?P<entindex>\d+)\)$`,
		build: func(c *captures) LogEntry {
			return ThrewFlashbang{LogPrefix: c.prefix(), Player: c.player("player"), Position: c.vector("pos"), EntityIndex: c.integer("entindex")}
		},
	},
	{
		// Trailing space is part of the line
		kind: KindBlinded,
		body: player("player") + ` blinded for (?P<blind_seconds>\d+)\.(?P<blind_fraction>\d{2}) by ` + player("attacker") + ` from flashbang entindex (?P<entindex>\d+) $`,
		build: func(c *captures) LogEntry {
			return Blinded{
				LogPrefix:   c.prefix(),
				Player:      c.player("player"),
				Duration:    c.blindDuration("blind_seconds", "blind_fraction"),
				Attacker:    c.player("attacker"),
				EntityIndex: c.integer("entindex"),
			}
		},
	},
	{
		// Message may contain double quotes
		kind: KindSay,
		body: player("player") + ` say "(?P<msg>.*)"$`,
		build: func(c *captures) LogEntry {
			return Say{LogPrefix: c.prefix(), Player: c.player("player"), Message: c.str("msg")}
		},
	},
	{
		kind: KindKilledEntity,
		body: player("player") + ` ` + vector("pos") + ` killed other "(?P<entity>[^<]*)<(?P<entity_index>\d+)>" ` + vector("entity_pos") + ` with "(?P<weapon>` + itemPattern + `)"` + killAttributesPattern + `$`,
		build: func(c *captures) LogEntry {
			return KilledEntity{
				LogPrefix:      c.prefix(),
				Player:         c.player("player"),
				Position:       c.vector("pos"),
				Entity:         c.str("entity"),
				EntityIndex:    c.integer("entity_index"),
				EntityPosition: c.vector("entity_pos"),
				Weapon:         c.str("weapon"),
				Attributes:     c.killAttributes("kill_attributes"),
			}
		},
	},
	{
		kind: KindKilled,
		body: player("killer") + ` ` + vector("killer_pos") + ` killed ` + player("victim") + ` ` + vector("victim_pos") + ` with "(?P<weapon>` + itemPattern + `)"` + killAttributesPattern + `$`,
		build: func(c *captures) LogEntry {
			return Killed{
				LogPrefix:      c.prefix(),
				Killer:         c.player("killer"),
				KillerPosition: c.vector("killer_pos"),
				Victim:         c.player("victim"),
				VictimPosition: c.vector("victim_pos"),
				Weapon:         c.str("weapon"),
				Attributes:     c.killAttributes("kill_attributes"),
			}
		},
	},
	{
		kind: KindThrewSmokegrenade,
		body: player("player") + ` threw smokegrenade ` + vector("pos") + `$`,
		build: func(c *captures) LogEntry {
			return ThrewSmokegrenade{LogPrefix: c.prefix(), Player: c.player("player"), Position: c.vector("pos")}
		},
	},
	{
		kind: KindThrewHEGrenade,
		body: player("player") + ` threw hegrenade ` + vector("pos") + `$`,
		build: func(c *captures) LogEntry {
			return ThrewHEGrenade{LogPrefix: c.prefix(), Player: c.player("player"), Position: c.vector("pos")}
		},
	},
	{
		kind: KindAttacked,
		body: player("attacker") + ` ` + vector("attacker_pos") + ` attacked ` + player("victim") + ` ` + vector("victim_pos") +
			` with "(?P<weapon>` + itemPattern + `)" \(damage "(?P<damage>\d+)"\) \(damage_armor "(?P<damage_armor>\d+)"\) \(health "(?P<health>\d+)"\) \(armor "(?P<armor>\d+)"\) \(hitgroup "(?P<hitgroup>chest|generic|head|left arm|left leg|neck|right arm|right leg|stomach)"\)$`,
		build: func(c *captures) LogEntry {
			return Attacked{
				LogPrefix:        c.prefix(),
				Attacker:         c.player("attacker"),
				AttackerPosition: c.vector("attacker_pos"),
				Victim:           c.player("victim"),
				VictimPosition:   c.vector("victim_pos"),
				Weapon:           c.str("weapon"),
				Damage:           c.integer("damage"),
				DamageArmor:      c.integer("damage_armor"),
				Health:           c.integer("health"),
				Armor:            c.integer("armor"),
				HitGroup:         c.hitGroup("hitgroup"),
			}
		},
	},
	{
		kind: KindDisconnected,
		body: player("player") + ` disconnected \(reason "(?P<reason>[^"]*)"\)$`,
		build: func(c *captures) LogEntry {
			return Disconnected{LogPrefix: c.prefix(), Player: c.player("player"), Reason: c.str("reason")}
		},
	},
	{
		kind: KindAssistedKilling,
		body: player("player") + ` assisted killing ` + player("victim") + `$`,
		build: func(c *captures) LogEntry {
			return AssistedKilling{LogPrefix: c.prefix(), Player: c.player("player"), Victim: c.player("victim")}
		},
	},
	{
		kind: KindFlashAssistedKilling,
		body: player("player") + ` flash-assisted killing ` + player("victim") + `$`,
		build: func(c *captures) LogEntry {
			return FlashAssistedKilling{LogPrefix: c.prefix(), Player: c.player("player"), Victim: c.player("victim")}
		},
	},
	{
		kind: KindMolotovSpawned,
		body: `Molotov projectile spawned at (?P<pos_x>-?\d+\.\d+) (?P<pos_y>-?\d+\.\d+) (?P<pos_z>-?\d+\.\d+), velocity (?P<vel_x>-?\d+\.\d+) (?P<vel_y>-?\d+\.\d+) (?P<vel_z>-?\d+\.\d+)$`,
		build: func(c *captures) LogEntry {
			return MolotovSpawned{LogPrefix: c.prefix(), Position: c.vectorF("pos"), Velocity: c.vectorF("vel")}
		},
	},
	{
		kind: KindThrewMolotov,
		body: player("player") + ` threw molotov ` + vector("pos") + `$`,
		build: func(c *captures) LogEntry {
			return ThrewMolotov{LogPrefix: c.prefix(), Player: c.player("player"), Position: c.vector("pos")}
		},
	},
	{
		kind: KindConnected,
		body: player("player") + ` connected, address "(?P<address>[^"]*)"$`,
		build: func(c *captures) LogEntry {
			return Connected{LogPrefix: c.prefix(), Player: c.player("player"), Address: c.str("address")}
		},
	},
	{
		kind: KindSteamUserIDValidated,
		body: player("player") + ` STEAM USERID validated$`,
		build: func(c *captures) LogEntry {
			return SteamUserIDValidated{LogPrefix: c.prefix(), Player: c.player("player")}
		},
	},
	{
		kind: KindTeamScored,
		body: `Team "(?P<side>` + sidePattern + `)" scored "(?P<score>\d+)" with "(?P<player_count>\d+)" players$`,
		build: func(c *captures) LogEntry {
			return TeamScored{LogPrefix: c.prefix(), Side: c.side("side"), Score: c.integer("score"), PlayerCount: c.integer("player_count")}
		},
	},
	{
		kind: KindThrewDecoy,
		body: player("player") + ` threw decoy ` + vector("pos") + `$`,
		build: func(c *captures) LogEntry {
			return ThrewDecoy{LogPrefix: c.prefix(), Player: c.player("player"), Position: c.vector("pos")}
		},
	},
	{
		kind: KindMatchUnpaused,
		body: `Match pause is disabled - mp_unpause_match$`,
		build: func(c *captures) LogEntry {
			return MatchUnpaused{LogPrefix: c.prefix()}
		},
	},
	{
		kind: KindMatchPaused,
		body: `Match pause is enabled - mp_pause_match$`,
		build: func(c *captures) LogEntry {
			return MatchPaused{LogPrefix: c.prefix()}
		},
	},
	{
		kind: KindKilledByBomb,
		body: player("player") + ` ` + vector("pos") + ` was killed by the bomb\.$`,
		build: func(c *captures) LogEntry {
			return KilledByBomb{LogPrefix: c.prefix(), Player: c.player("player"), Position: c.vector("pos")}
		},
	},
	{
		kind: KindAccolade,
		body: `ACCOLADE, FINAL: \{(?P<accolade>[^}]*)\},\s+(?P<nick>[^<]*)<(?P<entindex>\d+)>,\s+VALUE: (?P<value>-?\d+\.\d+),\s+POS: (?P<pos>\d+),\s+SCORE: (?P<score>-?\d+\.\d+)$`,
		build: func(c *captures) LogEntry {
			return Accolade{
				LogPrefix:   c.prefix(),
				Type:        c.str("accolade"),
				Nickname:    c.str("nick"),
				EntityIndex: c.integer("entindex"),
				Value:       c.float("value"),
				Position:    c.integer("pos"),
				Score:       c.float("score"),
			}
		},
	},
	{
		// CT and T scores may be swapped; this has not been verified
		kind: KindGameOver,
		body: `Game Over: (?P<mode>[A-Za-z0-9_]+) (?P<map_group>[A-Za-z0-9_]+) (?P<map>[A-Za-z0-9_]+) score (?P<ct_score>\d+):(?P<t_score>\d+) after (?P<minutes>\d+) min$`,
		build: func(c *captures) LogEntry {
			return GameOver{
				LogPrefix: c.prefix(),
				Mode:      c.str("mode"),
				MapGroup:  c.str("map_group"),
				Map:       c.str("map"),
				CTScore:   c.integer("ct_score"),
				TScore:    c.integer("t_score"),
				Duration:  time.Duration(c.integer("minutes")) * time.Minute,
			}
		},
	},
	{
		kind: KindChangedName,
		body: player("player") + ` changed name to "(?P<new_nick>[^"]*)"$`,
		build: func(c *captures) LogEntry {
			return ChangedName{LogPrefix: c.prefix(), Player: c.player("player"), NewName: c.str("new_nick")}
		},
	},
	{
		kind: KindSuicide,
		body: player("player") + ` ` + vector("pos") + ` committed suicide with "(?P<weapon>[^"]*)"$`,
		build: func(c *captures) LogEntry {
			return Suicide{LogPrefix: c.prefix(), Player: c.player("player"), Position: c.vector("pos"), Weapon: c.str("weapon")}
		},
	},
	{
		kind: KindServerMessage,
		body: `server_message: "(?P<msg>[^"]*)"$`,
		build: func(c *captures) LogEntry {
			return ServerMessage{LogPrefix: c.prefix(), Message: c.str("msg")}
		},
	},
	{
		kind: KindSteamAuthFailure,
		body: `STEAMAUTH: Client (?P<nick>.*) received failure code (?P<code>\d+)$`,
		build: func(c *captures) LogEntry {
			return SteamAuthFailure{LogPrefix: c.prefix(), Nickname: c.str("nick"), Code: c.integer("code")}
		},
	},
	{
		kind: KindMetaPluginsLoaded,
		body: `\[META\] Loaded (?P<plugins_loaded>\d+) plugin(?:s|\.)(?: \((?P<plugins_preloaded>\d+) already loaded\))?$`,
		build: func(c *captures) LogEntry {
			e := MetaPluginsLoaded{LogPrefix: c.prefix(), Loaded: c.integer("plugins_loaded")}
			if _, ok := c.optional("plugins_preloaded"); ok {
				e.Preloaded = c.integer("plugins_preloaded")
			}
			return e
		},
	},
	{
		kind: KindThrewIncendiary,
		body: player("player") + ` threw incgrenade ` + vector("pos") + `$`,
		build: func(c *captures) LogEntry {
			return ThrewIncendiary{LogPrefix: c.prefix(), Player: c.player("player"), Position: c.vector("pos")}
		},
	},
}
