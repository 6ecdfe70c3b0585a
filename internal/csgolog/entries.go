package csgolog

import "time"

// Kind names a line kind. It is also used as a storage key and subject token.
type Kind string

// Line kinds
const (
	KindLogFileStarted        Kind = "log_file_started"
	KindLogFileClosed         Kind = "log_file_closed"
	KindWorldTriggered        Kind = "world_triggered"
	KindWorldTriggeredMap     Kind = "world_triggered_map"
	KindWorldTriggeredScore   Kind = "world_triggered_score"
	KindPlayerTriggered       Kind = "player_triggered"
	KindTeamTriggered         Kind = "team_triggered"
	KindLoadingMap            Kind = "loading_map"
	KindServerCvarsStart      Kind = "server_cvars_start"
	KindServerCvarDump        Kind = "server_cvar_dump"
	KindServerCvarsEnd        Kind = "server_cvars_end"
	KindServerCvars           Kind = "server_cvars"
	KindStartedMap            Kind = "started_map"
	KindServerCvar            Kind = "server_cvar"
	KindEnteredGame           Kind = "entered_game"
	KindGet5Event             Kind = "get5_event"
	KindRconCommand           Kind = "rcon_command"
	KindRconBadPassword       Kind = "rcon_bad_password"
	KindSwitchedTeam          Kind = "switched_team"
	KindPickedUp              Kind = "picked_up"
	KindDropped               Kind = "dropped"
	KindTeamPlaying           Kind = "team_playing"
	KindFreezePeriodStarted   Kind = "freeze_period_started"
	KindLeftBuyzone           Kind = "left_buyzone"
	KindSayTeam               Kind = "say_team"
	KindMoneyChange           Kind = "money_change"
	KindPurchased             Kind = "purchased"
	KindThrewFlashbang        Kind = "threw_flashbang"
	KindBlinded               Kind = "blinded"
	KindSay                   Kind = "say"
	KindKilledEntity          Kind = "killed_entity"
	KindKilled                Kind = "killed"
	KindThrewSmokegrenade     Kind = "threw_smokegrenade"
	KindThrewHEGrenade        Kind = "threw_hegrenade"
	KindAttacked              Kind = "attacked"
	KindDisconnected          Kind = "disconnected"
	KindAssistedKilling       Kind = "assisted_killing"
	KindFlashAssistedKilling  Kind = "flash_assisted_killing"
	KindMolotovSpawned        Kind = "molotov_spawned"
	KindThrewMolotov          Kind = "threw_molotov"
	KindConnected             Kind = "connected"
	KindSteamUserIDValidated  Kind = "steam_userid_validated"
	KindTeamScored            Kind = "team_scored"
	KindThrewDecoy            Kind = "threw_decoy"
	KindMatchUnpaused         Kind = "match_unpaused"
	KindMatchPaused           Kind = "match_paused"
	KindKilledByBomb          Kind = "killed_by_bomb"
	KindAccolade              Kind = "accolade"
	KindGameOver              Kind = "game_over"
	KindChangedName           Kind = "changed_name"
	KindSuicide               Kind = "suicide"
	KindServerMessage         Kind = "server_message"
	KindSteamAuthFailure      Kind = "steamauth_failure"
	KindMetaPluginsLoaded     Kind = "meta_plugins_loaded"
	KindThrewIncendiary       Kind = "threw_incgrenade"
)

// LogEntry is one decoded log line. The concrete type is determined by the
// grammar entry that matched.
type LogEntry interface {
	Prefix() LogPrefix
	Kind() Kind
}

// LogFileStarted opens a log file
type LogFileStarted struct {
	LogPrefix
	File    string `json:"file"`
	Game    string `json:"game"`
	Version int    `json:"version"`
}

func (LogFileStarted) Kind() Kind { return KindLogFileStarted }

// LogFileClosed closes a log file
type LogFileClosed struct {
	LogPrefix
}

func (LogFileClosed) Kind() Kind { return KindLogFileClosed }

// WorldTriggered is a world event such as Round_Start
type WorldTriggered struct {
	LogPrefix
	Event string `json:"event"`
}

func (WorldTriggered) Kind() Kind { return KindWorldTriggered }

// WorldTriggeredMap is a world event tied to a map (Match_Start)
type WorldTriggeredMap struct {
	LogPrefix
	Event string `json:"event"`
	Map   string `json:"map"`
}

func (WorldTriggeredMap) Kind() Kind { return KindWorldTriggeredMap }

// WorldTriggeredScore is a world event carrying team scores
type WorldTriggeredScore struct {
	LogPrefix
	Event   string `json:"event"`
	CTScore int    `json:"ct_score"`
	TScore  int    `json:"t_score"`
}

func (WorldTriggeredScore) Kind() Kind { return KindWorldTriggeredScore }

// PlayerTriggered is an event triggered by a player
type PlayerTriggered struct {
	LogPrefix
	Player Player `json:"player"`
	Event  string `json:"event"`
}

func (PlayerTriggered) Kind() Kind { return KindPlayerTriggered }

// TeamTriggered is an event triggered by a team, with scores
type TeamTriggered struct {
	LogPrefix
	Team    TeamSide `json:"team"`
	Event   string   `json:"event"`
	CTScore int      `json:"ct_score"`
	TScore  int      `json:"t_score"`
}

func (TeamTriggered) Kind() Kind { return KindTeamTriggered }

// LoadingMap is emitted before a map loads
type LoadingMap struct {
	LogPrefix
	Map string `json:"map"`
}

func (LoadingMap) Kind() Kind { return KindLoadingMap }

// ServerCvarsStart marks the start of a cvar dump
type ServerCvarsStart struct {
	LogPrefix
}

func (ServerCvarsStart) Kind() Kind { return KindServerCvarsStart }

// ServerCvarDump is one "key" = "value" line inside a cvar dump
type ServerCvarDump struct {
	LogPrefix
	Cvar
}

func (ServerCvarDump) Kind() Kind { return KindServerCvarDump }

// ServerCvarsEnd marks the end of a cvar dump
type ServerCvarsEnd struct {
	LogPrefix
}

func (ServerCvarsEnd) Kind() Kind { return KindServerCvarsEnd }

// ServerCvars is a complete cvar dump. It is assembled by the Processor from
// the lines between a start and an end marker; LogPrefix is the end marker's.
type ServerCvars struct {
	LogPrefix
	Started LogPrefix `json:"started"`
	Cvars   []Cvar    `json:"cvars"`
}

func (ServerCvars) Kind() Kind { return KindServerCvars }

// StartedMap is emitted once a map has loaded
type StartedMap struct {
	LogPrefix
	Map string `json:"map"`
	CRC int64  `json:"crc"`
}

func (StartedMap) Kind() Kind { return KindStartedMap }

// ServerCvar is a single cvar change announced by the server
type ServerCvar struct {
	LogPrefix
	Cvar
}

func (ServerCvar) Kind() Kind { return KindServerCvar }

// EnteredGame is emitted when a player enters the game
type EnteredGame struct {
	LogPrefix
	Player Player `json:"player"`
}

func (EnteredGame) Kind() Kind { return KindEnteredGame }

// Get5Event carries a get5 match event. JSON is the payload exactly as
// written by the server; it is not always valid JSON.
type Get5Event struct {
	LogPrefix
	JSON string `json:"json"`
}

func (Get5Event) Kind() Kind { return KindGet5Event }

// RconCommand is a command executed over RCON
type RconCommand struct {
	LogPrefix
	Address string `json:"address"`
	Command string `json:"command"`
}

func (RconCommand) Kind() Kind { return KindRconCommand }

// RconBadPassword is a failed RCON authentication
type RconBadPassword struct {
	LogPrefix
	Address string `json:"address"`
}

func (RconBadPassword) Kind() Kind { return KindRconBadPassword }

// SwitchedTeam is a player moving between teams. Player.Team is the old team.
type SwitchedTeam struct {
	LogPrefix
	Player Player  `json:"player"`
	From   TeamAll `json:"from"`
	To     TeamAll `json:"to"`
}

func (SwitchedTeam) Kind() Kind { return KindSwitchedTeam }

// PickedUp is a player picking up an item
type PickedUp struct {
	LogPrefix
	Player Player `json:"player"`
	Item   string `json:"item"`
}

func (PickedUp) Kind() Kind { return KindPickedUp }

// Dropped is a player dropping an item
type Dropped struct {
	LogPrefix
	Player Player `json:"player"`
	Item   string `json:"item"`
}

func (Dropped) Kind() Kind { return KindDropped }

// TeamPlaying names the team playing a side
type TeamPlaying struct {
	LogPrefix
	Side  TeamSide `json:"side"`
	Ready *bool    `json:"ready,omitempty"` // nil when no readiness tag is present
	Team  string   `json:"team"`
}

func (TeamPlaying) Kind() Kind { return KindTeamPlaying }

// FreezePeriodStarted is the start of the freeze period
type FreezePeriodStarted struct {
	LogPrefix
}

func (FreezePeriodStarted) Kind() Kind { return KindFreezePeriodStarted }

// LeftBuyzone lists a player's equipment as they leave the buyzone
type LeftBuyzone struct {
	LogPrefix
	Player Player   `json:"player"`
	Items  []string `json:"items"`
}

func (LeftBuyzone) Kind() Kind { return KindLeftBuyzone }

// SayTeam is a team chat message
type SayTeam struct {
	LogPrefix
	Player  Player `json:"player"`
	Message string `json:"message"`
}

func (SayTeam) Kind() Kind { return KindSayTeam }

// MoneyChange is a change in a player's money
type MoneyChange struct {
	LogPrefix
	Player   Player  `json:"player"`
	Previous int     `json:"previous"`
	Delta    int     `json:"delta"` // signed, taken from the +/- operator
	After    int     `json:"after"`
	Tracked  bool    `json:"tracked"`
	Purchase *string `json:"purchase,omitempty"`
}

func (MoneyChange) Kind() Kind { return KindMoneyChange }

// Purchased is a player buying an item
type Purchased struct {
	LogPrefix
	Player Player `json:"player"`
	Item   string `json:"item"`
}

func (Purchased) Kind() Kind { return KindPurchased }

// ThrewFlashbang is a thrown flashbang
type ThrewFlashbang struct {
	LogPrefix
	Player      Player  `json:"player"`
	Position    Vector3 `json:"position"`
	EntityIndex int     `json:"entity_index"`
}

func (ThrewFlashbang) Kind() Kind { return KindThrewFlashbang }

// Blinded is a player blinded by another player's flashbang
type Blinded struct {
	LogPrefix
	Player      Player        `json:"player"`
	Duration    time.Duration `json:"duration"`
	Attacker    Player        `json:"attacker"`
	EntityIndex int           `json:"entity_index"`
}

func (Blinded) Kind() Kind { return KindBlinded }

// Say is a global chat message
type Say struct {
	LogPrefix
	Player  Player `json:"player"`
	Message string `json:"message"`
}

func (Say) Kind() Kind { return KindSay }

// KilledEntity is a player killing a non-player entity (e.g. a chicken)
type KilledEntity struct {
	LogPrefix
	Player         Player         `json:"player"`
	Position       Vector3        `json:"position"`
	Entity         string         `json:"entity"`
	EntityIndex    int            `json:"entity_index"`
	EntityPosition Vector3        `json:"entity_position"`
	Weapon         string         `json:"weapon"`
	Attributes     KillAttributes `json:"attributes"`
}

func (KilledEntity) Kind() Kind { return KindKilledEntity }

// Killed is a player killing another player
type Killed struct {
	LogPrefix
	Killer         Player         `json:"killer"`
	KillerPosition Vector3        `json:"killer_position"`
	Victim         Player         `json:"victim"`
	VictimPosition Vector3        `json:"victim_position"`
	Weapon         string         `json:"weapon"`
	Attributes     KillAttributes `json:"attributes"`
}

func (Killed) Kind() Kind { return KindKilled }

// ThrewSmokegrenade is a thrown smoke grenade
type ThrewSmokegrenade struct {
	LogPrefix
	Player   Player  `json:"player"`
	Position Vector3 `json:"position"`
}

func (ThrewSmokegrenade) Kind() Kind { return KindThrewSmokegrenade }

// ThrewHEGrenade is a thrown high explosive grenade
type ThrewHEGrenade struct {
	LogPrefix
	Player   Player  `json:"player"`
	Position Vector3 `json:"position"`
}

func (ThrewHEGrenade) Kind() Kind { return KindThrewHEGrenade }

// Attacked is one damage event between players
type Attacked struct {
	LogPrefix
	Attacker         Player   `json:"attacker"`
	AttackerPosition Vector3  `json:"attacker_position"`
	Victim           Player   `json:"victim"`
	VictimPosition   Vector3  `json:"victim_position"`
	Weapon           string   `json:"weapon"`
	Damage           int      `json:"damage"`
	DamageArmor      int      `json:"damage_armor"`
	Health           int      `json:"health"`
	Armor            int      `json:"armor"`
	HitGroup         HitGroup `json:"hitgroup"`
}

func (Attacked) Kind() Kind { return KindAttacked }

// Disconnected is a player leaving the server
type Disconnected struct {
	LogPrefix
	Player Player `json:"player"`
	Reason string `json:"reason"`
}

func (Disconnected) Kind() Kind { return KindDisconnected }

// AssistedKilling is a kill assist
type AssistedKilling struct {
	LogPrefix
	Player Player `json:"player"`
	Victim Player `json:"victim"`
}

func (AssistedKilling) Kind() Kind { return KindAssistedKilling }

// FlashAssistedKilling is a kill assist by blinding the victim
type FlashAssistedKilling struct {
	LogPrefix
	Player Player `json:"player"`
	Victim Player `json:"victim"`
}

func (FlashAssistedKilling) Kind() Kind { return KindFlashAssistedKilling }

// MolotovSpawned is a molotov projectile entering the world
type MolotovSpawned struct {
	LogPrefix
	Position Vector3F `json:"position"`
	Velocity Vector3F `json:"velocity"`
}

func (MolotovSpawned) Kind() Kind { return KindMolotovSpawned }

// ThrewMolotov is a thrown molotov
type ThrewMolotov struct {
	LogPrefix
	Player   Player  `json:"player"`
	Position Vector3 `json:"position"`
}

func (ThrewMolotov) Kind() Kind { return KindThrewMolotov }

// Connected is a player connecting to the server
type Connected struct {
	LogPrefix
	Player  Player `json:"player"`
	Address string `json:"address"`
}

func (Connected) Kind() Kind { return KindConnected }

// SteamUserIDValidated is a successful Steam ID validation
type SteamUserIDValidated struct {
	LogPrefix
	Player Player `json:"player"`
}

func (SteamUserIDValidated) Kind() Kind { return KindSteamUserIDValidated }

// TeamScored is a team's final score
type TeamScored struct {
	LogPrefix
	Side        TeamSide `json:"side"`
	Score       int      `json:"score"`
	PlayerCount int      `json:"player_count"`
}

func (TeamScored) Kind() Kind { return KindTeamScored }

// ThrewDecoy is a thrown decoy
type ThrewDecoy struct {
	LogPrefix
	Player   Player  `json:"player"`
	Position Vector3 `json:"position"`
}

func (ThrewDecoy) Kind() Kind { return KindThrewDecoy }

// MatchUnpaused is emitted when match pause is disabled
type MatchUnpaused struct {
	LogPrefix
}

func (MatchUnpaused) Kind() Kind { return KindMatchUnpaused }

// MatchPaused is emitted when match pause is enabled
type MatchPaused struct {
	LogPrefix
}

func (MatchPaused) Kind() Kind { return KindMatchPaused }

// KilledByBomb is a player killed by the bomb
type KilledByBomb struct {
	LogPrefix
	Player   Player  `json:"player"`
	Position Vector3 `json:"position"`
}

func (KilledByBomb) Kind() Kind { return KindKilledByBomb }

// Accolade is one end-of-match accolade
type Accolade struct {
	LogPrefix
	Type        string  `json:"type"`
	Nickname    string  `json:"nickname"`
	EntityIndex int     `json:"entity_index"`
	Value       float64 `json:"value"`
	Position    int     `json:"position"`
	Score       float64 `json:"score"`
}

func (Accolade) Kind() Kind { return KindAccolade }

// GameOver is the end of a map
type GameOver struct {
	LogPrefix
	Mode     string        `json:"mode"`
	MapGroup string        `json:"map_group"`
	Map      string        `json:"map"`
	CTScore  int           `json:"ct_score"`
	TScore   int           `json:"t_score"`
	Duration time.Duration `json:"duration"`
}

func (GameOver) Kind() Kind { return KindGameOver }

// ChangedName is a player renaming themselves
type ChangedName struct {
	LogPrefix
	Player  Player `json:"player"`
	NewName string `json:"new_name"`
}

func (ChangedName) Kind() Kind { return KindChangedName }

// Suicide is a player killing themselves
type Suicide struct {
	LogPrefix
	Player   Player  `json:"player"`
	Position Vector3 `json:"position"`
	Weapon   string  `json:"weapon"`
}

func (Suicide) Kind() Kind { return KindSuicide }

// ServerMessage is a message broadcast by the server
type ServerMessage struct {
	LogPrefix
	Message string `json:"message"`
}

func (ServerMessage) Kind() Kind { return KindServerMessage }

// SteamAuthFailure is a failed Steam ticket validation. Codes follow
// EAuthSessionResponse from the Steam API.
type SteamAuthFailure struct {
	LogPrefix
	Nickname string `json:"nickname"`
	Code     int    `json:"code"`
}

func (SteamAuthFailure) Kind() Kind { return KindSteamAuthFailure }

// MetaPluginsLoaded reports Metamod plugin loading
type MetaPluginsLoaded struct {
	LogPrefix
	Loaded    int `json:"loaded"`
	Preloaded int `json:"preloaded"`
}

func (MetaPluginsLoaded) Kind() Kind { return KindMetaPluginsLoaded }

// ThrewIncendiary is a thrown incendiary grenade
type ThrewIncendiary struct {
	LogPrefix
	Player   Player  `json:"player"`
	Position Vector3 `json:"position"`
}

func (ThrewIncendiary) Kind() Kind { return KindThrewIncendiary }
