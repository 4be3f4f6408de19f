package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ObserverName    string `json:"observer_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	WorldID         string      `json:"world_id"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	ChunkSize    [3]int `json:"chunk_size"`
	ViewDistance int    `json:"view_distance"`
	MaxLight     int    `json:"max_light"`
	Seed         int64  `json:"seed"`
}

// STATE (server -> client): periodic world snapshot.
type StateMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	WorldID         string     `json:"world_id"`
	State           WorldState `json:"state"`
}

type WorldState struct {
	Hour            int        `json:"hour"`
	Daylight        int        `json:"daylight"`
	Daytime         bool       `json:"daytime"`
	PlayerPos       [3]float32 `json:"player_pos"`
	CachedChunks    int        `json:"cached_chunks"`
	PendingUpdates  int        `json:"pending_updates"`
	VisibleChunks   int        `json:"visible_chunks"`
	GeneratedChunks int        `json:"generated_chunks"`
	UpdateMS        float64    `json:"update_ms"`
}

// REGEN (server -> client): a chunk's display mesh must be rebuilt.
type RegenMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	WorldID         string `json:"world_id"`
	CX              int    `json:"cx"`
	CZ              int    `json:"cz"`
}

// MOVE (client -> server): reposition the tracked player.
type MoveMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Pos             [3]float32 `json:"pos"`
}

// SET_BLOCK (client -> server): place or clear a single block.
type SetBlockMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	Z               int    `json:"z"`
	Block           int    `json:"block"`
	Overwrite       bool   `json:"overwrite,omitempty"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
