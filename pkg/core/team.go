package core

// Side identifies a team side.
type Side int8

const (
	SideNeutral Side = iota
	SideLeft
	SideRight
)

// String returns the lowercase side name.
func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "neutral"
	}
}

// AgentDescription tracks one player number of a team: the distinct
// player-type parameter sets it used over the log and the index of the most
// recently used one.
type AgentDescription struct {
	PlayerNo int
	Side     Side

	// PlayerTypes lists indices into the log's type parameter sets, in
	// first-use order, without duplicates.
	PlayerTypes []int
	// RecentTypeIdx is the most recently used entry of PlayerTypes.
	RecentTypeIdx int
}

// UseType records the use of a player-type parameter set, appending it to the
// type list on first use.
func (a *AgentDescription) UseType(typeIdx int) {
	for _, t := range a.PlayerTypes {
		if t == typeIdx {
			a.RecentTypeIdx = typeIdx
			return
		}
	}
	a.PlayerTypes = append(a.PlayerTypes, typeIdx)
	a.RecentTypeIdx = typeIdx
}

// TeamDescription describes one side of the match and the agents seen on it.
type TeamDescription struct {
	Side  Side
	Name  string
	Color string

	// Agents is sparse, indexed by player number.
	Agents []*AgentDescription
}

// NewTeamDescription creates a team description for the given side.
func NewTeamDescription(side Side, name, color string) *TeamDescription {
	return &TeamDescription{Side: side, Name: name, Color: color}
}

// Agent returns the description for the given player number, or nil.
func (t *TeamDescription) Agent(playerNo int) *AgentDescription {
	if playerNo < 0 || playerNo >= len(t.Agents) {
		return nil
	}
	return t.Agents[playerNo]
}

// EnsureAgent returns the description for the given player number, creating
// it on first sight.
func (t *TeamDescription) EnsureAgent(playerNo int) *AgentDescription {
	for playerNo >= len(t.Agents) {
		t.Agents = append(t.Agents, nil)
	}
	if t.Agents[playerNo] == nil {
		t.Agents[playerNo] = &AgentDescription{PlayerNo: playerNo, Side: t.Side}
	}
	return t.Agents[playerNo]
}
