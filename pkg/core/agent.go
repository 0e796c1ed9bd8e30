package core

// AgentState layout indices, appended after the shared pose layout.
const (
	// IdxModel is the index of the active visual/physical model variant.
	IdxModel = ObjectStateSize + iota
	// IdxFlags is the agent status bit-flag word.
	IdxFlags
	// IdxDataOffset stores the index where joint angles end and generic
	// data (stamina, counts, focus) begins.
	IdxDataOffset

	// AgentHeaderSize is the fixed prefix length of an AgentState sequence;
	// joint angles start here.
	AgentHeaderSize
)

// Agent status flags.
const (
	FlagGoalie  = 0x0008
	FlagKicking = 0x0001
	FlagTackle  = 0x1000
	FlagIllegal = 0x4000
)

// AgentState extends the flat object pose layout with a model index, a status
// flag word, a variable-length joint-angle segment and a variable-length
// generic-data segment. The generic-data segment starts at the stored data
// offset; joint angles occupy [AgentHeaderSize, offset).
type AgentState struct {
	ObjectState
}

// NewAgentState creates an AgentState with no joints and no generic data.
func NewAgentState() *AgentState {
	s := &AgentState{ObjectState{data: make([]float64, AgentHeaderSize)}}
	s.data[IdxDataOffset] = AgentHeaderSize
	return s
}

// ModelIndex returns the index of the active model variant.
func (a *AgentState) ModelIndex() int { return int(a.At(IdxModel)) }

// SetModelIndex stores the active model variant index.
func (a *AgentState) SetModelIndex(idx int) { a.data[IdxModel] = float64(idx) }

// Flags returns the status bit-flag word.
func (a *AgentState) Flags() uint32 { return uint32(a.At(IdxFlags)) }

// SetFlags stores the status bit-flag word.
func (a *AgentState) SetFlags(flags uint32) { a.data[IdxFlags] = float64(flags) }

// IsGoalie reports whether the goalie status flag is set.
func (a *AgentState) IsGoalie() bool { return a.Flags()&FlagGoalie != 0 }

func (a *AgentState) dataOffset() int {
	if len(a.data) <= IdxDataOffset {
		return AgentHeaderSize
	}
	return int(a.data[IdxDataOffset])
}

// JointAngles returns the joint-angle segment, in radians, canonical order.
func (a *AgentState) JointAngles() []float64 {
	off := a.dataOffset()
	if off > len(a.data) {
		off = len(a.data)
	}
	return a.data[AgentHeaderSize:off]
}

// SetJointAngles replaces the joint-angle segment, shifting any generic data
// behind it.
func (a *AgentState) SetJointAngles(angles []float64) {
	generic := append([]float64(nil), a.GenericData()...)
	a.data = append(a.data[:AgentHeaderSize], angles...)
	a.data[IdxDataOffset] = float64(AgentHeaderSize + len(angles))
	a.data = append(a.data, generic...)
}

// GenericData returns the generic-data segment (stamina, counts, focus).
func (a *AgentState) GenericData() []float64 {
	off := a.dataOffset()
	if off > len(a.data) {
		return nil
	}
	return a.data[off:]
}

// SetGenericData replaces the generic-data segment.
func (a *AgentState) SetGenericData(values []float64) {
	a.data = append(a.data[:a.dataOffset()], values...)
}

// AppendGenericData appends values to the generic-data segment.
func (a *AgentState) AppendGenericData(values ...float64) {
	a.data = append(a.data, values...)
}

// IsValid reports whether the state describes a present agent: the sequence
// must be long enough to contain the data offset field and the pose must
// carry a non-zero quaternion.
func (a *AgentState) IsValid() bool {
	return len(a.data) > IdxDataOffset && a.ObjectState.IsValid()
}

// Clone returns a deep copy of the full agent sequence.
func (a *AgentState) Clone() *AgentState {
	return &AgentState{a.ObjectState.Clone()}
}
