package parser

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rcviewer/rclog/internal/symboltree"
	"github.com/rcviewer/rclog/internal/task"
	"github.com/rcviewer/rclog/internal/util"
	"github.com/rcviewer/rclog/pkg/core"
)

// Batch sizes per body-parsing pass before yielding to the task runner.
const (
	replayBatch2D = 300
	replayBatch3D = 50
)

// Default snapshot intervals when no header frequency is given.
const (
	timeStep2D = 0.1
	timeStep3D = 0.2
)

// ballHeight2D is the fixed ball height above the 2D pitch (ball radius).
const ballHeight2D = 0.2

// replayVariant is the closed set of mutually incompatible Replay encodings.
// The variant is selected once at header-parse time; the hot per-line loop
// dispatches through function values instead of re-checking versions.
type replayVariant int

const (
	variantV0_2D replayVariant = iota
	variantV0_3D
	variantV1
)

type agentKey struct {
	side core.Side
	no   int
}

// ReplayDecoder decodes the Replay log family: header "RPL <2D|3D> <version>"
// or the legacy "T ..." / "V ..." version-0 headers.
type ReplayDecoder struct {
	decoderBase

	log  *core.Replay
	part *core.PartialWorldState

	variant replayVariant
	batch   int

	// most recent player-type index per side/number, cached from uppercase
	// agent lines for subsequent lines that omit it
	recentTypes map[agentKey]int

	decodeBall  func(rest string) error
	decodeAgent func(side core.Side, withType bool, rest string) error
}

// NewReplayDecoder creates a Replay decoder. The runner may be nil, in which
// case decoding loops synchronously instead of yielding between batches.
func NewReplayDecoder(logger *slog.Logger, runner *task.Runner) *ReplayDecoder {
	return &ReplayDecoder{
		decoderBase: newDecoderBase(logger, runner),
		recentTypes: make(map[agentKey]int),
	}
}

// Parse feeds more text into the decoder. See Decoder for the contract.
func (d *ReplayDecoder) Parse(data, resource string, partial, incremental bool) (bool, error) {
	if d.disposed {
		return false, ErrDisposed
	}
	if d.err != nil {
		return false, d.err
	}

	if d.updateCursor(data, partial, incremental) {
		d.fastForward()
	}
	wasEmpty := d.log == nil || d.log.Empty()

	if d.log == nil {
		ok, err := d.parseHeader(resource)
		if err != nil {
			d.err = err
			return false, err
		}
		if !ok {
			if !partial {
				d.err = ErrNoHeader
				return false, d.err
			}
			return false, nil
		}
	}

	d.runBody()
	if d.err != nil {
		return false, d.err
	}
	return wasEmpty && !d.log.Empty(), nil
}

// fastForward skips lines already consumed before the buffer was replaced
// wholesale, so replace-mode updates resume instead of re-decoding.
func (d *ReplayDecoder) fastForward() {
	for skipped := 0; skipped < d.lineNo; skipped++ {
		if _, ok := d.cur.Next(); !ok {
			return
		}
	}
}

// Log returns the decoded log, or nil before the header was seen.
func (d *ReplayDecoder) Log() core.SimLog {
	if d.log == nil {
		return nil
	}
	return d.log
}

// Dispose cancels pending continuations and drops decoder-owned state.
func (d *ReplayDecoder) Dispose(keepCursorAlive bool) {
	d.dispose(keepCursorAlive)
	d.part = nil
}

// parseHeader consumes the header line and creates the log. Returns false
// when no complete line is available yet.
func (d *ReplayDecoder) parseHeader(resource string) (bool, error) {
	line, ok := d.cur.Next()
	if !ok {
		return false, nil
	}
	d.lineNo++

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, fmt.Errorf("%w: blank first line", ErrNoHeader)
	}

	switch fields[0] {
	case "RPL":
		if len(fields) < 3 {
			return false, fmt.Errorf("%w: %q", ErrNoHeader, line)
		}
		var kind core.Kind
		switch fields[1] {
		case "2D":
			kind = core.Kind2D
		case "3D":
			kind = core.Kind3D
		default:
			return false, fmt.Errorf("%w: unknown dimension %q", ErrNoHeader, fields[1])
		}
		version, err := strconv.Atoi(fields[2])
		if err != nil || version < 0 {
			return false, fmt.Errorf("%w: bad version %q", ErrNoHeader, fields[2])
		}
		d.createLog(resource, kind, version)

	case "T":
		// legacy version-0 header: team names, optionally with colors
		d.createLog(resource, core.Kind2D, 0)
		if err := d.handleTeams(strings.TrimPrefix(line, "T ")); err != nil {
			return false, fmt.Errorf("%w: %v", ErrNoHeader, err)
		}

	case "V":
		d.createLog(resource, core.Kind2D, 0)
		if err := d.handleLegacyV(strings.TrimPrefix(line, "V ")); err != nil {
			return false, fmt.Errorf("%w: %v", ErrNoHeader, err)
		}

	default:
		return false, fmt.Errorf("%w: %q", ErrNoHeader, line)
	}
	return true, nil
}

func (d *ReplayDecoder) createLog(resource string, kind core.Kind, version int) {
	d.log = &core.Replay{
		SimulationLog: *core.NewSimulationLog(resource, kind),
		Version:       version,
	}

	step := timeStep2D
	d.batch = replayBatch2D
	if kind == core.Kind3D {
		step = timeStep3D
		d.batch = replayBatch3D
		d.log.EnvParams = defaultEnvParams3D()
	} else {
		d.log.EnvParams = defaultEnvParams2D()
	}
	d.log.PlayerParams = defaultPlayerParams(kind)
	d.part = core.NewPartialWorldState(0, step)

	switch {
	case version >= 1:
		d.variant = variantV1
		d.decodeBall = d.decodeBallV1
		d.decodeAgent = d.decodeAgentV1
	case kind == core.Kind3D:
		d.variant = variantV0_3D
		d.decodeBall = d.decodeBallV0_3D
		d.decodeAgent = d.decodeAgentV0_3D
	default:
		d.variant = variantV0_2D
		d.decodeBall = d.decodeBallV0_2D
		d.decodeAgent = d.decodeAgentV0_2D
	}
}

// runBody decodes at most one batch of lines synchronously, then yields by
// scheduling its own continuation while input remains.
func (d *ReplayDecoder) runBody() {
	for {
		for n := 0; n < d.batch; n++ {
			line, ok := d.cur.Next()
			if !ok {
				break
			}
			d.lineNo++
			d.decodeLine(line)
		}
		if !d.cur.HasNext() {
			break
		}
		if d.runner != nil {
			d.schedule(d.runBody)
			return
		}
	}
	if !d.partial {
		d.finish()
	}
}

// finish commits any pending snapshot and finalizes the log.
func (d *ReplayDecoder) finish() {
	if d.done {
		return
	}
	d.done = true
	d.commitPending()
	if d.log.Empty() {
		d.err = ErrEmptyLog
		return
	}
	d.log.Finalize()
	d.logger.Info("replay decoded",
		"resource", d.log.Resource,
		"version", d.log.Version,
		"snapshots", d.log.StateCount(),
		"duration", d.log.Duration())
}

func (d *ReplayDecoder) commitPending() {
	if d.part.AppendTo(&d.log.SimulationLog) {
		snapshots.Add(bgCtx, 1)
	}
}

// decodeLine dispatches one body line on its tag. Unrecognized tags are
// logged and skipped; decode failures become diagnostics, never aborts.
func (d *ReplayDecoder) decodeLine(line string) {
	if line == "" {
		return
	}
	tag, rest := splitTag(line)

	var err error
	switch tag {
	case "EP":
		err = d.handleEnvParams(rest)
	case "PP":
		err = d.handlePlayerParams(rest)
	case "PT":
		err = d.handleTypeParams(rest)
	case "T":
		err = d.handleTeams(rest)
	case "V":
		err = d.handleLegacyV(rest)
	case "S":
		err = d.handleGameLine(rest)
	case "b", "B":
		d.commitPending() // a ball line opens the next tick
		err = d.decodeBall(rest)
	case "l", "L", "r", "R":
		err = d.decodeAgent(sideForTag(tag), tag == "L" || tag == "R", rest)
	default:
		d.logger.Debug("unrecognized line tag", "tag", tag, "line", d.lineNo)
		return
	}

	if err != nil {
		d.diagnose(tag, err)
		return
	}
	linesDecoded.Add(bgCtx, 1)
}

// handleEnvParams replaces the environment ParameterMap wholesale from a JSON
// block. On decode failure the previous map stays untouched.
func (d *ReplayDecoder) handleEnvParams(rest string) error {
	pm, err := paramsFromJSON(rest)
	if err != nil {
		return err
	}
	d.log.EnvParams = pm
	return nil
}

func (d *ReplayDecoder) handlePlayerParams(rest string) error {
	pm, err := paramsFromJSON(rest)
	if err != nil {
		return err
	}
	d.log.PlayerParams = pm
	return nil
}

// handleTypeParams decodes "PT <idx> <json>".
func (d *ReplayDecoder) handleTypeParams(rest string) error {
	idxStr, blob := splitTag(rest)
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 0 {
		return fmt.Errorf("bad player type index %q", idxStr)
	}
	pm, err := paramsFromJSON(blob)
	if err != nil {
		return err
	}
	d.log.SetTypeParam(idx, pm)
	return nil
}

// handleTeams decodes "T <left> <right> [<leftColor> <rightColor>]".
func (d *ReplayDecoder) handleTeams(rest string) error {
	fields := strings.Fields(rest)
	if len(fields) < 2 {
		return fmt.Errorf("team line needs two names, got %d fields", len(fields))
	}
	d.log.LeftTeam.Name = util.TrimQuotes(fields[0])
	d.log.RightTeam.Name = util.TrimQuotes(fields[1])
	if len(fields) >= 4 {
		d.log.LeftTeam.Color = fields[2]
		d.log.RightTeam.Color = fields[3]
	}
	return nil
}

// handleLegacyV decodes the legacy "V <ver> <fieldCode> <freq>" line: a field
// dimension preset code and the sampling frequency.
func (d *ReplayDecoder) handleLegacyV(rest string) error {
	fields := strings.Fields(rest)
	if len(fields) < 3 {
		return fmt.Errorf("legacy V line needs 3 fields, got %d", len(fields))
	}
	if code, err := strconv.Atoi(fields[1]); err == nil {
		applyFieldPreset(d.log.EnvParams, code)
	}
	freq, err := parseFloat(fields[2])
	if err != nil || freq <= 0 {
		return fmt.Errorf("bad frequency %q", fields[2])
	}
	d.log.Frequency = freq
	d.part.TimeStep = 1 / freq
	return nil
}

// handleGameLine decodes "S <gameTime> <playmode> <goalsL> <goalsR> [<penalty
// score/miss x4>]". It commits the previous pending snapshot first.
func (d *ReplayDecoder) handleGameLine(rest string) error {
	fields := strings.Fields(rest)
	if len(fields) < 4 {
		return fmt.Errorf("game line needs at least 4 fields, got %d", len(fields))
	}
	t, err := parseFloat(fields[0])
	if err != nil {
		return fmt.Errorf("bad game time %q", fields[0])
	}

	score := core.GameScore{}
	if score.GoalsLeft, err = strconv.Atoi(fields[2]); err != nil {
		return fmt.Errorf("bad score %q", fields[2])
	}
	if score.GoalsRight, err = strconv.Atoi(fields[3]); err != nil {
		return fmt.Errorf("bad score %q", fields[3])
	}
	if len(fields) >= 8 {
		score.PenScoreLeft, _ = strconv.Atoi(fields[4])
		score.PenMissLeft, _ = strconv.Atoi(fields[5])
		score.PenScoreRight, _ = strconv.Atoi(fields[6])
		score.PenMissRight, _ = strconv.Atoi(fields[7])
	}

	d.commitPending()
	d.part.GameTime = t
	d.part.SetPlayMode(fields[1], t)
	d.part.SetScore(score, t)
	return nil
}

// Version-0 2D: plain decimal floats on the ground plane.

func (d *ReplayDecoder) decodeBallV0_2D(rest string) error {
	fields := strings.Fields(rest)
	if len(fields) < 2 {
		return fmt.Errorf("2d ball line needs 2 fields, got %d", len(fields))
	}
	x, err := parseFloat(fields[0])
	if err != nil {
		return fmt.Errorf("bad ball x %q", fields[0])
	}
	y, err := parseFloat(fields[1])
	if err != nil {
		return fmt.Errorf("bad ball y %q", fields[1])
	}
	d.part.Ball.SetPosition(x, ballHeight2D, y)
	d.part.Ball.SetQuat(0, 0, 0, 1)
	return nil
}

func (d *ReplayDecoder) decodeAgentV0_2D(side core.Side, _ bool, rest string) error {
	fields := strings.Fields(rest)
	if len(fields) < 4 {
		return fmt.Errorf("2d agent line needs at least 4 fields, got %d", len(fields))
	}
	no, err := strconv.Atoi(fields[0])
	if err != nil || no < 0 {
		return fmt.Errorf("bad player number %q", fields[0])
	}
	x, err := parseFloat(fields[1])
	if err != nil {
		return fmt.Errorf("bad agent x %q", fields[1])
	}
	y, err := parseFloat(fields[2])
	if err != nil {
		return fmt.Errorf("bad agent y %q", fields[2])
	}
	heading, err := parseFloat(fields[3])
	if err != nil {
		return fmt.Errorf("bad heading %q", fields[3])
	}

	agent := d.part.Agent(side, no)
	agent.SetPosition(x, 0, y)
	agent.SetHeading(-util.Deg2Rad(heading))

	// optional second angle: neck joint as delta to the body heading
	if len(fields) >= 5 {
		neck, err := parseFloat(fields[4])
		if err != nil {
			return fmt.Errorf("bad neck angle %q", fields[4])
		}
		delta := util.WrapDeg180(neck - heading)
		agent.SetJointAngles([]float64{-util.Deg2Rad(delta)})
	}

	d.log.Team(side).EnsureAgent(no)
	return nil
}

// Version-0 3D: integers scaled by 1/1000 with the source vertical/depth axes
// swapped and the depth axis negated; joint angles in hundredths of a degree
// in the fixed historical ordering.

// decodePoseV0 parses 7 scaled ints (x y z qw qx qy qz, source axes) into the
// target convention.
func decodePoseV0(fields []string, o core.ObjectState) error {
	raw := make([]float64, 7)
	for i := 0; i < 7; i++ {
		v, err := strconv.ParseInt(fields[i], 10, 64)
		if err != nil {
			return fmt.Errorf("bad pose int %q", fields[i])
		}
		raw[i] = float64(v) / 1000
	}
	o.SetPosition(raw[0], raw[2], -raw[1])
	o.SetQuat(raw[4], raw[6], -raw[5], raw[3])
	return nil
}

func (d *ReplayDecoder) decodeBallV0_3D(rest string) error {
	fields := strings.Fields(rest)
	if len(fields) < 7 {
		return fmt.Errorf("3d ball line needs 7 fields, got %d", len(fields))
	}
	return decodePoseV0(fields, d.part.Ball)
}

func (d *ReplayDecoder) decodeAgentV0_3D(side core.Side, _ bool, rest string) error {
	fields := strings.Fields(rest)
	if len(fields) < 8 {
		return fmt.Errorf("3d agent line needs at least 8 fields, got %d", len(fields))
	}
	no, err := strconv.Atoi(fields[0])
	if err != nil || no < 0 {
		return fmt.Errorf("bad player number %q", fields[0])
	}

	agent := d.part.Agent(side, no)
	if err := decodePoseV0(fields[1:], agent.ObjectState); err != nil {
		return err
	}

	if len(fields) > 8 {
		angles, err := reorderHistoricalJoints(fields[8:])
		if err != nil {
			return err
		}
		agent.SetJointAngles(angles)
	}

	d.log.Team(side).EnsureAgent(no)
	return nil
}

// reorderHistoricalJoints converts joint ints (hundredths of a degree) from
// the historical ordering (head, left-arm x4, left-leg x6-7, right-arm x4,
// right-leg x6-7) into the canonical ordering (head, right-arm, left-arm,
// right-leg, left-leg), in radians.
func reorderHistoricalJoints(fields []string) ([]float64, error) {
	raw := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad joint int %q", f)
		}
		raw[i] = util.Deg2Rad(float64(v) / 100)
	}

	const headLen, armLen = 2, 4
	legLen := (len(raw) - headLen - 2*armLen) / 2
	if legLen < 6 || legLen > 7 ||
		headLen+2*armLen+2*legLen != len(raw) {
		return nil, fmt.Errorf("unexpected joint count %d", len(raw))
	}

	head := raw[:headLen]
	leftArm := raw[headLen : headLen+armLen]
	leftLeg := raw[headLen+armLen : headLen+armLen+legLen]
	rightArm := raw[headLen+armLen+legLen : headLen+2*armLen+legLen]
	rightLeg := raw[headLen+2*armLen+legLen:]

	out := make([]float64, 0, len(raw))
	out = append(out, head...)
	out = append(out, rightArm...)
	out = append(out, leftArm...)
	out = append(out, rightLeg...)
	out = append(out, leftLeg...)
	return out, nil
}

// Version >=1: the line remainder is wrapped in sentinel parentheses and
// parsed as a symbol tree, with an explicit hex flags field and optional
// nested joint/stamina sub-nodes.

func (d *ReplayDecoder) parseSentinel(rest string) (*symboltree.Node, error) {
	return symboltree.Parse("(" + rest + ")")
}

func (d *ReplayDecoder) decodeBallV1(rest string) error {
	node, err := d.parseSentinel(rest)
	if err != nil {
		return err
	}

	if d.log.Kind == core.Kind2D {
		if len(node.Values) < 2 {
			return fmt.Errorf("ball node needs 2 values, got %d", len(node.Values))
		}
		x, err := parseFloat(node.Values[0])
		if err != nil {
			return fmt.Errorf("bad ball x %q", node.Values[0])
		}
		y, err := parseFloat(node.Values[1])
		if err != nil {
			return fmt.Errorf("bad ball y %q", node.Values[1])
		}
		d.part.Ball.SetPosition(x, ballHeight2D, y)
		d.part.Ball.SetQuat(0, 0, 0, 1)
		return nil
	}

	if len(node.Values) < 7 {
		return fmt.Errorf("ball node needs 7 values, got %d", len(node.Values))
	}
	vals, err := parseFloats(node.Values[:7])
	if err != nil {
		return err
	}
	d.part.Ball.SetPosition(vals[0], vals[1], vals[2])
	d.part.Ball.SetQuat(vals[3], vals[4], vals[5], vals[6])
	return nil
}

func (d *ReplayDecoder) decodeAgentV1(side core.Side, withType bool, rest string) error {
	node, err := d.parseSentinel(rest)
	if err != nil {
		return err
	}
	vals := node.Values
	if len(vals) < 1 {
		return fmt.Errorf("agent node has no values")
	}

	no, err := strconv.Atoi(vals[0])
	if err != nil || no < 0 {
		return fmt.Errorf("bad player number %q", vals[0])
	}
	idx := 1

	key := agentKey{side: side, no: no}
	desc := d.log.Team(side).EnsureAgent(no)
	if withType {
		// a leading type index is only present on the line that
		// introduces this side/number combination
		if len(vals) <= idx {
			return fmt.Errorf("agent node missing type index")
		}
		typeIdx, err := strconv.Atoi(vals[idx])
		if err != nil || typeIdx < 0 {
			return fmt.Errorf("bad player type index %q", vals[idx])
		}
		idx++
		desc.UseType(typeIdx)
		d.recentTypes[key] = typeIdx
	}

	agent := d.part.Agent(side, no)
	agent.SetModelIndex(d.recentTypes[key])

	poseLen := 3
	if d.log.Kind == core.Kind3D {
		poseLen = 7
	}
	if len(vals) < idx+poseLen+1 {
		return fmt.Errorf("agent node needs %d values, got %d", idx+poseLen+1, len(vals))
	}
	pose, err := parseFloats(vals[idx : idx+poseLen])
	if err != nil {
		return err
	}
	if d.log.Kind == core.Kind2D {
		agent.SetPosition(pose[0], 0, pose[1])
		agent.SetHeading(-util.Deg2Rad(pose[2]))
	} else {
		agent.SetPosition(pose[0], pose[1], pose[2])
		agent.SetQuat(pose[3], pose[4], pose[5], pose[6])
	}
	idx += poseLen

	flags, err := parseFlags(vals[idx])
	if err != nil {
		return err
	}
	agent.SetFlags(flags)

	if j := node.ChildTagged("j"); j != nil {
		angles, err := parseFloats(j.Values[1:])
		if err != nil {
			return fmt.Errorf("joint node: %w", err)
		}
		sign := 1.0
		if d.log.Kind == core.Kind2D {
			sign = -1
		}
		for i := range angles {
			angles[i] = sign * util.Deg2Rad(angles[i])
		}
		agent.SetJointAngles(angles)
	}

	if s := node.ChildTagged("s"); s != nil {
		stamina, err := parseFloats(s.Values[1:])
		if err != nil {
			return fmt.Errorf("stamina node: %w", err)
		}
		agent.SetGenericData(stamina)
	}
	return nil
}

func parseFloats(tokens []string) ([]float64, error) {
	out := make([]float64, len(tokens))
	for i, t := range tokens {
		v, err := parseFloat(t)
		if err != nil {
			return nil, fmt.Errorf("bad numeric token %q", t)
		}
		out[i] = v
	}
	return out, nil
}
