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

// ulgBatch is the number of lines decoded per body pass before yielding.
const ulgBatch = 100

// UlgDecoder decodes the ULG/sserver log family: header "ULG<version>", body
// lines are parenthesized symbol-tree blocks. Game times in this family are
// tenths of a second and divided by 10 on read.
type UlgDecoder struct {
	decoderBase

	log  *core.SServerLog
	part *core.PartialWorldState
}

// NewUlgDecoder creates a ULG decoder. The runner may be nil, in which case
// decoding loops synchronously instead of yielding between batches.
func NewUlgDecoder(logger *slog.Logger, runner *task.Runner) *UlgDecoder {
	return &UlgDecoder{decoderBase: newDecoderBase(logger, runner)}
}

// Parse feeds more text into the decoder. See Decoder for the contract.
func (d *UlgDecoder) Parse(data, resource string, partial, incremental bool) (bool, error) {
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

func (d *UlgDecoder) fastForward() {
	for skipped := 0; skipped < d.lineNo; skipped++ {
		if _, ok := d.cur.Next(); !ok {
			return
		}
	}
}

// Log returns the decoded log, or nil before the header was seen.
func (d *UlgDecoder) Log() core.SimLog {
	if d.log == nil {
		return nil
	}
	return d.log
}

// Dispose cancels pending continuations and drops decoder-owned state.
func (d *UlgDecoder) Dispose(keepCursorAlive bool) {
	d.dispose(keepCursorAlive)
	d.part = nil
}

func (d *UlgDecoder) parseHeader(resource string) (bool, error) {
	line, ok := d.cur.Next()
	if !ok {
		return false, nil
	}
	d.lineNo++

	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "ULG") {
		return false, fmt.Errorf("%w: %q", ErrNoHeader, line)
	}
	version, err := strconv.Atoi(strings.TrimSpace(trimmed[3:]))
	if err != nil || version < 0 {
		return false, fmt.Errorf("%w: bad ULG version %q", ErrNoHeader, trimmed[3:])
	}

	d.log = &core.SServerLog{
		SimulationLog: *core.NewSimulationLog(resource, core.Kind2D),
		Version:       version,
	}
	d.log.EnvParams = defaultEnvParams2D()
	d.log.PlayerParams = defaultPlayerParams(core.Kind2D)
	d.part = core.NewPartialWorldState(0, timeStep2D)
	return true, nil
}

func (d *UlgDecoder) runBody() {
	for {
		for n := 0; n < ulgBatch; n++ {
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

func (d *UlgDecoder) finish() {
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
	d.logger.Info("sserver log decoded",
		"resource", d.log.Resource,
		"version", d.log.Version,
		"snapshots", d.log.StateCount(),
		"duration", d.log.Duration())
}

func (d *UlgDecoder) commitPending() {
	if d.part.AppendTo(&d.log.SimulationLog) {
		snapshots.Add(bgCtx, 1)
	}
}

func (d *UlgDecoder) decodeLine(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	node, err := symboltree.Parse(line)
	if err != nil {
		d.diagnose("", err)
		return
	}
	if len(node.Values) == 0 {
		d.diagnose("", fmt.Errorf("untagged block"))
		return
	}

	tag := node.Values[0]
	switch tag {
	case "server_param":
		d.log.EnvParams = paramsFromNode(node)
	case "player_param":
		d.log.PlayerParams = paramsFromNode(node)
	case "player_type":
		err = d.handlePlayerType(node)
	case "team":
		err = d.handleTeam(node)
	case "playmode":
		err = d.handlePlayMode(node)
	case "show":
		err = d.handleShow(node)
	case "msg", "draw":
		// intentionally ignored
	default:
		d.logger.Debug("unrecognized block tag", "tag", tag, "line", d.lineNo)
		return
	}

	if err != nil {
		d.diagnose(tag, err)
		return
	}
	linesDecoded.Add(bgCtx, 1)
}

// handlePlayerType stores "(player_type (id <n>) (name value)...)" under its
// type index.
func (d *UlgDecoder) handlePlayerType(node *symboltree.Node) error {
	pm := paramsFromNode(node)
	idx := int(pm.Number("id", -1))
	if idx < 0 {
		return fmt.Errorf("player_type block without id")
	}
	d.log.SetTypeParam(idx, pm)
	return nil
}

// gameTime converts a tenths-of-a-second token to seconds.
func gameTime(token string) (float64, error) {
	t, err := parseFloat(token)
	if err != nil {
		return 0, fmt.Errorf("bad game time %q", token)
	}
	return t / 10, nil
}

// handleTeam decodes "(team <time> <left> <right> <scoreL> <scoreR> [<penalty
// score/miss x4>])", committing the pending snapshot first.
func (d *UlgDecoder) handleTeam(node *symboltree.Node) error {
	vals := node.Values
	if len(vals) < 6 {
		return fmt.Errorf("team block needs 5 values, got %d", len(vals)-1)
	}
	t, err := gameTime(vals[1])
	if err != nil {
		return err
	}

	score := core.GameScore{}
	if score.GoalsLeft, err = strconv.Atoi(vals[4]); err != nil {
		return fmt.Errorf("bad score %q", vals[4])
	}
	if score.GoalsRight, err = strconv.Atoi(vals[5]); err != nil {
		return fmt.Errorf("bad score %q", vals[5])
	}
	if len(vals) >= 10 {
		score.PenScoreLeft, _ = strconv.Atoi(vals[6])
		score.PenMissLeft, _ = strconv.Atoi(vals[7])
		score.PenScoreRight, _ = strconv.Atoi(vals[8])
		score.PenMissRight, _ = strconv.Atoi(vals[9])
	}

	d.commitPending()
	d.part.GameTime = t
	d.log.LeftTeam.Name = util.TrimQuotes(vals[2])
	d.log.RightTeam.Name = util.TrimQuotes(vals[3])
	d.part.SetScore(score, t)
	return nil
}

// handlePlayMode decodes "(playmode <time> <mode>)", committing the pending
// snapshot first.
func (d *UlgDecoder) handlePlayMode(node *symboltree.Node) error {
	if len(node.Values) < 3 {
		return fmt.Errorf("playmode block needs 2 values, got %d", len(node.Values)-1)
	}
	t, err := gameTime(node.Values[1])
	if err != nil {
		return err
	}
	d.commitPending()
	d.part.GameTime = t
	d.part.SetPlayMode(node.Values[2], t)
	return nil
}

// handleShow decodes one per-tick snapshot block: a nested ball node and one
// nested node per agent.
func (d *UlgDecoder) handleShow(node *symboltree.Node) error {
	if len(node.Values) < 2 {
		return fmt.Errorf("show block without time")
	}
	t, err := gameTime(node.Values[1])
	if err != nil {
		return err
	}

	d.commitPending()
	d.part.GameTime = t

	for _, child := range node.Children {
		if len(child.Children) == 0 {
			continue
		}
		header := child.Children[0]
		switch header.Value(0) {
		case "b":
			if err := d.decodeBallNode(child); err != nil {
				return err
			}
		case "l", "r":
			if err := d.decodeAgentNode(child, header); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *UlgDecoder) decodeBallNode(node *symboltree.Node) error {
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

// decodeAgentNode decodes "((<l|r> <num>) <type> <flags-hex> <x> <y> <vx>
// <vy> <body> <neck> [...])" with optional v/s/f/c child nodes.
func (d *UlgDecoder) decodeAgentNode(node, header *symboltree.Node) error {
	side := sideForTag(header.Value(0))
	no, err := strconv.Atoi(header.Value(1))
	if err != nil || no < 0 {
		return fmt.Errorf("bad player number %q", header.Value(1))
	}

	vals := node.Values
	if len(vals) < 8 {
		return fmt.Errorf("agent node needs 8 values, got %d", len(vals))
	}

	typeIdx, err := strconv.Atoi(vals[0])
	if err != nil || typeIdx < 0 {
		return fmt.Errorf("bad player type %q", vals[0])
	}
	flags, err := parseFlags(vals[1])
	if err != nil {
		return err
	}
	pose, err := parseFloats(vals[2:8])
	if err != nil {
		return err
	}

	agent := d.part.Agent(side, no)
	agent.SetModelIndex(typeIdx)
	agent.SetFlags(flags)
	agent.SetPosition(pose[0], 0, pose[1])
	agent.SetHeading(-util.Deg2Rad(pose[4]))
	// neck angle is relative to the body heading
	agent.SetJointAngles([]float64{-util.Deg2Rad(util.WrapDeg180(pose[5]))})

	d.log.Team(side).EnsureAgent(no).UseType(typeIdx)

	// generic data: stamina block, focus, action counts, view width
	if s := node.ChildTagged("s"); s != nil {
		stamina, err := parseFloats(s.Values[1:])
		if err != nil {
			return fmt.Errorf("stamina node: %w", err)
		}
		agent.SetGenericData(stamina)
	}
	if f := node.ChildTagged("f"); f != nil && len(f.Values) >= 3 {
		focusNo, err := parseFloat(f.Values[2])
		if err != nil {
			return fmt.Errorf("focus node: %w", err)
		}
		focusSide := float64(sideForTag(f.Values[1]))
		agent.AppendGenericData(focusSide, focusNo)
	}
	if c := node.ChildTagged("c"); c != nil {
		counts, err := parseFloats(c.Values[1:])
		if err != nil {
			return fmt.Errorf("count node: %w", err)
		}
		agent.AppendGenericData(counts...)
	}
	return nil
}
