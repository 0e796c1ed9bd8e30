package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rcviewer/rclog/internal/symboltree"
	"github.com/rcviewer/rclog/internal/util"
	"github.com/rcviewer/rclog/pkg/core"
)

// paramsFromJSON decodes a JSON object into an ordered ParameterMap. A plain
// json.Unmarshal into a map would lose key order, so the token stream is
// walked directly.
func paramsFromJSON(data string) (*core.ParameterMap, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parameter block: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parameter block: expected object, got %v", tok)
	}

	pm, err := paramsFromObject(dec)
	if err != nil {
		return nil, fmt.Errorf("parameter block: %w", err)
	}
	return pm, nil
}

// paramsFromObject reads object members until the closing brace.
func paramsFromObject(dec *json.Decoder) (*core.ParameterMap, error) {
	pm := core.NewParameterMap()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); ok && delim == '}' {
			return pm, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected key, got %v", tok)
		}

		value, err := jsonValue(dec)
		if err != nil {
			return nil, err
		}
		pm.Set(key, value)
	}
}

func jsonValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		if v == '{' {
			return paramsFromObject(dec)
		}
		return nil, fmt.Errorf("unsupported value delimiter %v", v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return v.String(), nil
		}
		return f, nil
	case string:
		return v, nil
	case bool:
		return v, nil
	case nil:
		return "", nil
	default:
		return nil, fmt.Errorf("unsupported value %v", tok)
	}
}

// paramsFromNode converts the (name value) child pairs of a ULG parameter
// block into a ParameterMap. Booleans and quoted strings are recognized by
// literal token shape; everything else is attempted as a float, falling back
// to a raw string copy.
func paramsFromNode(node *symboltree.Node) *core.ParameterMap {
	pm := core.NewParameterMap()
	for _, pair := range node.Children {
		if len(pair.Values) == 0 {
			continue
		}
		name := pair.Values[0]
		if len(pair.Values) < 2 {
			pm.Set(name, "")
			continue
		}
		pm.Set(name, ulgValue(pair.Values[1]))
	}
	return pm
}

func ulgValue(token string) any {
	switch {
	case token == "true":
		return true
	case token == "false":
		return false
	case util.IsQuoted(token):
		return util.TrimQuotes(token)
	}
	if f, err := parseFloat(token); err == nil {
		return f
	}
	return token
}

// Versioned environment defaults, seeded before a log's own parameter blocks
// override them.

func defaultEnvParams2D() *core.ParameterMap {
	pm := core.NewParameterMap()
	pm.Set("field_length", 105.0)
	pm.Set("field_width", 68.0)
	pm.Set("goal_width", 14.02)
	pm.Set("ball_size", 0.085)
	pm.Set("simulator_step", 100.0)
	return pm
}

func defaultEnvParams3D() *core.ParameterMap {
	pm := core.NewParameterMap()
	pm.Set("field_length", 30.0)
	pm.Set("field_width", 20.0)
	pm.Set("goal_width", 2.1)
	pm.Set("ball_size", 0.042)
	pm.Set("free_kick_distance", 2.0)
	return pm
}

func defaultPlayerParams(kind core.Kind) *core.ParameterMap {
	pm := core.NewParameterMap()
	if kind == core.Kind2D {
		pm.Set("player_size", 0.3)
		pm.Set("player_types", 18.0)
	} else {
		pm.Set("player_radius", 0.4)
	}
	return pm
}

// applyFieldPreset seeds fixed field-dimension presets selected by the
// numeric code of a legacy "V" header line. Unknown codes leave the defaults
// in place.
func applyFieldPreset(pm *core.ParameterMap, code int) {
	type preset struct{ length, width float64 }
	presets := map[int]preset{
		62: {105, 68},
		63: {110, 75},
		64: {91.44, 54.86},
		66: {100.0, 64.0},
	}
	p, ok := presets[code]
	if !ok {
		return
	}
	pm.Set("field_length", p.length)
	pm.Set("field_width", p.width)
}
