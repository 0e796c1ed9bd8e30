package main

import (
	"fmt"

	"github.com/rcviewer/rclog/internal/loader"
	"github.com/rcviewer/rclog/pkg/core"
)

// printSummary writes a human-readable match summary to stdout.
func printSummary(res *loader.Result) {
	log := res.Log.Base()
	final := log.FinalScore()

	fmt.Printf("\n%s\n", log.Resource)
	fmt.Printf("  format:    %s v%d\n", kindName(log.Kind), res.Log.FormatVersion())
	fmt.Printf("  score:     %s %d - %d %s\n",
		log.LeftTeam.Name, final.GoalsLeft, final.GoalsRight, log.RightTeam.Name)
	if final.PenScoreLeft > 0 || final.PenScoreRight > 0 {
		fmt.Printf("  penalties: %d - %d\n", final.PenScoreLeft, final.PenScoreRight)
	}
	fmt.Printf("  duration:  %.1fs (%d snapshots at %.0f Hz)\n",
		log.Duration(), log.StateCount(), log.Frequency)
	fmt.Printf("  playmodes: %d changes\n", len(log.GameStateList()))
	if len(res.Diagnostics) > 0 {
		fmt.Printf("  warnings:  %d undecodable lines (first at line %d)\n",
			len(res.Diagnostics), res.Diagnostics[0].Line)
	}
}

func kindName(k core.Kind) string {
	switch k {
	case core.Kind2D:
		return "2D"
	case core.Kind3D:
		return "3D"
	default:
		return "unknown"
	}
}
