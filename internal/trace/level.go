package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // failures only
	LevelPhase        // commands and passes
	LevelDetail       // plus one span per unit
	LevelDebug        // plus single IR nodes
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

// deepest is the finest scope each level lets through; zero lets nothing.
var deepest = [...]Scope{
	LevelPhase:  ScopePass,
	LevelDetail: ScopeUnit,
	LevelDebug:  ScopeNode,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel parses a level name. An empty string is off and "pass" is an
// alias of "phase".
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(s)
	switch s {
	case "":
		return LevelOff, nil
	case "pass":
		return LevelPhase, nil
	}
	for l, name := range levelNames {
		if name == s {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
}

// ShouldEmit reports whether events of scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	return int(l) < len(deepest) && scope != 0 && scope <= deepest[l]
}
