package service

import (
	"path"
	"strings"
)

// Matchup names the teams of one exported game.
type Matchup struct {
	Away string
	Home string
}

// DefaultMatchups maps export base names to their teams.
var DefaultMatchups = map[string]Matchup{
	"cincinativskansas":      {"Cincinnati", "Kansas"},
	"dukevsyracuse":          {"Duke", "Syracuse"},
	"fsuvsvirginia":          {"Florida State", "Virginia"},
	"louisvillevspittsburgh": {"Louisville", "Pittsburgh"},
	"lsuvolemiss":            {"LSU", "Ole Miss"},
	"notredamevsarkansas":    {"Notre Dame", "Arkansas"},
	"syracusevsclemson":      {"Syracuse", "Clemson"},
	"uclavsnorthwestern":     {"UCLA", "Northwestern"},
	"uscvillinois":           {"USC", "Illinois"},
	"utahvsvandy":            {"Utah State", "Vanderbilt"},
}

// exportKey reduces a file name or path to its lowercase base name
// without the .json extension.
func exportKey(name string) string {
	base := strings.ToLower(path.Base(strings.ReplaceAll(name, `\`, "/")))
	return strings.TrimSuffix(base, ".json")
}
