package solidity

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

var (
	rePragma     = regexp.MustCompile(`(?m)^\s*pragma\s+solidity\s+([^;]+);`)
	reFullVer    = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)
	reMinorVer   = regexp.MustCompile(`(\d+)\.(\d+)`)
	reSolcArtDir = regexp.MustCompile(`^solc-(\d+)\.(\d+)\.(\d+)$`)
)

// PragmaVersion extracts the first version named by `pragma solidity`.
// It returns x.y.z when present, x.y as a fallback, or "".
func PragmaVersion(code string) string {
	m := rePragma.FindStringSubmatch(code)
	if len(m) < 2 {
		return ""
	}
	if v := reFullVer.FindString(m[1]); v != "" {
		return v
	}
	return reMinorVer.FindString(m[1])
}

// SolcPath picks a solc binary for version out of a solc-select style
// artifacts dir (<dir>/solc-X.Y.Z/solc-X.Y.Z). An exact match wins; otherwise
// the newest installed patch release of the same major.minor is used.
// It returns "" when nothing usable is installed.
func SolcPath(dir, version string) string {
	if dir == "" || version == "" {
		return ""
	}
	if exact := artifact(dir, "solc-"+version); exact != "" {
		return exact
	}
	mm := reMinorVer.FindStringSubmatch(version)
	if len(mm) < 3 {
		return ""
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	type candidate struct {
		name  string
		patch int
	}
	var cands []candidate
	for _, e := range entries {
		m := reSolcArtDir.FindStringSubmatch(e.Name())
		if m == nil || m[1] != mm[1] || m[2] != mm[2] {
			continue
		}
		patch, _ := strconv.Atoi(m[3])
		cands = append(cands, candidate{name: e.Name(), patch: patch})
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].patch > cands[j].patch })
	for _, c := range cands {
		if p := artifact(dir, c.name); p != "" {
			return p
		}
	}
	return ""
}

func artifact(dir, name string) string {
	p := filepath.Join(dir, name, name)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return ""
	}
	return p
}
