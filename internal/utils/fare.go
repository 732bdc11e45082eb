package utils

import "strings"

// StopKey normalizes a stop display name into its lookup key
// ("Pasir Pengaraian" -> "pasirpengaraian", "PKU" -> "pekanbaru").
func StopKey(s string) string {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer(" ", "", "-", "", ".", "").Replace(k)
	switch k {
	case "pasipengaraian":
		return "pasirpengaraian"
	case "ub":
		return "ujungbatu"
	case "pku":
		return "pekanbaru"
	}
	return k
}

// Pasir Pengaraian cluster; every stop in it shares the same fixed fares.
var trunkCluster = map[string]bool{
	"skpd":            true,
	"simpangd":        true,
	"skpc":            true,
	"simpangkumu":     true,
	"muararumbai":     true,
	"surautinggi":     true,
	"pasirpengaraian": true,
}

var clusterDestinations = map[string]bool{
	"pekanbaru":  true,
	"kabun":      true,
	"tandun":     true,
	"petapahan":  true,
	"suram":      true,
	"aliantan":   true,
	"bangkinang": true,
}

var directTrunkPairs = [][2]string{
	{"bangkinang", "pekanbaru"},
	{"ujungbatu", "pekanbaru"},
	{"suram", "pekanbaru"},
	{"petapahan", "pekanbaru"},
}

// IsTrunkRoute reports whether from/to (either direction) is a fixed-fare
// trunk route. Routes outside this table have no published fare and must be
// priced by negotiation for whole-vehicle categories.
func IsTrunkRoute(from, to string) bool {
	f, t := StopKey(from), StopKey(to)
	if f == "" || t == "" || f == t {
		return false
	}
	for _, p := range directTrunkPairs {
		if (f == p[0] && t == p[1]) || (f == p[1] && t == p[0]) {
			return true
		}
	}
	if trunkCluster[f] && clusterDestinations[t] {
		return true
	}
	return trunkCluster[t] && clusterDestinations[f]
}
