package salesstats

import (
	"sort"
	"strings"
)

// CanonicalKey resolves a user- or LLM-supplied value against a table whose
// keys use a fixed canonical case. It returns the actual table key whose
// lowercase form matches, or false when the value is empty or absent. Absent
// keys are a designed outcome, never an error.
func CanonicalKey[V any](search string, table map[string]V) (string, bool) {
	search = strings.TrimSpace(search)
	if search == "" || len(table) == 0 {
		return "", false
	}
	lower := strings.ToLower(search)
	for key := range table {
		if strings.ToLower(key) == lower {
			return key, true
		}
	}
	return "", false
}

func canonicalKeyPtr[V any](search *string, table map[string]V) (string, bool) {
	if search == nil {
		return "", false
	}
	return CanonicalKey(*search, table)
}

// RankedRecord is one alternative segment with its rank-carrying position in
// a slice ordered by lift descending.
type RankedRecord struct {
	Key    string        `json:"key"`
	Record WinRateRecord `json:"record"`
}

// DimensionStats is the outcome of a single dimension lookup: the matched
// record when the key resolved, plus up to topN other keys ranked by lift.
// When the key did not resolve, Matched is nil and Alternatives holds the
// global top-N instead, so the caller always has something to recommend.
type DimensionStats struct {
	MatchedKey   string
	Matched      *WinRateRecord
	Alternatives []RankedRecord
}

func dimensionRecord(table DimensionTable, key string) WinRateRecord {
	rec := WinRateRecord{WinRate: table.WinRate[key], Lift: table.Lift[key]}
	if table.SampleSize != nil {
		rec.SampleSize = table.SampleSize[key]
	}
	return rec
}

// GetDimensionStats performs the case-insensitive lookup for one categorical
// dimension and ranks alternatives by lift descending, key ascending on ties.
func GetDimensionStats(search *string, table DimensionTable, topN int) DimensionStats {
	if topN <= 0 {
		topN = DefaultTopAlternatives
	}
	out := DimensionStats{}
	matchedKey, ok := canonicalKeyPtr(search, table.WinRate)
	if ok {
		rec := dimensionRecord(table, matchedKey)
		out.MatchedKey = matchedKey
		out.Matched = &rec
	}

	keys := make([]string, 0, len(table.Lift))
	for key := range table.Lift {
		if ok && strings.EqualFold(key, matchedKey) {
			continue
		}
		keys = append(keys, key)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if table.Lift[keys[i]] != table.Lift[keys[j]] {
			return table.Lift[keys[i]] > table.Lift[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > topN {
		keys = keys[:topN]
	}
	for _, key := range keys {
		out.Alternatives = append(out.Alternatives, RankedRecord{Key: key, Record: dimensionRecord(table, key)})
	}
	return out
}

// TopReps returns the top-N reps by lift. Rep reassignment is always a viable
// recommendation lever, so this ignores whether a specific rep was supplied.
func TopReps(table DimensionTable, topN int) []RepRecord {
	if topN <= 0 {
		topN = DefaultTopReps
	}
	keys := make([]string, 0, len(table.Lift))
	for key := range table.Lift {
		keys = append(keys, key)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if table.Lift[keys[i]] != table.Lift[keys[j]] {
			return table.Lift[keys[i]] > table.Lift[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > topN {
		keys = keys[:topN]
	}
	out := make([]RepRecord, 0, len(keys))
	for _, key := range keys {
		rec := dimensionRecord(table, key)
		out = append(out, RepRecord{Name: key, WinRate: rec.WinRate, Lift: rec.Lift, SampleSize: rec.SampleSize})
	}
	return out
}

// ComboStats is the outcome of a product×sector combination lookup.
type ComboStats struct {
	MatchedKey   string
	Matched      *float64
	Alternatives map[string]float64
}

// comboProduct extracts the product side of a composite "{product}_{sector}"
// key when the key's suffix matches the given sector. Product names may
// themselves contain underscores, so only the trailing "_{sector}" is
// stripped; the composite key is never treated as opaque.
func comboProduct(key, sectorKey string) (string, bool) {
	suffix := "_" + strings.ToLower(sectorKey)
	lower := strings.ToLower(key)
	if len(key) <= len(suffix) || !strings.HasSuffix(lower, suffix) {
		return "", false
	}
	return key[:len(key)-len(suffix)], true
}

// GetComboStats resolves the "{product}_{sector}" composite key and collects
// up to topN alternative products within the same sector, ranked by win rate
// descending. The caller skips this entirely when no sector resolved; sector
// anchors the combination search.
func GetComboStats(productKey, sectorKey string, table map[string]float64, topN int) ComboStats {
	if topN <= 0 {
		topN = DefaultTopAlternatives
	}
	out := ComboStats{Alternatives: map[string]float64{}}
	if compositeKey, ok := CanonicalKey(productKey+"_"+sectorKey, table); ok {
		wr := table[compositeKey]
		out.MatchedKey = compositeKey
		out.Matched = &wr
	}

	type combo struct {
		key     string
		product string
		winRate float64
	}
	candidates := []combo{}
	for key, wr := range table {
		product, ok := comboProduct(key, sectorKey)
		if !ok {
			continue
		}
		if productKey != "" && strings.EqualFold(product, productKey) {
			continue
		}
		candidates = append(candidates, combo{key: key, product: product, winRate: wr})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].winRate != candidates[j].winRate {
			return candidates[i].winRate > candidates[j].winRate
		}
		return candidates[i].key < candidates[j].key
	})
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	for _, c := range candidates {
		out.Alternatives[c.key] = c.winRate
	}
	return out
}
