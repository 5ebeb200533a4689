package stem

// irregularForms maps a canonical stem to the surface forms that resolve to
// it directly, bypassing the rule steps. Covers participle irregularities
// ("dying" would otherwise lose its d-root), fossilized plurals, and words
// the rules would wrongly truncate ("news" is not the plural of "new").
var irregularForms = map[string][]string{
	"sky":     {"sky", "skies"},
	"die":     {"dying"},
	"lie":     {"lying"},
	"tie":     {"tying"},
	"news":    {"news"},
	"inning":  {"innings", "inning"},
	"outing":  {"outing", "outings"},
	"canning": {"canning", "cannings"},
	"howe":    {"howe"},
	"proceed": {"proceed"},
	"exceed":  {"exceed"},
	"succeed": {"succeed"},
}

// irregularPool inverts irregularForms into the form -> stem lookup used on
// every Stem call
func irregularPool() map[string]string {
	pool := make(map[string]string)
	for stem, forms := range irregularForms {
		for _, form := range forms {
			pool[form] = stem
		}
	}
	return pool
}
