package ports

import "strings"

// Carrier documents spell major ports a dozen ways; the alias table
// catches the spellings seen in production BLs before any catalog
// lookup runs.
var portAliases = map[string]string{
	"PORT KELANG":       "MYPKG",
	"KELANG":            "MYPKG",
	"PORT KLANG":        "MYPKG",
	"KLANG":             "MYPKG",
	"TANJUNG PELEPAS":   "MYTPP",
	"PTP":               "MYTPP",
	"TANJUNG PRIOK":     "IDJKT",
	"PRIOK":             "IDJKT",
	"JAKARTA":           "IDJKT",
	"LAEM CHABANG":      "THLCH",
	"HAIPHONG":          "VNHPH",
	"HO CHI MINH":       "VNSGN",
	"SAIGON":            "VNSGN",
	"VUNG TAU":          "VNVUT",
	"SHANGHAI":          "CNSHA",
	"NINGBO":            "CNNBO",
	"SHENZHEN":          "CNSZX",
	"YANTIAN":           "CNYTN",
	"GUANGZHOU":         "CNGZU",
	"NANSHA":            "CNNSA",
	"BUSAN":             "KRPUS",
	"PUSAN":             "KRPUS",
	"HAMBURG":           "DEHAM",
	"BREMERHAVEN":       "DEBRV",
	"ROTTERDAM":         "NLRTM",
	"ANTWERP":           "BEANR",
	"FELIXSTOWE":        "GBFXT",
	"SINGAPORE":         "SGSIN",
	"HONG KONG":         "HKHKG",
	"DUBAI":             "AEDXB",
	"JEBEL ALI":         "AEJEA",
	"COLOMBO":           "LKCMB",
	"CHENNAI":           "INMAA",
	"MUNDRA":            "INMUN",
	"NHAVA SHEVA":       "INNSA",
	"JAWAHARLAL NEHRU":  "INNSA",
	"SYDNEY":            "AUSYD",
	"MELBOURNE":         "AUMEL",
	"LOS ANGELES":       "USLAX",
	"LONG BEACH":        "USLGB",
	"NEW YORK":          "USNYC",
	"SAVANNAH":          "USSAV",
	"PIRAEUS":           "GRPIR",
}

// MatchUNCode resolves a free-text port name against the catalog.
// Resolution order: alias table, direct UN/LOCODE, exact name,
// containment either way. Returns "" when nothing matches.
func MatchUNCode(portText string, catalog []Port) string {
	text := strings.ToUpper(strings.TrimSpace(portText))
	if text == "" {
		return ""
	}

	if code, ok := portAliases[text]; ok {
		return code
	}

	if len(text) == 5 && isAlpha(text) {
		for _, p := range catalog {
			if p.UNCode == text {
				return text
			}
		}
	}

	for _, p := range catalog {
		if strings.ToUpper(p.Name) == text {
			return p.UNCode
		}
	}

	for _, p := range catalog {
		name := strings.ToUpper(p.Name)
		if name == "" {
			continue
		}
		if strings.Contains(name, text) || strings.Contains(text, name) {
			return p.UNCode
		}
	}

	return ""
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
