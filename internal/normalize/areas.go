package normalize

// canonicalAreas maps diacritic-folded Greek and transliterated variants of
// the same place name to one canonical spelling. Greek keys are written
// unaccented because foldKey strips combining marks before lookup.
var canonicalAreas = map[string]string{
	"αθηνα":          "Athens",
	"athina":         "Athens",
	"athens":         "Athens",
	"κεντρο αθηνασ":  "Athens Center",
	"athens center":  "Athens Center",
	"θεσσαλονικη":    "Thessaloniki",
	"thessaloniki":   "Thessaloniki",
	"salonika":       "Thessaloniki",
	"πειραιασ":       "Piraeus",
	"πειραιευσ":      "Piraeus",
	"piraeus":        "Piraeus",
	"pireas":         "Piraeus",
	"γλυφαδα":        "Glyfada",
	"glyfada":        "Glyfada",
	"glifada":        "Glyfada",
	"βουλα":          "Voula",
	"voula":          "Voula",
	"βουλιαγμενη":    "Vouliagmeni",
	"vouliagmeni":    "Vouliagmeni",
	"κολωνακι":       "Kolonaki",
	"kolonaki":       "Kolonaki",
	"εξαρχεια":       "Exarchia",
	"exarchia":       "Exarchia",
	"παγκρατι":       "Pangrati",
	"pangrati":       "Pangrati",
	"pagkrati":       "Pangrati",
	"κηφισια":        "Kifisia",
	"kifisia":        "Kifisia",
	"kifissia":       "Kifisia",
	"μαρουσι":        "Marousi",
	"marousi":        "Marousi",
	"maroussi":       "Marousi",
	"αμαρουσιο":      "Marousi",
	"χαλανδρι":       "Chalandri",
	"chalandri":      "Chalandri",
	"halandri":       "Chalandri",
	"νεα σμυρνη":     "Nea Smyrni",
	"nea smyrni":     "Nea Smyrni",
	"παλαιο φαληρο":  "Palaio Faliro",
	"palaio faliro":  "Palaio Faliro",
	"paleo faliro":   "Palaio Faliro",
	"περιστερι":      "Peristeri",
	"peristeri":      "Peristeri",
	"καλλιθεα":       "Kallithea",
	"kallithea":      "Kallithea",
	"ζωγραφου":       "Zografou",
	"zografou":       "Zografou",
	"zographou":      "Zografou",
	"ηλιουπολη":      "Ilioupoli",
	"ilioupoli":      "Ilioupoli",
	"ilioupolis":     "Ilioupoli",
	"πετραλωνα":      "Petralona",
	"petralona":      "Petralona",
	"κουκακι":        "Koukaki",
	"koukaki":        "Koukaki",
	"αμπελοκηποι":    "Ampelokipoi",
	"ampelokipoi":    "Ampelokipoi",
	"ambelokipi":     "Ampelokipoi",
	"ηρακλειο":       "Heraklion",
	"heraklion":      "Heraklion",
	"iraklio":        "Heraklion",
	"πατρα":          "Patras",
	"patra":          "Patras",
	"patras":         "Patras",
	"λαρισα":         "Larissa",
	"larisa":         "Larissa",
	"larissa":        "Larissa",
	"βολοσ":          "Volos",
	"volos":          "Volos",
	"χανια":          "Chania",
	"chania":         "Chania",
	"hania":          "Chania",
	"ρεθυμνο":        "Rethymno",
	"rethymno":       "Rethymno",
	"καλαμαρια":      "Kalamaria",
	"kalamaria":      "Kalamaria",
}
