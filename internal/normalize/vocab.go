package normalize

import (
	"sort"
	"strings"

	"github.com/estiacrm/marketintel/models"
)

// vocabulary is an exact-match map plus its keys sorted for the substring
// fallback scan. The sorted order keeps the fallback deterministic.
type vocabulary struct {
	exact map[string]string
	keys  []string
}

func newVocabulary(entries map[string]string) vocabulary {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return vocabulary{exact: entries, keys: keys}
}

// lookup is the two-phase resolution: exact map first, then an ordered scan
// matching raw-contains-key or key-contains-raw.
func (v vocabulary) lookup(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if val, ok := v.exact[raw]; ok {
		return val, true
	}
	for _, k := range v.keys {
		if strings.Contains(raw, k) || strings.Contains(k, raw) {
			return v.exact[k], true
		}
	}
	return "", false
}

// sharedPropertyTypes covers tokens common to every Greek portal; the
// per-platform maps below override or extend it for platform-specific
// vocabulary. Keys are diacritic-folded (foldKey).
var sharedPropertyTypes = map[string]string{
	"διαμερισμα":   models.PropertyApartment,
	"apartment":    models.PropertyApartment,
	"flat":         models.PropertyApartment,
	"ρετιρε":       models.PropertyApartment,
	"μονοκατοικια": models.PropertyHouse,
	"κατοικια":     models.PropertyHouse,
	"house":        models.PropertyHouse,
	"detached":     models.PropertyHouse,
	"μεζονετα":     models.PropertyMaisonette,
	"maisonette":   models.PropertyMaisonette,
	"στουντιο":     models.PropertyStudio,
	"studio":       models.PropertyStudio,
	"γκαρσονιερα":  models.PropertyStudio,
	"βιλα":         models.PropertyVilla,
	"villa":        models.PropertyVilla,
	"οικοπεδο":     models.PropertyLand,
	"αγροτεμαχιο":  models.PropertyLand,
	"land":         models.PropertyLand,
	"plot":         models.PropertyLand,
	"καταστημα":    models.PropertyCommercial,
	"store":        models.PropertyCommercial,
	"shop":         models.PropertyCommercial,
	"commercial":   models.PropertyCommercial,
	"γραφειο":      models.PropertyOffice,
	"office":       models.PropertyOffice,
	"κτιριο":       models.PropertyBuilding,
	"building":     models.PropertyBuilding,
	"αποθηκη":      models.PropertyWarehouse,
	"warehouse":    models.PropertyWarehouse,
	"παρκινγκ":     models.PropertyParking,
	"parking":      models.PropertyParking,
	"θεση σταθμευσησ": models.PropertyParking,
}

// platformPropertyTypes holds per-portal extensions keyed by platform id.
var platformPropertyTypes = map[string]map[string]string{
	"spitogatos": {
		"επαγγελματικοσ χωροσ": models.PropertyCommercial,
		"επαγγελματικη στεγη":  models.PropertyOffice,
		"λοιπα ακινητα":        models.PropertyOther,
	},
	"xe": {
		"επαγγελματικοι χωροι": models.PropertyCommercial,
		"ενοικιαζομενα δωματια": models.PropertyOther,
	},
	"tospitimou": {
		"business property": models.PropertyCommercial,
	},
}

var transactionTypes = map[string]string{
	"πωληση":       models.TransactionSale,
	"πωλειται":     models.TransactionSale,
	"πωλουνται":    models.TransactionSale,
	"αγορα":        models.TransactionSale,
	"sale":         models.TransactionSale,
	"for sale":     models.TransactionSale,
	"buy":          models.TransactionSale,
	"ενοικιαση":    models.TransactionRent,
	"ενοικιαζεται": models.TransactionRent,
	"ενοικιαζονται": models.TransactionRent,
	"μισθωση":      models.TransactionRent,
	"rent":         models.TransactionRent,
	"rental":       models.TransactionRent,
	"for rent":     models.TransactionRent,
	"to let":       models.TransactionRent,
}

// rentalKeywords backs the substring fallback for unmatched transaction
// tokens; everything else defaults to sale.
var rentalKeywords = []string{"rent", "let", "lease", "ενοικ", "μισθω"}

// Vocabulary is the immutable set of lookup tables shared by every
// normalization call. Built once at startup, never mutated after.
type Vocabulary struct {
	properties   map[string]vocabulary
	shared       vocabulary
	transactions vocabulary
	areas        map[string]string
}

func NewVocabulary() *Vocabulary {
	v := &Vocabulary{
		properties:   make(map[string]vocabulary, len(platformPropertyTypes)),
		shared:       newVocabulary(sharedPropertyTypes),
		transactions: newVocabulary(transactionTypes),
		areas:        canonicalAreas,
	}
	for platform, extra := range platformPropertyTypes {
		merged := make(map[string]string, len(sharedPropertyTypes)+len(extra))
		for k, val := range sharedPropertyTypes {
			merged[k] = val
		}
		for k, val := range extra {
			merged[k] = val
		}
		v.properties[platform] = newVocabulary(merged)
	}
	return v
}

// PropertyType buckets a raw property-type token for the given platform.
// Unknown tokens land in OTHER, never empty.
func (v *Vocabulary) PropertyType(platform, raw string) string {
	key := foldKey(raw)
	vocab, ok := v.properties[platform]
	if !ok {
		vocab = v.shared
	}
	if val, ok := vocab.lookup(key); ok {
		return val
	}
	return models.PropertyOther
}

// TransactionType resolves a raw transaction token. Unmatched tokens are
// scanned for rental keywords and otherwise default to sale, the common case
// in this domain.
func (v *Vocabulary) TransactionType(raw string) string {
	key := foldKey(raw)
	if val, ok := v.transactions.lookup(key); ok {
		return val
	}
	for _, kw := range rentalKeywords {
		if strings.Contains(key, kw) {
			return models.TransactionRent
		}
	}
	return models.TransactionSale
}

// Area canonicalizes a place name across transliteration and casing
// variants. Names missing from the table are title-cased as a best effort.
func (v *Vocabulary) Area(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	if val, ok := v.areas[foldKey(raw)]; ok {
		return val
	}
	return titleCase(raw)
}
