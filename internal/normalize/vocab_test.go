package normalize

import (
	"testing"

	"github.com/estiacrm/marketintel/models"
	"github.com/stretchr/testify/assert"
)

func TestPropertyTypeLookup(t *testing.T) {
	v := NewVocabulary()

	assert.Equal(t, models.PropertyApartment, v.PropertyType("spitogatos", "Διαμέρισμα"))
	assert.Equal(t, models.PropertyApartment, v.PropertyType("spitogatos", "  διαμέρισμα  "))
	assert.Equal(t, models.PropertyHouse, v.PropertyType("xe", "Μονοκατοικία"))
	assert.Equal(t, models.PropertyCommercial, v.PropertyType("spitogatos", "Επαγγελματικός χώρος"))

	// substring fallback in both directions
	assert.Equal(t, models.PropertyMaisonette, v.PropertyType("spitogatos", "νεόδμητη μεζονέτα"))
	assert.Equal(t, models.PropertyStudio, v.PropertyType("xe", "γκαρσονιέρ"))

	// unknown platforms fall back to the shared table
	assert.Equal(t, models.PropertyVilla, v.PropertyType("someportal", "Villa"))
}

func TestPropertyTypeUnknownIsOther(t *testing.T) {
	v := NewVocabulary()
	assert.Equal(t, models.PropertyOther, v.PropertyType("spitogatos", "ανεμόμυλος"))
	assert.Equal(t, models.PropertyOther, v.PropertyType("spitogatos", ""))
}

func TestTransactionType(t *testing.T) {
	v := NewVocabulary()
	assert.Equal(t, models.TransactionSale, v.TransactionType("Πώληση"))
	assert.Equal(t, models.TransactionRent, v.TransactionType("Ενοικίαση"))
	assert.Equal(t, models.TransactionRent, v.TransactionType("for rent"))
	// rental keyword fallback
	assert.Equal(t, models.TransactionRent, v.TransactionType("μακροχρόνια ενοικίαση σπιτιού"))
	// sale is the default bucket
	assert.Equal(t, models.TransactionSale, v.TransactionType("whatever"))
	assert.Equal(t, models.TransactionSale, v.TransactionType(""))
}

func TestAreaCanonicalization(t *testing.T) {
	v := NewVocabulary()
	assert.Equal(t, "Athens", v.Area("Αθήνα"))
	assert.Equal(t, "Athens", v.Area("ATHINA"))
	assert.Equal(t, "Glyfada", v.Area("γλυφάδα"))
	assert.Equal(t, "Glyfada", v.Area("Glifada"))
	assert.Equal(t, "Palaio Faliro", v.Area("Παλαιό Φάληρο"))
	// best-effort title-case for unknown names
	assert.Equal(t, "Agios Dimitrios", v.Area("agios   dimitrios"))
	assert.Equal(t, "", v.Area("  "))
}

func TestVocabularyFallbackIsDeterministic(t *testing.T) {
	v := newVocabulary(map[string]string{
		"alpha": "A",
		"beta":  "B",
		"alp":   "C",
	})
	// "al" is a substring of both "alp" and "alpha"; the sorted key scan must
	// always pick the same winner.
	for i := 0; i < 100; i++ {
		got, ok := v.lookup("al")
		assert.True(t, ok)
		assert.Equal(t, "C", got)
	}
}
