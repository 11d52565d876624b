package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCatalog() []Port {
	return []Port{
		{UNCode: "MYPKG", Name: "Port Klang"},
		{UNCode: "SGSIN", Name: "Singapore"},
		{UNCode: "NLRTM", Name: "Rotterdam"},
		{UNCode: "MYPEN", Name: "Penang"},
	}
}

func TestMatchUNCodeAliases(t *testing.T) {
	// Carrier spellings, catalog not consulted
	assert.Equal(t, "MYPKG", MatchUNCode("PORT KELANG", nil))
	assert.Equal(t, "MYPKG", MatchUNCode("port klang", nil))
	assert.Equal(t, "SGSIN", MatchUNCode(" Singapore ", nil))
	assert.Equal(t, "VNSGN", MatchUNCode("Saigon", nil))
	assert.Equal(t, "INNSA", MatchUNCode("JAWAHARLAL NEHRU", nil))
}

func TestMatchUNCodeDirectCode(t *testing.T) {
	assert.Equal(t, "NLRTM", MatchUNCode("NLRTM", testCatalog()))
	// A code-shaped string not in the catalog falls through to name
	// matching and misses.
	assert.Equal(t, "", MatchUNCode("ZZZZZ", testCatalog()))
}

func TestMatchUNCodeExactName(t *testing.T) {
	assert.Equal(t, "MYPEN", MatchUNCode("Penang", testCatalog()))
}

func TestMatchUNCodeContainment(t *testing.T) {
	assert.Equal(t, "MYPEN", MatchUNCode("Penang, Malaysia", testCatalog()))
	assert.Equal(t, "NLRTM", MatchUNCode("Rotterd", testCatalog()))
}

func TestMatchUNCodeNoMatch(t *testing.T) {
	assert.Equal(t, "", MatchUNCode("Atlantis", testCatalog()))
	assert.Equal(t, "", MatchUNCode("", testCatalog()))
}
