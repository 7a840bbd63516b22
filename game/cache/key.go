package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// SolvePrefix namespaces solve results inside a shared store. The version
// changes whenever the search can give a different answer for the same rows.
const SolvePrefix = "solve:v2"

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// LayoutKey identifies a maze by its rows alone. Renaming a maze or changing
// its description keeps the key.
func LayoutKey(rows []string) string {
	data, _ := json.Marshal(rows)
	return SolvePrefix + ":" + Hash(data)
}
