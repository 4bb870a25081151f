package sitegen

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"git.home.luguber.info/inful/contentpipe/internal/routes"
)

// ManifestEntry names one written page and the hash of its payload.
type ManifestEntry struct {
	Route string `json:"route"`
	Hash  string `json:"hash"`
}

// Manifest is written as routes.json.
type Manifest struct {
	Hash   string           `json:"manifestHash"`
	Routes *routes.RouteSet `json:"routes"`
	Pages  []ManifestEntry  `json:"pages"`
}

func payloadHash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ComputeManifestHash returns a hash of the page set that does not depend on
// the order pages were produced in.
func ComputeManifestHash(entries []ManifestEntry) string {
	if len(entries) == 0 {
		h := sha256.Sum256([]byte("empty-site"))
		return hex.EncodeToString(h[:])
	}
	sorted := make([]ManifestEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Route < sorted[j].Route })

	h := sha256.New()
	for _, e := range sorted {
		h.Write([]byte(e.Route))
		h.Write([]byte{0})
		h.Write([]byte(e.Hash))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
