package epcfile

import (
	"math/rand"

	"github.com/rfwavelabs/epclink-planner/model"
)

// Generate produces n pseudo-random EPCs from the given seed. It exists
// for demo runs and benchmarks that have no real inventory to load;
// identical seeds yield identical lists, keeping planning output
// reproducible.
func Generate(n int, seed int64) []model.EPC {
	rng := rand.New(rand.NewSource(seed))
	epcs := make([]model.EPC, n)
	for i := range epcs {
		rng.Read(epcs[i][:])
	}
	return epcs
}
