package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroSentinel/internal/model"
)

func TestRank_DescendingWithStableTies(t *testing.T) {
	ranked := Rank(Allocate(SampleEconomic(), SampleSectors()))
	require.Len(t, ranked, int(model.SectorCount))

	got := make([]model.Sector, len(ranked))
	for i, r := range ranked {
		got[i] = r.Sector
	}
	assert.Equal(t, []model.Sector{
		model.Healthcare, model.Utilities, model.ConsumerStaples,
		model.Industrials, model.CommunicationServices,
		model.Technology, model.Financials, model.Energy,
		model.ConsumerDiscretionary, model.RealEstate, model.Materials,
	}, got)
	assert.Equal(t, "HC", ranked[0].Label)
}

func TestRank_NegativeWeightsLast(t *testing.T) {
	var w model.SectorWeightMap
	w[model.Energy] = -0.1
	w[model.Materials] = 0.3
	ranked := Rank(w)
	assert.Equal(t, model.Materials, ranked[0].Sector)
	assert.Equal(t, model.Energy, ranked[len(ranked)-1].Sector)
}

func TestPositiveShares(t *testing.T) {
	var w model.SectorWeightMap
	w[model.Healthcare] = 0.3
	w[model.Utilities] = 0.1
	w[model.Energy] = -0.1

	shares := PositiveShares(w)
	assert.InDelta(t, 0.75, shares[model.Healthcare], eps)
	assert.InDelta(t, 0.25, shares[model.Utilities], eps)
	assert.Zero(t, shares[model.Energy])

	assert.Equal(t, model.SectorWeightMap{}, PositiveShares(model.SectorWeightMap{}))
}
