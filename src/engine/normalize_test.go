package engine

import (
	"testing"
	"time"

	"macro-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestNormalizeRescalesBalances(t *testing.T) {
	dates := []time.Time{day(2025, time.June, 4)}
	table := models.NewMacroTable(dates)
	table.AddColumn("Fed Total Assets", []float64{9_000_000}) // millions
	table.AddColumn("TGA Account", []float64{700_000})        // millions
	table.AddColumn("Reverse Repo", []float64{500})           // billions
	table.AddColumn("Bank Reserves", []float64{3_200})        // billions
	table.AddColumn("US 10Y Yield", []float64{4.5})
	table.AddColumn("CPI (Headline)", []float64{310.0})

	Normalize(table)

	fed, _ := table.Column("Fed Total Assets")
	tga, _ := table.Column("TGA Account")
	rrp, _ := table.Column("Reverse Repo")
	reserves, _ := table.Column("Bank Reserves")

	assert.InDelta(t, 9.0, fed[0], 1e-9)
	assert.InDelta(t, 0.7, tga[0], 1e-9)
	assert.InDelta(t, 0.5, rrp[0], 1e-9)
	assert.InDelta(t, 3.2, reserves[0], 1e-9)

	// Rates and indexes pass through untouched
	yield, _ := table.Column("US 10Y Yield")
	cpi, _ := table.Column("CPI (Headline)")
	assert.Equal(t, 4.5, yield[0])
	assert.Equal(t, 310.0, cpi[0])
}

// -----------------------------------------------------------------------------

func TestNormalizedBalancesCompose(t *testing.T) {
	dates := []time.Time{day(2025, time.June, 4)}
	table := models.NewMacroTable(dates)
	table.AddColumn("Fed Total Assets", []float64{9_000_000})
	table.AddColumn("TGA Account", []float64{700_000})
	table.AddColumn("Reverse Repo", []float64{500})

	Normalize(table)
	Derive(table, models.MRawDataset{Series: map[string]models.MSeries{}})

	netLiq, ok := table.Column("Net Liquidity")
	require.True(t, ok)
	assert.InDelta(t, 7.8, netLiq[0], 1e-9)
}

// -----------------------------------------------------------------------------

func TestNetLiquidityAbsentWithoutReverseRepo(t *testing.T) {
	dates := []time.Time{day(2025, time.June, 4)}
	table := models.NewMacroTable(dates)
	table.AddColumn("Fed Total Assets", []float64{9_000_000})
	table.AddColumn("TGA Account", []float64{700_000})

	Normalize(table)
	Derive(table, models.MRawDataset{Series: map[string]models.MSeries{}})

	assert.False(t, table.HasColumn("Net Liquidity"))
}
