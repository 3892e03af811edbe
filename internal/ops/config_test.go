package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"main/internal/chain"
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validConfig() FileConfig {
	return FileConfig{
		Market: MarketConfig{
			Symbol:        "SOL-PERP",
			Base:          "SOL",
			Quote:         "USDC",
			TickSize:      dec("0.01"),
			LotSize:       dec("0.1"),
			Kind:          "perp",
			RequiresCrank: true,
		},
		Chain: []chain.Spec{
			{Name: "confidence_interval", Params: []byte(`{"levels":["2"],"sizeRatio":"0.01"}`)},
			{Name: "round_to_lot_size"},
		},
		Reconcile: ReconcileConfig{
			PriceTolerance:    dec("0.001"),
			QuantityTolerance: dec("0.001"),
		},
		Pulse: PulseConfig{MakerIntervalSeconds: 2},
	}
}

func TestResolveValidConfig(t *testing.T) {
	loaded, err := Resolve(validConfig())
	require.NoError(t, err)

	assert.Equal(t, "SOL-PERP", loaded.Market.Symbol)
	assert.True(t, loaded.IsPerp)
	assert.True(t, loaded.Market.RequiresCrank)
	assert.Equal(t, enum.UpdateModePoll, loaded.UpdateMode)
	assert.Equal(t, 2*time.Second, loaded.MakerInterval)
	assert.Equal(t, loaded.MakerInterval, loaded.HedgerInterval, "hedger interval defaults to the maker interval")
	assert.NotNil(t, loaded.Chain)
	assert.NotNil(t, loaded.Reconciler)
	assert.Nil(t, loaded.Hedge)
}

func TestResolveRejectsBrokenConfigs(t *testing.T) {
	testCases := []struct {
		desc    string
		mutate  func(*FileConfig)
		wantErr error
	}{
		{
			"missing market symbol",
			func(cfg *FileConfig) { cfg.Market.Symbol = "" },
			exception.ErrConfigMissingMarket,
		},
		{
			"non-positive tick size",
			func(cfg *FileConfig) { cfg.Market.TickSize = decimal.Zero },
			exception.ErrConfigInvalid,
		},
		{
			"unknown market kind",
			func(cfg *FileConfig) { cfg.Market.Kind = "option" },
			exception.ErrConfigInvalid,
		},
		{
			"unknown update mode",
			func(cfg *FileConfig) { cfg.UpdateMode = "CARRIER_PIGEON" },
			exception.ErrConfigUnknownMode,
		},
		{
			"empty chain",
			func(cfg *FileConfig) { cfg.Chain = nil },
			exception.ErrChainEmpty,
		},
		{
			"unknown chain element",
			func(cfg *FileConfig) { cfg.Chain = []chain.Spec{{Name: "nope"}} },
			exception.ErrChainUnknownElement,
		},
		{
			"zero maker interval",
			func(cfg *FileConfig) { cfg.Pulse.MakerIntervalSeconds = 0 },
			exception.ErrConfigInvalid,
		},
		{
			"hedge base mismatch",
			func(cfg *FileConfig) {
				cfg.Hedge = &HedgeConfig{
					Symbol:   "BTC/USDC",
					Base:     "BTC",
					Quote:    "USDC",
					TickSize: dec("0.01"),
					LotSize:  dec("0.001"),
				}
			},
			exception.ErrConfigInvalid,
		},
		{
			"hedge negative slippage",
			func(cfg *FileConfig) {
				cfg.Hedge = &HedgeConfig{
					Symbol:      "SOL/USDC",
					Base:        "SOL",
					Quote:       "USDC",
					TickSize:    dec("0.01"),
					LotSize:     dec("0.1"),
					MaxSlippage: dec("-0.01"),
				}
			},
			exception.ErrConfigInvalid,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			_, err := Resolve(cfg)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestResolveHedgeSection(t *testing.T) {
	cfg := validConfig()
	cfg.Pulse.HedgerIntervalSeconds = 5
	cfg.Hedge = &HedgeConfig{
		Symbol:          "SOL/USDC",
		Base:            "SOL",
		Quote:           "USDC",
		TickSize:        dec("0.01"),
		LotSize:         dec("0.1"),
		TargetBalance:   dec("3"),
		MaxSlippage:     dec("0.01"),
		MaxChunk:        dec("4"),
		ActionThreshold: dec("0.5"),
		PulsePause:      2,
	}

	loaded, err := Resolve(cfg)
	require.NoError(t, err)
	require.NotNil(t, loaded.Hedge)
	assert.Equal(t, 5*time.Second, loaded.HedgerInterval)
	assert.Equal(t, "SOL/USDC", loaded.Hedge.Market.Symbol)
	assert.True(t, loaded.Hedge.Target.Equal(dec("3")))
	assert.Equal(t, 2, loaded.Hedge.PulsePause)
}

func TestResolveAlwaysReplace(t *testing.T) {
	cfg := validConfig()
	cfg.Reconcile = ReconcileConfig{AlwaysReplace: true}
	loaded, err := Resolve(cfg)
	require.NoError(t, err)
	require.NotNil(t, loaded.Reconciler)

	// an always-replace reconciler never matches, even identical orders
	result := loaded.Reconciler.Reconcile(nil, nil)
	assert.Empty(t, result.ToPlace)
	assert.Empty(t, result.ToCancel)
}

func TestResolveSpotMarketKind(t *testing.T) {
	cfg := validConfig()
	cfg.Market.Kind = "spot"
	cfg.Market.RequiresCrank = false
	loaded, err := Resolve(cfg)
	require.NoError(t, err)
	assert.False(t, loaded.IsPerp)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	payload := `{
		"market": {"symbol": "SOL-PERP", "base": "SOL", "quote": "USDC", "tickSize": "0.01", "lotSize": "0.1", "kind": "perp", "requiresCrank": true},
		"updateMode": "WEBSOCKET",
		"chain": [
			{"name": "confidence_interval", "params": {"levels": ["2"], "sizeRatio": "0.01"}},
			{"name": "round_to_lot_size"}
		],
		"reconcile": {"priceTolerance": "0.001", "quantityTolerance": "0.001"},
		"pulse": {"makerIntervalSeconds": 2},
		"dryRun": true
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, enum.UpdateModeWebsocket, loaded.UpdateMode)
	assert.True(t, loaded.DryRun)
	assert.Len(t, loaded.Chain.Elements(), 2)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
