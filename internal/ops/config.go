package ops

import (
	"encoding/json"
	"os"
	"time"

	"main/internal/chain"
	"main/internal/hedge"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/recon"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Market     MarketConfig    `json:"market"`
	UpdateMode string          `json:"updateMode"`
	Chain      []chain.Spec    `json:"chain"`
	Reconcile  ReconcileConfig `json:"reconcile"`
	Pulse      PulseConfig     `json:"pulse"`
	Hedge      *HedgeConfig    `json:"hedge"`
	Journal    JournalConfig   `json:"journal"`
	Telemetry  TelemetryConfig `json:"telemetry"`
	Notify     NotifyConfig    `json:"notify"`
	Profiling  ProfilingConfig `json:"profiling"`
	DryRun     bool            `json:"dryRun"`
}

// MarketConfig describes the quoted market.
type MarketConfig struct {
	Symbol        string          `json:"symbol"`
	Base          string          `json:"base"`
	Quote         string          `json:"quote"`
	TickSize      decimal.Decimal `json:"tickSize"`
	LotSize       decimal.Decimal `json:"lotSize"`
	Kind          string          `json:"kind"` // "spot" or "perp"
	RequiresCrank bool            `json:"requiresCrank"`
}

// ReconcileConfig sets matching tolerances. Negative tolerances (or the
// explicit flag) select always-replace.
type ReconcileConfig struct {
	PriceTolerance             decimal.Decimal `json:"priceTolerance"`
	QuantityTolerance          decimal.Decimal `json:"quantityTolerance"`
	ExpirationToleranceSeconds int64           `json:"expirationToleranceSeconds"`
	AlwaysReplace              bool            `json:"alwaysReplace"`
}

// PulseConfig sets the trigger intervals.
type PulseConfig struct {
	MakerIntervalSeconds  int `json:"makerIntervalSeconds"`
	HedgerIntervalSeconds int `json:"hedgerIntervalSeconds"`
}

// HedgeConfig describes the spot leg the hedger trades. Absent section means
// hedging stays off.
type HedgeConfig struct {
	Symbol          string          `json:"symbol"`
	Base            string          `json:"base"`
	Quote           string          `json:"quote"`
	TickSize        decimal.Decimal `json:"tickSize"`
	LotSize         decimal.Decimal `json:"lotSize"`
	TargetBalance   decimal.Decimal `json:"targetBalance"`
	MaxSlippage     decimal.Decimal `json:"maxSlippage"`
	MaxChunk        decimal.Decimal `json:"maxChunk"`
	ActionThreshold decimal.Decimal `json:"actionThreshold"`
	PulsePause      int             `json:"pulsePause"`
}

type JournalConfig struct {
	DSN string `json:"dsn"`
}

type TelemetryConfig struct {
	Addr string `json:"addr"`
}

type NotifyConfig struct {
	DiscordWebhook string `json:"discordWebhook"`
}

type ProfilingConfig struct {
	Enabled       bool   `json:"enabled"`
	ServerAddress string `json:"serverAddress"`
}

// Loaded is the resolved configuration ready for use. Everything here is
// validated; a process holding a Loaded can enter the pulse loop.
type Loaded struct {
	Market         model.Market
	IsPerp         bool
	UpdateMode     enum.UpdateMode
	Chain          *chain.Chain
	Reconciler     *recon.Reconciler
	MakerInterval  time.Duration
	HedgerInterval time.Duration
	Hedge          *hedge.Config
	JournalDSN     string
	TelemetryAddr  string
	DiscordWebhook string
	Profiling      ProfilingConfig
	DryRun         bool
}

// Load reads a JSON config file and resolves it. Any problem here is fatal:
// the engine never quotes on a half-understood configuration.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config")
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "unmarshal config")
	}
	return Resolve(cfg)
}

// Resolve validates a parsed FileConfig and builds the runtime pieces.
func Resolve(cfg FileConfig) (Loaded, error) {
	market, isPerp, err := resolveMarket(cfg.Market)
	if err != nil {
		return Loaded{}, err
	}

	mode, ok := enum.ParseUpdateMode(cfg.UpdateMode)
	if !ok {
		return Loaded{}, errors.Wrapf(exception.ErrConfigUnknownMode, "update mode: %q", cfg.UpdateMode)
	}

	built, err := chain.Build(cfg.Chain)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "build chain")
	}

	if cfg.Pulse.MakerIntervalSeconds <= 0 {
		return Loaded{}, errors.Wrap(exception.ErrConfigInvalid, "maker interval must be > 0")
	}
	makerInterval := time.Duration(cfg.Pulse.MakerIntervalSeconds) * time.Second
	hedgerInterval := time.Duration(cfg.Pulse.HedgerIntervalSeconds) * time.Second
	if hedgerInterval <= 0 {
		hedgerInterval = makerInterval
	}

	loaded := Loaded{
		Market:         market,
		IsPerp:         isPerp,
		UpdateMode:     mode,
		Chain:          built,
		Reconciler:     resolveReconciler(cfg.Reconcile),
		MakerInterval:  makerInterval,
		HedgerInterval: hedgerInterval,
		JournalDSN:     cfg.Journal.DSN,
		TelemetryAddr:  cfg.Telemetry.Addr,
		DiscordWebhook: cfg.Notify.DiscordWebhook,
		Profiling:      cfg.Profiling,
		DryRun:         cfg.DryRun,
	}

	if cfg.Hedge != nil {
		hedgeCfg, err := resolveHedge(*cfg.Hedge, market)
		if err != nil {
			return Loaded{}, err
		}
		loaded.Hedge = &hedgeCfg
	}
	return loaded, nil
}

func resolveMarket(cfg MarketConfig) (model.Market, bool, error) {
	if cfg.Symbol == "" {
		return model.Market{}, false, exception.ErrConfigMissingMarket
	}
	if !cfg.TickSize.IsPositive() || !cfg.LotSize.IsPositive() {
		return model.Market{}, false, errors.Wrapf(exception.ErrConfigInvalid,
			"market %s: tick %s, lot %s must be > 0", cfg.Symbol, cfg.TickSize, cfg.LotSize)
	}

	var isPerp bool
	switch cfg.Kind {
	case "", "perp":
		isPerp = true
	case "spot":
		isPerp = false
	default:
		return model.Market{}, false, errors.Wrapf(exception.ErrConfigInvalid, "market kind: %q", cfg.Kind)
	}

	return model.Market{
		Symbol:        cfg.Symbol,
		Base:          cfg.Base,
		Quote:         cfg.Quote,
		TickSize:      cfg.TickSize,
		LotSize:       cfg.LotSize,
		RequiresCrank: cfg.RequiresCrank,
	}, isPerp, nil
}

func resolveReconciler(cfg ReconcileConfig) *recon.Reconciler {
	if cfg.AlwaysReplace {
		return recon.NewAlwaysReplace()
	}
	return recon.NewReconciler(cfg.PriceTolerance, cfg.QuantityTolerance, cfg.ExpirationToleranceSeconds)
}

func resolveHedge(cfg HedgeConfig, market model.Market) (hedge.Config, error) {
	if cfg.Symbol == "" {
		return hedge.Config{}, errors.Wrap(exception.ErrConfigInvalid, "hedge symbol is empty")
	}
	if !cfg.TickSize.IsPositive() || !cfg.LotSize.IsPositive() {
		return hedge.Config{}, errors.Wrapf(exception.ErrConfigInvalid,
			"hedge %s: tick %s, lot %s must be > 0", cfg.Symbol, cfg.TickSize, cfg.LotSize)
	}
	// The hedge leg must trade the same base asset the quoted market
	// exposes, otherwise the delta is meaningless.
	if market.Base != "" && cfg.Base != "" && cfg.Base != market.Base {
		return hedge.Config{}, errors.Wrapf(exception.ErrConfigInvalid,
			"hedge base %s does not match market base %s", cfg.Base, market.Base)
	}
	if cfg.MaxSlippage.IsNegative() || cfg.MaxChunk.IsNegative() || cfg.ActionThreshold.IsNegative() || cfg.PulsePause < 0 {
		return hedge.Config{}, errors.Wrapf(exception.ErrConfigInvalid, "hedge %s has negative bounds", cfg.Symbol)
	}

	return hedge.Config{
		Market: model.Market{
			Symbol:   cfg.Symbol,
			Base:     cfg.Base,
			Quote:    cfg.Quote,
			TickSize: cfg.TickSize,
			LotSize:  cfg.LotSize,
		},
		Target:          cfg.TargetBalance,
		MaxSlippage:     cfg.MaxSlippage,
		MaxChunk:        cfg.MaxChunk,
		ActionThreshold: cfg.ActionThreshold,
		PulsePause:      cfg.PulsePause,
	}, nil
}
