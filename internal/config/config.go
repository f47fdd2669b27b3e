// Package config loads and validates simulation parameters. Validation
// happens here, at the edge: the sim and game cores assume well-formed
// non-negative inputs and are entitled to misbehave loudly if that contract
// is broken.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds parameters for both simulation variants.
type Config struct {
	Scenario Scenario `yaml:"scenario" json:"scenario"`
	Game     Game     `yaml:"game" json:"game"`
}

// Scenario parameterizes a batch run: fixed horizon, constant market,
// unconstrained capital.
type Scenario struct {
	Periods               int     `yaml:"periods" json:"periods"`
	InitialForestStock    float64 `yaml:"initial_forest_stock" json:"initial_forest_stock"`
	RegenRatePct          float64 `yaml:"regen_rate_pct" json:"regen_rate_pct"`
	HarvestTarget         float64 `yaml:"harvest_target" json:"harvest_target"`
	ProductionCapacity    float64 `yaml:"production_capacity" json:"production_capacity"`
	TimberPerProduct      float64 `yaml:"timber_per_product" json:"timber_per_product"`
	DemandPerPeriod       float64 `yaml:"demand_per_period" json:"demand_per_period"`
	SellingPrice          float64 `yaml:"selling_price" json:"selling_price"`
	HarvestCostPerTon     float64 `yaml:"harvest_cost_per_ton" json:"harvest_cost_per_ton"`
	ProductionCostPerUnit float64 `yaml:"production_cost_per_unit" json:"production_cost_per_unit"`
	HoldingCostTimber     float64 `yaml:"holding_cost_timber" json:"holding_cost_timber"`
	HoldingCostProduct    float64 `yaml:"holding_cost_product" json:"holding_cost_product"`
}

// RegenRate converts the percentage parameter to a growth fraction.
func (s Scenario) RegenRate() float64 { return s.RegenRatePct / 100 }

// Game parameterizes an interactive session: per-turn capacities, action
// costs, a shocked market, and win/lose thresholds.
type Game struct {
	InitialForestStock  float64 `yaml:"initial_forest_stock" json:"initial_forest_stock"`
	RegenRatePct        float64 `yaml:"regen_rate_pct" json:"regen_rate_pct"`
	InitialMoney        float64 `yaml:"initial_money" json:"initial_money"`
	HarvestCap          float64 `yaml:"harvest_cap" json:"harvest_cap"`
	TransportCapacity   float64 `yaml:"transport_capacity" json:"transport_capacity"`
	MillCapacity        float64 `yaml:"mill_capacity" json:"mill_capacity"`
	TimberPerProduct    float64 `yaml:"timber_per_product" json:"timber_per_product"`
	BasePrice           float64 `yaml:"base_price" json:"base_price"`
	PriceSpread         float64 `yaml:"price_spread" json:"price_spread"`
	PriceFloor          float64 `yaml:"price_floor" json:"price_floor"`
	BaseDemand          float64 `yaml:"base_demand" json:"base_demand"`
	DemandFrac          float64 `yaml:"demand_frac" json:"demand_frac"`
	DemandFloor         float64 `yaml:"demand_floor" json:"demand_floor"`
	HarvestCostPerTon   float64 `yaml:"harvest_cost_per_ton" json:"harvest_cost_per_ton"`
	TransportCostPerTon float64 `yaml:"transport_cost_per_ton" json:"transport_cost_per_ton"`
	ProcessCostPerUnit  float64 `yaml:"process_cost_per_unit" json:"process_cost_per_unit"`
	Horizon             int     `yaml:"horizon" json:"horizon"`
	TargetMultiple      float64 `yaml:"target_multiple" json:"target_multiple"`
}

// RegenRate converts the percentage parameter to a growth fraction.
func (g Game) RegenRate() float64 { return g.RegenRatePct / 100 }

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parse embedded defaults: %w", err)
	}
	return cfg, nil
}

// Load reads a YAML file over the embedded defaults, so a scenario file only
// needs to name the parameters it changes.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects parameter sets the cores are not defined over.
func (c *Config) Validate() error {
	s := c.Scenario
	for name, v := range map[string]float64{
		"scenario.initial_forest_stock":     s.InitialForestStock,
		"scenario.regen_rate_pct":           s.RegenRatePct,
		"scenario.harvest_target":           s.HarvestTarget,
		"scenario.production_capacity":      s.ProductionCapacity,
		"scenario.demand_per_period":        s.DemandPerPeriod,
		"scenario.selling_price":            s.SellingPrice,
		"scenario.harvest_cost_per_ton":     s.HarvestCostPerTon,
		"scenario.production_cost_per_unit": s.ProductionCostPerUnit,
		"scenario.holding_cost_timber":      s.HoldingCostTimber,
		"scenario.holding_cost_product":     s.HoldingCostProduct,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative, got %v", name, v)
		}
	}
	if s.Periods < 1 {
		return fmt.Errorf("scenario.periods must be at least 1, got %d", s.Periods)
	}
	if s.TimberPerProduct <= 0 {
		return fmt.Errorf("scenario.timber_per_product must be positive, got %v", s.TimberPerProduct)
	}

	g := c.Game
	for name, v := range map[string]float64{
		"game.initial_forest_stock":   g.InitialForestStock,
		"game.regen_rate_pct":         g.RegenRatePct,
		"game.initial_money":          g.InitialMoney,
		"game.harvest_cap":            g.HarvestCap,
		"game.transport_capacity":     g.TransportCapacity,
		"game.mill_capacity":          g.MillCapacity,
		"game.price_spread":           g.PriceSpread,
		"game.base_demand":            g.BaseDemand,
		"game.demand_frac":            g.DemandFrac,
		"game.demand_floor":           g.DemandFloor,
		"game.harvest_cost_per_ton":   g.HarvestCostPerTon,
		"game.transport_cost_per_ton": g.TransportCostPerTon,
		"game.process_cost_per_unit":  g.ProcessCostPerUnit,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative, got %v", name, v)
		}
	}
	if g.TimberPerProduct <= 0 {
		return fmt.Errorf("game.timber_per_product must be positive, got %v", g.TimberPerProduct)
	}
	if g.BasePrice <= 0 || g.PriceFloor <= 0 {
		return fmt.Errorf("game prices must be positive (base_price=%v, price_floor=%v)", g.BasePrice, g.PriceFloor)
	}
	if g.Horizon < 1 {
		return fmt.Errorf("game.horizon must be at least 1, got %d", g.Horizon)
	}
	if g.TargetMultiple <= 1 {
		return fmt.Errorf("game.target_multiple must exceed 1, got %v", g.TargetMultiple)
	}
	return nil
}
