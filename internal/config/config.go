// Package config loads and validates scenario files: the fleet, the charging
// stations, and each node's directive plan.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"fly-and-charge/sim/internal/directive"
	"fly-and-charge/sim/internal/energy"
	"fly-and-charge/sim/internal/fleet"
	"fly-and-charge/sim/internal/mission"
	"fly-and-charge/sim/logging"
)

var validate = validator.New()

// Scenario is the root of a scenario file.
type Scenario struct {
	// Seed feeds every node's deterministic sampling stream. Two runs of the
	// same scenario with the same seed produce identical trajectories.
	Seed string `yaml:"seed" json:"seed"`

	// TickRate is how many simulation steps one simulated second is split
	// into.
	TickRate float64 `yaml:"tickRate" json:"tickRate" validate:"gt=0,lte=1000"`

	// MaxSimSeconds stops the run after this much simulated time. Zero means
	// run until every plan drains.
	MaxSimSeconds float64 `yaml:"maxSimSeconds" json:"maxSimSeconds" validate:"gte=0"`

	Listen  Listen  `yaml:"listen" json:"listen"`
	Logging Logging `yaml:"logging" json:"logging"`

	// Profile overrides the default consumption calibration for every node.
	Profile *energy.Profile `yaml:"profile,omitempty" json:"profile,omitempty"`

	Stations []StationConfig `yaml:"stations" json:"stations" validate:"dive"`
	Nodes    []NodeConfig    `yaml:"nodes" json:"nodes" validate:"min=1,dive"`
}

// Listen configures the optional observation endpoints.
type Listen struct {
	// Addr is the HTTP listen address for the snapshot hub and metrics.
	// Empty disables serving and the run is headless.
	Addr string `yaml:"addr" json:"addr"`
}

// Logging selects the console sink configuration.
type Logging struct {
	Level   string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Console bool   `yaml:"console" json:"console"`
}

// StationConfig declares one charging station.
type StationConfig struct {
	Name       string  `yaml:"name" json:"name" validate:"required"`
	X          float64 `yaml:"x" json:"x"`
	Y          float64 `yaml:"y" json:"y"`
	Z          float64 `yaml:"z" json:"z"`
	ChargeRate float64 `yaml:"chargeRate" json:"chargeRate" validate:"gte=0"`
}

// NodeConfig declares one UAV and its directive plan.
type NodeConfig struct {
	Name            string            `yaml:"name" json:"name" validate:"required"`
	X               float64           `yaml:"x" json:"x"`
	Y               float64           `yaml:"y" json:"y"`
	Z               float64           `yaml:"z" json:"z"`
	BatteryCapacity float64           `yaml:"batteryCapacity" json:"batteryCapacity" validate:"gte=0"`
	MissionData     string            `yaml:"missionData,omitempty" json:"missionData,omitempty"`
	Plan            []DirectiveConfig `yaml:"plan" json:"plan" validate:"dive"`
}

// DirectiveConfig is the file form of one directive. Station and Peer are
// names resolved against the scenario at build time.
type DirectiveConfig struct {
	Kind string `yaml:"kind" json:"kind" validate:"oneof=Waypoint Takeoff HoldPosition Charge Exchange Idle"`

	X        float64 `yaml:"x,omitempty" json:"x,omitempty"`
	Y        float64 `yaml:"y,omitempty" json:"y,omitempty"`
	Z        float64 `yaml:"z,omitempty" json:"z,omitempty"`
	Altitude float64 `yaml:"altitude,omitempty" json:"altitude,omitempty"`
	Seconds  float64 `yaml:"seconds,omitempty" json:"seconds,omitempty" validate:"gte=0"`
	Station  string  `yaml:"station,omitempty" json:"station,omitempty"`
	// TargetPercentage is the state of charge a Charge directive fills to.
	// Zero means full.
	TargetPercentage float64 `yaml:"targetPercentage,omitempty" json:"targetPercentage,omitempty" validate:"gte=0,lte=100"`
	Peer     string  `yaml:"peer,omitempty" json:"peer,omitempty"`
	Recharge bool    `yaml:"recharge,omitempty" json:"recharge,omitempty"`
}

// Default returns the scenario baseline a file is merged over.
func Default() Scenario {
	return Scenario{
		Seed:     energy.DefaultSeed,
		TickRate: 10,
		Logging:  Logging{Level: "info", Console: true},
	}
}

// Load reads, merges, and validates a scenario file.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse merges raw YAML over the defaults and validates the result.
func Parse(data []byte) (Scenario, error) {
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// Validate checks field constraints and cross-references between plans,
// stations, and peers.
func (s Scenario) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if s.Profile != nil {
		if err := s.Profile.Validate(); err != nil {
			return fmt.Errorf("config: profile: %w", err)
		}
	}

	stations := make(map[string]bool, len(s.Stations))
	for _, st := range s.Stations {
		if stations[st.Name] {
			return fmt.Errorf("config: duplicate station name %q", st.Name)
		}
		stations[st.Name] = true
	}
	nodes := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if nodes[n.Name] {
			return fmt.Errorf("config: duplicate node name %q", n.Name)
		}
		nodes[n.Name] = true
	}

	for _, n := range s.Nodes {
		for i, d := range n.Plan {
			switch directive.Kind(d.Kind) {
			case directive.KindCharge:
				if !stations[d.Station] {
					return fmt.Errorf("config: node %s plan[%d]: unknown station %q", n.Name, i, d.Station)
				}
			case directive.KindExchange:
				if d.Peer != "" && !nodes[d.Peer] {
					return fmt.Errorf("config: node %s plan[%d]: unknown peer %q", n.Name, i, d.Peer)
				}
				if d.Peer == n.Name {
					return fmt.Errorf("config: node %s plan[%d]: node cannot exchange with itself", n.Name, i)
				}
			}
		}
	}
	return nil
}

// TickInterval returns the simulated seconds one step covers.
func (s Scenario) TickInterval() float64 {
	return 1 / s.TickRate
}

// Severity maps the configured level onto the event severity floor.
func (s Scenario) Severity() logging.Severity {
	switch s.Logging.Level {
	case "debug":
		return logging.SeverityDebug
	case "warn":
		return logging.SeverityWarn
	case "error":
		return logging.SeverityError
	default:
		return logging.SeverityInfo
	}
}

// Build materializes the scenario into a world: stations first, then nodes,
// then each plan with its station and peer references resolved.
func (s Scenario) Build(publisher logging.Publisher, hooks mission.Hooks) (*mission.World, error) {
	stations := fleet.NewDirectory()
	byStationName := make(map[string]*fleet.Station, len(s.Stations))
	for _, sc := range s.Stations {
		station := fleet.NewStation(sc.Name, sc.X, sc.Y, sc.Z)
		if sc.ChargeRate > 0 {
			station.ChargeRate = sc.ChargeRate
		}
		stations.Add(station)
		byStationName[sc.Name] = station
	}

	world := mission.NewWorld(mission.WorldConfig{
		Publisher: publisher,
		Stations:  stations,
		Hooks:     hooks,
	})

	profile := energy.DefaultProfile()
	if s.Profile != nil {
		profile = *s.Profile
	}

	byNodeName := make(map[string]*fleet.Node, len(s.Nodes))
	for _, nc := range s.Nodes {
		node := fleet.NewNode(s.Seed, nc.Name, profile, nc.BatteryCapacity)
		node.X = nc.X
		node.Y = nc.Y
		node.Z = nc.Z
		if nc.MissionData != "" {
			node.MissionData = []byte(nc.MissionData)
		}
		if _, err := world.AddNode(node); err != nil {
			return nil, err
		}
		byNodeName[nc.Name] = node
	}

	for _, nc := range s.Nodes {
		for i, dc := range nc.Plan {
			d, err := dc.resolve(byStationName, byNodeName)
			if err != nil {
				return nil, fmt.Errorf("config: node %s plan[%d]: %w", nc.Name, i, err)
			}
			if err := world.Enqueue(nc.Name, d); err != nil {
				return nil, fmt.Errorf("config: node %s plan[%d]: %w", nc.Name, i, err)
			}
		}
	}
	return world, nil
}

func (dc DirectiveConfig) resolve(stations map[string]*fleet.Station, nodes map[string]*fleet.Node) (directive.Directive, error) {
	switch directive.Kind(dc.Kind) {
	case directive.KindWaypoint:
		return directive.NewWaypoint(dc.X, dc.Y, dc.Z), nil
	case directive.KindTakeoff:
		return directive.NewTakeoff(dc.Altitude), nil
	case directive.KindHoldPosition:
		return directive.NewHoldPosition(dc.X, dc.Y, dc.Z, dc.Seconds), nil
	case directive.KindCharge:
		station, ok := stations[dc.Station]
		if !ok {
			return directive.Directive{}, fmt.Errorf("unknown station %q", dc.Station)
		}
		d := directive.NewCharge(station)
		d.Charge.TargetPercentage = dc.TargetPercentage
		return d, nil
	case directive.KindExchange:
		// An absent peer is allowed; the engine logs the missing handoff.
		return directive.NewExchange(nodes[dc.Peer], dc.Recharge), nil
	case directive.KindIdle:
		return directive.NewIdle(), nil
	default:
		return directive.Directive{}, fmt.Errorf("unknown directive kind %q", dc.Kind)
	}
}
