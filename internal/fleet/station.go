package fleet

import (
	"sort"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const DefaultStationChargeRate = 2.0 // mAh restored per second per spot

// Station is a fixed charging facility. Reservation messages land in its
// inbox fire-and-forget; charging of docked nodes is driven by the stepper.
type Station struct {
	ID   string
	Name string

	X, Y, Z float64

	// ChargeRate is the energy restored per second to a docked node, mAh/s.
	ChargeRate float64

	reservations []Reservation
}

// Reservation is the message a node sends ahead of flying in to charge.
type Reservation struct {
	ID                     string
	NodeID                 string
	EstimatedArrival       float64 // absolute sim seconds
	ConsumptionTillArrival float64 // mAh expected to be burnt en route
	TargetPercentage       float64
}

func NewStation(name string, x, y, z float64) *Station {
	return &Station{
		ID:         uuid.NewString(),
		Name:       name,
		X:          x,
		Y:          y,
		Z:          z,
		ChargeRate: DefaultStationChargeRate,
	}
}

// GroundPoint returns the station's ground-plane position.
func (s *Station) GroundPoint() orb.Point {
	return orb.Point{s.X, s.Y}
}

// Reserve records an inbound reservation. There is no acknowledgement.
func (s *Station) Reserve(r Reservation) {
	if s == nil {
		return
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.reservations = append(s.reservations, r)
}

// Reservations returns a copy of the inbox.
func (s *Station) Reservations() []Reservation {
	if s == nil {
		return nil
	}
	return append([]Reservation(nil), s.reservations...)
}

// ChargeDocked restores energy to a node parked at the station and returns
// the amount transferred.
func (s *Station) ChargeDocked(node *Node, dt float64) float64 {
	if s == nil || node == nil || dt <= 0 || node.Battery.IsFull() {
		return 0
	}
	amount := s.ChargeRate * dt
	if headroom := node.Battery.Capacity() - node.Battery.Remaining(); amount > headroom {
		amount = headroom
	}
	node.Battery.Charge(amount)
	return amount
}

// Snapshot copies the station into a broadcast-friendly struct.
func (s *Station) Snapshot() StationSnapshot {
	return StationSnapshot{
		ID:           s.ID,
		Name:         s.Name,
		X:            s.X,
		Y:            s.Y,
		Z:            s.Z,
		Reservations: len(s.reservations),
	}
}

// StationSnapshot is the wire-facing view of a station.
type StationSnapshot struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Z            float64 `json:"z"`
	Reservations int     `json:"reservations"`
}

// Directory resolves charging stations by proximity and name.
type Directory struct {
	stations []*Station
}

func NewDirectory(stations ...*Station) *Directory {
	d := &Directory{}
	for _, s := range stations {
		if s != nil {
			d.stations = append(d.stations, s)
		}
	}
	sort.Slice(d.stations, func(i, j int) bool {
		return d.stations[i].Name < d.stations[j].Name
	})
	return d
}

func (d *Directory) Add(s *Station) {
	if d == nil || s == nil {
		return
	}
	d.stations = append(d.stations, s)
	sort.Slice(d.stations, func(i, j int) bool {
		return d.stations[i].Name < d.stations[j].Name
	})
}

// Stations returns the directory contents in name order.
func (d *Directory) Stations() []*Station {
	if d == nil {
		return nil
	}
	return append([]*Station(nil), d.stations...)
}

// Nearest returns the station closest to the given position on the ground
// plane. Ties resolve to the lexicographically smaller name so lookups stay
// deterministic.
func (d *Directory) Nearest(x, y, _ float64) (*Station, bool) {
	if d == nil || len(d.stations) == 0 {
		return nil, false
	}
	from := orb.Point{x, y}
	var best *Station
	bestDist := 0.0
	for _, s := range d.stations {
		dist := planar.Distance(from, s.GroundPoint())
		if best == nil || dist < bestDist {
			best = s
			bestDist = dist
		}
	}
	return best, true
}
