package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fly-and-charge/sim/internal/config"
	"fly-and-charge/sim/internal/directive"
	"fly-and-charge/sim/internal/engine"
	"fly-and-charge/sim/internal/mission"
	simnet "fly-and-charge/sim/internal/net"
	"fly-and-charge/sim/internal/telemetry"
	"fly-and-charge/sim/logging"
	"fly-and-charge/sim/logging/sinks"
)

func newRunCommand() *cobra.Command {
	var (
		scenarioPath string
		listenAddr   string
		realtime     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a scenario until every node settles",
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := config.Load(scenarioPath)
			if err != nil {
				return err
			}
			if listenAddr != "" {
				scenario.Listen.Addr = listenAddr
			}
			return runScenario(scenario, realtime)
		},
	}
	cmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "scenario.yaml", "scenario file to run")
	cmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "HTTP address for snapshots and metrics (overrides the scenario)")
	cmd.Flags().BoolVar(&realtime, "realtime", false, "pace the simulation at wall-clock speed")
	return cmd
}

func runScenario(scenario config.Scenario, realtime bool) error {
	recorder := telemetry.NewRecorder()
	sinkList := []logging.Sink{recorder}
	if scenario.Logging.Console {
		sinkList = append(sinkList, sinks.NewConsoleSink(os.Stderr))
	}
	publisher := logging.NewFanout(nil, scenario.Severity(), sinkList...)
	defer publisher.Close(context.Background())

	// Handoffs complete as soon as the exchange becomes active; the peers
	// are co-located by the time the directive runs.
	hooks := mission.Hooks{
		ShouldComplete: func(active engine.Engine) bool {
			return active.Kind() == directive.KindExchange
		},
	}
	world, err := scenario.Build(publisher, hooks)
	if err != nil {
		return err
	}

	var hub *simnet.Hub
	if scenario.Listen.Addr != "" {
		metrics := simnet.NewMetrics()
		hub = simnet.NewHub(metrics)
		defer hub.Close()
		go serveObservation(scenario.Listen.Addr, hub, metrics, recorder)
	}

	dt := scenario.TickInterval()
	var pacer *time.Ticker
	if realtime {
		pacer = time.NewTicker(time.Duration(dt * float64(time.Second)))
		defer pacer.Stop()
	}

	for {
		if scenario.MaxSimSeconds > 0 && world.Now() >= scenario.MaxSimSeconds {
			break
		}
		if world.Settled() {
			break
		}

		started := time.Now()
		if err := world.Step(dt); err != nil {
			return err
		}
		recorder.RecordTick(time.Since(started))

		if hub != nil {
			if err := hub.Broadcast(world.Snapshot()); err != nil {
				return err
			}
		}
		if pacer != nil {
			<-pacer.C
		}
	}

	return printSummary(world, recorder)
}

func serveObservation(addr string, hub *simnet.Hub, metrics *simnet.Metrics, recorder *telemetry.Recorder) {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/telemetry", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(recorder.Snapshot()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "observation server stopped: %v\n", err)
	}
}

func printSummary(world *mission.World, recorder *telemetry.Recorder) error {
	summary := struct {
		Tick      uint64             `json:"tick"`
		SimTime   float64            `json:"simTime"`
		Telemetry telemetry.Snapshot `json:"telemetry"`
		World     mission.Snapshot   `json:"world"`
	}{
		Tick:      world.Tick(),
		SimTime:   world.Now(),
		Telemetry: recorder.Snapshot(),
		World:     world.Snapshot(),
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}
