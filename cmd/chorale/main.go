package main

// Live engine: MIDI input drives a synth through a gain stage into the
// stereo mix bus, with a tone bed underneath and a meter tap on the way
// out. Graph edits made while running would follow the same pattern:
// mutate, then Publish on the UI tick.

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	chorale "github.com/avermeer/chorale/src"
)

func main() {
	var configPath = pflag.StringP("config", "c", "", "Path to yaml config file.")
	var midiDevice = pflag.StringP("midi", "m", "", "Raw MIDI device path (overrides config).")
	var metricsAddr = pflag.String("metrics", "", "Listen address for /metrics (overrides config).")
	var samplePath = pflag.StringP("sample", "s", "", "WAV clip to loop into the mix.")
	var verbose = pflag.BoolP("verbose", "v", false, "Debug logging.")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Runs the audio engine against the default output device.\n\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := chorale.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("config", "err", err)
	}
	if *midiDevice != "" {
		cfg.MIDIDevice = *midiDevice
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	if cfg.MetricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, nil); err != nil {
				log.Error("metrics server", "err", err)
			}
		}()
	}

	var elog *chorale.EventLog
	if cfg.EventLogPath != "" {
		elog, err = chorale.OpenEventLog(cfg.EventLogPath)
		if err != nil {
			log.Fatal("event log", "err", err)
		}
		defer elog.Close()
	}

	graph, worker := chorale.NewAudioGraph(cfg.InitialBufferFrames)

	// MIDI is optional; without a device the synth just stays silent.
	var ring *chorale.MidiRing
	if reader, err := chorale.OpenMidiReader(cfg.MIDIDevice, cfg.MIDIRingSize, elog); err != nil {
		log.Warn("no MIDI input", "device", cfg.MIDIDevice, "err", err)
		ring = chorale.NewMidiRing(cfg.MIDIRingSize)
	} else {
		defer reader.Close()
		ring = reader.Ring()
		log.Info("MIDI input open", "device", cfg.MIDIDevice)
	}

	midiIn := graph.AddNode(
		chorale.NodeShape{}.Event(0, 1).AlwaysRun(),
		chorale.NewMidiInput(ring))

	synth := graph.AddNode(
		chorale.NodeShape{}.Audio(0, 1).Event(1, 0),
		chorale.NewSynth(cfg.SampleRate))
	must(graph.ConnectEvent(synth, 0, midiIn, 0))

	gainProc := chorale.NewGain(0.8)
	gain := graph.AddNode(chorale.NodeShape{}.Audio(2, 2), gainProc)
	must(graph.ConnectAudio(gain, 0, synth, 0))
	must(graph.ConnectAudio(gain, 1, synth, 0))

	bus := graph.AddNode(chorale.NodeShape{}.Audio(0, 2), chorale.Summer{})
	must(graph.ConnectGrowInputs(bus, 0, gain, 0))
	must(graph.ConnectGrowInputs(bus, 1, gain, 1))

	// The bus picks sides by source port, so mono sources go through a
	// unity gain splitter to reach both channels.
	tone := graph.AddNode(chorale.NodeShape{}.Audio(0, 1),
		chorale.NewTone(220, 0.05, cfg.SampleRate))
	toneSplit := graph.AddNode(chorale.NodeShape{}.Audio(2, 2), chorale.NewGain(1))
	must(graph.ConnectAudio(toneSplit, 0, tone, 0))
	must(graph.ConnectAudio(toneSplit, 1, tone, 0))
	must(graph.ConnectGrowInputs(bus, 2, toneSplit, 0))
	must(graph.ConnectGrowInputs(bus, 3, toneSplit, 1))

	if *samplePath != "" {
		player, err := chorale.LoadSample(*samplePath, true)
		if err != nil {
			log.Fatal("sample", "err", err)
		}
		clip := graph.AddNode(
			chorale.NodeShape{}.Audio(0, player.NumChannels()), player)
		clipSplit := graph.AddNode(chorale.NodeShape{}.Audio(2, 2), chorale.NewGain(1))
		right := 0
		if player.NumChannels() > 1 {
			right = 1
		}
		must(graph.ConnectAudio(clipSplit, 0, clip, 0))
		must(graph.ConnectAudio(clipSplit, 1, clip, right))
		must(graph.ConnectGrowInputs(bus, 4, clipSplit, 0))
		must(graph.ConnectGrowInputs(bus, 5, clipSplit, 1))
	}

	meterProc := chorale.NewMeter(cfg.SampleRate)
	meter := graph.AddNode(chorale.NodeShape{}.Audio(2, 2), meterProc)
	must(graph.ConnectAudio(meter, 0, bus, 0))
	must(graph.ConnectAudio(meter, 1, bus, 1))
	must(graph.SetOutputNode(meter))

	graph.Publish()

	stats := chorale.NewStats(time.Duration(cfg.StatsInterval))
	defer stats.Close()

	device, err := chorale.OpenDevice(cfg, worker, stats)
	if err != nil {
		log.Fatal("audio device", "err", err)
	}
	defer device.Close()
	if err := device.Start(); err != nil {
		log.Fatal("audio start", "err", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(30 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sig:
			log.Info("shutting down")
			return
		case <-ticker.C:
			// The application loop: publish pending edits, poll the meter.
			graph.Publish()
			log.Debug("levels",
				"peak_l", meterProc.Peak(0), "peak_r", meterProc.Peak(1))
		}
	}
}

func must(err error) {
	if err != nil {
		log.Fatal("graph wiring", "err", err)
	}
}
