package main

// Quick test program for the output path: two sine sources, one per
// side. If this doesn't make sound, nothing will.

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	chorale "github.com/avermeer/chorale/src"
)

func main() {
	var configPath = pflag.StringP("config", "c", "", "Path to yaml config file.")
	var left = pflag.Float32P("left", "l", 440, "Left channel frequency in Hz.")
	var right = pflag.Float32P("right", "r", 554.37, "Right channel frequency in Hz.")
	var amp = pflag.Float32P("amplitude", "a", 0.2, "Amplitude, 0 to 1.")
	var duration = pflag.DurationP("duration", "d", 2*time.Second, "How long to play.")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Plays test tones through the default output device.\n\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	cfg, err := chorale.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("config", "err", err)
	}

	graph, worker := chorale.NewAudioGraph(cfg.InitialBufferFrames)

	lt := graph.AddNode(chorale.NodeShape{}.Audio(0, 1),
		chorale.NewTone(*left, *amp, cfg.SampleRate))
	rt := graph.AddNode(chorale.NodeShape{}.Audio(0, 1),
		chorale.NewTone(*right, *amp, cfg.SampleRate))

	// A unity gain stage pairs the two mono sources into left and right.
	out := graph.AddNode(chorale.NodeShape{}.Audio(2, 2), chorale.NewGain(1))
	must(graph.ConnectAudio(out, 0, lt, 0))
	must(graph.ConnectAudio(out, 1, rt, 0))
	must(graph.SetOutputNode(out))
	graph.Publish()

	device, err := chorale.OpenDevice(cfg, worker, nil)
	if err != nil {
		log.Fatal("audio device", "err", err)
	}
	defer device.Close()
	if err := device.Start(); err != nil {
		log.Fatal("audio start", "err", err)
	}

	time.Sleep(*duration)
}

func must(err error) {
	if err != nil {
		log.Fatal("graph wiring", "err", err)
	}
}
