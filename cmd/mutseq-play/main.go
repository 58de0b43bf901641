package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/zynmi/mutseq"
	"github.com/zynmi/mutseq/cmd"
	"github.com/zynmi/mutseq/gomidi"
	"github.com/zynmi/mutseq/oto"
	"github.com/zynmi/mutseq/player"
	"github.com/zynmi/mutseq/rpc"
	"github.com/zynmi/mutseq/version"
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var midiInput = flag.String("midi-input", "", "connect MIDI input (clock, transport, controllers) to matching device name prefix")
var midiOutput = flag.String("midi-output", "", "send the notes to matching MIDI output device name prefix")
var sampleRate = flag.Int("rate", 48000, "audio sample rate; the sequencer is clocked by the audio device")
var bufferSize = flag.Duration("buffer", 0, "audio buffer `duration`; 0 uses the platform default")
var volume = flag.Float64("volume", 0.3, "volume of the built-in monitor voice; 0 for silence")
var record = flag.String("record", "", "record the notes into a standard MIDI `file` when quitting")
var listen = flag.String("listen", "", "serve remote control on `address`, e.g. "+rpc.DefaultAddress)
var list = flag.Bool("list", false, "list the MIDI devices and exit")
var start = flag.Bool("start", true, "start the internal clock right away, even if the preset is stopped")
var verbose = flag.Bool("verbose", false, "log every step")
var versionFlag = flag.Bool("v", false, "Print version.")

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.Banner("mutseq-play"))
		os.Exit(0)
	}
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(1)
	}
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}
	preset := mutseq.DefaultPreset()
	if flag.NArg() == 1 {
		var err error
		if preset, err = loadPreset(flag.Arg(0)); err != nil {
			log.Fatal(err)
		}
	}
	preset.Config.Running = preset.Config.Running || *start
	midiContext, err := cmd.NewMidiContext(float64(*sampleRate), *midiInput, *midiOutput)
	if err != nil {
		log.Fatal("could not open MIDI: ", err)
	}
	defer midiContext.Close()
	if *list {
		fmt.Printf("inputs:\n  %s\noutputs:\n  %s\n", strings.Join(midiContext.Inputs(), "\n  "), strings.Join(midiContext.Outputs(), "\n  "))
		return
	}
	broker := player.NewBroker()
	p, err := player.NewPlayer(broker, float64(*sampleRate), preset)
	if err != nil {
		log.Fatal(err)
	}
	if *record != "" {
		player.TrySend(broker.ToPlayer, any(player.StartRecording()))
	}
	audioContext, err := oto.NewContext(*sampleRate, *bufferSize)
	if err != nil {
		log.Fatal(err)
	}
	var control *rpc.Control
	if *listen != "" {
		var l net.Listener
		if control, l, err = rpc.Listen(*listen, broker); err != nil {
			log.Fatal(err)
		}
		defer l.Close()
		log.Printf("remote control listening on %v", l.Addr())
	}
	recordings := make(chan *player.Recording, 1)
	go runModel(broker, control, recordings)
	output := audioContext.Play(p, midiContext, float32(*volume))
	log.Printf("playing %q at %d Hz, press Ctrl+C to quit", preset.Name, *sampleRate)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt
	if *record != "" {
		player.TrySend(broker.ToPlayer, any(player.StopRecording()))
		if r, ok := player.TimeoutReceive(recordings, 3*time.Second); ok {
			if err := saveRecording(*record, r); err != nil {
				log.Print(err)
			}
		} else {
			log.Print("nothing was recorded")
		}
	}
	player.TrySend(broker.ToPlayer, any(player.PanicMsg{}))
	time.Sleep(100 * time.Millisecond) // let the note-off out
	if err := output.Close(); err != nil {
		log.Print(err)
	}
	player.TrySend(broker.CloseModel, struct{}{})
	select {
	case <-broker.FinishedModel:
	case <-time.After(3 * time.Second):
	}
}

// runModel logs what the player reports until CloseModel.
func runModel(broker *player.Broker, control *rpc.Control, recordings chan<- *player.Recording) {
	defer close(broker.FinishedModel)
	var last player.Status
	for {
		select {
		case <-broker.CloseModel:
			return
		case msg := <-broker.ToModel:
			if msg.HasStatus {
				s := msg.Status
				if s.Running != last.Running {
					log.Printf("running: %v", s.Running)
				}
				if s.Running && s.BPM != last.BPM {
					log.Printf("tempo: %.2f BPM", s.BPM)
				}
				if *verbose && s.Step != last.Step {
					log.Printf("step %d, note %d", s.Step+1, s.Note)
				}
				last = s
				if control != nil {
					control.UpdateStatus(s)
				}
			}
			switch d := msg.Data.(type) {
			case player.Alert:
				log.Print(d)
			case *player.Recording:
				player.TrySend(recordings, d)
			}
		}
	}
}

func loadPreset(filename string) (mutseq.Preset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return mutseq.Preset{}, fmt.Errorf("could not open preset %v: %w", filename, err)
	}
	defer f.Close()
	p, err := mutseq.ReadPreset(f)
	if err != nil {
		return mutseq.Preset{}, fmt.Errorf("could not load preset %v: %w", filename, err)
	}
	return p, nil
}

func saveRecording(filename string, r *player.Recording) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create %v: %w", filename, err)
	}
	if err := gomidi.WriteSMF(f, r); err != nil {
		f.Close()
		return fmt.Errorf("could not write %v: %w", filename, err)
	}
	log.Printf("wrote %d events to %v", len(r.Events), filename)
	return f.Close()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Mutating MIDI step sequencer, clocked by the audio device.\nUsage: %s [flags] [preset.yml|preset.json]\n", os.Args[0])
	flag.PrintDefaults()
}
