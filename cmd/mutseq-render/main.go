package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zynmi/mutseq"
	"github.com/zynmi/mutseq/engine"
	"github.com/zynmi/mutseq/gomidi"
	"github.com/zynmi/mutseq/oto"
	"github.com/zynmi/mutseq/player"
	"github.com/zynmi/mutseq/report"
	"github.com/zynmi/mutseq/version"
)

func main() {
	stdout := flag.Bool("s", false, "Do not write files; write the reports to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the current working directory.")
	bars := flag.Float64("bars", 4, "Length of the render in 4/4 bars at the tempo of the preset.")
	rate := flag.Float64("rate", 48000, "Sample rate of the render.")
	blockSize := flag.Int("block", engine.DefaultBlockSize, "Block size used to run the engine.")
	midiOut := flag.Bool("m", false, "Output the notes as a standard MIDI file (default behaviour when no other output is defined).")
	summary := flag.Bool("r", false, "Output a summary of the preset and the groove statistics as a .txt file.")
	events := flag.Bool("e", false, "Output a listing of the note events as a .events.txt file.")
	wavOut := flag.Bool("w", false, "Output the notes played by the built-in monitor voice as a .wav file.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	volume := flag.Float64("volume", 0.5, "Volume of the monitor voice in the .wav file.")
	templateDir := flag.String("t", "", "Directory of the report templates; by default the built-in templates are used.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.Banner("mutseq-render"))
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if *rate <= 0 {
		fmt.Fprintf(os.Stderr, "invalid sample rate %v\n", *rate)
		os.Exit(1)
	}
	if !*summary && !*events && !*wavOut {
		*midiOut = true
	}
	var reporter *report.Reporter
	if *summary || *events {
		var err error
		if *templateDir != "" {
			reporter, err = report.NewFromTemplates(*templateDir)
		} else {
			reporter, err = report.New()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not create the reporter: %v\n", err)
			os.Exit(1)
		}
	}
	process := func(filename string) error {
		output := func(extension string, contents []byte) error {
			if *stdout {
				fmt.Print(string(contents))
				return nil
			}
			_, name := filepath.Split(filename)
			dir := *directory
			if dir == "" {
				var err error
				dir, err = os.Getwd()
				if err != nil {
					return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
				}
			}
			name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
			f := filepath.Join(dir, name)
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
			if err := os.WriteFile(f, contents, 0644); err != nil {
				return fmt.Errorf("could not write file %v: %v", f, err)
			}
			return nil
		}
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		preset, err := mutseq.ParsePreset(inputBytes)
		if err != nil {
			return err
		}
		if preset.Name == "" {
			preset.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		}
		preset.Config.Running = true
		bpm := engine.RenderTempo(&preset.Config)
		frames := int(max(*bars, 0) * 4 * 60 / bpm * *rate)
		inputs := engine.ClockScript(&preset.Config, *rate, frames)
		ev, err := engine.Render(&preset, *rate, frames, *blockSize, inputs)
		if err != nil {
			return fmt.Errorf("engine.Render failed: %v", err)
		}
		rec := &player.Recording{BPM: bpm, SampleRate: *rate, Events: ev, TotalFrames: frames}
		if *midiOut && !*stdout {
			var b bytes.Buffer
			if err := gomidi.WriteSMF(&b, rec); err != nil {
				return fmt.Errorf("could not generate .mid file: %v", err)
			}
			if err := output(".mid", b.Bytes()); err != nil {
				return fmt.Errorf("error outputting .mid file: %v", err)
			}
		}
		if *wavOut && !*stdout {
			audio := oto.RenderMonitor(ev, frames, *rate, float32(*volume))
			wav, err := oto.Wav(audio, int(*rate), *pcm)
			if err != nil {
				return fmt.Errorf("could not generate .wav file: %v", err)
			}
			if err := output(".wav", wav); err != nil {
				return fmt.Errorf("error outputting .wav file: %v", err)
			}
		}
		if reporter == nil {
			return nil
		}
		data, err := report.NewData(preset, rec)
		if err != nil {
			return err
		}
		if *summary {
			s, err := reporter.Execute("summary.txt", data)
			if err != nil {
				return err
			}
			if err := output(".txt", []byte(s)); err != nil {
				return fmt.Errorf("error outputting summary: %v", err)
			}
		}
		if *events {
			s, err := reporter.Execute("events.txt", data)
			if err != nil {
				return err
			}
			if err := output(".events.txt", []byte(s)); err != nil {
				return fmt.Errorf("error outputting event listing: %v", err)
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			jsonfiles, err := filepath.Glob(filepath.Join(param, "*.json"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for json files: %v\n", param, err)
				retval = 1
				continue
			}
			ymlfiles, err := filepath.Glob(filepath.Join(param, "*.yml"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for yml files: %v\n", param, err)
				retval = 1
				continue
			}
			for _, file := range append(ymlfiles, jsonfiles...) {
				if err := process(file); err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Renders mutseq presets offline to standard MIDI files and text reports.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
