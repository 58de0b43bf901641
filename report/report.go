// Package report renders human readable text reports of rendered sequences
// from text templates: a summary of the preset, the step grid, the groove
// statistics and a listing of the note events.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strconv"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/zynmi/mutseq"
	"github.com/zynmi/mutseq/analysis"
	"github.com/zynmi/mutseq/engine"
	"github.com/zynmi/mutseq/player"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type (
	Reporter struct {
		Template *template.Template
	}

	// Data is what the templates see. Its methods are available as
	// template functions through the dot, e.g. {{$.NoteName .Note}}.
	Data struct {
		Preset    mutseq.Preset
		Recording *player.Recording
		Groove    analysis.Groove
		Deviation analysis.Stats // onsets relative to the straight step grid
	}

	// Row is one line of the step grid.
	Row struct {
		Label string
		Cells []string
	}
)

//go:embed templates/*
var templateFS embed.FS

// New returns a reporter using the built-in templates.
func New() (*Reporter, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf(`could not create templates: %v`, err)
	}
	return &Reporter{Template: tmpl}, nil
}

// NewFromTemplates parses the *.txt templates of a directory instead.
func NewFromTemplates(templateDirectory string) (*Reporter, error) {
	globPtrn := filepath.Join(templateDirectory, "*.txt")
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseGlob(globPtrn)
	if err != nil {
		return nil, fmt.Errorf(`could not create template based on directory "%v": %v`, templateDirectory, err)
	}
	return &Reporter{Template: tmpl}, nil
}

// NewData analyzes a recording made with preset p.
func NewData(p mutseq.Preset, r *player.Recording) (*Data, error) {
	g, err := analysis.Analyze(r)
	if err != nil {
		return nil, err
	}
	grid := engine.StepSamples(engine.RenderTempo(&p.Config), p.Config.Division, 0, 0, r.SampleRate)
	return &Data{Preset: p, Recording: r, Groove: g, Deviation: analysis.Deviation(r, float64(grid))}, nil
}

// Execute runs the named template, e.g. "summary.txt" or "events.txt".
func (r *Reporter) Execute(name string, data *Data) (string, error) {
	var b bytes.Buffer
	if err := r.Template.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf(`could not execute template "%v": %v`, name, err)
	}
	return b.String(), nil
}

// Title is the preset name for headings.
func (d *Data) Title() string {
	name := d.Preset.Name
	if name == "" {
		name = "untitled"
	}
	return cases.Title(language.English).String(name)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName names a MIDI note, middle C (60) being C4.
func (d *Data) NoteName(note byte) string {
	return noteNames[note%12] + strconv.Itoa(int(note)/12-1)
}

// PitchName names a pitch statistic, rounded to the nearest note.
func (d *Data) PitchName(pitch float32) string {
	return d.NoteName(engine.ClampMIDI(int(pitch + 0.5)))
}

// Seconds converts a frame of the recording to seconds.
func (d *Data) Seconds(frame int) float64 {
	return d.Recording.Seconds(frame)
}

func (d *Data) PatternName() string {
	return mutseq.PatternNames[mutseq.Clamp(d.Preset.Config.Pattern, 0, mutseq.NumPatterns-1)]
}

// Rows is the step grid of the active steps: the rhythm pattern and the
// step table before any generative mode or mutation.
func (d *Data) Rows() []Row {
	cfg, steps := &d.Preset.Config, &d.Preset.Steps
	n := cfg.ActiveSteps()
	rows := []Row{{Label: "step"}, {Label: "gate"}, {Label: "note"}, {Label: "velocity"}, {Label: "probability"}, {Label: "ratchet"}}
	for i := 0; i < n; i++ {
		s := steps[i]
		gate := "."
		if mutseq.Pattern(i, n, cfg.Pattern, cfg.PatternParam) {
			gate = "x"
		}
		rows[0].Cells = append(rows[0].Cells, strconv.Itoa(i+1))
		rows[1].Cells = append(rows[1].Cells, gate)
		rows[2].Cells = append(rows[2].Cells, d.NoteName(engine.ClampMIDI(s.Pitch+cfg.Transpose)))
		rows[3].Cells = append(rows[3].Cells, strconv.Itoa(s.Velocity))
		rows[4].Cells = append(rows[4].Cells, strconv.FormatFloat(float64(s.Probability), 'f', -1, 32)+"%")
		rows[5].Cells = append(rows[5].Cells, strconv.Itoa(mutseq.Clamp(s.Ratchet, 1, mutseq.MaxRatchet)))
	}
	return rows
}
