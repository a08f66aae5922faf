package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"innit/internal/action"
	"innit/internal/genetics"
	"innit/internal/model"
	"innit/internal/stats"
	innitapi "innit/pkg/innit"
)

type actionView struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type traitView struct {
	Name   string `json:"name"`
	Family string `json:"family"`
	Symbol string `json:"symbol"`
}

type expressionOut struct {
	ID             string       `json:"id,omitempty"`
	ParentID       string       `json:"parent_id,omitempty"`
	Generation     int          `json:"generation,omitempty"`
	Npc            string       `json:"npc,omitempty"`
	DnaType        string       `json:"dna_type"`
	Raw            string       `json:"raw"`
	Size           string       `json:"size"`
	Traits         []traitView  `json:"traits"`
	SensingRange   int          `json:"sensing_range"`
	Metabolism     int          `json:"metabolism"`
	EnergyStorage  int          `json:"energy_storage"`
	LifeExpectancy int          `json:"life_expectancy"`
	Receptors      []int        `json:"receptors"`
	MaxHp          int          `json:"max_hp"`
	Volume         int          `json:"volume"`
	Sensors        []actionView `json:"sensors"`
	Processors     []actionView `json:"processors"`
	Actuators      []actionView `json:"actuators"`
}

type mutationView struct {
	Raw      string `json:"raw"`
	Gene     int    `json:"gene"`
	Position int    `json:"position"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
}

func expressionView(e innitapi.Expression) expressionOut {
	p := e.Phenotype
	out := expressionOut{
		DnaType:        e.Dna.Type.String(),
		Raw:            hex.EncodeToString(e.Dna.Raw),
		Size:           humanize.Bytes(uint64(len(e.Dna.Raw))),
		Traits:         make([]traitView, 0, len(e.Dna.Decoded)),
		SensingRange:   p.Sensors.SensingRange,
		Metabolism:     p.Processors.Metabolism,
		EnergyStorage:  p.Processors.EnergyStorage,
		LifeExpectancy: p.Processors.LifeExpectancy,
		Receptors:      make([]int, 0, len(p.Processors.Receptors)),
		MaxHp:          p.Actuators.MaxHp,
		Volume:         p.Actuators.Volume,
		Sensors:        actionViews(p.Sensors.Actions),
		Processors:     actionViews(p.Processors.Actions),
		Actuators:      actionViews(p.Actuators.Actions),
	}
	for _, trait := range e.Dna.Decoded {
		out.Traits = append(out.Traits, traitView{
			Name:   trait.Name,
			Family: trait.Family.String(),
			Symbol: fmt.Sprintf("0x%02x", trait.Symbol),
		})
	}
	for _, r := range p.Processors.Receptors {
		out.Receptors = append(out.Receptors, r.TypeID)
	}
	return out
}

func actionViews(actions []action.Action) []actionView {
	out := make([]actionView, 0, len(actions))
	for _, a := range actions {
		out = append(out, actionView{Name: a.Identifier(), Level: a.Level})
	}
	return out
}

func printExpression(w io.Writer, jsonOut bool, out expressionOut) error {
	if jsonOut {
		return writeJSON(w, out)
	}
	if out.ID != "" {
		fmt.Fprintf(w, "id=%s", out.ID)
		if out.ParentID != "" {
			fmt.Fprintf(w, " parent_id=%s generation=%d", out.ParentID, out.Generation)
		}
		fmt.Fprintln(w)
	}
	if out.Npc != "" {
		fmt.Fprintf(w, "npc=%s\n", out.Npc)
	}
	fmt.Fprintf(w, "dna_type=%s raw=%s size=%s windows=%d\n", out.DnaType, out.Raw, out.Size, len(out.Traits))
	for i, trait := range out.Traits {
		fmt.Fprintf(w, "trait[%d]=%q family=%s symbol=%s\n", i, trait.Name, trait.Family, trait.Symbol)
	}
	fmt.Fprintf(w, "sensors sensing_range=%d actions=%s\n", out.SensingRange, formatActions(out.Sensors))
	fmt.Fprintf(w, "processors metabolism=%d energy_storage=%d life_expectancy=%d receptors=%v actions=%s\n",
		out.Metabolism, out.EnergyStorage, out.LifeExpectancy, out.Receptors, formatActions(out.Processors))
	_, err := fmt.Fprintf(w, "actuators max_hp=%d volume=%d actions=%s\n", out.MaxHp, out.Volume, formatActions(out.Actuators))
	return err
}

func formatActions(actions []actionView) string {
	if len(actions) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, fmt.Sprintf("%q:%d", a.Name, a.Level))
	}
	return strings.Join(parts, ",")
}

func printMutation(w io.Writer, jsonOut bool, view mutationView) error {
	if jsonOut {
		return writeJSON(w, view)
	}
	if view.From == "" {
		_, err := fmt.Fprintf(w, "raw=%s unchanged\n", view.Raw)
		return err
	}
	_, err := fmt.Fprintf(w, "raw=%s flipping gene %d at byte %d from %s to %s\n",
		view.Raw, view.Gene, view.Position, view.From, view.To)
	return err
}

func printLineage(w io.Writer, jsonOut bool, chain []model.LineageRecord) error {
	if jsonOut {
		return writeJSON(w, chain)
	}
	if len(chain) == 0 {
		_, err := fmt.Fprintln(w, "no lineage records")
		return err
	}
	for _, rec := range chain {
		fmt.Fprintf(w, "gen=%d genome_id=%s parent_id=%s op=%s mutations=%v\n",
			rec.Generation, rec.GenomeID, rec.ParentID, rec.Operation, rec.Mutations)
	}
	return nil
}

type genomeRow struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	ParentID  string `json:"parent_id,omitempty"`
	DnaType   string `json:"dna_type"`
	Size      string `json:"size"`
	Windows   int    `json:"windows"`
	Stability string `json:"stability"`
	Created   string `json:"created"`
}

func printGenomes(w io.Writer, jsonOut bool, decoded []innitapi.DecodedGenome) error {
	rows := make([]genomeRow, 0, len(decoded))
	for _, item := range decoded {
		g := item.Genome
		rows = append(rows, genomeRow{
			ID:        g.ID,
			Name:      g.Name,
			ParentID:  g.ParentID,
			DnaType:   g.DnaType.String(),
			Size:      humanize.Bytes(uint64(len(g.Raw))),
			Windows:   len(item.Expression.Dna.Decoded),
			Stability: humanize.FtoaWithDigits(g.Stability, 2),
			Created:   humanize.RelTime(g.CreatedAt, time.Now(), "ago", "from now"),
		})
	}
	if jsonOut {
		return writeJSON(w, rows)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no genomes stored")
		return err
	}
	for _, row := range rows {
		fmt.Fprintf(w, "id=%s name=%q parent_id=%s dna_type=%s size=%s windows=%d stability=%s created=%q\n",
			row.ID, row.Name, row.ParentID, row.DnaType, row.Size, row.Windows, row.Stability, row.Created)
	}
	return nil
}

type catalogRow struct {
	Ordinal   int    `json:"ordinal"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Family    string `json:"family"`
	Attribute string `json:"attribute,omitempty"`
	Action    string `json:"action,omitempty"`
}

func printCatalog(w io.Writer, jsonOut bool, catalog *genetics.Catalog) error {
	rows := make([]catalogRow, 0, catalog.Len())
	for i, trait := range catalog.Traits() {
		symbol, _ := catalog.Symbols().Symbol(i + 1)
		row := catalogRow{
			Ordinal: i + 1,
			Symbol:  fmt.Sprintf("%04b", symbol),
			Name:    trait.Name,
			Family:  trait.Family.String(),
		}
		if trait.Attribute != genetics.AttrNone {
			row.Attribute = trait.Attribute.String()
		}
		if trait.HasAction() {
			row.Action = action.New(trait.Action).Identifier()
		}
		rows = append(rows, row)
	}
	if jsonOut {
		return writeJSON(w, rows)
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%2d %s %-22s family=%s", row.Ordinal, row.Symbol, row.Name, row.Family)
		if row.Attribute != "" {
			fmt.Fprintf(w, " attribute=%s", row.Attribute)
		}
		if row.Action != "" {
			fmt.Fprintf(w, " action=%q", row.Action)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func printCensus(w io.Writer, jsonOut bool, census stats.Census) error {
	if jsonOut {
		return writeJSON(w, census)
	}
	fmt.Fprintf(w, "genomes=%s windows=%s junk=%s mean_windows=%s\n",
		humanize.Comma(int64(census.Genomes)),
		humanize.Comma(int64(census.Windows)),
		humanize.FtoaWithDigits(census.JunkRatio()*100, 1)+"%",
		humanize.FtoaWithDigits(census.MeanWindows, 2))
	for _, trait := range census.Traits {
		fmt.Fprintf(w, "trait=%q family=%s windows=%s genomes=%s\n",
			trait.Name, trait.Family, humanize.Comma(int64(trait.Windows)), humanize.Comma(int64(trait.Genomes)))
	}
	return nil
}

func printExport(w io.Writer, jsonOut bool, summary innitapi.ExportSummary) error {
	if jsonOut {
		return writeJSON(w, map[string]any{
			"export_id": summary.ExportID,
			"directory": summary.Directory,
			"genomes":   summary.Census.Genomes,
		})
	}
	_, err := fmt.Fprintf(w, "export_id=%s directory=%s genomes=%s\n",
		summary.ExportID, summary.Directory, humanize.Comma(int64(summary.Census.Genomes)))
	return err
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
