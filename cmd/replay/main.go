package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	ramjet "github.com/Finkch/Ion-Ramjet-Beta"
	"github.com/gonum/floats"
)

var (
	path   string
	run    string
	series string
)

func init() {
	flag.StringVar(&path, "in", "ramjet.jsonl", "recording to read")
	flag.StringVar(&run, "run", "", "run to read from a SQLite recording (the file is read as JSON lines if empty)")
	flag.StringVar(&series, "series", "spacetime.pos_x,spacetime.vel_x,spacetime.acc_x,tank.fuel,battery.fuel", "comma separated component.quantity to summarize")
}

func main() {
	flag.Parse()
	var (
		meta  ramjet.Metadata
		snaps []ramjet.Snapshot
		err   error
	)
	if run != "" {
		meta, snaps, err = ramjet.ReadSQLStore(path, run)
	} else {
		meta, snaps, err = ramjet.ReadStore(path)
	}
	if err != nil {
		log.Fatal(err)
	}
	if len(snaps) == 0 {
		log.Fatalf("%s: no records", path)
	}
	last := snaps[len(snaps)-1]
	fmt.Printf("%s\nstep: %g s\tepoch: %s\trecords: %d\tsimulated: %.3f days\taboard: %.3f days\n\n", meta.Craft, meta.Step, meta.Epoch, len(snaps), last.Time/ramjet.Day, last.ProperTime/ramjet.Day)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "series\tmin\tmax\tfinal")
	for _, name := range strings.Split(series, ",") {
		component, key, ok := strings.Cut(strings.TrimSpace(name), ".")
		if !ok {
			log.Fatalf("could not understand series `%s`, expected component.quantity", name)
		}
		_, values := ramjet.Series(snaps, component, key)
		if len(values) == 0 {
			fmt.Fprintf(w, "%s\t-\t-\t-\n", name)
			continue
		}
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\n", name, floats.Min(values), floats.Max(values), values[len(values)-1])
	}
	w.Flush()
}
