package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/phil-mansfield/gohalo"
	"github.com/phil-mansfield/gohalo/catalog"
	"github.com/phil-mansfield/gohalo/io"
	"github.com/phil-mansfield/gohalo/logging"
	"github.com/phil-mansfield/gohalo/metrics"
)

var catalogEndianness = binary.LittleEndian

type FileGroup struct {
	log, prof *os.File
}

func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}

func main() {
	var (
		properties, plotProfile string
		exampleConfig           string
		group                   int64
	)
	vars := map[string]*string{
		"Properties":    &properties,
		"PlotProfile":   &plotProfile,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&properties, "Properties", "",
		"Configuration file for [Properties] mode.",
	)
	flag.StringVar(
		&plotProfile, "PlotProfile", "",
		"Configuration file for [Properties] mode. Instead of writing a "+
			"catalog, plots the mass profile of the group given by -Group.",
	)
	flag.Int64Var(
		&group, "Group", 1, "Group id plotted by -PlotProfile.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the "+
			"specified type to stdout. The only accepted argument is "+
			"'Properties'.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Properties":
		con, err := io.ReadPropertiesConfig(properties)
		if err != nil {
			log.Fatal(err.Error())
		}
		propertiesMain(con)
	case "PlotProfile":
		con, err := io.ReadPropertiesConfig(plotProfile)
		if err != nil {
			log.Fatal(err.Error())
		}
		plotMain(con, group)
	case "ExampleConfig":
		switch exampleConfig {
		case "Properties":
			fmt.Println(io.ExamplePropertiesFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. The only recognized " +
					"argument is 'Properties'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but gohalo "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

// setupIO redirects logging and starts profiling as requested by con.
func setupIO(con *io.PropertiesConfig) *FileGroup {
	fg := &FileGroup{}
	var err error

	if con.ValidLogFile() {
		fg.log, err = os.Create(con.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.SetOutput(fg.log)
	}

	if con.ValidProfileFile() {
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		err = pprof.StartCPUProfile(fg.prof)
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	// Validated by con.Check().
	logging.Mode, _ = logging.FlagFromString(con.LogMode)

	return fg
}

// readInput reads the particles and group ids named by con. Particle ids are
// relabeled to dense ids and the returned IDMap translates them back.
// Gadget-2 headers set con.Redshift.
func readInput(con *io.PropertiesConfig) (
	ps []gohalo.Particle, ids *catalog.IDMap, pfof []int64, ngroup int,
) {
	var err error
	species := con.Gas || con.Star || con.BH || con.Interloper

	switch strings.ToLower(con.InputFormat) {
	case "text":
		ps, err = catalog.ReadTextParticles(con.Input, species)
	case "gadget-2":
		var hd *catalog.Header
		hd, ps, err = catalog.ReadGadget(con.Input, catalogEndianness)
		if err == nil {
			log.Printf("Read Gadget-2 snapshot at z = %.3g with %d particles.",
				hd.Cosmo.Z, len(ps))
			con.Redshift = hd.Cosmo.Z
		}
	default:
		panic("Impossible")
	}
	if err != nil {
		log.Fatal(err.Error())
	}

	ids = catalog.NewIDMap()
	if err = ids.Add(ps); err != nil {
		log.Fatal(err.Error())
	}

	pfof, ngroup, err = catalog.ReadGroupIDs(con.GroupFile, ids)
	if err != nil {
		log.Fatal(err.Error())
	}
	log.Printf("Read %d particles in %d groups.", len(ps), ngroup)

	return ps, ids, pfof, ngroup
}

func propertiesMain(con *io.PropertiesConfig) {
	fg := setupIO(con)
	defer fg.Close()

	log.Println("Running Properties main.")

	ps, ids, pfof, ngroup := readInput(con)

	opt := gohalo.OptionsFromConfig(con)
	if con.ValidMetricsFile() {
		opt.Metrics = metrics.New()
	}

	run, err := runProperties(con, opt, ps, pfof, ngroup)
	if err != nil {
		log.Fatal(err.Error())
	}

	writeRecords(con, run.records, ids)

	if con.ValidParticleCatalog() {
		writeBinary(con.ParticleCatalog, func(w *os.File) error {
			return catalog.WriteParticleCatalog(
				w, run.lists, ids, catalogEndianness,
			)
		})
		log.Printf("Wrote particle catalog to %s.", con.ParticleCatalog)
	}

	if con.SOParticles {
		writeBinary(con.SOCatalog, func(w *os.File) error {
			return catalog.WriteSOCatalog(
				w, run.records, ids, catalogEndianness,
			)
		})
		log.Printf("Wrote SO particle catalog to %s.", con.SOCatalog)
	}

	if con.ValidMetricsFile() {
		if err := opt.Metrics.WriteTextfile(con.MetricsFile); err != nil {
			log.Fatal(err.Error())
		}
	}
}

// propertiesRun holds everything computed by a Properties run.
type propertiesRun struct {
	records []gohalo.PropertyRecord
	lists   []gohalo.ParticleList
}

// runProperties computes the property records of every group, applies the
// hierarchy file if there is one, and sorts each group by binding energy,
// which fills in the most bound particle of each record. ps is returned to
// id order.
func runProperties(
	con *io.PropertiesConfig, opt *gohalo.Options,
	ps []gohalo.Particle, pfof []int64, ngroup int,
) (*propertiesRun, error) {
	records, gr, err := gohalo.ComputeGroupProperties(ps, pfof, ngroup, opt)
	if err != nil {
		return nil, err
	}
	logUnassigned(ps, gr)

	if con.ValidHierarchyFile() {
		parents, err := catalog.ReadHierarchy(con.HierarchyFile, ngroup)
		if err != nil {
			return nil, err
		}
		if err = gohalo.ApplyHierarchy(records, parents); err != nil {
			return nil, err
		}
	}

	lists, err := gohalo.SortByBindingEnergy(
		ps, pfof, ngroup, gr.NumInGroup, records, opt,
	)
	if err != nil {
		return nil, err
	}
	return &propertiesRun{records, lists}, nil
}

// logUnassigned reports how much of the mass in ps belongs to no group.
func logUnassigned(ps []gohalo.Particle, gr *gohalo.Groups) {
	total, free := 0.0, 0.0
	for i := range ps {
		total += ps[i].Mass
	}
	for _, p := range gr.Unassigned(ps) {
		free += p.Mass
	}
	if total > 0 {
		log.Printf("%d particles holding %.3g of the mass are in no group.",
			gr.NumUnassigned, free/total)
	}
}

// sizeOrder returns records with its rows reordered from the largest group
// to the smallest. Slot 0 stays empty and each row keeps its GroupID.
func sizeOrder(records []gohalo.PropertyRecord) []gohalo.PropertyRecord {
	out := make([]gohalo.PropertyRecord, len(records))
	for k, g := range gohalo.ReorderBySize(records) {
		out[k+1] = records[g]
	}
	return out
}

// writeBinary creates path and fills it with write.
func writeBinary(path string, write func(w *os.File) error) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err.Error())
	}
	if err = write(f); err != nil {
		log.Fatal(err.Error())
	}
	if err = f.Close(); err != nil {
		log.Fatal(err.Error())
	}
}

func writeRecords(
	con *io.PropertiesConfig, records []gohalo.PropertyRecord,
	ids *catalog.IDMap,
) {
	log.Printf("Writing %d records to %s", len(records)-1, con.Output)
	if con.SortBySize {
		records = sizeOrder(records)
	}

	switch strings.ToLower(con.OutputFormat) {
	case "text":
		writeBinary(con.Output, func(w *os.File) error {
			return catalog.WriteProperties(w, records, ids)
		})
	case "sqlite":
		err := catalog.WritePropertiesSQLite(con.Output, records, ids)
		if err != nil {
			log.Fatal(err.Error())
		}
	default:
		panic("Impossible")
	}
}
