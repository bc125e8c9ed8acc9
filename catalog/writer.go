package catalog

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/phil-mansfield/gohalo"
	"github.com/phil-mansfield/gohalo/cosmo"
)

// column is one field of a property catalog. Integer columns are read
// through ival and the rest through fval. Particle id columns hold dense ids
// which are translated back to catalog ids on output.
type column struct {
	name     string
	integer  bool
	particle bool
	ival     func(rec *gohalo.PropertyRecord) int64
	fval     func(rec *gohalo.PropertyRecord) float64
}

func intCol(name string, f func(rec *gohalo.PropertyRecord) int64) column {
	return column{name: name, integer: true, ival: f}
}

func particleCol(name string, f func(rec *gohalo.PropertyRecord) int64) column {
	return column{name: name, integer: true, particle: true, ival: f}
}

func floatCol(name string, f func(rec *gohalo.PropertyRecord) float64) column {
	return column{name: name, fval: f}
}

func vecCols(name string, f func(rec *gohalo.PropertyRecord) [3]float64) []column {
	out := make([]column, 3)
	for d, axis := range []string{"X", "Y", "Z"} {
		out[d] = floatCol(name+axis, func(rec *gohalo.PropertyRecord) float64 {
			return f(rec)[d]
		})
	}
	return out
}

// value returns the column's entry for rec as an int64 or a float64.
func (col *column) value(rec *gohalo.PropertyRecord, ids *IDMap) interface{} {
	if !col.integer {
		return col.fval(rec)
	}
	x := col.ival(rec)
	if col.particle {
		x = ids.Original(x)
	}
	return x
}

// propertyColumns lists every column of a property catalog in order.
var propertyColumns = buildPropertyColumns()

func buildPropertyColumns() []column {
	type rec = gohalo.PropertyRecord
	cols := []column{
		intCol("ID", func(r *rec) int64 { return r.GroupID }),
		intCol("ParentID", func(r *rec) int64 { return r.ParentID }),
		intCol("NSub", func(r *rec) int64 { return int64(r.NSub) }),
		intCol("Num", func(r *rec) int64 { return int64(r.Num) }),
		floatCol("Mass", func(r *rec) float64 { return r.Mass }),
		floatCol("Size", func(r *rec) float64 { return r.Size }),
		floatCol("RHalfMass", func(r *rec) float64 { return r.RHalfMass }),
	}
	cols = append(cols, vecCols("CM", func(r *rec) [3]float64 { return r.CM })...)
	cols = append(cols, vecCols("CMVel", func(r *rec) [3]float64 { return r.CMVel })...)

	for d := cosmo.Radius(0); d < cosmo.NumRadii; d++ {
		name := strings.TrimPrefix(d.String(), "R")
		cols = append(cols,
			floatCol("M"+name, func(r *rec) float64 { return r.M[d] }),
			floatCol("R"+name, func(r *rec) float64 { return r.R[d] }),
		)
	}

	cols = append(cols,
		floatCol("Vmax", func(r *rec) float64 { return r.Vmax }),
		floatCol("Rmax", func(r *rec) float64 { return r.Rmax }),
		floatCol("MassAtVmax", func(r *rec) float64 { return r.MassAtVmax }),
	)
	cols = append(cols, vecCols("J", func(r *rec) [3]float64 { return r.J })...)
	cols = append(cols, vecCols("J200c", func(r *rec) [3]float64 { return r.J200c })...)
	cols = append(cols, vecCols("J200m", func(r *rec) [3]float64 { return r.J200m })...)
	cols = append(cols,
		floatCol("LambdaB", func(r *rec) float64 { return r.LambdaB }),
		floatCol("Sigma", func(r *rec) float64 { return r.Sigma }),
		floatCol("Krot", func(r *rec) float64 { return r.Krot }),
		floatCol("VmaxVvir2", func(r *rec) float64 { return r.VmaxVvir2 }),
		floatCol("CNFW", func(r *rec) float64 { return r.CNFW }),
		floatCol("Q", func(r *rec) float64 { return r.Q }),
		floatCol("S", func(r *rec) float64 { return r.S }),
		intCol("RVNum", func(r *rec) int64 { return int64(r.RVNum) }),
		floatCol("RVSigma", func(r *rec) float64 { return r.RVSigma }),
		floatCol("RVKrot", func(r *rec) float64 { return r.RVKrot }),
		floatCol("RVLambdaB", func(r *rec) float64 { return r.RVLambdaB }),
		floatCol("RVQ", func(r *rec) float64 { return r.RVQ }),
		floatCol("RVS", func(r *rec) float64 { return r.RVS }),
		floatCol("T", func(r *rec) float64 { return r.T }),
		floatCol("Pot", func(r *rec) float64 { return r.Pot }),
		floatCol("Efrac", func(r *rec) float64 { return r.Efrac }),
		particleCol("MostBoundID", func(r *rec) int64 { return r.MostBoundID }),
		intCol("UnboundIndex", func(r *rec) int64 { return int64(r.UnboundIndex) }),
		floatCol("RMostBound", func(r *rec) float64 { return r.RMostBound }),

		intCol("NGas", func(r *rec) int64 { return int64(r.Gas.N) }),
		floatCol("MGas", func(r *rec) float64 { return r.Gas.Mass }),
		floatCol("TempGas", func(r *rec) float64 { return r.Gas.Temp }),
		floatCol("MetalGas", func(r *rec) float64 { return r.Gas.Metal }),
		floatCol("SFRGas", func(r *rec) float64 { return r.Gas.SFR }),
		floatCol("EfracGas", func(r *rec) float64 { return r.Gas.Efrac }),
		floatCol("MGas500c", func(r *rec) float64 { return r.Gas.Mass500c }),
		intCol("NStar", func(r *rec) int64 { return int64(r.Star.N) }),
		floatCol("MStar", func(r *rec) float64 { return r.Star.Mass }),
		floatCol("AgeStar", func(r *rec) float64 { return r.Star.Age }),
		floatCol("MetalStar", func(r *rec) float64 { return r.Star.Metal }),
		floatCol("EfracStar", func(r *rec) float64 { return r.Star.Efrac }),
		floatCol("MStar30kpc", func(r *rec) float64 { return r.Star.Mass30kpc }),
		floatCol("MStar50kpc", func(r *rec) float64 { return r.Star.Mass50kpc }),
		intCol("NBH", func(r *rec) int64 { return int64(r.NBH) }),
		floatCol("MBH", func(r *rec) float64 { return r.MBH }),
		intCol("NInterloper", func(r *rec) int64 { return int64(r.NInterloper) }),
		floatCol("MInterloper", func(r *rec) float64 { return r.MInterloper }),

		floatCol("Inclusive_M200m", func(r *rec) float64 {
			return r.Inclusive.M[cosmo.R200m]
		}),
		floatCol("Inclusive_R200m", func(r *rec) float64 {
			return r.Inclusive.R[cosmo.R200m]
		}),
		floatCol("Inclusive_M200c", func(r *rec) float64 {
			return r.Inclusive.M[cosmo.R200c]
		}),
		floatCol("Inclusive_R200c", func(r *rec) float64 {
			return r.Inclusive.R[cosmo.R200c]
		}),
	)
	cols = append(cols, vecCols("MostBoundPos", func(r *rec) [3]float64 {
		return r.MostBoundPos
	})...)
	cols = append(cols, vecCols("MostBoundVel", func(r *rec) [3]float64 {
		return r.MostBoundVel
	})...)
	return cols
}

// WriteProperties writes records[1:] as a whitespace-separated text table
// with a commented header line naming each column. ids translates particle
// ids back to catalog ids and may be nil.
func WriteProperties(
	w io.Writer, records []gohalo.PropertyRecord, ids *IDMap,
) error {
	bw := bufio.NewWriter(w)

	names := make([]string, len(propertyColumns))
	for i, col := range propertyColumns {
		names[i] = col.name
	}
	fmt.Fprintf(bw, "# %s\n", strings.Join(names, " "))

	for g := 1; g < len(records); g++ {
		for i := range propertyColumns {
			if i > 0 {
				bw.WriteByte(' ')
			}
			switch x := propertyColumns[i].value(&records[g], ids).(type) {
			case int64:
				fmt.Fprintf(bw, "%d", x)
			case float64:
				fmt.Fprintf(bw, "%.8g", x)
			}
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// WriteParticleCatalog writes the binding energy ordered membership of
// every group as a binary table of int64 values:
//
//	ngroup
//	count[1..ngroup]
//	offset[1..ngroup]
//	unbound offset[1..ngroup]
//	ids
//
// Offsets index the ids block. ids translates dense ids back to catalog ids
// and may be nil.
func WriteParticleCatalog(
	w io.Writer, lists []gohalo.ParticleList, ids *IDMap,
	order binary.ByteOrder,
) error {
	ngroup := max(len(lists)-1, 0)
	counts := make([]int64, ngroup)
	offsets := make([]int64, ngroup)
	unbound := make([]int64, ngroup)

	total := int64(0)
	for g := 1; g <= ngroup; g++ {
		counts[g-1] = int64(len(lists[g].IDs))
		offsets[g-1] = total
		unbound[g-1] = total + int64(lists[g].Unbound)
		total += counts[g-1]
	}

	flat := make([]int64, 0, total)
	for g := 1; g <= ngroup; g++ {
		for _, id := range lists[g].IDs {
			flat = append(flat, ids.Original(id))
		}
	}

	bw := bufio.NewWriter(w)
	for _, block := range []interface{}{
		int64(ngroup), counts, offsets, unbound, flat,
	} {
		if err := binary.Write(bw, order, block); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadParticleCatalog reads a catalog written by WriteParticleCatalog.
// Unbound offsets are returned relative to the start of each group.
func ReadParticleCatalog(
	r io.Reader, order binary.ByteOrder,
) ([]gohalo.ParticleList, error) {
	var ngroup int64
	if err := binary.Read(r, order, &ngroup); err != nil {
		return nil, err
	}
	if ngroup < 0 {
		return nil, fmt.Errorf("Particle catalog has %d groups.", ngroup)
	}

	counts := make([]int64, ngroup)
	offsets := make([]int64, ngroup)
	unbound := make([]int64, ngroup)
	for _, block := range [][]int64{counts, offsets, unbound} {
		if err := binary.Read(r, order, block); err != nil {
			return nil, err
		}
	}

	lists := make([]gohalo.ParticleList, ngroup+1)
	for g := int64(1); g <= ngroup; g++ {
		list := gohalo.ParticleList{IDs: make([]int64, counts[g-1])}
		if err := binary.Read(r, order, list.IDs); err != nil {
			return nil, err
		}
		list.Unbound = int(unbound[g-1] - offsets[g-1])
		lists[g] = list
	}
	return lists, nil
}

// WriteSOCatalog writes the ids of the particles inside each group's
// inclusive 200m sphere, as filled in when SOParticles is set. The layout
// matches WriteParticleCatalog without the unbound offsets:
//
//	ngroup
//	count[1..ngroup]
//	offset[1..ngroup]
//	ids
//
// ids translates dense ids back to catalog ids and may be nil.
func WriteSOCatalog(
	w io.Writer, records []gohalo.PropertyRecord, ids *IDMap,
	order binary.ByteOrder,
) error {
	ngroup := max(len(records)-1, 0)
	counts := make([]int64, ngroup)
	offsets := make([]int64, ngroup)

	total := int64(0)
	for g := 1; g <= ngroup; g++ {
		counts[g-1] = int64(len(records[g].SOParticles))
		offsets[g-1] = total
		total += counts[g-1]
	}

	flat := make([]int64, 0, total)
	for g := 1; g <= ngroup; g++ {
		for _, id := range records[g].SOParticles {
			flat = append(flat, ids.Original(id))
		}
	}

	bw := bufio.NewWriter(w)
	for _, block := range []interface{}{int64(ngroup), counts, offsets, flat} {
		if err := binary.Write(bw, order, block); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadSOCatalog reads a catalog written by WriteSOCatalog. The returned
// slice is indexed by group id and slot 0 is empty.
func ReadSOCatalog(r io.Reader, order binary.ByteOrder) ([][]int64, error) {
	var ngroup int64
	if err := binary.Read(r, order, &ngroup); err != nil {
		return nil, err
	}
	if ngroup < 0 {
		return nil, fmt.Errorf("SO catalog has %d groups.", ngroup)
	}

	counts := make([]int64, ngroup)
	offsets := make([]int64, ngroup)
	for _, block := range [][]int64{counts, offsets} {
		if err := binary.Read(r, order, block); err != nil {
			return nil, err
		}
	}

	out := make([][]int64, ngroup+1)
	for g := int64(1); g <= ngroup; g++ {
		out[g] = make([]int64, counts[g-1])
		if err := binary.Read(r, order, out[g]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
