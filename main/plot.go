package main

import (
	"cmp"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"slices"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/phil-mansfield/gohalo"
	"github.com/phil-mansfield/gohalo/geom"
	"github.com/phil-mansfield/gohalo/io"
	"github.com/phil-mansfield/gohalo/tensor"
)

// plotMain computes the properties of every group and plots the enclosed
// mass and circular velocity profiles of the group with catalog id group.
func plotMain(con *io.PropertiesConfig, group int64) {
	fg := setupIO(con)
	defer fg.Close()

	log.Println("Running PlotProfile main.")

	ps, _, pfof, ngroup := readInput(con)
	opt := gohalo.OptionsFromConfig(con)
	if group < 1 || group > int64(ngroup) {
		log.Fatalf("Group %d is outside the range [1, %d].", group, ngroup)
	}

	records, gr, err := gohalo.ComputeGroupProperties(ps, pfof, ngroup, opt)
	if err != nil {
		log.Fatal(err.Error())
	}
	rec := &records[group]
	members := gr.Slice(ps, int(group))
	if len(members) == 0 {
		log.Fatalf("Group %d has no particles.", group)
	}

	logTensors(rec, members, opt.Period)

	rs, ms, vcs := profile(members, rec.CM, opt.Period, opt.G)

	plt.Figure(plt.Num(0))
	plt.Plot(rs, ms, "k", plt.LW(3))
	plotRadius(rec.R200c(), ms, "r")
	plotRadius(rec.RVir(), ms, "b")
	plt.Title(fmt.Sprintf(
		`Group %d: $M_{\rm 200c}$ = %.3g, $c_{\rm NFW}$ = %.3g`,
		group, rec.M200c(), rec.CNFW,
	))
	plt.XLabel(`$r$`, plt.FontSize(16))
	plt.YLabel(`$M(<r)$`, plt.FontSize(16))
	plt.XScale("log")
	plt.YScale("log")
	plt.Grid(plt.Axis("x"), plt.Which("both"))
	plt.SaveFig(con.PlotFile)

	plt.Figure(plt.Num(1))
	plt.Plot(rs, vcs, "k", plt.LW(3))
	plotRadius(rec.Rmax, vcs, "r")
	plt.Title(fmt.Sprintf(`Group %d: $V_{\rm max}$ = %.3g`, group, rec.Vmax))
	plt.XLabel(`$r$`, plt.FontSize(16))
	plt.YLabel(`$V_c(<r)$`, plt.FontSize(16))
	plt.XScale("log")
	plt.Grid(plt.Axis("x"), plt.Which("both"))
	dir, base := filepath.Split(con.PlotFile)
	plt.SaveFig(filepath.Join(dir, "vc_"+base))

	plt.Execute()
}

// profile returns the sorted radii of ps about cm along with the enclosed
// mass and circular velocity at each radius. The center particle, if any, is
// skipped so that every radius is positive.
func profile(
	ps []gohalo.Particle, cm geom.Vec, L, G float64,
) (rs, ms, vcs []float64) {
	type point struct{ r, m float64 }
	pts := make([]point, len(ps))
	for i := range ps {
		pts[i] = point{geom.Disp(ps[i].Pos, cm, L).Norm(), ps[i].Mass}
	}
	slices.SortFunc(pts, func(a, b point) int { return cmp.Compare(a.r, b.r) })

	enc := 0.0
	for _, p := range pts {
		enc += p.m
		if p.r <= 0 {
			continue
		}
		rs = append(rs, p.r)
		ms = append(ms, enc)
		vcs = append(vcs, math.Sqrt(G*enc/p.r))
	}
	return rs, ms, vcs
}

// plotRadius draws a vertical line at r spanning the range of ys.
func plotRadius(r float64, ys []float64, color string) {
	if r <= 0 || len(ys) == 0 {
		return
	}
	lo, hi := slices.Min(ys), slices.Max(ys)
	plt.Plot([]float64{r, r}, []float64{lo, hi}, color, plt.LW(2))
}

// logTensors logs the second moments of a group which are not part of the
// property catalog.
func logTensors(
	rec *gohalo.PropertyRecord, ps []gohalo.Particle, L float64,
) {
	sigma := gohalo.PosSigmaTensor(ps, rec.CM, L)
	inertia := gohalo.InertiaTensor(ps, rec.CM, L)
	origin := gohalo.PhaseCM(ps, rec.CM, L)
	phase := gohalo.PhaseSigmaTensor(ps, rec.CM, L)

	log.Printf("Group %d position dispersion: %v", rec.GroupID, sigma)
	log.Printf("Group %d inertia tensor: %v", rec.GroupID, inertia)
	log.Printf("Group %d phase space centroid offset: %v", rec.GroupID, origin)
	log.Printf("Group %d phase space volume: %.4g", rec.GroupID, phase.Det())
	if vals, _, ok := tensor.EigenSym6(&phase); ok {
		log.Printf("Group %d phase space eigenvalues: %.4g", rec.GroupID, vals)
	}
}
