package gohalo

import (
	"fmt"
	"time"

	"github.com/phil-mansfield/gohalo/logging"
)

// newRecords allocates one record per group with identity fields set.
func newRecords(gr *Groups) []PropertyRecord {
	records := make([]PropertyRecord, gr.NGroup()+1)
	for g := 1; g < len(records); g++ {
		records[g].GroupID = int64(g)
		records[g].Num = gr.NumInGroup[g]
	}
	return records
}

// properties runs every per-group engine on one group.
func (t *groupTask) properties() {
	if len(t.ps) == 0 {
		return
	}
	t.centroid()
	t.exclusiveMasses()
	t.kinematics()
	for _, acc := range accumulatorsFor(t.opt.Species) {
		acc.accumulate(t)
	}
	t.bindingEnergy()
}

// ComputeGroupProperties groups ps by pfof and computes a PropertyRecord
// for each of the ngroup groups. pfof[p.ID] is the group of particle p. The
// returned slice is indexed by group id, and slot 0 is unused.
//
// On return ps is ordered by group as described by the returned Groups.
func ComputeGroupProperties(
	ps []Particle, pfof []int64, ngroup int, opt *Options,
) ([]PropertyRecord, *Groups, error) {
	defer logging.Stage("group properties", time.Now())

	start := time.Now()
	gr, err := IndexGroups(ps, pfof, ngroup)
	if err != nil {
		return nil, nil, err
	}
	opt.Metrics.Stage("index", start)
	logging.Debugf("Indexed %d groups, %d unassigned particles.",
		gr.NGroup(), gr.NumUnassigned)

	records := newRecords(gr)

	start = time.Now()
	err = forEachGroup(ps, gr, records, opt, func(t *groupTask) error {
		t.properties()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	opt.Metrics.Stage("properties", start)

	if opt.InclusiveHalos {
		err = ComputeInclusiveMasses(ps, gr, records, opt)
		if err != nil {
			return nil, nil, err
		}
	}

	return records, gr, nil
}

// checkRecords returns an error if records cannot hold every group of gr.
func checkRecords(records []PropertyRecord, gr *Groups) error {
	if len(records) != gr.NGroup()+1 {
		return fmt.Errorf(
			"There are %d records, but %d groups need %d.",
			len(records), gr.NGroup(), gr.NGroup()+1,
		)
	}
	return nil
}
