package lake

// Column names a lake table column and the short key it is filled from.
// For parameter columns the key matches a simulation name token ("d" for
// "d1.5"); for variable columns it is a stat selector such as "lMad".
type Column struct {
	Name   string
	Key    string
	Source string
}

// Descriptor describes a lake: its column groups and expected run count.
type Descriptor struct {
	ProjectName      string
	GridProps        map[string]float64
	SimulationNumber int
	Groups           map[string][]Column
}

// Group returns the columns of the named group in declaration order.
func (d Descriptor) Group(key string) ([]Column, bool) {
	cols, ok := d.Groups[key]
	return cols, ok
}

// WithSimulationNumber returns a copy of d with the run count replaced.
func (d Descriptor) WithSimulationNumber(n int) Descriptor {
	d.SimulationNumber = n
	return d
}

// mergeColumns concatenates the groups in order, tagging each column with
// its source group. With override set a later group replaces an earlier
// column of the same name in place; otherwise a repeated name is an error.
func mergeColumns(override bool, groups ...namedGroup) ([]Column, error) {
	var merged []Column
	index := make(map[string]int)

	for _, g := range groups {
		for _, c := range g.columns {
			c.Source = g.name
			if pos, seen := index[c.Name]; seen {
				if !override {
					return nil, NewConfigError("column "+c.Name+" defined by "+merged[pos].Source+" and "+g.name, ErrDuplicateColumn).
						WithContext("column", c.Name)
				}
				merged[pos] = c
				continue
			}
			index[c.Name] = len(merged)
			merged = append(merged, c)
		}
	}
	return merged, nil
}

type namedGroup struct {
	name    string
	columns []Column
}
