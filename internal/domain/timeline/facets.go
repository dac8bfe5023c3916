package timeline

import "slices"

// ExtractFacets collects the distinct months, statuses and assignees of rows,
// each sorted with SentinelAll prepended.
func ExtractFacets(rows []Row) Facets {
	months := make([]string, 0, len(rows))
	statuses := make([]string, 0, len(rows))
	assignees := make([]string, 0, len(rows))
	for i := range rows {
		months = append(months, rows[i].PeriodKey)
		statuses = append(statuses, rows[i].Status)
		assignees = append(assignees, rows[i].Assignee)
	}
	return Facets{
		Months:    facet(months),
		Statuses:  facet(statuses),
		Assignees: facet(assignees),
	}
}

func facet(values []string) []string {
	values = slices.DeleteFunc(values, func(v string) bool {
		return v == "" || v == SentinelAll
	})
	slices.Sort(values)
	return append([]string{SentinelAll}, slices.Compact(values)...)
}
