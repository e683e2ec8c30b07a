package core

// DashboardSummary is a compact view of the open comandas.
type DashboardSummary struct {
	Open      int
	Preparing int
	Ready     int
	OpenTotal Money
}

// Summarize counts comandas by status; closed comandas are ignored.
func Summarize(comandas []Comanda) DashboardSummary {
	var s DashboardSummary
	for _, c := range comandas {
		switch c.Status {
		case StatusPreparing:
			s.Preparing++
		case StatusReady:
			s.Ready++
		default:
			continue
		}
		s.Open++
		s.OpenTotal = s.OpenTotal.Add(c.Total())
	}
	return s
}
