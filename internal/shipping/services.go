package shipping

// #region service

// Service describes one carrier service level.
type Service struct {
	Name           string
	Column         string // rate-table column
	Display        string
	Tier           Urgency
	DeliveryDays   int
	DeliveryWindow string
	Rank           int // lower is faster
}

// #endregion

// #region catalog

const (
	FirstOvernight    = "FirstOvernight"
	PriorityOvernight = "PriorityOvernight"
	StandardOvernight = "StandardOvernight"
	TwoDayAM          = "TwoDayAM"
	TwoDay            = "TwoDay"
	ExpressSaver      = "ExpressSaver"
)

var catalog = []Service{
	{FirstOvernight, "FedEx_First_Overnight", "FedEx First Overnight", UrgencyOvernight, 1, "Next day by 8 or 8:30 a.m.", 0},
	{PriorityOvernight, "FedEx_Priority_Overnight", "FedEx Priority Overnight", UrgencyOvernight, 1, "Next day by 10:30 a.m. or 11 a.m.", 1},
	{StandardOvernight, "FedEx_Standard_Overnight", "FedEx Standard Overnight", UrgencyOvernight, 1, "Next day by 5 p.m.", 2},
	{TwoDayAM, "FedEx_2Day_AM", "FedEx 2Day A.M.", UrgencyTwoDay, 2, "2nd day by 10:30 a.m. or 11 a.m.", 3},
	{TwoDay, "FedEx_2Day", "FedEx 2Day", UrgencyTwoDay, 2, "2nd day by 5 p.m.", 4},
	{ExpressSaver, "FedEx_Express_Saver", "FedEx Express Saver", UrgencyEconomy, 3, "3rd day by 5 p.m.", 5},
}

var byName = func() map[string]Service {
	m := make(map[string]Service, len(catalog)*2)
	for _, s := range catalog {
		m[s.Name] = s
		m[s.Column] = s
	}
	return m
}()

// Catalog returns all known services, fastest first.
func Catalog() []Service {
	out := make([]Service, len(catalog))
	copy(out, catalog)
	return out
}

// LookupService finds a service by name or rate-table column.
func LookupService(name string) (Service, bool) {
	s, ok := byName[name]
	return s, ok
}

// ServiceInfo returns catalog data for name. Unknown services get a
// rank after every known one and no tier.
func ServiceInfo(name string) Service {
	if s, ok := byName[name]; ok {
		return s
	}
	return Service{Name: name, Column: name, Display: name, Rank: len(catalog)}
}

// InTier reports whether the named service belongs to tier.
func InTier(name string, tier Urgency) bool {
	s, ok := byName[name]
	return ok && s.Tier == tier
}

// #endregion
