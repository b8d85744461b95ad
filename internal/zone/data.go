package zone

// Reference data for a San Francisco Bay Area origin.

// #region cities

type city struct {
	Name  string
	State string
	Zone  int
}

var cities = []city{
	// 2: California
	{"San Francisco", "CA", 2}, {"Oakland", "CA", 2}, {"San Jose", "CA", 2},
	{"Fremont", "CA", 2}, {"Sacramento", "CA", 2}, {"Fresno", "CA", 2},
	{"Los Angeles", "CA", 2}, {"San Diego", "CA", 2}, {"Santa Barbara", "CA", 2},
	{"Bakersfield", "CA", 2}, {"Stockton", "CA", 2}, {"Modesto", "CA", 2},
	{"Irvine", "CA", 2}, {"Long Beach", "CA", 2}, {"Anaheim", "CA", 2},

	// 3: Pacific Northwest, Mountain, Southwest
	{"Phoenix", "AZ", 3}, {"Tucson", "AZ", 3}, {"Mesa", "AZ", 3},
	{"Las Vegas", "NV", 3}, {"Reno", "NV", 3}, {"Henderson", "NV", 3},
	{"Portland", "OR", 3}, {"Eugene", "OR", 3}, {"Salem", "OR", 3},
	{"Seattle", "WA", 3}, {"Spokane", "WA", 3}, {"Tacoma", "WA", 3},
	{"Salt Lake City", "UT", 3}, {"Provo", "UT", 3}, {"Ogden", "UT", 3},
	{"Denver", "CO", 3}, {"Colorado Springs", "CO", 3}, {"Aurora", "CO", 3},
	{"Boulder", "CO", 3}, {"Fort Collins", "CO", 3},
	{"Boise", "ID", 3}, {"Albuquerque", "NM", 3}, {"Santa Fe", "NM", 3},

	// 4: South Central, Plains
	{"Dallas", "TX", 4}, {"Houston", "TX", 4}, {"Austin", "TX", 4},
	{"San Antonio", "TX", 4}, {"Fort Worth", "TX", 4}, {"El Paso", "TX", 4},
	{"Oklahoma City", "OK", 4}, {"Tulsa", "OK", 4}, {"Norman", "OK", 4},
	{"Kansas City", "MO", 4}, {"St Louis", "MO", 4}, {"Springfield", "MO", 4},
	{"Omaha", "NE", 4}, {"Lincoln", "NE", 4}, {"Wichita", "KS", 4},
	{"Little Rock", "AR", 4}, {"Des Moines", "IA", 4}, {"Sioux Falls", "SD", 4},

	// 5: Midwest
	{"Chicago", "IL", 5}, {"Springfield", "IL", 5}, {"Peoria", "IL", 5},
	{"Detroit", "MI", 5}, {"Grand Rapids", "MI", 5}, {"Ann Arbor", "MI", 5},
	{"Milwaukee", "WI", 5}, {"Madison", "WI", 5}, {"Green Bay", "WI", 5},
	{"Indianapolis", "IN", 5}, {"Fort Wayne", "IN", 5}, {"Evansville", "IN", 5},
	{"Columbus", "OH", 5}, {"Cleveland", "OH", 5}, {"Cincinnati", "OH", 5},
	{"Minneapolis", "MN", 5}, {"St Paul", "MN", 5}, {"Duluth", "MN", 5},

	// 6: Southeast
	{"Atlanta", "GA", 6}, {"Savannah", "GA", 6}, {"Augusta", "GA", 6},
	{"Nashville", "TN", 6}, {"Memphis", "TN", 6}, {"Knoxville", "TN", 6},
	{"Charlotte", "NC", 6}, {"Raleigh", "NC", 6}, {"Durham", "NC", 6},
	{"Miami", "FL", 6}, {"Tampa", "FL", 6}, {"Orlando", "FL", 6},
	{"Jacksonville", "FL", 6}, {"Tallahassee", "FL", 6}, {"Pensacola", "FL", 6},
	{"Fort Lauderdale", "FL", 6}, {"West Palm Beach", "FL", 6},
	{"New Orleans", "LA", 6}, {"Baton Rouge", "LA", 6}, {"Shreveport", "LA", 6},
	{"Birmingham", "AL", 6}, {"Montgomery", "AL", 6}, {"Mobile", "AL", 6},
	{"Jackson", "MS", 6}, {"Charleston", "SC", 6}, {"Columbia", "SC", 6},

	// 7: Mid-Atlantic, New England
	{"Boston", "MA", 7}, {"Worcester", "MA", 7}, {"Cambridge", "MA", 7},
	{"Philadelphia", "PA", 7}, {"Pittsburgh", "PA", 7}, {"Harrisburg", "PA", 7},
	{"Baltimore", "MD", 7}, {"Annapolis", "MD", 7}, {"Frederick", "MD", 7},
	{"Washington", "DC", 7}, {"Richmond", "VA", 7}, {"Norfolk", "VA", 7},
	{"Buffalo", "NY", 7}, {"Rochester", "NY", 7}, {"Syracuse", "NY", 7},
	{"Albany", "NY", 7}, {"Hartford", "CT", 7}, {"New Haven", "CT", 7},
	{"Providence", "RI", 7}, {"Portland", "ME", 7}, {"Manchester", "NH", 7},

	// 8: New York City metro
	{"New York", "NY", 8}, {"Manhattan", "NY", 8}, {"Brooklyn", "NY", 8},
	{"Queens", "NY", 8}, {"Bronx", "NY", 8}, {"Staten Island", "NY", 8},
	{"Newark", "NJ", 8}, {"Jersey City", "NJ", 8}, {"Paterson", "NJ", 8},
}

// #endregion

// #region aliases

type place struct {
	City  string
	State string
}

var airports = map[string]place{
	"SFO": {"San Francisco", "CA"}, "LAX": {"Los Angeles", "CA"}, "SAN": {"San Diego", "CA"},
	"OAK": {"Oakland", "CA"}, "SJC": {"San Jose", "CA"}, "JFK": {"New York", "NY"},
	"LGA": {"New York", "NY"}, "EWR": {"Newark", "NJ"}, "NYC": {"New York", "NY"},
	"ORD": {"Chicago", "IL"}, "MDW": {"Chicago", "IL"}, "DFW": {"Dallas", "TX"},
	"IAH": {"Houston", "TX"}, "HOU": {"Houston", "TX"}, "DEN": {"Denver", "CO"},
	"PHX": {"Phoenix", "AZ"}, "SEA": {"Seattle", "WA"}, "ATL": {"Atlanta", "GA"},
	"BOS": {"Boston", "MA"}, "MIA": {"Miami", "FL"}, "FLL": {"Fort Lauderdale", "FL"},
	"TPA": {"Tampa", "FL"}, "MCO": {"Orlando", "FL"}, "MSP": {"Minneapolis", "MN"},
	"DTW": {"Detroit", "MI"}, "PHL": {"Philadelphia", "PA"}, "CLT": {"Charlotte", "NC"},
	"DCA": {"Washington", "DC"}, "IAD": {"Washington", "DC"}, "BWI": {"Baltimore", "MD"},
	"SLC": {"Salt Lake City", "UT"}, "PDX": {"Portland", "OR"}, "LAS": {"Las Vegas", "NV"},
	"AUS": {"Austin", "TX"}, "SAT": {"San Antonio", "TX"}, "MSY": {"New Orleans", "LA"},
	"BNA": {"Nashville", "TN"}, "RDU": {"Raleigh", "NC"}, "STL": {"St Louis", "MO"},
	"MKE": {"Milwaukee", "WI"}, "CLE": {"Cleveland", "OH"}, "CMH": {"Columbus", "OH"},
	"IND": {"Indianapolis", "IN"}, "PIT": {"Pittsburgh", "PA"}, "CVG": {"Cincinnati", "OH"},
	"OKC": {"Oklahoma City", "OK"}, "ABQ": {"Albuquerque", "NM"},
}

var nicknames = map[string]place{
	"big apple": {"New York", "NY"}, "the big apple": {"New York", "NY"}, "nyc": {"New York", "NY"},
	"new york city": {"New York", "NY"}, "la": {"Los Angeles", "CA"},
	"windy city": {"Chicago", "IL"}, "the windy city": {"Chicago", "IL"}, "chi-town": {"Chicago", "IL"},
	"bay area": {"San Francisco", "CA"}, "sf": {"San Francisco", "CA"}, "frisco": {"San Francisco", "CA"},
	"silicon valley": {"San Jose", "CA"}, "motor city": {"Detroit", "MI"}, "motown": {"Detroit", "MI"},
	"mile high city": {"Denver", "CO"}, "sin city": {"Las Vegas", "NV"}, "vegas": {"Las Vegas", "NV"},
	"philly": {"Philadelphia", "PA"}, "hotlanta": {"Atlanta", "GA"}, "atl": {"Atlanta", "GA"},
	"bean town": {"Boston", "MA"}, "beantown": {"Boston", "MA"}, "big d": {"Dallas", "TX"},
	"space city": {"Houston", "TX"}, "h-town": {"Houston", "TX"}, "emerald city": {"Seattle", "WA"},
	"queen city": {"Charlotte", "NC"}, "twin cities": {"Minneapolis", "MN"},
	"valley of the sun": {"Phoenix", "AZ"}, "magic city": {"Miami", "FL"},
	"music city": {"Nashville", "TN"}, "big easy": {"New Orleans", "LA"},
	"the big easy": {"New Orleans", "LA"}, "nola": {"New Orleans", "LA"},
	"rose city": {"Portland", "OR"}, "city of angels": {"Los Angeles", "CA"},
	"city by the bay": {"San Francisco", "CA"}, "charm city": {"Baltimore", "MD"},
	"steel city": {"Pittsburgh", "PA"}, "alamo city": {"San Antonio", "TX"},
	"circle city": {"Indianapolis", "IN"}, "gateway city": {"St Louis", "MO"},
	"brew city": {"Milwaukee", "WI"}, "cream city": {"Milwaukee", "WI"},
	"st. louis": {"St Louis", "MO"}, "saint louis": {"St Louis", "MO"},
	"st. paul": {"St Paul", "MN"}, "saint paul": {"St Paul", "MN"},
	"washington dc": {"Washington", "DC"}, "washington d.c.": {"Washington", "DC"}, "dc": {"Washington", "DC"},
}

// #endregion

// #region state-zones

// stateZones estimates a zone when only the state is known.
var stateZones = map[string]int{
	"CA": 2, "OR": 3, "WA": 3, "NV": 3, "AZ": 3, "UT": 3, "CO": 3,
	"ID": 3, "NM": 3, "MT": 4, "WY": 4,
	"TX": 4, "OK": 4, "KS": 4, "NE": 4, "SD": 4, "ND": 4,
	"MO": 4, "AR": 4, "LA": 5, "IA": 4,
	"IL": 5, "MI": 5, "IN": 5, "WI": 5, "MN": 5, "OH": 5,
	"GA": 6, "FL": 6, "SC": 6, "NC": 6, "TN": 6, "AL": 6, "MS": 6,
	"KY": 6, "WV": 6, "VA": 6,
	"PA": 7, "MA": 7, "CT": 7, "RI": 7, "MD": 7, "DE": 7,
	"DC": 7, "ME": 7, "NH": 7, "VT": 7,
	"NY": 8, "NJ": 8,
}

// #endregion
