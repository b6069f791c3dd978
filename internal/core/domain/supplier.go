package domain

// PaxClass is the passenger class a supplier price is quoted for.
type PaxClass string

const (
	PaxAdult    PaxClass = "adult"
	PaxChildren PaxClass = "children"
)

// Run is one scheduled departure returned by the timetable call.
// DepartureTime and ArrivalTime are "HH:mm".
type Run struct {
	ShipID        string `json:"shipId"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
}

// Accommodation is a fare class available on a run.
type Accommodation struct {
	Type      string `json:"type"`
	Available string `json:"available,omitempty"`
}

// Price is the computed price of an accommodation for the whole party.
type Price struct {
	Total     float64        `json:"total"`
	Breakdown PriceBreakdown `json:"breakdown"`
}

// PriceBreakdown holds unit prices per passenger class.
type PriceBreakdown struct {
	Adult    float64 `json:"adult"`
	Children float64 `json:"children"`
}

// ClassQuote is the outcome of pricing one passenger class.
// Requested is false when the class had no passengers and no call was made.
type ClassQuote struct {
	Requested bool    `json:"requested"`
	Unit      float64 `json:"unit"`
	Err       error   `json:"-"`
}

// PricedAccommodation is an accommodation tagged with either a price or a
// price error. Adult and Children are kept so a failure of one class never
// hides the outcome of the other.
type PricedAccommodation struct {
	Accommodation
	Adult    ClassQuote `json:"adult"`
	Children ClassQuote `json:"children"`
	Price    *Price     `json:"price,omitempty"`
	Err      error      `json:"-"`
}

// RunResult is a run tagged with its accommodations or an accommodation error.
// On error Accommodations is empty and the run still counts as processed.
type RunResult struct {
	Run
	Accommodations []PricedAccommodation `json:"accommodations"`
	Err            error                 `json:"-"`
}

// StationResult is the enrichment outcome of one station candidate.
// Err is set when the station was skipped (missing codes) or its timetable
// call failed; Runs is then empty.
type StationResult struct {
	Station StationCandidate `json:"station"`
	Runs    []RunResult      `json:"runs"`
	Err     error            `json:"-"`
}

// LegResult groups the station results of one requested leg.
type LegResult struct {
	Leg      Leg             `json:"leg"`
	Stations []StationResult `json:"stations"`
}

// StationErrors counts stations tagged with an error across all legs.
func StationErrors(legs []LegResult) int {
	n := 0
	for _, l := range legs {
		for _, s := range l.Stations {
			if s.Err != nil {
				n++
			}
		}
	}
	return n
}
