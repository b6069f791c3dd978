package domain

import "time"

// TrainType classifies a search by the shape of its legs.
type TrainType string

const (
	TrainOneWay           TrainType = "oneway"
	TrainRoundTrip        TrainType = "roundtrip"
	TrainMultiDestination TrainType = "multidestination"
)

// ClassifyTrip derives the train type from leg count and symmetry.
func ClassifyTrip(legs []Leg) TrainType {
	switch {
	case len(legs) == 1:
		return TrainOneWay
	case len(legs) == 2 && legs[0].From == legs[1].To && legs[0].To == legs[1].From:
		return TrainRoundTrip
	default:
		return TrainMultiDestination
	}
}

// Offer is one priced, bookable combination of a leg, a run and an
// accommodation. It is immutable once persisted.
type Offer struct {
	ID         string        `json:"id,omitempty"`
	SearchID   string        `json:"searchId,omitempty"`
	Parameters SearchRequest `json:"parameters"`
	Train      Train         `json:"train"`
	CreatedAt  *time.Time    `json:"createdAt,omitempty"`
}

// Train is the persisted train section of an offer.
type Train struct {
	Type     TrainType      `json:"type"`
	Journeys []OfferJourney `json:"journeys"`
	Options  []OfferOption  `json:"options"`
}

// OfferJourney is the timing of one leg.
type OfferJourney struct {
	Departure Endpoint `json:"departure"`
	Arrival   Endpoint `json:"arrival"`
	Duration  Duration `json:"duration"`
}

// Endpoint is a formatted date (DD/MM/YYYY), time (HH:mm) and our own
// station code (never the supplier's).
type Endpoint struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Station string `json:"station"`
}

// Duration is a journey duration split into whole hours and minutes.
type Duration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// OfferOption is an accommodation with its price.
type OfferOption struct {
	Accommodation OptionAccommodation `json:"accommodation"`
	Price         Price               `json:"price"`
}

// OptionAccommodation is the fare class and the passengers travelling in it.
type OptionAccommodation struct {
	Type       string           `json:"type"`
	Passengers OptionPassengers `json:"passengers"`
}

// OptionPassengers are stored as strings, as the booking layer reads them.
type OptionPassengers struct {
	Adults   string `json:"adults"`
	Children string `json:"children"`
}

// SearchCompleted is published after a batch of offers has been saved.
type SearchCompleted struct {
	SearchID  string    `json:"searchId"`
	Type      TrainType `json:"type"`
	Legs      int       `json:"legs"`
	Offers    int       `json:"offers"`
	Timestamp time.Time `json:"timestamp"`
}

// SearchRequested asks a worker to run a search under a pre-assigned id.
type SearchRequested struct {
	SearchID    string        `json:"searchId"`
	Request     SearchRequest `json:"request"`
	RequestedAt time.Time     `json:"requestedAt"`
}
