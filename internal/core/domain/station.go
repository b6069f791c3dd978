package domain

import "strings"

// Station is a reference record matching a leg through its membership trees.
// DestinationTree/ArrivalTree hold every location code the departure/arrival
// station belongs to (station, city, country...).
type Station struct {
	ID              string   `json:"id"`
	DestinationCode string   `json:"destinationCode"`
	DestinationTree []string `json:"destinationTree"`
	ArrivalCode     string   `json:"arrivalCode"`
	ArrivalTree     []string `json:"arrivalTree"`
}

// SupplierCorrelation maps an internal station code to supplier codes
// formatted as "<SUPPLIER>#<code>".
type SupplierCorrelation struct {
	Code      string   `json:"code"`
	Suppliers []string `json:"suppliers"`
}

// StationCandidate is a station decorated with the supplier codes resolved
// for one search. It is owned by a single pipeline run.
type StationCandidate struct {
	Station
	DestinationSupplierCodes []string `json:"destinationSupplierCodes,omitempty"`
	ArrivalSupplierCodes     []string `json:"arrivalSupplierCodes,omitempty"`
}

// LegStations pairs a requested leg with its candidate stations.
type LegStations struct {
	Leg      Leg                `json:"leg"`
	Stations []StationCandidate `json:"stations"`
}

// SupplierCode returns the code of the first entry carrying prefix,
// e.g. "SERVIVUELO#MAD" → "MAD". ok is false when none matches.
func SupplierCode(codes []string, prefix string) (code string, ok bool) {
	for _, c := range codes {
		if !strings.HasPrefix(c, prefix) {
			continue
		}
		_, after, found := strings.Cut(c, "#")
		if !found || after == "" {
			return "", false
		}
		return after, true
	}
	return "", false
}
