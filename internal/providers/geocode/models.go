package geocode

// SearchResult is one candidate of a forward geocoding search. Both maps.co and
// Nominatim return coordinates as decimal strings. Only the keys the resolver
// reads are decoded.
type SearchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
