package openmeteo

import "encoding/json"

// CurrentAPIResponse is a forecast response restricted to current conditions.
// Values stay raw so callers can tell a missing key from a zero.
type CurrentAPIResponse struct {
	Timezone string                     `json:"timezone"`
	Current  map[string]json.RawMessage `json:"current"`

	// Raw holds every top-level key as received.
	Raw map[string]json.RawMessage `json:"-"`
}

func (r *CurrentAPIResponse) UnmarshalJSON(data []byte) error {
	type plain CurrentAPIResponse
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}
	return json.Unmarshal(data, &r.Raw)
}

// ErrorAPIResponse is the body Open-Meteo sends with 4xx responses.
type ErrorAPIResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}
