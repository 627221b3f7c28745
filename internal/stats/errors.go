package stats

import "fmt"

// ValidationError reports a required key absent from the fetched payload.
type ValidationError struct {
	Key string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing key in response: %s", e.Key)
}

// TransportError reports a failed HTTP exchange with the stats endpoint:
// either the request itself errored (Err set) or the endpoint answered with
// a non-success status (Status set).
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
