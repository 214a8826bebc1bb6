package ping

import (
	"errors"
	"fmt"
)

// ErrValidation is returned when a payload is not a well-formed ping record.
var ErrValidation = errors.New("invalid ping record")

// Record is a client-submitted measurement. PingID is its identity.
//
// Every field holds the JSON number exactly as decoded, so fractional or very
// large ids are kept and compared by their float64 value.
type Record struct {
	PingID          float64
	DeliveryAttempt float64
	Date            float64 // epoch millis
	ResponseTime    float64
}

// ParseRecord converts a decoded JSON payload into a Record. The payload must be
// a JSON object carrying numeric pingId, deliveryAttempt, date and responseTime.
func ParseRecord(payload any) (Record, error) {
	obj, ok := payload.(map[string]any)
	if !ok || obj == nil {
		return Record{}, fmt.Errorf("%w: data not defined", ErrValidation)
	}

	var rec Record
	fields := []struct {
		name string
		dst  *float64
	}{
		{"pingId", &rec.PingID},
		{"deliveryAttempt", &rec.DeliveryAttempt},
		{"date", &rec.Date},
		{"responseTime", &rec.ResponseTime},
	}
	for _, f := range fields {
		v, ok := obj[f.name].(float64)
		if !ok {
			return Record{}, fmt.Errorf("%w: %s is not a number", ErrValidation, f.name)
		}
		*f.dst = v
	}
	return rec, nil
}
