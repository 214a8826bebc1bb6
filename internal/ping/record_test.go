package ping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord(decode(t, `{"pingId":1,"deliveryAttempt":2,"date":1589877226614,"responseTime":247.5}`))
	require.NoError(t, err)
	assert.Equal(t, Record{PingID: 1, DeliveryAttempt: 2, Date: 1589877226614, ResponseTime: 247.5}, rec)
}

func TestParseRecordAnyNumber(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Record
	}{
		{
			name:    "fractional values",
			payload: `{"pingId":1.5,"deliveryAttempt":0.5,"date":1589877226614.25,"responseTime":3}`,
			want:    Record{PingID: 1.5, DeliveryAttempt: 0.5, Date: 1589877226614.25, ResponseTime: 3},
		},
		{
			name:    "beyond int64",
			payload: `{"pingId":1e20,"deliveryAttempt":1,"date":-1e300,"responseTime":-4}`,
			want:    Record{PingID: 1e20, DeliveryAttempt: 1, Date: -1e300, ResponseTime: -4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseRecord(decode(t, tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec)
		})
	}
}

func TestParseRecordInvalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantMsg string
	}{
		{name: "null", payload: `null`, wantMsg: "data not defined"},
		{name: "array", payload: `[1,2,3]`, wantMsg: "data not defined"},
		{name: "string", payload: `"ping"`, wantMsg: "data not defined"},
		{name: "empty object", payload: `{}`, wantMsg: "pingId is not a number"},
		{name: "string pingId", payload: `{"pingId":"1","deliveryAttempt":1,"date":1,"responseTime":1}`, wantMsg: "pingId is not a number"},
		{name: "missing deliveryAttempt", payload: `{"pingId":1,"date":1,"responseTime":1}`, wantMsg: "deliveryAttempt is not a number"},
		{name: "null date", payload: `{"pingId":1,"deliveryAttempt":1,"date":null,"responseTime":1}`, wantMsg: "date is not a number"},
		{name: "boolean responseTime", payload: `{"pingId":1,"deliveryAttempt":1,"date":1,"responseTime":true}`, wantMsg: "responseTime is not a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord(decode(t, tt.payload))
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseRecordNilPayload(t *testing.T) {
	_, err := ParseRecord(nil)
	assert.ErrorIs(t, err, ErrValidation)
}
