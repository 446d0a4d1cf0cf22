// Package service adapts the booking authority's RPC surface into the
// operations the booking flow needs: reservation attempts and
// cancellation, hold restore, guest OTP issuance and catalog reads.
package service

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/sirupsen/logrus"
)

// Caller invokes a stored procedure on the authority.
type Caller interface {
	Call(ctx context.Context, fn string, params any, out any) error
}

// Selector reads rows from an authority table or view.
type Selector interface {
	Select(ctx context.Context, table string, query url.Values, out any) error
}

// Invoker calls an authority edge function.
type Invoker interface {
	Invoke(ctx context.Context, fn string, body any, out any) error
}

func componentLog(log *logrus.Entry, name string) *logrus.Entry {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return log.WithField("component", name)
}

// flexString accepts a JSON string or number.  Authority ids are UUIDs
// for some tables and bigints for others.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
