package odoo

import (
	"encoding/json"
	"errors"
	"time"
)

// OdooString is a custom string type that handles Odoo's dynamic typing.
// Odoo returns `false` (boolean) for empty text fields instead of an empty
// string.
type OdooString string

// UnmarshalJSON handles dynamic typing from Odoo
func (os *OdooString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*os = OdooString(s)
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*os = ""
		return nil
	}

	return errors.New("OdooString: cannot unmarshal value into string")
}

// String returns native string value
func (os OdooString) String() string { return string(os) }

// Ptr returns the value as a nullable string, nil when empty.
func (os OdooString) Ptr() *string {
	if os == "" {
		return nil
	}
	s := string(os)
	return &s
}

// OdooRelation handles Odoo's many2one shape: a `[id, label]` pair, or
// `false` when there is no relation. The pair never travels past the
// gateway; callers destructure it into two plain nullable fields.
type OdooRelation struct {
	ID    int64
	Name  string
	Valid bool
}

// UnmarshalJSON handles both the pair and the bare `false`
func (r *OdooRelation) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err == nil {
		*r = OdooRelation{}
		if len(pair) > 0 {
			if err := json.Unmarshal(pair[0], &r.ID); err != nil {
				return err
			}
			r.Valid = true
		}
		if len(pair) > 1 {
			if err := json.Unmarshal(pair[1], &r.Name); err != nil {
				return err
			}
		}
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*r = OdooRelation{}
		return nil
	}

	return errors.New("OdooRelation: cannot unmarshal value into [id, label] pair")
}

// IDPtr returns the related id, nil when there is no relation.
func (r OdooRelation) IDPtr() *int64 {
	if !r.Valid {
		return nil
	}
	id := r.ID
	return &id
}

// NamePtr returns the related display name, nil when there is no relation.
func (r OdooRelation) NamePtr() *string {
	if !r.Valid {
		return nil
	}
	name := r.Name
	return &name
}

// odooTimeLayout is the timestamp format Odoo uses on the wire.
const odooTimeLayout = "2006-01-02 15:04:05"

// OdooTime parses Odoo's "YYYY-MM-DD HH:MM:SS" timestamps, tolerating
// `false` for unset dates.
type OdooTime struct {
	time.Time
}

// UnmarshalJSON handles dynamic typing from Odoo
func (ot *OdooTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			ot.Time = time.Time{}
			return nil
		}
		t, err := time.Parse(odooTimeLayout, s)
		if err != nil {
			// Some deployments return RFC3339
			t, err = time.Parse(time.RFC3339, s)
			if err != nil {
				return err
			}
		}
		ot.Time = t
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		ot.Time = time.Time{}
		return nil
	}

	return errors.New("OdooTime: cannot unmarshal value into timestamp")
}
