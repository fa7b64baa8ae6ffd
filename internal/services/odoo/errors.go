package odoo

import "errors"

// errInvalidID covers the pathological case of Odoo acknowledging a create
// without returning a usable record id.
var errInvalidID = errors.New("Odoo returned no record id")
