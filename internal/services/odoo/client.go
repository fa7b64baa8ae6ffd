package odoo

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/giofarma/storefront/internal/errs"
	"github.com/kolo/xmlrpc"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultExecuteTimeout = 15 * time.Second
)

// Client is an Odoo XML-RPC client. The authenticated uid is cached for the
// lifetime of one Client; a fresh instance re-authenticates.
type Client struct {
	URL      string
	Database string
	Username string
	APIKey   string

	// Bounded waits; connect is shorter than execute on purpose so a dead
	// ERP fails fast before any data call is attempted.
	ConnectTimeout time.Duration
	ExecuteTimeout time.Duration

	// mu guards uid: one Client is shared between the background sync loop
	// and request handlers.
	mu  sync.Mutex
	uid int64
}

// NewClient creates a new Odoo client. The URL is normalized: trailing
// slash stripped, https assumed when no scheme is given.
func NewClient(url, db, username, apiKey string) *Client {
	url = strings.TrimSuffix(url, "/")
	if url != "" && !strings.Contains(url, "://") {
		url = "https://" + url
	}
	return &Client{
		URL:            url,
		Database:       db,
		Username:       username,
		APIKey:         apiKey,
		ConnectTimeout: defaultConnectTimeout,
		ExecuteTimeout: defaultExecuteTimeout,
	}
}

func (c *Client) commonURL() string { return c.URL + "/xmlrpc/2/common" }
func (c *Client) objectURL() string { return c.URL + "/xmlrpc/2/object" }

// call performs one XML-RPC method call with a bounded wait. kolo/xmlrpc
// has no context-aware variant, so the call runs in a goroutine and loses
// the race against the timer on a stuck ERP.
func (c *Client) call(url, method string, args []interface{}, timeout time.Duration, result interface{}) error {
	client, err := xmlrpc.NewClient(url, nil)
	if err != nil {
		return fmt.Errorf("failed to create XML-RPC client: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- client.Call(method, args, result)
		client.Close()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return &errs.TimeoutError{Op: method, Timeout: timeout}
	}
}

// Connect authenticates with Odoo and caches the user id. Odoo signals bad
// credentials by returning `false` instead of a uid. The lock is held across
// the authenticate call, so concurrent callers share one session instead of
// racing to create several.
func (c *Client) Connect() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.uid != 0 {
		return c.uid, nil
	}

	var missing []string
	if c.URL == "" {
		missing = append(missing, "ODOO_URL")
	}
	if c.Database == "" {
		missing = append(missing, "ODOO_DB")
	}
	if c.Username == "" {
		missing = append(missing, "ODOO_USERNAME")
	}
	if c.APIKey == "" {
		missing = append(missing, "ODOO_API_KEY")
	}
	if len(missing) > 0 {
		return 0, &errs.ConfigurationError{Missing: missing}
	}

	args := []interface{}{c.Database, c.Username, c.APIKey, map[string]interface{}{}}
	var raw interface{}
	if err := c.call(c.commonURL(), "authenticate", args, c.ConnectTimeout, &raw); err != nil {
		var te *errs.TimeoutError
		if errors.As(err, &te) {
			return 0, err
		}
		return 0, &errs.AuthenticationError{Msg: fmt.Sprintf("Odoo auth error: %v", err)}
	}

	uid, ok := toInt64(raw)
	if !ok || uid == 0 {
		return 0, &errs.AuthenticationError{}
	}

	c.uid = uid
	return uid, nil
}

// Execute invokes a method on a named Odoo model via execute_kw, ensuring a
// session first.
func (c *Client) Execute(model, method string, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	uid, err := c.Connect()
	if err != nil {
		return nil, err
	}

	callArgs := []interface{}{c.Database, uid, c.APIKey, model, method, args}
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}
	callArgs = append(callArgs, kwargs)

	var result interface{}
	if err := c.call(c.objectURL(), "execute_kw", callArgs, c.ExecuteTimeout, &result); err != nil {
		var te *errs.TimeoutError
		if errors.As(err, &te) {
			return nil, err
		}
		return nil, &errs.RemoteCallError{Model: model, Method: method, Err: err}
	}

	return result, nil
}

// SearchRead performs search_read on a model and decodes the raw records
// into result, a pointer to a slice of structs with json tags. The JSON
// round trip is what lets OdooString/OdooRelation absorb Odoo's dynamic
// typing.
func (c *Client) SearchRead(model string, domain []interface{}, fields []string, limit int, order string, result interface{}) error {
	kwargs := map[string]interface{}{"fields": fields}
	if limit > 0 {
		kwargs["limit"] = limit
	}
	if order != "" {
		kwargs["order"] = order
	}

	raw, err := c.Execute(model, "search_read", []interface{}{domain}, kwargs)
	if err != nil {
		return err
	}

	return decodeRecords(raw, result)
}

// decodeRecords converts raw XML-RPC maps into a typed slice
func decodeRecords(raw, result interface{}) error {
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal raw result: %w", err)
	}
	if err := json.Unmarshal(jsonData, result); err != nil {
		return fmt.Errorf("failed to unmarshal into target: %w", err)
	}
	return nil
}

// toInt64 converts the loosely typed values Odoo returns into an id
func toInt64(v interface{}) (int64, bool) {
	if v == nil {
		return 0, false
	}
	val := reflect.ValueOf(v)
	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return val.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(val.Uint()), true
	case reflect.Float32, reflect.Float64:
		return int64(val.Float()), true
	}
	return 0, false
}

// toInt64Slice converts a raw XML-RPC array of ids
func toInt64Slice(v interface{}) []int64 {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(raw))
	for _, item := range raw {
		if id, ok := toInt64(item); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
